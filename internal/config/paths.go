package config

import (
	"os"
	"path/filepath"
)

const (
	defaultBaseDir     = ".openclaw-admin"
	defaultOpenClawDir = ".openclaw"
	defaultBundledDir  = "openclaw"
)

// Paths holds resolved filesystem paths for console data.
type Paths struct {
	Base   string // ~/.openclaw-admin
	Config string // ~/.openclaw-admin/config.yaml
	Logs   string // ~/.openclaw-admin/logs
	Data   string // ~/.openclaw-admin/data
}

// ResolvePaths computes all standard paths from the home directory.
// If OPENCLAW_ADMIN_HOME is set, it overrides the default base directory.
func ResolvePaths() (Paths, error) {
	base := os.Getenv("OPENCLAW_ADMIN_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Paths{}, err
		}
		base = filepath.Join(home, defaultBaseDir)
	}

	return Paths{
		Base:   base,
		Config: filepath.Join(base, "config.yaml"),
		Logs:   filepath.Join(base, "logs"),
		Data:   filepath.Join(base, "data"),
	}, nil
}

// EnsureDirs creates all standard directories if they don't exist.
func (p Paths) EnsureDirs() error {
	dirs := []string{p.Base, p.Logs, p.Data}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o700); err != nil {
			return err
		}
	}
	return nil
}

// Resolve fills every empty openclaw path from the openclaw home and the
// user's home directory, and the journal path from the console data dir.
func (c *Config) Resolve(p Paths) error {
	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}
	oc := &c.OpenClaw
	if oc.Home == "" {
		oc.Home = filepath.Join(home, defaultOpenClawDir)
	}
	if oc.ConfigPath == "" {
		oc.ConfigPath = filepath.Join(oc.Home, "openclaw.json")
	}
	if oc.JobsPath == "" {
		oc.JobsPath = filepath.Join(oc.Home, "cron", "jobs.json")
	}
	if oc.SharedSkills == "" {
		oc.SharedSkills = filepath.Join(oc.Home, "skills")
	}
	if oc.BundledSkills == "" {
		oc.BundledSkills = filepath.Join(home, defaultBundledDir, "skills")
	}
	if c.Backups.Dir == "" {
		c.Backups.Dir = filepath.Join(filepath.Dir(oc.ConfigPath), "backups")
	}
	if c.Journal.Path == "" {
		c.Journal.Path = filepath.Join(p.Data, "journal.db")
	}
	return nil
}
