package config

import (
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// envVarPattern matches ${VAR_NAME} patterns in strings.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnvVars replaces ${VAR} patterns with environment variable values.
// Unset variables are left unchanged.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val, ok := os.LookupEnv(varName); ok {
			return val
		}
		return match
	})
}

// expandPath expands ${VAR} references and a leading "~/".
func expandPath(p string) string {
	p = expandEnvVars(p)
	if strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, p[2:])
		}
	}
	return p
}

// expandPathFields processes environment and home references in every
// filesystem path so settings can be shared between machines.
func expandPathFields(cfg *Config) {
	cfg.OpenClaw.Home = expandPath(cfg.OpenClaw.Home)
	cfg.OpenClaw.ConfigPath = expandPath(cfg.OpenClaw.ConfigPath)
	cfg.OpenClaw.JobsPath = expandPath(cfg.OpenClaw.JobsPath)
	cfg.OpenClaw.SharedSkills = expandPath(cfg.OpenClaw.SharedSkills)
	cfg.OpenClaw.BundledSkills = expandPath(cfg.OpenClaw.BundledSkills)
	cfg.Backups.Dir = expandPath(cfg.Backups.Dir)
	cfg.Journal.Path = expandPath(cfg.Journal.Path)
	cfg.Logging.File = expandPath(cfg.Logging.File)
}

// Load reads the settings file, applies environment overrides, and returns
// a merged Config. Missing files produce defaults only.
func Load(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnvOverrides(&cfg)
			expandPathFields(&cfg)
			return cfg, nil
		}
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, &ConfigError{Message: "failed to parse config: " + err.Error()}
	}

	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)
	expandPathFields(&cfg)
	return cfg, nil
}

// applyDefaults fills zero-value fields with sensible defaults.
func applyDefaults(cfg *Config) {
	d := Defaults()
	if cfg.Server.Port == 0 {
		cfg.Server.Port = d.Server.Port
	}
	if cfg.Server.Bind == "" {
		cfg.Server.Bind = d.Server.Bind
	}
	if cfg.OpenClaw.Command == "" {
		cfg.OpenClaw.Command = d.OpenClaw.Command
	}
	if cfg.Discord.APIBase == "" {
		cfg.Discord.APIBase = d.Discord.APIBase
	}
	if cfg.Discord.TimeoutSeconds == 0 {
		cfg.Discord.TimeoutSeconds = d.Discord.TimeoutSeconds
	}
	if cfg.Discord.CacheTTLMinutes == 0 {
		cfg.Discord.CacheTTLMinutes = d.Discord.CacheTTLMinutes
	}
	if cfg.Gateway.ProbeTimeoutSeconds == 0 {
		cfg.Gateway.ProbeTimeoutSeconds = d.Gateway.ProbeTimeoutSeconds
	}
	if cfg.Gateway.TriggerTimeoutSeconds == 0 {
		cfg.Gateway.TriggerTimeoutSeconds = d.Gateway.TriggerTimeoutSeconds
	}
	if cfg.Backups.Keep == 0 {
		cfg.Backups.Keep = d.Backups.Keep
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = d.Logging.Level
	}
	if cfg.Logging.ConsoleStyle == "" {
		cfg.Logging.ConsoleStyle = d.Logging.ConsoleStyle
	}
}

// applyEnvOverrides reads OPENCLAW_ADMIN_* and OPENCLAW_HOME environment
// variables and overrides config values.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("OPENCLAW_ADMIN_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("OPENCLAW_ADMIN_BIND"); v != "" {
		cfg.Server.Bind = v
	}
	if v := os.Getenv("OPENCLAW_ADMIN_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := os.Getenv("OPENCLAW_HOME"); v != "" {
		cfg.OpenClaw.Home = v
	}
}
