// Package version reports what build of the console is running.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Set via ldflags at build time:
//
//	go build -ldflags "-X github.com/duanecilliers/openclaw-admin/internal/version.Version=0.3.0
//	  -X github.com/duanecilliers/openclaw-admin/internal/version.Commit=abc123
//	  -X github.com/duanecilliers/openclaw-admin/internal/version.Date=2026-01-01"
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// Build describes the running binary.
type Build struct {
	Version  string `json:"version" yaml:"version"`
	Commit   string `json:"commit" yaml:"commit"`
	Date     string `json:"date" yaml:"date"`
	Go       string `json:"go" yaml:"go"`
	Platform string `json:"platform" yaml:"platform"`
}

// Get returns the build description. When no commit was stamped at link
// time, the VCS revision recorded by the go tool is used if present.
func Get() Build {
	b := Build{
		Version:  Version,
		Commit:   Commit,
		Date:     Date,
		Go:       runtime.Version(),
		Platform: runtime.GOOS + "/" + runtime.GOARCH,
	}
	if b.Commit == "unknown" {
		if info, ok := debug.ReadBuildInfo(); ok {
			b.Commit, b.Date = fromSettings(info.Settings, b.Commit, b.Date)
		}
	}
	return b
}

func fromSettings(settings []debug.BuildSetting, commit, date string) (string, string) {
	for _, s := range settings {
		switch s.Key {
		case "vcs.revision":
			commit = s.Value
		case "vcs.time":
			if date == "unknown" {
				date = s.Value
			}
		}
	}
	return commit, date
}

// String formats the build for humans.
func (b Build) String() string {
	return fmt.Sprintf("openclaw-admin %s (commit: %s, built: %s, %s, %s)",
		b.Version, short(b.Commit), b.Date, b.Go, b.Platform)
}

// Info returns Get().String().
func Info() string {
	return Get().String()
}

func short(s string) string {
	if len(s) > 7 {
		return s[:7]
	}
	return s
}
