// Package workspace reads and saves the fixed set of markdown files kept in
// an agent workspace directory.
package workspace

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/duanecilliers/openclaw-admin/internal/domain"
	"github.com/duanecilliers/openclaw-admin/internal/hooks"
	"github.com/duanecilliers/openclaw-admin/internal/logging"
)

// Allowed lists the files that may be read or written, in display order.
var Allowed = []string{"SOUL.md", "USER.md", "AGENTS.md", "MEMORY.md", "TOOLS.md"}

// FileStatus reports whether an allowed file exists.
type FileStatus struct {
	Name   string `json:"name"`
	Exists bool   `json:"exists"`
}

// File is the content of one workspace file.
type File struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// Files gives access to workspace files. The directory is passed per call
// so one Files serves the default workspace and every agent's.
type Files struct {
	events hooks.Emitter
	log    *logging.Logger
}

// New creates a Files.
func New(events hooks.Emitter, log *logging.Logger) *Files {
	if events == nil {
		events = hooks.Discard
	}
	if log == nil {
		log = logging.New(nil, "silent")
	}
	return &Files{events: events, log: log.Sub("workspace")}
}

// List reports every allowed file in dir.
func (f *Files) List(dir string) []FileStatus {
	out := make([]FileStatus, 0, len(Allowed))
	for _, name := range Allowed {
		_, err := os.Stat(filepath.Join(dir, name))
		out = append(out, FileStatus{Name: name, Exists: err == nil})
	}
	return out
}

// Read returns the content of name in dir.
func (f *Files) Read(dir, name string) (File, error) {
	if err := checkName(name); err != nil {
		return File{}, err
	}
	path := filepath.Join(dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return File{}, &domain.NotFoundError{Kind: "file", ID: name}
		}
		return File{}, &domain.PersistenceError{Op: "read", Path: path, Err: err}
	}
	return File{Name: name, Content: string(data)}, nil
}

// Save replaces name in dir with content, creating dir if needed.
func (f *Files) Save(ctx context.Context, dir, name, content string) error {
	if err := checkName(name); err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &domain.PersistenceError{Op: "mkdir", Path: dir, Err: err}
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return &domain.PersistenceError{Op: "write", Path: path, Err: err}
	}
	f.log.Info().Str("file", path).Int("bytes", len(content)).Msg("workspace file saved")
	f.events.Emit(ctx, hooks.EventWorkspaceFileSaved, path, map[string]any{"file": name})
	return nil
}

func checkName(name string) error {
	if !slices.Contains(Allowed, name) {
		return &domain.ValidationError{Field: "name", Message: "file not allowed: " + name}
	}
	return nil
}
