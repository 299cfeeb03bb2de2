package document

import (
	"context"
	"crypto/sha256"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/duanecilliers/openclaw-admin/internal/domain"
	"github.com/duanecilliers/openclaw-admin/internal/hooks"
	"github.com/duanecilliers/openclaw-admin/internal/logging"
	"github.com/google/uuid"
)

const (
	backupPrefix    = "openclaw-"
	backupSuffix    = ".json"
	backupTimestamp = "20060102T150405.000000000Z"
	defaultKeep     = 10
)

// Options configures a Store.
type Options struct {
	Path      string // live document
	BackupDir string // default: <dir of Path>/backups
	Keep      int    // backups retained, default 10
	Log       *logging.Logger
	Events    hooks.Emitter
}

// Store reads and replaces the configuration document. It holds no copy of
// the document between calls. Concurrent writers are not serialized; the
// last rename wins.
type Store struct {
	path      string
	backupDir string
	keep      int
	log       *logging.Logger
	events    hooks.Emitter
	now       func() time.Time

	// beforeRename runs after the temp file is durable and before it
	// replaces the live file. Tests use it to interrupt a write.
	beforeRename func(tmp string) error

	mu          sync.Mutex
	lastWritten [sha256.Size]byte
}

// NewStore creates a Store.
func NewStore(opts Options) *Store {
	s := &Store{
		path:      opts.Path,
		backupDir: opts.BackupDir,
		keep:      opts.Keep,
		log:       opts.Log,
		events:    opts.Events,
		now:       time.Now,
	}
	if s.backupDir == "" {
		s.backupDir = filepath.Join(filepath.Dir(s.path), "backups")
	}
	if s.keep <= 0 {
		s.keep = defaultKeep
	}
	if s.log == nil {
		s.log = logging.New(nil, "silent")
	}
	s.log = s.log.Sub("document")
	if s.events == nil {
		s.events = hooks.Discard
	}
	return s
}

// Path returns the live document path.
func (s *Store) Path() string { return s.path }

// BackupDir returns the directory holding timestamped backups.
func (s *Store) BackupDir() string { return s.backupDir }

// Read loads and parses the document.
func (s *Store) Read(ctx context.Context) (*Document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &domain.NotFoundError{Kind: "config", ID: s.path}
		}
		return nil, &domain.PersistenceError{Op: "read", Path: s.path, Err: err}
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, &domain.ParseError{Path: s.path, Err: err}
	}
	return doc, nil
}

// Stat returns the modification time of the live document.
func (s *Store) Stat() (time.Time, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return time.Time{}, &domain.NotFoundError{Kind: "config", ID: s.path}
		}
		return time.Time{}, &domain.PersistenceError{Op: "stat", Path: s.path, Err: err}
	}
	return info.ModTime(), nil
}

// Write replaces the live document with doc. The encoded bytes are checked
// to decode back to doc before disk is touched. The new content is written
// to a temp sibling and fsynced, the previous version is copied to the
// backup directory, and the temp file is renamed over the live path. Backup
// failures are logged and do not fail the write.
func (s *Store) Write(ctx context.Context, doc *Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := doc.marshalVerified()
	if err != nil {
		return &domain.PersistenceError{Op: "encode", Path: s.path, Err: err}
	}

	perm := os.FileMode(0o600)
	if info, err := os.Stat(s.path); err == nil {
		perm = info.Mode().Perm()
	}

	tmp := s.path + ".tmp-" + uuid.NewString()
	if err := writeFileSync(tmp, data, perm); err != nil {
		_ = os.Remove(tmp)
		return &domain.PersistenceError{Op: "write", Path: tmp, Err: err}
	}

	if err := s.backup(); err != nil {
		s.log.Warn().Err(err).Str("dir", s.backupDir).Msg("config backup failed")
	}

	if s.beforeRename != nil {
		if err := s.beforeRename(tmp); err != nil {
			_ = os.Remove(tmp)
			return &domain.PersistenceError{Op: "rename", Path: s.path, Err: err}
		}
	}

	s.mu.Lock()
	s.lastWritten = sha256.Sum256(data)
	s.mu.Unlock()

	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return &domain.PersistenceError{Op: "rename", Path: s.path, Err: err}
	}

	s.log.Info().Str("path", s.path).Int("bytes", len(data)).Msg("config written")
	s.events.Emit(ctx, hooks.EventConfigWritten, s.path, map[string]any{"bytes": len(data)})
	return nil
}

// Update reads the document, applies fn, and writes the result. It does not
// lock; a concurrent Update may be lost.
func (s *Store) Update(ctx context.Context, fn func(*Document) error) error {
	doc, err := s.Read(ctx)
	if err != nil {
		return err
	}
	if err := fn(doc); err != nil {
		return err
	}
	return s.Write(ctx, doc)
}

// Backups returns the backup file names, oldest first.
func (s *Store) Backups() ([]string, error) {
	entries, err := os.ReadDir(s.backupDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var names []string
	for _, e := range entries {
		name := e.Name()
		if e.Type().IsRegular() && strings.HasPrefix(name, backupPrefix) && strings.HasSuffix(name, backupSuffix) {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names, nil
}

// wroteLast reports whether data is what this store last wrote.
func (s *Store) wroteLast(data []byte) bool {
	sum := sha256.Sum256(data)
	s.mu.Lock()
	defer s.mu.Unlock()
	return sum == s.lastWritten
}

func (s *Store) backup() error {
	current, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := os.MkdirAll(s.backupDir, 0o700); err != nil {
		return err
	}
	name := backupPrefix + s.now().UTC().Format(backupTimestamp) + backupSuffix
	if err := os.WriteFile(filepath.Join(s.backupDir, name), current, 0o600); err != nil {
		return err
	}
	return s.prune()
}

func (s *Store) prune() error {
	names, err := s.Backups()
	if err != nil {
		return err
	}
	var errs []error
	for len(names) > s.keep {
		if err := os.Remove(filepath.Join(s.backupDir, names[0])); err != nil {
			errs = append(errs, err)
		}
		names = names[1:]
	}
	return errors.Join(errs...)
}

func writeFileSync(path string, data []byte, perm os.FileMode) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
