// Package cron edits the openclaw cron jobs document and triggers one-shot
// runs. Scheduling itself belongs to the gateway.
package cron

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/duanecilliers/openclaw-admin/internal/domain"
	"github.com/duanecilliers/openclaw-admin/internal/hooks"
	"github.com/duanecilliers/openclaw-admin/internal/logging"
	"github.com/google/uuid"
)

const (
	jobsVersion          = 1
	defaultSessionTarget = "isolated"
)

// managedKeys are set by the store and never copied from a draft.
var managedKeys = []string{"id", "createdAtMs", "updatedAtMs", "state"}

// Store reads and writes the jobs document. Like the configuration store,
// it keeps nothing in memory between calls and does not lock.
type Store struct {
	path   string
	events hooks.Emitter
	log    *logging.Logger
	now    func() time.Time
}

// NewStore creates a Store for the jobs document at path.
func NewStore(path string, events hooks.Emitter, log *logging.Logger) *Store {
	if events == nil {
		events = hooks.Discard
	}
	if log == nil {
		log = logging.New(nil, "silent")
	}
	return &Store{path: path, events: events, log: log.Sub("cron"), now: time.Now}
}

// Path returns the jobs document path.
func (s *Store) Path() string { return s.path }

// List returns every job. A missing document has no jobs.
func (s *Store) List(ctx context.Context) ([]domain.CronJob, error) {
	f, err := s.read()
	if err != nil {
		return nil, err
	}
	return f.Jobs, nil
}

// Get returns one job.
func (s *Store) Get(ctx context.Context, id string) (domain.CronJob, error) {
	f, err := s.read()
	if err != nil {
		return nil, err
	}
	i := indexOf(f.Jobs, id)
	if i < 0 {
		return nil, &domain.NotFoundError{Kind: "job", ID: id}
	}
	return f.Jobs[i], nil
}

// Create appends a job built from draft. schedule and payload are
// required. The id and timestamps are assigned here; name defaults to null,
// enabled to true, and sessionTarget to "isolated".
func (s *Store) Create(ctx context.Context, draft domain.CronJob) (domain.CronJob, error) {
	for _, field := range []string{"schedule", "payload"} {
		if !draft.Has(field) {
			return nil, &domain.ValidationError{Field: field, Message: "required"}
		}
	}

	f, err := s.read()
	if err != nil {
		return nil, err
	}

	job := domain.CronJob{}
	for k, v := range draft {
		if !slices.Contains(managedKeys, k) {
			job[k] = v
		}
	}
	nowMs := s.now().UnixMilli()
	if err := setAll(job, map[string]any{
		"id":          uuid.NewString(),
		"createdAtMs": nowMs,
		"updatedAtMs": nowMs,
	}); err != nil {
		return nil, err
	}
	if _, ok := job["name"]; !ok {
		job["name"] = json.RawMessage("null")
	}
	if !job.Has("enabled") {
		_ = job.Set("enabled", true)
	}
	if !job.Has("sessionTarget") {
		_ = job.Set("sessionTarget", defaultSessionTarget)
	}

	f.Jobs = append(f.Jobs, job)
	if err := s.write(f); err != nil {
		return nil, err
	}
	s.log.Info().Str("job", job.ID()).Msg("job created")
	s.events.Emit(ctx, hooks.EventCronJobChanged, job.ID(), map[string]any{"action": "create"})
	return job, nil
}

// Update merges patch onto a job. Top-level fields of patch replace the
// job's fields wholesale; nested objects are never merged. The id cannot
// change.
func (s *Store) Update(ctx context.Context, id string, patch domain.CronJob) (domain.CronJob, error) {
	f, err := s.read()
	if err != nil {
		return nil, err
	}
	i := indexOf(f.Jobs, id)
	if i < 0 {
		return nil, &domain.NotFoundError{Kind: "job", ID: id}
	}

	merged := make(domain.CronJob, len(f.Jobs[i])+len(patch))
	for k, v := range f.Jobs[i] {
		merged[k] = v
	}
	for k, v := range patch {
		merged[k] = v
	}
	if err := setAll(merged, map[string]any{"id": id, "updatedAtMs": s.now().UnixMilli()}); err != nil {
		return nil, err
	}

	f.Jobs[i] = merged
	if err := s.write(f); err != nil {
		return nil, err
	}
	s.log.Info().Str("job", id).Msg("job updated")
	s.events.Emit(ctx, hooks.EventCronJobChanged, id, map[string]any{"action": "update"})
	return merged, nil
}

// Remove deletes a job.
func (s *Store) Remove(ctx context.Context, id string) error {
	f, err := s.read()
	if err != nil {
		return err
	}
	i := indexOf(f.Jobs, id)
	if i < 0 {
		return &domain.NotFoundError{Kind: "job", ID: id}
	}
	f.Jobs = slices.Delete(f.Jobs, i, i+1)
	if err := s.write(f); err != nil {
		return err
	}
	s.log.Info().Str("job", id).Msg("job removed")
	s.events.Emit(ctx, hooks.EventCronJobChanged, id, map[string]any{"action": "remove"})
	return nil
}

func (s *Store) read() (domain.JobsFile, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.JobsFile{Version: jobsVersion, Jobs: []domain.CronJob{}}, nil
		}
		return domain.JobsFile{}, &domain.PersistenceError{Op: "read", Path: s.path, Err: err}
	}
	var f domain.JobsFile
	if err := json.Unmarshal(data, &f); err != nil {
		return domain.JobsFile{}, &domain.ParseError{Path: s.path, Err: err}
	}
	if f.Jobs == nil {
		f.Jobs = []domain.CronJob{}
	}
	return f, nil
}

// write replaces the jobs document through a temp file and rename.
func (s *Store) write(f domain.JobsFile) error {
	if f.Version == 0 {
		f.Version = jobsVersion
	}
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return &domain.PersistenceError{Op: "encode", Path: s.path, Err: err}
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return &domain.PersistenceError{Op: "mkdir", Path: filepath.Dir(s.path), Err: err}
	}
	tmp := s.path + ".tmp-" + uuid.NewString()
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		_ = os.Remove(tmp)
		return &domain.PersistenceError{Op: "write", Path: tmp, Err: err}
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return &domain.PersistenceError{Op: "rename", Path: s.path, Err: err}
	}
	return nil
}

func indexOf(jobs []domain.CronJob, id string) int {
	return slices.IndexFunc(jobs, func(j domain.CronJob) bool { return j.ID() == id })
}

func setAll(job domain.CronJob, fields map[string]any) error {
	for k, v := range fields {
		if err := job.Set(k, v); err != nil {
			return err
		}
	}
	return nil
}
