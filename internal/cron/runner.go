package cron

import (
	"context"

	"github.com/duanecilliers/openclaw-admin/internal/domain"
)

// Executor runs an openclaw CLI command and reports the outcome.
type Executor interface {
	Run(ctx context.Context, okMessage string, args ...string) domain.RunResult
}

// Runner triggers immediate runs of existing jobs. It does not touch job
// state; the gateway records the run.
type Runner struct {
	store *Store
	exec  Executor
}

// NewRunner creates a Runner.
func NewRunner(store *Store, exec Executor) *Runner {
	return &Runner{store: store, exec: exec}
}

// Run triggers "openclaw cron run <id>". A job missing from the document
// is reported as not found without invoking the command.
func (r *Runner) Run(ctx context.Context, id string) (domain.RunResult, error) {
	if _, err := r.store.Get(ctx, id); err != nil {
		return domain.RunResult{}, err
	}
	return r.exec.Run(ctx, "Job triggered", "cron", "run", id), nil
}
