package gatewayctl

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"

	"github.com/duanecilliers/openclaw-admin/internal/domain"
	"github.com/duanecilliers/openclaw-admin/internal/logging"
)

// DefaultTriggerTimeout bounds one out-of-process trigger.
const DefaultTriggerTimeout = 30 * time.Second

// pipeWaitDelay is how long Run keeps reading output after the command has
// exited or been killed. Children that inherit stdout (a restarted daemon)
// would otherwise hold Run open until they exit.
const pipeWaitDelay = 2 * time.Second

// Trigger runs one-shot openclaw CLI commands and reports their outcome as
// a domain.RunResult. It never returns an error; failures become
// Success=false with the command's diagnostic text.
type Trigger struct {
	command   string
	timeout   time.Duration
	waitDelay time.Duration
	log       *logging.Logger
}

// NewTrigger creates a Trigger for the given executable.
func NewTrigger(command string, timeout time.Duration, log *logging.Logger) *Trigger {
	if timeout <= 0 {
		timeout = DefaultTriggerTimeout
	}
	if log == nil {
		log = logging.New(nil, "silent")
	}
	return &Trigger{command: command, timeout: timeout, waitDelay: pipeWaitDelay, log: log.Sub("trigger")}
}

// Run executes the command with args. On success the message is the
// trimmed stdout, or okMessage when stdout is empty. Run returns within the
// timeout plus a short grace period for output, even when the command leaves
// children behind.
func (t *Trigger) Run(ctx context.Context, okMessage string, args ...string) domain.RunResult {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	t.log.Debug().Str("cmd", t.command).Strs("args", args).Msg("running trigger")
	start := time.Now()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, t.command, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = t.waitDelay
	err := cmd.Run()
	if errors.Is(err, exec.ErrWaitDelay) {
		// exited cleanly; a detached child still held the output pipes
		t.log.Debug().Str("cmd", t.command).Msg("trigger left a child holding its output")
		err = nil
	}

	if err != nil {
		res := domain.RunResult{Success: false}
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			res.TimedOut = true
			res.Message = "timed out after " + t.timeout.String()
			if s := strings.TrimSpace(stderr.String()); s != "" {
				res.Message += ": " + s
			}
		} else if s := strings.TrimSpace(stderr.String()); s != "" {
			res.Message = s
		} else {
			res.Message = err.Error()
		}
		t.log.Warn().
			Err(err).
			Str("cmd", t.command).
			Strs("args", args).
			Bool("timedOut", res.TimedOut).
			Dur("duration", time.Since(start)).
			Msg("trigger failed")
		return res
	}

	msg := strings.TrimSpace(stdout.String())
	if msg == "" {
		msg = okMessage
	}
	t.log.Info().Str("cmd", t.command).Strs("args", args).Dur("duration", time.Since(start)).Msg("trigger done")
	return domain.RunResult{Success: true, Message: msg}
}
