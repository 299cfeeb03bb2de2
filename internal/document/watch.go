package document

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/duanecilliers/openclaw-admin/internal/hooks"
	"github.com/fsnotify/fsnotify"
)

const watchSettle = 250 * time.Millisecond

// Watch emits hooks.EventConfigChanged whenever the live document changes
// on disk through something other than this store. It watches the parent
// directory so that atomic replacements by other tools are seen. Watch
// returns once the watcher is running; it stops when ctx is done.
func (s *Store) Watch(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := fsw.Add(filepath.Dir(s.path)); err != nil {
		fsw.Close()
		return err
	}

	go func() {
		defer fsw.Close()
		var settle <-chan time.Time
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-fsw.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != filepath.Clean(s.path) {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				settle = time.After(watchSettle)
			case <-settle:
				settle = nil
				s.checkExternalChange(ctx)
			case err, ok := <-fsw.Errors:
				if !ok {
					return
				}
				s.log.Error().Err(err).Msg("config watcher error")
			}
		}
	}()
	s.log.Debug().Str("path", s.path).Msg("watching config")
	return nil
}

func (s *Store) checkExternalChange(ctx context.Context) {
	data, err := os.ReadFile(s.path)
	if err != nil || s.wroteLast(data) {
		return
	}
	s.log.Info().Str("path", s.path).Msg("config changed on disk")
	s.events.Emit(ctx, hooks.EventConfigChanged, s.path, nil)
}
