// Package hooks is the console's in-process event bus. Mutating operations
// emit events; the change journal and the live event socket subscribe.
package hooks

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/duanecilliers/openclaw-admin/internal/logging"
)

// Event names for the hook system.
const (
	EventConfigWritten      = "config_written"
	EventConfigChanged      = "config_changed" // modified on disk by something other than the console
	EventCronJobChanged     = "cron_job_changed"
	EventSkillInstalled     = "skill_installed"
	EventSkillRemoved       = "skill_removed"
	EventWorkspaceFileSaved = "workspace_file_saved"
	EventConsoleStart       = "console_start"
	EventConsoleStop        = "console_stop"
)

// AllEvents lists all known hook event names.
var AllEvents = []string{
	EventConfigWritten,
	EventConfigChanged,
	EventCronJobChanged,
	EventSkillInstalled,
	EventSkillRemoved,
	EventWorkspaceFileSaved,
	EventConsoleStart,
	EventConsoleStop,
}

// anyEvent is the registration key for handlers that receive every event.
const anyEvent = "*"

// Payload carries event data to hook handlers.
type Payload struct {
	Event   string         `json:"event"`
	Subject string         `json:"subject,omitempty"` // job id, skill name, file path, ...
	Data    map[string]any `json:"data,omitempty"`
	At      time.Time      `json:"at"`
}

// Handler is a function that handles a hook event.
// Returning an error logs the failure but does not stop processing.
type Handler func(ctx context.Context, p Payload) error

// Emitter is the publishing side of the bus. Components that only emit
// depend on this rather than on *Manager.
type Emitter interface {
	Emit(ctx context.Context, event, subject string, data map[string]any)
}

// Manager manages hook registrations and dispatches events.
type Manager struct {
	mu       sync.RWMutex
	handlers map[string][]namedHandler
	log      *logging.Logger
	now      func() time.Time
}

type namedHandler struct {
	name    string
	handler Handler
}

// NewManager creates a hook manager.
func NewManager(log *logging.Logger) *Manager {
	return &Manager{
		handlers: make(map[string][]namedHandler),
		log:      log.Sub("hooks"),
		now:      time.Now,
	}
}

// On registers a handler for the given event.
// The name identifies the handler for logging and debugging.
func (m *Manager) On(event, name string, handler Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[event] = append(m.handlers[event], namedHandler{name: name, handler: handler})
	m.log.Debug().Str("event", event).Str("handler", name).Msg("hook registered")
}

// OnAll registers a handler that receives every event, after the handlers
// registered for that specific event.
func (m *Manager) OnAll(name string, handler Handler) {
	m.On(anyEvent, name, handler)
}

// Off removes the handlers named name from event. Use OffAll for handlers
// registered with OnAll.
func (m *Manager) Off(event, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[event] = slices.DeleteFunc(m.handlers[event], func(h namedHandler) bool {
		return h.name == name
	})
}

// OffAll removes a handler registered with OnAll.
func (m *Manager) OffAll(name string) {
	m.Off(anyEvent, name)
}

// Emit calls every handler for event in registration order, then the
// OnAll handlers. A failing handler is logged and does not stop the rest.
func (m *Manager) Emit(ctx context.Context, event, subject string, data map[string]any) {
	m.mu.RLock()
	handlers := slices.Concat(m.handlers[event], m.handlers[anyEvent])
	m.mu.RUnlock()
	if len(handlers) == 0 {
		return
	}

	payload := Payload{Event: event, Subject: subject, Data: data, At: m.now().UTC()}
	for _, h := range handlers {
		if err := h.handler(ctx, payload); err != nil {
			m.log.Warn().Err(err).Str("event", event).Str("handler", h.name).Msg("hook handler error")
		}
	}
}

// Count returns the number of handlers registered for an event, not
// counting OnAll handlers.
func (m *Manager) Count(event string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.handlers[event])
}

// Discard is an Emitter that drops every event.
var Discard Emitter = discard{}

type discard struct{}

func (discard) Emit(context.Context, string, string, map[string]any) {}
