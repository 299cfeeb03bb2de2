package hooks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/duanecilliers/openclaw-admin/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testManager() *Manager {
	return NewManager(logging.New(nil, "silent"))
}

func TestManager_On_And_Emit(t *testing.T) {
	m := testManager()
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	m.now = func() time.Time { return fixed }

	var got Payload
	m.On(EventCronJobChanged, "test", func(_ context.Context, p Payload) error {
		got = p
		return nil
	})

	m.Emit(context.Background(), EventCronJobChanged, "job-1", map[string]any{"action": "create"})
	assert.Equal(t, EventCronJobChanged, got.Event)
	assert.Equal(t, "job-1", got.Subject)
	assert.Equal(t, "create", got.Data["action"])
	assert.Equal(t, fixed, got.At)
}

func TestManager_Emit_MultipleHandlers(t *testing.T) {
	m := testManager()

	var order []string
	m.On(EventConfigWritten, "first", func(_ context.Context, _ Payload) error {
		order = append(order, "first")
		return nil
	})
	m.OnAll("all", func(_ context.Context, _ Payload) error {
		order = append(order, "all")
		return nil
	})
	m.On(EventConfigWritten, "second", func(_ context.Context, _ Payload) error {
		order = append(order, "second")
		return nil
	})

	m.Emit(context.Background(), EventConfigWritten, "", nil)
	assert.Equal(t, []string{"first", "second", "all"}, order)
}

func TestManager_OnAll_ReceivesEveryEvent(t *testing.T) {
	m := testManager()

	var events []string
	m.OnAll("journal", func(_ context.Context, p Payload) error {
		events = append(events, p.Event)
		return nil
	})

	m.Emit(context.Background(), EventSkillInstalled, "weather", nil)
	m.Emit(context.Background(), EventSkillRemoved, "weather", nil)
	assert.Equal(t, []string{EventSkillInstalled, EventSkillRemoved}, events)

	m.OffAll("journal")
	m.Emit(context.Background(), EventConsoleStop, "", nil)
	assert.Len(t, events, 2)
}

func TestManager_Emit_HandlerError(t *testing.T) {
	m := testManager()

	var secondCalled bool
	m.On(EventConsoleStart, "failing", func(_ context.Context, _ Payload) error {
		return errors.New("handler broke")
	})
	m.On(EventConsoleStart, "second", func(_ context.Context, _ Payload) error {
		secondCalled = true
		return nil
	})

	m.Emit(context.Background(), EventConsoleStart, "", nil)
	assert.True(t, secondCalled)
}

func TestManager_Emit_NoHandlers(t *testing.T) {
	m := testManager()
	m.Emit(context.Background(), EventConsoleStop, "", nil)
}

func TestManager_Off(t *testing.T) {
	m := testManager()

	var callCount int
	m.On(EventConsoleStart, "removable", func(_ context.Context, _ Payload) error {
		callCount++
		return nil
	})

	m.Emit(context.Background(), EventConsoleStart, "", nil)
	assert.Equal(t, 1, callCount)

	m.Off(EventConsoleStart, "removable")
	m.Emit(context.Background(), EventConsoleStart, "", nil)
	assert.Equal(t, 1, callCount)
}

func TestManager_Count(t *testing.T) {
	m := testManager()

	assert.Equal(t, 0, m.Count(EventConsoleStart))
	m.On(EventConsoleStart, "h1", func(_ context.Context, _ Payload) error { return nil })
	m.On(EventConsoleStart, "h2", func(_ context.Context, _ Payload) error { return nil })
	m.OnAll("h3", func(_ context.Context, _ Payload) error { return nil })
	assert.Equal(t, 2, m.Count(EventConsoleStart))
	assert.Equal(t, 0, m.Count(EventConfigChanged))

	m.Off(EventConsoleStart, "h1")
	assert.Equal(t, 1, m.Count(EventConsoleStart))
}

func TestManager_RegisterDuringEmit(t *testing.T) {
	m := testManager()

	var late int
	m.On(EventCronJobChanged, "registrar", func(_ context.Context, _ Payload) error {
		m.On(EventCronJobChanged, "late", func(_ context.Context, _ Payload) error {
			late++
			return nil
		})
		return nil
	})

	m.Emit(context.Background(), EventCronJobChanged, "j1", nil)
	assert.Equal(t, 0, late, "handlers added while emitting wait for the next event")
	m.Emit(context.Background(), EventCronJobChanged, "j1", nil)
	assert.Equal(t, 1, late)
}

func TestAllEvents(t *testing.T) {
	require.Len(t, AllEvents, 8)
	assert.Contains(t, AllEvents, EventConfigWritten)
	assert.Contains(t, AllEvents, EventConfigChanged)
}

func TestDiscard(t *testing.T) {
	Discard.Emit(context.Background(), EventConfigWritten, "", nil)
}
