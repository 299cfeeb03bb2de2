package document

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/duanecilliers/openclaw-admin/internal/domain"
	"github.com/duanecilliers/openclaw-admin/internal/hooks"
	"github.com/duanecilliers/openclaw-admin/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	events []hooks.Payload
}

func (r *recorder) Emit(_ context.Context, event, subject string, data map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, hooks.Payload{Event: event, Subject: subject, Data: data})
}

func (r *recorder) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, e := range r.events {
		out = append(out, e.Event)
	}
	return out
}

func newTestStore(t *testing.T, initial string) (*Store, *recorder) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "openclaw.json")
	if initial != "" {
		require.NoError(t, os.WriteFile(path, []byte(initial), 0o600))
	}
	rec := &recorder{}
	s := NewStore(Options{Path: path, Log: logging.New(nil, "silent"), Events: rec})

	// deterministic, strictly increasing backup timestamps
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	var tick int
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	return s, rec
}

func TestRead_Missing(t *testing.T) {
	s, _ := newTestStore(t, "")
	_, err := s.Read(context.Background())
	var nf *domain.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "config", nf.Kind)

	_, err = s.Stat()
	assert.True(t, domain.IsNotFound(err))
}

func TestRead_Malformed(t *testing.T) {
	s, _ := newTestStore(t, `{"agents": [`)
	_, err := s.Read(context.Background())
	var pe *domain.ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, s.Path(), pe.Path)
}

func TestWrite_RoundTrip(t *testing.T) {
	s, rec := newTestStore(t, `{"b": {"y": 1, "x": 2}, "a": "keep"}`)
	ctx := context.Background()

	doc, err := s.Read(ctx)
	require.NoError(t, err)
	require.NoError(t, doc.Set([]string{"b", "x"}, "changed"))
	require.NoError(t, s.Write(ctx, doc))

	back, err := s.Read(ctx)
	require.NoError(t, err)
	want, err := normalize(doc.Root())
	require.NoError(t, err)
	assert.Equal(t, want, back.Root())
	assert.Equal(t, []string{"b", "a"}, back.Keys())

	raw, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(raw), "}\n"))
	assert.Contains(t, string(raw), "\n  \"b\": {\n    \"y\": 1,")

	assert.Equal(t, []string{hooks.EventConfigWritten}, rec.names())
}

func TestWrite_CreatesMissingFile(t *testing.T) {
	s, _ := newTestStore(t, "")
	ctx := context.Background()
	require.NoError(t, s.Write(ctx, New(map[string]any{"agents": map[string]any{}})))

	names, err := s.Backups()
	require.NoError(t, err)
	assert.Empty(t, names, "nothing to back up on first write")

	_, err = s.Read(ctx)
	require.NoError(t, err)
}

func TestWrite_InterruptedBeforeRename(t *testing.T) {
	original := `{"version": "old"}`
	s, rec := newTestStore(t, original)
	ctx := context.Background()

	s.beforeRename = func(tmp string) error {
		_, err := os.Stat(tmp)
		require.NoError(t, err, "temp file exists before rename")
		return errors.New("simulated crash")
	}

	err := s.Write(ctx, New(map[string]any{"version": "new"}))
	var pe *domain.PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "rename", pe.Op)

	doc, err := s.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, "old", doc.String("version"))
	assert.Empty(t, rec.names())

	entries, err := os.ReadDir(filepath.Dir(s.Path()))
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp-")
	}
}

func TestRead_IgnoresLeftoverTempFile(t *testing.T) {
	s, _ := newTestStore(t, `{"version": "old"}`)

	// a crash after the temp write leaves a complete sibling behind
	leftover := s.Path() + ".tmp-0000"
	require.NoError(t, os.WriteFile(leftover, []byte(`{"version": "new"}`), 0o600))

	doc, err := s.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "old", doc.String("version"))
}

func TestWrite_BackupBound(t *testing.T) {
	s, _ := newTestStore(t, `{"n": 0}`)
	ctx := context.Background()

	for i := 1; i <= 15; i++ {
		require.NoError(t, s.Write(ctx, New(map[string]any{"n": i})))
	}

	names, err := s.Backups()
	require.NoError(t, err)
	require.Len(t, names, 10)

	// backups 6..15 hold the documents written before writes 6..15: n=5..14
	for i, name := range names {
		raw, err := os.ReadFile(filepath.Join(s.BackupDir(), name))
		require.NoError(t, err)
		doc, err := Parse(raw)
		require.NoError(t, err)
		n, _ := doc.Int("n")
		assert.Equal(t, i+5, n, name)
	}
	assert.Equal(t, "openclaw-20260301T120006.000000000Z.json", names[0])
	assert.Equal(t, "openclaw-20260301T120015.000000000Z.json", names[9])
}

func TestWrite_BackupFailureIsSwallowed(t *testing.T) {
	s, _ := newTestStore(t, `{"n": 0}`)
	// a regular file where the backup directory should be
	require.NoError(t, os.WriteFile(s.backupDir, []byte("x"), 0o600))

	require.NoError(t, s.Write(context.Background(), New(map[string]any{"n": 1})))

	doc, err := s.Read(context.Background())
	require.NoError(t, err)
	n, _ := doc.Int("n")
	assert.Equal(t, 1, n)
}

func TestWrite_KeepsFileMode(t *testing.T) {
	s, _ := newTestStore(t, `{}`)
	require.NoError(t, os.Chmod(s.Path(), 0o640))
	require.NoError(t, s.Write(context.Background(), New(nil)))

	info, err := os.Stat(s.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o640), info.Mode().Perm())
}

func TestUpdate(t *testing.T) {
	s, _ := newTestStore(t, `{"a": 1}`)
	ctx := context.Background()

	require.NoError(t, s.Update(ctx, func(d *Document) error {
		return d.Set([]string{"b"}, "two")
	}))
	doc, err := s.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, "two", doc.String("b"))

	boom := errors.New("boom")
	assert.ErrorIs(t, s.Update(ctx, func(*Document) error { return boom }), boom)
}

func TestWatch_ExternalChange(t *testing.T) {
	s, rec := newTestStore(t, `{"a": 1}`)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, s.Watch(ctx))

	// own writes are not reported as external changes
	require.NoError(t, s.Write(ctx, New(map[string]any{"a": 2})))
	time.Sleep(2 * watchSettle)

	require.NoError(t, os.WriteFile(s.Path(), []byte(`{"a": 3}`), 0o600))

	assert.Eventually(t, func() bool {
		for _, n := range rec.names() {
			if n == hooks.EventConfigChanged {
				return true
			}
		}
		return false
	}, 5*time.Second, 50*time.Millisecond)

	assert.Equal(t, hooks.EventConfigWritten, rec.names()[0])
}
