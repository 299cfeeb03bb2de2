package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/duanecilliers/openclaw-admin/internal/hooks"
)

const (
	DefaultRecent = 50
	MaxRecent     = 500
)

// Entry is one recorded change.
type Entry struct {
	ID      int64           `json:"id"`
	Event   string          `json:"event"`
	Subject string          `json:"subject"`
	Detail  json.RawMessage `json:"detail,omitempty"`
	At      time.Time       `json:"at"`
}

// Journal records hook events so the console can show what changed.
type Journal struct {
	db *DB
}

// NewJournal creates a Journal over an open database.
func NewJournal(db *DB) *Journal {
	return &Journal{db: db}
}

// Subscribe records every event emitted on m. Failures are reported to the
// bus, which logs them; they never reach the emitter.
func (j *Journal) Subscribe(m *hooks.Manager) {
	m.OnAll("journal", j.Record)
}

// Record stores one event.
func (j *Journal) Record(ctx context.Context, p hooks.Payload) error {
	var detail any
	if len(p.Data) > 0 {
		raw, err := json.Marshal(p.Data)
		if err != nil {
			return fmt.Errorf("encoding journal detail: %w", err)
		}
		detail = string(raw)
	}
	at := p.At
	if at.IsZero() {
		at = time.Now()
	}
	_, err := j.db.sql.ExecContext(ctx,
		`INSERT INTO journal (event, subject, detail, at) VALUES (?, ?, ?, ?)`,
		p.Event, p.Subject, detail, at.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("recording %s: %w", p.Event, err)
	}
	return nil
}

// Recent returns the newest entries first. limit is clamped to
// [1, MaxRecent]; zero or less means DefaultRecent.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	switch {
	case limit <= 0:
		limit = DefaultRecent
	case limit > MaxRecent:
		limit = MaxRecent
	}

	rows, err := j.db.sql.QueryContext(ctx,
		`SELECT id, event, subject, detail, at FROM journal ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying journal: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var (
			e      Entry
			detail *string
			at     string
		)
		if err := rows.Scan(&e.ID, &e.Event, &e.Subject, &detail, &at); err != nil {
			return nil, fmt.Errorf("scanning journal: %w", err)
		}
		if detail != nil {
			e.Detail = json.RawMessage(*detail)
		}
		e.At, err = time.Parse(time.RFC3339Nano, at)
		if err != nil {
			return nil, fmt.Errorf("parsing journal time %q: %w", at, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
