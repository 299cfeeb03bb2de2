package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
)

// JobsFile is the on-disk cron jobs document. Top-level keys other than
// version and jobs belong to the external executor; they are kept in Extra
// and written back unchanged.
type JobsFile struct {
	Version int
	Jobs    []CronJob
	Extra   map[string]json.RawMessage
}

// UnmarshalJSON splits the document into its known fields and Extra.
func (f *JobsFile) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*f = JobsFile{}
	if raw, ok := fields["version"]; ok {
		if err := json.Unmarshal(raw, &f.Version); err != nil {
			return fmt.Errorf("version: %w", err)
		}
		delete(fields, "version")
	}
	if raw, ok := fields["jobs"]; ok {
		if err := json.Unmarshal(raw, &f.Jobs); err != nil {
			return fmt.Errorf("jobs: %w", err)
		}
		delete(fields, "jobs")
	}
	if len(fields) > 0 {
		f.Extra = fields
	}
	return nil
}

// MarshalJSON writes version and jobs first, then the Extra keys in sorted
// order. Extra entries named version or jobs are ignored.
func (f JobsFile) MarshalJSON() ([]byte, error) {
	jobs := f.Jobs
	if jobs == nil {
		jobs = []CronJob{}
	}
	jobsRaw, err := json.Marshal(jobs)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `{"version":%d,"jobs":`, f.Version)
	buf.Write(jobsRaw)
	for _, k := range slices.Sorted(maps.Keys(f.Extra)) {
		if k == "version" || k == "jobs" {
			continue
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.WriteByte(',')
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(f.Extra[k])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// CronJob is one scheduled job record. Fields are kept as raw JSON so that
// keys written by the external executor survive a round trip, and so that a
// top-level merge replaces nested objects wholesale.
type CronJob map[string]json.RawMessage

// Schedule says when a job fires.
type Schedule struct {
	Kind    string `json:"kind"` // "cron" | "at" | "every"
	Expr    string `json:"expr,omitempty"`
	TZ      string `json:"tz,omitempty"`
	AtMs    int64  `json:"atMs,omitempty"`
	EveryMs int64  `json:"everyMs,omitempty"`
}

// Payload says what a job does when it fires.
type Payload struct {
	Kind    string `json:"kind"`
	Message string `json:"message,omitempty"`
	Channel string `json:"channel,omitempty"`
	To      string `json:"to,omitempty"`
	Text    string `json:"text,omitempty"`
	Deliver bool   `json:"deliver,omitempty"`
}

// JobState is written by the external executor.
type JobState struct {
	LastRunAtMs    int64  `json:"lastRunAtMs,omitempty"`
	LastStatus     string `json:"lastStatus,omitempty"`
	NextRunAtMs    int64  `json:"nextRunAtMs,omitempty"`
	LastDurationMs int64  `json:"lastDurationMs,omitempty"`
}

// ID returns the job id, or "" if absent or not a string.
func (j CronJob) ID() string {
	var id string
	if raw, ok := j["id"]; ok {
		_ = json.Unmarshal(raw, &id)
	}
	return id
}

// Schedule decodes the schedule field.
func (j CronJob) Schedule() (Schedule, error) {
	var s Schedule
	err := j.decode("schedule", &s)
	return s, err
}

// Payload decodes the payload field.
func (j CronJob) Payload() (Payload, error) {
	var p Payload
	err := j.decode("payload", &p)
	return p, err
}

// Set encodes v into field key.
func (j CronJob) Set(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	j[key] = raw
	return nil
}

// Has reports whether key is present with a non-null value.
func (j CronJob) Has(key string) bool {
	raw, ok := j[key]
	return ok && string(raw) != "null"
}

func (j CronJob) decode(key string, target any) error {
	raw, ok := j[key]
	if !ok {
		return &ValidationError{Field: key, Message: "missing"}
	}
	return json.Unmarshal(raw, target)
}

// RunResult is the outcome of an out-of-process trigger.
type RunResult struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	TimedOut bool   `json:"timedOut,omitempty"`
}
