package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Error taxonomy tests ---

func TestNotFoundErrorMessage(t *testing.T) {
	assert.Equal(t, "job not found: abc", (&NotFoundError{Kind: "job", ID: "abc"}).Error())
	assert.Equal(t, "config not found", (&NotFoundError{Kind: "config"}).Error())
}

func TestValidationErrorMessage(t *testing.T) {
	assert.Equal(t, "prompt: required", (&ValidationError{Field: "prompt", Message: "required"}).Error())
	assert.Equal(t, "bad input", (&ValidationError{Message: "bad input"}).Error())
}

func TestIsNotFoundWrapped(t *testing.T) {
	err := fmt.Errorf("loading agent: %w", &NotFoundError{Kind: "agent", ID: "nova"})
	assert.True(t, IsNotFound(err))
	assert.False(t, IsValidation(err))
	assert.False(t, IsNotFound(errors.New("plain")))
}

func TestPersistenceErrorUnwrap(t *testing.T) {
	err := &PersistenceError{Op: "read", Path: "/x", Err: os.ErrPermission}
	assert.ErrorIs(t, err, os.ErrPermission)
	assert.Contains(t, err.Error(), "read /x")
}

func TestExternalErrorMessage(t *testing.T) {
	assert.Equal(t, "discord: unexpected status 401", (&ExternalError{Service: "discord", Status: 401}).Error())
	assert.Contains(t, (&ExternalError{Service: "discord", Err: errors.New("dial")}).Error(), "dial")
}

// --- CronJob tests ---

func TestCronJobAccessors(t *testing.T) {
	var job CronJob
	require.NoError(t, json.Unmarshal([]byte(`{
		"id": "j1",
		"enabled": true,
		"schedule": {"kind": "cron", "expr": "0 9 * * *", "tz": "Europe/London"},
		"payload": {"kind": "agentTurn", "message": "hi", "channel": "discord"},
		"sessionTarget": "isolated"
	}`), &job))

	assert.Equal(t, "j1", job.ID())

	s, err := job.Schedule()
	require.NoError(t, err)
	assert.Equal(t, Schedule{Kind: "cron", Expr: "0 9 * * *", TZ: "Europe/London"}, s)

	p, err := job.Payload()
	require.NoError(t, err)
	assert.Equal(t, "discord", p.Channel)

	assert.True(t, job.Has("sessionTarget"))
	assert.False(t, job.Has("state"))
}

func TestCronJobHasNull(t *testing.T) {
	job := CronJob{"name": json.RawMessage("null")}
	assert.False(t, job.Has("name"))
}

func TestCronJobSet(t *testing.T) {
	job := CronJob{}
	require.NoError(t, job.Set("id", "x"))
	assert.Equal(t, "x", job.ID())

	_, err := job.Schedule()
	assert.True(t, IsValidation(err))
}

func TestJobsFileExtraFields(t *testing.T) {
	var f JobsFile
	require.NoError(t, json.Unmarshal([]byte(`{
		"zeta": true,
		"version": 2,
		"jobs": [{"id": "j1"}],
		"alpha": {"n": 1}
	}`), &f))
	assert.Equal(t, 2, f.Version)
	require.Len(t, f.Jobs, 1)
	assert.Equal(t, "j1", f.Jobs[0].ID())
	assert.Len(t, f.Extra, 2)

	data, err := json.Marshal(f)
	require.NoError(t, err)
	assert.Equal(t, `{"version":2,"jobs":[{"id":"j1"}],"alpha":{"n":1},"zeta":true}`, string(data))
}

func TestJobsFileWithoutExtra(t *testing.T) {
	var f JobsFile
	require.NoError(t, json.Unmarshal([]byte(`{"version": 1}`), &f))
	assert.Nil(t, f.Jobs)
	assert.Nil(t, f.Extra)

	data, err := json.Marshal(f)
	require.NoError(t, err)
	assert.Equal(t, `{"version":1,"jobs":[]}`, string(data))

	assert.Error(t, json.Unmarshal([]byte(`{"version": "one"}`), &f))
}

func TestStrPtr(t *testing.T) {
	assert.Nil(t, StrPtr(""))
	require.NotNil(t, StrPtr("a"))
	assert.Equal(t, "a", *StrPtr("a"))
}
