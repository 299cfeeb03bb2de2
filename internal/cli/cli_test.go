package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDoc = `{
	// written by hand
	"gateway": {"port": 1, "mode": "local"},
	"agents": {"list": [{"id": "nova", "identity": {"name": "Nova"}}]},
	"channels": {"telegram": {"botToken": "tg-secret"}}
}`

type env struct {
	dir      string
	settings string
	doc      string
}

func setup(t *testing.T) env {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("OPENCLAW_ADMIN_HOME", filepath.Join(dir, "admin"))

	home := filepath.Join(dir, "oc")
	require.NoError(t, os.MkdirAll(home, 0o700))
	doc := filepath.Join(home, "openclaw.json")
	require.NoError(t, os.WriteFile(doc, []byte(testDoc), 0o600))

	settingsPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(settingsPath, []byte(
		"openclaw:\n  home: "+home+"\n  command: /bin/false\njournal:\n  enabled: false\nlogging:\n  level: silent\n"), 0o600))

	return env{dir: dir, settings: settingsPath, doc: doc}
}

func run(t *testing.T, e env, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", e.settings}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestVersionCmd(t *testing.T) {
	e := setup(t)
	out, err := run(t, e, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "openclaw-admin")
}

func TestConfigPathCmd(t *testing.T) {
	e := setup(t)
	out, err := run(t, e, "config", "path")
	require.NoError(t, err)
	assert.Equal(t, e.doc+"\n", out)
}

func TestConfigGetMasksSecrets(t *testing.T) {
	e := setup(t)

	out, err := run(t, e, "config", "get", "gateway.port")
	require.NoError(t, err)
	assert.Equal(t, "1\n", out)

	out, err = run(t, e, "config", "get", "channels.telegram.botToken")
	require.NoError(t, err)
	assert.NotContains(t, out, "tg-secret")

	out, err = run(t, e, "config", "get", "channels.telegram.botToken", "--reveal")
	require.NoError(t, err)
	assert.Equal(t, "tg-secret\n", out)

	out, err = run(t, e, "config", "get", "gateway")
	require.NoError(t, err)
	assert.Contains(t, out, "port: 1")

	_, err = run(t, e, "config", "get", "gateway.missing")
	assert.Error(t, err)

	_, err = run(t, e, "config", "get", "__proto__.x")
	assert.Error(t, err)
}

func TestConfigSetAndUnset(t *testing.T) {
	e := setup(t)

	out, err := run(t, e, "config", "set", "gateway.port", "18789")
	require.NoError(t, err)
	assert.Contains(t, out, "Set gateway.port = 18789")

	out, err = run(t, e, "config", "get", "gateway.port")
	require.NoError(t, err)
	assert.Equal(t, "18789\n", out)

	_, err = run(t, e, "config", "unset", "gateway.mode")
	require.NoError(t, err)
	_, err = run(t, e, "config", "get", "gateway.mode")
	assert.Error(t, err)

	_, err = run(t, e, "config", "unset", "gateway.mode")
	assert.Error(t, err)

	// writes go through the store, so the previous document is backed up
	entries, err := os.ReadDir(filepath.Join(filepath.Dir(e.doc), "backups"))
	require.NoError(t, err)
	assert.NotEmpty(t, entries)
}

func TestAgentsListCmd(t *testing.T) {
	e := setup(t)
	out, err := run(t, e, "agents", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "nova")
	assert.Contains(t, out, "Nova")

	out, err = run(t, e, "agents", "list", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"id": "nova"`)
}

func TestCronCmds(t *testing.T) {
	e := setup(t)
	out, err := run(t, e, "cron", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "(no jobs)")

	_, err = run(t, e, "cron", "run", "missing")
	assert.Error(t, err)
}

func TestSkillsListCmd(t *testing.T) {
	e := setup(t)
	skill := filepath.Join(e.dir, "openclaw", "skills", "weather")
	require.NoError(t, os.MkdirAll(skill, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(skill, "SKILL.md"),
		[]byte("---\nname: weather\ndescription: Forecasts\n---\n"), 0o644))

	out, err := run(t, e, "skills", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "weather")
	assert.Contains(t, out, "Forecasts")
}

func TestStatusCmd(t *testing.T) {
	e := setup(t)
	out, err := run(t, e, "status")
	require.NoError(t, err)
	assert.Contains(t, out, e.doc)
	assert.Contains(t, out, "Gateway:  stopped port=1")
	assert.Contains(t, out, "Agents:   1")
	assert.Contains(t, out, "Cron:     0 job(s)")
}

func TestServeRejectsInvalidSettings(t *testing.T) {
	e := setup(t)
	_, err := run(t, e, "serve", "--bind", "everywhere")
	assert.ErrorContains(t, err, "validation failed")
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{"true", true},
		{"false", false},
		{"null", nil},
		{"42", json.Number("42")},
		{"1.5", json.Number("1.5")},
		{`"quoted"`, "quoted"},
		{"12abc", "12abc"},
		{"hello", "hello"},
		{"TRUE", "TRUE"},
		{"1 2", "1 2"},
		{`["a","b"]`, []any{"a", "b"}},
		{`{"k":true,"n":3}`, map[string]any{"k": true, "n": json.Number("3")}},
		{"{not json", "{not json"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseValue(tt.in))
		})
	}
}

func TestPrintValue(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printValue(&buf, map[string]any{
		"port":  json.Number("18789"),
		"hosts": []any{"a", json.Number("1.5")},
	}))
	assert.Equal(t, "hosts:\n  - a\n  - 1.5\nport: 18789\n", buf.String())

	buf.Reset()
	require.NoError(t, printValue(&buf, json.Number("7")))
	assert.Equal(t, "7\n", buf.String())
}
