package skills

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/duanecilliers/openclaw-admin/internal/document"
	"github.com/duanecilliers/openclaw-admin/internal/domain"
	"github.com/duanecilliers/openclaw-admin/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- front matter ---

func TestParseFrontMatter(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  map[string]string
		ok    bool
	}{
		{
			name:  "simple pairs",
			input: "---\nname: weather\ndescription: \"Get the forecast\"\ngroup: 'tools'\n---\n# Weather\n",
			want:  map[string]string{"name": "weather", "description": "Get the forecast", "group": "tools"},
			ok:    true,
		},
		{
			name:  "block value",
			input: "---\nname: notes\ndescription: |\n  First line\n\n  Second line\ncategory: productivity\n---\n",
			want:  map[string]string{"name": "notes", "description": "First line\n\nSecond line", "category": "productivity"},
			ok:    true,
		},
		{
			name:  "folded marker",
			input: "---\ndescription: >\n  folded text\n---",
			want:  map[string]string{"description": "folded text"},
			ok:    true,
		},
		{
			name:  "crlf line endings",
			input: "---\r\nname: win\r\n---\r\n",
			want:  map[string]string{"name": "win"},
			ok:    true,
		},
		{
			name:  "unindented junk ignored",
			input: "---\nname: x\nnot a pair\nmeta-data: y\n---",
			want:  map[string]string{"name": "x", "meta-data": "y"},
			ok:    true,
		},
		{
			name:  "empty block",
			input: "---\n---\nbody",
			want:  map[string]string{},
			ok:    true,
		},
		{
			name:  "unbalanced quotes",
			input: "---\nname: \"open\ndescription: close'\ngroup: \"mixed'\n---\n",
			want:  map[string]string{"name": "open", "description": "close", "group": "mixed"},
			ok:    true,
		},
		{name: "no opening delimiter", input: "name: x\n---\n", ok: false},
		{name: "unterminated", input: "---\nname: x\n", ok: false},
		{name: "empty", input: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseFrontMatter(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestUnquote(t *testing.T) {
	tests := map[string]string{
		`"both"`:     "both",
		`'single'`:   "single",
		`"leading`:   "leading",
		`trailing'`:  "trailing",
		`"`:          "",
		`plain`:      "plain",
		`""quoted""`: `"quoted"`,
		``:           "",
	}
	for in, want := range tests {
		assert.Equal(t, want, unquote(in), "unquote(%q)", in)
	}
}

func TestValidateName(t *testing.T) {
	for _, good := range []string{"weather", "my-skill", "skill.v2"} {
		assert.NoError(t, ValidateName(good), good)
	}
	for _, bad := range []string{"", " ", ".", "..", ".hidden", "a/b", `a\b`, "../x"} {
		assert.True(t, domain.IsValidation(ValidateName(bad)), bad)
	}
}

// --- catalog ---

type fakeWorkspaces map[string]string

func (f fakeWorkspaces) Workspace(_ context.Context, id string) (string, error) {
	ws, ok := f[id]
	if !ok {
		return "", &domain.NotFoundError{Kind: "agent", ID: id}
	}
	if ws == "" {
		return "", &domain.ValidationError{Field: "workspace", Message: "none"}
	}
	return ws, nil
}

type fixture struct {
	catalog *Catalog
	bundled string
	shared  string
	ws      string
}

func writeSkill(t *testing.T, root, dir, manifest string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(root, dir), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, dir, ManifestFile), []byte(manifest), 0o644))
}

func newFixture(t *testing.T, configJSON string) fixture {
	t.Helper()
	base := t.TempDir()
	f := fixture{
		bundled: filepath.Join(base, "bundled"),
		shared:  filepath.Join(base, "shared"),
		ws:      filepath.Join(base, "ws"),
	}
	cfgPath := filepath.Join(base, "openclaw.json")
	require.NoError(t, os.WriteFile(cfgPath, []byte(configJSON), 0o600))
	log := logging.New(nil, "silent")
	store := document.NewStore(document.Options{Path: cfgPath, Log: log})
	f.catalog = NewCatalog(store, Roots{Bundled: f.bundled, Shared: f.shared},
		fakeWorkspaces{"nova": f.ws, "bare": ""}, nil, log)
	return f
}

func TestList_Precedence(t *testing.T) {
	f := newFixture(t, `{}`)
	writeSkill(t, f.bundled, "weather", "---\nname: weather\ndescription: bundled copy\n---\n")
	writeSkill(t, f.shared, "weather", "---\nname: weather\ndescription: shared copy\n---\n")
	writeSkill(t, filepath.Join(f.ws, "skills"), "weather-local", "---\nname: weather\ndescription: workspace copy\ngroup: mine\n---\n")

	got, err := f.catalog.List(context.Background(), "nova")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, domain.SkillSourceWorkspace, got[0].Source)
	assert.Equal(t, "workspace copy", got[0].Description)
	assert.Equal(t, "mine", got[0].Group)

	got, err = f.catalog.List(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, domain.SkillSourceShared, got[0].Source)
	assert.Equal(t, "shared copy", got[0].Description)
}

func TestList_IdempotentAndSorted(t *testing.T) {
	f := newFixture(t, `{"skills": {"entries": {"gh": {"token": "x"}, "Search Pro": {}}}}`)
	writeSkill(t, f.bundled, "gh", "---\nname: gh\ngroup: dev\n---\n")
	writeSkill(t, f.bundled, "search", "---\nname: Search Pro\ncategory: web\n---\n")
	writeSkill(t, f.shared, "alpha", "---\ndescription: no name\n---\n")
	writeSkill(t, f.shared, "broken", "no front matter")
	require.NoError(t, os.MkdirAll(filepath.Join(f.shared, "empty-dir"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(f.shared, "stray.txt"), []byte("x"), 0o644))

	first, err := f.catalog.List(context.Background(), "")
	require.NoError(t, err)
	second, err := f.catalog.List(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	var names []string
	for _, m := range first {
		names = append(names, m.Group+"/"+m.Name)
	}
	assert.Equal(t, []string{"dev/gh", "general/alpha", "web/Search Pro"}, names)

	assert.True(t, first[0].HasConfig, "matched by directory name")
	assert.False(t, first[1].HasConfig)
	assert.True(t, first[2].HasConfig, "matched by manifest name")
	assert.Equal(t, "no name", first[1].Description)
}

func TestList_MissingRootsAndWorkspace(t *testing.T) {
	f := newFixture(t, `{}`)

	got, err := f.catalog.List(context.Background(), "bare")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = f.catalog.List(context.Background(), "ghost")
	assert.True(t, domain.IsNotFound(err))
}

func TestInstall_CopiesTreeFromShared(t *testing.T) {
	f := newFixture(t, `{}`)
	writeSkill(t, f.bundled, "notes", "---\nname: notes\ndescription: bundled\n---\n")
	writeSkill(t, f.shared, "notes", "---\nname: notes\ndescription: shared\n---\n")
	require.NoError(t, os.MkdirAll(filepath.Join(f.shared, "notes", "scripts", "lib"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(f.shared, "notes", "scripts", "lib", "run.sh"), []byte("#!/bin/sh\n"), 0o755))

	m, err := f.catalog.Install(context.Background(), "nova", "notes")
	require.NoError(t, err)
	assert.Equal(t, domain.SkillSourceWorkspace, m.Source)
	assert.Equal(t, "shared", m.Description)

	info, err := os.Stat(filepath.Join(f.ws, "skills", "notes", "scripts", "lib", "run.sh"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())

	got, err := f.catalog.List(context.Background(), "nova")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, domain.SkillSourceWorkspace, got[0].Source)
}

func TestInstall_ByManifestNameFromBundled(t *testing.T) {
	f := newFixture(t, `{}`)
	writeSkill(t, f.bundled, "web-search-dir", "---\nname: websearch\n---\n")

	m, err := f.catalog.Install(context.Background(), "nova", "websearch")
	require.NoError(t, err)
	assert.Equal(t, "websearch", m.Name)
	_, err = os.Stat(filepath.Join(f.ws, "skills", "websearch", ManifestFile))
	assert.NoError(t, err)
}

func TestInstall_ReplacesExistingCopy(t *testing.T) {
	f := newFixture(t, `{}`)
	ctx := context.Background()
	skillsDir := filepath.Join(f.ws, "skills")
	writeSkill(t, skillsDir, "notes", "---\nname: notes\ndescription: old\n---\n")
	require.NoError(t, os.WriteFile(filepath.Join(skillsDir, "notes", "stale.txt"), []byte("x"), 0o644))
	writeSkill(t, f.shared, "notes", "---\nname: notes\ndescription: new\n---\n")

	m, err := f.catalog.Install(ctx, "nova", "notes")
	require.NoError(t, err)
	assert.Equal(t, "new", m.Description)

	_, err = os.Stat(filepath.Join(skillsDir, "notes", "stale.txt"))
	assert.True(t, os.IsNotExist(err))

	entries, err := os.ReadDir(skillsDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "notes", entries[0].Name())
}

func TestInstall_FailureKeepsPreviousCopy(t *testing.T) {
	f := newFixture(t, `{}`)
	ctx := context.Background()
	skillsDir := filepath.Join(f.ws, "skills")
	writeSkill(t, skillsDir, "notes", "---\nname: notes\ndescription: old\n---\n")
	writeSkill(t, f.shared, "notes", "no front matter")

	_, err := f.catalog.Install(ctx, "nova", "notes")
	var pe *domain.ParseError
	require.ErrorAs(t, err, &pe)

	raw, err := os.ReadFile(filepath.Join(skillsDir, "notes", ManifestFile))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "description: old")

	entries, err := os.ReadDir(skillsDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no staging directory left behind")
}

func TestList_SkipsHiddenDirectories(t *testing.T) {
	f := newFixture(t, `{}`)
	writeSkill(t, f.shared, ".notes.tmp-1", "---\nname: notes\n---\n")

	got, err := f.catalog.List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestInstall_Errors(t *testing.T) {
	f := newFixture(t, `{}`)
	ctx := context.Background()

	_, err := f.catalog.Install(ctx, "nova", "missing")
	var nf *domain.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "skill", nf.Kind)

	_, err = f.catalog.Install(ctx, "nova", "../escape")
	assert.True(t, domain.IsValidation(err))

	_, err = f.catalog.Install(ctx, "ghost", "notes")
	assert.True(t, domain.IsNotFound(err))
}

func TestRemove(t *testing.T) {
	f := newFixture(t, `{}`)
	ctx := context.Background()
	writeSkill(t, filepath.Join(f.ws, "skills"), "notes", "---\nname: notes\n---\n")

	require.NoError(t, f.catalog.Remove(ctx, "nova", "notes"))
	_, err := os.Stat(filepath.Join(f.ws, "skills", "notes"))
	assert.True(t, os.IsNotExist(err))

	assert.True(t, domain.IsNotFound(f.catalog.Remove(ctx, "nova", "notes")))
	assert.True(t, domain.IsValidation(f.catalog.Remove(ctx, "nova", "..")))
}
