// Package skills merges the bundled, shared, and per-agent skill
// directories into one catalog and installs skills into agent workspaces.
package skills

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/duanecilliers/openclaw-admin/internal/document"
	"github.com/duanecilliers/openclaw-admin/internal/domain"
	"github.com/duanecilliers/openclaw-admin/internal/hooks"
	"github.com/duanecilliers/openclaw-admin/internal/logging"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// ManifestFile is the file that marks a directory as a skill.
const ManifestFile = "SKILL.md"

const defaultGroup = "general"

// Roots are the read-only skill directories shared by every agent.
type Roots struct {
	Bundled string
	Shared  string
}

// Workspaces resolves agent workspace directories.
type Workspaces interface {
	Workspace(ctx context.Context, agentID string) (string, error)
}

// Catalog lists, installs, and removes skills.
type Catalog struct {
	store      *document.Store
	roots      Roots
	workspaces Workspaces
	events     hooks.Emitter
	log        *logging.Logger
}

// NewCatalog creates a Catalog.
func NewCatalog(store *document.Store, roots Roots, workspaces Workspaces, events hooks.Emitter, log *logging.Logger) *Catalog {
	if events == nil {
		events = hooks.Discard
	}
	if log == nil {
		log = logging.New(nil, "silent")
	}
	return &Catalog{store: store, roots: roots, workspaces: workspaces, events: events, log: log.Sub("skills")}
}

// List returns the merged catalog sorted by group, then name. With an
// agent id, that agent's workspace skills are included and override shared
// and bundled skills of the same name; shared skills override bundled ones.
func (c *Catalog) List(ctx context.Context, agentID string) ([]domain.SkillManifest, error) {
	entries, err := c.configEntries(ctx)
	if err != nil {
		return nil, err
	}

	var wsRoot string
	if agentID != "" {
		ws, err := c.workspaces.Workspace(ctx, agentID)
		switch {
		case err == nil:
			wsRoot = filepath.Join(ws, "skills")
		case domain.IsValidation(err):
			// no workspace configured: shared roots only
		default:
			return nil, err
		}
	}

	var bundled, shared, local []domain.SkillManifest
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		bundled = scanRoot(gctx, c.roots.Bundled, domain.SkillSourceBundled, entries)
		return nil
	})
	g.Go(func() error {
		shared = scanRoot(gctx, c.roots.Shared, domain.SkillSourceShared, entries)
		return nil
	})
	if wsRoot != "" {
		g.Go(func() error {
			local = scanRoot(gctx, wsRoot, domain.SkillSourceWorkspace, entries)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := map[string]domain.SkillManifest{}
	for _, layer := range [][]domain.SkillManifest{bundled, shared, local} {
		for _, m := range layer {
			merged[m.Name] = m
		}
	}

	out := make([]domain.SkillManifest, 0, len(merged))
	for _, m := range merged {
		out = append(out, m)
	}
	slices.SortFunc(out, func(a, b domain.SkillManifest) int {
		if a.Group != b.Group {
			return strings.Compare(a.Group, b.Group)
		}
		return strings.Compare(a.Name, b.Name)
	})
	return out, nil
}

// Install copies a skill into an agent's workspace. The shared root is
// searched before the bundled root, by directory name or manifest name. An
// existing copy in the workspace is replaced.
func (c *Catalog) Install(ctx context.Context, agentID, name string) (domain.SkillManifest, error) {
	if err := ValidateName(name); err != nil {
		return domain.SkillManifest{}, err
	}
	ws, err := c.workspaces.Workspace(ctx, agentID)
	if err != nil {
		return domain.SkillManifest{}, err
	}
	entries, err := c.configEntries(ctx)
	if err != nil {
		return domain.SkillManifest{}, err
	}

	src, err := c.findSource(ctx, name)
	if err != nil {
		return domain.SkillManifest{}, err
	}

	dest := filepath.Join(ws, "skills", name)
	staged := filepath.Join(ws, "skills", "."+name+".tmp-"+uuid.NewString())
	if err := copyTree(src, staged); err != nil {
		_ = os.RemoveAll(staged)
		return domain.SkillManifest{}, &domain.PersistenceError{Op: "copy", Path: staged, Err: err}
	}
	if _, ok := readManifest(staged, name, domain.SkillSourceWorkspace, entries); !ok {
		_ = os.RemoveAll(staged)
		return domain.SkillManifest{}, &domain.ParseError{Path: filepath.Join(src, ManifestFile), Err: errors.New("invalid front matter")}
	}
	if err := swapDir(staged, dest); err != nil {
		_ = os.RemoveAll(staged)
		return domain.SkillManifest{}, &domain.PersistenceError{Op: "rename", Path: dest, Err: err}
	}

	m, _ := readManifest(dest, name, domain.SkillSourceWorkspace, entries)
	c.log.Info().Str("agent", agentID).Str("skill", name).Str("from", src).Msg("skill installed")
	c.events.Emit(ctx, hooks.EventSkillInstalled, name, map[string]any{"agentId": agentID, "from": src})
	return m, nil
}

// Remove deletes a skill from an agent's workspace.
func (c *Catalog) Remove(ctx context.Context, agentID, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	ws, err := c.workspaces.Workspace(ctx, agentID)
	if err != nil {
		return err
	}
	dir := filepath.Join(ws, "skills", name)
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return &domain.NotFoundError{Kind: "skill", ID: name}
	}
	if err := os.RemoveAll(dir); err != nil {
		return &domain.PersistenceError{Op: "remove", Path: dir, Err: err}
	}
	c.log.Info().Str("agent", agentID).Str("skill", name).Msg("skill removed")
	c.events.Emit(ctx, hooks.EventSkillRemoved, name, map[string]any{"agentId": agentID})
	return nil
}

// ValidateName rejects names that are not a single visible path element.
func ValidateName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return &domain.ValidationError{Field: "name", Message: "skill name is required"}
	case strings.HasPrefix(name, "."), strings.ContainsAny(name, `/\`), filepath.Base(name) != name:
		return &domain.ValidationError{Field: "name", Message: "invalid skill name: " + name}
	}
	return nil
}

func (c *Catalog) configEntries(ctx context.Context) (map[string]any, error) {
	doc, err := c.store.Read(ctx)
	if err != nil {
		return nil, err
	}
	return doc.Map("skills", "entries"), nil
}

func (c *Catalog) findSource(ctx context.Context, name string) (string, error) {
	for _, root := range []string{c.roots.Shared, c.roots.Bundled} {
		if root == "" {
			continue
		}
		dir := filepath.Join(root, name)
		if _, err := os.Stat(filepath.Join(dir, ManifestFile)); err == nil {
			return dir, nil
		}
		for _, m := range scanRoot(ctx, root, "", nil) {
			if m.Name == name {
				return m.Dir, nil
			}
		}
	}
	return "", &domain.NotFoundError{Kind: "skill", ID: name}
}

// swapDir moves staged to dest. An existing dest is set aside first and put
// back if the move fails.
func swapDir(staged, dest string) error {
	old := filepath.Join(filepath.Dir(dest), "."+filepath.Base(dest)+".old-"+uuid.NewString())
	if err := os.Rename(dest, old); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		old = ""
	}
	if err := os.Rename(staged, dest); err != nil {
		if old != "" {
			_ = os.Rename(old, dest)
		}
		return err
	}
	if old != "" {
		_ = os.RemoveAll(old)
	}
	return nil
}

// scanRoot reads every skill directory directly under root. A missing root
// yields nothing; hidden directories and directories without a readable
// manifest are skipped.
func scanRoot(ctx context.Context, root string, source domain.SkillSource, entries map[string]any) []domain.SkillManifest {
	if root == "" {
		return nil
	}
	dirents, err := os.ReadDir(root)
	if err != nil {
		return nil
	}
	var out []domain.SkillManifest
	for _, e := range dirents {
		if ctx.Err() != nil {
			return out
		}
		if strings.HasPrefix(e.Name(), ".") {
			continue
		}
		dir := filepath.Join(root, e.Name())
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			continue
		}
		if m, ok := readManifest(dir, e.Name(), source, entries); ok {
			out = append(out, m)
		}
	}
	return out
}

func readManifest(dir, dirName string, source domain.SkillSource, entries map[string]any) (domain.SkillManifest, bool) {
	raw, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if err != nil {
		return domain.SkillManifest{}, false
	}
	fm, ok := ParseFrontMatter(string(raw))
	if !ok {
		return domain.SkillManifest{}, false
	}
	m := domain.SkillManifest{
		Name:        firstNonEmpty(fm["name"], dirName),
		Description: fm["description"],
		Group:       firstNonEmpty(fm["group"], fm["category"], defaultGroup),
		Source:      source,
		Dir:         dir,
	}
	_, byDir := entries[dirName]
	_, byName := entries[m.Name]
	m.HasConfig = byDir || byName
	return m, true
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// copyTree copies a directory recursively. Symlinks are recreated, not
// followed.
func copyTree(src, dest string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dest, rel)
		info, err := d.Info()
		if err != nil {
			return err
		}
		switch {
		case d.IsDir():
			return os.MkdirAll(target, info.Mode().Perm()|0o700)
		case d.Type()&fs.ModeSymlink != 0:
			link, err := os.Readlink(path)
			if err != nil {
				return err
			}
			return os.Symlink(link, target)
		case d.Type().IsRegular():
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			return os.WriteFile(target, data, info.Mode().Perm())
		}
		return nil
	})
}
