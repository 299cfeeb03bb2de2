// Package agents derives the console's agent view from the configuration
// document, whichever of its historical shapes the document uses.
package agents

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/duanecilliers/openclaw-admin/internal/document"
	"github.com/duanecilliers/openclaw-admin/internal/domain"
	"github.com/duanecilliers/openclaw-admin/internal/hooks"
	"github.com/duanecilliers/openclaw-admin/internal/logging"
	"github.com/duanecilliers/openclaw-admin/internal/metacache"
	"golang.org/x/sync/errgroup"
)

// PromptFile is the workspace file holding an agent's persona prompt.
const PromptFile = "SOUL.md"

const (
	descriptionRunes = 100
	allChannelsName  = "All channels"
)

// Metadata resolves display metadata from the chat platform.
type Metadata interface {
	AvatarURLs(ctx context.Context, accounts []metacache.AccountToken) map[string]*string
	ChannelNames(ctx context.Context, refs []metacache.GuildRef) map[string]string
}

// Resolver builds agent views and edits agent prompts.
type Resolver struct {
	store  *document.Store
	meta   Metadata
	events hooks.Emitter
	log    *logging.Logger
}

// NewResolver creates a Resolver. A nil meta disables avatar and channel
// name lookups; channels are then shown by id.
func NewResolver(store *document.Store, meta Metadata, events hooks.Emitter, log *logging.Logger) *Resolver {
	if events == nil {
		events = hooks.Discard
	}
	if log == nil {
		log = logging.New(nil, "silent")
	}
	return &Resolver{store: store, meta: meta, events: events, log: log.Sub("agents")}
}

// List returns every agent in document order.
func (r *Resolver) List(ctx context.Context) ([]domain.Agent, error) {
	doc, err := r.store.Read(ctx)
	if err != nil {
		return nil, err
	}

	ps := personas(doc)
	res := make([]resolution, len(ps))
	for i, p := range ps {
		res[i] = resolve(doc, p)
	}

	avatars, names := r.lookupMetadata(ctx, doc, res)

	out := make([]domain.Agent, 0, len(ps))
	for i, p := range ps {
		out = append(out, buildAgent(doc, p, res[i], avatars, names))
	}
	return out, nil
}

// lookupMetadata fetches avatars and channel names concurrently. Both
// lookups degrade to empty results on failure.
func (r *Resolver) lookupMetadata(ctx context.Context, doc *document.Document, res []resolution) (map[string]*string, map[string]string) {
	avatars := map[string]*string{}
	names := map[string]string{}
	if r.meta == nil {
		return avatars, names
	}

	var accounts []metacache.AccountToken
	seenAcct := map[string]bool{}
	var refs []metacache.GuildRef
	for _, rs := range res {
		if rs.AccountID != "" && !seenAcct[rs.AccountID] {
			seenAcct[rs.AccountID] = true
			accounts = append(accounts, metacache.AccountToken{Key: rs.AccountID, Token: accountToken(doc, rs.AccountID)})
		}
		for _, ch := range rs.Channels {
			refs = append(refs, metacache.GuildRef{
				GuildID:    ch.GuildID,
				Token:      channelToken(doc, ch, rs.AccountID),
				ChannelIDs: []string{ch.ChannelID},
			})
		}
	}

	var g errgroup.Group
	g.Go(func() error {
		avatars = r.meta.AvatarURLs(ctx, accounts)
		return nil
	})
	g.Go(func() error {
		names = r.meta.ChannelNames(ctx, refs)
		return nil
	})
	_ = g.Wait()
	return avatars, names
}

func buildAgent(doc *document.Document, p persona, res resolution, avatars map[string]*string, names map[string]string) domain.Agent {
	a := domain.Agent{
		ID:            p.ID,
		Name:          p.Name,
		Emoji:         domain.StrPtr(p.Emoji),
		Model:         domain.StrPtr(p.Model),
		WorkspacePath: p.Workspace,
		Channels:      []domain.AgentChannel{},
		AccountID:     domain.StrPtr(res.AccountID),
		Description:   p.Name,
		SkillCount:    countSkills(p.Workspace),
	}
	if res.AccountID != "" {
		a.AvatarURL = avatars[res.AccountID]
	}

	seen := map[string]bool{}
	wildcard := false
	for _, ch := range res.Channels {
		if ch.ChannelID == domain.AllChannelsID {
			wildcard = true
			continue
		}
		if seen[ch.ChannelID] {
			continue
		}
		seen[ch.ChannelID] = true
		name := names[ch.ChannelID]
		if name == "" {
			name = ch.ChannelID
		}
		a.Channels = append(a.Channels, domain.AgentChannel{ID: ch.ChannelID, Name: name})
	}
	if wildcard {
		a.Channels = append(a.Channels, domain.AgentChannel{ID: domain.AllChannelsID, Name: allChannelsName})
	}

	if primary, ok := res.primary(doc); ok {
		a.ChannelID = domain.StrPtr(primary.ChannelID)
		a.GuildID = domain.StrPtr(primary.GuildID)
		a.Description = describe(primary.prompt(doc), p.Name)
	}
	return a
}

// describe shortens a prompt to a one-line description.
func describe(prompt, fallback string) string {
	runes := []rune(prompt)
	truncated := len(runes) > descriptionRunes
	if truncated {
		runes = runes[:descriptionRunes]
	}
	s := strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(string(runes))
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback
	}
	if truncated {
		s += "…"
	}
	return s
}

// countSkills counts the skill directories of a workspace. A missing
// directory counts as zero.
func countSkills(workspace string) int {
	if workspace == "" {
		return 0
	}
	entries, err := os.ReadDir(filepath.Join(workspace, "skills"))
	if err != nil {
		return 0
	}
	n := 0
	for _, e := range entries {
		if e.IsDir() {
			n++
		}
	}
	return n
}

func accountToken(doc *document.Document, accountID string) string {
	return doc.String(append(accountsPath, accountID, "token")...)
}

// channelToken picks the bot token able to see a channel: the owning
// account's, else the top-level discord token, else the persona's account,
// else the "default" account.
func channelToken(doc *document.Document, ch channelRef, personaAccount string) string {
	for _, candidate := range []string{
		accountToken(doc, ch.AccountID),
		doc.String(append(discordPath, "token")...),
		accountToken(doc, personaAccount),
		accountToken(doc, "default"),
	} {
		if candidate != "" {
			return candidate
		}
	}
	return ""
}

func findPersona(doc *document.Document, id string) (persona, bool) {
	for _, p := range personas(doc) {
		if p.ID == id {
			return p, true
		}
	}
	return persona{}, false
}

// Workspace returns the workspace directory of an agent.
func (r *Resolver) Workspace(ctx context.Context, id string) (string, error) {
	doc, err := r.store.Read(ctx)
	if err != nil {
		return "", err
	}
	p, ok := findPersona(doc, id)
	if !ok {
		return "", &domain.NotFoundError{Kind: "agent", ID: id}
	}
	if p.Workspace == "" {
		return "", &domain.ValidationError{Field: "workspace", Message: "no workspace configured for agent " + id}
	}
	return p.Workspace, nil
}

// DefaultWorkspace returns agents.defaults.workspace.
func (r *Resolver) DefaultWorkspace(ctx context.Context) (string, error) {
	doc, err := r.store.Read(ctx)
	if err != nil {
		return "", err
	}
	ws := doc.String("agents", "defaults", "workspace")
	if ws == "" {
		return "", &domain.ValidationError{Field: "workspace", Message: "no workspace configured"}
	}
	return ws, nil
}

// GetPrompt returns an agent's persona prompt. Agents declared in
// agents.list keep it in SOUL.md in their workspace, and a missing file is
// an empty prompt. Agents derived from discord accounts keep it in the
// systemPrompt of their primary channel binding.
func (r *Resolver) GetPrompt(ctx context.Context, id string) (domain.AgentPrompt, error) {
	doc, err := r.store.Read(ctx)
	if err != nil {
		return domain.AgentPrompt{}, err
	}
	p, ok := findPersona(doc, id)
	if !ok {
		return domain.AgentPrompt{}, &domain.NotFoundError{Kind: "agent", ID: id}
	}

	if p.fromList {
		if p.Workspace == "" {
			return domain.AgentPrompt{}, &domain.NotFoundError{Kind: "workspace", ID: id}
		}
		path := filepath.Join(p.Workspace, PromptFile)
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return domain.AgentPrompt{}, nil
			}
			return domain.AgentPrompt{}, &domain.PersistenceError{Op: "read", Path: path, Err: err}
		}
		return domain.AgentPrompt{Prompt: string(data)}, nil
	}

	primary, ok := resolve(doc, p).primary(doc)
	if !ok {
		return domain.AgentPrompt{}, &domain.NotFoundError{Kind: "binding", ID: id}
	}
	return domain.AgentPrompt{Prompt: primary.prompt(doc)}, nil
}

// UpdatePrompt replaces an agent's persona prompt where GetPrompt reads it.
// Binding prompts are written back through the configuration store at the
// exact path they were read from. A binding prompt cannot be blank: the
// primary binding is the first channel with a prompt, so clearing it would
// move the agent to another channel.
func (r *Resolver) UpdatePrompt(ctx context.Context, id, prompt string) (domain.AgentPrompt, error) {
	doc, err := r.store.Read(ctx)
	if err != nil {
		return domain.AgentPrompt{}, err
	}
	p, ok := findPersona(doc, id)
	if !ok {
		return domain.AgentPrompt{}, &domain.NotFoundError{Kind: "agent", ID: id}
	}

	if p.fromList {
		if p.Workspace == "" {
			return domain.AgentPrompt{}, &domain.NotFoundError{Kind: "workspace", ID: id}
		}
		path := filepath.Join(p.Workspace, PromptFile)
		if err := os.MkdirAll(p.Workspace, 0o755); err != nil {
			return domain.AgentPrompt{}, &domain.PersistenceError{Op: "mkdir", Path: p.Workspace, Err: err}
		}
		if err := os.WriteFile(path, []byte(prompt), 0o644); err != nil {
			return domain.AgentPrompt{}, &domain.PersistenceError{Op: "write", Path: path, Err: err}
		}
		r.log.Info().Str("agent", id).Str("path", path).Msg("prompt saved")
		r.events.Emit(ctx, hooks.EventWorkspaceFileSaved, path, map[string]any{"agentId": id, "file": PromptFile})
		return domain.AgentPrompt{Prompt: prompt}, nil
	}

	if strings.TrimSpace(prompt) == "" {
		return domain.AgentPrompt{}, &domain.ValidationError{Field: "prompt", Message: "must not be empty for a channel-bound agent"}
	}
	primary, ok := resolve(doc, p).primary(doc)
	if !ok {
		return domain.AgentPrompt{}, &domain.NotFoundError{Kind: "binding", ID: id}
	}
	if err := doc.Set(append(primary.Path, "systemPrompt"), prompt); err != nil {
		return domain.AgentPrompt{}, err
	}
	if err := r.store.Write(ctx, doc); err != nil {
		return domain.AgentPrompt{}, err
	}
	r.log.Info().Str("agent", id).Str("channel", primary.ChannelID).Msg("binding prompt saved")
	return domain.AgentPrompt{Prompt: prompt}, nil
}
