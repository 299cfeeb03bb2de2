package agents

import (
	"strconv"
	"strings"

	"github.com/duanecilliers/openclaw-admin/internal/document"
)

var (
	discordPath  = []string{"channels", "discord"}
	accountsPath = []string{"channels", "discord", "accounts"}
	guildsPath   = []string{"channels", "discord", "guilds"}
)

// persona is one agent as declared by the document, before binding
// resolution.
type persona struct {
	ID        string
	Name      string
	Emoji     string
	Model     string
	Workspace string
	fromList  bool // declared in agents.list rather than derived from an account
}

// hasAgentList reports whether the document declares agents explicitly.
func hasAgentList(doc *document.Document) bool {
	return len(doc.List("agents", "list")) > 0
}

// personas returns the agents declared by whichever shape the document has.
func personas(doc *document.Document) []persona {
	defaultWS := doc.String("agents", "defaults", "workspace")

	if hasAgentList(doc) {
		var out []persona
		for i, item := range doc.List("agents", "list") {
			entry, ok := item.(map[string]any)
			if !ok {
				continue
			}
			id, _ := entry["id"].(string)
			if id == "" {
				continue
			}
			p := persona{ID: id, Name: id, fromList: true, Workspace: defaultWS}
			if s := doc.String("agents", "list", strconv.Itoa(i), "identity", "name"); s != "" {
				p.Name = s
			}
			p.Emoji = doc.String("agents", "list", strconv.Itoa(i), "identity", "emoji")
			p.Model = modelName(entry["model"])
			if ws, _ := entry["workspace"].(string); ws != "" {
				p.Workspace = ws
			}
			out = append(out, p)
		}
		return out
	}

	var out []persona
	for _, id := range doc.Keys(accountsPath...) {
		acct := doc.Map(append(accountsPath, id)...)
		if acct == nil {
			continue
		}
		p := persona{ID: id, Name: id, Workspace: defaultWS}
		if s, _ := acct["name"].(string); s != "" {
			p.Name = s
		}
		p.Emoji, _ = acct["emoji"].(string)
		p.Model = modelName(acct["model"])
		if ws, _ := acct["workspace"].(string); ws != "" {
			p.Workspace = ws
		}
		out = append(out, p)
	}
	return out
}

// modelName accepts either "provider/model" or {"primary": "provider/model"}.
func modelName(v any) string {
	switch m := v.(type) {
	case string:
		return m
	case map[string]any:
		s, _ := m["primary"].(string)
		return s
	}
	return ""
}

// channelRef locates one configured channel inside the document.
type channelRef struct {
	AccountID string // owning account, "" for top-level guilds
	GuildID   string
	ChannelID string
	Path      []string // path of the channel object
}

func (c channelRef) prompt(doc *document.Document) string {
	return doc.String(append(c.Path, "systemPrompt")...)
}

func (c channelRef) hasPrompt(doc *document.Document) bool {
	return strings.TrimSpace(c.prompt(doc)) != ""
}

// guildChannels lists every channel under a guilds object, in document
// order. Channels whose config is not an object are still listed.
func guildChannels(doc *document.Document, accountID string, guilds []string) []channelRef {
	var out []channelRef
	for _, gid := range doc.Keys(guilds...) {
		chansPath := append(append([]string{}, guilds...), gid, "channels")
		for _, cid := range doc.Keys(chansPath...) {
			out = append(out, channelRef{
				AccountID: accountID,
				GuildID:   gid,
				ChannelID: cid,
				Path:      append(append([]string{}, chansPath...), cid),
			})
		}
	}
	return out
}

func accountGuildsPath(accountID string) []string {
	return []string{"channels", "discord", "accounts", accountID, "guilds"}
}
