package agents

import (
	"strings"

	"github.com/duanecilliers/openclaw-admin/internal/document"
)

// strategy is one way of linking a persona to the channels it serves.
// Strategies are tried in a fixed order; the first one that yields at least
// one channel wins.
type strategy struct {
	name     string
	channels func(doc *document.Document, p persona, accountID string) []channelRef
}

var strategies = []strategy{
	{name: "explicitBinding", channels: explicitBinding},
	{name: "accountKeyBinding", channels: accountKeyBinding},
	{name: "channelAccountField", channels: channelAccountField},
	{name: "promptNameHeuristic", channels: promptNameHeuristic},
}

// boundAccount returns the discord account linked to a persona: the
// account named by an explicit agents.bindings entry, otherwise an account
// whose key equals the persona id.
func boundAccount(doc *document.Document, p persona) string {
	if acct := bindingAccount(doc, p.ID); acct != "" {
		return acct
	}
	if doc.Map(append(accountsPath, p.ID)...) != nil {
		return p.ID
	}
	return ""
}

func bindingAccount(doc *document.Document, agentID string) string {
	for _, item := range doc.List("agents", "bindings") {
		b, ok := item.(map[string]any)
		if !ok {
			continue
		}
		match, _ := b["match"].(map[string]any)
		if id, _ := b["agentId"].(string); id != agentID || match == nil {
			continue
		}
		if ch, _ := match["channel"].(string); ch != "discord" {
			continue
		}
		acct, _ := match["accountId"].(string)
		return acct
	}
	return ""
}

// explicitBinding follows agents.bindings to an account and lists the
// channels of that account's guilds.
func explicitBinding(doc *document.Document, p persona, _ string) []channelRef {
	acct := bindingAccount(doc, p.ID)
	if acct == "" {
		return nil
	}
	return guildChannels(doc, acct, accountGuildsPath(acct))
}

// accountKeyBinding lists the guild channels of the account whose key is
// the persona id.
func accountKeyBinding(doc *document.Document, p persona, _ string) []channelRef {
	if doc.Map(append(accountsPath, p.ID)...) == nil {
		return nil
	}
	return guildChannels(doc, p.ID, accountGuildsPath(p.ID))
}

// channelAccountField selects top-level guild channels whose "account"
// field names the persona or its bound account.
func channelAccountField(doc *document.Document, p persona, accountID string) []channelRef {
	var out []channelRef
	for _, ch := range guildChannels(doc, "", guildsPath) {
		owner := doc.String(append(ch.Path, "account")...)
		if owner == "" {
			continue
		}
		if owner == p.ID || (accountID != "" && owner == accountID) {
			ch.AccountID = owner
			out = append(out, ch)
		}
	}
	return out
}

// promptNameHeuristic selects top-level guild channels whose prompt mentions
// the persona's display name, case-insensitively. Some documents never link
// personas to channels any other way.
func promptNameHeuristic(doc *document.Document, p persona, _ string) []channelRef {
	name := strings.ToLower(strings.TrimSpace(p.Name))
	if name == "" {
		return nil
	}
	var out []channelRef
	for _, ch := range guildChannels(doc, "", guildsPath) {
		if strings.Contains(strings.ToLower(ch.prompt(doc)), name) {
			out = append(out, ch)
		}
	}
	return out
}

// resolution is the outcome of binding resolution for one persona.
type resolution struct {
	AccountID string
	Strategy  string // "" when nothing matched
	Channels  []channelRef
}

// primary returns the first channel with a non-empty prompt.
func (r resolution) primary(doc *document.Document) (channelRef, bool) {
	for _, ch := range r.Channels {
		if ch.hasPrompt(doc) {
			return ch, true
		}
	}
	return channelRef{}, false
}

func resolve(doc *document.Document, p persona) resolution {
	res := resolution{AccountID: boundAccount(doc, p)}
	for _, s := range strategies {
		if chans := s.channels(doc, p, res.AccountID); len(chans) > 0 {
			res.Strategy = s.name
			res.Channels = chans
			break
		}
	}
	if res.AccountID == "" {
		for _, ch := range res.Channels {
			if ch.AccountID != "" && doc.Map(append(accountsPath, ch.AccountID)...) != nil {
				res.AccountID = ch.AccountID
				break
			}
		}
	}
	return res
}
