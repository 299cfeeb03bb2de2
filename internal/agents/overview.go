package agents

import (
	"context"

	"github.com/duanecilliers/openclaw-admin/internal/document"
	"github.com/duanecilliers/openclaw-admin/internal/domain"
)

const defaultGroupPolicy = "none"

// ChannelOverview summarizes the channel configuration without secrets.
func (r *Resolver) ChannelOverview(ctx context.Context) (domain.ChannelOverview, error) {
	doc, err := r.store.Read(ctx)
	if err != nil {
		return domain.ChannelOverview{}, err
	}
	return Overview(doc), nil
}

// Overview builds the channel overview of a document.
func Overview(doc *document.Document) domain.ChannelOverview {
	var out domain.ChannelOverview

	if tg := doc.Map("channels", "telegram"); tg != nil {
		out.Telegram = &domain.TelegramOverview{
			Enabled:     doc.Bool("channels", "telegram", "enabled"),
			GroupPolicy: orDefault(doc.String("channels", "telegram", "groupPolicy"), defaultGroupPolicy),
		}
	}

	if doc.Map(discordPath...) == nil {
		return out
	}
	d := &domain.DiscordOverview{
		Enabled:     doc.Bool(append(discordPath, "enabled")...),
		GroupPolicy: orDefault(doc.String(append(discordPath, "groupPolicy")...), defaultGroupPolicy),
		Accounts:    []domain.AccountSummary{},
		Guilds:      []domain.GuildSummary{},
		Prompts:     map[string]string{},
	}

	for _, id := range doc.Keys(accountsPath...) {
		d.Accounts = append(d.Accounts, domain.AccountSummary{
			ID:   id,
			Name: orDefault(doc.String(append(accountsPath, id, "name")...), id),
		})
	}

	d.Guilds = append(d.Guilds, guildSummaries(doc, "", guildsPath, d.Prompts)...)
	for _, id := range doc.Keys(accountsPath...) {
		d.Guilds = append(d.Guilds, guildSummaries(doc, id, accountGuildsPath(id), d.Prompts)...)
	}

	out.Discord = d
	return out
}

func guildSummaries(doc *document.Document, accountID string, guilds []string, prompts map[string]string) []domain.GuildSummary {
	var out []domain.GuildSummary
	chans := guildChannels(doc, accountID, guilds)
	for _, gid := range doc.Keys(guilds...) {
		g := domain.GuildSummary{ID: gid, AccountID: accountID, Channels: []domain.ChannelSummary{}}
		for _, ch := range chans {
			if ch.GuildID != gid {
				continue
			}
			has := ch.hasPrompt(doc)
			g.Channels = append(g.Channels, domain.ChannelSummary{ID: ch.ChannelID, HasPrompt: has})
			if ch.ChannelID != domain.AllChannelsID {
				g.ChannelCount++
			}
			if _, dup := prompts[ch.ChannelID]; has && !dup {
				prompts[ch.ChannelID] = ch.prompt(doc)
			}
		}
		out = append(out, g)
	}
	return out
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
