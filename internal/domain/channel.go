package domain

// ChannelOverview summarizes the messaging channel configuration. Secrets
// are never part of it.
type ChannelOverview struct {
	Telegram *TelegramOverview `json:"telegram,omitempty"`
	Discord  *DiscordOverview  `json:"discord,omitempty"`
}

// TelegramOverview is the telegram section of the overview.
type TelegramOverview struct {
	Enabled     bool   `json:"enabled"`
	GroupPolicy string `json:"groupPolicy"`
}

// DiscordOverview is the discord section of the overview.
type DiscordOverview struct {
	Enabled     bool              `json:"enabled"`
	GroupPolicy string            `json:"groupPolicy"`
	Accounts    []AccountSummary  `json:"accounts"`
	Guilds      []GuildSummary    `json:"guilds"`
	Prompts     map[string]string `json:"prompts"` // channelId -> systemPrompt
}

// AccountSummary identifies a discord account without its token.
type AccountSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// GuildSummary lists the configured channels of one guild.
type GuildSummary struct {
	ID           string           `json:"id"`
	AccountID    string           `json:"accountId,omitempty"`
	ChannelCount int              `json:"channelCount"`
	Channels     []ChannelSummary `json:"channels"`
}

// ChannelSummary is one configured channel inside a guild.
type ChannelSummary struct {
	ID        string `json:"id"`
	HasPrompt bool   `json:"hasPrompt"`
}
