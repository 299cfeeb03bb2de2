package domain

// Agent is the normalized view of one configured assistant persona.
// It is derived from the configuration document on every request and never stored.
type Agent struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Emoji         *string        `json:"emoji"`
	Model         *string        `json:"model"`
	WorkspacePath string         `json:"workspacePath"`
	AvatarURL     *string        `json:"avatarUrl"`
	Channels      []AgentChannel `json:"channels"`
	AccountID     *string        `json:"accountId"`
	ChannelID     *string        `json:"channelId"`
	GuildID       *string        `json:"guildId"`
	Description   string         `json:"description"`
	SkillCount    int            `json:"skillCount"`
}

// AgentChannel is a channel an agent is associated with, for display.
type AgentChannel struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// AllChannelsID is the wildcard channel key meaning "every channel in the guild".
const AllChannelsID = "*"

// AgentPrompt is the persona prompt of one agent.
type AgentPrompt struct {
	Prompt string `json:"prompt"`
}

// StrPtr returns a pointer to s, or nil when s is empty.
func StrPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
