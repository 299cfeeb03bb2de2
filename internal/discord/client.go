// Package discord is a read-only client for the Discord REST API, used to
// enrich the console with bot avatars and channel names.
package discord

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/duanecilliers/openclaw-admin/internal/domain"
)

const (
	DefaultBaseURL = "https://discord.com/api/v10"
	DefaultCDNURL  = "https://cdn.discordapp.com"
	defaultTimeout = 5 * time.Second
)

// User is the subset of a Discord user object the console reads.
type User struct {
	ID     string `json:"id"`
	Avatar string `json:"avatar"`
}

// Channel is the subset of a Discord channel object the console reads.
type Channel struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	GuildID string `json:"guild_id"`
}

// Client performs authenticated GET requests on behalf of a bot token.
type Client struct {
	baseURL string
	cdnURL  string
	client  *http.Client
}

// NewClient creates a Discord API client. An empty baseURL selects the
// public API; timeout bounds every call.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		cdnURL:  DefaultCDNURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// CurrentUser fetches the bot's own profile.
func (c *Client) CurrentUser(ctx context.Context, token string) (*User, error) {
	var u User
	if err := c.get(ctx, token, "/users/@me", &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GuildChannels lists every channel of a guild.
func (c *Client) GuildChannels(ctx context.Context, token, guildID string) ([]Channel, error) {
	var chans []Channel
	if err := c.get(ctx, token, "/guilds/"+guildID+"/channels", &chans); err != nil {
		return nil, err
	}
	return chans, nil
}

// Channel fetches one channel.
func (c *Client) Channel(ctx context.Context, token, channelID string) (*Channel, error) {
	var ch Channel
	if err := c.get(ctx, token, "/channels/"+channelID, &ch); err != nil {
		return nil, err
	}
	return &ch, nil
}

// AvatarURL builds the CDN URL of a user's avatar. Animated avatars (hash
// prefixed "a_") are served as gif. Returns "" if the user has no avatar.
func (c *Client) AvatarURL(u *User) string {
	if u == nil || u.Avatar == "" {
		return ""
	}
	ext := "png"
	if strings.HasPrefix(u.Avatar, "a_") {
		ext = "gif"
	}
	return fmt.Sprintf("%s/avatars/%s/%s.%s?size=128", c.cdnURL, u.ID, u.Avatar, ext)
}

func (c *Client) get(ctx context.Context, token, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return &domain.ExternalError{Service: "discord", Err: err}
	}
	req.Header.Set("Authorization", "Bot "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return &domain.ExternalError{Service: "discord", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &domain.ExternalError{Service: "discord", Status: resp.StatusCode}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &domain.ExternalError{Service: "discord", Err: fmt.Errorf("decoding %s: %w", path, err)}
	}
	return nil
}
