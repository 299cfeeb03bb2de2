package metacache

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/duanecilliers/openclaw-admin/internal/discord"
	"github.com/duanecilliers/openclaw-admin/internal/domain"
	"github.com/duanecilliers/openclaw-admin/internal/logging"
)

// API is the subset of the Discord client the resolver calls.
type API interface {
	CurrentUser(ctx context.Context, token string) (*discord.User, error)
	GuildChannels(ctx context.Context, token, guildID string) ([]discord.Channel, error)
	Channel(ctx context.Context, token, channelID string) (*discord.Channel, error)
	AvatarURL(u *discord.User) string
}

// AccountToken identifies an account and the bot token that authenticates it.
type AccountToken struct {
	Key   string
	Token string
}

// GuildRef names the channels wanted from one guild.
type GuildRef struct {
	GuildID    string
	Token      string
	ChannelIDs []string
}

// Resolver resolves avatar URLs and channel names with caching.
type Resolver struct {
	api      API
	avatars  *TTL[map[string]*string]
	guilds   *TTL[map[string]string]
	channels *TTL[string]
	log      *logging.Logger
}

// Options configures a Resolver.
type Options struct {
	TTL time.Duration
	Now func() time.Time
	Log *logging.Logger
}

// NewResolver creates a Resolver with empty caches.
func NewResolver(api API, opts Options) *Resolver {
	log := opts.Log
	if log == nil {
		log = logging.New(nil, "silent")
	}
	return &Resolver{
		api:      api,
		avatars:  NewTTL[map[string]*string](opts.TTL, opts.Now),
		guilds:   NewTTL[map[string]string](opts.TTL, opts.Now),
		channels: NewTTL[string](opts.TTL, opts.Now),
		log:      log.Sub("metacache"),
	}
}

// AvatarURLs returns the avatar URL of every account, nil where unknown.
// The whole batch is one cache entry keyed by the set of account keys; a
// fresh entry is returned without any external call.
func (r *Resolver) AvatarURLs(ctx context.Context, accounts []AccountToken) map[string]*string {
	if len(accounts) == 0 {
		return map[string]*string{}
	}
	tokens := make(map[string]string, len(accounts))
	keys := make([]string, 0, len(accounts))
	for _, a := range accounts {
		if _, dup := tokens[a.Key]; !dup {
			keys = append(keys, a.Key)
		}
		tokens[a.Key] = a.Token
	}
	slices.Sort(keys)

	urls, _ := r.avatars.Get(ctx, strings.Join(keys, ","), func(ctx context.Context) (map[string]*string, error) {
		r.log.Debug().Int("accounts", len(keys)).Msg("fetching avatars")
		got := Batch(ctx, keys, func(ctx context.Context, key string) (string, error) {
			return r.fetchAvatar(ctx, key, tokens[key])
		})
		out := make(map[string]*string, len(got))
		for k, v := range got {
			if v != nil {
				out[k] = domain.StrPtr(*v)
			} else {
				out[k] = nil
			}
		}
		return out, nil
	})
	return urls
}

func (r *Resolver) fetchAvatar(ctx context.Context, key, token string) (string, error) {
	if token == "" {
		return "", errors.New("no token")
	}
	u, err := r.api.CurrentUser(ctx, token)
	if err != nil {
		r.log.Debug().Err(err).Str("account", key).Msg("avatar lookup failed")
		return "", err
	}
	url := r.api.AvatarURL(u)
	if url == "" {
		return "", errors.New("no avatar")
	}
	return url, nil
}

// ChannelNames resolves channel ids to display names. Each guild is listed
// once and cached; channels missing from the listing are looked up one by
// one. Unresolved channels are absent from the result.
func (r *Resolver) ChannelNames(ctx context.Context, refs []GuildRef) map[string]string {
	merged := map[string]GuildRef{}
	var guildIDs []string
	for _, ref := range refs {
		m, ok := merged[ref.GuildID]
		if !ok {
			guildIDs = append(guildIDs, ref.GuildID)
			m = GuildRef{GuildID: ref.GuildID, Token: ref.Token}
		}
		if m.Token == "" {
			m.Token = ref.Token
		}
		m.ChannelIDs = append(m.ChannelIDs, ref.ChannelIDs...)
		merged[ref.GuildID] = m
	}

	perGuild := Batch(ctx, guildIDs, func(ctx context.Context, guildID string) (map[string]string, error) {
		return r.guildNames(ctx, merged[guildID]), nil
	})

	out := map[string]string{}
	for _, names := range perGuild {
		if names == nil {
			continue
		}
		for id, name := range *names {
			out[id] = name
		}
	}
	return out
}

func (r *Resolver) guildNames(ctx context.Context, ref GuildRef) map[string]string {
	out := map[string]string{}
	if ref.Token == "" {
		return out
	}

	listing, err := r.guilds.Get(ctx, ref.GuildID, func(ctx context.Context) (map[string]string, error) {
		chans, err := r.api.GuildChannels(ctx, ref.Token, ref.GuildID)
		if err != nil {
			return nil, err
		}
		names := make(map[string]string, len(chans))
		for _, ch := range chans {
			names[ch.ID] = ch.Name
		}
		return names, nil
	})
	if err != nil {
		r.log.Debug().Err(err).Str("guild", ref.GuildID).Msg("guild channel listing failed")
	}

	var missing []string
	for _, id := range ref.ChannelIDs {
		if id == domain.AllChannelsID {
			continue
		}
		if name, ok := listing[id]; ok && name != "" {
			out[id] = name
		} else if !slices.Contains(missing, id) {
			missing = append(missing, id)
		}
	}

	fetched := Batch(ctx, missing, func(ctx context.Context, id string) (string, error) {
		return r.channels.Get(ctx, id, func(ctx context.Context) (string, error) {
			ch, err := r.api.Channel(ctx, ref.Token, id)
			if err != nil {
				return "", err
			}
			if ch.Name == "" {
				return "", errors.New("channel has no name")
			}
			return ch.Name, nil
		})
	})
	for id, name := range fetched {
		if name != nil {
			out[id] = *name
		}
	}
	return out
}
