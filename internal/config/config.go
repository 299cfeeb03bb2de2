package config

import (
	"fmt"
	"time"
)

// ConfigError represents a configuration error.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s", e.Message)
}

// Defaults returns a Config with sensible defaults applied.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port: 5181,
			Bind: "loopback",
		},
		OpenClaw: OpenClawConfig{
			Command: "openclaw",
		},
		Discord: DiscordConfig{
			APIBase:         "https://discord.com/api/v10",
			TimeoutSeconds:  5,
			CacheTTLMinutes: 30,
		},
		Gateway: GatewayConfig{
			ProbeTimeoutSeconds:   3,
			TriggerTimeoutSeconds: 30,
		},
		Backups: BackupsConfig{
			Keep: 10,
		},
		Journal: JournalConfig{
			Enabled: true,
		},
		Logging: LoggingConfig{
			Level:        "info",
			ConsoleStyle: "pretty",
		},
	}
}

// DiscordTimeout is the per-call timeout for Discord API lookups.
func (c Config) DiscordTimeout() time.Duration {
	return time.Duration(c.Discord.TimeoutSeconds) * time.Second
}

// CacheTTL is how long fetched display metadata stays fresh.
func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.Discord.CacheTTLMinutes) * time.Minute
}

// ProbeTimeout bounds the gateway liveness probe.
func (c Config) ProbeTimeout() time.Duration {
	return time.Duration(c.Gateway.ProbeTimeoutSeconds) * time.Second
}

// TriggerTimeout bounds restart and cron-run commands.
func (c Config) TriggerTimeout() time.Duration {
	return time.Duration(c.Gateway.TriggerTimeoutSeconds) * time.Second
}
