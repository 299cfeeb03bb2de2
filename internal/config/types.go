package config

// Config is the console's own settings. It does not describe the openclaw
// runtime; that lives in the openclaw configuration document.
type Config struct {
	Server   ServerConfig   `yaml:"server,omitempty"`
	OpenClaw OpenClawConfig `yaml:"openclaw,omitempty"`
	Discord  DiscordConfig  `yaml:"discord,omitempty"`
	Gateway  GatewayConfig  `yaml:"gateway,omitempty"`
	Backups  BackupsConfig  `yaml:"backups,omitempty"`
	Journal  JournalConfig  `yaml:"journal,omitempty"`
	Logging  LoggingConfig  `yaml:"logging,omitempty"`
}

// ServerConfig controls the console HTTP server.
type ServerConfig struct {
	Port           int      `yaml:"port,omitempty"`
	Bind           string   `yaml:"bind,omitempty"` // "loopback" | "lan" | "custom"
	CustomBindHost string   `yaml:"customBindHost,omitempty"`
	AllowedOrigins []string `yaml:"allowedOrigins,omitempty"`
}

// OpenClawConfig locates the files of the openclaw runtime being administered.
// Empty paths are derived from Home.
type OpenClawConfig struct {
	Home          string `yaml:"home,omitempty"`          // ~/.openclaw
	ConfigPath    string `yaml:"configPath,omitempty"`    // <home>/openclaw.json
	JobsPath      string `yaml:"jobsPath,omitempty"`      // <home>/cron/jobs.json
	SharedSkills  string `yaml:"sharedSkills,omitempty"`  // <home>/skills
	BundledSkills string `yaml:"bundledSkills,omitempty"` // ~/openclaw/skills
	Command       string `yaml:"command,omitempty"`       // CLI used for restart and cron run
}

// DiscordConfig controls metadata lookups against the Discord API.
type DiscordConfig struct {
	APIBase         string `yaml:"apiBase,omitempty"`
	TimeoutSeconds  int    `yaml:"timeoutSeconds,omitempty"`
	CacheTTLMinutes int    `yaml:"cacheTtlMinutes,omitempty"`
}

// GatewayConfig controls how the console talks to the running gateway.
type GatewayConfig struct {
	ProbeTimeoutSeconds   int `yaml:"probeTimeoutSeconds,omitempty"`
	TriggerTimeoutSeconds int `yaml:"triggerTimeoutSeconds,omitempty"`
}

// BackupsConfig controls configuration document backups.
type BackupsConfig struct {
	Dir  string `yaml:"dir,omitempty"` // default: <dir of configPath>/backups
	Keep int    `yaml:"keep,omitempty"`
}

// JournalConfig controls the change journal.
type JournalConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path,omitempty"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level        string `yaml:"level,omitempty"` // "silent" | "fatal" | "error" | "warn" | "info" | "debug" | "trace"
	File         string `yaml:"file,omitempty"`
	ConsoleStyle string `yaml:"consoleStyle,omitempty"` // "pretty" | "compact" | "json"
}
