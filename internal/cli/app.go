package cli

import (
	"fmt"

	"github.com/duanecilliers/openclaw-admin/internal/agents"
	"github.com/duanecilliers/openclaw-admin/internal/config"
	"github.com/duanecilliers/openclaw-admin/internal/cron"
	"github.com/duanecilliers/openclaw-admin/internal/discord"
	"github.com/duanecilliers/openclaw-admin/internal/document"
	"github.com/duanecilliers/openclaw-admin/internal/gatewayctl"
	"github.com/duanecilliers/openclaw-admin/internal/hooks"
	"github.com/duanecilliers/openclaw-admin/internal/logging"
	"github.com/duanecilliers/openclaw-admin/internal/metacache"
	"github.com/duanecilliers/openclaw-admin/internal/server"
	"github.com/duanecilliers/openclaw-admin/internal/skills"
	"github.com/duanecilliers/openclaw-admin/internal/store"
	"github.com/duanecilliers/openclaw-admin/internal/workspace"
)

// app holds the components every command is built from.
type app struct {
	bus     *hooks.Manager
	docs    *document.Store
	svc     server.Services
	db      *store.DB
	journal *store.Journal
}

// newApp wires the components described by cfg. The journal is opened only
// when withJournal is set and the settings enable it.
func newApp(cfg config.Config, log *logging.Logger, withJournal bool) (*app, error) {
	bus := hooks.NewManager(log)

	docs := document.NewStore(document.Options{
		Path:      cfg.OpenClaw.ConfigPath,
		BackupDir: cfg.Backups.Dir,
		Keep:      cfg.Backups.Keep,
		Log:       log,
		Events:    bus,
	})

	meta := metacache.NewResolver(
		discord.NewClient(cfg.Discord.APIBase, cfg.DiscordTimeout()),
		metacache.Options{TTL: cfg.CacheTTL(), Log: log},
	)
	resolver := agents.NewResolver(docs, meta, bus, log)

	jobs := cron.NewStore(cfg.OpenClaw.JobsPath, bus, log)
	trigger := gatewayctl.NewTrigger(cfg.OpenClaw.Command, cfg.TriggerTimeout(), log)

	a := &app{
		bus:  bus,
		docs: docs,
		svc: server.Services{
			Config: docs,
			Agents: resolver,
			Skills: skills.NewCatalog(docs, skills.Roots{
				Bundled: cfg.OpenClaw.BundledSkills,
				Shared:  cfg.OpenClaw.SharedSkills,
			}, resolver, bus, log),
			Jobs:      jobs,
			Runner:    cron.NewRunner(jobs, trigger),
			Workspace: workspace.New(bus, log),
			Gateway:   gatewayctl.NewController(cfg.ProbeTimeout(), trigger),
		},
	}

	if withJournal && cfg.Journal.Enabled {
		db, err := store.Open(cfg.Journal.Path, log)
		if err != nil {
			return nil, fmt.Errorf("opening journal: %w", err)
		}
		a.db = db
		a.journal = store.NewJournal(db)
		a.journal.Subscribe(bus)
	}
	return a, nil
}

// serverOptions returns the options that attach the bus and journal.
func (a *app) serverOptions() []server.ServerOption {
	opts := []server.ServerOption{server.WithHooks(a.bus)}
	if a.journal != nil {
		opts = append(opts, server.WithJournal(a.journal))
	}
	return opts
}

// Close releases the journal database, if open.
func (a *app) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}
