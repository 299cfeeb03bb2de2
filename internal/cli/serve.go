package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/duanecilliers/openclaw-admin/internal/config"
	"github.com/duanecilliers/openclaw-admin/internal/server"
)

func newServeCmd() *cobra.Command {
	var (
		port int
		bind string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the console server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := settings
			if port != 0 {
				cfg.Server.Port = port
			}
			if bind != "" {
				cfg.Server.Bind = bind
			}

			issues := config.Validate(&cfg)
			if len(issues) > 0 {
				for _, issue := range issues {
					log.Error().Str("path", issue.Path).Msg(issue.Message)
				}
				return fmt.Errorf("settings validation failed with %d issue(s)", len(issues))
			}

			a, err := newApp(cfg, log, true)
			if err != nil {
				return err
			}
			defer a.Close()

			// Block until SIGINT/SIGTERM
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := a.docs.Watch(ctx); err != nil {
				log.Warn().Err(err).Str("path", a.docs.Path()).Msg("config watcher unavailable")
			}

			log.Info().
				Str("config", cfg.OpenClaw.ConfigPath).
				Str("jobs", cfg.OpenClaw.JobsPath).
				Bool("journal", a.journal != nil).
				Msg("openclaw installation")

			srv := server.New(cfg.Server, a.svc, log, a.serverOptions()...)
			return srv.Start(ctx)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "listen port (overrides settings)")
	cmd.Flags().StringVar(&bind, "bind", "", "bind mode: loopback, lan, custom (overrides settings)")
	return cmd
}
