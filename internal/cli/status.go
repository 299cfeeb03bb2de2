package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/duanecilliers/openclaw-admin/internal/config"
	"github.com/duanecilliers/openclaw-admin/internal/version"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show console settings and the state of the openclaw installation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s\n\n", version.Info())

			settingsState := "found"
			if _, err := os.Stat(paths.Config); os.IsNotExist(err) {
				settingsState = "not found (using defaults)"
			}
			fmt.Fprintf(out, "Settings: %s (%s)\n", paths.Config, settingsState)
			fmt.Fprintf(out, "Data:     %s\n", paths.Data)
			fmt.Fprintf(out, "Console:  port=%d bind=%s\n", settings.Server.Port, settings.Server.Bind)
			fmt.Fprintln(out)

			a, err := newApp(settings, log, false)
			if err != nil {
				return err
			}
			defer a.Close()
			ctx := cmd.Context()

			fmt.Fprintf(out, "Config:   %s\n", a.docs.Path())
			doc, err := a.docs.Read(ctx)
			if err != nil {
				fmt.Fprintf(out, "          error: %v\n", err)
			} else {
				gw := a.svc.Gateway.Status(ctx, doc)
				state := "stopped"
				if gw.Running {
					state = "running"
				}
				fmt.Fprintf(out, "Gateway:  %s port=%d mode=%s bind=%s\n", state, gw.Port, gw.Mode, gw.Bind)
			}
			if list, err := a.svc.Agents.List(ctx); err == nil {
				fmt.Fprintf(out, "Agents:   %d\n", len(list))
			}

			jobs, err := a.svc.Jobs.List(ctx)
			if err != nil {
				fmt.Fprintf(out, "Cron:     error: %v\n", err)
			} else {
				fmt.Fprintf(out, "Cron:     %d job(s) in %s\n", len(jobs), a.svc.Jobs.Path())
			}

			if backups, err := a.docs.Backups(); err == nil {
				fmt.Fprintf(out, "Backups:  %d in %s\n", len(backups), a.docs.BackupDir())
			}

			issues := config.Validate(&settings)
			if len(issues) > 0 {
				fmt.Fprintf(out, "\nValidation issues (%d):\n", len(issues))
				for _, issue := range issues {
					fmt.Fprintf(out, "  - %s\n", issue)
				}
			}
			return nil
		},
	}
}
