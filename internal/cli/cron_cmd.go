package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/duanecilliers/openclaw-admin/internal/cron"
	"github.com/duanecilliers/openclaw-admin/internal/domain"
)

func newCronCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cron",
		Short: "Inspect and trigger cron jobs",
	}

	cmd.AddCommand(newCronListCmd())
	cmd.AddCommand(newCronRunCmd())
	return cmd
}

func newCronListCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cron jobs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(settings, log, false)
			if err != nil {
				return err
			}
			defer a.Close()

			jobs, err := a.svc.Jobs.List(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return printJSON(out, jobs)
			}
			if len(jobs) == 0 {
				fmt.Fprintln(out, "  (no jobs)")
				return nil
			}
			for _, j := range jobs {
				when := "?"
				if s, err := j.Schedule(); err == nil {
					when = cron.Describe(s)
				}
				state := "on"
				if !jobBool(j, "enabled", true) {
					state = "off"
				}
				fmt.Fprintf(out, "  %-36s %-3s %-20s %s\n", j.ID(), state, jobString(j, "name"), when)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}

func newCronRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <job-id>",
		Short: "Trigger a cron job now",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(settings, log, false)
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.svc.Runner.Run(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !res.Success {
				return fmt.Errorf("run failed: %s", res.Message)
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Message)
			return nil
		},
	}
}

func jobString(j domain.CronJob, key string) string {
	var s string
	if raw, ok := j[key]; ok {
		_ = json.Unmarshal(raw, &s)
	}
	return s
}

func jobBool(j domain.CronJob, key string, def bool) bool {
	raw, ok := j[key]
	if !ok {
		return def
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err != nil {
		return def
	}
	return b
}
