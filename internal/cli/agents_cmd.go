package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newAgentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agents",
		Short: "Inspect configured agents",
	}

	cmd.AddCommand(newAgentsListCmd())
	return cmd
}

func newAgentsListCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List configured agents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(settings, log, false)
			if err != nil {
				return err
			}
			defer a.Close()

			list, err := a.svc.Agents.List(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return printJSON(out, list)
			}
			if len(list) == 0 {
				fmt.Fprintln(out, "  (no agents configured)")
				return nil
			}
			for _, ag := range list {
				model := "-"
				if ag.Model != nil {
					model = *ag.Model
				}
				fmt.Fprintf(out, "  %-12s %-16s model=%s skills=%d channels=%d\n",
					ag.ID, ag.Name, model, ag.SkillCount, len(ag.Channels))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}
