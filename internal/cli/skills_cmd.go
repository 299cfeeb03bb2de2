package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSkillsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "skills",
		Short: "Inspect the skill catalog",
	}

	cmd.AddCommand(newSkillsListCmd())
	return cmd
}

func newSkillsListCmd() *cobra.Command {
	var (
		agentID string
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List bundled, shared and agent workspace skills",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(settings, log, false)
			if err != nil {
				return err
			}
			defer a.Close()

			list, err := a.svc.Skills.List(cmd.Context(), agentID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return printJSON(out, list)
			}
			group := ""
			for _, s := range list {
				if s.Group != group {
					group = s.Group
					fmt.Fprintf(out, "%s:\n", group)
				}
				cfg := ""
				if s.HasConfig {
					cfg = " (configured)"
				}
				fmt.Fprintf(out, "  %-24s %-9s %s%s\n", s.Name, s.Source, s.Description, cfg)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&agentID, "agent", "", "include this agent's workspace skills")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}
