package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/duanecilliers/openclaw-admin/internal/config"
	"github.com/duanecilliers/openclaw-admin/internal/logging"
)

var (
	cfgFile  string
	logLevel string

	// loaded at init time
	paths     config.Paths
	settings  config.Config
	log       *logging.Logger
	logCloser io.Closer
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "openclaw-admin",
		Short: "openclaw-admin, a local admin console for openclaw",
		Long: "openclaw-admin serves a local web console over an openclaw installation: " +
			"its configuration document, agents, skills, cron jobs and gateway.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			paths, err = config.ResolvePaths()
			if err != nil {
				return err
			}
			if cfgFile != "" {
				paths.Config = cfgFile
			}

			settings, err = config.Load(paths.Config)
			if err != nil {
				return err
			}
			if err := settings.Resolve(paths); err != nil {
				return err
			}
			if logLevel != "" {
				settings.Logging.Level = logLevel
			}

			log, logCloser, err = logging.Open(logging.Options{
				Level:        settings.Logging.Level,
				ConsoleStyle: settings.Logging.ConsoleStyle,
				File:         settings.Logging.File,
			})
			return err
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if logCloser != nil {
				return logCloser.Close()
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "settings file (default ~/.openclaw-admin/config.yaml)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error, fatal, silent)")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newAgentsCmd())
	cmd.AddCommand(newCronCmd())
	cmd.AddCommand(newSkillsCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}
