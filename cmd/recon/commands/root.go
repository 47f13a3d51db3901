package commands

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/pentora-ai/reconcore/pkg/config"
	"github.com/pentora-ai/reconcore/pkg/logging"
)

const cliExecutable = "recon"

var (
	configFile  string
	verbose     bool
	watchConfig bool

	logFile    *os.File
	logger     zerolog.Logger
	cfgWatcher *config.Watcher
)

// NewRootCmd constructs the top-level recon CLI command: it loads
// configuration from the defaults/file/env/flags pipeline and bootstraps
// structured logging before any subcommand runs.
func NewRootCmd() *cobra.Command {
	manager := config.NewManager()

	cmd := &cobra.Command{
		Use:   cliExecutable,
		Short: "recon is a layered network reconnaissance engine",
		Long:  "recon discovers open ports, fingerprints HTTP services, and probes for exposed admin interfaces, escalating to a full port sweep only when a preset scan doesn't turn up enough signal.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			sources := config.DefaultSources(configFile, cmd.Flags(), verbose)
			if err := manager.LoadWithSources(sources); err != nil {
				return fmt.Errorf("loading configuration: %w", err)
			}

			cfg := manager.Get()
			opts := logging.OptionsFromEnv()
			if opts.Level == "" {
				opts.Level = cfg.Log.Level
			}
			if opts.LogFile == "" {
				opts.LogFile = cfg.Log.File
			}
			opts.Verbose = verbose

			lg, f, err := logging.Setup(opts)
			if err != nil {
				return fmt.Errorf("configuring logging: %w", err)
			}
			logger = lg
			logFile = f

			if watchConfig {
				w, err := config.WatchFile(manager, configFile, cmd.Flags(), verbose, logger)
				if err != nil {
					return fmt.Errorf("starting config watcher: %w", err)
				}
				cfgWatcher = w
			}
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if cfgWatcher != nil {
				_ = cfgWatcher.Close()
				cfgWatcher = nil
			}
			if logFile != nil {
				return logFile.Close()
			}
			return nil
		},
	}
	cmd.SilenceUsage = true

	cmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Configuration file path")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Force debug-level logging regardless of LOG_LEVEL")
	cmd.PersistentFlags().BoolVar(&watchConfig, "watch-config", false, "Hot-reload the config file (--config) when it changes on disk")
	config.BindFlags(cmd.PersistentFlags())
	bindScanFlags(cmd.PersistentFlags())

	cmd.AddCommand(NewScanCmd(manager))
	cmd.AddCommand(NewVersionCmd())

	return cmd
}
