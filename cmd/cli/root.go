package cli

import (
	"context"
	"os"
	"os/signal"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/authorizedtester/testgate/cmd/cli/check"
	"github.com/authorizedtester/testgate/cmd/cli/serve"
	"github.com/authorizedtester/testgate/cmd/cli/version"
	"github.com/authorizedtester/testgate/cmd/util"
	"github.com/authorizedtester/testgate/cmd/util/flags/configflags"
	"github.com/authorizedtester/testgate/pkg/config"
	"github.com/authorizedtester/testgate/pkg/logger"
	"github.com/authorizedtester/testgate/pkg/system"
)

type RootOptions struct {
	ConfigFile string
	EnvFile    string
}

func NewRootCmd() *cobra.Command {
	opts := &RootOptions{}

	RootCmd := &cobra.Command{
		Use:   "testgate",
		Short: "Keep test environments private",
		Long: `testgate sits in front of a test or staging site and only lets through
clients whose IP address or Basic credentials are on an allow-list.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}

			logging := cfg.Logging()
			mode, err := logger.ParseLogMode(logging.Mode)
			if err != nil {
				return err
			}
			if err := logger.ConfigureLogging(mode, logging.Level); err != nil {
				return err
			}
			if used := cfg.ConfigFileUsed(); used != "" {
				log.Debug().Str("ConfigFile", used).Msg("loaded config file")
			}

			ctx = context.WithValue(ctx, util.SystemManagerKey, system.NewCleanupManager())
			ctx = context.WithValue(ctx, util.ConfigKey, cfg)
			cmd.SetContext(ctx)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			util.GetCleanupManager(cmd.Context()).Cleanup()
		},
	}

	RootCmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "",
		`Path to the YAML config file. Defaults to ./`+config.DefaultConfigFile+` when present.`)
	RootCmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", "",
		`Path to a dotenv file loaded into the environment before the config is read.`)
	if err := configflags.RegisterPersistentFlags(RootCmd, map[string][]configflags.Definition{
		"logging": configflags.LogFlags,
	}); err != nil {
		util.Fatal(RootCmd, err, 1)
	}

	RootCmd.AddCommand(serve.NewCmd())
	RootCmd.AddCommand(check.NewCmd())
	RootCmd.AddCommand(version.NewCmd())

	return RootCmd
}

func loadConfig(cmd *cobra.Command, opts *RootOptions) (*config.Config, error) {
	flags, envs := configflags.Bindings(cmd.Flags())
	loadOpts := []config.Option{
		config.WithFlags(flags),
		config.WithEnvBindings(envs),
	}
	if opts.ConfigFile != "" {
		loadOpts = append(loadOpts, config.WithConfigFile(opts.ConfigFile))
	}
	if opts.EnvFile != "" {
		loadOpts = append(loadOpts, config.WithEnvFile(opts.EnvFile))
	}
	return config.Load(loadOpts...)
}

func Execute() {
	rootCmd := NewRootCmd()

	// Ensure commands are able to stop cleanly if someone presses ctrl+c
	ctx, cancel := signal.NotifyContext(context.Background(), util.ShutdownSignals...)
	defer cancel()
	rootCmd.SetContext(ctx)

	// Use stdout, not stderr for cmd.Print output, so that
	// e.g. STATUS=$(testgate check ...) works
	rootCmd.SetOut(os.Stdout)
	rootCmd.SetErr(os.Stderr)

	if err := rootCmd.Execute(); err != nil {
		util.Fatal(rootCmd, err, 1)
	}
}
