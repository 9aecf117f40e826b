package cmd

import (
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewRootCmd creates the root command of the host simulator. Flags override
// the WLC_ environment, which overrides the config file of the home directory.
func NewRootCmd() *cobra.Command {
	v := viper.New()
	defaults := DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "wasm-light-client",
		Short: "Host chain simulator driving wasm light clients",
		Long: `Runs the wasm light client against a local host store. Every transaction
command executes in a new block which is committed to the database of the home
directory only when the command succeeds.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return loadConfigFile(v)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String(flagHome, defaults.Home, "directory for config and data")
	flags.String(flagChainID, defaults.ChainID, "chain id of the host chain")
	flags.String(flagLogLevel, defaults.LogLevel, "log level (debug|info|error|none)")
	flags.StringP(flagOutput, "o", defaults.Output, "output format (json|yaml)")
	flags.String(flagDBBackend, defaults.DBBackend, "database backend (goleveldb|memdb)")
	if err := v.BindPFlags(flags); err != nil {
		panic(err)
	}
	v.SetDefault(flagListenAddr, defaults.ListenAddr)

	rootCmd.AddCommand(
		newInitCmd(v),
		newCreateClientCmd(v),
		newUpdateClientCmd(v),
		newSubmitMisbehaviourCmd(v),
		newUpgradeClientCmd(v),
		newRecoverClientCmd(v),
		newVerifyMembershipCmd(v),
		newVerifyNonMembershipCmd(v),
		newStatusCmd(v),
		newClientStateCmd(v),
		newConsensusStateCmd(v),
		newTimestampCmd(v),
		newExportMetadataCmd(v),
		newExportCmd(v),
		newServeCmd(v),
	)

	return rootCmd
}

// newInitCmd writes the resolved configuration to the home directory.
func newInitCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write the configuration file and create the data directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := ReadConfig(v)
			if err != nil {
				return err
			}

			if err := WriteConfigFile(cfg); err != nil {
				return err
			}

			return printOutput(cmd, cfg, cfg)
		},
	}
}

// openApp resolves the configuration and opens the host application.
func openApp(cmd *cobra.Command, v *viper.Viper) (Config, *App, error) {
	cfg, err := ReadConfig(v)
	if err != nil {
		return Config{}, nil, err
	}

	logger, err := newLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return Config{}, nil, err
	}

	app, err := NewApp(cfg, logger.With("chain-id", cfg.ChainID))
	if err != nil {
		return Config{}, nil, err
	}

	return cfg, app, nil
}

// blockTime returns the time set by the block time flag of cmd, or fallback
// if the flag is unset.
func blockTime(cmd *cobra.Command, fallback time.Time) (time.Time, error) {
	flag := cmd.Flags().Lookup(flagBlockTime)
	if flag == nil || flag.Value.String() == "" {
		return fallback, nil
	}

	t, err := time.Parse(time.RFC3339Nano, flag.Value.String())
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "invalid %s", flagBlockTime)
	}
	return t.UTC(), nil
}

func addBlockTimeFlag(cmd *cobra.Command) {
	cmd.Flags().String(flagBlockTime, "", "RFC3339 time of the executed block (defaults to now)")
}

func closeApp(app *App) {
	if err := app.Close(); err != nil {
		app.logger.Error("failed to close host database", "error", err)
	}
}
