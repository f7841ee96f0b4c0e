package cmd

import (
	"github.com/spf13/cobra"

	"github.com/paw-chain/tee-oracle/app"
	"github.com/paw-chain/tee-oracle/x/oracle/client/cli"
)

// FlagHome selects the directory holding config and data
const FlagHome = "home"

// NewRootCmd creates the root command for oracled
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "oracled",
		Short: "TEE price oracle daemon",
		Long: `oracled aggregates prices reported by attested enclave nodes and serves them
over an authenticated HTTP API.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// set the default command outputs
			cmd.SetOut(cmd.OutOrStdout())
			cmd.SetErr(cmd.ErrOrStderr())
			return nil
		},
	}

	rootCmd.PersistentFlags().String(FlagHome, app.DefaultHome(), "directory for config and data")

	rootCmd.AddCommand(
		InitCmd(),
		StartCmd(),
		FeederCmd(),
		TokenCmd(),
		ExportCmd(),
		cli.GetQueryCmd(),
		cli.GetTxCmd(),
	)

	return rootCmd
}

// loadConfig reads config.toml and environment overrides from --home
func loadConfig(cmd *cobra.Command) (app.Config, error) {
	home, err := cmd.Flags().GetString(FlagHome)
	if err != nil {
		return app.Config{}, err
	}
	v, err := app.NewViper(home)
	if err != nil {
		return app.Config{}, err
	}
	return app.LoadConfig(v, home)
}
