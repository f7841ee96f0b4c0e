package cmd

import (
	"encoding/json"
	"fmt"

	"cosmossdk.io/log"
	"github.com/spf13/cobra"

	"github.com/paw-chain/tee-oracle/app"
)

// ExportCmd returns the command that dumps committed state as genesis
func ExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Export committed state as a genesis document",
		Long: `Print the committed configuration as JSON that init can consume as
genesis.json. Reports, prices and proposals are not exported. The daemon must
be stopped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}

			genesis, err := readGenesis(cfg)
			if err != nil {
				return err
			}

			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			oracle, err := app.NewOracleApp(log.NewNopLogger(), db, cfg.Owner, genesis)
			if err != nil {
				_ = db.Close()
				return err
			}
			defer oracle.Close()

			exported, err := oracle.ExportGenesis(cmd.Context())
			if err != nil {
				return err
			}

			bz, err := json.MarshalIndent(exported, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(bz))
			return nil
		},
	}
}
