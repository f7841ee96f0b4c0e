package cmd

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	cmtos "github.com/cometbft/cometbft/libs/os"
	"github.com/spf13/cobra"

	"github.com/paw-chain/tee-oracle/app"
	"github.com/paw-chain/tee-oracle/x/oracle/types"
)

const flagOverwrite = "overwrite"

// InitCmd returns a command that writes the default config and genesis files
func InitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [owner]",
		Short: "Initialize the configuration and genesis files",
		Long: `Write config.toml and genesis.json under the home directory. The owner
account administers the oracle until governance is configured.

Example:
  oracled init owner.near --home ~/.oracled
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			owner := args[0]
			if err := types.ValidateAccountID(owner); err != nil {
				return fmt.Errorf("invalid owner: %w", err)
			}

			home, err := cmd.Flags().GetString(FlagHome)
			if err != nil {
				return err
			}
			overwrite, _ := cmd.Flags().GetBool(flagOverwrite)

			configPath, err := app.WriteDefaultConfig(home, owner, overwrite)
			if err != nil {
				return fmt.Errorf("failed to write %s: %w", configPath, err)
			}

			genesisPath := filepath.Join(home, app.ConfigDir, app.DefaultGenesisFileName)
			if cmtos.FileExists(genesisPath) && !overwrite {
				return fmt.Errorf("genesis file already exists: %s", genesisPath)
			}
			bz, err := json.MarshalIndent(types.DefaultGenesis(), "", "  ")
			if err != nil {
				return err
			}
			if err := cmtos.WriteFile(genesisPath, bz, 0o644); err != nil {
				return err
			}
			if err := cmtos.EnsureDir(filepath.Join(home, app.DataDir), 0o755); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\nwrote %s\n", configPath, genesisPath)
			return nil
		},
	}

	cmd.Flags().Bool(flagOverwrite, false, "overwrite existing config and genesis files")
	return cmd
}

// readGenesis loads the genesis file named by cfg. A missing file yields nil,
// which the app replaces with the default genesis.
func readGenesis(cfg app.Config) (*types.GenesisState, error) {
	path := cfg.GenesisPath()
	if !cmtos.FileExists(path) {
		return nil, nil
	}
	bz, err := cmtos.ReadFile(path)
	if err != nil {
		return nil, err
	}
	genesis, err := types.GenesisStateFromJSON(bz)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return genesis, nil
}
