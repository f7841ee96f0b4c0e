package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/paw-chain/tee-oracle/api"
	"github.com/paw-chain/tee-oracle/x/oracle/types"
)

const flagTTL = "ttl"

// TokenCmd returns the command that issues API bearer tokens
func TokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token [account]",
		Short: "Issue a bearer token for an account",
		Long: `Sign a token whose subject is the given account with api.jwt_secret. The
token authenticates every call the account makes. A zero --ttl issues a token
that does not expire.

Example:
  oracled token node-1.near --ttl 720h
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := types.ValidateAccountID(args[0]); err != nil {
				return err
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cfg.API.JWTSecret == "" {
				return errors.New("api.jwt_secret is not set")
			}

			ttl, err := cmd.Flags().GetDuration(flagTTL)
			if err != nil {
				return err
			}

			token, err := api.IssueToken([]byte(cfg.API.JWTSecret), cfg.API.JWTIssuer, args[0], ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().Duration(flagTTL, 24*time.Hour, "token lifetime")
	return cmd
}
