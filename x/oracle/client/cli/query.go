package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/paw-chain/tee-oracle/pkg/client"
	"github.com/paw-chain/tee-oracle/x/oracle/types"
)

// GetQueryCmd returns the cli query commands for the oracle
func GetQueryCmd() *cobra.Command {
	oracleQueryCmd := &cobra.Command{
		Use:                        "query",
		Aliases:                    []string{"q"},
		Short:                      "Querying commands for the oracle",
		SuggestionsMinimumDistance: 2,
	}

	oracleQueryCmd.AddCommand(
		GetCmdQueryParams(),
		GetCmdQueryPrice(),
		GetCmdQueryPrices(),
		GetCmdQueryPythPrice(),
		GetCmdQueryAsset(),
		GetCmdQueryAssets(),
		GetCmdQueryNode(),
		GetCmdQueryNodes(),
		GetCmdQueryIsAuthorized(),
		GetCmdQueryOperators(),
		GetCmdQueryCodeHashes(),
		GetCmdQueryAdminRole(),
		GetCmdQueryProposal(),
		GetCmdQueryProposals(),
		GetCmdQueryHealth(),
	)
	AddClientFlags(oracleQueryCmd)

	return oracleQueryCmd
}

// queryCmd builds a command whose RunE prints the result of run
func queryCmd(use, short, long string, args cobra.PositionalArgs, run func(cmd *cobra.Command, c *client.Client, args []string) (interface{}, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Long:  long,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := NewClient(cmd)
			if err != nil {
				return err
			}
			res, err := run(cmd, c, args)
			if err != nil {
				return err
			}
			return printJSON(cmd, res)
		},
	}
}

// GetCmdQueryParams returns the command to query the aggregation policy
func GetCmdQueryParams() *cobra.Command {
	return queryCmd("params", "Query the aggregation policy, pause state and owner",
		`Query the recency threshold, the global minimum report count, the
attestation max age, the pause state and the owner.

Example:
  $ oracled query params`,
		cobra.NoArgs,
		func(cmd *cobra.Command, c *client.Client, _ []string) (interface{}, error) {
			return c.Params(cmd.Context())
		})
}

// GetCmdQueryPrice returns the command to query a price for an asset
func GetCmdQueryPrice() *cobra.Command {
	return queryCmd("price [asset]", "Query the current price for an asset",
		`Query the aggregated price of an asset. Stale prices are not returned.

Example:
  $ oracled query price BTC`,
		cobra.ExactArgs(1),
		func(cmd *cobra.Command, c *client.Client, args []string) (interface{}, error) {
			return c.Price(cmd.Context(), args[0])
		})
}

// GetCmdQueryPrices returns the command to query all prices
func GetCmdQueryPrices() *cobra.Command {
	return queryCmd("prices", "Query all current prices", "", cobra.NoArgs,
		func(cmd *cobra.Command, c *client.Client, _ []string) (interface{}, error) {
			return c.Prices(cmd.Context())
		})
}

// GetCmdQueryPythPrice returns the command to query a price in the external schema
func GetCmdQueryPythPrice() *cobra.Command {
	cmd := queryCmd("pyth-price [asset]", "Query a price in the Pyth-compatible schema",
		`Query a price as {price, conf, expo, publish_time}. --max-age bounds the
age of the price; --unsafe returns it regardless of age.

Example:
  $ oracled query pyth-price ETH --max-age 60s
  $ oracled query pyth-price ETH --unsafe`,
		cobra.ExactArgs(1),
		func(cmd *cobra.Command, c *client.Client, args []string) (interface{}, error) {
			unsafe, err := cmd.Flags().GetBool(FlagUnsafe)
			if err != nil {
				return nil, err
			}
			if unsafe {
				return c.PythPriceUnsafe(cmd.Context(), args[0])
			}

			maxAge, err := cmd.Flags().GetDuration(FlagMaxAge)
			if err != nil {
				return nil, err
			}
			if maxAge < time.Second {
				return nil, fmt.Errorf("--%s must be at least 1s", FlagMaxAge)
			}
			return c.PythPriceNoOlderThan(cmd.Context(), args[0], uint64(maxAge/time.Second))
		})

	cmd.Flags().Duration(FlagMaxAge, time.Minute, "maximum age of the price")
	cmd.Flags().Bool(FlagUnsafe, false, "return the price regardless of its age")
	return cmd
}

// GetCmdQueryAsset returns the command to query an asset definition
func GetCmdQueryAsset() *cobra.Command {
	return queryCmd("asset [asset]", "Query an asset definition", "", cobra.ExactArgs(1),
		func(cmd *cobra.Command, c *client.Client, args []string) (interface{}, error) {
			return c.Asset(cmd.Context(), args[0])
		})
}

// GetCmdQueryAssets returns the command to query all asset definitions
func GetCmdQueryAssets() *cobra.Command {
	return queryCmd("assets", "Query all asset definitions", "", cobra.NoArgs,
		func(cmd *cobra.Command, c *client.Client, _ []string) (interface{}, error) {
			return c.Assets(cmd.Context())
		})
}

// GetCmdQueryNode returns the command to query a node record
func GetCmdQueryNode() *cobra.Command {
	return queryCmd("node [node]", "Query a registered node", "", cobra.ExactArgs(1),
		func(cmd *cobra.Command, c *client.Client, args []string) (interface{}, error) {
			return c.Node(cmd.Context(), args[0])
		})
}

// GetCmdQueryNodes returns the command to list authorized nodes
func GetCmdQueryNodes() *cobra.Command {
	return queryCmd("nodes", "Query the authorized nodes", "", cobra.NoArgs,
		func(cmd *cobra.Command, c *client.Client, _ []string) (interface{}, error) {
			return c.AuthorizedNodes(cmd.Context())
		})
}

// GetCmdQueryIsAuthorized returns the command to check a node's authorization
func GetCmdQueryIsAuthorized() *cobra.Command {
	return queryCmd("is-authorized [node]", "Check whether a node may report prices", "", cobra.ExactArgs(1),
		func(cmd *cobra.Command, c *client.Client, args []string) (interface{}, error) {
			authorized, err := c.IsAuthorized(cmd.Context(), args[0])
			if err != nil {
				return nil, err
			}
			return types.QueryIsAuthorizedResponse{Node: args[0], Authorized: authorized}, nil
		})
}

// GetCmdQueryOperators returns the command to list operators
func GetCmdQueryOperators() *cobra.Command {
	return queryCmd("operators", "Query whitelisted operators and their nodes", "", cobra.NoArgs,
		func(cmd *cobra.Command, c *client.Client, _ []string) (interface{}, error) {
			return c.Operators(cmd.Context())
		})
}

// GetCmdQueryCodeHashes returns the command to list approved code hashes
func GetCmdQueryCodeHashes() *cobra.Command {
	return queryCmd("code-hashes", "Query approved code hashes and measurements", "", cobra.NoArgs,
		func(cmd *cobra.Command, c *client.Client, _ []string) (interface{}, error) {
			return c.CodeHashes(cmd.Context())
		})
}

// GetCmdQueryAdminRole returns the command to query the governance committee
func GetCmdQueryAdminRole() *cobra.Command {
	return queryCmd("admin-role", "Query governance proposers, voters, timelock and quorum", "", cobra.NoArgs,
		func(cmd *cobra.Command, c *client.Client, _ []string) (interface{}, error) {
			return c.AdminRole(cmd.Context())
		})
}

// GetCmdQueryProposal returns the command to query a proposal
func GetCmdQueryProposal() *cobra.Command {
	return queryCmd("proposal [id]", "Query a governance proposal", "", cobra.ExactArgs(1),
		func(cmd *cobra.Command, c *client.Client, args []string) (interface{}, error) {
			id, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid proposal id %s: %w", args[0], err)
			}
			return c.Proposal(cmd.Context(), id)
		})
}

// GetCmdQueryProposals returns the command to list pending proposals
func GetCmdQueryProposals() *cobra.Command {
	return queryCmd("proposals", "Query pending governance proposals", "", cobra.NoArgs,
		func(cmd *cobra.Command, c *client.Client, _ []string) (interface{}, error) {
			return c.Proposals(cmd.Context())
		})
}

// GetCmdQueryHealth returns the command to query server health
func GetCmdQueryHealth() *cobra.Command {
	cmd := queryCmd("health", "Query the server health report", "", cobra.NoArgs,
		func(cmd *cobra.Command, c *client.Client, _ []string) (interface{}, error) {
			detailed, err := cmd.Flags().GetBool(FlagDetailed)
			if err != nil {
				return nil, err
			}
			return c.Health(cmd.Context(), detailed)
		})
	cmd.Flags().Bool(FlagDetailed, false, "include detailed component checks")
	return cmd
}
