package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/spf13/cobra"

	"github.com/paw-chain/tee-oracle/pkg/feeder"
	"github.com/paw-chain/tee-oracle/x/oracle/types"
)

// GetTxCmd returns the transaction commands for the oracle
func GetTxCmd() *cobra.Command {
	oracleTxCmd := &cobra.Command{
		Use:                        "tx",
		Short:                      "Oracle transaction subcommands",
		SuggestionsMinimumDistance: 2,
	}

	oracleTxCmd.AddCommand(
		CmdAddAsset(),
		CmdAddNodeOperator(),
		CmdRemoveNodeOperator(),
		CmdApproveCodeHash(),
		CmdRemoveCodeHash(),
		CmdApproveAttestation(),
		CmdRemoveAttestation(),
		CmdPause(),
		CmdResume(),
		CmdUpdateConfig(),
		CmdSetAttestationMaxAge(),
		CmdSetNodeAccount(),
		CmdRegisterNode(),
		CmdReportPrice(),
		CmdConfigureAdminRole(),
		CmdProposeAction(),
		CmdApproveProposal(),
		CmdExecuteProposal(),
		CmdCancelProposal(),
	)
	AddClientFlags(oracleTxCmd)

	return oracleTxCmd
}

// txCmd builds a command that broadcasts the message returned by build and
// prints the committed response
func txCmd(use, short, long string, args cobra.PositionalArgs, build func(cmd *cobra.Command, args []string) (types.Msg, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Long:  long,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := build(cmd, args)
			if err != nil {
				return err
			}
			// the server stamps the caller from the token
			if err := msg.ValidatePayload(); err != nil {
				return err
			}

			c, err := NewClient(cmd)
			if err != nil {
				return err
			}
			res, err := c.Broadcast(cmd.Context(), msg)
			if err != nil {
				return err
			}
			return printJSON(cmd, res)
		},
	}
}

// CmdAddAsset returns a CLI command handler for registering an asset
func CmdAddAsset() *cobra.Command {
	cmd := txCmd("add-asset [asset-id] [decimals]", "Register a new asset",
		`Register an asset the oracle will aggregate prices for. Only the owner may
add assets.

Example:
  $ oracled tx add-asset BTC 8 --symbol BTC --name Bitcoin --min-sources 3`,
		cobra.ExactArgs(2),
		func(cmd *cobra.Command, args []string) (types.Msg, error) {
			decimals, err := strconv.ParseUint(args[1], 10, 32)
			if err != nil {
				return nil, fmt.Errorf("invalid decimals %s: %w", args[1], err)
			}
			name, _ := cmd.Flags().GetString(FlagName)
			symbol, _ := cmd.Flags().GetString(FlagSymbol)
			minSources, _ := cmd.Flags().GetUint32(FlagMinSources)
			inactive, _ := cmd.Flags().GetBool(FlagInactive)
			if symbol == "" {
				symbol = args[0]
			}
			if name == "" {
				name = args[0]
			}

			return &types.MsgAddAsset{Asset: types.Asset{
				ID:         args[0],
				Symbol:     symbol,
				Name:       name,
				Decimals:   uint32(decimals),
				Active:     !inactive,
				MinSources: minSources,
			}}, nil
		})

	cmd.Flags().String(FlagName, "", "human readable asset name (defaults to the id)")
	cmd.Flags().String(FlagSymbol, "", "asset ticker symbol (defaults to the id)")
	cmd.Flags().Uint32(FlagMinSources, 0, "minimum fresh reports before a price is aggregated")
	cmd.Flags().Bool(FlagInactive, false, "register the asset as inactive")
	return cmd
}

// CmdAddNodeOperator returns a CLI command handler for whitelisting an operator
func CmdAddNodeOperator() *cobra.Command {
	return txCmd("add-operator [operator]", "Whitelist a node operator", "", cobra.ExactArgs(1),
		func(_ *cobra.Command, args []string) (types.Msg, error) {
			return &types.MsgAddNodeOperator{Operator: args[0]}, nil
		})
}

// CmdRemoveNodeOperator returns a CLI command handler for removing an operator
func CmdRemoveNodeOperator() *cobra.Command {
	return txCmd("remove-operator [operator]", "Remove a node operator and revoke its node",
		`Remove an operator. Its node loses authorization and its reports are
pruned from every asset.`,
		cobra.ExactArgs(1),
		func(_ *cobra.Command, args []string) (types.Msg, error) {
			return &types.MsgRemoveNodeOperator{Operator: args[0]}, nil
		})
}

// CmdApproveCodeHash returns a CLI command handler for approving a code hash
func CmdApproveCodeHash() *cobra.Command {
	return txCmd("approve-code-hash [code-hash]", "Approve an enclave code hash", "", cobra.ExactArgs(1),
		func(_ *cobra.Command, args []string) (types.Msg, error) {
			return &types.MsgApproveCodeHash{CodeHash: args[0]}, nil
		})
}

// CmdRemoveCodeHash returns a CLI command handler for removing a code hash
func CmdRemoveCodeHash() *cobra.Command {
	return txCmd("remove-code-hash [code-hash]", "Remove an enclave code hash", "", cobra.ExactArgs(1),
		func(_ *cobra.Command, args []string) (types.Msg, error) {
			return &types.MsgRemoveCodeHash{CodeHash: args[0]}, nil
		})
}

// CmdApproveAttestation returns a CLI command handler for attaching an enclave measurement
func CmdApproveAttestation() *cobra.Command {
	return txCmd("approve-attestation [code-hash] [mr-enclave]", "Attach an enclave measurement to a code hash", "",
		cobra.ExactArgs(2),
		func(_ *cobra.Command, args []string) (types.Msg, error) {
			return &types.MsgApproveAttestation{CodeHash: args[0], MrEnclave: args[1]}, nil
		})
}

// CmdRemoveAttestation returns a CLI command handler for detaching an enclave measurement
func CmdRemoveAttestation() *cobra.Command {
	return txCmd("remove-attestation [code-hash]", "Detach the enclave measurement from a code hash", "",
		cobra.ExactArgs(1),
		func(_ *cobra.Command, args []string) (types.Msg, error) {
			return &types.MsgRemoveAttestation{CodeHash: args[0]}, nil
		})
}

// CmdPause returns a CLI command handler for pausing price reporting
func CmdPause() *cobra.Command {
	return txCmd("pause", "Pause price reporting", "", cobra.NoArgs,
		func(_ *cobra.Command, _ []string) (types.Msg, error) {
			return &types.MsgPause{}, nil
		})
}

// CmdResume returns a CLI command handler for resuming price reporting
func CmdResume() *cobra.Command {
	return txCmd("resume", "Resume price reporting", "", cobra.NoArgs,
		func(_ *cobra.Command, _ []string) (types.Msg, error) {
			return &types.MsgResume{}, nil
		})
}

// CmdUpdateConfig returns a CLI command handler for changing the aggregation policy
func CmdUpdateConfig() *cobra.Command {
	cmd := txCmd("update-config", "Change the recency threshold or the minimum report count",
		`Change the aggregation policy. Only flags that are set are updated.

Example:
  $ oracled tx update-config --recency-threshold 5m --min-report-count 3`,
		cobra.NoArgs,
		func(cmd *cobra.Command, _ []string) (types.Msg, error) {
			msg := &types.MsgUpdateConfig{}
			if cmd.Flags().Changed(FlagRecencyThreshold) {
				d, err := cmd.Flags().GetDuration(FlagRecencyThreshold)
				if err != nil {
					return nil, err
				}
				threshold := durationNanos(d)
				msg.RecencyThreshold = &threshold
			}
			if cmd.Flags().Changed(FlagMinReportCount) {
				count, err := cmd.Flags().GetUint32(FlagMinReportCount)
				if err != nil {
					return nil, err
				}
				msg.MinReportCount = &count
			}
			if msg.RecencyThreshold == nil && msg.MinReportCount == nil {
				return nil, fmt.Errorf("at least one of --%s or --%s is required", FlagRecencyThreshold, FlagMinReportCount)
			}
			return msg, nil
		})

	cmd.Flags().Duration(FlagRecencyThreshold, 0, "maximum age of a report used in aggregation")
	cmd.Flags().Uint32(FlagMinReportCount, 0, "global minimum number of fresh reports")
	return cmd
}

// CmdSetAttestationMaxAge returns a CLI command handler for changing the attestation max age
func CmdSetAttestationMaxAge() *cobra.Command {
	return txCmd("set-attestation-max-age [duration]", "Change the maximum age of an attestation at registration",
		`Example:
  $ oracled tx set-attestation-max-age 24h`,
		cobra.ExactArgs(1),
		func(_ *cobra.Command, args []string) (types.Msg, error) {
			d, err := parseDuration(args[0])
			if err != nil {
				return nil, err
			}
			return &types.MsgSetAttestationMaxAge{MaxAge: d}, nil
		})
}

// CmdSetNodeAccount returns a CLI command handler for binding a node to the calling operator
func CmdSetNodeAccount() *cobra.Command {
	return txCmd("set-node-account [node]", "Bind a node account to the calling operator",
		`Bind a node to the operator identified by the token. A previously bound
node loses its authorization.`,
		cobra.ExactArgs(1),
		func(_ *cobra.Command, args []string) (types.Msg, error) {
			return &types.MsgSetNodeAccount{Node: args[0]}, nil
		})
}

// CmdRegisterNode returns a CLI command handler for registering the calling node
func CmdRegisterNode() *cobra.Command {
	cmd := txCmd("register-node [code-hash] [mr-enclave]", "Register the calling node with an enclave attestation",
		`Register the node identified by the token. --issued-at is the attestation
time in unix seconds.

Example:
  $ oracled tx register-node 9f86d0... a3c5e1... --issued-at 1735689600`,
		cobra.ExactArgs(2),
		func(cmd *cobra.Command, args []string) (types.Msg, error) {
			issuedAt, err := cmd.Flags().GetUint64(FlagIssuedAt)
			if err != nil {
				return nil, err
			}
			return &types.MsgRegisterNode{
				CodeHash: args[0],
				Attestation: types.AttestationData{
					MrEnclave: args[1],
					IssuedAt:  issuedAt * types.NanosPerSecond,
				},
			}, nil
		})

	cmd.Flags().Uint64(FlagIssuedAt, 0, "attestation time in unix seconds")
	_ = cmd.MarkFlagRequired(FlagIssuedAt)
	return cmd
}

// CmdReportPrice returns a CLI command handler for submitting a price
func CmdReportPrice() *cobra.Command {
	return txCmd("report-price [asset-id] [price] [decimals]", "Report a price observation for an asset",
		`Report a price as the node identified by the token. The price is a decimal
value that is scaled to the given number of decimals.

Example:
  $ oracled tx report-price BTC 35500.12 8`,
		cobra.ExactArgs(3),
		func(_ *cobra.Command, args []string) (types.Msg, error) {
			price, err := sdkmath.LegacyNewDecFromStr(args[1])
			if err != nil {
				return nil, fmt.Errorf("invalid price %s: %w", args[1], err)
			}
			decimals, err := strconv.ParseUint(args[2], 10, 32)
			if err != nil {
				return nil, fmt.Errorf("invalid decimals %s: %w", args[2], err)
			}
			multiplier, err := feeder.ToMultiplier(price, uint32(decimals))
			if err != nil {
				return nil, err
			}
			return &types.MsgReportPrice{
				AssetID:    args[0],
				Multiplier: multiplier,
				Decimals:   uint32(decimals),
			}, nil
		})
}

// CmdConfigureAdminRole returns a CLI command handler for replacing the governance committee
func CmdConfigureAdminRole() *cobra.Command {
	cmd := txCmd("configure-admin-role", "Replace the governance proposers, voters, timelock and quorum",
		`Example:
  $ oracled tx configure-admin-role --proposers alice --voters alice,bob,carol --timelock 1h --quorum-bps 6000`,
		cobra.NoArgs,
		func(cmd *cobra.Command, _ []string) (types.Msg, error) {
			proposers, err := cmd.Flags().GetStringSlice(FlagProposers)
			if err != nil {
				return nil, err
			}
			voters, err := cmd.Flags().GetStringSlice(FlagVoters)
			if err != nil {
				return nil, err
			}
			timelock, err := cmd.Flags().GetDuration(FlagTimelock)
			if err != nil {
				return nil, err
			}
			quorum, err := cmd.Flags().GetUint32(FlagQuorumBps)
			if err != nil {
				return nil, err
			}
			return &types.MsgConfigureAdminRole{
				Proposers:     proposers,
				Voters:        voters,
				TimelockDelay: durationNanos(timelock),
				QuorumBps:     quorum,
			}, nil
		})

	cmd.Flags().StringSlice(FlagProposers, nil, "accounts allowed to propose actions")
	cmd.Flags().StringSlice(FlagVoters, nil, "accounts allowed to approve proposals")
	cmd.Flags().Duration(FlagTimelock, 0, "delay between proposal and execution")
	cmd.Flags().Uint32(FlagQuorumBps, 0, "approvals required, in basis points of the voter count")
	return cmd
}

// CmdProposeAction returns a CLI command handler for creating a governance proposal
func CmdProposeAction() *cobra.Command {
	return &cobra.Command{
		Use:   "propose [action-type] [detail-json]",
		Short: "Propose an administrative action",
		Long: fmt.Sprintf(`Propose an administrative action. The detail is the JSON body of the
action; Pause and Resume take none.

Action types: %s

Example:
  $ oracled tx propose Pause
  $ oracled tx propose AddNodeOperator '{"account_id":"operator-1"}'`, strings.Join(types.ActionTypes(), ", ")),
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			action, err := parseAction(args)
			if err != nil {
				return err
			}

			c, err := NewClient(cmd)
			if err != nil {
				return err
			}
			var out types.MsgProposeActionResponse
			res, err := c.BroadcastInto(cmd.Context(), &types.MsgProposeAction{Action: action}, &out)
			if err != nil {
				return err
			}
			return printJSON(cmd, res)
		},
	}
}

// CmdApproveProposal returns a CLI command handler for approving a proposal
func CmdApproveProposal() *cobra.Command {
	return txCmd("approve-proposal [id]", "Approve a pending proposal", "", cobra.ExactArgs(1),
		func(_ *cobra.Command, args []string) (types.Msg, error) {
			id, err := parseProposalID(args[0])
			if err != nil {
				return nil, err
			}
			return &types.MsgApproveProposal{ProposalID: id}, nil
		})
}

// CmdExecuteProposal returns a CLI command handler for executing a proposal
func CmdExecuteProposal() *cobra.Command {
	return txCmd("execute-proposal [id]", "Execute a proposal whose timelock has passed", "", cobra.ExactArgs(1),
		func(_ *cobra.Command, args []string) (types.Msg, error) {
			id, err := parseProposalID(args[0])
			if err != nil {
				return nil, err
			}
			return &types.MsgExecuteProposal{ProposalID: id}, nil
		})
}

// CmdCancelProposal returns a CLI command handler for cancelling a proposal
func CmdCancelProposal() *cobra.Command {
	return txCmd("cancel-proposal [id]", "Cancel a pending proposal", "", cobra.ExactArgs(1),
		func(_ *cobra.Command, args []string) (types.Msg, error) {
			id, err := parseProposalID(args[0])
			if err != nil {
				return nil, err
			}
			return &types.MsgCancelProposal{ProposalID: id}, nil
		})
}

func parseProposalID(raw string) (uint64, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid proposal id %s: %w", raw, err)
	}
	return id, nil
}

// parseAction builds an admin action from its type tag and optional detail
func parseAction(args []string) (types.AdminAction, error) {
	tagged := map[string]json.RawMessage{}
	typeTag, err := json.Marshal(args[0])
	if err != nil {
		return nil, err
	}
	tagged["type"] = typeTag
	if len(args) > 1 {
		if !json.Valid([]byte(args[1])) {
			return nil, fmt.Errorf("detail is not valid JSON: %s", args[1])
		}
		tagged["detail"] = json.RawMessage(args[1])
	}

	bz, err := json.Marshal(tagged)
	if err != nil {
		return nil, err
	}
	action, err := types.UnmarshalAdminAction(bz)
	if err != nil {
		return nil, err
	}
	return action, action.ValidateBasic()
}

// parseDuration accepts a Go duration such as 90s or 24h and returns nanoseconds
func parseDuration(raw string) (uint64, error) {
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %s: %w", raw, err)
	}
	return durationNanos(d), nil
}
