package keeper

import (
	"context"
	"fmt"

	"github.com/paw-chain/tee-oracle/x/oracle/types"
)

// InitGenesis initializes the oracle state from a genesis state
func (k Keeper) InitGenesis(ctx context.Context, data types.GenesisState) error {
	if err := data.Validate(); err != nil {
		return err
	}

	// Set parameters
	if err := k.SetParams(ctx, data.Params); err != nil {
		return fmt.Errorf("failed to set params: %w", err)
	}

	if data.Paused {
		state := types.PauseState{Paused: true, PausedBy: k.authority, PausedAt: k.now(ctx)}
		if err := k.setJSON(ctx, types.PauseStateKey, state); err != nil {
			return fmt.Errorf("failed to set pause state: %w", err)
		}
	}

	// Set assets
	for _, asset := range data.Assets {
		if err := k.setAsset(ctx, asset); err != nil {
			return fmt.Errorf("failed to set asset %s: %w", asset.ID, err)
		}
	}

	for _, operator := range data.Operators {
		k.setMember(ctx, GetOperatorKey(operator))
	}

	for _, approval := range data.CodeHashes {
		k.setMember(ctx, GetCodeHashKey(approval.CodeHash))
		if approval.MrEnclave != "" {
			k.getStore(ctx).Set(GetEnclaveKey(approval.CodeHash), []byte(approval.MrEnclave))
		}
	}

	if role := data.AdminRole; role != nil {
		for _, account := range role.Proposers {
			k.setMember(ctx, GetProposerKey(account))
		}
		for _, account := range role.Voters {
			k.setMember(ctx, GetVoterKey(account))
		}
		quorum, err := types.NormalizeQuorum(role.QuorumBps)
		if err != nil {
			return err
		}
		cfg := types.AdminConfig{TimelockDelay: role.TimelockDelay, QuorumBps: quorum}
		if err := k.setJSON(ctx, types.AdminConfigKey, cfg); err != nil {
			return fmt.Errorf("failed to set admin config: %w", err)
		}
	}

	if data.LastProposalID > 0 {
		k.setProposalCounter(ctx, data.LastProposalID)
	}

	k.metrics.AssetsTracked.Set(float64(len(data.Assets)))
	if data.Paused {
		k.metrics.PausedState.Set(1)
	}

	k.Logger(ctx).Info("oracle genesis initialized",
		"assets", len(data.Assets),
		"operators", len(data.Operators),
		"code_hashes", len(data.CodeHashes),
		"paused", data.Paused,
	)
	return nil
}

// ExportGenesis exports the configuration part of the oracle state and the
// proposal counter. Live report sets, node records and pending proposals are
// not exported.
func (k Keeper) ExportGenesis(ctx context.Context) *types.GenesisState {
	gs := &types.GenesisState{
		Params:     k.GetParams(ctx),
		Paused:     k.IsPaused(ctx),
		Assets:     k.GetAssets(ctx),
		Operators:  k.GetOperators(ctx),
		CodeHashes: k.GetCodeHashes(ctx),

		LastProposalID: k.getProposalCounter(ctx),
	}
	if gs.Operators == nil {
		gs.Operators = []string{}
	}

	if role := k.GetAdminRole(ctx); len(role.Voters) > 0 {
		gs.AdminRole = &role
	}
	return gs
}
