package keeper

import (
	"context"
	"fmt"

	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/tee-oracle/x/oracle/types"
)

// ConfigureAdminRole replaces the proposer set, the voter set, the timelock
// delay and the quorum. Every pending proposal is deleted because its
// approvals were gathered under the previous committee. The proposal counter
// keeps counting so ids are never reused.
func (k Keeper) ConfigureAdminRole(ctx context.Context, caller string, proposers, voters []string, timelockDelay uint64, quorumBps uint32) error {
	if err := k.assertOwner(caller); err != nil {
		return err
	}
	if len(voters) == 0 {
		return types.ErrEmptyVoterSet
	}
	quorum, err := types.NormalizeQuorum(quorumBps)
	if err != nil {
		return err
	}
	for _, account := range append(append([]string{}, proposers...), voters...) {
		if err := types.ValidateAccountID(account); err != nil {
			return err
		}
	}

	k.clearPrefix(ctx, types.ProposerKeyPrefix)
	k.clearPrefix(ctx, types.VoterKeyPrefix)
	k.clearPrefix(ctx, types.ProposalKeyPrefix)

	for _, account := range proposers {
		k.setMember(ctx, GetProposerKey(account))
	}
	for _, account := range voters {
		k.setMember(ctx, GetVoterKey(account))
	}

	cfg := types.AdminConfig{TimelockDelay: timelockDelay, QuorumBps: quorum}
	if err := k.setJSON(ctx, types.AdminConfigKey, cfg); err != nil {
		return err
	}

	k.emit(ctx, types.EventTypeAdminRoleConfigured,
		sdk.NewAttribute(types.AttributeKeyActor, caller),
		sdk.NewAttribute(types.AttributeKeyTimelock, fmt.Sprintf("%d", timelockDelay)),
		sdk.NewAttribute(types.AttributeKeyQuorum, fmt.Sprintf("%d", quorum)),
	)
	k.Logger(ctx).Info("admin role configured",
		"proposers", len(proposers),
		"voters", len(voters),
		"timelock_delay", timelockDelay,
		"quorum_bps", quorum,
	)
	return nil
}

// ProposeAction creates a proposal scheduled one timelock delay from now. A
// proposer who is also a voter approves it immediately.
func (k Keeper) ProposeAction(ctx context.Context, caller string, action types.AdminAction) (uint64, error) {
	if caller == "" {
		return 0, types.ErrMissingCaller
	}
	if !k.IsProposer(ctx, caller) {
		return 0, types.ErrNotProposer.Wrapf("account %s", caller)
	}
	if action == nil {
		return 0, types.ErrInvalidAction.Wrap("action cannot be nil")
	}
	action = types.NormalizeAdminAction(action)
	if err := action.ValidateBasic(); err != nil {
		return 0, err
	}

	cfg := k.GetAdminConfig(ctx)
	id := saturatingAdd(k.getProposalCounter(ctx), 1)
	proposal := types.AdminProposal{
		ID:           id,
		Proposer:     caller,
		Action:       action,
		ScheduledFor: saturatingAdd(k.now(ctx), cfg.TimelockDelay),
		Approvals:    []string{},
		Executed:     false,
	}
	if k.IsVoter(ctx, caller) {
		proposal.Approvals = append(proposal.Approvals, caller)
	}

	k.setProposalCounter(ctx, id)
	if err := k.setProposal(ctx, proposal); err != nil {
		return 0, err
	}

	k.emit(ctx, types.EventTypeProposalCreated,
		sdk.NewAttribute(types.AttributeKeyProposalID, fmt.Sprintf("%d", id)),
		sdk.NewAttribute(types.AttributeKeyActor, caller),
		sdk.NewAttribute(types.AttributeKeyAction, action.Type()),
		sdk.NewAttribute(types.AttributeKeyScheduledFor, fmt.Sprintf("%d", proposal.ScheduledFor)),
	)
	k.metrics.GovernanceActions.WithLabelValues("propose", action.Type()).Inc()
	return id, nil
}

// ApproveProposal records the caller's approval. Approving twice is a no-op.
func (k Keeper) ApproveProposal(ctx context.Context, caller string, id uint64) error {
	if caller == "" {
		return types.ErrMissingCaller
	}
	if !k.IsVoter(ctx, caller) {
		return types.ErrNotVoter.Wrapf("account %s", caller)
	}

	proposal, found := k.GetProposal(ctx, id)
	if !found {
		return types.ErrProposalNotFound.Wrapf("proposal %d", id)
	}
	if proposal.Executed {
		return types.ErrProposalExecuted.Wrapf("proposal %d", id)
	}
	if proposal.HasApproval(caller) {
		return nil
	}

	proposal.Approvals = append(proposal.Approvals, caller)
	if err := k.setProposal(ctx, proposal); err != nil {
		return err
	}

	k.emit(ctx, types.EventTypeProposalApproved,
		sdk.NewAttribute(types.AttributeKeyProposalID, fmt.Sprintf("%d", id)),
		sdk.NewAttribute(types.AttributeKeyActor, caller),
		sdk.NewAttribute(types.AttributeKeyApprovals, fmt.Sprintf("%d", len(proposal.Approvals))),
	)
	k.metrics.GovernanceActions.WithLabelValues("approve", proposal.Action.Type()).Inc()
	return nil
}

// ExecuteProposal dispatches a proposal whose timelock has elapsed and whose
// approvals meet quorum, then deletes it.
func (k Keeper) ExecuteProposal(ctx context.Context, caller string, id uint64) error {
	if caller == "" {
		return types.ErrMissingCaller
	}
	if !k.IsProposer(ctx, caller) {
		return types.ErrNotProposer.Wrapf("account %s", caller)
	}

	proposal, found := k.GetProposal(ctx, id)
	if !found {
		return types.ErrProposalNotFound.Wrapf("proposal %d", id)
	}
	if proposal.Executed {
		return types.ErrProposalExecuted.Wrapf("proposal %d", id)
	}
	if now := k.now(ctx); now < proposal.ScheduledFor {
		return types.ErrTimelockActive.Wrapf("proposal %d is scheduled for %d, now %d", id, proposal.ScheduledFor, now)
	}

	required := k.RequiredApprovals(ctx)
	if len(proposal.Approvals) < required {
		return types.ErrQuorumNotMet.Wrapf("proposal %d has %d of %d approvals", id, len(proposal.Approvals), required)
	}

	via := fmt.Sprintf("proposal:%d", id)
	if err := k.dispatchAdminAction(ctx, via, proposal.Action); err != nil {
		return err
	}

	k.deleteKey(ctx, GetProposalKey(id))

	k.emit(ctx, types.EventTypeProposalExecuted,
		sdk.NewAttribute(types.AttributeKeyProposalID, fmt.Sprintf("%d", id)),
		sdk.NewAttribute(types.AttributeKeyActor, caller),
		sdk.NewAttribute(types.AttributeKeyAction, proposal.Action.Type()),
	)
	k.metrics.GovernanceActions.WithLabelValues("execute", proposal.Action.Type()).Inc()
	k.Logger(ctx).Info("proposal executed", "id", id, "action", proposal.Action.Type(), "executor", caller)
	return nil
}

// CancelProposal removes a pending proposal unconditionally
func (k Keeper) CancelProposal(ctx context.Context, caller string, id uint64) error {
	if err := k.assertOwner(caller); err != nil {
		return err
	}

	proposal, found := k.GetProposal(ctx, id)
	if !found {
		return types.ErrProposalNotFound.Wrapf("proposal %d", id)
	}

	k.deleteKey(ctx, GetProposalKey(id))

	k.emit(ctx, types.EventTypeProposalCancelled,
		sdk.NewAttribute(types.AttributeKeyProposalID, fmt.Sprintf("%d", id)),
		sdk.NewAttribute(types.AttributeKeyActor, caller),
	)
	k.metrics.GovernanceActions.WithLabelValues("cancel", proposal.Action.Type()).Inc()
	return nil
}

// IsProposer reports whether account may create and execute proposals
func (k Keeper) IsProposer(ctx context.Context, account string) bool {
	return k.hasKey(ctx, GetProposerKey(account))
}

// IsVoter reports whether account may approve proposals
func (k Keeper) IsVoter(ctx context.Context, account string) bool {
	return k.hasKey(ctx, GetVoterKey(account))
}

// GetAdminConfig returns the timelock delay and quorum
func (k Keeper) GetAdminConfig(ctx context.Context) types.AdminConfig {
	cfg := types.DefaultAdminConfig()
	if _, err := k.getJSON(ctx, types.AdminConfigKey, &cfg); err != nil {
		k.Logger(ctx).Error("failed to decode admin config", "error", err)
		return types.DefaultAdminConfig()
	}
	return cfg
}

// GetAdminRole returns a snapshot of the governance committee
func (k Keeper) GetAdminRole(ctx context.Context) types.AdminRole {
	cfg := k.GetAdminConfig(ctx)
	role := types.AdminRole{
		Proposers:     k.members(ctx, types.ProposerKeyPrefix),
		Voters:        k.members(ctx, types.VoterKeyPrefix),
		TimelockDelay: cfg.TimelockDelay,
		QuorumBps:     cfg.QuorumBps,
	}
	if role.Proposers == nil {
		role.Proposers = []string{}
	}
	if role.Voters == nil {
		role.Voters = []string{}
	}
	return role
}

// RequiredApprovals returns the approvals a proposal needs under the current
// committee. It is zero when no voters are configured.
func (k Keeper) RequiredApprovals(ctx context.Context) int {
	voters := k.members(ctx, types.VoterKeyPrefix)
	return types.RequiredApprovals(len(voters), k.GetAdminConfig(ctx).QuorumBps)
}

// GetProposal returns a pending proposal by id
func (k Keeper) GetProposal(ctx context.Context, id uint64) (types.AdminProposal, bool) {
	var proposal types.AdminProposal
	found, err := k.getJSON(ctx, GetProposalKey(id), &proposal)
	if err != nil {
		k.Logger(ctx).Error("failed to decode proposal", "id", id, "error", err)
		return types.AdminProposal{}, false
	}
	return proposal, found
}

// ListProposals returns every pending proposal in id order
func (k Keeper) ListProposals(ctx context.Context) []types.AdminProposal {
	iter := storetypes.KVStorePrefixIterator(k.getStore(ctx), types.ProposalKeyPrefix)
	defer iter.Close()

	proposals := []types.AdminProposal{}
	for ; iter.Valid(); iter.Next() {
		var proposal types.AdminProposal
		if err := unmarshalValue(iter.Value(), &proposal); err != nil {
			k.Logger(ctx).Error("failed to decode proposal", "key", fmt.Sprintf("%X", iter.Key()), "error", err)
			continue
		}
		proposals = append(proposals, proposal)
	}
	return proposals
}

func (k Keeper) setProposal(ctx context.Context, proposal types.AdminProposal) error {
	return k.setJSON(ctx, GetProposalKey(proposal.ID), proposal)
}

func (k Keeper) getProposalCounter(ctx context.Context) uint64 {
	bz := k.getStore(ctx).Get(types.ProposalCounterKey)
	if bz == nil {
		return 0
	}
	return types.ProposalIDFromBytes(bz)
}

func (k Keeper) setProposalCounter(ctx context.Context, id uint64) {
	k.getStore(ctx).Set(types.ProposalCounterKey, types.ProposalIDBytes(id))
}
