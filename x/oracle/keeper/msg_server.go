package keeper

import (
	"context"

	"github.com/paw-chain/tee-oracle/x/oracle/types"
)

// MsgServer validates messages and hands them to the keeper. The caller's
// authority is checked before the message payload.
type MsgServer struct {
	Keeper
}

// NewMsgServerImpl returns a MsgServer over keeper
func NewMsgServerImpl(keeper Keeper) MsgServer {
	return MsgServer{Keeper: keeper}
}

func (ms MsgServer) AddAsset(ctx context.Context, msg *types.MsgAddAsset) (*types.MsgResponse, error) {
	if err := ms.validate(msg, ms.assertOwner); err != nil {
		return nil, err
	}
	if err := ms.Keeper.AddAsset(ctx, msg.Caller, msg.Asset); err != nil {
		return nil, err
	}
	return &types.MsgResponse{}, nil
}

func (ms MsgServer) AddNodeOperator(ctx context.Context, msg *types.MsgAddNodeOperator) (*types.MsgResponse, error) {
	if err := ms.validate(msg, ms.assertOwner); err != nil {
		return nil, err
	}
	if err := ms.Keeper.AddNodeOperator(ctx, msg.Caller, msg.Operator); err != nil {
		return nil, err
	}
	return &types.MsgResponse{}, nil
}

func (ms MsgServer) RemoveNodeOperator(ctx context.Context, msg *types.MsgRemoveNodeOperator) (*types.MsgRemoveNodeOperatorResponse, error) {
	if err := ms.validate(msg, ms.assertOwner); err != nil {
		return nil, err
	}
	affected, err := ms.Keeper.RemoveNodeOperator(ctx, msg.Caller, msg.Operator)
	if err != nil {
		return nil, err
	}
	if affected == nil {
		affected = []string{}
	}
	return &types.MsgRemoveNodeOperatorResponse{AffectedAssets: affected}, nil
}

func (ms MsgServer) ApproveCodeHash(ctx context.Context, msg *types.MsgApproveCodeHash) (*types.MsgResponse, error) {
	if err := ms.validate(msg, ms.assertOwner); err != nil {
		return nil, err
	}
	if err := ms.Keeper.ApproveCodeHash(ctx, msg.Caller, msg.CodeHash); err != nil {
		return nil, err
	}
	return &types.MsgResponse{}, nil
}

func (ms MsgServer) RemoveCodeHash(ctx context.Context, msg *types.MsgRemoveCodeHash) (*types.MsgResponse, error) {
	if err := ms.validate(msg, ms.assertOwner); err != nil {
		return nil, err
	}
	if err := ms.Keeper.RemoveCodeHash(ctx, msg.Caller, msg.CodeHash); err != nil {
		return nil, err
	}
	return &types.MsgResponse{}, nil
}

func (ms MsgServer) ApproveAttestation(ctx context.Context, msg *types.MsgApproveAttestation) (*types.MsgResponse, error) {
	if err := ms.validate(msg, ms.assertOwner); err != nil {
		return nil, err
	}
	if err := ms.Keeper.ApproveAttestation(ctx, msg.Caller, msg.CodeHash, msg.MrEnclave); err != nil {
		return nil, err
	}
	return &types.MsgResponse{}, nil
}

func (ms MsgServer) RemoveAttestation(ctx context.Context, msg *types.MsgRemoveAttestation) (*types.MsgResponse, error) {
	if err := ms.validate(msg, ms.assertOwner); err != nil {
		return nil, err
	}
	if err := ms.Keeper.RemoveAttestation(ctx, msg.Caller, msg.CodeHash); err != nil {
		return nil, err
	}
	return &types.MsgResponse{}, nil
}

func (ms MsgServer) Pause(ctx context.Context, msg *types.MsgPause) (*types.MsgResponse, error) {
	if err := ms.validate(msg, ms.assertOwner); err != nil {
		return nil, err
	}
	if err := ms.Keeper.Pause(ctx, msg.Caller); err != nil {
		return nil, err
	}
	return &types.MsgResponse{}, nil
}

func (ms MsgServer) Resume(ctx context.Context, msg *types.MsgResume) (*types.MsgResponse, error) {
	if err := ms.validate(msg, ms.assertOwner); err != nil {
		return nil, err
	}
	if err := ms.Keeper.Resume(ctx, msg.Caller); err != nil {
		return nil, err
	}
	return &types.MsgResponse{}, nil
}

func (ms MsgServer) UpdateConfig(ctx context.Context, msg *types.MsgUpdateConfig) (*types.MsgResponse, error) {
	if err := ms.validate(msg, ms.assertOwner); err != nil {
		return nil, err
	}
	if err := ms.Keeper.UpdateConfig(ctx, msg.Caller, msg.RecencyThreshold, msg.MinReportCount); err != nil {
		return nil, err
	}
	return &types.MsgResponse{}, nil
}

func (ms MsgServer) SetAttestationMaxAge(ctx context.Context, msg *types.MsgSetAttestationMaxAge) (*types.MsgResponse, error) {
	if err := ms.validate(msg, ms.assertOwner); err != nil {
		return nil, err
	}
	if err := ms.Keeper.SetAttestationMaxAge(ctx, msg.Caller, msg.MaxAge); err != nil {
		return nil, err
	}
	return &types.MsgResponse{}, nil
}

func (ms MsgServer) SetNodeAccount(ctx context.Context, msg *types.MsgSetNodeAccount) (*types.MsgResponse, error) {
	if err := ms.validate(msg, ms.assertOperator(ctx)); err != nil {
		return nil, err
	}
	if err := ms.Keeper.SetNodeAccount(ctx, msg.Caller, msg.Node); err != nil {
		return nil, err
	}
	return &types.MsgResponse{}, nil
}

func (ms MsgServer) RegisterNode(ctx context.Context, msg *types.MsgRegisterNode) (*types.MsgResponse, error) {
	if err := ms.validate(msg, ms.assertBoundNode(ctx)); err != nil {
		return nil, err
	}
	if err := ms.Keeper.RegisterNode(ctx, msg.Caller, msg.CodeHash, msg.Attestation); err != nil {
		return nil, err
	}
	return &types.MsgResponse{}, nil
}

func (ms MsgServer) ReportPrice(ctx context.Context, msg *types.MsgReportPrice) (*types.MsgResponse, error) {
	if err := ms.validate(msg, ms.assertReporter(ctx)); err != nil {
		return nil, err
	}
	if err := ms.Keeper.ReportPrice(ctx, msg.Caller, msg.AssetID, msg.Multiplier, msg.Decimals); err != nil {
		return nil, err
	}
	return &types.MsgResponse{}, nil
}

func (ms MsgServer) ConfigureAdminRole(ctx context.Context, msg *types.MsgConfigureAdminRole) (*types.MsgResponse, error) {
	if err := ms.validate(msg, ms.assertOwner); err != nil {
		return nil, err
	}
	if err := ms.Keeper.ConfigureAdminRole(ctx, msg.Caller, msg.Proposers, msg.Voters, msg.TimelockDelay, msg.QuorumBps); err != nil {
		return nil, err
	}
	return &types.MsgResponse{}, nil
}

func (ms MsgServer) ProposeAction(ctx context.Context, msg *types.MsgProposeAction) (*types.MsgProposeActionResponse, error) {
	if err := ms.validate(msg, ms.assertProposer(ctx)); err != nil {
		return nil, err
	}
	id, err := ms.Keeper.ProposeAction(ctx, msg.Caller, msg.Action)
	if err != nil {
		return nil, err
	}
	return &types.MsgProposeActionResponse{ProposalID: id}, nil
}

func (ms MsgServer) ApproveProposal(ctx context.Context, msg *types.MsgApproveProposal) (*types.MsgResponse, error) {
	if err := ms.validate(msg, nil); err != nil {
		return nil, err
	}
	if err := ms.Keeper.ApproveProposal(ctx, msg.Caller, msg.ProposalID); err != nil {
		return nil, err
	}
	return &types.MsgResponse{}, nil
}

func (ms MsgServer) ExecuteProposal(ctx context.Context, msg *types.MsgExecuteProposal) (*types.MsgResponse, error) {
	if err := ms.validate(msg, nil); err != nil {
		return nil, err
	}
	if err := ms.Keeper.ExecuteProposal(ctx, msg.Caller, msg.ProposalID); err != nil {
		return nil, err
	}
	return &types.MsgResponse{}, nil
}

func (ms MsgServer) CancelProposal(ctx context.Context, msg *types.MsgCancelProposal) (*types.MsgResponse, error) {
	if err := ms.validate(msg, ms.assertOwner); err != nil {
		return nil, err
	}
	if err := ms.Keeper.CancelProposal(ctx, msg.Caller, msg.ProposalID); err != nil {
		return nil, err
	}
	return &types.MsgResponse{}, nil
}

// validate checks the caller, then authorize, then the payload of msg
func (ms MsgServer) validate(msg types.Msg, authorize func(caller string) error) error {
	if msg.GetCaller() == "" {
		return types.ErrMissingCaller
	}
	if authorize != nil {
		if err := authorize(msg.GetCaller()); err != nil {
			return err
		}
	}
	return msg.ValidatePayload()
}

func (ms MsgServer) assertOperator(ctx context.Context) func(string) error {
	return func(caller string) error {
		if !ms.IsWhitelistedOperator(ctx, caller) {
			return types.ErrOperatorNotWhitelisted.Wrapf("operator %s", caller)
		}
		return nil
	}
}

func (ms MsgServer) assertBoundNode(ctx context.Context) func(string) error {
	return func(caller string) error {
		if _, bound := ms.GetNodeOperator(ctx, caller); !bound {
			return types.ErrNodeNotBound.Wrapf("node %s", caller)
		}
		return nil
	}
}

func (ms MsgServer) assertReporter(ctx context.Context) func(string) error {
	return func(caller string) error {
		if !ms.IsAuthorized(ctx, caller) {
			ms.metrics.ReportRejections.WithLabelValues("unauthorized").Inc()
			return types.ErrNodeNotAuthorized.Wrapf("node %s", caller)
		}
		return nil
	}
}

func (ms MsgServer) assertProposer(ctx context.Context) func(string) error {
	return func(caller string) error {
		if !ms.IsProposer(ctx, caller) {
			return types.ErrNotProposer.Wrapf("account %s", caller)
		}
		return nil
	}
}
