package keeper

import (
	"context"

	"github.com/paw-chain/tee-oracle/x/oracle/types"
)

// dispatchAdminAction applies a governance action through the same internal
// primitives the owner uses. Every variant of types.AdminAction must have a
// case here.
func (k Keeper) dispatchAdminAction(ctx context.Context, via string, action types.AdminAction) error {
	switch a := types.NormalizeAdminAction(action).(type) {
	case types.AddNodeOperator:
		return k.addNodeOperator(ctx, via, a.AccountID)
	case types.RemoveNodeOperator:
		_, err := k.removeNodeOperator(ctx, via, a.AccountID)
		return err
	case types.ApproveCodeHash:
		return k.approveCodeHash(ctx, via, a.CodeHash)
	case types.RemoveCodeHash:
		return k.removeCodeHash(ctx, via, a.CodeHash)
	case types.ApproveAttestation:
		return k.approveAttestation(ctx, via, a.CodeHash, a.MrEnclave)
	case types.RemoveAttestation:
		return k.removeAttestation(ctx, via, a.CodeHash)
	case types.Pause:
		return k.pause(ctx, via)
	case types.Resume:
		return k.resume(ctx, via)
	case types.UpdateConfig:
		return k.updateConfig(ctx, via, a.RecencyThreshold, a.MinReportCount)
	default:
		return types.ErrInvalidAction.Wrapf("no handler for %T", action)
	}
}
