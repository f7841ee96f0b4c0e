package keeper

// This file exports private keeper methods for testing purposes.

import (
	"context"

	"github.com/paw-chain/tee-oracle/x/oracle/types"
)

// DeleteOperatorForTest removes an operator from the whitelist without
// running the revocation cascade, leaving its binding in place.
func (k Keeper) DeleteOperatorForTest(ctx context.Context, operator string) {
	k.deleteKey(ctx, GetOperatorKey(operator))
}

// DispatchAdminActionForTest exposes the governance dispatcher
func (k Keeper) DispatchAdminActionForTest(ctx context.Context, action types.AdminAction) error {
	return k.dispatchAdminAction(ctx, "test", action)
}
