package keeper

import (
	"context"
	"fmt"
	"strings"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/tee-oracle/x/oracle/types"
)

// RemoveNodeOperator removes an operator from the whitelist and revokes its
// node. It returns the assets whose report sets were pruned.
func (k Keeper) RemoveNodeOperator(ctx context.Context, caller, operator string) ([]string, error) {
	if err := k.assertOwner(caller); err != nil {
		return nil, err
	}
	return k.removeNodeOperator(ctx, caller, operator)
}

func (k Keeper) removeNodeOperator(ctx context.Context, actor, operator string) ([]string, error) {
	if err := types.ValidateAccountID(operator); err != nil {
		return nil, err
	}

	k.deleteKey(ctx, GetOperatorKey(operator))

	var affected []string
	if node, bound := k.GetOperatorNode(ctx, operator); bound {
		k.deleteKey(ctx, GetOperatorToNodeKey(operator))

		var err error
		affected, err = k.revokeNode(ctx, node)
		if err != nil {
			return nil, fmt.Errorf("revoke node %s: %w", node, err)
		}
	}

	k.emit(ctx, types.EventTypeOperatorRemoved,
		sdk.NewAttribute(types.AttributeKeyOperator, operator),
		sdk.NewAttribute(types.AttributeKeyActor, actor),
	)
	k.Logger(ctx).Info("node operator removed", "operator", operator, "actor", actor, "affected_assets", affected)
	return affected, nil
}

// revokeNode tears down everything a node holds. Tables are mutated in a
// fixed order: reverse binding, authorization, node record, then each asset's
// report set followed by its re-aggregation. The operator side of the binding
// is left to the caller.
func (k Keeper) revokeNode(ctx context.Context, node string) ([]string, error) {
	k.deleteKey(ctx, GetNodeToOperatorKey(node))
	k.deleteKey(ctx, GetAuthorizedNodeKey(node))
	k.deleteKey(ctx, GetNodeDetailsKey(node))

	var affected []string
	for _, asset := range k.GetAssets(ctx) {
		reports, found := k.GetPriceReports(ctx, asset.ID)
		if !found {
			continue
		}

		pruned := make([]types.PriceReport, 0, len(reports))
		for _, report := range reports {
			if report.OracleID != node {
				pruned = append(pruned, report)
			}
		}
		if len(pruned) == len(reports) {
			continue
		}

		affected = append(affected, asset.ID)
		if _, err := k.finalizeReports(ctx, asset, pruned); err != nil {
			return nil, err
		}
	}

	k.emit(ctx, types.EventTypeNodeRevoked,
		sdk.NewAttribute(types.AttributeKeyNode, node),
	)
	if len(affected) > 0 {
		k.emit(ctx, types.EventTypeReportsPruned,
			sdk.NewAttribute(types.AttributeKeyNode, node),
			sdk.NewAttribute(types.AttributeKeyAsset, strings.Join(affected, ",")),
		)
	}
	k.metrics.Revocations.Inc()
	return affected, nil
}
