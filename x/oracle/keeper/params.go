package keeper

import (
	"context"
	"fmt"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/tee-oracle/x/oracle/types"
)

// GetParams returns the current policy, falling back to defaults before
// genesis has written any.
func (k Keeper) GetParams(ctx context.Context) types.Params {
	params := types.DefaultParams()
	found, err := k.getJSON(ctx, types.ParamsKey, &params)
	if err != nil {
		k.Logger(ctx).Error("failed to decode params, using defaults", "error", err)
		return types.DefaultParams()
	}
	if !found {
		return types.DefaultParams()
	}
	return params
}

// SetParams validates and stores the policy
func (k Keeper) SetParams(ctx context.Context, params types.Params) error {
	if err := params.Validate(); err != nil {
		return err
	}
	return k.setJSON(ctx, types.ParamsKey, params)
}

// UpdateConfig changes the recency threshold and/or the global report floor.
// Every asset with a live report set is re-finalized under the new policy.
func (k Keeper) UpdateConfig(ctx context.Context, caller string, recencyThreshold *uint64, minReportCount *uint32) error {
	if err := k.assertOwner(caller); err != nil {
		return err
	}
	return k.updateConfig(ctx, caller, recencyThreshold, minReportCount)
}

func (k Keeper) updateConfig(ctx context.Context, actor string, recencyThreshold *uint64, minReportCount *uint32) error {
	params := k.GetParams(ctx)
	if recencyThreshold != nil {
		params.RecencyThreshold = *recencyThreshold
	}
	if minReportCount != nil {
		params.MinReportCount = types.ClampMinReportCount(*minReportCount)
	}
	if err := k.SetParams(ctx, params); err != nil {
		return err
	}

	k.emit(ctx, types.EventTypeConfigUpdated,
		sdk.NewAttribute(types.AttributeKeyActor, actor),
		sdk.NewAttribute(types.AttributeKeyRecencyThreshold, fmt.Sprintf("%d", params.RecencyThreshold)),
		sdk.NewAttribute(types.AttributeKeyMinReportCount, fmt.Sprintf("%d", params.MinReportCount)),
	)

	refinalized, err := k.refinalizeAll(ctx)
	if err != nil {
		return err
	}

	k.Logger(ctx).Info("oracle config updated",
		"recency_threshold", params.RecencyThreshold,
		"min_report_count", params.MinReportCount,
		"refinalized_assets", refinalized,
	)
	return nil
}

// SetAttestationMaxAge changes the maximum attestation age accepted at
// registration. Zero is rejected.
func (k Keeper) SetAttestationMaxAge(ctx context.Context, caller string, maxAge uint64) error {
	if err := k.assertOwner(caller); err != nil {
		return err
	}
	if maxAge == 0 {
		return types.ErrInvalidMaxAge
	}

	params := k.GetParams(ctx)
	params.AttestationMaxAge = maxAge
	if err := k.SetParams(ctx, params); err != nil {
		return err
	}

	k.emit(ctx, types.EventTypeMaxAgeUpdated,
		sdk.NewAttribute(types.AttributeKeyMaxAge, fmt.Sprintf("%d", maxAge)),
	)
	return nil
}
