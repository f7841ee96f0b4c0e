package keeper

import (
	"context"
	"fmt"

	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/tee-oracle/x/oracle/types"
)

// ReportPrice records the caller node's observation for an asset, replacing
// any earlier report from the same node, and re-finalizes the asset.
func (k Keeper) ReportPrice(ctx context.Context, caller, assetID string, multiplier sdkmath.Uint, decimals uint32) error {
	if caller == "" {
		return types.ErrMissingCaller
	}
	if k.IsPaused(ctx) {
		k.metrics.ReportRejections.WithLabelValues("paused").Inc()
		return types.ErrOraclePaused
	}
	if !k.IsAuthorized(ctx, caller) {
		k.metrics.ReportRejections.WithLabelValues("unauthorized").Inc()
		return types.ErrNodeNotAuthorized.Wrapf("node %s", caller)
	}

	asset, found := k.GetAsset(ctx, assetID)
	if !found {
		k.metrics.ReportRejections.WithLabelValues("unknown_asset").Inc()
		return types.ErrAssetNotFound.Wrapf("asset %s", assetID)
	}
	if asset.Decimals != decimals {
		k.metrics.ReportRejections.WithLabelValues("decimals").Inc()
		return types.ErrDecimalsMismatch.Wrapf("asset %s expects %d, got %d", assetID, asset.Decimals, decimals)
	}

	now := k.now(ctx)
	report := types.PriceReport{
		OracleID: caller,
		Price: types.Price{
			Multiplier: multiplier,
			Decimals:   decimals,
			Timestamp:  now,
		},
		Timestamp: now,
	}

	existing, _ := k.GetPriceReports(ctx, assetID)
	reports := make([]types.PriceReport, 0, len(existing)+1)
	for _, r := range existing {
		if r.OracleID != caller {
			reports = append(reports, r)
		}
	}
	reports = append(reports, report)

	outcome, err := k.finalizeReports(ctx, asset, reports)
	if err != nil {
		return err
	}

	if node, found := k.GetNodeDetails(ctx, caller); found {
		node.LastReport = now
		if err := k.setNodeDetails(ctx, node); err != nil {
			return err
		}
	}

	k.emit(ctx, types.EventTypePriceReported,
		sdk.NewAttribute(types.AttributeKeyAsset, assetID),
		sdk.NewAttribute(types.AttributeKeyNode, caller),
		sdk.NewAttribute(types.AttributeKeyMultiplier, multiplier.String()),
		sdk.NewAttribute(types.AttributeKeyDecimals, fmt.Sprintf("%d", decimals)),
		sdk.NewAttribute(types.AttributeKeyTimestamp, fmt.Sprintf("%d", now)),
	)
	k.metrics.PriceReports.WithLabelValues(assetID).Inc()
	k.Logger(ctx).Debug("price reported", "asset", assetID, "node", caller, "multiplier", multiplier.String(), "outcome", outcome)
	return nil
}

// GetPriceReports returns the live report set of an asset
func (k Keeper) GetPriceReports(ctx context.Context, assetID string) ([]types.PriceReport, bool) {
	var reports []types.PriceReport
	found, err := k.getJSON(ctx, GetPriceReportsKey(assetID), &reports)
	if err != nil {
		k.Logger(ctx).Error("failed to decode price reports", "asset", assetID, "error", err)
		return nil, false
	}
	return reports, found
}

func (k Keeper) setPriceReports(ctx context.Context, assetID string, reports []types.PriceReport) error {
	return k.setJSON(ctx, GetPriceReportsKey(assetID), reports)
}

// GetAggregatedPrice returns the stored published price without any recency check
func (k Keeper) GetAggregatedPrice(ctx context.Context, assetID string) (types.Price, bool) {
	var price types.Price
	found, err := k.getJSON(ctx, GetAggregatedPriceKey(assetID), &price)
	if err != nil {
		k.Logger(ctx).Error("failed to decode aggregated price", "asset", assetID, "error", err)
		return types.Price{}, false
	}
	return price, found
}

// GetPrice returns the published price of an asset with its live source
// count. A price older than the recency threshold is reported as absent even
// though it remains stored.
func (k Keeper) GetPrice(ctx context.Context, assetID string) (types.PriceData, bool) {
	price, found := k.GetAggregatedPrice(ctx, assetID)
	if !found {
		return types.PriceData{}, false
	}

	params := k.GetParams(ctx)
	if params.RecencyThreshold > 0 && saturatingSub(k.now(ctx), price.Timestamp) > params.RecencyThreshold {
		return types.PriceData{}, false
	}

	reports, _ := k.GetPriceReports(ctx, assetID)
	return types.PriceData{
		AssetID:    assetID,
		Price:      price,
		NumSources: uint32(len(reports)),
	}, true
}

// GetPriceData returns every currently available price in asset id order
func (k Keeper) GetPriceData(ctx context.Context) []types.PriceData {
	result := []types.PriceData{}
	for _, asset := range k.GetAssets(ctx) {
		if data, found := k.GetPrice(ctx, asset.ID); found {
			result = append(result, data)
		}
	}
	return result
}

// GetPriceNoOlderThan returns the published price in the external schema when
// it is at most maxAge nanoseconds old.
func (k Keeper) GetPriceNoOlderThan(ctx context.Context, assetID string, maxAge uint64) (types.PythPrice, error) {
	price, found := k.GetAggregatedPrice(ctx, assetID)
	if !found {
		return types.PythPrice{}, types.ErrPriceNotFound.Wrapf("asset %s", assetID)
	}
	if saturatingSub(k.now(ctx), price.Timestamp) > maxAge {
		return types.PythPrice{}, types.ErrPriceNotFound.Wrapf("asset %s is older than %d", assetID, maxAge)
	}
	return price.ToPythPrice()
}

// GetPriceUnsafe returns the published price in the external schema
// regardless of its age.
func (k Keeper) GetPriceUnsafe(ctx context.Context, assetID string) (types.PythPrice, error) {
	price, found := k.GetAggregatedPrice(ctx, assetID)
	if !found {
		return types.PythPrice{}, types.ErrPriceNotFound.Wrapf("asset %s", assetID)
	}
	return price.ToPythPrice()
}
