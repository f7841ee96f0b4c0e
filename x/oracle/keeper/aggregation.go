package keeper

import (
	"context"
	"fmt"
	"sort"

	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/tee-oracle/x/oracle/types"
)

// AggregationOutcome is the result of finalizing a report set.
type AggregationOutcome string

const (
	// OutcomeCleared means no fresh report survived; both the report set and
	// the published price were removed.
	OutcomeCleared AggregationOutcome = "cleared"

	// OutcomeUnpriced means the report set was kept but it has fewer live
	// sources than required, so no price is published.
	OutcomeUnpriced AggregationOutcome = "unpriced"

	// OutcomePriced means a new median was published.
	OutcomePriced AggregationOutcome = "priced"
)

// RequiredSources returns the effective source threshold of an asset: the
// larger of its own minimum and the global floor, never below one.
func RequiredSources(minReportCount, assetMinSources uint32) uint32 {
	required := types.ClampMinReportCount(minReportCount)
	if assetMinSources > required {
		required = assetMinSources
	}
	return required
}

// CalculateMedian returns the median of values. An even count averages the two
// middle values with truncating division. The input is not modified.
func CalculateMedian(values []sdkmath.Uint) sdkmath.Uint {
	if len(values) == 0 {
		return sdkmath.ZeroUint()
	}

	sorted := make([]sdkmath.Uint, len(values))
	copy(sorted, values)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].LT(sorted[j])
	})

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return sorted[mid-1].Add(sorted[mid]).QuoUint64(2)
}

// AggregateReports computes the published price of a non-empty report set: the
// median multiplier, the decimals of the first report, and the newest report
// timestamp.
func AggregateReports(reports []types.PriceReport) (types.Price, error) {
	if len(reports) == 0 {
		return types.Price{}, types.ErrInvalidPrice.Wrap("no reports to aggregate")
	}

	multipliers := make([]sdkmath.Uint, len(reports))
	var latest uint64
	for i, report := range reports {
		multipliers[i] = report.Price.Multiplier
		if report.Timestamp > latest {
			latest = report.Timestamp
		}
	}

	return types.Price{
		Multiplier: CalculateMedian(multipliers),
		Decimals:   reports[0].Price.Decimals,
		Timestamp:  latest,
	}, nil
}

// filterFresh keeps reports observed at or after minTimestamp, preserving order.
func filterFresh(reports []types.PriceReport, minTimestamp uint64) []types.PriceReport {
	fresh := make([]types.PriceReport, 0, len(reports))
	for _, report := range reports {
		if report.Timestamp >= minTimestamp {
			fresh = append(fresh, report)
		}
	}
	return fresh
}

// finalizeReports is the single path that turns a candidate report set into
// stored state. Stale reports are dropped first. An empty result clears the
// asset; a result below the source threshold is stored without a price;
// otherwise the median is published.
func (k Keeper) finalizeReports(ctx context.Context, asset types.Asset, reports []types.PriceReport) (AggregationOutcome, error) {
	params := k.GetParams(ctx)

	if params.RecencyThreshold > 0 {
		reports = filterFresh(reports, saturatingSub(k.now(ctx), params.RecencyThreshold))
	}

	if len(reports) == 0 {
		k.deleteKey(ctx, GetPriceReportsKey(asset.ID))
		k.deleteKey(ctx, GetAggregatedPriceKey(asset.ID))
		k.emit(ctx, types.EventTypePriceCleared,
			sdk.NewAttribute(types.AttributeKeyAsset, asset.ID),
			sdk.NewAttribute(types.AttributeKeyReason, types.ClearReasonNoFreshReports),
		)
		k.metrics.Aggregations.WithLabelValues(asset.ID, string(OutcomeCleared)).Inc()
		return OutcomeCleared, nil
	}

	if err := k.setPriceReports(ctx, asset.ID, reports); err != nil {
		return "", err
	}
	k.metrics.LiveSources.WithLabelValues(asset.ID).Set(float64(len(reports)))

	required := RequiredSources(params.MinReportCount, asset.MinSources)
	if uint32(len(reports)) < required {
		k.deleteKey(ctx, GetAggregatedPriceKey(asset.ID))
		k.emit(ctx, types.EventTypePriceCleared,
			sdk.NewAttribute(types.AttributeKeyAsset, asset.ID),
			sdk.NewAttribute(types.AttributeKeyReason, types.ClearReasonInsufficientSources),
			sdk.NewAttribute(types.AttributeKeyNumSources, fmt.Sprintf("%d", len(reports))),
			sdk.NewAttribute(types.AttributeKeyRequired, fmt.Sprintf("%d", required)),
		)
		k.metrics.Aggregations.WithLabelValues(asset.ID, string(OutcomeUnpriced)).Inc()
		return OutcomeUnpriced, nil
	}

	price, err := AggregateReports(reports)
	if err != nil {
		return "", err
	}
	if err := k.setJSON(ctx, GetAggregatedPriceKey(asset.ID), price); err != nil {
		return "", err
	}

	k.emit(ctx, types.EventTypePriceAggregated,
		sdk.NewAttribute(types.AttributeKeyAsset, asset.ID),
		sdk.NewAttribute(types.AttributeKeyMultiplier, price.Multiplier.String()),
		sdk.NewAttribute(types.AttributeKeyDecimals, fmt.Sprintf("%d", price.Decimals)),
		sdk.NewAttribute(types.AttributeKeyTimestamp, fmt.Sprintf("%d", price.Timestamp)),
		sdk.NewAttribute(types.AttributeKeyNumSources, fmt.Sprintf("%d", len(reports))),
	)
	k.metrics.Aggregations.WithLabelValues(asset.ID, string(OutcomePriced)).Inc()
	return OutcomePriced, nil
}

// refinalizeAll re-runs finalization for every asset holding a live report set
// and returns the ids it touched.
func (k Keeper) refinalizeAll(ctx context.Context) ([]string, error) {
	var touched []string
	for _, asset := range k.GetAssets(ctx) {
		reports, found := k.GetPriceReports(ctx, asset.ID)
		if !found {
			continue
		}
		if _, err := k.finalizeReports(ctx, asset, reports); err != nil {
			return nil, fmt.Errorf("refinalize %s: %w", asset.ID, err)
		}
		touched = append(touched, asset.ID)
	}
	return touched, nil
}
