package keeper

import (
	"fmt"
	"strings"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/tee-oracle/x/oracle/types"
)

// RegisterInvariants registers all oracle invariants
func RegisterInvariants(ir sdk.InvariantRegistry, k Keeper) {
	ir.RegisterRoute(types.ModuleName, "binding-symmetry",
		BindingSymmetryInvariant(k))
	ir.RegisterRoute(types.ModuleName, "authorized-nodes",
		AuthorizedNodeInvariant(k))
	ir.RegisterRoute(types.ModuleName, "report-sets",
		ReportSetInvariant(k))
	ir.RegisterRoute(types.ModuleName, "aggregated-prices",
		AggregatedPriceInvariant(k))
}

// AllInvariants runs all invariants of the oracle
func AllInvariants(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		res, stop := BindingSymmetryInvariant(k)(ctx)
		if stop {
			return res, stop
		}
		res, stop = AuthorizedNodeInvariant(k)(ctx)
		if stop {
			return res, stop
		}
		res, stop = ReportSetInvariant(k)(ctx)
		if stop {
			return res, stop
		}
		return AggregatedPriceInvariant(k)(ctx)
	}
}

// BindingSymmetryInvariant checks that the operator -> node and node ->
// operator maps are inverse of each other, which also bounds every operator to
// a single node.
func BindingSymmetryInvariant(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		var issues []string

		forward := k.members(ctx, types.OperatorToNodeKeyPrefix)
		for _, operator := range forward {
			node, _ := k.GetOperatorNode(ctx, operator)
			back, found := k.GetNodeOperator(ctx, node)
			if !found || back != operator {
				issues = append(issues, fmt.Sprintf("operator %s -> node %s has reverse %q", operator, node, back))
			}
		}

		reverse := k.members(ctx, types.NodeToOperatorKeyPrefix)
		for _, node := range reverse {
			operator, _ := k.GetNodeOperator(ctx, node)
			forwardNode, found := k.GetOperatorNode(ctx, operator)
			if !found || forwardNode != node {
				issues = append(issues, fmt.Sprintf("node %s -> operator %s has forward %q", node, operator, forwardNode))
			}
		}

		return report("binding-symmetry", issues)
	}
}

// AuthorizedNodeInvariant checks that every authorized node is bound to a
// whitelisted operator and has an active record.
func AuthorizedNodeInvariant(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		var issues []string

		for _, node := range k.GetAuthorizedNodes(ctx) {
			operator, bound := k.GetNodeOperator(ctx, node)
			if !bound {
				issues = append(issues, fmt.Sprintf("authorized node %s is not bound", node))
				continue
			}
			if !k.IsWhitelistedOperator(ctx, operator) {
				issues = append(issues, fmt.Sprintf("authorized node %s belongs to removed operator %s", node, operator))
			}
			record, found := k.GetNodeDetails(ctx, node)
			if !found || !record.Active {
				issues = append(issues, fmt.Sprintf("authorized node %s has no active record", node))
			}
		}

		return report("authorized-nodes", issues)
	}
}

// ReportSetInvariant checks that stored report sets are non-empty, hold at
// most one report per node, only carry reports of authorized nodes, and match
// the decimals of their asset.
func ReportSetInvariant(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		var issues []string

		for _, assetID := range k.members(ctx, types.PriceReportsKeyPrefix) {
			asset, found := k.GetAsset(ctx, assetID)
			if !found {
				issues = append(issues, fmt.Sprintf("report set for unknown asset %s", assetID))
				continue
			}

			reports, _ := k.GetPriceReports(ctx, assetID)
			if len(reports) == 0 {
				issues = append(issues, fmt.Sprintf("asset %s has an empty stored report set", assetID))
			}

			seen := make(map[string]bool, len(reports))
			for _, r := range reports {
				if seen[r.OracleID] {
					issues = append(issues, fmt.Sprintf("asset %s has duplicate reports from %s", assetID, r.OracleID))
				}
				seen[r.OracleID] = true

				if !k.IsAuthorized(ctx, r.OracleID) {
					issues = append(issues, fmt.Sprintf("asset %s holds a report from revoked node %s", assetID, r.OracleID))
				}
				if r.Price.Decimals != asset.Decimals {
					issues = append(issues, fmt.Sprintf("asset %s report from %s has decimals %d", assetID, r.OracleID, r.Price.Decimals))
				}
			}
		}

		return report("report-sets", issues)
	}
}

// AggregatedPriceInvariant checks that every published price is the median of
// a stored report set that meets the source threshold of its asset.
func AggregatedPriceInvariant(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		var issues []string
		params := k.GetParams(ctx)

		for _, assetID := range k.members(ctx, types.AggregatedPriceKeyPrefix) {
			asset, found := k.GetAsset(ctx, assetID)
			if !found {
				issues = append(issues, fmt.Sprintf("published price for unknown asset %s", assetID))
				continue
			}
			price, _ := k.GetAggregatedPrice(ctx, assetID)
			reports, found := k.GetPriceReports(ctx, assetID)
			if !found {
				issues = append(issues, fmt.Sprintf("asset %s is priced without a report set", assetID))
				continue
			}

			required := RequiredSources(params.MinReportCount, asset.MinSources)
			if uint32(len(reports)) < required {
				issues = append(issues, fmt.Sprintf("asset %s is priced with %d of %d sources", assetID, len(reports), required))
			}

			expected, err := AggregateReports(reports)
			if err != nil {
				issues = append(issues, fmt.Sprintf("asset %s: %s", assetID, err))
				continue
			}
			if !expected.Multiplier.Equal(price.Multiplier) || expected.Timestamp != price.Timestamp {
				issues = append(issues, fmt.Sprintf("asset %s published %s@%d, reports give %s@%d",
					assetID, price.Multiplier, price.Timestamp, expected.Multiplier, expected.Timestamp))
			}
		}

		return report("aggregated-prices", issues)
	}
}

func report(route string, issues []string) (string, bool) {
	broken := len(issues) > 0
	msg := fmt.Sprintf("%d issues found\n%s", len(issues), strings.Join(issues, "\n"))
	return sdk.FormatInvariant(types.ModuleName, route, msg), broken
}
