package keeper

import (
	"context"

	"github.com/paw-chain/tee-oracle/x/oracle/types"
)

// Querier serves the read-only surface of the oracle. No method mutates state.
type Querier struct {
	Keeper
}

// NewQuerier returns a Querier over keeper
func NewQuerier(keeper Keeper) Querier {
	return Querier{Keeper: keeper}
}

// Price returns the current price of an asset, failing when it is absent or stale
func (q Querier) Price(ctx context.Context, assetID string) (*types.QueryPriceResponse, error) {
	if assetID == "" {
		return nil, types.ErrInvalidAsset.Wrap("asset cannot be empty")
	}

	data, found := q.GetPrice(ctx, assetID)
	if !found {
		return nil, types.ErrPriceNotFound.Wrapf("asset %s", assetID)
	}
	return &types.QueryPriceResponse{Price: data}, nil
}

// Prices returns every currently available price
func (q Querier) Prices(ctx context.Context) (*types.QueryPricesResponse, error) {
	return &types.QueryPricesResponse{Prices: q.GetPriceData(ctx)}, nil
}

// PriceNoOlderThan returns the external-schema price when it is at most maxAge old
func (q Querier) PriceNoOlderThan(ctx context.Context, assetID string, maxAge uint64) (*types.QueryPythPriceResponse, error) {
	price, err := q.GetPriceNoOlderThan(ctx, assetID, maxAge)
	if err != nil {
		return nil, err
	}
	return &types.QueryPythPriceResponse{AssetID: assetID, Price: price}, nil
}

// PriceUnsafe returns the external-schema price regardless of age
func (q Querier) PriceUnsafe(ctx context.Context, assetID string) (*types.QueryPythPriceResponse, error) {
	price, err := q.GetPriceUnsafe(ctx, assetID)
	if err != nil {
		return nil, err
	}
	return &types.QueryPythPriceResponse{AssetID: assetID, Price: price}, nil
}

// Asset returns a single asset definition
func (q Querier) Asset(ctx context.Context, assetID string) (*types.QueryAssetResponse, error) {
	asset, found := q.GetAsset(ctx, assetID)
	if !found {
		return nil, types.ErrAssetNotFound.Wrapf("asset %s", assetID)
	}
	return &types.QueryAssetResponse{Asset: asset}, nil
}

// Assets returns every asset definition
func (q Querier) Assets(ctx context.Context) (*types.QueryAssetsResponse, error) {
	return &types.QueryAssetsResponse{Assets: q.GetAssets(ctx)}, nil
}

// IsNodeAuthorized reports whether a node may submit prices
func (q Querier) IsNodeAuthorized(ctx context.Context, node string) (*types.QueryIsAuthorizedResponse, error) {
	return &types.QueryIsAuthorizedResponse{Node: node, Authorized: q.IsAuthorized(ctx, node)}, nil
}

// Node returns the record of a registered node
func (q Querier) Node(ctx context.Context, node string) (*types.QueryNodeResponse, error) {
	record, found := q.GetNodeDetails(ctx, node)
	if !found {
		return nil, types.ErrNodeNotFound.Wrapf("node %s", node)
	}
	return &types.QueryNodeResponse{Node: record}, nil
}

// AuthorizedNodes lists every authorized node
func (q Querier) AuthorizedNodes(ctx context.Context) (*types.QueryAuthorizedNodesResponse, error) {
	return &types.QueryAuthorizedNodesResponse{Nodes: q.GetAuthorizedNodes(ctx)}, nil
}

// AdminRole returns the governance committee and its current approval threshold
func (q Querier) AdminRole(ctx context.Context) (*types.QueryAdminRoleResponse, error) {
	return &types.QueryAdminRoleResponse{
		Role:              q.GetAdminRole(ctx),
		RequiredApprovals: q.RequiredApprovals(ctx),
	}, nil
}

// Proposal returns a pending proposal
func (q Querier) Proposal(ctx context.Context, id uint64) (*types.QueryProposalResponse, error) {
	proposal, found := q.GetProposal(ctx, id)
	if !found {
		return nil, types.ErrProposalNotFound.Wrapf("proposal %d", id)
	}
	return &types.QueryProposalResponse{Proposal: proposal}, nil
}

// Proposals lists every pending proposal
func (q Querier) Proposals(ctx context.Context) (*types.QueryProposalsResponse, error) {
	return &types.QueryProposalsResponse{Proposals: q.ListProposals(ctx)}, nil
}

// Params returns the policy, the pause switch, and the owner
func (q Querier) Params(ctx context.Context) (*types.QueryParamsResponse, error) {
	return &types.QueryParamsResponse{
		Params:     q.GetParams(ctx),
		PauseState: q.GetPauseState(ctx),
		Owner:      q.GetAuthority(),
	}, nil
}

// Operators lists the whitelist with each operator's bound node
func (q Querier) Operators(ctx context.Context) (*types.QueryOperatorsResponse, error) {
	return &types.QueryOperatorsResponse{Operators: q.GetBindings(ctx)}, nil
}

// CodeHashes lists the approved code hashes with their measurements
func (q Querier) CodeHashes(ctx context.Context) (*types.QueryCodeHashesResponse, error) {
	return &types.QueryCodeHashesResponse{CodeHashes: q.GetCodeHashes(ctx)}, nil
}
