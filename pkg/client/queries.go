package client

import (
	"context"
	"fmt"
	"net/url"

	sdkmath "cosmossdk.io/math"

	"github.com/paw-chain/tee-oracle/x/oracle/types"
)

// Price returns the published price of an asset
func (c *Client) Price(ctx context.Context, assetID string) (*types.QueryPriceResponse, error) {
	var res types.QueryPriceResponse
	if err := c.get(ctx, "/v1/prices/"+url.PathEscape(assetID), &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Prices returns every published price
func (c *Client) Prices(ctx context.Context) (*types.QueryPricesResponse, error) {
	var res types.QueryPricesResponse
	if err := c.get(ctx, "/v1/prices", &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// PythPriceNoOlderThan returns the price in the external schema if it was
// published at most maxAge seconds ago
func (c *Client) PythPriceNoOlderThan(ctx context.Context, assetID string, maxAge uint64) (*types.QueryPythPriceResponse, error) {
	var res types.QueryPythPriceResponse
	path := fmt.Sprintf("/v1/pyth/price/%s?max_age=%d", url.PathEscape(assetID), maxAge)
	if err := c.get(ctx, path, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// PythPriceUnsafe returns the price in the external schema regardless of age
func (c *Client) PythPriceUnsafe(ctx context.Context, assetID string) (*types.QueryPythPriceResponse, error) {
	var res types.QueryPythPriceResponse
	if err := c.get(ctx, "/v1/pyth/unsafe/"+url.PathEscape(assetID), &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Asset returns one asset definition
func (c *Client) Asset(ctx context.Context, assetID string) (*types.QueryAssetResponse, error) {
	var res types.QueryAssetResponse
	if err := c.get(ctx, "/v1/assets/"+url.PathEscape(assetID), &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Assets returns every asset definition
func (c *Client) Assets(ctx context.Context) (*types.QueryAssetsResponse, error) {
	var res types.QueryAssetsResponse
	if err := c.get(ctx, "/v1/assets", &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// IsAuthorized reports whether node may submit prices
func (c *Client) IsAuthorized(ctx context.Context, node string) (bool, error) {
	var res types.QueryIsAuthorizedResponse
	if err := c.get(ctx, "/v1/nodes/"+url.PathEscape(node)+"/authorized", &res); err != nil {
		return false, err
	}
	return res.Authorized, nil
}

// Node returns a node record
func (c *Client) Node(ctx context.Context, node string) (*types.QueryNodeResponse, error) {
	var res types.QueryNodeResponse
	if err := c.get(ctx, "/v1/nodes/"+url.PathEscape(node), &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// AuthorizedNodes lists the authorized nodes
func (c *Client) AuthorizedNodes(ctx context.Context) (*types.QueryAuthorizedNodesResponse, error) {
	var res types.QueryAuthorizedNodesResponse
	if err := c.get(ctx, "/v1/nodes", &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Operators lists whitelisted operators with their node bindings
func (c *Client) Operators(ctx context.Context) (*types.QueryOperatorsResponse, error) {
	var res types.QueryOperatorsResponse
	if err := c.get(ctx, "/v1/operators", &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// CodeHashes lists approved code hashes with their enclave measurements
func (c *Client) CodeHashes(ctx context.Context) (*types.QueryCodeHashesResponse, error) {
	var res types.QueryCodeHashesResponse
	if err := c.get(ctx, "/v1/code-hashes", &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Params returns the aggregation policy, pause state and owner
func (c *Client) Params(ctx context.Context) (*types.QueryParamsResponse, error) {
	var res types.QueryParamsResponse
	if err := c.get(ctx, "/v1/params", &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// AdminRole returns the governance committee
func (c *Client) AdminRole(ctx context.Context) (*types.QueryAdminRoleResponse, error) {
	var res types.QueryAdminRoleResponse
	if err := c.get(ctx, "/v1/governance/role", &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Proposal returns a pending proposal
func (c *Client) Proposal(ctx context.Context, id uint64) (*types.QueryProposalResponse, error) {
	var res types.QueryProposalResponse
	if err := c.get(ctx, fmt.Sprintf("/v1/governance/proposals/%d", id), &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Proposals lists pending proposals
func (c *Client) Proposals(ctx context.Context) (*types.QueryProposalsResponse, error) {
	var res types.QueryProposalsResponse
	if err := c.get(ctx, "/v1/governance/proposals", &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Health returns the server's health report
func (c *Client) Health(ctx context.Context, detailed bool) (map[string]interface{}, error) {
	path := "/health/ready"
	if detailed {
		path = "/health/detailed"
	}
	var res map[string]interface{}
	if err := c.get(ctx, path, &res); err != nil {
		return nil, err
	}
	return res, nil
}

// ReportPrice submits a price observation as the token's node
func (c *Client) ReportPrice(ctx context.Context, assetID string, multiplier sdkmath.Uint, decimals uint32) (*TxResponse, error) {
	return c.Broadcast(ctx, &types.MsgReportPrice{
		AssetID:    assetID,
		Multiplier: multiplier,
		Decimals:   decimals,
	})
}

// RegisterNode registers the token's node with an enclave attestation
func (c *Client) RegisterNode(ctx context.Context, codeHash string, attestation types.AttestationData) (*TxResponse, error) {
	return c.Broadcast(ctx, &types.MsgRegisterNode{CodeHash: codeHash, Attestation: attestation})
}

// ProposeAction creates a governance proposal and returns its id
func (c *Client) ProposeAction(ctx context.Context, action types.AdminAction) (uint64, error) {
	var res types.MsgProposeActionResponse
	if _, err := c.BroadcastInto(ctx, &types.MsgProposeAction{Action: action}, &res); err != nil {
		return 0, err
	}
	return res.ProposalID, nil
}
