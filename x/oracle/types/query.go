package types

// QueryPriceResponse is the response type for a single price query
type QueryPriceResponse struct {
	Price PriceData `json:"price"`
}

// QueryPricesResponse is the response type for the all-prices query
type QueryPricesResponse struct {
	Prices []PriceData `json:"prices"`
}

// QueryPythPriceResponse is the response type for the external-schema price queries
type QueryPythPriceResponse struct {
	AssetID string    `json:"asset_id"`
	Price   PythPrice `json:"price"`
}

// QueryAssetResponse is the response type for a single asset query
type QueryAssetResponse struct {
	Asset Asset `json:"asset"`
}

// QueryAssetsResponse is the response type for the assets query
type QueryAssetsResponse struct {
	Assets []Asset `json:"assets"`
}

// QueryIsAuthorizedResponse is the response type for the node authorization query
type QueryIsAuthorizedResponse struct {
	Node       string `json:"node"`
	Authorized bool   `json:"authorized"`
}

// QueryNodeResponse is the response type for the node detail query
type QueryNodeResponse struct {
	Node OracleNode `json:"node"`
}

// QueryAuthorizedNodesResponse is the response type for the authorized node list
type QueryAuthorizedNodesResponse struct {
	Nodes []string `json:"nodes"`
}

// QueryAdminRoleResponse is the response type for the governance role snapshot
type QueryAdminRoleResponse struct {
	Role              AdminRole `json:"role"`
	RequiredApprovals int       `json:"required_approvals"`
}

// QueryProposalResponse is the response type for a single proposal query
type QueryProposalResponse struct {
	Proposal AdminProposal `json:"proposal"`
}

// QueryProposalsResponse is the response type for the pending proposal list
type QueryProposalsResponse struct {
	Proposals []AdminProposal `json:"proposals"`
}

// QueryParamsResponse is the response type for the policy query
type QueryParamsResponse struct {
	Params     Params     `json:"params"`
	PauseState PauseState `json:"pause_state"`
	Owner      string     `json:"owner"`
}

// QueryOperatorsResponse is the response type for the operator list
type QueryOperatorsResponse struct {
	Operators []OperatorBinding `json:"operators"`
}

// QueryCodeHashesResponse is the response type for the approved code hash list
type QueryCodeHashesResponse struct {
	CodeHashes []CodeHashApproval `json:"code_hashes"`
}
