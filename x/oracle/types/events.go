package types

// Event types for the Oracle module
// All event types use lowercase with underscore separator (module_action format)
const (
	// Asset and price events
	EventTypeAssetAdded      = "oracle_asset_added"
	EventTypePriceReported   = "oracle_price_reported"
	EventTypePriceAggregated = "oracle_price_aggregated"
	EventTypePriceCleared    = "oracle_price_cleared"
	EventTypeReportsPruned   = "oracle_reports_pruned"

	// Identity events
	EventTypeOperatorAdded    = "oracle_operator_added"
	EventTypeOperatorRemoved  = "oracle_operator_removed"
	EventTypeNodeBound        = "oracle_node_bound"
	EventTypeNodeRevoked      = "oracle_node_revoked"
	EventTypeNodeRegistered   = "oracle_node_registered"
	EventTypeCodeHashApproved = "oracle_code_hash_approved"
	EventTypeCodeHashRemoved  = "oracle_code_hash_removed"
	EventTypeEnclaveApproved  = "oracle_attestation_approved"
	EventTypeEnclaveRemoved   = "oracle_attestation_removed"

	// Policy events
	EventTypePaused        = "oracle_paused"
	EventTypeResumed       = "oracle_resumed"
	EventTypeConfigUpdated = "oracle_config_updated"
	EventTypeMaxAgeUpdated = "oracle_attestation_max_age_updated"

	// Governance events
	EventTypeAdminRoleConfigured = "oracle_admin_role_configured"
	EventTypeProposalCreated     = "oracle_proposal_created"
	EventTypeProposalApproved    = "oracle_proposal_approved"
	EventTypeProposalExecuted    = "oracle_proposal_executed"
	EventTypeProposalCancelled   = "oracle_proposal_cancelled"
)

// Event attribute keys for the Oracle module
const (
	AttributeKeyAsset      = "asset"
	AttributeKeyMultiplier = "multiplier"
	AttributeKeyDecimals   = "decimals"
	AttributeKeyTimestamp  = "timestamp"
	AttributeKeyNumSources = "num_sources"
	AttributeKeyRequired   = "required_sources"
	AttributeKeyReason     = "reason"

	AttributeKeyOperator  = "operator"
	AttributeKeyNode      = "node"
	AttributeKeyCodeHash  = "code_hash"
	AttributeKeyMrEnclave = "mr_enclave"

	AttributeKeyRecencyThreshold = "recency_threshold"
	AttributeKeyMinReportCount   = "min_report_count"
	AttributeKeyMaxAge           = "max_age"

	AttributeKeyProposalID   = "proposal_id"
	AttributeKeyActor        = "actor"
	AttributeKeyAction       = "action"
	AttributeKeyScheduledFor = "scheduled_for"
	AttributeKeyApprovals    = "approvals"
	AttributeKeyQuorum       = "quorum_bps"
	AttributeKeyTimelock     = "timelock_delay"
	AttributeKeyVia          = "via"
)

// Reasons attached to EventTypePriceCleared
const (
	ClearReasonNoFreshReports      = "no_fresh_reports"
	ClearReasonInsufficientSources = "insufficient_sources"
)
