package types

import (
	"encoding/json"

	sdkmath "cosmossdk.io/math"
)

// Msg is a state-changing request. Caller is filled in by the transport from
// the authenticated identity; a value supplied in a request body is ignored.
//
// ValidatePayload checks everything but the caller, so clients can validate a
// message before the server has stamped it. ValidateBasic adds the caller check.
type Msg interface {
	GetCaller() string
	ValidateBasic() error
	ValidatePayload() error
}

// CallerMsg is a Msg whose caller can be stamped by the transport
type CallerMsg interface {
	Msg
	SetCaller(caller string)
}

// MsgAddAsset registers a new asset
type MsgAddAsset struct {
	Caller string `json:"caller,omitempty"`
	Asset  Asset  `json:"asset"`
}

// MsgAddNodeOperator whitelists an operator
type MsgAddNodeOperator struct {
	Caller   string `json:"caller,omitempty"`
	Operator string `json:"operator"`
}

// MsgRemoveNodeOperator removes an operator and revokes its node
type MsgRemoveNodeOperator struct {
	Caller   string `json:"caller,omitempty"`
	Operator string `json:"operator"`
}

// MsgApproveCodeHash approves an enclave code hash
type MsgApproveCodeHash struct {
	Caller   string `json:"caller,omitempty"`
	CodeHash string `json:"code_hash"`
}

// MsgRemoveCodeHash removes an enclave code hash
type MsgRemoveCodeHash struct {
	Caller   string `json:"caller,omitempty"`
	CodeHash string `json:"code_hash"`
}

// MsgApproveAttestation attaches an enclave measurement to a code hash
type MsgApproveAttestation struct {
	Caller    string `json:"caller,omitempty"`
	CodeHash  string `json:"code_hash"`
	MrEnclave string `json:"mr_enclave"`
}

// MsgRemoveAttestation detaches the enclave measurement from a code hash
type MsgRemoveAttestation struct {
	Caller   string `json:"caller,omitempty"`
	CodeHash string `json:"code_hash"`
}

// MsgPause stops price reporting
type MsgPause struct {
	Caller string `json:"caller,omitempty"`
}

// MsgResume re-enables price reporting
type MsgResume struct {
	Caller string `json:"caller,omitempty"`
}

// MsgUpdateConfig changes the aggregation policy
type MsgUpdateConfig struct {
	Caller           string  `json:"caller,omitempty"`
	RecencyThreshold *uint64 `json:"recency_threshold,omitempty"`
	MinReportCount   *uint32 `json:"min_report_count,omitempty"`
}

// MsgSetAttestationMaxAge changes the maximum attestation age
type MsgSetAttestationMaxAge struct {
	Caller string `json:"caller,omitempty"`
	MaxAge uint64 `json:"max_age"`
}

// MsgSetNodeAccount binds a node to the calling operator
type MsgSetNodeAccount struct {
	Caller string `json:"caller,omitempty"`
	Node   string `json:"node"`
}

// MsgRegisterNode authorizes the calling node
type MsgRegisterNode struct {
	Caller      string          `json:"caller,omitempty"`
	CodeHash    string          `json:"code_hash"`
	Attestation AttestationData `json:"attestation"`
}

// MsgReportPrice submits the calling node's observation for an asset
type MsgReportPrice struct {
	Caller     string       `json:"caller,omitempty"`
	AssetID    string       `json:"asset_id"`
	Multiplier sdkmath.Uint `json:"multiplier"`
	Decimals   uint32       `json:"decimals"`
}

// MsgConfigureAdminRole replaces the governance committee
type MsgConfigureAdminRole struct {
	Caller        string   `json:"caller,omitempty"`
	Proposers     []string `json:"proposers"`
	Voters        []string `json:"voters"`
	TimelockDelay uint64   `json:"timelock_delay"`
	QuorumBps     uint32   `json:"quorum_bps"`
}

// MsgProposeAction creates a governance proposal
type MsgProposeAction struct {
	Caller string      `json:"caller,omitempty"`
	Action AdminAction `json:"-"`
}

// MsgApproveProposal approves a pending proposal
type MsgApproveProposal struct {
	Caller     string `json:"caller,omitempty"`
	ProposalID uint64 `json:"proposal_id"`
}

// MsgExecuteProposal executes a pending proposal
type MsgExecuteProposal struct {
	Caller     string `json:"caller,omitempty"`
	ProposalID uint64 `json:"proposal_id"`
}

// MsgCancelProposal cancels a pending proposal
type MsgCancelProposal struct {
	Caller     string `json:"caller,omitempty"`
	ProposalID uint64 `json:"proposal_id"`
}

// MsgResponse is returned by messages that produce no data
type MsgResponse struct{}

// MsgRemoveNodeOperatorResponse lists the assets whose report sets were pruned
type MsgRemoveNodeOperatorResponse struct {
	AffectedAssets []string `json:"affected_assets"`
}

// MsgProposeActionResponse carries the id of the new proposal
type MsgProposeActionResponse struct {
	ProposalID uint64 `json:"proposal_id"`
}

func (m MsgAddAsset) GetCaller() string             { return m.Caller }
func (m MsgAddNodeOperator) GetCaller() string      { return m.Caller }
func (m MsgRemoveNodeOperator) GetCaller() string   { return m.Caller }
func (m MsgApproveCodeHash) GetCaller() string      { return m.Caller }
func (m MsgRemoveCodeHash) GetCaller() string       { return m.Caller }
func (m MsgApproveAttestation) GetCaller() string   { return m.Caller }
func (m MsgRemoveAttestation) GetCaller() string    { return m.Caller }
func (m MsgPause) GetCaller() string                { return m.Caller }
func (m MsgResume) GetCaller() string               { return m.Caller }
func (m MsgUpdateConfig) GetCaller() string         { return m.Caller }
func (m MsgSetAttestationMaxAge) GetCaller() string { return m.Caller }
func (m MsgSetNodeAccount) GetCaller() string       { return m.Caller }
func (m MsgRegisterNode) GetCaller() string         { return m.Caller }
func (m MsgReportPrice) GetCaller() string          { return m.Caller }
func (m MsgConfigureAdminRole) GetCaller() string   { return m.Caller }
func (m MsgProposeAction) GetCaller() string        { return m.Caller }
func (m MsgApproveProposal) GetCaller() string      { return m.Caller }
func (m MsgExecuteProposal) GetCaller() string      { return m.Caller }
func (m MsgCancelProposal) GetCaller() string       { return m.Caller }

func (m *MsgAddAsset) SetCaller(caller string)             { m.Caller = caller }
func (m *MsgAddNodeOperator) SetCaller(caller string)      { m.Caller = caller }
func (m *MsgRemoveNodeOperator) SetCaller(caller string)   { m.Caller = caller }
func (m *MsgApproveCodeHash) SetCaller(caller string)      { m.Caller = caller }
func (m *MsgRemoveCodeHash) SetCaller(caller string)       { m.Caller = caller }
func (m *MsgApproveAttestation) SetCaller(caller string)   { m.Caller = caller }
func (m *MsgRemoveAttestation) SetCaller(caller string)    { m.Caller = caller }
func (m *MsgPause) SetCaller(caller string)                { m.Caller = caller }
func (m *MsgResume) SetCaller(caller string)               { m.Caller = caller }
func (m *MsgUpdateConfig) SetCaller(caller string)         { m.Caller = caller }
func (m *MsgSetAttestationMaxAge) SetCaller(caller string) { m.Caller = caller }
func (m *MsgSetNodeAccount) SetCaller(caller string)       { m.Caller = caller }
func (m *MsgRegisterNode) SetCaller(caller string)         { m.Caller = caller }
func (m *MsgReportPrice) SetCaller(caller string)          { m.Caller = caller }
func (m *MsgConfigureAdminRole) SetCaller(caller string)   { m.Caller = caller }
func (m *MsgProposeAction) SetCaller(caller string)        { m.Caller = caller }
func (m *MsgApproveProposal) SetCaller(caller string)      { m.Caller = caller }
func (m *MsgExecuteProposal) SetCaller(caller string)      { m.Caller = caller }
func (m *MsgCancelProposal) SetCaller(caller string)       { m.Caller = caller }

func validateCaller(caller string) error {
	if caller == "" {
		return ErrMissingCaller
	}
	return nil
}

func (m MsgAddAsset) ValidateBasic() error             { return validateBasic(m) }
func (m MsgAddNodeOperator) ValidateBasic() error      { return validateBasic(m) }
func (m MsgRemoveNodeOperator) ValidateBasic() error   { return validateBasic(m) }
func (m MsgApproveCodeHash) ValidateBasic() error      { return validateBasic(m) }
func (m MsgRemoveCodeHash) ValidateBasic() error       { return validateBasic(m) }
func (m MsgApproveAttestation) ValidateBasic() error   { return validateBasic(m) }
func (m MsgRemoveAttestation) ValidateBasic() error    { return validateBasic(m) }
func (m MsgPause) ValidateBasic() error                { return validateBasic(m) }
func (m MsgResume) ValidateBasic() error               { return validateBasic(m) }
func (m MsgUpdateConfig) ValidateBasic() error         { return validateBasic(m) }
func (m MsgSetAttestationMaxAge) ValidateBasic() error { return validateBasic(m) }
func (m MsgSetNodeAccount) ValidateBasic() error       { return validateBasic(m) }
func (m MsgRegisterNode) ValidateBasic() error         { return validateBasic(m) }
func (m MsgReportPrice) ValidateBasic() error          { return validateBasic(m) }
func (m MsgConfigureAdminRole) ValidateBasic() error   { return validateBasic(m) }
func (m MsgProposeAction) ValidateBasic() error        { return validateBasic(m) }
func (m MsgApproveProposal) ValidateBasic() error      { return validateBasic(m) }
func (m MsgExecuteProposal) ValidateBasic() error      { return validateBasic(m) }
func (m MsgCancelProposal) ValidateBasic() error       { return validateBasic(m) }

func validateBasic(m Msg) error {
	if err := validateCaller(m.GetCaller()); err != nil {
		return err
	}
	return m.ValidatePayload()
}

func (m MsgAddAsset) ValidatePayload() error { return m.Asset.Validate() }

func (m MsgAddNodeOperator) ValidatePayload() error    { return ValidateAccountID(m.Operator) }
func (m MsgRemoveNodeOperator) ValidatePayload() error { return ValidateAccountID(m.Operator) }

func (m MsgApproveCodeHash) ValidatePayload() error { return validateCodeHash(m.CodeHash) }
func (m MsgRemoveCodeHash) ValidatePayload() error  { return validateCodeHash(m.CodeHash) }

func (m MsgApproveAttestation) ValidatePayload() error {
	return ApproveAttestation{CodeHash: m.CodeHash, MrEnclave: m.MrEnclave}.ValidateBasic()
}

func (m MsgRemoveAttestation) ValidatePayload() error { return validateCodeHash(m.CodeHash) }

func (m MsgPause) ValidatePayload() error        { return nil }
func (m MsgResume) ValidatePayload() error       { return nil }
func (m MsgUpdateConfig) ValidatePayload() error { return nil }

func (m MsgSetAttestationMaxAge) ValidatePayload() error {
	if m.MaxAge == 0 {
		return ErrInvalidMaxAge
	}
	return nil
}

func (m MsgSetNodeAccount) ValidatePayload() error { return ValidateAccountID(m.Node) }

func (m MsgRegisterNode) ValidatePayload() error {
	if m.CodeHash == "" {
		return ErrCodeHashNotApproved.Wrap("code hash cannot be empty")
	}
	return nil
}

func (m MsgReportPrice) ValidatePayload() error {
	if m.AssetID == "" {
		return ErrInvalidAsset.Wrap("asset id cannot be empty")
	}
	if m.Multiplier.IsNil() {
		return ErrInvalidPrice.Wrap("multiplier is required")
	}
	return nil
}

func (m MsgConfigureAdminRole) ValidatePayload() error {
	if len(m.Voters) == 0 {
		return ErrEmptyVoterSet
	}
	if m.QuorumBps > MaxQuorumBps {
		return ErrInvalidQuorum.Wrapf("got %d", m.QuorumBps)
	}
	return nil
}

func (m MsgProposeAction) ValidatePayload() error {
	if m.Action == nil {
		return ErrInvalidAction.Wrap("action cannot be nil")
	}
	return m.Action.ValidateBasic()
}

func (m MsgApproveProposal) ValidatePayload() error { return nil }
func (m MsgExecuteProposal) ValidatePayload() error { return nil }
func (m MsgCancelProposal) ValidatePayload() error  { return nil }

type msgProposeActionJSON struct {
	Caller string          `json:"caller,omitempty"`
	Action json.RawMessage `json:"action"`
}

// MarshalJSON encodes the message with its action in tagged form
func (m MsgProposeAction) MarshalJSON() ([]byte, error) {
	action, err := MarshalAdminAction(m.Action)
	if err != nil {
		return nil, err
	}
	return json.Marshal(msgProposeActionJSON{Caller: m.Caller, Action: action})
}

// UnmarshalJSON decodes the message and its tagged action
func (m *MsgProposeAction) UnmarshalJSON(bz []byte) error {
	var raw msgProposeActionJSON
	if err := json.Unmarshal(bz, &raw); err != nil {
		return err
	}
	action, err := UnmarshalAdminAction(raw.Action)
	if err != nil {
		return err
	}
	m.Caller = raw.Caller
	m.Action = action
	return nil
}
