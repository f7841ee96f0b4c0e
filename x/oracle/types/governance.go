package types

import (
	"encoding/json"
	"fmt"
	"sort"
)

const (
	// MaxQuorumBps is the quorum expressed in parts-per-10000 that requires every voter
	MaxQuorumBps uint32 = 10_000

	// DefaultQuorumBps is the quorum before roles are configured
	DefaultQuorumBps uint32 = 5_000
)

// Action type tags used in the tagged JSON encoding of admin actions.
const (
	ActionAddNodeOperator    = "AddNodeOperator"
	ActionRemoveNodeOperator = "RemoveNodeOperator"
	ActionApproveCodeHash    = "ApproveCodeHash"
	ActionRemoveCodeHash     = "RemoveCodeHash"
	ActionApproveAttestation = "ApproveAttestation"
	ActionRemoveAttestation  = "RemoveAttestation"
	ActionPause              = "Pause"
	ActionResume             = "Resume"
	ActionUpdateConfig       = "UpdateConfig"
)

// AdminAction is the closed set of administrative actions a proposal may carry.
// Only types in this package implement it.
type AdminAction interface {
	// Type returns the tag of the action variant
	Type() string
	// ValidateBasic performs stateless validation of the action payload
	ValidateBasic() error

	isAdminAction()
}

// AddNodeOperator whitelists an operator.
type AddNodeOperator struct {
	AccountID string `json:"account_id"`
}

// RemoveNodeOperator removes an operator and revokes its node.
type RemoveNodeOperator struct {
	AccountID string `json:"account_id"`
}

// ApproveCodeHash adds a code hash to the allow-list.
type ApproveCodeHash struct {
	CodeHash string `json:"code_hash"`
}

// RemoveCodeHash removes a code hash and its enclave measurement.
type RemoveCodeHash struct {
	CodeHash string `json:"code_hash"`
}

// ApproveAttestation attaches an enclave measurement to an approved code hash.
type ApproveAttestation struct {
	CodeHash  string `json:"code_hash"`
	MrEnclave string `json:"mr_enclave"`
}

// RemoveAttestation detaches the enclave measurement from a code hash.
type RemoveAttestation struct {
	CodeHash string `json:"code_hash"`
}

// Pause stops price reporting.
type Pause struct{}

// Resume re-enables price reporting.
type Resume struct{}

// UpdateConfig changes the aggregation policy. Nil fields are left untouched.
type UpdateConfig struct {
	RecencyThreshold *uint64 `json:"recency_threshold,omitempty"`
	MinReportCount   *uint32 `json:"min_report_count,omitempty"`
}

func (AddNodeOperator) Type() string    { return ActionAddNodeOperator }
func (RemoveNodeOperator) Type() string { return ActionRemoveNodeOperator }
func (ApproveCodeHash) Type() string    { return ActionApproveCodeHash }
func (RemoveCodeHash) Type() string     { return ActionRemoveCodeHash }
func (ApproveAttestation) Type() string { return ActionApproveAttestation }
func (RemoveAttestation) Type() string  { return ActionRemoveAttestation }
func (Pause) Type() string              { return ActionPause }
func (Resume) Type() string             { return ActionResume }
func (UpdateConfig) Type() string       { return ActionUpdateConfig }

func (AddNodeOperator) isAdminAction()    {}
func (RemoveNodeOperator) isAdminAction() {}
func (ApproveCodeHash) isAdminAction()    {}
func (RemoveCodeHash) isAdminAction()     {}
func (ApproveAttestation) isAdminAction() {}
func (RemoveAttestation) isAdminAction()  {}
func (Pause) isAdminAction()              {}
func (Resume) isAdminAction()             {}
func (UpdateConfig) isAdminAction()       {}

func (a AddNodeOperator) ValidateBasic() error    { return ValidateAccountID(a.AccountID) }
func (a RemoveNodeOperator) ValidateBasic() error { return ValidateAccountID(a.AccountID) }
func (a ApproveCodeHash) ValidateBasic() error    { return validateCodeHash(a.CodeHash) }
func (a RemoveCodeHash) ValidateBasic() error     { return validateCodeHash(a.CodeHash) }
func (a RemoveAttestation) ValidateBasic() error  { return validateCodeHash(a.CodeHash) }
func (Pause) ValidateBasic() error                { return nil }
func (Resume) ValidateBasic() error               { return nil }
func (UpdateConfig) ValidateBasic() error         { return nil }

func (a ApproveAttestation) ValidateBasic() error {
	if err := validateCodeHash(a.CodeHash); err != nil {
		return err
	}
	if a.MrEnclave == "" {
		return ErrInvalidAction.Wrap("mr_enclave cannot be empty")
	}
	return nil
}

func validateCodeHash(codeHash string) error {
	if codeHash == "" {
		return ErrInvalidAction.Wrap("code hash cannot be empty")
	}
	return nil
}

// actionRegistry maps every action tag to a constructor for decoding.
var actionRegistry = map[string]func() AdminAction{
	ActionAddNodeOperator:    func() AdminAction { return &AddNodeOperator{} },
	ActionRemoveNodeOperator: func() AdminAction { return &RemoveNodeOperator{} },
	ActionApproveCodeHash:    func() AdminAction { return &ApproveCodeHash{} },
	ActionRemoveCodeHash:     func() AdminAction { return &RemoveCodeHash{} },
	ActionApproveAttestation: func() AdminAction { return &ApproveAttestation{} },
	ActionRemoveAttestation:  func() AdminAction { return &RemoveAttestation{} },
	ActionPause:              func() AdminAction { return &Pause{} },
	ActionResume:             func() AdminAction { return &Resume{} },
	ActionUpdateConfig:       func() AdminAction { return &UpdateConfig{} },
}

// ActionTypes returns every registered action tag in sorted order.
func ActionTypes() []string {
	tags := make([]string, 0, len(actionRegistry))
	for tag := range actionRegistry {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// taggedAction is the wire form of an AdminAction: {"type": ..., "detail": {...}}
type taggedAction struct {
	Type   string          `json:"type"`
	Detail json.RawMessage `json:"detail,omitempty"`
}

// MarshalAdminAction encodes an action in its tagged form.
func MarshalAdminAction(action AdminAction) ([]byte, error) {
	if action == nil {
		return nil, ErrInvalidAction.Wrap("action cannot be nil")
	}

	tagged := taggedAction{Type: action.Type()}
	switch action.(type) {
	case Pause, *Pause, Resume, *Resume:
	default:
		detail, err := json.Marshal(action)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s detail: %w", action.Type(), err)
		}
		tagged.Detail = detail
	}

	return json.Marshal(tagged)
}

// UnmarshalAdminAction decodes an action from its tagged form. The returned
// action is always a value, never a pointer.
func UnmarshalAdminAction(bz []byte) (AdminAction, error) {
	var tagged taggedAction
	if err := json.Unmarshal(bz, &tagged); err != nil {
		return nil, ErrInvalidAction.Wrapf("malformed action: %s", err)
	}

	newAction, ok := actionRegistry[tagged.Type]
	if !ok {
		return nil, ErrInvalidAction.Wrapf("unknown action type %q", tagged.Type)
	}

	ptr := newAction()
	if len(tagged.Detail) > 0 && string(tagged.Detail) != "null" {
		if err := json.Unmarshal(tagged.Detail, ptr); err != nil {
			return nil, ErrInvalidAction.Wrapf("malformed %s detail: %s", tagged.Type, err)
		}
	}

	return NormalizeAdminAction(ptr), nil
}

// NormalizeAdminAction converts pointer variants to values so that handlers
// only ever see one form of each action.
func NormalizeAdminAction(action AdminAction) AdminAction {
	switch a := action.(type) {
	case *AddNodeOperator:
		return *a
	case *RemoveNodeOperator:
		return *a
	case *ApproveCodeHash:
		return *a
	case *RemoveCodeHash:
		return *a
	case *ApproveAttestation:
		return *a
	case *RemoveAttestation:
		return *a
	case *Pause:
		return *a
	case *Resume:
		return *a
	case *UpdateConfig:
		return *a
	default:
		return action
	}
}

// AdminProposal is a pending governance proposal. Executed and cancelled
// proposals are removed from the store.
type AdminProposal struct {
	ID           uint64      `json:"id"`
	Proposer     string      `json:"proposer"`
	Action       AdminAction `json:"-"`
	ScheduledFor uint64      `json:"scheduled_for"`
	Approvals    []string    `json:"approvals"`
	Executed     bool        `json:"executed"`
}

type adminProposalAlias AdminProposal

type adminProposalJSON struct {
	adminProposalAlias
	Action json.RawMessage `json:"action"`
}

// MarshalJSON encodes the proposal with its action in tagged form
func (p AdminProposal) MarshalJSON() ([]byte, error) {
	action, err := MarshalAdminAction(p.Action)
	if err != nil {
		return nil, err
	}
	approvals := p.Approvals
	if approvals == nil {
		approvals = []string{}
	}
	alias := adminProposalAlias(p)
	alias.Approvals = approvals
	return json.Marshal(adminProposalJSON{adminProposalAlias: alias, Action: action})
}

// UnmarshalJSON decodes a proposal and its tagged action
func (p *AdminProposal) UnmarshalJSON(bz []byte) error {
	var raw adminProposalJSON
	if err := json.Unmarshal(bz, &raw); err != nil {
		return err
	}
	action, err := UnmarshalAdminAction(raw.Action)
	if err != nil {
		return err
	}
	*p = AdminProposal(raw.adminProposalAlias)
	p.Action = action
	return nil
}

// HasApproval reports whether voter has already approved the proposal
func (p AdminProposal) HasApproval(voter string) bool {
	for _, v := range p.Approvals {
		if v == voter {
			return true
		}
	}
	return false
}

// AdminRole is a snapshot of the governance committee.
type AdminRole struct {
	Proposers     []string `json:"proposers"`
	Voters        []string `json:"voters"`
	TimelockDelay uint64   `json:"timelock_delay"`
	QuorumBps     uint32   `json:"quorum_bps"`
}

// AdminConfig is the persisted scalar part of the governance roles.
type AdminConfig struct {
	TimelockDelay uint64 `json:"timelock_delay"`
	QuorumBps     uint32 `json:"quorum_bps"`
}

// DefaultAdminConfig returns the governance settings before any role is configured
func DefaultAdminConfig() AdminConfig {
	return AdminConfig{TimelockDelay: 0, QuorumBps: DefaultQuorumBps}
}

// RequiredApprovals returns ceil(voterCount * quorumBps / 10000), with a floor
// of one whenever there is at least one voter.
func RequiredApprovals(voterCount int, quorumBps uint32) int {
	if voterCount <= 0 {
		return 0
	}
	required := (uint64(voterCount)*uint64(quorumBps) + 9_999) / 10_000
	if required == 0 {
		required = 1
	}
	return int(required)
}

// NormalizeQuorum validates a configured quorum and coerces zero to one
func NormalizeQuorum(quorumBps uint32) (uint32, error) {
	if quorumBps > MaxQuorumBps {
		return 0, ErrInvalidQuorum.Wrapf("got %d", quorumBps)
	}
	if quorumBps == 0 {
		return 1, nil
	}
	return quorumBps, nil
}
