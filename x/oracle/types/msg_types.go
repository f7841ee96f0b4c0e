package types

import "sort"

// Message types. The REST transport serves each under /v1/tx/<type>.
const (
	TypeMsgAddAsset             = "add_asset"
	TypeMsgAddNodeOperator      = "add_node_operator"
	TypeMsgRemoveNodeOperator   = "remove_node_operator"
	TypeMsgApproveCodeHash      = "approve_code_hash"
	TypeMsgRemoveCodeHash       = "remove_code_hash"
	TypeMsgApproveAttestation   = "approve_attestation"
	TypeMsgRemoveAttestation    = "remove_attestation"
	TypeMsgPause                = "pause"
	TypeMsgResume               = "resume"
	TypeMsgUpdateConfig         = "update_config"
	TypeMsgSetAttestationMaxAge = "set_attestation_max_age"
	TypeMsgSetNodeAccount       = "set_node_account"
	TypeMsgRegisterNode         = "register_node"
	TypeMsgReportPrice          = "report_price"
	TypeMsgConfigureAdminRole   = "configure_admin_role"
	TypeMsgProposeAction        = "propose_action"
	TypeMsgApproveProposal      = "approve_proposal"
	TypeMsgExecuteProposal      = "execute_proposal"
	TypeMsgCancelProposal       = "cancel_proposal"
)

var msgFactories = map[string]func() CallerMsg{
	TypeMsgAddAsset:             func() CallerMsg { return &MsgAddAsset{} },
	TypeMsgAddNodeOperator:      func() CallerMsg { return &MsgAddNodeOperator{} },
	TypeMsgRemoveNodeOperator:   func() CallerMsg { return &MsgRemoveNodeOperator{} },
	TypeMsgApproveCodeHash:      func() CallerMsg { return &MsgApproveCodeHash{} },
	TypeMsgRemoveCodeHash:       func() CallerMsg { return &MsgRemoveCodeHash{} },
	TypeMsgApproveAttestation:   func() CallerMsg { return &MsgApproveAttestation{} },
	TypeMsgRemoveAttestation:    func() CallerMsg { return &MsgRemoveAttestation{} },
	TypeMsgPause:                func() CallerMsg { return &MsgPause{} },
	TypeMsgResume:               func() CallerMsg { return &MsgResume{} },
	TypeMsgUpdateConfig:         func() CallerMsg { return &MsgUpdateConfig{} },
	TypeMsgSetAttestationMaxAge: func() CallerMsg { return &MsgSetAttestationMaxAge{} },
	TypeMsgSetNodeAccount:       func() CallerMsg { return &MsgSetNodeAccount{} },
	TypeMsgRegisterNode:         func() CallerMsg { return &MsgRegisterNode{} },
	TypeMsgReportPrice:          func() CallerMsg { return &MsgReportPrice{} },
	TypeMsgConfigureAdminRole:   func() CallerMsg { return &MsgConfigureAdminRole{} },
	TypeMsgProposeAction:        func() CallerMsg { return &MsgProposeAction{} },
	TypeMsgApproveProposal:      func() CallerMsg { return &MsgApproveProposal{} },
	TypeMsgExecuteProposal:      func() CallerMsg { return &MsgExecuteProposal{} },
	TypeMsgCancelProposal:       func() CallerMsg { return &MsgCancelProposal{} },
}

// NewMsg returns an empty message of the given type
func NewMsg(msgType string) (CallerMsg, bool) {
	factory, ok := msgFactories[msgType]
	if !ok {
		return nil, false
	}
	return factory(), true
}

// MsgTypes returns every message type, sorted
func MsgTypes() []string {
	out := make([]string, 0, len(msgFactories))
	for t := range msgFactories {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// MsgType returns the type of a message, or "" for a foreign one
func MsgType(msg Msg) string {
	switch msg.(type) {
	case *MsgAddAsset, MsgAddAsset:
		return TypeMsgAddAsset
	case *MsgAddNodeOperator, MsgAddNodeOperator:
		return TypeMsgAddNodeOperator
	case *MsgRemoveNodeOperator, MsgRemoveNodeOperator:
		return TypeMsgRemoveNodeOperator
	case *MsgApproveCodeHash, MsgApproveCodeHash:
		return TypeMsgApproveCodeHash
	case *MsgRemoveCodeHash, MsgRemoveCodeHash:
		return TypeMsgRemoveCodeHash
	case *MsgApproveAttestation, MsgApproveAttestation:
		return TypeMsgApproveAttestation
	case *MsgRemoveAttestation, MsgRemoveAttestation:
		return TypeMsgRemoveAttestation
	case *MsgPause, MsgPause:
		return TypeMsgPause
	case *MsgResume, MsgResume:
		return TypeMsgResume
	case *MsgUpdateConfig, MsgUpdateConfig:
		return TypeMsgUpdateConfig
	case *MsgSetAttestationMaxAge, MsgSetAttestationMaxAge:
		return TypeMsgSetAttestationMaxAge
	case *MsgSetNodeAccount, MsgSetNodeAccount:
		return TypeMsgSetNodeAccount
	case *MsgRegisterNode, MsgRegisterNode:
		return TypeMsgRegisterNode
	case *MsgReportPrice, MsgReportPrice:
		return TypeMsgReportPrice
	case *MsgConfigureAdminRole, MsgConfigureAdminRole:
		return TypeMsgConfigureAdminRole
	case *MsgProposeAction, MsgProposeAction:
		return TypeMsgProposeAction
	case *MsgApproveProposal, MsgApproveProposal:
		return TypeMsgApproveProposal
	case *MsgExecuteProposal, MsgExecuteProposal:
		return TypeMsgExecuteProposal
	case *MsgCancelProposal, MsgCancelProposal:
		return TypeMsgCancelProposal
	default:
		return ""
	}
}
