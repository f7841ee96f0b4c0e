package types

import (
	"strings"
)

// OracleNode is the record of an attested reporter node.
type OracleNode struct {
	AccountID    string `json:"account_id"`
	OperatorID   string `json:"operator_id"`
	RegisteredAt uint64 `json:"registered_at"`
	CodeHash     string `json:"code_hash"`
	LastReport   uint64 `json:"last_report"`
	Active       bool   `json:"active"`
}

// AttestationData is the enclave measurement a node presents at registration.
// The measurement is compared against the approved registry value; it is not
// verified cryptographically here.
type AttestationData struct {
	MrEnclave string `json:"mr_enclave"`
	IssuedAt  uint64 `json:"issued_at"`
}

// CodeHashApproval pairs an approved code hash with its approved enclave
// measurement, if one has been attached.
type CodeHashApproval struct {
	CodeHash  string `json:"code_hash"`
	MrEnclave string `json:"mr_enclave,omitempty"`
}

// OperatorBinding is the operator side of the operator <-> node map.
type OperatorBinding struct {
	Operator string `json:"operator"`
	Node     string `json:"node,omitempty"`
}

// ValidateAccountID checks that an account identifier is usable as a store key.
func ValidateAccountID(id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrInvalidAccount.Wrap("account id cannot be empty")
	}
	if strings.ContainsRune(id, 0x00) {
		return ErrInvalidAccount.Wrapf("account id %q contains a null byte", id)
	}
	return nil
}
