package types

import (
	"encoding/binary"
)

const (
	// ModuleName defines the module name
	ModuleName = "oracle"

	// StoreKey defines the primary module store key
	StoreKey = ModuleName
)

var (
	// ParamsKey is the key for the aggregation and attestation policy
	ParamsKey = []byte{0x01}

	// PauseStateKey is the key for the pause switch
	PauseStateKey = []byte{0x02}

	// AssetKeyPrefix is the prefix for asset definitions (asset id -> Asset)
	AssetKeyPrefix = []byte{0x10}

	// PriceReportsKeyPrefix is the prefix for live report sets (asset id -> []PriceReport)
	PriceReportsKeyPrefix = []byte{0x11}

	// AggregatedPriceKeyPrefix is the prefix for published prices (asset id -> Price)
	AggregatedPriceKeyPrefix = []byte{0x12}

	// AuthorizedNodeKeyPrefix is the prefix for the authorized node set
	AuthorizedNodeKeyPrefix = []byte{0x20}

	// NodeDetailsKeyPrefix is the prefix for node records (node -> OracleNode)
	NodeDetailsKeyPrefix = []byte{0x21}

	// OperatorKeyPrefix is the prefix for the operator whitelist
	OperatorKeyPrefix = []byte{0x22}

	// OperatorToNodeKeyPrefix is the prefix for operator -> node bindings
	OperatorToNodeKeyPrefix = []byte{0x23}

	// NodeToOperatorKeyPrefix is the prefix for node -> operator bindings
	NodeToOperatorKeyPrefix = []byte{0x24}

	// CodeHashKeyPrefix is the prefix for the approved code hash set
	CodeHashKeyPrefix = []byte{0x30}

	// EnclaveKeyPrefix is the prefix for approved enclave measurements (code hash -> mr_enclave)
	EnclaveKeyPrefix = []byte{0x31}

	// ProposerKeyPrefix is the prefix for the admin proposer set
	ProposerKeyPrefix = []byte{0x40}

	// VoterKeyPrefix is the prefix for the admin voter set
	VoterKeyPrefix = []byte{0x41}

	// AdminConfigKey stores the timelock delay and quorum
	AdminConfigKey = []byte{0x42}

	// ProposalKeyPrefix is the prefix for pending proposals (big endian id -> AdminProposal)
	ProposalKeyPrefix = []byte{0x43}

	// ProposalCounterKey stores the last issued proposal id
	ProposalCounterKey = []byte{0x44}
)

// KeyPrefix returns the raw bytes of a string key
func KeyPrefix(p string) []byte {
	return []byte(p)
}

// ProposalIDBytes encodes a proposal id so that store iteration follows id order
func ProposalIDBytes(id uint64) []byte {
	bz := make([]byte, 8)
	binary.BigEndian.PutUint64(bz, id)
	return bz
}

// ProposalIDFromBytes decodes a key produced by ProposalIDBytes
func ProposalIDFromBytes(bz []byte) uint64 {
	if len(bz) != 8 {
		return 0
	}
	return binary.BigEndian.Uint64(bz)
}
