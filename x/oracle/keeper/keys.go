package keeper

import (
	"github.com/paw-chain/tee-oracle/x/oracle/types"
)

func prefixedKey(prefix []byte, id string) []byte {
	key := make([]byte, 0, len(prefix)+len(id))
	key = append(key, prefix...)
	return append(key, id...)
}

// GetAssetKey returns the store key for an asset definition
func GetAssetKey(assetID string) []byte {
	return prefixedKey(types.AssetKeyPrefix, assetID)
}

// GetPriceReportsKey returns the store key for the live report set of an asset
func GetPriceReportsKey(assetID string) []byte {
	return prefixedKey(types.PriceReportsKeyPrefix, assetID)
}

// GetAggregatedPriceKey returns the store key for the published price of an asset
func GetAggregatedPriceKey(assetID string) []byte {
	return prefixedKey(types.AggregatedPriceKeyPrefix, assetID)
}

// GetAuthorizedNodeKey returns the membership key of a node in the authorized set
func GetAuthorizedNodeKey(node string) []byte {
	return prefixedKey(types.AuthorizedNodeKeyPrefix, node)
}

// GetNodeDetailsKey returns the store key for a node record
func GetNodeDetailsKey(node string) []byte {
	return prefixedKey(types.NodeDetailsKeyPrefix, node)
}

// GetOperatorKey returns the membership key of an operator in the whitelist
func GetOperatorKey(operator string) []byte {
	return prefixedKey(types.OperatorKeyPrefix, operator)
}

// GetOperatorToNodeKey returns the binding key for an operator
func GetOperatorToNodeKey(operator string) []byte {
	return prefixedKey(types.OperatorToNodeKeyPrefix, operator)
}

// GetNodeToOperatorKey returns the reverse binding key for a node
func GetNodeToOperatorKey(node string) []byte {
	return prefixedKey(types.NodeToOperatorKeyPrefix, node)
}

// GetCodeHashKey returns the membership key of an approved code hash
func GetCodeHashKey(codeHash string) []byte {
	return prefixedKey(types.CodeHashKeyPrefix, codeHash)
}

// GetEnclaveKey returns the store key for the approved measurement of a code hash
func GetEnclaveKey(codeHash string) []byte {
	return prefixedKey(types.EnclaveKeyPrefix, codeHash)
}

// GetProposerKey returns the membership key of an admin proposer
func GetProposerKey(account string) []byte {
	return prefixedKey(types.ProposerKeyPrefix, account)
}

// GetVoterKey returns the membership key of an admin voter
func GetVoterKey(account string) []byte {
	return prefixedKey(types.VoterKeyPrefix, account)
}

// GetProposalKey returns the store key for a proposal
func GetProposalKey(id uint64) []byte {
	idBz := types.ProposalIDBytes(id)
	key := make([]byte, 0, len(types.ProposalKeyPrefix)+len(idBz))
	key = append(key, types.ProposalKeyPrefix...)
	return append(key, idBz...)
}
