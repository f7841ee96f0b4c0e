package types

import (
	"encoding/json"
)

// GenesisState defines the oracle module's genesis state.
type GenesisState struct {
	Params     Params             `json:"params"`
	Paused     bool               `json:"paused"`
	Assets     []Asset            `json:"assets"`
	Operators  []string           `json:"operators"`
	CodeHashes []CodeHashApproval `json:"code_hashes"`
	AdminRole  *AdminRole         `json:"admin_role,omitempty"`
	// LastProposalID is the last issued proposal id. Ids issued after
	// import continue from it.
	LastProposalID uint64 `json:"last_proposal_id,omitempty"`
}

// DefaultGenesis returns the default genesis state
func DefaultGenesis() *GenesisState {
	return &GenesisState{
		Params:     DefaultParams(),
		Assets:     []Asset{},
		Operators:  []string{},
		CodeHashes: []CodeHashApproval{},
	}
}

// Validate performs basic genesis state validation returning an error upon any
// failure.
func (gs GenesisState) Validate() error {
	if err := gs.Params.Validate(); err != nil {
		return err
	}

	seenAssets := make(map[string]bool, len(gs.Assets))
	for _, asset := range gs.Assets {
		if err := asset.Validate(); err != nil {
			return err
		}
		if seenAssets[asset.ID] {
			return ErrInvalidGenesis.Wrapf("duplicate asset %s", asset.ID)
		}
		seenAssets[asset.ID] = true
	}

	seenOperators := make(map[string]bool, len(gs.Operators))
	for _, operator := range gs.Operators {
		if err := ValidateAccountID(operator); err != nil {
			return err
		}
		if seenOperators[operator] {
			return ErrInvalidGenesis.Wrapf("duplicate operator %s", operator)
		}
		seenOperators[operator] = true
	}

	seenHashes := make(map[string]bool, len(gs.CodeHashes))
	for _, approval := range gs.CodeHashes {
		if approval.CodeHash == "" {
			return ErrInvalidGenesis.Wrap("code hash cannot be empty")
		}
		if seenHashes[approval.CodeHash] {
			return ErrInvalidGenesis.Wrapf("duplicate code hash %s", approval.CodeHash)
		}
		seenHashes[approval.CodeHash] = true
	}

	if gs.AdminRole != nil {
		if len(gs.AdminRole.Voters) == 0 {
			return ErrEmptyVoterSet
		}
		if _, err := NormalizeQuorum(gs.AdminRole.QuorumBps); err != nil {
			return err
		}
	}

	return nil
}

// GenesisStateFromJSON decodes and validates a genesis document
func GenesisStateFromJSON(bz []byte) (*GenesisState, error) {
	gs := DefaultGenesis()
	if err := json.Unmarshal(bz, gs); err != nil {
		return nil, ErrInvalidGenesis.Wrapf("failed to decode genesis: %s", err)
	}
	if err := gs.Validate(); err != nil {
		return nil, err
	}
	return gs, nil
}
