package types

import (
	"strings"
)

// MaxDecimals bounds the fixed-point scale of an asset so 10^decimals stays
// representable in the external price schema.
const MaxDecimals = 18

// Asset is a priced instrument with a fixed decimal precision and its own
// minimum-source policy.
type Asset struct {
	ID         string `json:"id"`
	Symbol     string `json:"symbol"`
	Name       string `json:"name"`
	Decimals   uint32 `json:"decimals"`
	Active     bool   `json:"active"`
	MinSources uint32 `json:"min_sources"`
}

// Validate performs stateless validation of an asset definition
func (a Asset) Validate() error {
	if strings.TrimSpace(a.ID) == "" {
		return ErrInvalidAsset.Wrap("asset id cannot be empty")
	}
	if strings.ContainsRune(a.ID, 0) {
		return ErrInvalidAsset.Wrapf("asset id %q contains reserved characters", a.ID)
	}
	if a.Decimals > MaxDecimals {
		return ErrInvalidAsset.Wrapf("decimals %d exceed maximum %d", a.Decimals, MaxDecimals)
	}
	return nil
}
