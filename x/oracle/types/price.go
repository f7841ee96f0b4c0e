package types

import (
	sdkmath "cosmossdk.io/math"
)

// NanosPerSecond converts environment timestamps to the seconds used by the
// external price schema.
const NanosPerSecond = 1_000_000_000

// Price is a fixed-point value: Multiplier scaled by 10^Decimals, observed at
// Timestamp (nanoseconds).
type Price struct {
	Multiplier sdkmath.Uint `json:"multiplier"`
	Decimals   uint32       `json:"decimals"`
	Timestamp  uint64       `json:"timestamp"`
}

// PriceReport is one node's live observation for an asset.
type PriceReport struct {
	OracleID  string `json:"oracle_id"`
	Price     Price  `json:"price"`
	Timestamp uint64 `json:"timestamp"`
}

// PriceData is the published price of an asset with its live source count.
type PriceData struct {
	AssetID    string `json:"asset_id"`
	Price      Price  `json:"price"`
	NumSources uint32 `json:"num_sources"`
}

// PythPrice is the externally compatible price schema.
type PythPrice struct {
	Price       int64  `json:"price"`
	Conf        uint64 `json:"conf"`
	Expo        int32  `json:"expo"`
	PublishTime int64  `json:"publish_time"`
}

// ToPythPrice converts a stored price into the external schema. The multiplier
// must fit a signed 64-bit integer.
func (p Price) ToPythPrice() (PythPrice, error) {
	bi := p.Multiplier.BigInt()
	if !bi.IsInt64() {
		return PythPrice{}, ErrPriceOverflow.Wrapf("multiplier %s exceeds int64", p.Multiplier)
	}

	return PythPrice{
		Price:       bi.Int64(),
		Conf:        0,
		Expo:        -int32(p.Decimals),
		PublishTime: int64(p.Timestamp / NanosPerSecond),
	}, nil
}
