package types

import (
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/require"
)

func TestToPythPrice(t *testing.T) {
	price := Price{Multiplier: sdkmath.NewUint(35000), Decimals: 4, Timestamp: 12*NanosPerSecond + 5}
	pyth, err := price.ToPythPrice()
	require.NoError(t, err)
	require.Equal(t, PythPrice{Price: 35000, Conf: 0, Expo: -4, PublishTime: 12}, pyth)

	maxInt := Price{Multiplier: sdkmath.NewUint(1<<63 - 1)}
	_, err = maxInt.ToPythPrice()
	require.NoError(t, err)

	tooBig := Price{Multiplier: sdkmath.NewUint(1 << 63)}
	_, err = tooBig.ToPythPrice()
	require.ErrorIs(t, err, ErrPriceOverflow)
}

func TestAssetValidate(t *testing.T) {
	require.NoError(t, Asset{ID: "BTC", Decimals: MaxDecimals}.Validate())
	require.ErrorIs(t, Asset{ID: ""}.Validate(), ErrInvalidAsset)
	require.NoError(t, Asset{ID: "ETH/USD"}.Validate())
	require.ErrorIs(t, Asset{ID: "a\x00b"}.Validate(), ErrInvalidAsset)
	require.ErrorIs(t, Asset{ID: "BTC", Decimals: MaxDecimals + 1}.Validate(), ErrInvalidAsset)
}

func TestProposalIDBytesOrdering(t *testing.T) {
	require.Equal(t, uint64(258), ProposalIDFromBytes(ProposalIDBytes(258)))
	require.Equal(t, uint64(0), ProposalIDFromBytes([]byte{1}))
	require.Less(t, string(ProposalIDBytes(255)), string(ProposalIDBytes(256)))
}
