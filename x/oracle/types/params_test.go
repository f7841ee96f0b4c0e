package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultParams(t *testing.T) {
	params := DefaultParams()
	require.NoError(t, params.Validate())
	require.Equal(t, uint64(300)*NanosPerSecond, params.RecencyThreshold)
	require.Equal(t, uint32(1), params.MinReportCount)
	require.Equal(t, uint64(600)*NanosPerSecond, params.AttestationMaxAge)
}

func TestNewParamsClampsMinReportCount(t *testing.T) {
	require.Equal(t, uint32(1), NewParams(0, 0, 1).MinReportCount)
	require.Equal(t, uint32(3), NewParams(0, 3, 1).MinReportCount)

	// zero recency disables filtering and is valid
	require.NoError(t, NewParams(0, 0, 1).Validate())
	require.ErrorIs(t, NewParams(0, 1, 0).Validate(), ErrInvalidMaxAge)
}
