package types

import (
	"fmt"
	"testing"

	sdkerrors "cosmossdk.io/errors"
	"github.com/stretchr/testify/require"
)

func TestErrorClasses(t *testing.T) {
	tests := []struct {
		err   error
		class ErrorClass
	}{
		{ErrUnauthorized, ClassAuthorization},
		{ErrOperatorNotWhitelisted, ClassAuthorization},
		{ErrNodeNotAuthorized, ClassAuthorization},
		{ErrNotProposer, ClassAuthorization},
		{ErrNotVoter, ClassAuthorization},
		{ErrMissingCaller, ClassAuthorization},
		{ErrAssetNotFound, ClassNotFound},
		{ErrProposalNotFound, ClassNotFound},
		{ErrNodeNotBound, ClassNotFound},
		{ErrNodeNotFound, ClassNotFound},
		{ErrPriceNotFound, ClassNotFound},
		{ErrDecimalsMismatch, ClassValidation},
		{ErrInvalidQuorum, ClassValidation},
		{ErrEmptyVoterSet, ClassValidation},
		{ErrInvalidMaxAge, ClassValidation},
		{ErrNodeAlreadyBound, ClassValidation},
		{ErrCodeHashNotApproved, ClassAttestation},
		{ErrAttestationNotApproved, ClassAttestation},
		{ErrMeasurementMismatch, ClassAttestation},
		{ErrAttestationExpired, ClassAttestation},
		{ErrOraclePaused, ClassState},
		{ErrProposalExecuted, ClassState},
		{ErrTimelockActive, ClassState},
		{ErrQuorumNotMet, ClassState},
	}

	for _, tc := range tests {
		t.Run(tc.err.Error(), func(t *testing.T) {
			require.Equal(t, tc.class, ClassOf(tc.err))
			require.Equal(t, tc.class, ClassOf(sdkerrors.Wrapf(tc.err, "context %d", 1)))
		})
	}
}

func TestClassOfForeignErrors(t *testing.T) {
	require.Equal(t, ErrorClass(""), ClassOf(nil))
	require.Equal(t, ClassInternal, ClassOf(fmt.Errorf("boom")))
	require.Equal(t, ClassInternal, ClassOf(sdkerrors.New("other", 2, "other codespace")))
}

func TestErrorsUseModuleCodespace(t *testing.T) {
	codespace, code, log := sdkerrors.ABCIInfo(ErrTimelockActive.Wrap("proposal 1"), false)
	require.Equal(t, ModuleName, codespace)
	require.Equal(t, uint32(62), code)
	require.Contains(t, log, "timelock delay has not elapsed")
}
