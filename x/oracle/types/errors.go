package types

import (
	sdkerrors "cosmossdk.io/errors"
)

// Oracle module sentinel errors. Codes are grouped by class so that callers can
// map a rejection to a response without matching every sentinel.
var (
	// Authorization errors (2-19)
	ErrUnauthorized           = sdkerrors.Register(ModuleName, 2, "only the owner can call this")
	ErrOperatorNotWhitelisted = sdkerrors.Register(ModuleName, 3, "not a whitelisted operator")
	ErrNodeNotAuthorized      = sdkerrors.Register(ModuleName, 4, "not an authorized node")
	ErrNotProposer            = sdkerrors.Register(ModuleName, 5, "caller is not an admin proposer")
	ErrNotVoter               = sdkerrors.Register(ModuleName, 6, "caller is not an admin voter")
	ErrMissingCaller          = sdkerrors.Register(ModuleName, 7, "caller identity missing")

	// Not found errors (20-29)
	ErrAssetNotFound    = sdkerrors.Register(ModuleName, 20, "asset not found")
	ErrProposalNotFound = sdkerrors.Register(ModuleName, 21, "proposal not found")
	ErrNodeNotBound     = sdkerrors.Register(ModuleName, 22, "node account not set by any operator")
	ErrNodeNotFound     = sdkerrors.Register(ModuleName, 23, "node not found")
	ErrPriceNotFound    = sdkerrors.Register(ModuleName, 24, "price not available")

	// Validation errors (30-49)
	ErrDecimalsMismatch = sdkerrors.Register(ModuleName, 30, "decimals mismatch with asset definition")
	ErrInvalidQuorum    = sdkerrors.Register(ModuleName, 31, "quorum must be <= 10000 basis points")
	ErrEmptyVoterSet    = sdkerrors.Register(ModuleName, 32, "voter set cannot be empty")
	ErrInvalidMaxAge    = sdkerrors.Register(ModuleName, 33, "max age must be positive")
	ErrInvalidAsset     = sdkerrors.Register(ModuleName, 34, "invalid asset")
	ErrAssetExists      = sdkerrors.Register(ModuleName, 35, "asset already exists")
	ErrInvalidAccount   = sdkerrors.Register(ModuleName, 36, "invalid account id")
	ErrInvalidPrice     = sdkerrors.Register(ModuleName, 37, "invalid price")
	ErrInvalidParams    = sdkerrors.Register(ModuleName, 38, "invalid params")
	ErrInvalidAction    = sdkerrors.Register(ModuleName, 39, "invalid admin action")
	ErrPriceOverflow    = sdkerrors.Register(ModuleName, 40, "price does not fit the external schema")
	ErrNodeAlreadyBound = sdkerrors.Register(ModuleName, 41, "node account is bound to another operator")
	ErrInvalidGenesis   = sdkerrors.Register(ModuleName, 42, "invalid genesis state")
	ErrUnknownMsg       = sdkerrors.Register(ModuleName, 43, "unknown message type")

	// Attestation errors (50-59)
	ErrCodeHashNotApproved    = sdkerrors.Register(ModuleName, 50, "code hash not approved")
	ErrAttestationNotApproved = sdkerrors.Register(ModuleName, 51, "attestation not approved for code hash")
	ErrMeasurementMismatch    = sdkerrors.Register(ModuleName, 52, "attestation measurement mismatch")
	ErrAttestationExpired     = sdkerrors.Register(ModuleName, 53, "attestation expired")

	// State errors (60-79)
	ErrOraclePaused     = sdkerrors.Register(ModuleName, 60, "oracle is paused")
	ErrProposalExecuted = sdkerrors.Register(ModuleName, 61, "proposal already executed")
	ErrTimelockActive   = sdkerrors.Register(ModuleName, 62, "timelock delay has not elapsed")
	ErrQuorumNotMet     = sdkerrors.Register(ModuleName, 63, "proposal does not meet quorum")
	ErrStateCorruption  = sdkerrors.Register(ModuleName, 64, "state corruption detected")
)

// ErrorClass is the taxonomy bucket of a rejection.
type ErrorClass string

const (
	ClassAuthorization ErrorClass = "authorization"
	ClassNotFound      ErrorClass = "not_found"
	ClassValidation    ErrorClass = "validation"
	ClassAttestation   ErrorClass = "attestation"
	ClassState         ErrorClass = "state"
	ClassInternal      ErrorClass = "internal"
)

// ClassOf returns the taxonomy class of an oracle error. Errors from other
// codespaces are reported as internal.
func ClassOf(err error) ErrorClass {
	if err == nil {
		return ""
	}

	codespace, code, _ := sdkerrors.ABCIInfo(err, false)
	if codespace != ModuleName {
		return ClassInternal
	}

	switch {
	case code >= 2 && code < 20:
		return ClassAuthorization
	case code >= 20 && code < 30:
		return ClassNotFound
	case code >= 30 && code < 50:
		return ClassValidation
	case code >= 50 && code < 60:
		return ClassAttestation
	case code >= 60 && code < 80:
		return ClassState
	default:
		return ClassInternal
	}
}
