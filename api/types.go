package api

import (
	"net/http"

	"github.com/paw-chain/tee-oracle/x/oracle/types"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// Codes used for failures raised by the transport rather than the oracle
const (
	CodeUnauthenticated = "unauthenticated"
	CodeRateLimited     = "rate_limited"
	CodeBadRequest      = "bad_request"
	CodeInternal        = "internal"
)

// Context keys set by the middleware chain
const (
	ContextKeyCaller    = "caller"
	ContextKeyRequestID = "request_id"
)

// StatusForClass maps an oracle error class to an HTTP status
func StatusForClass(class types.ErrorClass) int {
	switch class {
	case types.ClassAuthorization:
		return http.StatusForbidden
	case types.ClassNotFound:
		return http.StatusNotFound
	case types.ClassValidation:
		return http.StatusBadRequest
	case types.ClassAttestation:
		return http.StatusUnprocessableEntity
	case types.ClassState:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// NewErrorResponse builds the response and status for an oracle error.
// Internal errors do not leak their message.
func NewErrorResponse(err error) (int, ErrorResponse) {
	class := types.ClassOf(err)
	status := StatusForClass(class)
	if status == http.StatusInternalServerError {
		return status, ErrorResponse{Error: "Internal server error", Code: CodeInternal}
	}
	return status, ErrorResponse{Error: err.Error(), Code: string(class)}
}
