package types

const (
	// DefaultRecencyThreshold is the maximum report age (5 minutes, in nanoseconds)
	DefaultRecencyThreshold uint64 = 300_000_000_000

	// DefaultMinReportCount is the global minimum number of live reports
	DefaultMinReportCount uint32 = 1

	// DefaultAttestationMaxAge is the maximum attestation age (10 minutes, in nanoseconds)
	DefaultAttestationMaxAge uint64 = 600_000_000_000
)

// Params is the aggregation and attestation policy of the oracle.
type Params struct {
	// RecencyThreshold is the maximum age of a report or published price.
	// Zero disables recency filtering.
	RecencyThreshold uint64 `json:"recency_threshold"`

	// MinReportCount is the global floor on live reports required to publish.
	MinReportCount uint32 `json:"min_report_count"`

	// AttestationMaxAge is the maximum age of an attestation at registration.
	AttestationMaxAge uint64 `json:"attestation_max_age"`
}

// DefaultParams returns default oracle parameters
func DefaultParams() Params {
	return Params{
		RecencyThreshold:  DefaultRecencyThreshold,
		MinReportCount:    DefaultMinReportCount,
		AttestationMaxAge: DefaultAttestationMaxAge,
	}
}

// NewParams builds params, clamping the report count floor to one
func NewParams(recencyThreshold uint64, minReportCount uint32, attestationMaxAge uint64) Params {
	return Params{
		RecencyThreshold:  recencyThreshold,
		MinReportCount:    ClampMinReportCount(minReportCount),
		AttestationMaxAge: attestationMaxAge,
	}
}

// Validate validates the params
func (p Params) Validate() error {
	if p.MinReportCount == 0 {
		return ErrInvalidParams.Wrap("min report count must be at least 1")
	}
	if p.AttestationMaxAge == 0 {
		return ErrInvalidMaxAge.Wrap("attestation max age must be positive")
	}
	return nil
}

// ClampMinReportCount coerces a configured report count of zero to one
func ClampMinReportCount(count uint32) uint32 {
	if count == 0 {
		return 1
	}
	return count
}

// PauseState is the persisted pause switch.
type PauseState struct {
	Paused   bool   `json:"paused"`
	PausedBy string `json:"paused_by,omitempty"`
	PausedAt uint64 `json:"paused_at,omitempty"`
}
