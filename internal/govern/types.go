package govern

import (
	"github.com/govgate/govgate/internal/pii"
	"github.com/govgate/govgate/internal/receipt"
)

// Action is the outcome a governance decision assigns to a call.
type Action string

const (
	// ActionAllow passes the text through unchanged. Assigned exactly
	// when no PII was detected.
	ActionAllow Action = "allow"
	// ActionDeny flags the text for blocking. Enforcement is the
	// caller's responsibility; output is left unchanged.
	ActionDeny Action = "deny"
	// ActionRedact forwards the sanitized copy in place of the input.
	ActionRedact Action = "redact"
	// ActionEscalate flags the text for secondary review. Output
	// semantics match deny.
	ActionEscalate Action = "escalate"
)

// ValidDefaultAction reports whether a is usable as the configured
// default. "allow" is excluded: allow is only ever derived from a clean
// detection pass, never configured.
func ValidDefaultAction(a Action) bool {
	switch a {
	case ActionDeny, ActionRedact, ActionEscalate:
		return true
	}
	return false
}

// Result is the immutable bundle returned to the caller for one call.
type Result struct {
	Action   Action           `json:"action"`
	Output   string           `json:"output"`
	PII      pii.Result       `json:"pii"`
	Receipt  *receipt.Receipt `json:"receipt"`
	Region   string           `json:"region,omitempty"`
	Industry string           `json:"industry,omitempty"`
}

// Stats is a point-in-time snapshot of one governor's counters.
// Counters never decrease between resets.
type Stats struct {
	TotalCalls        int64            `json:"total_calls"`
	TotalPIIDetected  int64            `json:"total_pii_detected"`
	TotalProcessingNS int64            `json:"total_processing_ns"`
	ActionCounts      map[Action]int64 `json:"action_counts"`
}

// CallOption carries the optional per-call scope values.
type CallOption func(*callScope)

type callScope struct {
	region   string
	industry string
}

// WithRegion tags the call with a jurisdiction for the caller's own
// downstream use; it does not change the decision.
func WithRegion(region string) CallOption {
	return func(s *callScope) { s.region = region }
}

// WithIndustry tags the call with an industry vertical.
func WithIndustry(industry string) CallOption {
	return func(s *callScope) { s.industry = industry }
}
