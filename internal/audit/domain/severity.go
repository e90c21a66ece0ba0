package domain

import "fmt"

// Severity ranks an audit log entry for triage purposes.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// ParseSeverity converts a string to a Severity.
// Returns an error if the value is not in the closed severity set.
func ParseSeverity(s string) (Severity, error) {
	switch Severity(s) {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return Severity(s), nil
	default:
		return "", fmt.Errorf("invalid severity: %q", s)
	}
}

// DefaultSeverity derives the severity tier for an audit log entry from its
// action, outcome, and resource. The function is pure and total: every input
// combination maps to a tier, with low as the fallback. Rules apply in order:
//
//  1. failed operations against the auth resource are high
//  2. any other failed operation is medium
//  3. successful deletes are high
//  4. successful approvals are medium
//  5. remaining successful operations are low
//
// SeverityCritical is never derived; it is reachable only through an explicit
// caller override when recording the entry.
func DefaultSeverity(action Action, outcome Outcome, resource Resource) Severity {
	switch {
	case outcome == OutcomeFailure && resource == ResourceAuth:
		return SeverityHigh
	case outcome == OutcomeFailure:
		return SeverityMedium
	case outcome == OutcomeSuccess && action == ActionDelete:
		return SeverityHigh
	case outcome == OutcomeSuccess && action == ActionApprove:
		return SeverityMedium
	default:
		return SeverityLow
	}
}
