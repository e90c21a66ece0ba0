// Package domain defines the audit trail domain models for the equipment
// procurement portal: audit log entries, the severity policy, and the
// asynchronous anomaly-classification state machine.
package domain

import (
	"fmt"
	"strings"
)

// Action identifies the kind of operation an audit log entry records.
type Action string

const (
	// ActionLogin records an authentication attempt.
	ActionLogin Action = "login"

	// ActionLogout records a session termination.
	ActionLogout Action = "logout"

	// ActionCreate records the creation of a resource.
	ActionCreate Action = "create"

	// ActionUpdate records a modification of a resource.
	ActionUpdate Action = "update"

	// ActionDelete records the removal of a resource.
	ActionDelete Action = "delete"

	// ActionApprove records an approval decision on a resource.
	ActionApprove Action = "approve"
)

// Resource identifies the kind of entity an audit log entry refers to.
type Resource string

const (
	ResourceUser  Resource = "user"
	ResourceOrder Resource = "order"
	ResourceItem  Resource = "item"
	ResourceAuth  Resource = "auth"
)

// Outcome indicates whether the recorded operation succeeded or failed.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// ClassificationState tracks the lifecycle of the asynchronous anomaly
// classification for an audit log entry. Entries start as PENDING and
// transition at most once to NORMAL or ANOMALOUS; a failed classification
// attempt leaves the entry PENDING permanently.
type ClassificationState string

const (
	// ClassificationPending marks an entry awaiting (or abandoned by) classification.
	ClassificationPending ClassificationState = "PENDING"

	// ClassificationNormal marks an entry the classifier labeled as unremarkable.
	ClassificationNormal ClassificationState = "NORMAL"

	// ClassificationAnomalous marks an entry the classifier flagged as suspicious.
	ClassificationAnomalous ClassificationState = "ANOMALOUS"
)

// ParseAction converts a string to an Action.
// Returns an error if the value is not in the closed action set.
func ParseAction(s string) (Action, error) {
	switch Action(s) {
	case ActionLogin, ActionLogout, ActionCreate, ActionUpdate, ActionDelete, ActionApprove:
		return Action(s), nil
	default:
		return "", fmt.Errorf("invalid action: %q", s)
	}
}

// ParseResource converts a string to a Resource.
// Returns an error if the value is not in the closed resource set.
func ParseResource(s string) (Resource, error) {
	switch Resource(s) {
	case ResourceUser, ResourceOrder, ResourceItem, ResourceAuth:
		return Resource(s), nil
	default:
		return "", fmt.Errorf("invalid resource: %q", s)
	}
}

// ParseOutcome converts a string to an Outcome.
// Returns an error if the value is not in the closed outcome set.
func ParseOutcome(s string) (Outcome, error) {
	switch Outcome(s) {
	case OutcomeSuccess, OutcomeFailure:
		return Outcome(s), nil
	default:
		return "", fmt.Errorf("invalid outcome: %q", s)
	}
}

// ParseClassificationLabel maps a classifier response label to a terminal
// classification state. Matching is case-insensitive and ignores surrounding
// whitespace. Only NORMAL and ANOMALOUS are accepted; in particular a
// response can never move an entry back to PENDING.
func ParseClassificationLabel(s string) (ClassificationState, error) {
	switch ClassificationState(strings.ToUpper(strings.TrimSpace(s))) {
	case ClassificationNormal:
		return ClassificationNormal, nil
	case ClassificationAnomalous:
		return ClassificationAnomalous, nil
	default:
		return "", fmt.Errorf("invalid classification label: %q", s)
	}
}
