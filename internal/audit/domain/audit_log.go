package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditLog records a significant action taken in the procurement portal.
// Entries are written once and never mutated afterwards, with two exceptions
// owned by the classification pipeline: ClassificationState may transition
// from PENDING to a terminal state exactly once, and Description may be
// overwritten by the classifier's summary during that transition.
type AuditLog struct {
	// ID is the unique identifier for this entry (UUIDv7, time-ordered).
	ID uuid.UUID
	// ActorID identifies the portal user who performed the action
	// (nil for unauthenticated attempts).
	ActorID *uuid.UUID
	// ActorRole is the actor's role at the time of the action.
	ActorRole *string
	// Action is the kind of operation performed.
	Action Action
	// Resource is the kind of entity the action targeted.
	Resource Resource
	// Outcome indicates whether the operation succeeded or failed.
	Outcome Outcome
	// IPAddress is the best-effort client address the action originated from.
	IPAddress *string
	// Description is free-form context supplied by the caller; the
	// classification pipeline may replace it with the model's summary.
	Description *string
	// Severity is the triage tier, fixed at creation time.
	Severity Severity
	// ClassificationState is the anomaly-classification lifecycle state.
	ClassificationState ClassificationState
	// Signature is the HMAC-SHA256 over the creation-time fields
	// (nil when signing is not configured).
	Signature []byte
	// CreatedAt is the UTC timestamp assigned when the entry was persisted.
	CreatedAt time.Time
}

// IsSigned reports whether the entry carries a signature.
func (a *AuditLog) IsSigned() bool {
	return len(a.Signature) > 0
}

// RecordAuditLogInput carries the caller-supplied parameters for recording an
// audit log entry. Severity is optional: when nil, the default severity
// policy derives it from action, outcome, and resource.
type RecordAuditLogInput struct {
	ActorID     *uuid.UUID
	ActorRole   *string
	Action      Action
	Resource    Resource
	Outcome     Outcome
	IPAddress   *string
	Description *string
	Severity    *Severity
}

// AuditLogItem is the read model returned by queries: the audit log entry
// joined with its classification result, if one has been persisted, plus the
// derived alert flag.
type AuditLogItem struct {
	AuditLog
	// Result is the classifier's scored verdict (nil while none exists).
	Result *ClassificationResult
	// Alert is true when the entry's classification score strictly exceeds
	// the threshold recorded with it. Derived at read time, never stored.
	Alert bool
}

// AuditLogPage is a single page of query results with pagination metadata.
type AuditLogPage struct {
	Items      []*AuditLogItem
	Page       int
	PageSize   int
	Total      int64
	TotalPages int64
}

// NewAuditLogPage assembles a result page, computing TotalPages as
// ceil(total/pageSize). An empty result set yields zero total pages.
func NewAuditLogPage(items []*AuditLogItem, page, pageSize int, total int64) *AuditLogPage {
	var totalPages int64
	if total > 0 {
		totalPages = (total + int64(pageSize) - 1) / int64(pageSize)
	}
	return &AuditLogPage{
		Items:      items,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
	}
}

// VerificationReport summarizes a batch signature verification run.
// Unsigned entries (recorded while signing was not configured) are counted
// separately and do not fail the run.
type VerificationReport struct {
	StartDate     time.Time
	EndDate       time.Time
	TotalChecked  int64
	SignedCount   int64
	UnsignedCount int64
	ValidCount    int64
	InvalidCount  int64
	// InvalidIDs lists the entries whose signatures failed verification.
	InvalidIDs []uuid.UUID
}
