// Package usecase defines business logic interfaces for audit trail operations.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/hardwarexpress/audittrail/internal/audit/domain"
)

// AuditLogRepository defines persistence operations for audit log entries.
// Implementations must support transaction-aware operations via context propagation.
type AuditLogRepository interface {
	// Create stores a new audit log entry in the repository.
	Create(ctx context.Context, auditLog *auditDomain.AuditLog) error

	// Get retrieves an audit log entry by ID joined with its classification
	// result. Returns ErrAuditLogNotFound if not found.
	Get(ctx context.Context, id uuid.UUID) (*auditDomain.AuditLogItem, error)

	// List retrieves a page of audit log entries ordered newest first, joined
	// with their classification results, plus the total count of entries
	// matching the filter irrespective of pagination.
	List(ctx context.Context, offset, limit int, filter *auditDomain.AuditLogFilter) ([]*auditDomain.AuditLogItem, int64, error)

	// UpdateClassificationState transitions an entry out of PENDING. Entries
	// already in a terminal state are left untouched. When description is
	// non-nil it overwrites the entry's description.
	UpdateClassificationState(ctx context.Context, id uuid.UUID, state auditDomain.ClassificationState, description *string) error

	// ListCreatedBetween retrieves entries created within the inclusive time
	// range, oldest first.
	ListCreatedBetween(ctx context.Context, start, end time.Time) ([]*auditDomain.AuditLog, error)

	// DeleteOlderThan removes entries created before olderThan and returns the
	// affected count. When dryRun is true, only the count is computed.
	DeleteOlderThan(ctx context.Context, olderThan time.Time, dryRun bool) (int64, error)
}

// ClassificationResultRepository defines persistence operations for
// classification verdicts produced by the anomaly detection service.
type ClassificationResultRepository interface {
	// Upsert stores the verdict for an audit log entry, replacing any
	// previously stored verdict for the same entry.
	Upsert(ctx context.Context, result *auditDomain.ClassificationResult) error
}

// AuditLogUseCase defines business logic operations for recording, querying,
// retaining, and verifying audit log entries.
type AuditLogUseCase interface {
	// Record persists a new audit log entry and hands it to the classification
	// pipeline. Recording never fails the caller: storage errors are logged
	// and the entry is dropped. Returns the persisted entry, or nil when the
	// entry was dropped.
	Record(ctx context.Context, input *auditDomain.RecordAuditLogInput) *auditDomain.AuditLog

	// List retrieves a page of audit log entries. Returns ErrInvalidInput for
	// a page below 1 or a filter containing unknown values.
	List(ctx context.Context, page, pageSize int, filter *auditDomain.AuditLogFilter) (*auditDomain.AuditLogPage, error)

	// Get retrieves a single audit log entry with its classification result.
	// Returns ErrAuditLogNotFound if not found.
	Get(ctx context.Context, id uuid.UUID) (*auditDomain.AuditLogItem, error)

	// DeleteOlderThan removes entries older than the given number of days and
	// returns the affected count. When dryRun is true, nothing is deleted.
	DeleteOlderThan(ctx context.Context, days int, dryRun bool) (int64, error)

	// VerifyIntegrity recomputes and checks the tamper signature of a single
	// entry. Returns ErrSignatureInvalid when the entry does not match its
	// signature and ErrAuditLogNotFound when the entry does not exist.
	VerifyIntegrity(ctx context.Context, id uuid.UUID) error

	// VerifyBatch checks the signatures of all entries created within the
	// inclusive time range and reports the outcome per entry class.
	VerifyBatch(ctx context.Context, start, end time.Time) (*auditDomain.VerificationReport, error)
}

// ClassificationUseCase defines the asynchronous enrichment pipeline that
// submits recorded entries to the anomaly classification service and writes
// the verdict back.
type ClassificationUseCase interface {
	// Dispatch schedules classification of the entry on a background worker
	// and returns immediately. The entry keeps its PENDING state until the
	// worker completes; dispatch failures are logged and swallowed.
	Dispatch(auditLog *auditDomain.AuditLog)

	// Classify runs one classification round trip synchronously: builds the
	// entry text, calls the classification service, and persists the verdict
	// and state transition.
	Classify(ctx context.Context, auditLog *auditDomain.AuditLog) error
}
