package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/hardwarexpress/audittrail/internal/audit/domain"
	"github.com/hardwarexpress/audittrail/internal/metrics"
)

// auditLogUseCaseWithMetrics decorates AuditLogUseCase with metrics instrumentation.
type auditLogUseCaseWithMetrics struct {
	next    AuditLogUseCase
	metrics metrics.BusinessMetrics
}

// NewAuditLogUseCaseWithMetrics wraps an AuditLogUseCase with metrics recording.
func NewAuditLogUseCaseWithMetrics(useCase AuditLogUseCase, m metrics.BusinessMetrics) AuditLogUseCase {
	return &auditLogUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Record records metrics for audit log recording operations. A dropped entry
// counts as an error even though recording never returns one.
func (a *auditLogUseCaseWithMetrics) Record(
	ctx context.Context,
	input *auditDomain.RecordAuditLogInput,
) *auditDomain.AuditLog {
	start := time.Now()
	auditLog := a.next.Record(ctx, input)

	status := "success"
	if auditLog == nil {
		status = "error"
	}

	a.metrics.RecordOperation(ctx, "audit", "audit_log_record", status)
	a.metrics.RecordDuration(ctx, "audit", "audit_log_record", time.Since(start), status)

	return auditLog
}

// List records metrics for audit log list operations.
func (a *auditLogUseCaseWithMetrics) List(
	ctx context.Context,
	page, pageSize int,
	filter *auditDomain.AuditLogFilter,
) (*auditDomain.AuditLogPage, error) {
	start := time.Now()
	result, err := a.next.List(ctx, page, pageSize, filter)

	status := "success"
	if err != nil {
		status = "error"
	}

	a.metrics.RecordOperation(ctx, "audit", "audit_log_list", status)
	a.metrics.RecordDuration(ctx, "audit", "audit_log_list", time.Since(start), status)

	return result, err
}

// Get records metrics for audit log retrieval operations.
func (a *auditLogUseCaseWithMetrics) Get(ctx context.Context, id uuid.UUID) (*auditDomain.AuditLogItem, error) {
	start := time.Now()
	item, err := a.next.Get(ctx, id)

	status := "success"
	if err != nil {
		status = "error"
	}

	a.metrics.RecordOperation(ctx, "audit", "audit_log_get", status)
	a.metrics.RecordDuration(ctx, "audit", "audit_log_get", time.Since(start), status)

	return item, err
}

// DeleteOlderThan records metrics for audit log retention operations.
func (a *auditLogUseCaseWithMetrics) DeleteOlderThan(
	ctx context.Context,
	days int,
	dryRun bool,
) (int64, error) {
	start := time.Now()
	count, err := a.next.DeleteOlderThan(ctx, days, dryRun)

	status := "success"
	if err != nil {
		status = "error"
	}

	a.metrics.RecordOperation(ctx, "audit", "audit_log_delete", status)
	a.metrics.RecordDuration(ctx, "audit", "audit_log_delete", time.Since(start), status)

	return count, err
}

// VerifyIntegrity records metrics for single entry verification operations.
func (a *auditLogUseCaseWithMetrics) VerifyIntegrity(ctx context.Context, id uuid.UUID) error {
	start := time.Now()
	err := a.next.VerifyIntegrity(ctx, id)

	status := "success"
	if err != nil {
		status = "error"
	}

	a.metrics.RecordOperation(ctx, "audit", "audit_log_verify", status)
	a.metrics.RecordDuration(ctx, "audit", "audit_log_verify", time.Since(start), status)

	return err
}

// VerifyBatch records metrics for batch verification operations.
func (a *auditLogUseCaseWithMetrics) VerifyBatch(
	ctx context.Context,
	startTime, endTime time.Time,
) (*auditDomain.VerificationReport, error) {
	start := time.Now()
	report, err := a.next.VerifyBatch(ctx, startTime, endTime)

	status := "success"
	if err != nil {
		status = "error"
	}

	a.metrics.RecordOperation(ctx, "audit", "audit_log_verify_batch", status)
	a.metrics.RecordDuration(ctx, "audit", "audit_log_verify_batch", time.Since(start), status)

	return report, err
}

// classificationUseCaseWithMetrics decorates ClassificationUseCase with metrics instrumentation.
type classificationUseCaseWithMetrics struct {
	next    ClassificationUseCase
	metrics metrics.BusinessMetrics
}

// NewClassificationUseCaseWithMetrics wraps a ClassificationUseCase with metrics recording.
func NewClassificationUseCaseWithMetrics(useCase ClassificationUseCase, m metrics.BusinessMetrics) ClassificationUseCase {
	return &classificationUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Dispatch counts dispatched classifications. Durations are recorded by
// Classify once the worker runs.
func (c *classificationUseCaseWithMetrics) Dispatch(auditLog *auditDomain.AuditLog) {
	c.metrics.RecordOperation(context.Background(), "audit", "classification_dispatch", "success")
	c.next.Dispatch(auditLog)
}

// Classify records metrics for classification round trips.
func (c *classificationUseCaseWithMetrics) Classify(ctx context.Context, auditLog *auditDomain.AuditLog) error {
	start := time.Now()
	err := c.next.Classify(ctx, auditLog)

	status := "success"
	if err != nil {
		status = "error"
	}

	c.metrics.RecordOperation(ctx, "audit", "classification", status)
	c.metrics.RecordDuration(ctx, "audit", "classification", time.Since(start), status)

	return err
}
