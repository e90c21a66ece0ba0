package usecase

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/hardwarexpress/audittrail/internal/audit/domain"
	auditService "github.com/hardwarexpress/audittrail/internal/audit/service"
	apperrors "github.com/hardwarexpress/audittrail/internal/errors"
)

const (
	defaultPageSize = 50
	maxPageSize     = 100
)

// auditLogUseCase implements the AuditLogUseCase interface.
type auditLogUseCase struct {
	auditLogRepo AuditLogRepository
	signer       auditService.AuditLogSigner
	classifier   ClassificationUseCase
	logger       *slog.Logger
}

// NewAuditLogUseCase creates a new AuditLogUseCase with the provided
// dependencies. signer may be nil when tamper signing is not configured:
// entries are then recorded unsigned. classifier may be nil when no
// classification service is configured: entries then stay PENDING.
func NewAuditLogUseCase(
	auditLogRepo AuditLogRepository,
	signer auditService.AuditLogSigner,
	classifier ClassificationUseCase,
	logger *slog.Logger,
) AuditLogUseCase {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &auditLogUseCase{
		auditLogRepo: auditLogRepo,
		signer:       signer,
		classifier:   classifier,
		logger:       logger,
	}
}

// Record assembles, signs, and persists a new audit log entry, then hands it
// to the classification pipeline. Recording is an observability path: no
// failure in it may break the operation being audited, so errors are logged
// and the entry is dropped instead of propagating.
func (a *auditLogUseCase) Record(
	ctx context.Context,
	input *auditDomain.RecordAuditLogInput,
) *auditDomain.AuditLog {
	severity := auditDomain.DefaultSeverity(input.Action, input.Outcome, input.Resource)
	if input.Severity != nil {
		severity = *input.Severity
	}

	auditLog := &auditDomain.AuditLog{
		ID:                  uuid.Must(uuid.NewV7()),
		ActorID:             input.ActorID,
		ActorRole:           input.ActorRole,
		Action:              input.Action,
		Resource:            input.Resource,
		Outcome:             input.Outcome,
		IPAddress:           input.IPAddress,
		Description:         input.Description,
		Severity:            severity,
		ClassificationState: auditDomain.ClassificationPending,
		CreatedAt:           time.Now().UTC(),
	}

	if a.signer != nil {
		signature, err := a.signer.Sign(auditLog)
		if err != nil {
			// An unsigned entry is still worth keeping
			a.logger.Warn("failed to sign audit log entry",
				slog.String("audit_log_id", auditLog.ID.String()),
				slog.Any("error", err),
			)
		} else {
			auditLog.Signature = signature
		}
	}

	if err := a.auditLogRepo.Create(ctx, auditLog); err != nil {
		a.logger.Error("failed to persist audit log entry",
			slog.String("audit_log_id", auditLog.ID.String()),
			slog.String("action", string(auditLog.Action)),
			slog.String("resource", string(auditLog.Resource)),
			slog.Any("error", err),
		)
		return nil
	}

	if a.classifier != nil {
		a.classifier.Dispatch(auditLog)
	}

	return auditLog
}

// List retrieves one page of audit log entries, newest first. page starts at
// 1; pageSize defaults to 50 and is capped at 100. The filter is validated
// before any query runs.
func (a *auditLogUseCase) List(
	ctx context.Context,
	page, pageSize int,
	filter *auditDomain.AuditLogFilter,
) (*auditDomain.AuditLogPage, error) {
	if page < 1 {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "page must be 1 or greater")
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	if filter != nil {
		if err := filter.Validate(); err != nil {
			return nil, err
		}
	}

	offset := (page - 1) * pageSize
	items, total, err := a.auditLogRepo.List(ctx, offset, pageSize, filter)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit logs")
	}

	return auditDomain.NewAuditLogPage(items, page, pageSize, total), nil
}

// Get retrieves a single audit log entry with its classification result.
func (a *auditLogUseCase) Get(ctx context.Context, id uuid.UUID) (*auditDomain.AuditLogItem, error) {
	return a.auditLogRepo.Get(ctx, id)
}

// DeleteOlderThan removes entries created more than the given number of days
// ago and returns the affected count. A dry run only reports the count.
func (a *auditLogUseCase) DeleteOlderThan(ctx context.Context, days int, dryRun bool) (int64, error) {
	if days < 1 {
		return 0, apperrors.Wrap(apperrors.ErrInvalidInput, "days must be 1 or greater")
	}

	olderThan := time.Now().UTC().AddDate(0, 0, -days)
	count, err := a.auditLogRepo.DeleteOlderThan(ctx, olderThan, dryRun)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete audit logs")
	}

	return count, nil
}

// VerifyIntegrity recomputes and checks the tamper signature of one entry.
func (a *auditLogUseCase) VerifyIntegrity(ctx context.Context, id uuid.UUID) error {
	if a.signer == nil {
		return auditDomain.ErrSigningKeyUnavailable
	}

	item, err := a.auditLogRepo.Get(ctx, id)
	if err != nil {
		return err
	}
	if !item.IsSigned() {
		return auditDomain.ErrAuditLogUnsigned
	}

	return a.signer.Verify(&item.AuditLog)
}

// VerifyBatch checks the signatures of all entries created within the
// inclusive time range. Unsigned entries are counted but never fail the run;
// entries whose signatures do not match are collected in the report.
func (a *auditLogUseCase) VerifyBatch(
	ctx context.Context,
	start, end time.Time,
) (*auditDomain.VerificationReport, error) {
	if a.signer == nil {
		return nil, auditDomain.ErrSigningKeyUnavailable
	}
	if end.Before(start) {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "end date must not be before start date")
	}

	auditLogs, err := a.auditLogRepo.ListCreatedBetween(ctx, start, end)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit logs for verification")
	}

	report := &auditDomain.VerificationReport{StartDate: start, EndDate: end}
	for _, auditLog := range auditLogs {
		report.TotalChecked++
		if !auditLog.IsSigned() {
			report.UnsignedCount++
			continue
		}
		report.SignedCount++
		if err := a.signer.Verify(auditLog); err != nil {
			report.InvalidCount++
			report.InvalidIDs = append(report.InvalidIDs, auditLog.ID)
			continue
		}
		report.ValidCount++
	}

	return report, nil
}
