package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	auditDomain "github.com/hardwarexpress/audittrail/internal/audit/domain"
	auditService "github.com/hardwarexpress/audittrail/internal/audit/service"
	apperrors "github.com/hardwarexpress/audittrail/internal/errors"
)

// ClassificationConfig holds classification pipeline settings.
type ClassificationConfig struct {
	// Timeout bounds one classification round trip, including the model's
	// cold-start time.
	Timeout time.Duration
	// MaxConcurrent caps the number of in-flight classification calls.
	MaxConcurrent int64
	// ScoreThreshold is the alert threshold applied when the service's
	// response does not carry one.
	ScoreThreshold float64
}

// classificationUseCase implements ClassificationUseCase with one detached
// goroutine per dispatched entry, capped by a weighted semaphore.
//
// The pipeline is deliberately not durable: a failed or interrupted
// classification leaves the entry PENDING forever and nothing retries it.
// Entries are never lost, only their enrichment is.
type classificationUseCase struct {
	config       ClassificationConfig
	classifier   auditService.Classifier
	auditLogRepo AuditLogRepository
	resultRepo   ClassificationResultRepository
	sem          *semaphore.Weighted
	logger       *slog.Logger
}

// NewClassificationUseCase creates the classification pipeline. Zero config
// values fall back to defaults: 120s timeout, 4 concurrent calls, 0.8 score
// threshold.
func NewClassificationUseCase(
	config ClassificationConfig,
	classifier auditService.Classifier,
	auditLogRepo AuditLogRepository,
	resultRepo ClassificationResultRepository,
	logger *slog.Logger,
) ClassificationUseCase {
	if config.Timeout <= 0 {
		config.Timeout = 120 * time.Second
	}
	if config.MaxConcurrent <= 0 {
		config.MaxConcurrent = 4
	}
	if config.ScoreThreshold <= 0 {
		config.ScoreThreshold = 0.8
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &classificationUseCase{
		config:       config,
		classifier:   classifier,
		auditLogRepo: auditLogRepo,
		resultRepo:   resultRepo,
		sem:          semaphore.NewWeighted(config.MaxConcurrent),
		logger:       logger,
	}
}

// Dispatch classifies the entry on a detached goroutine. The goroutine is not
// tied to the recording request's context: enrichment outlives the request
// that produced the entry. Each classification gets its own timeout budget,
// and failures of any kind are logged and swallowed, leaving the entry
// PENDING.
func (c *classificationUseCase) Dispatch(auditLog *auditDomain.AuditLog) {
	go func() {
		// Acquire with Background never returns an error, it only blocks
		// until a slot frees up
		_ = c.sem.Acquire(context.Background(), 1)
		defer c.sem.Release(1)

		ctx, cancel := context.WithTimeout(context.Background(), c.config.Timeout)
		defer cancel()

		if err := c.Classify(ctx, auditLog); err != nil {
			c.logger.Error("classification failed, entry stays pending",
				slog.String("audit_log_id", auditLog.ID.String()),
				slog.Any("error", err),
			)
		}
	}()
}

// Classify runs one classification round trip. A usable verdict feeds two
// independent write paths: the entry's single PENDING to terminal state
// transition (with the model summary as the new description) and the stored
// scored verdict. One write path failing does not stop the other.
func (c *classificationUseCase) Classify(ctx context.Context, auditLog *auditDomain.AuditLog) error {
	request := &auditService.AnalyzeRequest{
		LogID: auditLog.ID.String(),
		Text:  buildEntryText(auditLog),
		Metadata: map[string]any{
			"action":   string(auditLog.Action),
			"resource": string(auditLog.Resource),
			"outcome":  string(auditLog.Outcome),
			"severity": string(auditLog.Severity),
		},
	}

	response, err := c.classifier.Analyze(ctx, request)
	if err != nil {
		return apperrors.Wrap(err, "failed to analyze audit log entry")
	}

	state, err := auditDomain.ParseClassificationLabel(response.Label)
	if err != nil {
		return apperrors.Wrap(err, "classification service returned unusable label")
	}

	var stateErr error
	var description *string
	if response.AISummary != "" {
		description = &response.AISummary
	}
	if err := c.auditLogRepo.UpdateClassificationState(ctx, auditLog.ID, state, description); err != nil {
		stateErr = apperrors.Wrap(err, "failed to transition classification state")
	}

	// The stored threshold snapshots what the verdict was judged against,
	// falling back to the configured one when the service omits it
	threshold := response.Threshold
	if threshold <= 0 {
		threshold = c.config.ScoreThreshold
	}

	var resultErr error
	result := &auditDomain.ClassificationResult{
		ID:           uuid.Must(uuid.NewV7()),
		AuditLogID:   auditLog.ID,
		ModelName:    response.ModelName,
		Score:        response.Score,
		Threshold:    threshold,
		IsSuspicious: auditDomain.Suspicious(response.Score, threshold),
		Raw:          response.Raw,
		CreatedAt:    time.Now().UTC(),
	}
	if err := c.resultRepo.Upsert(ctx, result); err != nil {
		resultErr = apperrors.Wrap(err, "failed to store classification result")
	}

	return errors.Join(stateErr, resultErr)
}

// buildEntryText renders the entry as the short narrative the classification
// model scores. The phrasing is deterministic: classifying the same entry
// twice produces the same input text.
func buildEntryText(auditLog *auditDomain.AuditLog) string {
	var b strings.Builder

	role := "an unknown user"
	if auditLog.ActorRole != nil && *auditLog.ActorRole != "" {
		role = *auditLog.ActorRole
	}
	fmt.Fprintf(&b, "%s performed %s on %s with outcome %s", role, auditLog.Action, auditLog.Resource, auditLog.Outcome)
	fmt.Fprintf(&b, " during the %s", timeOfDay(auditLog.CreatedAt))
	if auditLog.IPAddress != nil && *auditLog.IPAddress != "" {
		fmt.Fprintf(&b, " from IP %s", *auditLog.IPAddress)
	}
	b.WriteString(".")
	if auditLog.Description != nil && *auditLog.Description != "" {
		fmt.Fprintf(&b, " Details: %s", truncateText(*auditLog.Description, 500))
	}

	return b.String()
}

// timeOfDay buckets the entry's hour into a coarse marker the model can key
// on, since off-hours activity is a classic anomaly signal.
func timeOfDay(t time.Time) string {
	switch hour := t.Hour(); {
	case hour < 6:
		return "night"
	case hour < 12:
		return "morning"
	case hour < 18:
		return "afternoon"
	default:
		return "evening"
	}
}

// truncateText bounds caller-supplied descriptions so a pathological entry
// cannot blow up the classification payload.
func truncateText(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
