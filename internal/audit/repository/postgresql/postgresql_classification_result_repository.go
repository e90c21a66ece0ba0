package postgresql

import (
	"context"
	"database/sql"

	auditDomain "github.com/hardwarexpress/audittrail/internal/audit/domain"
	"github.com/hardwarexpress/audittrail/internal/database"
	apperrors "github.com/hardwarexpress/audittrail/internal/errors"
)

// PostgreSQLClassificationResultRepository implements ClassificationResult
// persistence for PostgreSQL.
type PostgreSQLClassificationResultRepository struct {
	db *sql.DB
}

// NewPostgreSQLClassificationResultRepository creates a new PostgreSQL
// ClassificationResult repository.
func NewPostgreSQLClassificationResultRepository(db *sql.DB) *PostgreSQLClassificationResultRepository {
	return &PostgreSQLClassificationResultRepository{db: db}
}

// Upsert stores the classification result for an audit log entry. The
// audit_log_id unique constraint keeps at most one result per entry: a
// repeated classification overwrites the previous result in place.
func (p *PostgreSQLClassificationResultRepository) Upsert(
	ctx context.Context,
	result *auditDomain.ClassificationResult,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO classification_results (id, audit_log_id, model_name, score, threshold, is_suspicious, raw, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			  ON CONFLICT (audit_log_id) DO UPDATE SET
			  model_name = EXCLUDED.model_name,
			  score = EXCLUDED.score,
			  threshold = EXCLUDED.threshold,
			  is_suspicious = EXCLUDED.is_suspicious,
			  raw = EXCLUDED.raw,
			  created_at = EXCLUDED.created_at`

	_, err := querier.ExecContext(
		ctx,
		query,
		result.ID,
		result.AuditLogID,
		result.ModelName,
		result.Score,
		result.Threshold,
		result.IsSuspicious,
		[]byte(result.Raw),
		result.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to upsert classification result")
	}

	return nil
}
