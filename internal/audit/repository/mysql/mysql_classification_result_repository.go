package mysql

import (
	"context"
	"database/sql"

	auditDomain "github.com/hardwarexpress/audittrail/internal/audit/domain"
	"github.com/hardwarexpress/audittrail/internal/database"
	apperrors "github.com/hardwarexpress/audittrail/internal/errors"
)

// MySQLClassificationResultRepository implements ClassificationResult
// persistence for MySQL.
type MySQLClassificationResultRepository struct {
	db *sql.DB
}

// NewMySQLClassificationResultRepository creates a new MySQL
// ClassificationResult repository.
func NewMySQLClassificationResultRepository(db *sql.DB) *MySQLClassificationResultRepository {
	return &MySQLClassificationResultRepository{db: db}
}

// Upsert stores the classification result for an audit log entry. The
// audit_log_id unique constraint keeps at most one result per entry: a
// repeated classification overwrites the previous result in place.
func (m *MySQLClassificationResultRepository) Upsert(
	ctx context.Context,
	result *auditDomain.ClassificationResult,
) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO classification_results (id, audit_log_id, model_name, score, threshold, is_suspicious, raw, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			  ON DUPLICATE KEY UPDATE
			  model_name = VALUES(model_name),
			  score = VALUES(score),
			  threshold = VALUES(threshold),
			  is_suspicious = VALUES(is_suspicious),
			  raw = VALUES(raw),
			  created_at = VALUES(created_at)`

	id, err := result.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal classification result id")
	}

	auditLogID, err := result.AuditLogID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal classification result audit_log_id")
	}

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		auditLogID,
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
