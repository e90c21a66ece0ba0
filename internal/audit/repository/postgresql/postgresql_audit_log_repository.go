// Package postgresql implements audit trail persistence for PostgreSQL.
package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	auditDomain "github.com/hardwarexpress/audittrail/internal/audit/domain"
	"github.com/hardwarexpress/audittrail/internal/database"
	apperrors "github.com/hardwarexpress/audittrail/internal/errors"
)

// PostgreSQLAuditLogRepository implements AuditLog persistence for PostgreSQL.
// Uses native UUID types with transaction support via database.GetTx().
type PostgreSQLAuditLogRepository struct {
	db *sql.DB
}

// NewPostgreSQLAuditLogRepository creates a new PostgreSQL AuditLog repository.
func NewPostgreSQLAuditLogRepository(db *sql.DB) *PostgreSQLAuditLogRepository {
	return &PostgreSQLAuditLogRepository{db: db}
}

const auditLogItemColumns = `al.id, al.actor_id, al.actor_role, al.action, al.resource, al.outcome,
	al.ip_address, al.description, al.severity, al.classification_state, al.signature, al.created_at,
	cr.id, cr.model_name, cr.score, cr.threshold, cr.is_suspicious, cr.raw, cr.created_at`

// Create inserts a new AuditLog into the PostgreSQL database. Uses transaction
// support via database.GetTx(). Nil actor, ip address, and description fields
// are stored as database NULL.
func (p *PostgreSQLAuditLogRepository) Create(ctx context.Context, auditLog *auditDomain.AuditLog) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO audit_logs (id, actor_id, actor_role, action, resource, outcome, ip_address, description, severity, classification_state, signature, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := querier.ExecContext(
		ctx,
		query,
		auditLog.ID,
		auditLog.ActorID,
		auditLog.ActorRole,
		string(auditLog.Action),
		string(auditLog.Resource),
		string(auditLog.Outcome),
		auditLog.IPAddress,
		auditLog.Description,
		string(auditLog.Severity),
		string(auditLog.ClassificationState),
		auditLog.Signature,
		auditLog.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create audit log")
	}

	return nil
}

// Get retrieves a single audit log by ID joined with its classification result.
// Returns ErrAuditLogNotFound if no entry with the given ID exists.
func (p *PostgreSQLAuditLogRepository) Get(ctx context.Context, id uuid.UUID) (*auditDomain.AuditLogItem, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + auditLogItemColumns + `
			  FROM audit_logs al
			  LEFT JOIN classification_results cr ON cr.audit_log_id = al.id
			  WHERE al.id = $1`

	item, err := scanAuditLogItem(querier.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, auditDomain.ErrAuditLogNotFound
	}
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to get audit log")
	}

	return item, nil
}

// List retrieves a page of audit logs joined with their classification results,
// ordered by created_at descending with ties broken by ascending ID (insertion
// order, since IDs are time-ordered UUIDv7). Filter fields use IN-style
// matching: values within a field combine with OR, populated fields combine
// with AND. Returns the page rows and the total count of matching rows
// irrespective of pagination.
func (p *PostgreSQLAuditLogRepository) List(
	ctx context.Context,
	offset, limit int,
	filter *auditDomain.AuditLogFilter,
) ([]*auditDomain.AuditLogItem, int64, error) {
	querier := database.GetTx(ctx, p.db)

	where, args := buildFilterClause(filter)

	query := `SELECT ` + auditLogItemColumns + `
			  FROM audit_logs al
			  LEFT JOIN classification_results cr ON cr.audit_log_id = al.id` + where
	query += fmt.Sprintf(" ORDER BY al.created_at DESC, al.id ASC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)

	rows, err := querier.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "failed to list audit logs")
	}
	defer func() {
		_ = rows.Close()
	}()

	// Initialize empty slice to avoid returning nil for empty results
	items := make([]*auditDomain.AuditLogItem, 0)
	for rows.Next() {
		item, err := scanAuditLogItem(rows)
		if err != nil {
			return nil, 0, apperrors.Wrap(err, "failed to scan audit log")
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperrors.Wrap(err, "failed to iterate audit logs")
	}

	countQuery := `SELECT COUNT(*) FROM audit_logs al` + where
	var total int64
	if err := querier.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, apperrors.Wrap(err, "failed to count audit logs")
	}

	return items, total, nil
}

// UpdateClassificationState transitions an audit log entry out of PENDING.
// The update is guarded: rows already in a terminal state are never modified,
// which enforces the single-transition invariant at the store level. When
// description is non-nil it overwrites the entry's description.
func (p *PostgreSQLAuditLogRepository) UpdateClassificationState(
	ctx context.Context,
	id uuid.UUID,
	state auditDomain.ClassificationState,
	description *string,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE audit_logs
			  SET classification_state = $2, description = COALESCE($3, description)
			  WHERE id = $1 AND classification_state = 'PENDING'`

	_, err := querier.ExecContext(ctx, query, id, string(state), description)
	if err != nil {
		return apperrors.Wrap(err, "failed to update audit log classification state")
	}

	return nil
}

// ListCreatedBetween retrieves audit logs created within the inclusive time
// range, ordered oldest first. Used by batch signature verification.
func (p *PostgreSQLAuditLogRepository) ListCreatedBetween(
	ctx context.Context,
	start, end time.Time,
) ([]*auditDomain.AuditLog, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, actor_id, actor_role, action, resource, outcome, ip_address, description, severity, classification_state, signature, created_at
			  FROM audit_logs
			  WHERE created_at >= $1 AND created_at <= $2
			  ORDER BY created_at ASC`

	rows, err := querier.QueryContext(ctx, query, start, end)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit logs by time range")
	}
	defer func() {
		_ = rows.Close()
	}()

	auditLogs := make([]*auditDomain.AuditLog, 0)
	for rows.Next() {
		auditLog, err := scanAuditLog(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan audit log")
		}
		auditLogs = append(auditLogs, auditLog)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate audit logs")
	}

	return auditLogs, nil
}

// DeleteOlderThan removes audit logs created before the specified timestamp.
// When dryRun is true, returns the count via SELECT COUNT(*) without deleting.
// Classification results are removed by the cascading foreign key.
func (p *PostgreSQLAuditLogRepository) DeleteOlderThan(
	ctx context.Context,
	olderThan time.Time,
	dryRun bool,
) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	if dryRun {
		query := `SELECT COUNT(*) FROM audit_logs WHERE created_at < $1`
		var count int64
		err := querier.QueryRowContext(ctx, query, olderThan).Scan(&count)
		if err != nil {
			return 0, apperrors.Wrap(err, "failed to count audit logs")
		}
		return count, nil
	}

	query := `DELETE FROM audit_logs WHERE created_at < $1`
	result, err := querier.ExecContext(ctx, query, olderThan)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete audit logs")
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to get affected rows count")
	}

	return count, nil
}

// buildFilterClause assembles the WHERE clause for the three enumerated filter
// columns. Returns an empty string when the filter imposes no constraint.
// Placeholders are numbered from $1 in the order the conditions are added.
func buildFilterClause(filter *auditDomain.AuditLogFilter) (string, []interface{}) {
	if filter.Empty() {
		return "", nil
	}

	var conditions []string
	var args []interface{}

	if len(filter.Actions) > 0 {
		values := make([]string, 0, len(filter.Actions))
		for _, a := range filter.Actions {
			values = append(values, string(a))
		}
		conditions = append(conditions, fmt.Sprintf("al.action = ANY($%d)", len(args)+1))
		args = append(args, pq.Array(values))
	}

	if len(filter.Severities) > 0 {
		values := make([]string, 0, len(filter.Severities))
		for _, s := range filter.Severities {
			values = append(values, string(s))
		}
		conditions = append(conditions, fmt.Sprintf("al.severity = ANY($%d)", len(args)+1))
		args = append(args, pq.Array(values))
	}

	if len(filter.Statuses) > 0 {
		values := make([]string, 0, len(filter.Statuses))
		for _, o := range filter.Statuses {
			values = append(values, string(o))
		}
		conditions = append(conditions, fmt.Sprintf("al.outcome = ANY($%d)", len(args)+1))
		args = append(args, pq.Array(values))
	}

	return " WHERE " + strings.Join(conditions, " AND "), args
}

// rowScanner abstracts *sql.Row and *sql.Rows for shared scan logic.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanAuditLog reads the audit_logs columns into a domain AuditLog.
func scanAuditLog(row rowScanner) (*auditDomain.AuditLog, error) {
	var auditLog auditDomain.AuditLog
	var actorID uuid.NullUUID
	var actorRole, ipAddress, description sql.NullString
	var action, resource, outcome, severity, classificationState string

	err := row.Scan(
		&auditLog.ID,
		&actorID,
		&actorRole,
		&action,
		&resource,
		&outcome,
		&ipAddress,
		&description,
		&severity,
		&classificationState,
		&auditLog.Signature,
		&auditLog.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if actorID.Valid {
		auditLog.ActorID = &actorID.UUID
	}
	if actorRole.Valid {
		auditLog.ActorRole = &actorRole.String
	}
	if ipAddress.Valid {
		auditLog.IPAddress = &ipAddress.String
	}
	if description.Valid {
		auditLog.Description = &description.String
	}
	auditLog.Action = auditDomain.Action(action)
	auditLog.Resource = auditDomain.Resource(resource)
	auditLog.Outcome = auditDomain.Outcome(outcome)
	auditLog.Severity = auditDomain.Severity(severity)
	auditLog.ClassificationState = auditDomain.ClassificationState(classificationState)

	return &auditLog, nil
}

// scanAuditLogItem reads the joined audit_logs and classification_results
// columns into an AuditLogItem, deriving the alert flag from the result's
// stored score and threshold.
func scanAuditLogItem(row rowScanner) (*auditDomain.AuditLogItem, error) {
	var item auditDomain.AuditLogItem
	var actorID uuid.NullUUID
	var actorRole, ipAddress, description sql.NullString
	var action, resource, outcome, severity, classificationState string

	var resultID uuid.NullUUID
	var modelName sql.NullString
	var score, threshold sql.NullFloat64
	var isSuspicious sql.NullBool
	var raw []byte
	var resultCreatedAt sql.NullTime

	err := row.Scan(
		&item.ID,
		&actorID,
		&actorRole,
		&action,
		&resource,
		&outcome,
		&ipAddress,
		&description,
		&severity,
		&classificationState,
		&item.Signature,
		&item.CreatedAt,
		&resultID,
		&modelName,
		&score,
		&threshold,
		&isSuspicious,
		&raw,
		&resultCreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if actorID.Valid {
		item.ActorID = &actorID.UUID
	}
	if actorRole.Valid {
		item.ActorRole = &actorRole.String
	}
	if ipAddress.Valid {
		item.IPAddress = &ipAddress.String
	}
	if description.Valid {
		item.Description = &description.String
	}
	item.Action = auditDomain.Action(action)
	item.Resource = auditDomain.Resource(resource)
	item.Outcome = auditDomain.Outcome(outcome)
	item.Severity = auditDomain.Severity(severity)
	item.ClassificationState = auditDomain.ClassificationState(classificationState)

	if resultID.Valid {
		item.Result = &auditDomain.ClassificationResult{
			ID:           resultID.UUID,
			AuditLogID:   item.ID,
			ModelName:    modelName.String,
			Score:        score.Float64,
			Threshold:    threshold.Float64,
			IsSuspicious: isSuspicious.Bool,
			Raw:          raw,
			CreatedAt:    resultCreatedAt.Time,
		}
		item.Alert = auditDomain.Suspicious(item.Result.Score, item.Result.Threshold)
	}

	return &item, nil
}
