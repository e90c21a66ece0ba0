// Package mysql implements audit trail persistence for MySQL.
package mysql

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/hardwarexpress/audittrail/internal/audit/domain"
	"github.com/hardwarexpress/audittrail/internal/database"
	apperrors "github.com/hardwarexpress/audittrail/internal/errors"
)

// MySQLAuditLogRepository implements AuditLog persistence for MySQL.
// Uses BINARY(16) for UUID storage with transaction support via database.GetTx().
type MySQLAuditLogRepository struct {
	db *sql.DB
}

// NewMySQLAuditLogRepository creates a new MySQL AuditLog repository.
func NewMySQLAuditLogRepository(db *sql.DB) *MySQLAuditLogRepository {
	return &MySQLAuditLogRepository{db: db}
}

const auditLogItemColumns = `al.id, al.actor_id, al.actor_role, al.action, al.resource, al.outcome,
	al.ip_address, al.description, al.severity, al.classification_state, al.signature, al.created_at,
	cr.id, cr.model_name, cr.score, cr.threshold, cr.is_suspicious, cr.raw, cr.created_at`

// Create inserts a new AuditLog into the MySQL database using BINARY(16) for
// UUIDs. Nil actor, ip address, and description fields are stored as NULL.
func (m *MySQLAuditLogRepository) Create(ctx context.Context, auditLog *auditDomain.AuditLog) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO audit_logs (id, actor_id, actor_role, action, resource, outcome, ip_address, description, severity, classification_state, signature, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	id, err := auditLog.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal audit log id")
	}

	// Marshal actor_id if present (nullable)
	var actorIDBinary []byte
	if auditLog.ActorID != nil {
		actorIDBinary, err = auditLog.ActorID.MarshalBinary()
		if err != nil {
			return apperrors.Wrap(err, "failed to marshal audit log actor_id")
		}
	}

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		actorIDBinary,
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
func (m *MySQLAuditLogRepository) Get(ctx context.Context, id uuid.UUID) (*auditDomain.AuditLogItem, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + auditLogItemColumns + `
			  FROM audit_logs al
			  LEFT JOIN classification_results cr ON cr.audit_log_id = al.id
			  WHERE al.id = ?`

	idBinary, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal audit log id")
	}

	item, err := scanAuditLogItem(querier.QueryRowContext(ctx, query, idBinary))
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
func (m *MySQLAuditLogRepository) List(
	ctx context.Context,
	offset, limit int,
	filter *auditDomain.AuditLogFilter,
) ([]*auditDomain.AuditLogItem, int64, error) {
	querier := database.GetTx(ctx, m.db)

	where, args := buildFilterClause(filter)

	query := `SELECT ` + auditLogItemColumns + `
			  FROM audit_logs al
			  LEFT JOIN classification_results cr ON cr.audit_log_id = al.id` + where
	query += " ORDER BY al.created_at DESC, al.id ASC LIMIT ? OFFSET ?"

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
func (m *MySQLAuditLogRepository) UpdateClassificationState(
	ctx context.Context,
	id uuid.UUID,
	state auditDomain.ClassificationState,
	description *string,
) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE audit_logs
			  SET classification_state = ?, description = COALESCE(?, description)
			  WHERE id = ? AND classification_state = 'PENDING'`

	idBinary, err := id.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal audit log id")
	}

	_, err = querier.ExecContext(ctx, query, string(state), description, idBinary)
	if err != nil {
		return apperrors.Wrap(err, "failed to update audit log classification state")
	}

	return nil
}

// ListCreatedBetween retrieves audit logs created within the inclusive time
// range, ordered oldest first. Used by batch signature verification.
func (m *MySQLAuditLogRepository) ListCreatedBetween(
	ctx context.Context,
	start, end time.Time,
) ([]*auditDomain.AuditLog, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, actor_id, actor_role, action, resource, outcome, ip_address, description, severity, classification_state, signature, created_at
			  FROM audit_logs
			  WHERE created_at >= ? AND created_at <= ?
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
func (m *MySQLAuditLogRepository) DeleteOlderThan(
	ctx context.Context,
	olderThan time.Time,
	dryRun bool,
) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	if dryRun {
		query := `SELECT COUNT(*) FROM audit_logs WHERE created_at < ?`
		var count int64
		err := querier.QueryRowContext(ctx, query, olderThan).Scan(&count)
		if err != nil {
			return 0, apperrors.Wrap(err, "failed to count audit logs")
		}
		return count, nil
	}

	query := `DELETE FROM audit_logs WHERE created_at < ?`
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
func buildFilterClause(filter *auditDomain.AuditLogFilter) (string, []interface{}) {
	if filter.Empty() {
		return "", nil
	}

	var conditions []string
	var args []interface{}

	if len(filter.Actions) > 0 {
		conditions = append(conditions, "al.action IN ("+placeholders(len(filter.Actions))+")")
		for _, a := range filter.Actions {
			args = append(args, string(a))
		}
	}

	if len(filter.Severities) > 0 {
		conditions = append(conditions, "al.severity IN ("+placeholders(len(filter.Severities))+")")
		for _, s := range filter.Severities {
			args = append(args, string(s))
		}
	}

	if len(filter.Statuses) > 0 {
		conditions = append(conditions, "al.outcome IN ("+placeholders(len(filter.Statuses))+")")
		for _, o := range filter.Statuses {
			args = append(args, string(o))
		}
	}

	return " WHERE " + strings.Join(conditions, " AND "), args
}

// placeholders returns n comma-separated ? markers.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// rowScanner abstracts *sql.Row and *sql.Rows for shared scan logic.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanAuditLog reads the audit_logs columns into a domain AuditLog,
// unmarshaling UUIDs from BINARY(16).
func scanAuditLog(row rowScanner) (*auditDomain.AuditLog, error) {
	var auditLog auditDomain.AuditLog
	var idBinary, actorIDBinary []byte
	var actorRole, ipAddress, description sql.NullString
	var action, resource, outcome, severity, classificationState string

	err := row.Scan(
		&idBinary,
		&actorIDBinary,
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

	if err := auditLog.ID.UnmarshalBinary(idBinary); err != nil {
		return nil, err
	}
	if actorIDBinary != nil {
		var actorID uuid.UUID
		if err := actorID.UnmarshalBinary(actorIDBinary); err != nil {
			return nil, err
		}
		auditLog.ActorID = &actorID
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
	var idBinary, actorIDBinary []byte
	var actorRole, ipAddress, description sql.NullString
	var action, resource, outcome, severity, classificationState string

	var resultIDBinary []byte
	var modelName sql.NullString
	var score, threshold sql.NullFloat64
	var isSuspicious sql.NullBool
	var raw []byte
	var resultCreatedAt sql.NullTime

	err := row.Scan(
		&idBinary,
		&actorIDBinary,
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
		&resultIDBinary,
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

	if err := item.ID.UnmarshalBinary(idBinary); err != nil {
		return nil, err
	}
	if actorIDBinary != nil {
		var actorID uuid.UUID
		if err := actorID.UnmarshalBinary(actorIDBinary); err != nil {
			return nil, err
		}
		item.ActorID = &actorID
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

	if resultIDBinary != nil {
		var resultID uuid.UUID
		if err := resultID.UnmarshalBinary(resultIDBinary); err != nil {
			return nil, err
		}
		item.Result = &auditDomain.ClassificationResult{
			ID:           resultID,
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
