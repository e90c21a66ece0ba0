package dto

import (
	"time"

	auditDomain "github.com/hardwarexpress/audittrail/internal/audit/domain"
)

// ClassificationResultResponse represents a scored classifier verdict in API
// responses. The raw model payload is kept out of the API surface.
type ClassificationResultResponse struct {
	ModelName    string    `json:"model_name"`
	Score        float64   `json:"score"`
	Threshold    float64   `json:"threshold"`
	IsSuspicious bool      `json:"is_suspicious"`
	CreatedAt    time.Time `json:"created_at"`
}

// AuditLogResponse represents an audit log entry in API responses, joined
// with its classification verdict when one has been persisted. Alert is
// derived at read time and never stored.
type AuditLogResponse struct {
	ID                  string                        `json:"id"`
	ActorID             *string                       `json:"actor_id"`
	ActorRole           *string                       `json:"actor_role"`
	Action              string                        `json:"action"`
	Resource            string                        `json:"resource"`
	Outcome             string                        `json:"outcome"`
	IPAddress           *string                       `json:"ip_address"`
	Description         *string                       `json:"description"`
	Severity            string                        `json:"severity"`
	ClassificationState string                        `json:"classification_state"`
	Alert               bool                          `json:"alert"`
	Classification      *ClassificationResultResponse `json:"classification,omitempty"`
	CreatedAt           time.Time                     `json:"created_at"`
}

// MapAuditLogToResponse converts a domain audit log item to an API response.
func MapAuditLogToResponse(item *auditDomain.AuditLogItem) AuditLogResponse {
	var actorID *string
	if item.ActorID != nil {
		id := item.ActorID.String()
		actorID = &id
	}

	var classification *ClassificationResultResponse
	if item.Result != nil {
		classification = &ClassificationResultResponse{
			ModelName:    item.Result.ModelName,
			Score:        item.Result.Score,
			Threshold:    item.Result.Threshold,
			IsSuspicious: item.Result.IsSuspicious,
			CreatedAt:    item.Result.CreatedAt,
		}
	}

	return AuditLogResponse{
		ID:                  item.ID.String(),
		ActorID:             actorID,
		ActorRole:           item.ActorRole,
		Action:              string(item.Action),
		Resource:            string(item.Resource),
		Outcome:             string(item.Outcome),
		IPAddress:           item.IPAddress,
		Description:         item.Description,
		Severity:            string(item.Severity),
		ClassificationState: string(item.ClassificationState),
		Alert:               item.Alert,
		Classification:      classification,
		CreatedAt:           item.CreatedAt,
	}
}

// ListAuditLogsResponse represents a paginated list of audit logs in API responses.
type ListAuditLogsResponse struct {
	Data       []AuditLogResponse `json:"data"`
	Page       int                `json:"page"`
	PageSize   int                `json:"page_size"`
	Total      int64              `json:"total"`
	TotalPages int64              `json:"total_pages"`
}

// MapAuditLogPageToResponse converts a domain result page to a list API response.
func MapAuditLogPageToResponse(page *auditDomain.AuditLogPage) ListAuditLogsResponse {
	auditLogResponses := make([]AuditLogResponse, 0, len(page.Items))
	for _, item := range page.Items {
		auditLogResponses = append(auditLogResponses, MapAuditLogToResponse(item))
	}
	return ListAuditLogsResponse{
		Data:       auditLogResponses,
		Page:       page.Page,
		PageSize:   page.PageSize,
		Total:      page.Total,
		TotalPages: page.TotalPages,
	}
}
