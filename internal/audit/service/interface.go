// Package service provides technical services for the audit trail: tamper
// signing of entries and the client for the anomaly classification service.
package service

import (
	"context"
	"encoding/json"

	auditDomain "github.com/hardwarexpress/audittrail/internal/audit/domain"
)

// AuditLogSigner defines tamper-evidence operations for audit log entries.
// Signatures cover only the creation-time fields, so an entry's signature
// stays valid across the classification state transition.
type AuditLogSigner interface {
	// Sign computes the signature over the entry's creation-time fields.
	Sign(auditLog *auditDomain.AuditLog) ([]byte, error)

	// Verify recomputes the entry's signature and compares it against the
	// stored one. Returns ErrSignatureInvalid on mismatch.
	Verify(auditLog *auditDomain.AuditLog) error
}

// AnalyzeRequest is the payload submitted to the classification service.
type AnalyzeRequest struct {
	LogID    string         `json:"log_id"`
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// AnalyzeResponse is the classification service's scored verdict. Raw holds
// the verbatim response body for storage alongside the parsed fields.
type AnalyzeResponse struct {
	ModelName    string          `json:"model_name"`
	Label        string          `json:"label"`
	Score        float64         `json:"score"`
	Threshold    float64         `json:"threshold"`
	IsSuspicious bool            `json:"is_suspicious"`
	AISummary    string          `json:"ai_summary"`
	Raw          json.RawMessage `json:"-"`
}

// Classifier defines the client contract for the anomaly classification
// service. Implementations apply no request timeout of their own: callers
// bound each call through the context.
type Classifier interface {
	// Analyze submits entry text for classification and returns the verdict.
	Analyze(ctx context.Context, request *AnalyzeRequest) (*AnalyzeResponse, error)

	// Health reports whether the classification service is up and its model
	// is loaded.
	Health(ctx context.Context) error
}
