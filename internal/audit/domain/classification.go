package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ClassificationResult stores the scored verdict returned by the anomaly
// classifier for a single audit log entry. At most one result exists per
// entry; a repeated classification overwrites the previous result.
type ClassificationResult struct {
	// ID is the unique identifier for this result.
	ID uuid.UUID
	// AuditLogID references the classified audit log entry.
	AuditLogID uuid.UUID
	// ModelName identifies the model that produced the verdict.
	ModelName string
	// Score is the model's continuous suspicion score.
	Score float64
	// Threshold is the decision boundary in effect when the result was written.
	Threshold float64
	// IsSuspicious is fixed at write time as score > threshold (strictly).
	IsSuspicious bool
	// Raw preserves the classifier's response payload for diagnostics.
	Raw json.RawMessage
	// CreatedAt is the UTC timestamp when this result was persisted.
	CreatedAt time.Time
}

// Suspicious reports whether a score strictly exceeds a threshold. This is
// the single definition used both when persisting results and when deriving
// the per-item alert flag at query time.
func Suspicious(score, threshold float64) bool {
	return score > threshold
}
