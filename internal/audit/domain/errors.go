package domain

import (
	"github.com/hardwarexpress/audittrail/internal/errors"
)

// Audit trail domain errors.
var (
	// ErrAuditLogNotFound indicates an audit log entry with the specified ID was not found.
	ErrAuditLogNotFound = errors.Wrap(errors.ErrNotFound, "audit log not found")

	// ErrSignatureInvalid indicates an audit log signature failed verification.
	ErrSignatureInvalid = errors.New("audit log signature invalid")

	// ErrSigningKeyUnavailable indicates the audit signing key is not configured
	// or could not be unwrapped.
	ErrSigningKeyUnavailable = errors.New("audit signing key unavailable")

	// ErrAuditLogUnsigned indicates an integrity check was requested for an
	// entry recorded while signing was not configured.
	ErrAuditLogUnsigned = errors.New("audit log entry is unsigned")
)
