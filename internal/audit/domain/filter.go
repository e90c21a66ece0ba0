package domain

import (
	apperrors "github.com/hardwarexpress/audittrail/internal/errors"
)

// AuditLogFilter narrows a page query. Each field is multi-valued: values
// within a field combine with OR, populated fields combine with AND. Empty
// fields impose no constraint. Statuses filters on the outcome column.
type AuditLogFilter struct {
	Actions    []Action
	Severities []Severity
	Statuses   []Outcome
}

// Empty reports whether the filter imposes no constraint at all.
func (f *AuditLogFilter) Empty() bool {
	return f == nil || (len(f.Actions) == 0 && len(f.Severities) == 0 && len(f.Statuses) == 0)
}

// Validate checks every filter value against its closed enum. Unknown values
// are rejected with ErrInvalidInput before any query runs; they are never
// dropped or coerced.
func (f *AuditLogFilter) Validate() error {
	if f == nil {
		return nil
	}
	for _, a := range f.Actions {
		if _, err := ParseAction(string(a)); err != nil {
			return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
		}
	}
	for _, s := range f.Severities {
		if _, err := ParseSeverity(string(s)); err != nil {
			return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
		}
	}
	for _, o := range f.Statuses {
		if _, err := ParseOutcome(string(o)); err != nil {
			return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
		}
	}
	return nil
}
