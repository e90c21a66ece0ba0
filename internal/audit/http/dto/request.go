// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	"fmt"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	auditDomain "github.com/hardwarexpress/audittrail/internal/audit/domain"
)

// RecordAuditLogRequest contains the parameters for recording an audit log entry.
// Severity is optional; when absent the severity policy derives it. IPAddress
// is optional; when absent the handler resolves the transport-level address.
type RecordAuditLogRequest struct {
	ActorID     *string `json:"actor_id"`
	ActorRole   *string `json:"actor_role"`
	Action      string  `json:"action"`
	Resource    string  `json:"resource"`
	Outcome     string  `json:"outcome"`
	IPAddress   *string `json:"ip_address"`
	Description *string `json:"description"`
	Severity    *string `json:"severity"`
}

// Validate checks if the record request is valid. Enum fields are checked
// against their closed sets; unknown values are rejected, never coerced.
func (r *RecordAuditLogRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Action,
			validation.Required,
			validation.By(validateAction),
		),
		validation.Field(&r.Resource,
			validation.Required,
			validation.By(validateResource),
		),
		validation.Field(&r.Outcome,
			validation.Required,
			validation.By(validateOutcome),
		),
		validation.Field(&r.ActorID,
			validation.By(validateOptionalUUID),
		),
		validation.Field(&r.ActorRole,
			validation.Length(1, 255),
		),
		validation.Field(&r.Severity,
			validation.By(validateOptionalSeverity),
		),
		validation.Field(&r.IPAddress,
			validation.Length(1, 45),
		),
		validation.Field(&r.Description,
			validation.Length(1, 2000),
		),
	)
}

// validateAction checks a value against the closed action set.
func validateAction(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_action_type", "must be a string")
	}
	if _, err := auditDomain.ParseAction(s); err != nil {
		return validation.NewError("validation_action", err.Error())
	}
	return nil
}

// validateResource checks a value against the closed resource set.
func validateResource(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_resource_type", "must be a string")
	}
	if _, err := auditDomain.ParseResource(s); err != nil {
		return validation.NewError("validation_resource", err.Error())
	}
	return nil
}

// validateOutcome checks a value against the closed outcome set.
func validateOutcome(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_outcome_type", "must be a string")
	}
	if _, err := auditDomain.ParseOutcome(s); err != nil {
		return validation.NewError("validation_outcome", err.Error())
	}
	return nil
}

// validateOptionalSeverity checks an optional value against the closed
// severity set. Nil and empty values are allowed.
func validateOptionalSeverity(value interface{}) error {
	s, _ := value.(*string)
	if s == nil || *s == "" {
		return nil
	}
	if _, err := auditDomain.ParseSeverity(*s); err != nil {
		return validation.NewError("validation_severity", err.Error())
	}
	return nil
}

// validateOptionalUUID checks that an optional value parses as a UUID.
// Nil and empty values are allowed.
func validateOptionalUUID(value interface{}) error {
	s, _ := value.(*string)
	if s == nil || *s == "" {
		return nil
	}
	if _, err := uuid.Parse(*s); err != nil {
		return validation.NewError("validation_uuid", "must be a valid UUID")
	}
	return nil
}

// ToInput converts the validated request into the use case input. Optional
// strings are normalized so absent and empty values both map to nil.
func (r *RecordAuditLogRequest) ToInput() (*auditDomain.RecordAuditLogInput, error) {
	action, err := auditDomain.ParseAction(r.Action)
	if err != nil {
		return nil, err
	}

	resource, err := auditDomain.ParseResource(r.Resource)
	if err != nil {
		return nil, err
	}

	outcome, err := auditDomain.ParseOutcome(r.Outcome)
	if err != nil {
		return nil, err
	}

	input := &auditDomain.RecordAuditLogInput{
		Action:      action,
		Resource:    resource,
		Outcome:     outcome,
		ActorRole:   normalizeOptional(r.ActorRole),
		IPAddress:   normalizeOptional(r.IPAddress),
		Description: normalizeOptional(r.Description),
	}

	if r.ActorID != nil && *r.ActorID != "" {
		actorID, err := uuid.Parse(*r.ActorID)
		if err != nil {
			return nil, fmt.Errorf("invalid actor ID format: must be a valid UUID")
		}
		input.ActorID = &actorID
	}

	if r.Severity != nil && *r.Severity != "" {
		severity, err := auditDomain.ParseSeverity(*r.Severity)
		if err != nil {
			return nil, err
		}
		input.Severity = &severity
	}

	return input, nil
}

// normalizeOptional maps empty strings to nil so the stored record carries
// NULL instead of an empty value.
func normalizeOptional(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
