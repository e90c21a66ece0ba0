// Package http provides HTTP handlers for the audit trail API.
package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	auditDomain "github.com/hardwarexpress/audittrail/internal/audit/domain"
	"github.com/hardwarexpress/audittrail/internal/audit/http/dto"
	auditUseCase "github.com/hardwarexpress/audittrail/internal/audit/usecase"
	"github.com/hardwarexpress/audittrail/internal/httputil"
	customValidation "github.com/hardwarexpress/audittrail/internal/validation"
)

// AuditLogHandler handles HTTP requests for audit log operations.
type AuditLogHandler struct {
	auditLogUseCase auditUseCase.AuditLogUseCase
	logger          *slog.Logger
}

// NewAuditLogHandler creates a new audit log handler with required dependencies.
func NewAuditLogHandler(auditLogUseCase auditUseCase.AuditLogUseCase, logger *slog.Logger) *AuditLogHandler {
	return &AuditLogHandler{
		auditLogUseCase: auditLogUseCase,
		logger:          logger,
	}
}

// RecordHandler ingests an audit log entry from a portal service.
// POST /v1/audit-logs - Returns 202 Accepted with an empty body.
// Recording is fire-and-forget: persistence and classification failures
// never change the response.
func (h *AuditLogHandler) RecordHandler(c *gin.Context) {
	var req dto.RecordAuditLogRequest

	// Parse and bind JSON
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	// Validate request
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	// Create input for use case
	input, err := req.ToInput()
	if err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	// Fall back to the transport-level client address
	if input.IPAddress == nil {
		if ip := httputil.ClientIP(c.Request); ip != "" {
			input.IPAddress = &ip
		}
	}

	h.auditLogUseCase.Record(c.Request.Context(), input)

	// Return 202 Accepted with empty body
	c.Data(http.StatusAccepted, "application/json", nil)
}

// ListHandler retrieves audit log entries with pagination and filtering.
// GET /v1/audit-logs?page=1&page_size=50&action=create&severity=high&status=failure
// Filter parameters are repeatable; values within one parameter combine with
// OR, different parameters combine with AND.
// Returns 200 OK with the result page, newest entries first.
func (h *AuditLogHandler) ListHandler(c *gin.Context) {
	// Parse page and page_size query parameters
	page, pageSize, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	filter := &auditDomain.AuditLogFilter{}
	for _, v := range c.QueryArray("action") {
		filter.Actions = append(filter.Actions, auditDomain.Action(v))
	}
	for _, v := range c.QueryArray("severity") {
		filter.Severities = append(filter.Severities, auditDomain.Severity(v))
	}
	for _, v := range c.QueryArray("status") {
		filter.Statuses = append(filter.Statuses, auditDomain.Outcome(v))
	}

	// Call use case; page range and filter values are judged there
	result, err := h.auditLogUseCase.List(c.Request.Context(), page, pageSize, filter)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapAuditLogPageToResponse(result))
}

// GetHandler retrieves a single audit log entry by ID, joined with its
// classification verdict.
// GET /v1/audit-logs/:id - Returns 200 OK with the record.
func (h *AuditLogHandler) GetHandler(c *gin.Context) {
	// Parse and validate UUID
	auditLogID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleBadRequestGin(c,
			fmt.Errorf("invalid audit log ID format: must be a valid UUID"),
			h.logger)
		return
	}

	// Call use case
	item, err := h.auditLogUseCase.Get(c.Request.Context(), auditLogID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapAuditLogToResponse(item))
}
