package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	auditDomain "github.com/hardwarexpress/audittrail/internal/audit/domain"
	"github.com/hardwarexpress/audittrail/internal/audit/http/dto"
	httpMocks "github.com/hardwarexpress/audittrail/internal/audit/http/mocks"
	apperrors "github.com/hardwarexpress/audittrail/internal/errors"
)

// setupTestAuditLogHandler creates a test handler with mocked dependencies.
func setupTestAuditLogHandler(t *testing.T) (*AuditLogHandler, *httpMocks.MockAuditLogUseCase) {
	t.Helper()

	gin.SetMode(gin.TestMode)

	mockAuditLogUseCase := &httpMocks.MockAuditLogUseCase{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	handler := NewAuditLogHandler(mockAuditLogUseCase, logger)

	return handler, mockAuditLogUseCase
}

// createTestContext creates a gin test context with an optional JSON body.
func createTestContext(method, path string, body interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var bodyReader io.Reader
	if body != nil {
		bodyBytes, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req := httptest.NewRequest(method, path, bodyReader)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	return c, w
}

func TestAuditLogHandler_RecordHandler(t *testing.T) {
	t.Run("Success_ValidRequest", func(t *testing.T) {
		handler, mockUseCase := setupTestAuditLogHandler(t)

		actorID := uuid.Must(uuid.NewV7())
		actorIDStr := actorID.String()
		actorRole := "procurement_officer"
		ipAddress := "203.0.113.5"
		description := "approved order #42"

		request := dto.RecordAuditLogRequest{
			ActorID:     &actorIDStr,
			ActorRole:   &actorRole,
			Action:      "approve",
			Resource:    "order",
			Outcome:     "success",
			IPAddress:   &ipAddress,
			Description: &description,
		}

		expectedInput := &auditDomain.RecordAuditLogInput{
			ActorID:     &actorID,
			ActorRole:   &actorRole,
			Action:      auditDomain.ActionApprove,
			Resource:    auditDomain.ResourceOrder,
			Outcome:     auditDomain.OutcomeSuccess,
			IPAddress:   &ipAddress,
			Description: &description,
		}

		mockUseCase.On("Record", mock.Anything, expectedInput).
			Return(&auditDomain.AuditLog{ID: uuid.Must(uuid.NewV7())}).
			Once()

		c, w := createTestContext(http.MethodPost, "/v1/audit-logs", request)

		handler.RecordHandler(c)

		assert.Equal(t, http.StatusAccepted, w.Code)
		assert.Empty(t, w.Body.String())

		mockUseCase.AssertExpectations(t)
	})

	t.Run("Success_SeverityOverride", func(t *testing.T) {
		handler, mockUseCase := setupTestAuditLogHandler(t)

		severity := "critical"
		request := dto.RecordAuditLogRequest{
			Action:   "update",
			Resource: "user",
			Outcome:  "success",
			Severity: &severity,
		}

		mockUseCase.On("Record", mock.Anything, mock.MatchedBy(func(input *auditDomain.RecordAuditLogInput) bool {
			return input.Severity != nil && *input.Severity == auditDomain.SeverityCritical
		})).Return(&auditDomain.AuditLog{ID: uuid.Must(uuid.NewV7())}).Once()

		c, w := createTestContext(http.MethodPost, "/v1/audit-logs", request)
		c.Request.Header.Set("X-Forwarded-For", "203.0.113.5")

		handler.RecordHandler(c)

		assert.Equal(t, http.StatusAccepted, w.Code)

		mockUseCase.AssertExpectations(t)
	})

	t.Run("Success_ResolvesClientIPWhenAbsent", func(t *testing.T) {
		handler, mockUseCase := setupTestAuditLogHandler(t)

		request := dto.RecordAuditLogRequest{
			Action:   "login",
			Resource: "auth",
			Outcome:  "failure",
		}

		mockUseCase.On("Record", mock.Anything, mock.MatchedBy(func(input *auditDomain.RecordAuditLogInput) bool {
			return input.IPAddress != nil && *input.IPAddress == "203.0.113.9"
		})).Return(&auditDomain.AuditLog{ID: uuid.Must(uuid.NewV7())}).Once()

		c, w := createTestContext(http.MethodPost, "/v1/audit-logs", request)
		c.Request.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")

		handler.RecordHandler(c)

		assert.Equal(t, http.StatusAccepted, w.Code)

		mockUseCase.AssertExpectations(t)
	})

	t.Run("Success_ExplicitIPWinsOverHeaders", func(t *testing.T) {
		handler, mockUseCase := setupTestAuditLogHandler(t)

		ipAddress := "198.51.100.44"
		request := dto.RecordAuditLogRequest{
			Action:    "create",
			Resource:  "item",
			Outcome:   "success",
			IPAddress: &ipAddress,
		}

		mockUseCase.On("Record", mock.Anything, mock.MatchedBy(func(input *auditDomain.RecordAuditLogInput) bool {
			return input.IPAddress != nil && *input.IPAddress == ipAddress
		})).Return(&auditDomain.AuditLog{ID: uuid.Must(uuid.NewV7())}).Once()

		c, w := createTestContext(http.MethodPost, "/v1/audit-logs", request)
		c.Request.Header.Set("X-Forwarded-For", "203.0.113.9")

		handler.RecordHandler(c)

		assert.Equal(t, http.StatusAccepted, w.Code)

		mockUseCase.AssertExpectations(t)
	})

	t.Run("Success_DroppedEntryStillAccepted", func(t *testing.T) {
		handler, mockUseCase := setupTestAuditLogHandler(t)

		request := dto.RecordAuditLogRequest{
			Action:   "delete",
			Resource: "item",
			Outcome:  "success",
		}

		// A persistence failure drops the entry; the response is unchanged
		mockUseCase.On("Record", mock.Anything, mock.Anything).
			Return(nil).
			Once()

		c, w := createTestContext(http.MethodPost, "/v1/audit-logs", request)

		handler.RecordHandler(c)

		assert.Equal(t, http.StatusAccepted, w.Code)
		assert.Empty(t, w.Body.String())

		mockUseCase.AssertExpectations(t)
	})

	t.Run("Error_InvalidJSON", func(t *testing.T) {
		handler, _ := setupTestAuditLogHandler(t)

		c, w := createTestContext(http.MethodPost, "/v1/audit-logs", nil)
		c.Request.Body = io.NopCloser(bytes.NewReader([]byte("invalid json")))

		handler.RecordHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		var response map[string]interface{}
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, "validation_error", response["error"])
	})

	t.Run("Error_MissingAction", func(t *testing.T) {
		handler, _ := setupTestAuditLogHandler(t)

		request := dto.RecordAuditLogRequest{
			Resource: "order",
			Outcome:  "success",
		}

		c, w := createTestContext(http.MethodPost, "/v1/audit-logs", request)

		handler.RecordHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		var response map[string]interface{}
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, "validation_error", response["error"])
	})

	t.Run("Error_UnknownAction", func(t *testing.T) {
		handler, _ := setupTestAuditLogHandler(t)

		request := dto.RecordAuditLogRequest{
			Action:   "explode",
			Resource: "order",
			Outcome:  "success",
		}

		c, w := createTestContext(http.MethodPost, "/v1/audit-logs", request)

		handler.RecordHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		var response map[string]interface{}
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, "validation_error", response["error"])
		assert.Contains(t, response["message"], "explode")
	})

	t.Run("Error_UnknownSeverity", func(t *testing.T) {
		handler, _ := setupTestAuditLogHandler(t)

		severity := "catastrophic"
		request := dto.RecordAuditLogRequest{
			Action:   "create",
			Resource: "order",
			Outcome:  "success",
			Severity: &severity,
		}

		c, w := createTestContext(http.MethodPost, "/v1/audit-logs", request)

		handler.RecordHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		var response map[string]interface{}
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, "validation_error", response["error"])
	})

	t.Run("Error_InvalidActorID", func(t *testing.T) {
		handler, _ := setupTestAuditLogHandler(t)

		actorID := "not-a-uuid"
		request := dto.RecordAuditLogRequest{
			ActorID:  &actorID,
			Action:   "create",
			Resource: "order",
			Outcome:  "success",
		}

		c, w := createTestContext(http.MethodPost, "/v1/audit-logs", request)

		handler.RecordHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		var response map[string]interface{}
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, "validation_error", response["error"])
	})
}

func TestAuditLogHandler_ListHandler(t *testing.T) {
	t.Run("Success_DefaultPagination", func(t *testing.T) {
		handler, mockUseCase := setupTestAuditLogHandler(t)

		id1 := uuid.Must(uuid.NewV7())
		id2 := uuid.Must(uuid.NewV7())
		now := time.Now().UTC()

		items := []*auditDomain.AuditLogItem{
			{
				AuditLog: auditDomain.AuditLog{
					ID:                  id1,
					Action:              auditDomain.ActionApprove,
					Resource:            auditDomain.ResourceOrder,
					Outcome:             auditDomain.OutcomeSuccess,
					Severity:            auditDomain.SeverityMedium,
					ClassificationState: auditDomain.ClassificationAnomalous,
					CreatedAt:           now,
				},
				Result: &auditDomain.ClassificationResult{
					AuditLogID:   id1,
					ModelName:    "anomaly-detector-v2",
					Score:        0.91,
					Threshold:    0.8,
					IsSuspicious: true,
					CreatedAt:    now,
				},
				Alert: true,
			},
			{
				AuditLog: auditDomain.AuditLog{
					ID:                  id2,
					Action:              auditDomain.ActionLogin,
					Resource:            auditDomain.ResourceAuth,
					Outcome:             auditDomain.OutcomeFailure,
					Severity:            auditDomain.SeverityHigh,
					ClassificationState: auditDomain.ClassificationPending,
					CreatedAt:           now.Add(-1 * time.Hour),
				},
			},
		}

		expectedFilter := &auditDomain.AuditLogFilter{}

		mockUseCase.On("List", mock.Anything, 1, 50, expectedFilter).
			Return(auditDomain.NewAuditLogPage(items, 1, 50, 2), nil).
			Once()

		c, w := createTestContext(http.MethodGet, "/v1/audit-logs", nil)

		handler.ListHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)

		var response dto.ListAuditLogsResponse
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Len(t, response.Data, 2)
		assert.Equal(t, 1, response.Page)
		assert.Equal(t, 50, response.PageSize)
		assert.Equal(t, int64(2), response.Total)
		assert.Equal(t, int64(1), response.TotalPages)

		assert.Equal(t, id1.String(), response.Data[0].ID)
		assert.Equal(t, "approve", response.Data[0].Action)
		assert.Equal(t, "ANOMALOUS", response.Data[0].ClassificationState)
		assert.True(t, response.Data[0].Alert)
		if assert.NotNil(t, response.Data[0].Classification) {
			assert.Equal(t, "anomaly-detector-v2", response.Data[0].Classification.ModelName)
			assert.Equal(t, 0.91, response.Data[0].Classification.Score)
			assert.Equal(t, 0.8, response.Data[0].Classification.Threshold)
			assert.True(t, response.Data[0].Classification.IsSuspicious)
		}

		assert.Equal(t, id2.String(), response.Data[1].ID)
		assert.Equal(t, "PENDING", response.Data[1].ClassificationState)
		assert.False(t, response.Data[1].Alert)
		assert.Nil(t, response.Data[1].Classification)

		mockUseCase.AssertExpectations(t)
	})

	t.Run("Success_RepeatableFilters", func(t *testing.T) {
		handler, mockUseCase := setupTestAuditLogHandler(t)

		expectedFilter := &auditDomain.AuditLogFilter{
			Actions:    []auditDomain.Action{auditDomain.ActionCreate, auditDomain.ActionDelete},
			Severities: []auditDomain.Severity{auditDomain.SeverityHigh},
			Statuses:   []auditDomain.Outcome{auditDomain.OutcomeFailure},
		}

		mockUseCase.On("List", mock.Anything, 2, 25, expectedFilter).
			Return(auditDomain.NewAuditLogPage(nil, 2, 25, 0), nil).
			Once()

		url := "/v1/audit-logs?page=2&page_size=25&action=create&action=delete&severity=high&status=failure"
		c, w := createTestContext(http.MethodGet, url, nil)

		handler.ListHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)

		var response dto.ListAuditLogsResponse
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Len(t, response.Data, 0)
		assert.Equal(t, int64(0), response.TotalPages)

		mockUseCase.AssertExpectations(t)
	})

	t.Run("Error_PageNotAnInteger", func(t *testing.T) {
		handler, _ := setupTestAuditLogHandler(t)

		c, w := createTestContext(http.MethodGet, "/v1/audit-logs?page=abc", nil)

		handler.ListHandler(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var response map[string]interface{}
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, "bad_request", response["error"])
	})

	t.Run("Error_PageSizeNotAnInteger", func(t *testing.T) {
		handler, _ := setupTestAuditLogHandler(t)

		c, w := createTestContext(http.MethodGet, "/v1/audit-logs?page_size=xyz", nil)

		handler.ListHandler(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var response map[string]interface{}
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, "bad_request", response["error"])
	})

	t.Run("Error_PageBelowOne", func(t *testing.T) {
		handler, mockUseCase := setupTestAuditLogHandler(t)

		mockUseCase.On("List", mock.Anything, 0, 50, mock.Anything).
			Return(nil, apperrors.Wrap(apperrors.ErrInvalidInput, "page must be 1 or greater")).
			Once()

		c, w := createTestContext(http.MethodGet, "/v1/audit-logs?page=0", nil)

		handler.ListHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		var response map[string]interface{}
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, "invalid_input", response["error"])
		assert.Contains(t, response["message"], "page must be 1 or greater")

		mockUseCase.AssertExpectations(t)
	})

	t.Run("Error_UnknownFilterValue", func(t *testing.T) {
		handler, mockUseCase := setupTestAuditLogHandler(t)

		expectedFilter := &auditDomain.AuditLogFilter{
			Actions: []auditDomain.Action{"explode"},
		}

		mockUseCase.On("List", mock.Anything, 1, 50, expectedFilter).
			Return(nil, apperrors.Wrap(apperrors.ErrInvalidInput, `invalid action: "explode"`)).
			Once()

		c, w := createTestContext(http.MethodGet, "/v1/audit-logs?action=explode", nil)

		handler.ListHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		var response map[string]interface{}
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, "invalid_input", response["error"])

		mockUseCase.AssertExpectations(t)
	})

	t.Run("Error_UseCaseError", func(t *testing.T) {
		handler, mockUseCase := setupTestAuditLogHandler(t)

		mockUseCase.On("List", mock.Anything, 1, 50, mock.Anything).
			Return(nil, errors.New("database error")).
			Once()

		c, w := createTestContext(http.MethodGet, "/v1/audit-logs", nil)

		handler.ListHandler(c)

		assert.Equal(t, http.StatusInternalServerError, w.Code)

		var response map[string]interface{}
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, "internal_error", response["error"])

		mockUseCase.AssertExpectations(t)
	})
}

func TestAuditLogHandler_GetHandler(t *testing.T) {
	t.Run("Success_ClassifiedEntry", func(t *testing.T) {
		handler, mockUseCase := setupTestAuditLogHandler(t)

		auditLogID := uuid.Must(uuid.NewV7())
		actorRole := "admin"
		now := time.Now().UTC()

		item := &auditDomain.AuditLogItem{
			AuditLog: auditDomain.AuditLog{
				ID:                  auditLogID,
				ActorRole:           &actorRole,
				Action:              auditDomain.ActionDelete,
				Resource:            auditDomain.ResourceItem,
				Outcome:             auditDomain.OutcomeSuccess,
				Severity:            auditDomain.SeverityHigh,
				ClassificationState: auditDomain.ClassificationNormal,
				CreatedAt:           now,
			},
			Result: &auditDomain.ClassificationResult{
				AuditLogID:   auditLogID,
				ModelName:    "anomaly-detector-v2",
				Score:        0.12,
				Threshold:    0.8,
				IsSuspicious: false,
				CreatedAt:    now,
			},
		}

		mockUseCase.On("Get", mock.Anything, auditLogID).
			Return(item, nil).
			Once()

		c, w := createTestContext(http.MethodGet, "/v1/audit-logs/"+auditLogID.String(), nil)
		c.Params = gin.Params{{Key: "id", Value: auditLogID.String()}}

		handler.GetHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)

		var response dto.AuditLogResponse
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, auditLogID.String(), response.ID)
		assert.Equal(t, "admin", *response.ActorRole)
		assert.Equal(t, "delete", response.Action)
		assert.Equal(t, "NORMAL", response.ClassificationState)
		assert.False(t, response.Alert)
		if assert.NotNil(t, response.Classification) {
			assert.Equal(t, 0.12, response.Classification.Score)
			assert.False(t, response.Classification.IsSuspicious)
		}
		assert.Equal(t, now.Unix(), response.CreatedAt.Unix())

		mockUseCase.AssertExpectations(t)
	})

	t.Run("Success_PendingEntryWithoutResult", func(t *testing.T) {
		handler, mockUseCase := setupTestAuditLogHandler(t)

		auditLogID := uuid.Must(uuid.NewV7())

		item := &auditDomain.AuditLogItem{
			AuditLog: auditDomain.AuditLog{
				ID:                  auditLogID,
				Action:              auditDomain.ActionLogin,
				Resource:            auditDomain.ResourceAuth,
				Outcome:             auditDomain.OutcomeFailure,
				Severity:            auditDomain.SeverityHigh,
				ClassificationState: auditDomain.ClassificationPending,
				CreatedAt:           time.Now().UTC(),
			},
		}

		mockUseCase.On("Get", mock.Anything, auditLogID).
			Return(item, nil).
			Once()

		c, w := createTestContext(http.MethodGet, "/v1/audit-logs/"+auditLogID.String(), nil)
		c.Params = gin.Params{{Key: "id", Value: auditLogID.String()}}

		handler.GetHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)

		var response dto.AuditLogResponse
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, "PENDING", response.ClassificationState)
		assert.False(t, response.Alert)
		assert.Nil(t, response.Classification)
		assert.Nil(t, response.ActorID)

		mockUseCase.AssertExpectations(t)
	})

	t.Run("Error_InvalidUUID", func(t *testing.T) {
		handler, _ := setupTestAuditLogHandler(t)

		c, w := createTestContext(http.MethodGet, "/v1/audit-logs/invalid-uuid", nil)
		c.Params = gin.Params{{Key: "id", Value: "invalid-uuid"}}

		handler.GetHandler(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var response map[string]interface{}
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, "bad_request", response["error"])
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		handler, mockUseCase := setupTestAuditLogHandler(t)

		auditLogID := uuid.Must(uuid.NewV7())

		mockUseCase.On("Get", mock.Anything, auditLogID).
			Return(nil, auditDomain.ErrAuditLogNotFound).
			Once()

		c, w := createTestContext(http.MethodGet, "/v1/audit-logs/"+auditLogID.String(), nil)
		c.Params = gin.Params{{Key: "id", Value: auditLogID.String()}}

		handler.GetHandler(c)

		assert.Equal(t, http.StatusNotFound, w.Code)

		var response map[string]interface{}
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, "not_found", response["error"])

		mockUseCase.AssertExpectations(t)
	})

	t.Run("Error_UseCaseError", func(t *testing.T) {
		handler, mockUseCase := setupTestAuditLogHandler(t)

		auditLogID := uuid.Must(uuid.NewV7())

		mockUseCase.On("Get", mock.Anything, auditLogID).
			Return(nil, errors.New("database error")).
			Once()

		c, w := createTestContext(http.MethodGet, "/v1/audit-logs/"+auditLogID.String(), nil)
		c.Params = gin.Params{{Key: "id", Value: auditLogID.String()}}

		handler.GetHandler(c)

		assert.Equal(t, http.StatusInternalServerError, w.Code)

		mockUseCase.AssertExpectations(t)
	})
}
