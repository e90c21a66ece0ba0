// Package mocks provides mock implementations for testing use case decorators.
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	auditDomain "github.com/hardwarexpress/audittrail/internal/audit/domain"
)

// MockAuditLogUseCase is a mock implementation of AuditLogUseCase for testing.
type MockAuditLogUseCase struct {
	mock.Mock
}

// Record mocks the Record method of AuditLogUseCase.
func (m *MockAuditLogUseCase) Record(
	ctx context.Context,
	input *auditDomain.RecordAuditLogInput,
) *auditDomain.AuditLog {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*auditDomain.AuditLog)
}

// List mocks the List method of AuditLogUseCase.
func (m *MockAuditLogUseCase) List(
	ctx context.Context,
	page, pageSize int,
	filter *auditDomain.AuditLogFilter,
) (*auditDomain.AuditLogPage, error) {
	args := m.Called(ctx, page, pageSize, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auditDomain.AuditLogPage), args.Error(1)
}

// Get mocks the Get method of AuditLogUseCase.
func (m *MockAuditLogUseCase) Get(ctx context.Context, id uuid.UUID) (*auditDomain.AuditLogItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auditDomain.AuditLogItem), args.Error(1)
}

// DeleteOlderThan mocks the DeleteOlderThan method of AuditLogUseCase.
func (m *MockAuditLogUseCase) DeleteOlderThan(ctx context.Context, days int, dryRun bool) (int64, error) {
	args := m.Called(ctx, days, dryRun)
	return args.Get(0).(int64), args.Error(1)
}

// VerifyIntegrity mocks the VerifyIntegrity method of AuditLogUseCase.
func (m *MockAuditLogUseCase) VerifyIntegrity(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// VerifyBatch mocks the VerifyBatch method of AuditLogUseCase.
func (m *MockAuditLogUseCase) VerifyBatch(
	ctx context.Context,
	start, end time.Time,
) (*auditDomain.VerificationReport, error) {
	args := m.Called(ctx, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auditDomain.VerificationReport), args.Error(1)
}

// MockClassificationUseCase is a mock implementation of ClassificationUseCase for testing.
type MockClassificationUseCase struct {
	mock.Mock
}

// Dispatch mocks the Dispatch method of ClassificationUseCase.
func (m *MockClassificationUseCase) Dispatch(auditLog *auditDomain.AuditLog) {
	m.Called(auditLog)
}

// Classify mocks the Classify method of ClassificationUseCase.
func (m *MockClassificationUseCase) Classify(ctx context.Context, auditLog *auditDomain.AuditLog) error {
	args := m.Called(ctx, auditLog)
	return args.Error(0)
}
