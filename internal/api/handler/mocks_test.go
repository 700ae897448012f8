package handler

import (
	"context"

	"go-procflow/internal/domain"
	"go-procflow/internal/service"

	"github.com/stretchr/testify/mock"
)

type mockTracker struct {
	mock.Mock
}

func (m *mockTracker) Start(ctx context.Context, req service.StartRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *mockTracker) Terminate(ctx context.Context, instanceID, reason string) error {
	return m.Called(ctx, instanceID, reason).Error(0)
}

func (m *mockTracker) MarkCompleted(ctx context.Context, instanceID string) error {
	return m.Called(ctx, instanceID).Error(0)
}

func (m *mockTracker) ListDefinitions(ctx context.Context) ([]domain.DefinitionSummary, error) {
	args := m.Called(ctx)
	out, _ := args.Get(0).([]domain.DefinitionSummary)
	return out, args.Error(1)
}

func (m *mockTracker) ListActiveInstances(ctx context.Context, definitionID string) ([]domain.ActiveInstance, error) {
	args := m.Called(ctx, definitionID)
	out, _ := args.Get(0).([]domain.ActiveInstance)
	return out, args.Error(1)
}

func (m *mockTracker) ListTracked(ctx context.Context, businessKey string) ([]domain.WorkflowInstance, error) {
	args := m.Called(ctx, businessKey)
	out, _ := args.Get(0).([]domain.WorkflowInstance)
	return out, args.Error(1)
}

func (m *mockTracker) ExportDiagram(ctx context.Context, definitionID string) (string, error) {
	args := m.Called(ctx, definitionID)
	return args.String(0), args.Error(1)
}

func (m *mockTracker) ValidateDefinition(ctx context.Context, definitionID string) (*domain.DefinitionValidation, error) {
	args := m.Called(ctx, definitionID)
	out, _ := args.Get(0).(*domain.DefinitionValidation)
	return out, args.Error(1)
}

type mockResolver struct {
	mock.Mock
}

func (m *mockResolver) Resolve(ctx context.Context, instanceID string) (domain.ResolvedStatus, bool, error) {
	args := m.Called(ctx, instanceID)
	out, _ := args.Get(0).(domain.ResolvedStatus)
	return out, args.Bool(1), args.Error(2)
}

type mockTasks struct {
	mock.Mock
}

func (m *mockTasks) ListUserTasks(ctx context.Context, userID string) ([]domain.TaskView, error) {
	args := m.Called(ctx, userID)
	out, _ := args.Get(0).([]domain.TaskView)
	return out, args.Error(1)
}

func (m *mockTasks) GetTaskDetails(ctx context.Context, taskID string) (*domain.TaskDetails, error) {
	args := m.Called(ctx, taskID)
	out, _ := args.Get(0).(*domain.TaskDetails)
	return out, args.Error(1)
}

func (m *mockTasks) Claim(ctx context.Context, taskID, userID string) error {
	return m.Called(ctx, taskID, userID).Error(0)
}

func (m *mockTasks) Complete(ctx context.Context, req service.CompleteRequest) error {
	return m.Called(ctx, req).Error(0)
}

func (m *mockTasks) Delegate(ctx context.Context, taskID, fromUserID, toUserID string) error {
	return m.Called(ctx, taskID, fromUserID, toUserID).Error(0)
}

func (m *mockTasks) TaskHistory(ctx context.Context, instanceID string) ([]domain.HistoricTask, error) {
	args := m.Called(ctx, instanceID)
	out, _ := args.Get(0).([]domain.HistoricTask)
	return out, args.Error(1)
}
