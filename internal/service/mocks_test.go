package service

import (
	"context"
	"errors"
	"time"

	"go-procflow/internal/core/memory"
	"go-procflow/internal/domain"

	"github.com/stretchr/testify/mock"
)

type mockEngine struct {
	mock.Mock
}

func instanceOrNil(v any) *domain.ProcessInstance {
	if v == nil {
		return nil
	}
	return v.(*domain.ProcessInstance)
}

func varsOrNil(v any) map[string]any {
	if v == nil {
		return nil
	}
	return v.(map[string]any)
}

func (m *mockEngine) StartInstanceByKey(ctx context.Context, key string, variables map[string]any) (*domain.ProcessInstance, error) {
	args := m.Called(ctx, key, variables)
	return instanceOrNil(args.Get(0)), args.Error(1)
}

func (m *mockEngine) StartInstanceByKeyWithBusinessKey(ctx context.Context, key, businessKey string, variables map[string]any) (*domain.ProcessInstance, error) {
	args := m.Called(ctx, key, businessKey, variables)
	return instanceOrNil(args.Get(0)), args.Error(1)
}

func (m *mockEngine) GetLiveInstance(ctx context.Context, instanceID string) (*domain.ProcessInstance, error) {
	args := m.Called(ctx, instanceID)
	return instanceOrNil(args.Get(0)), args.Error(1)
}

func (m *mockEngine) GetLiveVariables(ctx context.Context, instanceID string) (map[string]any, error) {
	args := m.Called(ctx, instanceID)
	return varsOrNil(args.Get(0)), args.Error(1)
}

func (m *mockEngine) ListActiveInstances(ctx context.Context, definitionID string) ([]domain.ProcessInstance, error) {
	args := m.Called(ctx, definitionID)
	out, _ := args.Get(0).([]domain.ProcessInstance)
	return out, args.Error(1)
}

func (m *mockEngine) CountActiveInstances(ctx context.Context, definitionID string) (int64, error) {
	args := m.Called(ctx, definitionID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockEngine) DeleteInstance(ctx context.Context, instanceID, reason string) error {
	return m.Called(ctx, instanceID, reason).Error(0)
}

func (m *mockEngine) GetHistoricInstance(ctx context.Context, instanceID string) (*domain.HistoricProcessInstance, error) {
	args := m.Called(ctx, instanceID)
	out, _ := args.Get(0).(*domain.HistoricProcessInstance)
	return out, args.Error(1)
}

func (m *mockEngine) ListHistoricTasks(ctx context.Context, instanceID string) ([]domain.HistoricTask, error) {
	args := m.Called(ctx, instanceID)
	out, _ := args.Get(0).([]domain.HistoricTask)
	return out, args.Error(1)
}

func (m *mockEngine) ListLatestDefinitions(ctx context.Context) ([]domain.ProcessDefinition, error) {
	args := m.Called(ctx)
	out, _ := args.Get(0).([]domain.ProcessDefinition)
	return out, args.Error(1)
}

func (m *mockEngine) GetDefinitionXML(ctx context.Context, definitionID string) (string, error) {
	args := m.Called(ctx, definitionID)
	return args.String(0), args.Error(1)
}

func (m *mockEngine) ListTasksByAssignee(ctx context.Context, userID string) ([]domain.Task, error) {
	args := m.Called(ctx, userID)
	out, _ := args.Get(0).([]domain.Task)
	return out, args.Error(1)
}

func (m *mockEngine) ListTasksByCandidate(ctx context.Context, userID string) ([]domain.Task, error) {
	args := m.Called(ctx, userID)
	out, _ := args.Get(0).([]domain.Task)
	return out, args.Error(1)
}

func (m *mockEngine) GetTask(ctx context.Context, taskID string) (*domain.Task, error) {
	args := m.Called(ctx, taskID)
	out, _ := args.Get(0).(*domain.Task)
	return out, args.Error(1)
}

func (m *mockEngine) GetTaskVariables(ctx context.Context, taskID string) (map[string]any, error) {
	args := m.Called(ctx, taskID)
	return varsOrNil(args.Get(0)), args.Error(1)
}

func (m *mockEngine) ClaimTask(ctx context.Context, taskID, userID string) error {
	return m.Called(ctx, taskID, userID).Error(0)
}

func (m *mockEngine) DelegateTask(ctx context.Context, taskID, userID string) error {
	return m.Called(ctx, taskID, userID).Error(0)
}

func (m *mockEngine) AddComment(ctx context.Context, taskID, instanceID, text string) error {
	return m.Called(ctx, taskID, instanceID, text).Error(0)
}

func (m *mockEngine) CompleteTask(ctx context.Context, taskID string) error {
	return m.Called(ctx, taskID).Error(0)
}

func (m *mockEngine) CompleteTaskWithVariables(ctx context.Context, taskID string, variables map[string]any) error {
	return m.Called(ctx, taskID, variables).Error(0)
}

var errDiskFull = errors.New("disk full")

// failingStore wraps the memory store and fails selected writes.
type failingStore struct {
	*memory.Store
	failInsertInstance bool
	failUpdateInstance bool
	failListInstances  bool
	failInsertTask     bool
	failUpdateTask     bool
}

func newFailingStore() *failingStore {
	return &failingStore{Store: memory.NewStore()}
}

func (s *failingStore) InsertWorkflowInstance(ctx context.Context, inst *domain.WorkflowInstance) error {
	if s.failInsertInstance {
		return errors.Join(domain.ErrStoreUnavailable, errDiskFull)
	}
	return s.Store.InsertWorkflowInstance(ctx, inst)
}

func (s *failingStore) UpdateWorkflowInstance(ctx context.Context, inst *domain.WorkflowInstance) error {
	if s.failUpdateInstance {
		return errors.Join(domain.ErrStoreUnavailable, errDiskFull)
	}
	return s.Store.UpdateWorkflowInstance(ctx, inst)
}

func (s *failingStore) ListAllWorkflowInstances(ctx context.Context) ([]domain.WorkflowInstance, error) {
	if s.failListInstances {
		return nil, errors.Join(domain.ErrStoreUnavailable, errDiskFull)
	}
	return s.Store.ListAllWorkflowInstances(ctx)
}

func (s *failingStore) InsertTaskAssignment(ctx context.Context, a *domain.TaskAssignment) error {
	if s.failInsertTask {
		return errors.Join(domain.ErrStoreUnavailable, errDiskFull)
	}
	return s.Store.InsertTaskAssignment(ctx, a)
}

func (s *failingStore) UpdateTaskAssignment(ctx context.Context, a *domain.TaskAssignment) error {
	if s.failUpdateTask {
		return errors.Join(domain.ErrStoreUnavailable, errDiskFull)
	}
	return s.Store.UpdateTaskAssignment(ctx, a)
}

// fixedClock returns a clock that advances one second per call.
func fixedClock(start time.Time) func() time.Time {
	now := start
	return func() time.Time {
		now = now.Add(time.Second)
		return now
	}
}

type mockEventBus struct {
	mock.Mock
}

func (m *mockEventBus) PublishInstanceStarted(ctx context.Context, e domain.InstanceStartedEvent) error {
	return m.Called(ctx, e).Error(0)
}

func (m *mockEventBus) PublishInstanceTerminated(ctx context.Context, e domain.InstanceTerminatedEvent) error {
	return m.Called(ctx, e).Error(0)
}

func (m *mockEventBus) PublishTaskClaimed(ctx context.Context, e domain.TaskClaimedEvent) error {
	return m.Called(ctx, e).Error(0)
}

func (m *mockEventBus) PublishTaskCompleted(ctx context.Context, e domain.TaskCompletedEvent) error {
	return m.Called(ctx, e).Error(0)
}

func (m *mockEventBus) SubscribeToInstanceEnded(ctx context.Context) (<-chan domain.InstanceEndedEvent, error) {
	args := m.Called(ctx)
	ch, _ := args.Get(0).(<-chan domain.InstanceEndedEvent)
	return ch, args.Error(1)
}

type mockStatusCache struct {
	mock.Mock
}

func (m *mockStatusCache) GetHistoric(ctx context.Context, instanceID string) (*domain.HistoricStatus, bool, error) {
	args := m.Called(ctx, instanceID)
	out, _ := args.Get(0).(*domain.HistoricStatus)
	return out, args.Bool(1), args.Error(2)
}

func (m *mockStatusCache) PutHistoric(ctx context.Context, status domain.HistoricStatus, ttl time.Duration) error {
	return m.Called(ctx, status, ttl).Error(0)
}
