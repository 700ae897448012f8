package ports

import (
	"context"
	"time"

	"go-procflow/internal/domain"
)

// EngineGateway is the external workflow engine. Records the engine does not
// know come back as domain.ErrNotFound; transport failures as
// domain.ErrEngineUnavailable.
type EngineGateway interface {
	// Start without a business key. Not equivalent to passing an empty key
	// to StartInstanceByKeyWithBusinessKey.
	StartInstanceByKey(ctx context.Context, key string, variables map[string]any) (*domain.ProcessInstance, error)
	StartInstanceByKeyWithBusinessKey(ctx context.Context, key, businessKey string, variables map[string]any) (*domain.ProcessInstance, error)

	// Live store
	GetLiveInstance(ctx context.Context, instanceID string) (*domain.ProcessInstance, error)
	GetLiveVariables(ctx context.Context, instanceID string) (map[string]any, error)
	ListActiveInstances(ctx context.Context, definitionID string) ([]domain.ProcessInstance, error)
	CountActiveInstances(ctx context.Context, definitionID string) (int64, error)
	DeleteInstance(ctx context.Context, instanceID, reason string) error

	// Historic store
	GetHistoricInstance(ctx context.Context, instanceID string) (*domain.HistoricProcessInstance, error)
	ListHistoricTasks(ctx context.Context, instanceID string) ([]domain.HistoricTask, error)

	// Latest version of every definition, ordered by name ascending.
	ListLatestDefinitions(ctx context.Context) ([]domain.ProcessDefinition, error)
	GetDefinitionXML(ctx context.Context, definitionID string) (string, error)

	// Tasks. Both listings are ordered by creation time descending.
	ListTasksByAssignee(ctx context.Context, userID string) ([]domain.Task, error)
	ListTasksByCandidate(ctx context.Context, userID string) ([]domain.Task, error)
	GetTask(ctx context.Context, taskID string) (*domain.Task, error)
	GetTaskVariables(ctx context.Context, taskID string) (map[string]any, error)
	ClaimTask(ctx context.Context, taskID, userID string) error
	DelegateTask(ctx context.Context, taskID, userID string) error
	AddComment(ctx context.Context, taskID, instanceID, text string) error
	CompleteTask(ctx context.Context, taskID string) error
	CompleteTaskWithVariables(ctx context.Context, taskID string, variables map[string]any) error
}

// WorkflowInstanceRepository represents the workflow shadow row operations
type WorkflowInstanceRepository interface {
	// Insert a new row. Re-inserting a row with an ExternalInstanceID that is
	// already tracked writes nothing and overwrites *instance with the stored
	// row, so the caller holds the real ID and Version.
	InsertWorkflowInstance(ctx context.Context, instance *domain.WorkflowInstance) error

	// Compare-and-swap on Version. On success the row's Version is bumped;
	// a stale Version yields domain.ErrVersionConflict.
	UpdateWorkflowInstance(ctx context.Context, instance *domain.WorkflowInstance) error

	// All rows, oldest start first.
	ListAllWorkflowInstances(ctx context.Context) ([]domain.WorkflowInstance, error)

	FindWorkflowInstanceByExternalID(ctx context.Context, externalID string) (*domain.WorkflowInstance, error)
	FindWorkflowInstancesByBusinessKey(ctx context.Context, businessKey string) ([]domain.WorkflowInstance, error)
}

// TaskAssignmentRepository represents the task shadow row operations
type TaskAssignmentRepository interface {
	InsertTaskAssignment(ctx context.Context, assignment *domain.TaskAssignment) error

	// Compare-and-swap on Version, same contract as UpdateWorkflowInstance.
	UpdateTaskAssignment(ctx context.Context, assignment *domain.TaskAssignment) error

	// Rows ordered by creation time, oldest first.
	FindTaskAssignmentsByAssigneeAndStatus(ctx context.Context, assignee string, status domain.TaskStatus) ([]domain.TaskAssignment, error)
}

// ShadowStore is the local mirror of engine lifecycle facts.
type ShadowStore interface {
	WorkflowInstanceRepository
	TaskAssignmentRepository
}

// EventBus represents the event bus operations
type EventBus interface {
	PublishInstanceStarted(ctx context.Context, event domain.InstanceStartedEvent) error
	PublishInstanceTerminated(ctx context.Context, event domain.InstanceTerminatedEvent) error
	PublishTaskClaimed(ctx context.Context, event domain.TaskClaimedEvent) error
	PublishTaskCompleted(ctx context.Context, event domain.TaskCompletedEvent) error

	// Subscribe to engine-side end events (Used by Coordinator)
	SubscribeToInstanceEnded(ctx context.Context) (<-chan domain.InstanceEndedEvent, error)
}

// StatusCache holds historic statuses, which never change once written.
type StatusCache interface {
	GetHistoric(ctx context.Context, instanceID string) (*domain.HistoricStatus, bool, error)
	PutHistoric(ctx context.Context, status domain.HistoricStatus, ttl time.Duration) error
}
