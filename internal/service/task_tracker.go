package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go-procflow/internal/core/ports"
	"go-procflow/internal/domain"

	"go.uber.org/zap"
)

type CompleteRequest struct {
	TaskID    string
	UserID    string
	Variables map[string]any // empty uses the no-variables completion
	Comment   string         // blank is not recorded
}

type TaskLifecycleTracker interface {
	// ListUserTasks returns tasks assigned to userID followed by tasks
	// userID may claim. A task in both sets appears once, as claimed.
	ListUserTasks(ctx context.Context, userID string) ([]domain.TaskView, error)

	GetTaskDetails(ctx context.Context, taskID string) (*domain.TaskDetails, error)

	// Claim appends a CLAIMED shadow row on every successful engine claim.
	Claim(ctx context.Context, taskID, userID string) error

	Complete(ctx context.Context, req CompleteRequest) error
	Delegate(ctx context.Context, taskID, fromUserID, toUserID string) error
	TaskHistory(ctx context.Context, instanceID string) ([]domain.HistoricTask, error)
}

type taskLifecycleTracker struct {
	engine ports.EngineGateway
	store  ports.TaskAssignmentRepository
	options
}

func NewTaskLifecycleTracker(engine ports.EngineGateway, store ports.TaskAssignmentRepository, opts ...Option) TaskLifecycleTracker {
	return &taskLifecycleTracker{
		engine:  engine,
		store:   store,
		options: buildOptions(opts),
	}
}

func (t *taskLifecycleTracker) ListUserTasks(ctx context.Context, userID string) ([]domain.TaskView, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("procflow/service: list tasks: %w: user id is required", domain.ErrInvalidInput)
	}

	assigned, err := t.engine.ListTasksByAssignee(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("procflow/service: list tasks assigned to %s: %w", userID, err)
	}
	candidate, err := t.engine.ListTasksByCandidate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("procflow/service: list candidate tasks of %s: %w", userID, err)
	}

	seen := make(map[string]struct{}, len(assigned)+len(candidate))
	result := make([]domain.TaskView, 0, len(assigned)+len(candidate))
	add := func(tasks []domain.Task, claimed bool) {
		for _, task := range tasks {
			if _, dup := seen[task.ID]; dup {
				continue
			}
			seen[task.ID] = struct{}{}
			result = append(result, domain.TaskView{Task: task, IsClaimed: claimed})
		}
	}

	// Assigned first so it wins over the candidate view.
	add(assigned, true)
	add(candidate, false)
	return result, nil
}

func (t *taskLifecycleTracker) GetTaskDetails(ctx context.Context, taskID string) (*domain.TaskDetails, error) {
	if strings.TrimSpace(taskID) == "" {
		return nil, fmt.Errorf("procflow/service: task details: %w: task id is required", domain.ErrInvalidInput)
	}

	task, err := t.engine.GetTask(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("procflow/service: task %s: %w", taskID, err)
	}
	vars, err := t.engine.GetTaskVariables(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("procflow/service: task %s variables: %w", taskID, err)
	}
	if vars == nil {
		vars = map[string]any{}
	}

	return &domain.TaskDetails{
		TaskView:  domain.TaskView{Task: *task, IsClaimed: task.Assignee != ""},
		Variables: vars,
	}, nil
}

func (t *taskLifecycleTracker) Claim(ctx context.Context, taskID, userID string) error {
	if strings.TrimSpace(taskID) == "" || strings.TrimSpace(userID) == "" {
		return fmt.Errorf("procflow/service: claim: %w: task id and user id are required", domain.ErrInvalidInput)
	}

	if err := t.engine.ClaimTask(ctx, taskID, userID); err != nil {
		t.metrics.RecordClaim("engine_error")
		return fmt.Errorf("procflow/service: claim %s for %s: %w", taskID, userID, err)
	}

	// The claim stands in the engine from here on.
	assignment, err := t.trackClaim(ctx, taskID, userID)
	if err != nil {
		t.logger.Warn("task claimed but not tracked",
			zap.String("task_id", taskID),
			zap.String("assignee", userID),
			zap.Error(err))
		t.metrics.RecordClaim("tracking_degraded")
		t.metrics.RecordTrackingDegraded("claim")
		return fmt.Errorf("procflow/service: track claim of %s: %w: %w", taskID, domain.ErrTrackingDegraded, err)
	}

	t.metrics.RecordClaim("ok")
	t.logger.Info("task claimed", zap.String("task_id", taskID), zap.String("assignee", userID))

	t.publish("task claimed", func(bus ports.EventBus) error {
		return bus.PublishTaskClaimed(ctx, domain.TaskClaimedEvent{
			TaskID:            taskID,
			ProcessInstanceID: assignment.ProcessInstanceID,
			Assignee:          userID,
			At:                assignment.CreatedAt,
		})
	})
	return nil
}

func (t *taskLifecycleTracker) trackClaim(ctx context.Context, taskID, userID string) (*domain.TaskAssignment, error) {
	task, err := t.engine.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	assignment := domain.NewTaskAssignment(*task, userID, t.now())
	if err := t.store.InsertTaskAssignment(ctx, assignment); err != nil {
		return nil, err
	}
	return assignment, nil
}

func (t *taskLifecycleTracker) Complete(ctx context.Context, req CompleteRequest) error {
	if strings.TrimSpace(req.TaskID) == "" || strings.TrimSpace(req.UserID) == "" {
		return fmt.Errorf("procflow/service: complete: %w: task id and user id are required", domain.ErrInvalidInput)
	}

	task, err := t.engine.GetTask(ctx, req.TaskID)
	if err != nil {
		t.metrics.RecordTaskCompletion("engine_error")
		return fmt.Errorf("procflow/service: complete %s: %w", req.TaskID, err)
	}

	// Comment and completion are two engine calls; a failure in the second
	// leaves the comment in place.
	if strings.TrimSpace(req.Comment) != "" {
		if err := t.engine.AddComment(ctx, req.TaskID, task.ProcessInstanceID, req.Comment); err != nil {
			t.metrics.RecordTaskCompletion("engine_error")
			return fmt.Errorf("procflow/service: comment on %s: %w", req.TaskID, err)
		}
	}

	if len(req.Variables) > 0 {
		err = t.engine.CompleteTaskWithVariables(ctx, req.TaskID, req.Variables)
	} else {
		err = t.engine.CompleteTask(ctx, req.TaskID)
	}
	if err != nil {
		t.metrics.RecordTaskCompletion("engine_error")
		return fmt.Errorf("procflow/service: complete %s: %w", req.TaskID, err)
	}

	if err := t.reconcileCompletion(ctx, req.TaskID, req.UserID); err != nil {
		t.logger.Warn("task completed but shadow row not updated",
			zap.String("task_id", req.TaskID),
			zap.String("assignee", req.UserID),
			zap.Error(err))
		t.metrics.RecordTaskCompletion("tracking_degraded")
		t.metrics.RecordTrackingDegraded("complete")
		return fmt.Errorf("procflow/service: track completion of %s: %w: %w", req.TaskID, domain.ErrTrackingDegraded, err)
	}

	t.metrics.RecordTaskCompletion("ok")
	t.logger.Info("task completed", zap.String("task_id", req.TaskID), zap.String("user_id", req.UserID))

	t.publish("task completed", func(bus ports.EventBus) error {
		return bus.PublishTaskCompleted(ctx, domain.TaskCompletedEvent{
			TaskID:            req.TaskID,
			ProcessInstanceID: task.ProcessInstanceID,
			CompletedBy:       req.UserID,
			At:                t.now(),
		})
	})
	return nil
}

// reconcileCompletion moves the newest CLAIMED row for (task, user) to
// COMPLETED. A task completed without a tracked claim leaves the store alone.
func (t *taskLifecycleTracker) reconcileCompletion(ctx context.Context, taskID, userID string) error {
	claimed, err := t.store.FindTaskAssignmentsByAssigneeAndStatus(ctx, userID, domain.TaskClaimed)
	if err != nil {
		return err
	}

	var match *domain.TaskAssignment
	for i := range claimed {
		if claimed[i].TaskID != taskID {
			continue
		}
		if match == nil || !claimed[i].CreatedAt.Before(match.CreatedAt) {
			match = &claimed[i]
		}
	}
	if match == nil {
		t.logger.Debug("no claimed shadow row for completed task", zap.String("task_id", taskID), zap.String("user_id", userID))
		return nil
	}

	if err := match.MarkCompleted(); err != nil {
		return err
	}
	return t.store.UpdateTaskAssignment(ctx, match)
}

func (t *taskLifecycleTracker) Delegate(ctx context.Context, taskID, fromUserID, toUserID string) error {
	if strings.TrimSpace(taskID) == "" || strings.TrimSpace(toUserID) == "" {
		return fmt.Errorf("procflow/service: delegate: %w: task id and target user are required", domain.ErrInvalidInput)
	}
	if err := t.engine.DelegateTask(ctx, taskID, toUserID); err != nil {
		return fmt.Errorf("procflow/service: delegate %s to %s: %w", taskID, toUserID, err)
	}
	t.logger.Info("task delegated",
		zap.String("task_id", taskID),
		zap.String("from", fromUserID),
		zap.String("to", toUserID))
	return nil
}

func (t *taskLifecycleTracker) TaskHistory(ctx context.Context, instanceID string) ([]domain.HistoricTask, error) {
	if strings.TrimSpace(instanceID) == "" {
		return nil, fmt.Errorf("procflow/service: task history: %w: process instance id is required", domain.ErrInvalidInput)
	}
	tasks, err := t.engine.ListHistoricTasks(ctx, instanceID)
	if errors.Is(err, domain.ErrNotFound) {
		return []domain.HistoricTask{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("procflow/service: task history of %s: %w", instanceID, err)
	}
	return tasks, nil
}
