package repository

import (
	"context"

	"go-procflow/internal/core/ports"
	"go-procflow/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type taskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new instance of TaskAssignmentRepository
func NewTaskRepository(db *gorm.DB) ports.TaskAssignmentRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) InsertTaskAssignment(ctx context.Context, assignment *domain.TaskAssignment) error {
	if assignment.ID == uuid.Nil {
		assignment.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(assignment).Error; err != nil {
		return storeErr("insert task assignment", err)
	}
	return nil
}

func (r *taskRepository) UpdateTaskAssignment(ctx context.Context, assignment *domain.TaskAssignment) error {
	result := r.db.WithContext(ctx).
		Model(&domain.TaskAssignment{}).
		Where("id = ? AND version = ?", assignment.ID, assignment.Version).
		Updates(map[string]interface{}{
			"status":  assignment.Status,
			"version": assignment.Version + 1,
		})

	if result.Error != nil {
		return storeErr("update task assignment", result.Error)
	}

	if result.RowsAffected == 0 {
		return domain.ErrVersionConflict // Row changed since it was read
	}

	assignment.Version++
	return nil
}

func (r *taskRepository) FindTaskAssignmentsByAssigneeAndStatus(ctx context.Context, assignee string, status domain.TaskStatus) ([]domain.TaskAssignment, error) {
	var assignments []domain.TaskAssignment
	err := r.db.WithContext(ctx).
		Where("assignee = ? AND status = ?", assignee, status).
		Order("created_at ASC").
		Find(&assignments).Error
	if err != nil {
		return nil, storeErr("find task assignments", err)
	}
	return assignments, nil
}
