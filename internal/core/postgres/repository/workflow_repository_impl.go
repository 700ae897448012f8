package repository

import (
	"context"
	"errors"

	"go-procflow/internal/core/ports"
	"go-procflow/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type workflowRepository struct {
	db *gorm.DB
}

// NewWorkflowRepository creates a new instance of WorkflowInstanceRepository
func NewWorkflowRepository(db *gorm.DB) ports.WorkflowInstanceRepository {
	return &workflowRepository{db: db}
}

// InsertWorkflowInstance relies on the unique external_instance_id index so
// that replaying a start after a crash does not create a second row. On a
// replay the caller's instance is overwritten with the stored row.
func (r *workflowRepository) InsertWorkflowInstance(ctx context.Context, instance *domain.WorkflowInstance) error {
	if instance.ID == uuid.Nil {
		instance.ID = uuid.New()
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "external_instance_id"}},
			DoNothing: true,
		}).
		Create(instance)
	if result.Error != nil {
		return storeErr("insert workflow instance", result.Error)
	}
	if result.RowsAffected > 0 {
		return nil
	}

	stored, err := r.FindWorkflowInstanceByExternalID(ctx, instance.ExternalInstanceID)
	if err != nil {
		return err
	}
	if stored != nil && stored.ID != uuid.Nil {
		*instance = *stored
	}
	return nil
}

// UpdateWorkflowInstance writes only the mutable lifecycle columns. The
// version check in the WHERE clause turns a lost update into ErrVersionConflict.
func (r *workflowRepository) UpdateWorkflowInstance(ctx context.Context, instance *domain.WorkflowInstance) error {
	result := r.db.WithContext(ctx).
		Model(&domain.WorkflowInstance{}).
		Where("id = ? AND version = ?", instance.ID, instance.Version).
		Updates(map[string]interface{}{
			"status":       instance.Status,
			"completed_at": instance.CompletedAt,
			"version":      instance.Version + 1,
		})

	if result.Error != nil {
		return storeErr("update workflow instance", result.Error)
	}

	if result.RowsAffected == 0 {
		return domain.ErrVersionConflict
	}

	instance.Version++
	return nil
}

func (r *workflowRepository) ListAllWorkflowInstances(ctx context.Context) ([]domain.WorkflowInstance, error) {
	var instances []domain.WorkflowInstance
	err := r.db.WithContext(ctx).Order("started_at ASC").Find(&instances).Error
	if err != nil {
		return nil, storeErr("list workflow instances", err)
	}
	return instances, nil
}

// FindWorkflowInstanceByExternalID returns nil when the instance is untracked.
func (r *workflowRepository) FindWorkflowInstanceByExternalID(ctx context.Context, externalID string) (*domain.WorkflowInstance, error) {
	var instance domain.WorkflowInstance
	err := r.db.WithContext(ctx).Where("external_instance_id = ?", externalID).First(&instance).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("find workflow instance", err)
	}
	return &instance, nil
}

func (r *workflowRepository) FindWorkflowInstancesByBusinessKey(ctx context.Context, businessKey string) ([]domain.WorkflowInstance, error) {
	var instances []domain.WorkflowInstance
	err := r.db.WithContext(ctx).
		Where("business_key = ?", businessKey).
		Order("started_at ASC").
		Find(&instances).Error
	if err != nil {
		return nil, storeErr("find workflow instances by business key", err)
	}
	return instances, nil
}
