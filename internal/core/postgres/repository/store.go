package repository

import (
	"fmt"

	"go-procflow/internal/core/ports"
	"go-procflow/internal/domain"

	"gorm.io/gorm"
)

type shadowStore struct {
	*workflowRepository
	*taskRepository
}

// NewShadowStore combines both repositories over one connection.
func NewShadowStore(db *gorm.DB) ports.ShadowStore {
	return &shadowStore{
		workflowRepository: &workflowRepository{db: db},
		taskRepository:     &taskRepository{db: db},
	}
}

// AutoMigrate creates or updates the shadow tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&domain.WorkflowInstance{}, &domain.TaskAssignment{}); err != nil {
		return fmt.Errorf("procflow/postgres: migrate: %w", err)
	}
	return nil
}

func storeErr(op string, err error) error {
	return fmt.Errorf("procflow/postgres: %s: %w: %w", op, domain.ErrStoreUnavailable, err)
}
