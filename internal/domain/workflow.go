package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type WorkflowStatus string

const (
	WorkflowActive     WorkflowStatus = "ACTIVE"
	WorkflowCompleted  WorkflowStatus = "COMPLETED"
	WorkflowSuspended  WorkflowStatus = "SUSPENDED"
	WorkflowTerminated WorkflowStatus = "TERMINATED"
)

// WorkflowInstance is the local shadow of an engine process instance.
// The engine stays authoritative; this row is allowed to drift.
type WorkflowInstance struct {
	ID                   uuid.UUID `gorm:"type:uuid;primary_key;"`
	ExternalInstanceID   string    `gorm:"type:varchar(64);uniqueIndex;not null"`
	ProcessDefinitionKey string    `gorm:"type:varchar(255);index;not null"`
	BusinessKey          *string   `gorm:"type:varchar(255);index"`

	// State
	Status    WorkflowStatus `gorm:"type:varchar(20);index;not null;default:'ACTIVE'"`
	StartedBy string         `gorm:"type:varchar(255);not null"`
	Variables datatypes.JSON `gorm:"type:jsonb"`
	Version   int            `gorm:"not null;default:1"`

	// Audit
	StartedAt   time.Time  `gorm:"not null;<-:create"`
	CompletedAt *time.Time
}

// --- FACTORY ---
func NewWorkflowInstance(externalID, definitionKey string, businessKey *string, startedBy string, now time.Time) *WorkflowInstance {
	return &WorkflowInstance{
		ExternalInstanceID:   externalID,
		ProcessDefinitionKey: definitionKey,
		BusinessKey:          businessKey,
		Status:               WorkflowActive,
		StartedBy:            ResolvePrincipal(startedBy),
		Version:              1,
		StartedAt:            now,
	}
}

// --- METHODS ---
func (w *WorkflowInstance) IsFinished() bool {
	return w.Status == WorkflowCompleted || w.Status == WorkflowTerminated
}

// Terminate moves an unfinished row to TERMINATED. It reports false when the
// row was already terminal, so re-applying after a crash changes nothing.
func (w *WorkflowInstance) Terminate(now time.Time) bool {
	return w.finish(WorkflowTerminated, now)
}

// Complete records an engine-driven normal end.
func (w *WorkflowInstance) Complete(now time.Time) bool {
	return w.finish(WorkflowCompleted, now)
}

func (w *WorkflowInstance) finish(status WorkflowStatus, now time.Time) bool {
	if w.IsFinished() {
		return false
	}
	w.Status = status
	w.CompletedAt = &now
	return true
}

// NormalizeBusinessKey returns nil for absent or all-whitespace keys.
func NormalizeBusinessKey(key string) *string {
	if strings.TrimSpace(key) == "" {
		return nil
	}
	return &key
}

func (w *WorkflowInstance) BusinessKeyValue() string {
	if w.BusinessKey == nil {
		return ""
	}
	return *w.BusinessKey
}
