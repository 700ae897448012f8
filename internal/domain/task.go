package domain

import (
	"time"

	"github.com/google/uuid"
)

type TaskStatus string

const (
	TaskPending   TaskStatus = "PENDING"
	TaskClaimed   TaskStatus = "CLAIMED"
	TaskCompleted TaskStatus = "COMPLETED"
)

// TaskAssignment records one claim of an engine task. Claims are append-only:
// a task claimed twice has two rows.
type TaskAssignment struct {
	ID                uuid.UUID  `gorm:"type:uuid;primary_key;"`
	TaskID            string     `gorm:"type:varchar(64);index;not null"`
	ProcessInstanceID string     `gorm:"type:varchar(64);index;not null"`
	Assignee          string     `gorm:"type:varchar(255);index:idx_assignee_status;not null"`
	TaskName          string     `gorm:"type:varchar(255)"`
	DueDate           *time.Time
	Status            TaskStatus `gorm:"type:varchar(20);index:idx_assignee_status;not null;default:'CLAIMED'"`
	Version           int        `gorm:"not null;default:1"`

	CreatedAt time.Time `gorm:"not null;<-:create"`
}

func NewTaskAssignment(task Task, assignee string, now time.Time) *TaskAssignment {
	return &TaskAssignment{
		TaskID:            task.ID,
		ProcessInstanceID: task.ProcessInstanceID,
		Assignee:          assignee,
		TaskName:          task.Name,
		DueDate:           task.DueDate,
		Status:            TaskClaimed,
		Version:           1,
		CreatedAt:         now,
	}
}

// MarkCompleted is the only transition out of CLAIMED.
func (t *TaskAssignment) MarkCompleted() error {
	if t.Status != TaskClaimed {
		return ErrInvalidTransition
	}
	t.Status = TaskCompleted
	return nil
}
