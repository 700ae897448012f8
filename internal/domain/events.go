package domain

import "time"

// InstanceStartedEvent is published after a successful start.
type InstanceStartedEvent struct {
	ProcessInstanceID    string    `json:"process_instance_id"`
	ProcessDefinitionKey string    `json:"process_definition_key"`
	BusinessKey          string    `json:"business_key,omitempty"`
	StartedBy            string    `json:"started_by"`
	At                   time.Time `json:"at"`
}

type InstanceTerminatedEvent struct {
	ProcessInstanceID string    `json:"process_instance_id"`
	Reason            string    `json:"reason"`
	At                time.Time `json:"at"`
}

// InstanceEndedEvent is emitted by the engine side when an instance reaches
// its end event. The coordinator consumes it.
type InstanceEndedEvent struct {
	ProcessInstanceID string    `json:"process_instance_id"`
	At                time.Time `json:"at"`
}

type TaskClaimedEvent struct {
	TaskID            string    `json:"task_id"`
	ProcessInstanceID string    `json:"process_instance_id"`
	Assignee          string    `json:"assignee"`
	At                time.Time `json:"at"`
}

type TaskCompletedEvent struct {
	TaskID            string    `json:"task_id"`
	ProcessInstanceID string    `json:"process_instance_id"`
	CompletedBy       string    `json:"completed_by"`
	At                time.Time `json:"at"`
}
