package domain

import "time"

// Views of engine-owned records. Field names follow the engine REST API.

type ProcessInstance struct {
	ID                  string `json:"id"`
	ProcessDefinitionID string `json:"definitionId"`
	BusinessKey         string `json:"businessKey"`
	Suspended           bool   `json:"suspended"`
	Ended               bool   `json:"ended"`
}

type HistoricProcessInstance struct {
	ID                  string     `json:"id"`
	ProcessDefinitionID string     `json:"processDefinitionId"`
	BusinessKey         string     `json:"businessKey"`
	StartTime           time.Time  `json:"startTime"`
	EndTime             *time.Time `json:"endTime"`
	DurationInMillis    *int64     `json:"durationInMillis"`
	DeleteReason        string     `json:"deleteReason"`
}

type ProcessDefinition struct {
	ID           string `json:"id"`
	Key          string `json:"key"`
	Name         string `json:"name"`
	Version      int    `json:"version"`
	DeploymentID string `json:"deploymentId"`
	Description  string `json:"description"`
	Suspended    bool   `json:"suspended"`
}

// DefinitionSummary is a latest-version definition with its active instance count.
type DefinitionSummary struct {
	ProcessDefinition
	ActiveInstanceCount int64 `json:"activeInstanceCount"`
}

// ActiveInstance is a live instance together with its current variables.
type ActiveInstance struct {
	ProcessInstance
	Variables map[string]any `json:"variables"`
}

type Task struct {
	ID                  string     `json:"id"`
	Name                string     `json:"name"`
	Description         string     `json:"description"`
	Assignee            string     `json:"assignee"`
	ProcessInstanceID   string     `json:"processInstanceId"`
	ProcessDefinitionID string     `json:"processDefinitionId"`
	Created             time.Time  `json:"created"`
	DueDate             *time.Time `json:"due"`
	Priority            int        `json:"priority"`
}

type HistoricTask struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Assignee         string     `json:"assignee"`
	StartTime        time.Time  `json:"startTime"`
	EndTime          *time.Time `json:"endTime"`
	DurationInMillis *int64     `json:"duration"`
	DeleteReason     string     `json:"deleteReason"`
}

// TaskView is a task as shown in a user's inbox.
type TaskView struct {
	Task
	IsClaimed bool `json:"isClaimed"`
}

type TaskDetails struct {
	TaskView
	Variables map[string]any `json:"variables"`
}
