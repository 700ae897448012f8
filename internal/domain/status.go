package domain

import "time"

// ResolvedStatus is either a LiveStatus or a HistoricStatus. It is a query
// result only and never persisted.
type ResolvedStatus interface {
	InstanceID() string
	Ended() bool
}

type LiveStatus struct {
	ProcessInstanceID   string         `json:"processInstanceId"`
	ProcessDefinitionID string         `json:"processDefinitionId"`
	BusinessKey         string         `json:"businessKey,omitempty"`
	Suspended           bool           `json:"isSuspended"`
	Variables           map[string]any `json:"variables"`
}

func (s LiveStatus) InstanceID() string { return s.ProcessInstanceID }
func (s LiveStatus) Ended() bool        { return false }

type HistoricStatus struct {
	ProcessInstanceID   string     `json:"processInstanceId"`
	ProcessDefinitionID string     `json:"processDefinitionId"`
	BusinessKey         string     `json:"businessKey,omitempty"`
	StartTime           time.Time  `json:"startTime"`
	EndTime             *time.Time `json:"endTime,omitempty"`
	DurationInMillis    *int64     `json:"durationInMillis,omitempty"`
	DeleteReason        string     `json:"deleteReason,omitempty"`
}

func (s HistoricStatus) InstanceID() string { return s.ProcessInstanceID }
func (s HistoricStatus) Ended() bool        { return true }
