package dto

import (
	"encoding/json"
	"time"

	"go-procflow/internal/domain"

	"github.com/google/uuid"
)

const TrackingDegraded = "degraded"

type ErrorResponse struct {
	Error string `json:"error"`
}

// StartProcessResponse carries the engine id. Tracking is "degraded" when
// the engine started the instance but the shadow row was not written.
type StartProcessResponse struct {
	ID       string `json:"id"`
	Tracking string `json:"tracking,omitempty"`
}

type ActionResponse struct {
	Status   string `json:"status"`
	Tracking string `json:"tracking,omitempty"`
}

// StatusResponse is the wire shape of a resolved status. Live fields and
// historic fields are mutually exclusive.
type StatusResponse struct {
	ProcessInstanceID   string `json:"processInstanceId"`
	ProcessDefinitionID string `json:"processDefinitionId"`
	BusinessKey         string `json:"businessKey,omitempty"`
	IsEnded             bool   `json:"isEnded"`

	IsSuspended *bool          `json:"isSuspended,omitempty"`
	Variables   map[string]any `json:"variables,omitempty"`

	StartTime        *time.Time `json:"startTime,omitempty"`
	EndTime          *time.Time `json:"endTime,omitempty"`
	DurationInMillis *int64     `json:"durationInMillis,omitempty"`
	DeleteReason     string     `json:"deleteReason,omitempty"`
}

func NewStatusResponse(status domain.ResolvedStatus) StatusResponse {
	switch s := status.(type) {
	case domain.LiveStatus:
		suspended := s.Suspended
		return StatusResponse{
			ProcessInstanceID:   s.ProcessInstanceID,
			ProcessDefinitionID: s.ProcessDefinitionID,
			BusinessKey:         s.BusinessKey,
			IsSuspended:         &suspended,
			Variables:           s.Variables,
		}
	case domain.HistoricStatus:
		start := s.StartTime
		return StatusResponse{
			ProcessInstanceID:   s.ProcessInstanceID,
			ProcessDefinitionID: s.ProcessDefinitionID,
			BusinessKey:         s.BusinessKey,
			IsEnded:             true,
			StartTime:           &start,
			EndTime:             s.EndTime,
			DurationInMillis:    s.DurationInMillis,
			DeleteReason:        s.DeleteReason,
		}
	}
	return StatusResponse{ProcessInstanceID: status.InstanceID(), IsEnded: status.Ended()}
}

// TrackedInstanceResponse is a shadow row as shown to operators.
type TrackedInstanceResponse struct {
	ID                   uuid.UUID       `json:"id"`
	ExternalInstanceID   string          `json:"externalInstanceId"`
	ProcessDefinitionKey string          `json:"processDefinitionKey"`
	BusinessKey          *string         `json:"businessKey"`
	Status               string          `json:"status"`
	StartedBy            string          `json:"startedBy"`
	Variables            json.RawMessage `json:"variables,omitempty"`
	Version              int             `json:"version"`
	StartedAt            time.Time       `json:"startedAt"`
	CompletedAt          *time.Time      `json:"completedAt"`
}

func NewTrackedInstances(rows []domain.WorkflowInstance) []TrackedInstanceResponse {
	out := make([]TrackedInstanceResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, TrackedInstanceResponse{
			ID:                   row.ID,
			ExternalInstanceID:   row.ExternalInstanceID,
			ProcessDefinitionKey: row.ProcessDefinitionKey,
			BusinessKey:          row.BusinessKey,
			Status:               string(row.Status),
			StartedBy:            row.StartedBy,
			Variables:            json.RawMessage(row.Variables),
			Version:              row.Version,
			StartedAt:            row.StartedAt,
			CompletedAt:          row.CompletedAt,
		})
	}
	return out
}
