package camunda

import (
	"strings"
	"time"

	"go-procflow/internal/domain"
)

// engineTimeLayout is the engine's default date format, e.g.
// 2026-03-01T09:00:00.000+0000.
const engineTimeLayout = "2006-01-02T15:04:05.000-0700"

// engineTime accepts the engine format and RFC 3339.
type engineTime struct {
	time.Time
}

func (t *engineTime) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		return nil
	}
	parsed, err := time.Parse(engineTimeLayout, s)
	if err != nil {
		if parsed, err = time.Parse(time.RFC3339Nano, s); err != nil {
			return err
		}
	}
	t.Time = parsed
	return nil
}

func (t *engineTime) ptr() *time.Time {
	if t == nil || t.IsZero() {
		return nil
	}
	v := t.Time
	return &v
}

type startRequest struct {
	Variables   variableMap `json:"variables"`
	BusinessKey string      `json:"businessKey,omitempty"`
}

type userRequest struct {
	UserID string `json:"userId"`
}

type commentRequest struct {
	Message           string `json:"message"`
	ProcessInstanceID string `json:"processInstanceId,omitempty"`
}

type completeRequest struct {
	Variables variableMap `json:"variables,omitempty"`
}

type definitionXMLResponse struct {
	ID        string `json:"id"`
	BPMN20XML string `json:"bpmn20Xml"`
}

type countResponse struct {
	Count int64 `json:"count"`
}

type historicInstanceDTO struct {
	ID                  string      `json:"id"`
	ProcessDefinitionID string      `json:"processDefinitionId"`
	BusinessKey         string      `json:"businessKey"`
	StartTime           engineTime  `json:"startTime"`
	EndTime             *engineTime `json:"endTime"`
	DurationInMillis    *int64      `json:"durationInMillis"`
	DeleteReason        string      `json:"deleteReason"`
}

func (d historicInstanceDTO) toDomain() domain.HistoricProcessInstance {
	return domain.HistoricProcessInstance{
		ID:                  d.ID,
		ProcessDefinitionID: d.ProcessDefinitionID,
		BusinessKey:         d.BusinessKey,
		StartTime:           d.StartTime.Time,
		EndTime:             d.EndTime.ptr(),
		DurationInMillis:    d.DurationInMillis,
		DeleteReason:        d.DeleteReason,
	}
}

type taskDTO struct {
	ID                  string      `json:"id"`
	Name                string      `json:"name"`
	Description         string      `json:"description"`
	Assignee            string      `json:"assignee"`
	ProcessInstanceID   string      `json:"processInstanceId"`
	ProcessDefinitionID string      `json:"processDefinitionId"`
	Created             engineTime  `json:"created"`
	Due                 *engineTime `json:"due"`
	Priority            int         `json:"priority"`
}

func (d taskDTO) toDomain() domain.Task {
	return domain.Task{
		ID:                  d.ID,
		Name:                d.Name,
		Description:         d.Description,
		Assignee:            d.Assignee,
		ProcessInstanceID:   d.ProcessInstanceID,
		ProcessDefinitionID: d.ProcessDefinitionID,
		Created:             d.Created.Time,
		DueDate:             d.Due.ptr(),
		Priority:            d.Priority,
	}
}

type historicTaskDTO struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Assignee     string      `json:"assignee"`
	StartTime    engineTime  `json:"startTime"`
	EndTime      *engineTime `json:"endTime"`
	Duration     *int64      `json:"duration"`
	DeleteReason string      `json:"deleteReason"`
}

func (d historicTaskDTO) toDomain() domain.HistoricTask {
	return domain.HistoricTask{
		ID:               d.ID,
		Name:             d.Name,
		Assignee:         d.Assignee,
		StartTime:        d.StartTime.Time,
		EndTime:          d.EndTime.ptr(),
		DurationInMillis: d.Duration,
		DeleteReason:     d.DeleteReason,
	}
}
