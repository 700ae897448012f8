package camunda

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"go-procflow/internal/core/ports"
	"go-procflow/internal/domain"
)

var _ ports.EngineGateway = (*Client)(nil)

func (c *Client) StartInstanceByKey(ctx context.Context, key string, variables map[string]any) (*domain.ProcessInstance, error) {
	return c.start(ctx, key, "", variables)
}

func (c *Client) StartInstanceByKeyWithBusinessKey(ctx context.Context, key, businessKey string, variables map[string]any) (*domain.ProcessInstance, error) {
	return c.start(ctx, key, businessKey, variables)
}

func (c *Client) start(ctx context.Context, key, businessKey string, variables map[string]any) (*domain.ProcessInstance, error) {
	encoded, err := encodeVariables(variables)
	if err != nil {
		return nil, fmt.Errorf("procflow/camunda: start %s: %w: %w", key, domain.ErrInvalidInput, err)
	}

	var inst domain.ProcessInstance
	path := "/process-definition/key/" + pathEscape(key) + "/start"
	if err := c.do(ctx, http.MethodPost, path, nil, startRequest{Variables: encoded, BusinessKey: businessKey}, &inst); err != nil {
		return nil, err
	}
	return &inst, nil
}

func (c *Client) GetLiveInstance(ctx context.Context, instanceID string) (*domain.ProcessInstance, error) {
	var inst domain.ProcessInstance
	if err := c.do(ctx, http.MethodGet, "/process-instance/"+pathEscape(instanceID), nil, nil, &inst); err != nil {
		return nil, err
	}
	return &inst, nil
}

func (c *Client) GetLiveVariables(ctx context.Context, instanceID string) (map[string]any, error) {
	return c.variables(ctx, "/process-instance/"+pathEscape(instanceID)+"/variables")
}

func (c *Client) variables(ctx context.Context, path string) (map[string]any, error) {
	var vars variableMap
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &vars); err != nil {
		return nil, err
	}
	return decodeVariables(vars), nil
}

func (c *Client) ListActiveInstances(ctx context.Context, definitionID string) ([]domain.ProcessInstance, error) {
	var out []domain.ProcessInstance
	query := url.Values{"processDefinitionId": {definitionID}, "active": {"true"}}
	if err := c.do(ctx, http.MethodGet, "/process-instance", query, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CountActiveInstances(ctx context.Context, definitionID string) (int64, error) {
	var count countResponse
	query := url.Values{"processDefinitionId": {definitionID}, "active": {"true"}}
	if err := c.do(ctx, http.MethodGet, "/process-instance/count", query, nil, &count); err != nil {
		return 0, err
	}
	return count.Count, nil
}

// DeleteInstance removes a running instance. The single-instance REST delete
// has no reason parameter; the reason travels in the caller's event and logs.
func (c *Client) DeleteInstance(ctx context.Context, instanceID, reason string) error {
	query := url.Values{"failIfNotExists": {"true"}}
	return c.do(ctx, http.MethodDelete, "/process-instance/"+pathEscape(instanceID), query, nil, nil)
}

func (c *Client) GetHistoricInstance(ctx context.Context, instanceID string) (*domain.HistoricProcessInstance, error) {
	var dto historicInstanceDTO
	if err := c.do(ctx, http.MethodGet, "/history/process-instance/"+pathEscape(instanceID), nil, nil, &dto); err != nil {
		return nil, err
	}
	hist := dto.toDomain()
	return &hist, nil
}

func (c *Client) ListHistoricTasks(ctx context.Context, instanceID string) ([]domain.HistoricTask, error) {
	var dtos []historicTaskDTO
	query := url.Values{
		"processInstanceId": {instanceID},
		"sortBy":            {"endTime"},
		"sortOrder":         {"desc"},
	}
	if err := c.do(ctx, http.MethodGet, "/history/task", query, nil, &dtos); err != nil {
		return nil, err
	}
	out := make([]domain.HistoricTask, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (c *Client) ListLatestDefinitions(ctx context.Context) ([]domain.ProcessDefinition, error) {
	var out []domain.ProcessDefinition
	query := url.Values{
		"latestVersion": {"true"},
		"sortBy":        {"name"},
		"sortOrder":     {"asc"},
	}
	if err := c.do(ctx, http.MethodGet, "/process-definition", query, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetDefinitionXML returns the deployed BPMN 2.0 diagram of a definition.
func (c *Client) GetDefinitionXML(ctx context.Context, definitionID string) (string, error) {
	var out definitionXMLResponse
	if err := c.do(ctx, http.MethodGet, "/process-definition/"+pathEscape(definitionID)+"/xml", nil, nil, &out); err != nil {
		return "", err
	}
	return out.BPMN20XML, nil
}

func (c *Client) ListTasksByAssignee(ctx context.Context, userID string) ([]domain.Task, error) {
	return c.listTasks(ctx, url.Values{"assignee": {userID}})
}

func (c *Client) ListTasksByCandidate(ctx context.Context, userID string) ([]domain.Task, error) {
	return c.listTasks(ctx, url.Values{"candidateUser": {userID}})
}

func (c *Client) listTasks(ctx context.Context, query url.Values) ([]domain.Task, error) {
	query.Set("sortBy", "created")
	query.Set("sortOrder", "desc")

	var dtos []taskDTO
	if err := c.do(ctx, http.MethodGet, "/task", query, nil, &dtos); err != nil {
		return nil, err
	}
	out := make([]domain.Task, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (c *Client) GetTask(ctx context.Context, taskID string) (*domain.Task, error) {
	var dto taskDTO
	if err := c.do(ctx, http.MethodGet, "/task/"+pathEscape(taskID), nil, nil, &dto); err != nil {
		return nil, err
	}
	task := dto.toDomain()
	return &task, nil
}

func (c *Client) GetTaskVariables(ctx context.Context, taskID string) (map[string]any, error) {
	return c.variables(ctx, "/task/"+pathEscape(taskID)+"/variables")
}

func (c *Client) ClaimTask(ctx context.Context, taskID, userID string) error {
	return c.do(ctx, http.MethodPost, "/task/"+pathEscape(taskID)+"/claim", nil, userRequest{UserID: userID}, nil)
}

func (c *Client) DelegateTask(ctx context.Context, taskID, userID string) error {
	return c.do(ctx, http.MethodPost, "/task/"+pathEscape(taskID)+"/delegate", nil, userRequest{UserID: userID}, nil)
}

func (c *Client) AddComment(ctx context.Context, taskID, instanceID, text string) error {
	body := commentRequest{Message: text, ProcessInstanceID: instanceID}
	return c.do(ctx, http.MethodPost, "/task/"+pathEscape(taskID)+"/comment/create", nil, body, nil)
}

func (c *Client) CompleteTask(ctx context.Context, taskID string) error {
	return c.do(ctx, http.MethodPost, "/task/"+pathEscape(taskID)+"/complete", nil, completeRequest{}, nil)
}

func (c *Client) CompleteTaskWithVariables(ctx context.Context, taskID string, variables map[string]any) error {
	encoded, err := encodeVariables(variables)
	if err != nil {
		return fmt.Errorf("procflow/camunda: complete %s: %w: %w", taskID, domain.ErrInvalidInput, err)
	}
	return c.do(ctx, http.MethodPost, "/task/"+pathEscape(taskID)+"/complete", nil, completeRequest{Variables: encoded}, nil)
}
