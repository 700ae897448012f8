package dto

// StartProcessRequest is the body of POST /api/processes/:key/start.
// An empty body starts with no business key and no variables.
type StartProcessRequest struct {
	BusinessKey string         `json:"businessKey"`
	Variables   map[string]any `json:"variables"`
}

type CompleteTaskRequest struct {
	Variables map[string]any `json:"variables"`
	Comment   string         `json:"comment"`
}

type DelegateTaskRequest struct {
	UserID string `json:"userId" binding:"required"`
}
