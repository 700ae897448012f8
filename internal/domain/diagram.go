package domain

// DiagramChecks records which BPMN elements a process diagram declares.
type DiagramChecks struct {
	HasStartEvent bool `json:"hasStartEvent"`
	HasEndEvent   bool `json:"hasEndEvent"`
	HasTasks      bool `json:"hasTasks"`
}

// DefinitionValidation is the structural check of a deployed definition's
// diagram. A diagram is valid when it has both a start and an end event;
// tasks are reported but not required.
type DefinitionValidation struct {
	ProcessDefinitionID string        `json:"processDefinitionId"`
	ProcessName         string        `json:"processName"`
	Valid               bool          `json:"valid"`
	Checks              DiagramChecks `json:"checks"`
	Warnings            []string      `json:"warnings"`
}
