package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go-procflow/internal/core/ports"
	"go-procflow/internal/domain"

	"go.uber.org/zap"
	"gorm.io/datatypes"
)

type StartRequest struct {
	ProcessDefinitionKey string
	BusinessKey          string // blank means none
	Variables            map[string]any
	Principal            string // blank resolves to "system"
}

type LifecycleTracker interface {
	// Start returns the engine instance id. When the engine start succeeded
	// but the shadow row could not be written, the id is returned together
	// with an error wrapping domain.ErrTrackingDegraded.
	Start(ctx context.Context, req StartRequest) (string, error)

	Terminate(ctx context.Context, instanceID, reason string) error

	// MarkCompleted applies an engine-side normal end to the shadow row.
	MarkCompleted(ctx context.Context, instanceID string) error

	ListDefinitions(ctx context.Context) ([]domain.DefinitionSummary, error)
	ListActiveInstances(ctx context.Context, definitionID string) ([]domain.ActiveInstance, error)

	// ListTracked returns every shadow row, or only those carrying
	// businessKey when it is not blank.
	ListTracked(ctx context.Context, businessKey string) ([]domain.WorkflowInstance, error)

	// ExportDiagram returns the BPMN 2.0 XML of a deployed definition.
	ExportDiagram(ctx context.Context, definitionID string) (string, error)

	// ValidateDefinition checks the structure of a deployed definition's
	// diagram. An unknown definition yields domain.ErrNotFound.
	ValidateDefinition(ctx context.Context, definitionID string) (*domain.DefinitionValidation, error)
}

type lifecycleTracker struct {
	engine ports.EngineGateway
	store  ports.WorkflowInstanceRepository
	options
}

func NewLifecycleTracker(engine ports.EngineGateway, store ports.WorkflowInstanceRepository, opts ...Option) LifecycleTracker {
	return &lifecycleTracker{
		engine:  engine,
		store:   store,
		options: buildOptions(opts),
	}
}

func (t *lifecycleTracker) Start(ctx context.Context, req StartRequest) (string, error) {
	key := strings.TrimSpace(req.ProcessDefinitionKey)
	if key == "" {
		return "", fmt.Errorf("procflow/service: start: %w: process definition key is required", domain.ErrInvalidInput)
	}

	variables := req.Variables
	if variables == nil {
		variables = map[string]any{}
	}

	// 1. ENGINE: the two start forms are distinct calls
	businessKey := domain.NormalizeBusinessKey(req.BusinessKey)
	var (
		instance *domain.ProcessInstance
		err      error
	)
	if businessKey != nil {
		instance, err = t.engine.StartInstanceByKeyWithBusinessKey(ctx, key, *businessKey, variables)
	} else {
		instance, err = t.engine.StartInstanceByKey(ctx, key, variables)
	}
	if err != nil {
		t.metrics.RecordStart("engine_error")
		return "", fmt.Errorf("procflow/service: start %s: %w", key, err)
	}

	// 2. TRACK: nothing was written locally if the engine failed
	startedBy := domain.ResolvePrincipal(req.Principal)
	row := domain.NewWorkflowInstance(instance.ID, key, businessKey, startedBy, t.now())
	if raw, err := json.Marshal(variables); err == nil {
		row.Variables = datatypes.JSON(raw)
	}

	if err := t.store.InsertWorkflowInstance(ctx, row); err != nil {
		t.logger.Warn("process started but not tracked",
			zap.String("process_instance_id", instance.ID),
			zap.String("process_definition_key", key),
			zap.Error(err))
		t.metrics.RecordStart("tracking_degraded")
		t.metrics.RecordTrackingDegraded("start")
		return instance.ID, fmt.Errorf("procflow/service: track start of %s: %w: %w", instance.ID, domain.ErrTrackingDegraded, err)
	}

	t.metrics.RecordStart("ok")
	t.logger.Info("process started",
		zap.String("process_instance_id", instance.ID),
		zap.String("process_definition_key", key),
		zap.String("started_by", startedBy))

	t.publish("instance started", func(bus ports.EventBus) error {
		return bus.PublishInstanceStarted(ctx, domain.InstanceStartedEvent{
			ProcessInstanceID:    instance.ID,
			ProcessDefinitionKey: key,
			BusinessKey:          row.BusinessKeyValue(),
			StartedBy:            startedBy,
			At:                   row.StartedAt,
		})
	})

	return instance.ID, nil
}

func (t *lifecycleTracker) Terminate(ctx context.Context, instanceID, reason string) error {
	if strings.TrimSpace(instanceID) == "" {
		return fmt.Errorf("procflow/service: terminate: %w: process instance id is required", domain.ErrInvalidInput)
	}

	// The engine delete is the side effect of record.
	if err := t.engine.DeleteInstance(ctx, instanceID, reason); err != nil {
		t.metrics.RecordTermination("engine_error")
		return fmt.Errorf("procflow/service: terminate %s: %w", instanceID, err)
	}

	if err := t.reconcileTermination(ctx, instanceID); err != nil {
		t.logger.Warn("process terminated but shadow row not updated",
			zap.String("process_instance_id", instanceID),
			zap.Stringer("match_policy", t.matchPolicy),
			zap.Error(err))
		t.metrics.RecordTermination("tracking_degraded")
		t.metrics.RecordTrackingDegraded("terminate")
		return fmt.Errorf("procflow/service: track termination of %s: %w: %w", instanceID, domain.ErrTrackingDegraded, err)
	}

	t.metrics.RecordTermination("ok")
	t.logger.Info("process terminated",
		zap.String("process_instance_id", instanceID),
		zap.String("reason", reason))

	t.publish("instance terminated", func(bus ports.EventBus) error {
		return bus.PublishInstanceTerminated(ctx, domain.InstanceTerminatedEvent{
			ProcessInstanceID: instanceID,
			Reason:            reason,
			At:                t.now(),
		})
	})
	return nil
}

func (t *lifecycleTracker) reconcileTermination(ctx context.Context, instanceID string) error {
	row, err := t.matchForTermination(ctx, instanceID)
	if err != nil {
		return err
	}
	if row == nil {
		t.logger.Debug("no shadow row for terminated process", zap.String("process_instance_id", instanceID))
		return nil
	}
	if !row.Terminate(t.now()) {
		return nil // already terminal
	}
	return t.store.UpdateWorkflowInstance(ctx, row)
}

func (t *lifecycleTracker) matchForTermination(ctx context.Context, instanceID string) (*domain.WorkflowInstance, error) {
	if t.matchPolicy != MatchFirstWithBusinessKey {
		return t.store.FindWorkflowInstanceByExternalID(ctx, instanceID)
	}

	all, err := t.store.ListAllWorkflowInstances(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].BusinessKey != nil {
			return &all[i], nil
		}
	}
	return nil, nil
}

func (t *lifecycleTracker) MarkCompleted(ctx context.Context, instanceID string) error {
	row, err := t.store.FindWorkflowInstanceByExternalID(ctx, instanceID)
	if err != nil {
		return fmt.Errorf("procflow/service: complete %s: %w", instanceID, err)
	}
	if row == nil || !row.Complete(t.now()) {
		return nil
	}
	if err := t.store.UpdateWorkflowInstance(ctx, row); err != nil {
		return fmt.Errorf("procflow/service: complete %s: %w", instanceID, err)
	}

	t.metrics.RecordCompletion()
	t.logger.Info("process completed", zap.String("process_instance_id", instanceID))
	return nil
}

func (t *lifecycleTracker) ListDefinitions(ctx context.Context) ([]domain.DefinitionSummary, error) {
	definitions, err := t.engine.ListLatestDefinitions(ctx)
	if err != nil {
		return nil, fmt.Errorf("procflow/service: list definitions: %w", err)
	}

	out := make([]domain.DefinitionSummary, 0, len(definitions))
	for _, def := range definitions {
		count, err := t.engine.CountActiveInstances(ctx, def.ID)
		if err != nil {
			return nil, fmt.Errorf("procflow/service: count instances of %s: %w", def.ID, err)
		}
		out = append(out, domain.DefinitionSummary{ProcessDefinition: def, ActiveInstanceCount: count})
	}
	return out, nil
}

// ListActiveInstances skips instances that end between the listing and the
// variable read.
func (t *lifecycleTracker) ListActiveInstances(ctx context.Context, definitionID string) ([]domain.ActiveInstance, error) {
	if strings.TrimSpace(definitionID) == "" {
		return nil, fmt.Errorf("procflow/service: list instances: %w: process definition id is required", domain.ErrInvalidInput)
	}

	instances, err := t.engine.ListActiveInstances(ctx, definitionID)
	if err != nil {
		return nil, fmt.Errorf("procflow/service: list instances of %s: %w", definitionID, err)
	}

	out := make([]domain.ActiveInstance, 0, len(instances))
	for _, inst := range instances {
		vars, err := t.engine.GetLiveVariables(ctx, inst.ID)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("procflow/service: variables of %s: %w", inst.ID, err)
		}
		out = append(out, domain.ActiveInstance{ProcessInstance: inst, Variables: vars})
	}
	return out, nil
}

func (t *lifecycleTracker) ListTracked(ctx context.Context, businessKey string) ([]domain.WorkflowInstance, error) {
	var (
		rows []domain.WorkflowInstance
		err  error
	)
	if key := domain.NormalizeBusinessKey(businessKey); key != nil {
		rows, err = t.store.FindWorkflowInstancesByBusinessKey(ctx, *key)
	} else {
		rows, err = t.store.ListAllWorkflowInstances(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("procflow/service: list tracked: %w", err)
	}
	return rows, nil
}

func (t *lifecycleTracker) ExportDiagram(ctx context.Context, definitionID string) (string, error) {
	if strings.TrimSpace(definitionID) == "" {
		return "", fmt.Errorf("procflow/service: export diagram: %w: process definition id is required", domain.ErrInvalidInput)
	}
	doc, err := t.engine.GetDefinitionXML(ctx, definitionID)
	if err != nil {
		return "", fmt.Errorf("procflow/service: export diagram of %s: %w", definitionID, err)
	}
	return doc, nil
}

func (t *lifecycleTracker) ValidateDefinition(ctx context.Context, definitionID string) (*domain.DefinitionValidation, error) {
	doc, err := t.ExportDiagram(ctx, definitionID)
	if err != nil {
		return nil, err
	}

	result := &domain.DefinitionValidation{ProcessDefinitionID: definitionID, Warnings: []string{}}
	d, err := inspectDiagram(doc)
	if err != nil {
		result.Warnings = append(result.Warnings, "diagram is not well-formed XML: "+err.Error())
		return result, nil
	}

	result.ProcessName = d.processName
	result.Checks = d.checks
	if !d.checks.HasStartEvent {
		result.Warnings = append(result.Warnings, "process has no start event")
	}
	if !d.checks.HasEndEvent {
		result.Warnings = append(result.Warnings, "process has no end event")
	}
	result.Valid = d.checks.HasStartEvent && d.checks.HasEndEvent

	t.logger.Debug("definition validated",
		zap.String("process_definition_id", definitionID),
		zap.Bool("valid", result.Valid))
	return result, nil
}
