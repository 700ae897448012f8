package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go-procflow/internal/core/ports"
	"go-procflow/internal/domain"

	"go.uber.org/zap"
)

type StatusResolver interface {
	// Resolve reports ok=false when neither the live nor the historic store
	// knows the instance. Transport failures are errors, never absence.
	Resolve(ctx context.Context, instanceID string) (status domain.ResolvedStatus, ok bool, err error)
}

type statusResolver struct {
	engine ports.EngineGateway
	options
}

func NewStatusResolver(engine ports.EngineGateway, opts ...Option) StatusResolver {
	return &statusResolver{
		engine:  engine,
		options: buildOptions(opts),
	}
}

func (r *statusResolver) Resolve(ctx context.Context, instanceID string) (domain.ResolvedStatus, bool, error) {
	if strings.TrimSpace(instanceID) == "" {
		return nil, false, fmt.Errorf("procflow/service: resolve: %w: process instance id is required", domain.ErrInvalidInput)
	}

	// 1. LIVE: always wins
	live, ok, err := r.resolveLive(ctx, instanceID)
	if err != nil {
		r.metrics.RecordResolution("error")
		return nil, false, err
	}
	if ok {
		r.metrics.RecordResolution("live")
		return live, true, nil
	}

	// 2. HISTORIC
	historic, ok, err := r.resolveHistoric(ctx, instanceID)
	if err != nil {
		r.metrics.RecordResolution("error")
		return nil, false, err
	}
	if ok {
		return historic, true, nil
	}

	// 3. ABSENT
	r.metrics.RecordResolution("absent")
	return nil, false, nil
}

func (r *statusResolver) resolveLive(ctx context.Context, instanceID string) (domain.ResolvedStatus, bool, error) {
	inst, err := r.engine.GetLiveInstance(ctx, instanceID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("procflow/service: resolve live %s: %w", instanceID, err)
	}

	vars, err := r.engine.GetLiveVariables(ctx, instanceID)
	if errors.Is(err, domain.ErrNotFound) {
		// Ended between the two reads; the historic store has it now.
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("procflow/service: resolve variables %s: %w", instanceID, err)
	}
	if vars == nil {
		vars = map[string]any{}
	}

	return domain.LiveStatus{
		ProcessInstanceID:   inst.ID,
		ProcessDefinitionID: inst.ProcessDefinitionID,
		BusinessKey:         inst.BusinessKey,
		Suspended:           inst.Suspended,
		Variables:           vars,
	}, true, nil
}

func (r *statusResolver) resolveHistoric(ctx context.Context, instanceID string) (domain.ResolvedStatus, bool, error) {
	if r.cache != nil {
		cached, hit, err := r.cache.GetHistoric(ctx, instanceID)
		switch {
		case err != nil:
			r.logger.Warn("status cache read failed", zap.String("process_instance_id", instanceID), zap.Error(err))
		case hit:
			r.metrics.RecordResolution("cache")
			return *cached, true, nil
		}
	}

	hist, err := r.engine.GetHistoricInstance(ctx, instanceID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("procflow/service: resolve historic %s: %w", instanceID, err)
	}

	status := domain.HistoricStatus{
		ProcessInstanceID:   hist.ID,
		ProcessDefinitionID: hist.ProcessDefinitionID,
		BusinessKey:         hist.BusinessKey,
		StartTime:           hist.StartTime,
		EndTime:             hist.EndTime,
		DurationInMillis:    hist.DurationInMillis,
		DeleteReason:        hist.DeleteReason,
	}
	r.metrics.RecordResolution("historic")

	// Only finished records are immutable.
	if r.cache != nil && status.EndTime != nil {
		if err := r.cache.PutHistoric(ctx, status, r.cacheTTL); err != nil {
			r.logger.Warn("status cache write failed", zap.String("process_instance_id", instanceID), zap.Error(err))
		}
	}
	return status, true, nil
}
