package coordinator

import (
	"context"
	"fmt"

	"go-procflow/internal/core/ports"
	"go-procflow/internal/domain"

	"go.uber.org/zap"
)

// Completer applies engine-side normal ends to shadow rows.
type Completer interface {
	MarkCompleted(ctx context.Context, instanceID string) error
}

// Coordinator moves shadow rows to COMPLETED when the engine reports that an
// instance reached its end event.
type Coordinator struct {
	tracker  Completer
	eventBus ports.EventBus
	logger   *zap.Logger
}

func NewCoordinator(tracker Completer, bus ports.EventBus, logger *zap.Logger) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{
		tracker:  tracker,
		eventBus: bus,
		logger:   logger,
	}
}

// Start begins the listening loop and blocks until ctx is done or the event
// stream closes. Call this in main.go as a goroutine.
func (c *Coordinator) Start(ctx context.Context) error {
	eventChannel, err := c.eventBus.SubscribeToInstanceEnded(ctx)
	if err != nil {
		return fmt.Errorf("procflow/coordinator: subscribe: %w", err)
	}
	c.logger.Info("coordinator started, listening for instance endings")

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("coordinator shutting down")
			return nil

		case event, ok := <-eventChannel:
			if !ok {
				c.logger.Info("event stream closed")
				return nil
			}
			c.handleInstanceEnded(ctx, event)
		}
	}
}

func (c *Coordinator) handleInstanceEnded(ctx context.Context, event domain.InstanceEndedEvent) {
	if event.ProcessInstanceID == "" {
		c.logger.Warn("ignoring ended event without instance id")
		return
	}

	// A row already TERMINATED or COMPLETED is left untouched by the tracker.
	if err := c.tracker.MarkCompleted(ctx, event.ProcessInstanceID); err != nil {
		c.logger.Warn("failed to mark instance completed",
			zap.String("process_instance_id", event.ProcessInstanceID),
			zap.Error(err))
	}
}
