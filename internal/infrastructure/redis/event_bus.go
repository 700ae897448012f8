package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go-procflow/internal/domain"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	ChannelInstanceStarted    = "procflow:events:instance-started"
	ChannelInstanceTerminated = "procflow:events:instance-terminated"
	ChannelTaskClaimed        = "procflow:events:task-claimed"
	ChannelTaskCompleted      = "procflow:events:task-completed"
)

// popTimeout bounds each BLPOP so cancellation is observed.
const popTimeout = time.Second

// RedisEventBus publishes lifecycle events on Pub/Sub channels and reads end
// notifications from the EndedQueue.
type RedisEventBus struct {
	client *redis.Client
	ended  *EndedQueue
	logger *zap.Logger
}

func NewRedisEventBus(client *redis.Client, logger *zap.Logger) *RedisEventBus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisEventBus{
		client: client,
		ended:  NewEndedQueue(client),
		logger: logger,
	}
}

func (b *RedisEventBus) publish(ctx context.Context, channel string, event any) error {
	// Serialize the struct to JSON
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("procflow/redis: encode event for %s: %w", channel, err)
	}
	if err := b.client.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("procflow/redis: publish %s: %w", channel, err)
	}
	return nil
}

func (b *RedisEventBus) PublishInstanceStarted(ctx context.Context, event domain.InstanceStartedEvent) error {
	return b.publish(ctx, ChannelInstanceStarted, event)
}

func (b *RedisEventBus) PublishInstanceTerminated(ctx context.Context, event domain.InstanceTerminatedEvent) error {
	return b.publish(ctx, ChannelInstanceTerminated, event)
}

func (b *RedisEventBus) PublishTaskClaimed(ctx context.Context, event domain.TaskClaimedEvent) error {
	return b.publish(ctx, ChannelTaskClaimed, event)
}

func (b *RedisEventBus) PublishTaskCompleted(ctx context.Context, event domain.TaskCompletedEvent) error {
	return b.publish(ctx, ChannelTaskCompleted, event)
}

// SubscribeToInstanceEnded opens a continuous stream for the Coordinator.
// The channel closes when ctx is done.
func (b *RedisEventBus) SubscribeToInstanceEnded(ctx context.Context) (<-chan domain.InstanceEndedEvent, error) {
	if err := b.client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("procflow/redis: subscribe: %w", err)
	}

	msgChan := make(chan domain.InstanceEndedEvent)

	// Start a background goroutine to drain the queue and forward to our Go channel
	go func() {
		defer close(msgChan)
		for {
			event, err := b.ended.Pop(ctx, popTimeout)
			switch {
			case ctx.Err() != nil:
				return
			case errors.Is(err, redis.Nil):
				continue
			case err != nil:
				b.logger.Warn("ended queue read failed", zap.Error(err))
				select {
				case <-ctx.Done():
					return
				case <-time.After(popTimeout):
				}
				continue
			}

			select {
			case msgChan <- event:
			case <-ctx.Done():
				return
			}
		}
	}()

	return msgChan, nil
}
