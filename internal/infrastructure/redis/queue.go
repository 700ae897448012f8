package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go-procflow/internal/domain"

	"github.com/redis/go-redis/v9"
)

const endedQueueName = "procflow:queue:instance-ended"

// EndedQueue carries engine end notifications. Unlike Pub/Sub, items wait in
// the list while no coordinator is running.
type EndedQueue struct {
	client    redis.Cmdable
	queueName string
}

func NewEndedQueue(client redis.Cmdable) *EndedQueue {
	return &EndedQueue{
		client:    client,
		queueName: endedQueueName,
	}
}

// Push adds an end notification to the tail of the list
func (q *EndedQueue) Push(ctx context.Context, event domain.InstanceEndedEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("procflow/redis: encode ended event: %w", err)
	}
	return q.client.RPush(ctx, q.queueName, payload).Err()
}

// Pop waits up to timeout for the next notification. A timeout returns
// redis.Nil.
func (q *EndedQueue) Pop(ctx context.Context, timeout time.Duration) (domain.InstanceEndedEvent, error) {
	var event domain.InstanceEndedEvent

	result, err := q.client.BLPop(ctx, timeout, q.queueName).Result()
	if err != nil {
		return event, err
	}
	// BLPop returns a slice: [QueueName, Element]
	if err := json.Unmarshal([]byte(result[1]), &event); err != nil {
		return event, fmt.Errorf("procflow/redis: decode ended event: %w", err)
	}
	return event, nil
}
