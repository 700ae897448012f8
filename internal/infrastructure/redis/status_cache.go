package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go-procflow/internal/domain"

	"github.com/redis/go-redis/v9"
)

const statusKeyPrefix = "procflow:status:historic:"

// StatusCache keeps historic statuses. Ended instances never change, so
// entries only expire by TTL.
type StatusCache struct {
	client redis.Cmdable
}

func NewStatusCache(client redis.Cmdable) *StatusCache {
	return &StatusCache{client: client}
}

func statusKey(instanceID string) string {
	return statusKeyPrefix + instanceID
}

func (c *StatusCache) GetHistoric(ctx context.Context, instanceID string) (*domain.HistoricStatus, bool, error) {
	raw, err := c.client.Get(ctx, statusKey(instanceID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("procflow/redis: get status %s: %w", instanceID, err)
	}

	var status domain.HistoricStatus
	if err := json.Unmarshal(raw, &status); err != nil {
		return nil, false, fmt.Errorf("procflow/redis: decode status %s: %w", instanceID, err)
	}
	return &status, true, nil
}

func (c *StatusCache) PutHistoric(ctx context.Context, status domain.HistoricStatus, ttl time.Duration) error {
	data, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("procflow/redis: encode status: %w", err)
	}
	if err := c.client.Set(ctx, statusKey(status.ProcessInstanceID), data, ttl).Err(); err != nil {
		return fmt.Errorf("procflow/redis: set status %s: %w", status.ProcessInstanceID, err)
	}
	return nil
}
