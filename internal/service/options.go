package service

import (
	"fmt"
	"time"

	"go-procflow/internal/core/ports"
	"go-procflow/internal/observability"

	"go.uber.org/zap"
)

// MatchPolicy selects which shadow row Terminate reconciles.
type MatchPolicy int

const (
	// MatchByInstanceID updates the row tracking the terminated instance.
	MatchByInstanceID MatchPolicy = iota

	// MatchFirstWithBusinessKey updates the first tracked row that carries
	// any business key, regardless of which instance was terminated. Kept
	// for compatibility with the legacy tracking table; it can pick the
	// wrong row when several instances are active.
	MatchFirstWithBusinessKey
)

func (p MatchPolicy) String() string {
	switch p {
	case MatchByInstanceID:
		return "instance_id"
	case MatchFirstWithBusinessKey:
		return "first_business_key"
	default:
		return fmt.Sprintf("MatchPolicy(%d)", int(p))
	}
}

// ParseMatchPolicy accepts the names produced by MatchPolicy.String.
func ParseMatchPolicy(s string) (MatchPolicy, error) {
	switch s {
	case "", "instance_id":
		return MatchByInstanceID, nil
	case "first_business_key":
		return MatchFirstWithBusinessKey, nil
	default:
		return 0, fmt.Errorf("unknown terminate match policy %q", s)
	}
}

type options struct {
	logger      *zap.Logger
	metrics     *observability.Metrics
	events      ports.EventBus
	cache       ports.StatusCache
	cacheTTL    time.Duration
	matchPolicy MatchPolicy
	now         func() time.Time
}

// Option configures the trackers and the resolver.
type Option func(*options)

func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

func WithMetrics(m *observability.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithEventBus publishes lifecycle events after successful transitions.
func WithEventBus(bus ports.EventBus) Option {
	return func(o *options) { o.events = bus }
}

// WithStatusCache caches historic statuses for ttl.
func WithStatusCache(cache ports.StatusCache, ttl time.Duration) Option {
	return func(o *options) {
		o.cache = cache
		o.cacheTTL = ttl
	}
}

func WithMatchPolicy(p MatchPolicy) Option {
	return func(o *options) { o.matchPolicy = p }
}

// WithClock overrides time.Now for shadow timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func buildOptions(opts []Option) options {
	o := options{
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	return o
}

// publish sends an event after the transition is already durable; failures
// are logged only.
func (o *options) publish(what string, send func(ports.EventBus) error) {
	if o.events == nil {
		return
	}
	if err := send(o.events); err != nil {
		o.logger.Warn("failed to publish event", zap.String("event", what), zap.Error(err))
	}
}
