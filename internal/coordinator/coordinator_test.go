package coordinator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go-procflow/internal/core/memory"
	"go-procflow/internal/domain"
	"go-procflow/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chanBus feeds ended events from a test-owned channel.
type chanBus struct {
	events       chan domain.InstanceEndedEvent
	subscribeErr error
}

func (b *chanBus) PublishInstanceStarted(context.Context, domain.InstanceStartedEvent) error {
	return nil
}

func (b *chanBus) PublishInstanceTerminated(context.Context, domain.InstanceTerminatedEvent) error {
	return nil
}

func (b *chanBus) PublishTaskClaimed(context.Context, domain.TaskClaimedEvent) error { return nil }

func (b *chanBus) PublishTaskCompleted(context.Context, domain.TaskCompletedEvent) error { return nil }

func (b *chanBus) SubscribeToInstanceEnded(context.Context) (<-chan domain.InstanceEndedEvent, error) {
	if b.subscribeErr != nil {
		return nil, b.subscribeErr
	}
	return b.events, nil
}

type recordingCompleter struct {
	mu   sync.Mutex
	ids  []string
	fail error
}

func (r *recordingCompleter) MarkCompleted(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids = append(r.ids, id)
	return r.fail
}

func (r *recordingCompleter) seen() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.ids...)
}

func TestCoordinator_marksEndedInstances(t *testing.T) {
	bus := &chanBus{events: make(chan domain.InstanceEndedEvent)}
	completer := &recordingCompleter{fail: errors.New("store down")}
	c := NewCoordinator(completer, bus, nil)

	done := make(chan error, 1)
	go func() { done <- c.Start(context.Background()) }()

	bus.events <- domain.InstanceEndedEvent{ProcessInstanceID: "p-1"}
	bus.events <- domain.InstanceEndedEvent{}
	bus.events <- domain.InstanceEndedEvent{ProcessInstanceID: "p-2"}
	close(bus.events)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("coordinator did not stop")
	}
	assert.Equal(t, []string{"p-1", "p-2"}, completer.seen(), "failures and blank ids must not stop the loop")
}

func TestCoordinator_stopsOnCancel(t *testing.T) {
	bus := &chanBus{events: make(chan domain.InstanceEndedEvent)}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewCoordinator(&recordingCompleter{}, bus, nil).Start(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("coordinator did not stop")
	}
}

func TestCoordinator_subscribeFailure(t *testing.T) {
	bus := &chanBus{subscribeErr: domain.ErrStoreUnavailable}
	err := NewCoordinator(&recordingCompleter{}, bus, nil).Start(context.Background())
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}

func TestCoordinator_completesShadowRowButNotTerminated(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	active := domain.NewWorkflowInstance("p-1", "invoice", nil, "alice", now)
	terminated := domain.NewWorkflowInstance("p-2", "invoice", nil, "alice", now)
	terminated.Terminate(now)
	require.NoError(t, store.InsertWorkflowInstance(ctx, active))
	require.NoError(t, store.InsertWorkflowInstance(ctx, terminated))

	tracker := service.NewLifecycleTracker(nil, store, service.WithClock(func() time.Time { return now.Add(time.Hour) }))
	bus := &chanBus{events: make(chan domain.InstanceEndedEvent, 3)}
	bus.events <- domain.InstanceEndedEvent{ProcessInstanceID: "p-1"}
	bus.events <- domain.InstanceEndedEvent{ProcessInstanceID: "p-2"}
	bus.events <- domain.InstanceEndedEvent{ProcessInstanceID: "p-unknown"}
	close(bus.events)

	require.NoError(t, NewCoordinator(tracker, bus, nil).Start(ctx))

	row, err := store.FindWorkflowInstanceByExternalID(ctx, "p-1")
	require.NoError(t, err)
	assert.Equal(t, domain.WorkflowCompleted, row.Status)
	require.NotNil(t, row.CompletedAt)
	assert.Equal(t, 2, row.Version)

	row, err = store.FindWorkflowInstanceByExternalID(ctx, "p-2")
	require.NoError(t, err)
	assert.Equal(t, domain.WorkflowTerminated, row.Status)
}
