package messaging

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alem-hub/studyhub/internal/domain/shared"
)

var testTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func groupCreated() shared.Event {
	return shared.NewGroupCreatedEvent("group_1", "alice", "Go", "golang", 5, testTime)
}

type countingObserver struct {
	published atomic.Int32
	failed    atomic.Int32
}

func (o *countingObserver) ObservePublish(shared.EventType) { o.published.Add(1) }

func (o *countingObserver) ObserveHandler(_ shared.EventType, _ time.Duration, err error) {
	if err != nil {
		o.failed.Add(1)
	}
}

func TestInMemoryEventBus_SyncDelivery(t *testing.T) {
	bus := NewInMemoryEventBus(InMemoryEventBusConfig{AsyncMode: false})
	defer bus.Close()

	var typed, all []shared.EventType
	require.NoError(t, bus.Subscribe(shared.EventGroupCreated, func(e shared.Event) error {
		typed = append(typed, e.EventType())
		return nil
	}))
	require.NoError(t, bus.SubscribeAll(func(e shared.Event) error {
		all = append(all, e.EventType())
		return nil
	}))

	require.NoError(t, bus.Publish(groupCreated()))
	require.NoError(t, bus.Publish(shared.NewMemberJoinedEvent("group_1", "bob", 2, testTime)))

	assert.Equal(t, []shared.EventType{shared.EventGroupCreated}, typed)
	assert.Equal(t, []shared.EventType{shared.EventGroupCreated, shared.EventMemberJoined}, all)
}

func TestInMemoryEventBus_AsyncCloseWaits(t *testing.T) {
	bus := NewInMemoryEventBus(InMemoryEventBusConfig{AsyncMode: true, WorkerPoolSize: 2})

	var n atomic.Int32
	require.NoError(t, bus.SubscribeAll(func(shared.Event) error {
		time.Sleep(5 * time.Millisecond)
		n.Add(1)
		return nil
	}))
	for i := 0; i < 5; i++ {
		require.NoError(t, bus.Publish(groupCreated()))
	}
	require.NoError(t, bus.Close())

	assert.Equal(t, int32(5), n.Load())
	assert.ErrorIs(t, bus.Publish(groupCreated()), ErrEventBusClosed)
	assert.ErrorIs(t, bus.SubscribeAll(func(shared.Event) error { return nil }), ErrEventBusClosed)
}

func TestInMemoryEventBus_HandlerFailuresAreContained(t *testing.T) {
	obs := &countingObserver{}
	bus := NewInMemoryEventBus(InMemoryEventBusConfig{AsyncMode: false, Observer: obs})
	defer bus.Close()

	var reached bool
	require.NoError(t, bus.SubscribeAll(func(shared.Event) error { panic("kaboom") }))
	require.NoError(t, bus.SubscribeAll(func(shared.Event) error { return errors.New("nope") }))
	require.NoError(t, bus.SubscribeAll(func(shared.Event) error { reached = true; return nil }))

	require.NoError(t, bus.Publish(groupCreated()))

	assert.True(t, reached)
	assert.Equal(t, int32(1), obs.published.Load())
	assert.Equal(t, int32(2), obs.failed.Load())
}

func TestInMemoryEventBus_RejectsNil(t *testing.T) {
	bus := NewInMemoryEventBus(DefaultInMemoryEventBusConfig())
	defer bus.Close()

	assert.Error(t, bus.Subscribe(shared.EventGroupCreated, nil))
	assert.Error(t, bus.SubscribeAll(nil))
	assert.Error(t, bus.Publish(nil))
}

type fakeChannelPublisher struct {
	mu       sync.Mutex
	channels []string
	messages []interface{}
}

func (f *fakeChannelPublisher) Publish(_ context.Context, channel string, message interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.channels = append(f.channels, channel)
	f.messages = append(f.messages, message)
	return nil
}

func TestRelayHandler(t *testing.T) {
	pub := &fakeChannelPublisher{}
	h := RelayHandler(pub, func(t string) string { return "events:" + t }, 0)

	require.NoError(t, h(groupCreated()))

	require.Len(t, pub.channels, 1)
	assert.Equal(t, "events:group.created", pub.channels[0])
	env, ok := pub.messages[0].(Envelope)
	require.True(t, ok)
	assert.Equal(t, shared.EventGroupCreated, env.Type)
	assert.Equal(t, "group_1", env.AggregateID)
	assert.Equal(t, "Go", env.Payload["name"])
}

type countingInvalidator struct{ n int }

func (c *countingInvalidator) Invalidate(context.Context) error {
	c.n++
	return nil
}

func TestStatsInvalidationHandler(t *testing.T) {
	inv := &countingInvalidator{}
	h := StatsInvalidationHandler(inv)

	require.NoError(t, h(groupCreated()))
	require.NoError(t, h(shared.NewMemberJoinedEvent("group_1", "bob", 2, testTime)))
	require.NoError(t, h(shared.NewTokensCreditedEvent("bob", 25, 125, "group_joined", testTime)))

	assert.Equal(t, 2, inv.n)
}

func TestWire(t *testing.T) {
	bus := NewInMemoryEventBus(InMemoryEventBusConfig{AsyncMode: false})
	defer bus.Close()

	pub := &fakeChannelPublisher{}
	inv := &countingInvalidator{}
	require.NoError(t, Wire(bus, Subscribers{
		Relay:   pub,
		Channel: func(t string) string { return t },
		Stats:   inv,
	}))

	require.NoError(t, bus.Publish(groupCreated()))
	assert.Len(t, pub.channels, 1)
	assert.Equal(t, 1, inv.n)
}
