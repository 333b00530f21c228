package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/CristobalNPE/ventesca-sub000/internal/domain/shared"
	"github.com/CristobalNPE/ventesca-sub000/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type testEvent struct {
	shared.BaseDomainEvent
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "Order", uuid.New(), uuid.New()),
	}
}

// testHandler records what it receives
type testHandler struct {
	eventTypes []string
	handled    []shared.DomainEvent
	err        error
	panicWith  any
	mu         sync.Mutex
}

func newTestHandler(eventTypes ...string) *testHandler {
	return &testHandler{eventTypes: eventTypes}
}

func (h *testHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = append(h.handled, event)
	if h.panicWith != nil {
		panic(h.panicWith)
	}
	return h.err
}

func (h *testHandler) EventTypes() []string {
	return h.eventTypes
}

func (h *testHandler) getHandled() []shared.DomainEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]shared.DomainEvent(nil), h.handled...)
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := newTestHandler(trade.EventTypeOrderFinished)
	bus.Subscribe(handler)

	event := newTestEvent(trade.EventTypeOrderFinished)
	require.NoError(t, bus.Publish(context.Background(), event))

	require.Len(t, handler.getHandled(), 1)
	assert.Equal(t, event, handler.getHandled()[0])
}

func TestInMemoryEventBus_Publish_RoutesByType(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	finished := newTestHandler(trade.EventTypeOrderFinished)
	discarded := newTestHandler(trade.EventTypeOrderDiscarded)
	all := newTestHandler()
	bus.Subscribe(finished)
	bus.Subscribe(discarded)
	bus.Subscribe(all)

	err := bus.Publish(context.Background(),
		newTestEvent(trade.EventTypeOrderFinished),
		newTestEvent(trade.EventTypeOrderFinished),
		newTestEvent(trade.EventTypeOrderDiscarded),
	)

	require.NoError(t, err)
	assert.Len(t, finished.getHandled(), 2)
	assert.Len(t, discarded.getHandled(), 1)
	assert.Len(t, all.getHandled(), 3)
}

func TestInMemoryEventBus_Publish_ExplicitTypesOverrideHandler(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := newTestHandler(trade.EventTypeOrderFinished)
	bus.Subscribe(handler, trade.EventTypeOrderDeleted)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent(trade.EventTypeOrderFinished)))
	assert.Empty(t, handler.getHandled())

	require.NoError(t, bus.Publish(context.Background(), newTestEvent(trade.EventTypeOrderDeleted)))
	assert.Len(t, handler.getHandled(), 1)
}

func TestInMemoryEventBus_Publish_HandlerError(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	bus := NewInMemoryEventBus(zap.New(core))

	failing := newTestHandler("TestEvent")
	failing.err = errors.New("audit sink down")
	healthy := newTestHandler("TestEvent")
	bus.Subscribe(failing)
	bus.Subscribe(healthy)

	err := bus.Publish(context.Background(), newTestEvent("TestEvent"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "audit sink down")
	assert.Len(t, failing.getHandled(), 1)
	assert.Len(t, healthy.getHandled(), 1, "later handlers still run")
	assert.Equal(t, 1, logs.FilterMessage("handler failed to process event").Len())
}

func TestInMemoryEventBus_Publish_HandlerPanic(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	bus := NewInMemoryEventBus(zap.New(core))

	panicking := newTestHandler("TestEvent")
	panicking.panicWith = "boom"
	healthy := newTestHandler("TestEvent")
	bus.Subscribe(panicking)
	bus.Subscribe(healthy)

	err := bus.Publish(context.Background(), newTestEvent("TestEvent"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "handler panicked: boom")
	assert.Len(t, healthy.getHandled(), 1)
	assert.Equal(t, 1, logs.FilterMessage("handler panicked").Len())
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := newTestHandler("TestEvent")
	bus.Subscribe(handler)

	_ = bus.Publish(context.Background(), newTestEvent("TestEvent"))
	bus.Unsubscribe(handler)
	_ = bus.Publish(context.Background(), newTestEvent("TestEvent"))

	assert.Len(t, handler.getHandled(), 1)
}

func TestInMemoryEventBus_StartStop(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	ctx := context.Background()

	assert.False(t, bus.IsRunning())
	require.NoError(t, bus.Start(ctx))
	assert.True(t, bus.IsRunning())

	handler := newTestHandler("TestEvent")
	bus.Subscribe(handler)
	require.NoError(t, bus.Publish(ctx, newTestEvent("TestEvent")))
	assert.Len(t, handler.getHandled(), 1)

	require.NoError(t, bus.Stop(ctx))
	assert.False(t, bus.IsRunning())
}
