package checkout

import (
	"context"
	"testing"

	"github.com/CristobalNPE/ventesca-sub000/internal/domain/catalog"
	"github.com/CristobalNPE/ventesca-sub000/internal/domain/shared"
	"github.com/CristobalNPE/ventesca-sub000/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestStockClampedHandler_EventTypes(t *testing.T) {
	handler := NewStockClampedHandler(zap.NewNop())

	assert.Equal(t, []string{catalog.EventTypeProductStockClamped}, handler.EventTypes())
}

func TestStockClampedHandler_Handle(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	handler := NewStockClampedHandler(zap.New(core))

	p, err := catalog.NewProduct(uuid.New(), "sku-9", "Lamp", decimal.NewFromInt(5), decimal.NewFromInt(9), 2)
	require.NoError(t, err)
	event := catalog.NewProductStockClampedEvent(p, -5, -2)

	require.NoError(t, handler.Handle(context.Background(), event))

	entries := logs.FilterMessage("product stock clamped at zero").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "SKU-9", fields["product_code"])
	assert.Equal(t, int64(-5), fields["requested_delta"])
	assert.Equal(t, int64(-2), fields["applied_delta"])
}

func TestStockClampedHandler_Handle_WrongEventType(t *testing.T) {
	handler := NewStockClampedHandler(zap.NewNop())

	order, err := trade.NewPendingOrder(uuid.New(), uuid.New())
	require.NoError(t, err)

	err = handler.Handle(context.Background(), trade.NewOrderReopenedEvent(order))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected event type")
}

func TestOrderAuditHandler_Handle(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	handler := NewOrderAuditHandler(zap.New(core))
	assert.Len(t, handler.EventTypes(), 4)

	order, err := trade.NewPendingOrder(uuid.New(), uuid.New())
	require.NoError(t, err)

	events := []shared.DomainEvent{
		trade.NewOrderFinishedEvent(order),
		trade.NewOrderDiscardedEvent(order, trade.OrderStatusFinished),
		trade.NewOrderDeletedEvent(order, trade.EffectReverse),
	}
	for _, e := range events {
		require.NoError(t, handler.Handle(context.Background(), e))
	}

	entries := logs.FilterMessage("order lifecycle event").All()
	require.Len(t, entries, 3)
	assert.Equal(t, trade.EventTypeOrderFinished, entries[0].ContextMap()["event_type"])
	assert.Equal(t, "FINISHED", entries[1].ContextMap()["previous_status"])
	assert.Equal(t, true, entries[2].ContextMap()["reversed"])
}
