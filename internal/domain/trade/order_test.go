package trade

import (
	"errors"
	"testing"
	"time"

	"github.com/CristobalNPE/ventesca-sub000/internal/domain/promotion"
	"github.com/CristobalNPE/ventesca-sub000/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestOrder(t *testing.T) *Order {
	t.Helper()
	order, err := NewPendingOrder(uuid.New(), uuid.New())
	require.NoError(t, err)
	return order
}

func globalTenPercent(t *testing.T, minQty int) []promotion.Discount {
	t.Helper()
	now := time.Now()
	d, err := promotion.NewDiscount(uuid.New(), promotion.DiscountParams{
		Name:            "ten off",
		Scope:           promotion.ScopeGlobal,
		Method:          promotion.MethodByProduct,
		ValueType:       promotion.ValuePercentage,
		Value:           decimal.NewFromInt(10),
		MinimumQuantity: minQty,
		ValidFrom:       now.Add(-time.Hour),
		ValidUntil:      now.Add(time.Hour),
	})
	require.NoError(t, err)
	return []promotion.Discount{*d}
}

func TestNewPendingOrder(t *testing.T) {
	order := createTestOrder(t)

	assert.Equal(t, OrderStatusPending, order.Status)
	assert.Equal(t, PaymentCash, order.PaymentMethod)
	assert.Empty(t, order.Items)
	assert.True(t, order.Total.IsZero())
	assert.False(t, order.EffectsApplied)

	_, err := NewPendingOrder(uuid.New(), uuid.Nil)
	require.Error(t, err)
}

// The scenario from the pricing rules: 1000 each, 10% global discount from 3 units.
func TestOrder_LineRecalculationScenario(t *testing.T) {
	order := createTestOrder(t)
	productID := uuid.New()
	price := decimal.NewFromInt(1000)
	discounts := globalTenPercent(t, 3)

	item, err := order.UpsertItem(productID, 3, LineTypeSell)
	require.NoError(t, err)
	item.Recalculate(price, promotion.Evaluate(item.Quantity, price, discounts, time.Now()))
	order.RecalculateTotals()

	assert.True(t, item.TotalPrice.Equal(decimal.NewFromInt(3000)))
	assert.True(t, item.TotalDiscount.IsZero())

	item, err = order.UpsertItem(productID, 3, LineTypePromo)
	require.NoError(t, err)
	item.Recalculate(price, promotion.Evaluate(item.Quantity, price, discounts, time.Now()))
	order.RecalculateTotals()

	require.Len(t, order.Items, 1, "same product reuses its line")
	assert.Equal(t, LineTypePromo, item.Type)
	assert.True(t, item.TotalPrice.Equal(decimal.NewFromInt(2700)))
	assert.True(t, item.TotalDiscount.Equal(decimal.NewFromInt(300)))
	assert.True(t, order.Total.Equal(decimal.NewFromInt(2700)))
	assert.True(t, order.TotalDiscount.Equal(decimal.NewFromInt(300)))
	assert.True(t, order.Subtotal.Equal(decimal.NewFromInt(3000)))
}

func TestOrder_PromoFallsBackToSell(t *testing.T) {
	order := createTestOrder(t)
	price := decimal.NewFromInt(1000)
	discounts := globalTenPercent(t, 3)

	t.Run("no eligible discount", func(t *testing.T) {
		item, err := order.UpsertItem(uuid.New(), 2, LineTypePromo)
		require.NoError(t, err)
		item.Recalculate(price, promotion.Evaluate(item.Quantity, price, discounts, time.Now()))

		assert.Equal(t, LineTypeSell, item.Type)
		assert.True(t, item.TotalDiscount.IsZero())
	})

	t.Run("quantity drops below threshold", func(t *testing.T) {
		productID := uuid.New()
		item, err := order.UpsertItem(productID, 4, LineTypePromo)
		require.NoError(t, err)
		item.Recalculate(price, promotion.Evaluate(item.Quantity, price, discounts, time.Now()))
		require.Equal(t, LineTypePromo, item.Type)

		item, err = order.UpsertItem(productID, 2, item.Type)
		require.NoError(t, err)
		item.Recalculate(price, promotion.Evaluate(item.Quantity, price, discounts, time.Now()))

		assert.Equal(t, LineTypeSell, item.Type)
		assert.True(t, item.TotalPrice.Equal(decimal.NewFromInt(2000)))
	})
}

func TestLineItem_RecalculateReportsChanges(t *testing.T) {
	item, err := NewLineItem(uuid.New(), uuid.New(), 2, LineTypeSell)
	require.NoError(t, err)
	price := decimal.NewFromInt(50)

	assert.True(t, item.Recalculate(price, promotion.Evaluation{}))
	assert.False(t, item.Recalculate(price, promotion.Evaluation{}), "second pass is a no-op")
	assert.True(t, item.Recalculate(decimal.NewFromInt(55), promotion.Evaluation{}))
}

func TestLineItem_LineProfit(t *testing.T) {
	sell := LineItem{Type: LineTypePromo, Quantity: 3, TotalPrice: decimal.NewFromInt(2700)}
	ret := LineItem{Type: LineTypeReturn, Quantity: 2, TotalPrice: decimal.NewFromInt(-2000)}

	assert.True(t, sell.LineProfit(decimal.NewFromInt(600)).Equal(decimal.NewFromInt(900)))
	assert.True(t, ret.LineProfit(decimal.NewFromInt(600)).Equal(decimal.NewFromInt(-800)))
}

func TestNewLineItem_Validation(t *testing.T) {
	_, err := NewLineItem(uuid.New(), uuid.New(), 0, LineTypeSell)
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrInvalidInput))

	_, err = NewLineItem(uuid.New(), uuid.New(), 1, "GIFT")
	require.Error(t, err)

	_, err = NewLineItem(uuid.New(), uuid.Nil, 1, LineTypeSell)
	require.Error(t, err)
}

func TestOrder_RemoveItem(t *testing.T) {
	order := createTestOrder(t)
	item, err := order.UpsertItem(uuid.New(), 1, LineTypeSell)
	require.NoError(t, err)
	item.Recalculate(decimal.NewFromInt(100), promotion.Evaluation{})
	order.RecalculateTotals()
	itemID := item.ID

	require.NoError(t, order.RemoveItem(itemID))
	assert.Empty(t, order.Items)
	assert.True(t, order.Total.IsZero())

	err = order.RemoveItem(itemID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

func TestOrder_SetDirectDiscount(t *testing.T) {
	order := createTestOrder(t)
	item, err := order.UpsertItem(uuid.New(), 2, LineTypeSell)
	require.NoError(t, err)
	item.Recalculate(decimal.NewFromInt(500), promotion.Evaluation{})
	order.RecalculateTotals()

	require.NoError(t, order.SetDirectDiscount(DirectDiscountFixed, decimal.NewFromInt(100)))
	assert.True(t, order.Total.Equal(decimal.NewFromInt(900)))
	assert.True(t, order.DirectDiscountAmount.Equal(decimal.NewFromInt(100)))
	assert.True(t, order.Subtotal.Equal(decimal.NewFromInt(1000)))

	err = order.SetDirectDiscount(DirectDiscountFixed, decimal.NewFromInt(1001))
	require.Error(t, err)
	assert.True(t, order.Total.Equal(decimal.NewFromInt(900)), "rejected input leaves totals alone")
}

func TestOrder_RecalculateTotalsDirtyFlag(t *testing.T) {
	order := createTestOrder(t)
	assert.False(t, order.RecalculateTotals())

	item, err := order.UpsertItem(uuid.New(), 1, LineTypeSell)
	require.NoError(t, err)
	item.Recalculate(decimal.NewFromInt(10), promotion.Evaluation{})

	assert.True(t, order.RecalculateTotals())
	assert.False(t, order.RecalculateTotals())
}

func TestOrder_Transition(t *testing.T) {
	newFilledOrder := func(t *testing.T) *Order {
		order := createTestOrder(t)
		item, err := order.UpsertItem(uuid.New(), 1, LineTypeSell)
		require.NoError(t, err)
		item.Recalculate(decimal.NewFromInt(10), promotion.Evaluation{})
		order.RecalculateTotals()
		return order
	}

	t.Run("finish", func(t *testing.T) {
		order := newFilledOrder(t)

		tr, err := order.Transition(OrderStatusFinished)
		require.NoError(t, err)

		assert.Equal(t, EffectApply, tr.Effect())
		assert.Equal(t, OrderStatusFinished, order.Status)
		assert.True(t, order.EffectsApplied)
		assert.NotNil(t, order.CompletedAt)
		events := order.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeOrderFinished, events[0].EventType())
	})

	t.Run("discard then undiscard", func(t *testing.T) {
		order := newFilledOrder(t)
		_, err := order.Transition(OrderStatusFinished)
		require.NoError(t, err)

		tr, err := order.Transition(OrderStatusDiscarded)
		require.NoError(t, err)
		assert.Equal(t, EffectReverse, tr.Effect())
		assert.False(t, order.EffectsApplied)
		assert.True(t, order.IsDiscarded())

		tr, err = order.Transition(OrderStatusFinished)
		require.NoError(t, err)
		assert.Equal(t, ActionUndiscard, tr.Action)
		assert.True(t, order.EffectsApplied)

		events := order.GetDomainEvents()
		require.Len(t, events, 3)
		assert.Equal(t, EventTypeOrderDiscarded, events[1].EventType())
		assert.Equal(t, EventTypeOrderReopened, events[2].EventType())
	})

	t.Run("first finish after pending discard completes the order", func(t *testing.T) {
		order := newFilledOrder(t)
		_, err := order.Transition(OrderStatusDiscarded)
		require.NoError(t, err)
		assert.Nil(t, order.CompletedAt)

		tr, err := order.Transition(OrderStatusFinished)
		require.NoError(t, err)
		assert.Equal(t, ActionUndiscard, tr.Action)
		assert.True(t, order.EffectsApplied)
		require.NotNil(t, order.CompletedAt)

		events := order.GetDomainEvents()
		require.Len(t, events, 2)
		assert.Equal(t, EventTypeOrderFinished, events[1].EventType())
	})

	t.Run("empty discarded order cannot finish", func(t *testing.T) {
		order := createTestOrder(t)
		_, err := order.Transition(OrderStatusDiscarded)
		require.NoError(t, err)

		_, err = order.Transition(OrderStatusFinished)
		require.Error(t, err)
		assert.True(t, errors.Is(err, shared.ErrIllegalTransition))
		assert.Equal(t, OrderStatusDiscarded, order.Status)
		assert.Nil(t, order.CompletedAt)
	})

	t.Run("illegal transition leaves status", func(t *testing.T) {
		order := newFilledOrder(t)
		_, err := order.Transition(OrderStatusFinished)
		require.NoError(t, err)

		_, err = order.Transition(OrderStatusPending)
		require.Error(t, err)
		assert.Equal(t, OrderStatusFinished, order.Status)
	})

	t.Run("finished orders reject line edits", func(t *testing.T) {
		order := newFilledOrder(t)
		_, err := order.Transition(OrderStatusFinished)
		require.NoError(t, err)

		_, err = order.UpsertItem(uuid.New(), 1, LineTypeSell)
		require.Error(t, err)
		assert.True(t, errors.Is(err, shared.ErrInvalidState))
		assert.Error(t, order.RemoveItem(order.Items[0].ID))
		assert.Error(t, order.SetDirectDiscount(DirectDiscountFixed, decimal.NewFromInt(1)))
	})
}

func TestOrder_MarkForDeletion(t *testing.T) {
	order := createTestOrder(t)

	_, err := order.MarkForDeletion()
	require.Error(t, err, "pending orders cannot be deleted")

	item, err := order.UpsertItem(uuid.New(), 1, LineTypeSell)
	require.NoError(t, err)
	item.Recalculate(decimal.NewFromInt(10), promotion.Evaluation{})
	_, err = order.Transition(OrderStatusFinished)
	require.NoError(t, err)

	tr, err := order.MarkForDeletion()
	require.NoError(t, err)
	assert.Equal(t, EffectReverse, tr.Effect())
	assert.False(t, order.EffectsApplied)

	events := order.GetDomainEvents()
	deleted, ok := events[len(events)-1].(*OrderDeletedEvent)
	require.True(t, ok)
	assert.True(t, deleted.Reversed)
}

func TestOrder_SetPaymentMethod(t *testing.T) {
	order := createTestOrder(t)

	require.NoError(t, order.SetPaymentMethod(PaymentDebit))
	assert.Equal(t, PaymentDebit, order.PaymentMethod)
	assert.Error(t, order.SetPaymentMethod("BARTER"))
}
