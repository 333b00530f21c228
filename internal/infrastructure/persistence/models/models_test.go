package models

import (
	"testing"
	"time"

	"github.com/CristobalNPE/ventesca-sub000/internal/domain/catalog"
	"github.com/CristobalNPE/ventesca-sub000/internal/domain/promotion"
	"github.com/CristobalNPE/ventesca-sub000/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderModel_RoundTripKeepsLinesAndDirectDiscount(t *testing.T) {
	order, err := trade.NewPendingOrder(uuid.New(), uuid.New())
	require.NoError(t, err)
	_, err = order.UpsertItem(uuid.New(), 2, trade.LineTypeSell)
	require.NoError(t, err)
	order.DirectDiscount = trade.DirectDiscount{Kind: trade.DirectDiscountPercentage, Value: decimal.NewFromInt(5)}
	order.Version = 4

	m := OrderModelFromDomain(order)
	items := []LineItemModel{*LineItemModelFromDomain(&order.Items[0])}
	back := m.ToDomain(items)

	assert.Equal(t, order.ID, back.ID)
	assert.Equal(t, order.BusinessID, back.BusinessID)
	assert.Equal(t, order.SellerID, back.SellerID)
	assert.Equal(t, 4, back.Version)
	assert.Equal(t, trade.DirectDiscountPercentage, back.DirectDiscount.Kind)
	assert.True(t, back.DirectDiscount.Value.Equal(decimal.NewFromInt(5)))
	require.Len(t, back.Items, 1)
	assert.Equal(t, order.Items[0].ProductID, back.Items[0].ProductID)
	assert.Empty(t, back.GetDomainEvents())
}

func TestProductModel_KeepsSoftDelete(t *testing.T) {
	p, err := catalog.NewProduct(uuid.New(), "sku-1", "Widget", decimal.NewFromInt(600), decimal.NewFromInt(1000), 10)
	require.NoError(t, err)
	p.SoftDelete()

	back := ProductModelFromDomain(p).ToDomain()

	assert.Equal(t, "SKU-1", back.Code)
	assert.True(t, back.IsDeleted())
	assert.False(t, back.IsSellable())
	assert.Equal(t, p.Version, back.Version)
}

func TestDiscountModel_KeepsTarget(t *testing.T) {
	category := uuid.New()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	d, err := promotion.NewDiscount(uuid.New(), promotion.DiscountParams{
		Name:       "drinks",
		Scope:      promotion.ScopeCategory,
		TargetID:   &category,
		Method:     promotion.MethodByProduct,
		ValueType:  promotion.ValueFixed,
		Value:      decimal.NewFromInt(50),
		ValidFrom:  now,
		ValidUntil: now.Add(time.Hour),
	})
	require.NoError(t, err)

	back := DiscountModelFromDomain(d).ToDomain()

	require.NotNil(t, back.CategoryID)
	assert.Equal(t, category, *back.CategoryID)
	assert.Nil(t, back.ProductID)
	assert.True(t, back.IsActiveAt(now))
}
