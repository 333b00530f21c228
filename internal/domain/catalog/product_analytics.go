package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductAnalytics holds the running sales counters of one product.
// It only changes through order reconciliation.
type ProductAnalytics struct {
	ID           uuid.UUID
	ProductID    uuid.UUID
	BusinessID   uuid.UUID
	TotalSales   int
	TotalProfit  decimal.Decimal
	TotalReturns int
	UpdatedAt    time.Time
}

// NewProductAnalytics creates zeroed analytics for a product
func NewProductAnalytics(product *Product) *ProductAnalytics {
	return &ProductAnalytics{
		ID:          uuid.New(),
		ProductID:   product.ID,
		BusinessID:  product.BusinessID,
		TotalProfit: decimal.Zero,
		UpdatedAt:   time.Now(),
	}
}

// Apply adds signed deltas to the counters.
// Counters may go negative when a reversal outlives modified history.
func (a *ProductAnalytics) Apply(salesDelta int, profitDelta decimal.Decimal, returnsDelta int) {
	if salesDelta == 0 && returnsDelta == 0 && profitDelta.IsZero() {
		return
	}
	a.TotalSales += salesDelta
	a.TotalProfit = a.TotalProfit.Add(profitDelta)
	a.TotalReturns += returnsDelta
	a.UpdatedAt = time.Now()
}
