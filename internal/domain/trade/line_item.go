package trade

import (
	"time"

	"github.com/CristobalNPE/ventesca-sub000/internal/domain/promotion"
	"github.com/CristobalNPE/ventesca-sub000/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineType represents how a line participates in the order
type LineType string

const (
	LineTypeSell   LineType = "SELL"
	LineTypeReturn LineType = "RETURN"
	LineTypePromo  LineType = "PROMO"
)

// IsValid checks if the line type is a known value
func (t LineType) IsValid() bool {
	switch t {
	case LineTypeSell, LineTypeReturn, LineTypePromo:
		return true
	}
	return false
}

// String returns the string representation of LineType
func (t LineType) String() string {
	return string(t)
}

// Sign is +1 for lines that take goods out (SELL, PROMO) and -1 for RETURN
func (t LineType) Sign() int {
	if t == LineTypeReturn {
		return -1
	}
	return 1
}

// LineItem is one product within one order
type LineItem struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	ProductID uuid.UUID
	Quantity  int
	Type      LineType
	// UnitPrice is the selling price used by the last recomputation
	UnitPrice     decimal.Decimal
	TotalPrice    decimal.Decimal
	TotalDiscount decimal.Decimal
	// UnitCost and Profit are snapshotted when the order effects are applied
	UnitCost decimal.Decimal
	Profit   decimal.Decimal
	// AppliedStockDelta is the stock change actually written for this line, after clamping
	AppliedStockDelta int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// NewLineItem creates a line with zero totals. Call Recalculate before use.
func NewLineItem(orderID, productID uuid.UUID, quantity int, lineType LineType) (*LineItem, error) {
	if productID == uuid.Nil {
		return nil, shared.NewValidationError("product_id", "Product ID cannot be empty")
	}
	if err := validateLine(quantity, lineType); err != nil {
		return nil, err
	}

	now := time.Now()
	return &LineItem{
		ID:            uuid.New(),
		OrderID:       orderID,
		ProductID:     productID,
		Quantity:      quantity,
		Type:          lineType,
		UnitPrice:     decimal.Zero,
		TotalPrice:    decimal.Zero,
		TotalDiscount: decimal.Zero,
		UnitCost:      decimal.Zero,
		Profit:        decimal.Zero,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

func validateLine(quantity int, lineType LineType) error {
	if quantity < 1 {
		return shared.NewValidationError("quantity", "Quantity must be at least 1")
	}
	if !lineType.IsValid() {
		return shared.NewValidationError("type", "Line type must be SELL, RETURN or PROMO")
	}
	return nil
}

// Change sets a new quantity and requested type. Totals are stale until Recalculate.
func (l *LineItem) Change(quantity int, lineType LineType) error {
	if err := validateLine(quantity, lineType); err != nil {
		return err
	}
	l.Quantity = quantity
	l.Type = lineType
	l.UpdatedAt = time.Now()
	return nil
}

// Sign returns the sign of the line type
func (l *LineItem) Sign() int {
	return l.Type.Sign()
}

// Recalculate recomputes the line totals from scratch. A PROMO line with no
// applicable discount falls back to SELL. It reports whether anything changed.
func (l *LineItem) Recalculate(unitPrice decimal.Decimal, eval promotion.Evaluation) bool {
	lineType := l.Type
	if lineType == LineTypePromo && !eval.HasApplicable() {
		lineType = LineTypeSell
	}
	totals := CalculateLineTotals(unitPrice, l.Quantity, lineType, eval.Total)

	changed := lineType != l.Type ||
		!unitPrice.Equal(l.UnitPrice) ||
		!totals.TotalPrice.Equal(l.TotalPrice) ||
		!totals.TotalDiscount.Equal(l.TotalDiscount)
	if !changed {
		return false
	}

	l.Type = lineType
	l.UnitPrice = unitPrice
	l.TotalPrice = totals.TotalPrice
	l.TotalDiscount = totals.TotalDiscount
	l.UpdatedAt = time.Now()
	return true
}

// LineProfit derives the profit of the line at unitCost.
// RETURN lines carry negative profit.
func (l *LineItem) LineProfit(unitCost decimal.Decimal) decimal.Decimal {
	cost := unitCost.Mul(decimal.NewFromInt(int64(l.Quantity * l.Sign())))
	return l.TotalPrice.Sub(cost)
}

// RecordEffect snapshots the economics written when the order effects were applied
func (l *LineItem) RecordEffect(unitCost, profit decimal.Decimal, appliedStockDelta int) {
	l.UnitCost = unitCost
	l.Profit = profit
	l.AppliedStockDelta = appliedStockDelta
	l.UpdatedAt = time.Now()
}

// ClearEffect marks the stock effect as reversed. The cost and profit snapshot is kept.
func (l *LineItem) ClearEffect() {
	l.AppliedStockDelta = 0
	l.UpdatedAt = time.Now()
}
