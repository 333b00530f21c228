package trade

import (
	"github.com/CristobalNPE/ventesca-sub000/internal/domain/shared"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// LineTotals is the computed price of a single line
type LineTotals struct {
	TotalPrice    decimal.Decimal
	TotalDiscount decimal.Decimal
}

// CalculateLineTotals computes the signed total and discount of a line.
// RETURN totals are negative and never carry a discount. PROMO totals are
// floored at zero, with the reported discount capped to match.
func CalculateLineTotals(unitPrice decimal.Decimal, quantity int, lineType LineType, discount decimal.Decimal) LineTotals {
	base := unitPrice.Mul(decimal.NewFromInt(int64(quantity))).Abs()

	switch lineType {
	case LineTypeReturn:
		return LineTotals{TotalPrice: base.Neg(), TotalDiscount: decimal.Zero}
	case LineTypePromo:
		if discount.IsNegative() {
			discount = decimal.Zero
		}
		if discount.GreaterThan(base) {
			discount = base
		}
		return LineTotals{TotalPrice: base.Sub(discount), TotalDiscount: discount}
	default:
		return LineTotals{TotalPrice: base, TotalDiscount: decimal.Zero}
	}
}

// DirectDiscountKind selects a flat or percentage order-level discount
type DirectDiscountKind string

const (
	DirectDiscountNone       DirectDiscountKind = ""
	DirectDiscountFixed      DirectDiscountKind = "FIXED"
	DirectDiscountPercentage DirectDiscountKind = "PERCENTAGE"
)

// DirectDiscount is an order-level discount applied on top of line promotions.
// The zero value means no direct discount.
type DirectDiscount struct {
	Kind  DirectDiscountKind
	Value decimal.Decimal
}

// NewDirectDiscount validates a direct discount against the current line sum.
// A flat value may not exceed the sum; a percentage must lie in [1,100].
// A zero flat value clears the discount.
func NewDirectDiscount(kind DirectDiscountKind, value, lineSum decimal.Decimal) (DirectDiscount, error) {
	switch kind {
	case DirectDiscountFixed:
		if value.IsNegative() {
			return DirectDiscount{}, shared.NewValidationError("value", "Direct discount cannot be negative")
		}
		if value.GreaterThan(lineSum) {
			return DirectDiscount{}, shared.NewValidationError("value", "Direct discount cannot exceed the order total")
		}
		if value.IsZero() {
			return DirectDiscount{}, nil
		}
	case DirectDiscountPercentage:
		if value.LessThan(decimal.NewFromInt(1)) || value.GreaterThan(hundred) {
			return DirectDiscount{}, shared.NewValidationError("value", "Direct discount percentage must be between 1 and 100")
		}
	case DirectDiscountNone:
		return DirectDiscount{}, nil
	default:
		return DirectDiscount{}, shared.NewValidationError("kind", "Direct discount kind must be FIXED or PERCENTAGE")
	}
	return DirectDiscount{Kind: kind, Value: value}, nil
}

// IsZero reports whether no direct discount is set
func (d DirectDiscount) IsZero() bool {
	return d.Kind == DirectDiscountNone || d.Value.IsZero()
}

// AmountFor derives the discount amount for the given line sum, capped so the
// order total never drops below zero.
func (d DirectDiscount) AmountFor(lineSum decimal.Decimal) decimal.Decimal {
	if d.IsZero() || !lineSum.IsPositive() {
		return decimal.Zero
	}
	var amount decimal.Decimal
	switch d.Kind {
	case DirectDiscountPercentage:
		amount = lineSum.Mul(d.Value).Div(hundred).Round(2)
	default:
		amount = d.Value
	}
	if amount.GreaterThan(lineSum) {
		amount = lineSum
	}
	return amount
}

// OrderTotals are the derived aggregate amounts of an order
type OrderTotals struct {
	Subtotal       decimal.Decimal
	TotalDiscount  decimal.Decimal
	DirectDiscount decimal.Decimal
	Total          decimal.Decimal
}

// Equal compares two totals by value
func (t OrderTotals) Equal(o OrderTotals) bool {
	return t.Subtotal.Equal(o.Subtotal) &&
		t.TotalDiscount.Equal(o.TotalDiscount) &&
		t.DirectDiscount.Equal(o.DirectDiscount) &&
		t.Total.Equal(o.Total)
}

// LineSum adds up the signed totals of all lines
func LineSum(items []LineItem) decimal.Decimal {
	sum := decimal.Zero
	for i := range items {
		sum = sum.Add(items[i].TotalPrice)
	}
	return sum
}

// CalculateOrderTotals derives subtotal, promo discount and total from the lines
// and the direct discount. It is a pure function of its inputs.
func CalculateOrderTotals(items []LineItem, direct DirectDiscount) OrderTotals {
	promo := decimal.Zero
	for i := range items {
		if items[i].Type == LineTypePromo {
			promo = promo.Add(items[i].TotalDiscount)
		}
	}
	lineSum := LineSum(items)
	directAmount := direct.AmountFor(lineSum)
	total := lineSum.Sub(directAmount)

	return OrderTotals{
		Subtotal:       total.Add(promo).Add(directAmount),
		TotalDiscount:  promo,
		DirectDiscount: directAmount,
		Total:          total,
	}
}
