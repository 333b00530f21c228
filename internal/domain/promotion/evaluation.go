package promotion

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MoneyPlaces is the rounding scale of derived money amounts
const MoneyPlaces int32 = 2

// AppliedDiscount is one discount that contributed to a line
type AppliedDiscount struct {
	DiscountID uuid.UUID
	Name       string
	Amount     decimal.Decimal
}

// Evaluation is the result of evaluating a candidate discount set against one line
type Evaluation struct {
	Gross   decimal.Decimal
	Applied []AppliedDiscount
	// Total is the summed contribution, never more than Gross
	Total   decimal.Decimal
	Clamped bool
}

// HasApplicable reports whether at least one eligible and active discount
// contributes a positive amount
func (e Evaluation) HasApplicable() bool {
	for _, a := range e.Applied {
		if a.Amount.IsPositive() {
			return true
		}
	}
	return false
}

// Evaluate sums the contribution of every eligible and active discount for a line of
// quantity units at unitPrice. It has no side effects; the same inputs always
// produce the same Evaluation.
func Evaluate(quantity int, unitPrice decimal.Decimal, discounts []Discount, now time.Time) Evaluation {
	gross := unitPrice.Mul(decimal.NewFromInt(int64(quantity))).Abs()
	eval := Evaluation{Gross: gross, Total: decimal.Zero}
	if quantity <= 0 {
		return eval
	}

	for i := range discounts {
		d := &discounts[i]
		if !d.AppliesTo(quantity, now) {
			continue
		}
		amount := d.AmountFor(quantity, unitPrice)
		if !amount.IsPositive() {
			continue
		}
		eval.Applied = append(eval.Applied, AppliedDiscount{
			DiscountID: d.ID,
			Name:       d.Name,
			Amount:     amount,
		})
		eval.Total = eval.Total.Add(amount)
	}

	if eval.Total.GreaterThan(gross) {
		eval.Total = gross
		eval.Clamped = true
	}
	return eval
}
