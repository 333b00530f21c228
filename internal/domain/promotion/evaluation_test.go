package promotion

import (
	"errors"
	"testing"
	"time"

	"github.com/CristobalNPE/ventesca-sub000/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testNow    = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	testPrice  = decimal.NewFromInt(1000)
	businessID = uuid.New()
)

func newTestDiscount(t *testing.T, vt ValueType, method ApplicationMethod, value int64, minQty int) Discount {
	t.Helper()
	d, err := NewDiscount(businessID, DiscountParams{
		Name:            "test",
		Scope:           ScopeGlobal,
		Method:          method,
		ValueType:       vt,
		Value:           decimal.NewFromInt(value),
		MinimumQuantity: minQty,
		ValidFrom:       testNow.Add(-24 * time.Hour),
		ValidUntil:      testNow.Add(24 * time.Hour),
	})
	require.NoError(t, err)
	return *d
}

// ============================================
// Discount construction
// ============================================

func TestNewDiscount_Validation(t *testing.T) {
	productID := uuid.New()
	base := DiscountParams{
		Name:       "spring sale",
		Scope:      ScopeProduct,
		TargetID:   &productID,
		Method:     MethodByProduct,
		ValueType:  ValuePercentage,
		Value:      decimal.NewFromInt(10),
		ValidFrom:  testNow,
		ValidUntil: testNow.Add(time.Hour),
	}

	t.Run("valid product discount", func(t *testing.T) {
		d, err := NewDiscount(businessID, base)
		require.NoError(t, err)
		assert.Equal(t, &productID, d.ProductID)
		assert.Nil(t, d.CategoryID)
		assert.True(t, d.IsActive)
	})

	tests := []struct {
		name  string
		field string
		mut   func(p *DiscountParams)
	}{
		{"empty name", "name", func(p *DiscountParams) { p.Name = "" }},
		{"missing target", "target_id", func(p *DiscountParams) { p.TargetID = nil }},
		{"percentage above 100", "value", func(p *DiscountParams) { p.Value = decimal.NewFromInt(101) }},
		{"percentage below 1", "value", func(p *DiscountParams) { p.Value = decimal.NewFromFloat(0.5) }},
		{"negative fixed", "value", func(p *DiscountParams) {
			p.ValueType = ValueFixed
			p.Value = decimal.NewFromInt(-5)
		}},
		{"zero fixed", "value", func(p *DiscountParams) {
			p.ValueType = ValueFixed
			p.Value = decimal.Zero
		}},
		{"negative minimum", "minimum_quantity", func(p *DiscountParams) { p.MinimumQuantity = -1 }},
		{"inverted window", "valid_until", func(p *DiscountParams) { p.ValidUntil = p.ValidFrom.Add(-time.Second) }},
		{"unknown scope", "scope", func(p *DiscountParams) { p.Scope = "STORE" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := base
			tt.mut(&p)
			_, err := NewDiscount(businessID, p)
			require.Error(t, err)
			assert.True(t, errors.Is(err, shared.ErrInvalidInput))

			var de *shared.DomainError
			require.True(t, errors.As(err, &de))
			assert.Equal(t, tt.field, de.Field)
		})
	}
}

func TestDiscount_IsActiveAt(t *testing.T) {
	d := newTestDiscount(t, ValueFixed, MethodToTotal, 100, 0)

	assert.True(t, d.IsActiveAt(testNow))
	assert.True(t, d.IsActiveAt(d.ValidFrom), "window start is inclusive")
	assert.True(t, d.IsActiveAt(d.ValidUntil), "window end is inclusive")
	assert.False(t, d.IsActiveAt(d.ValidUntil.Add(time.Nanosecond)))
	assert.False(t, d.IsActiveAt(d.ValidFrom.Add(-time.Nanosecond)))

	d.Deactivate()
	assert.False(t, d.IsActiveAt(testNow))
}

// ============================================
// Evaluate
// ============================================

func TestEvaluate_Amounts(t *testing.T) {
	tests := []struct {
		name     string
		discount Discount
		qty      int
		want     int64
	}{
		{"percentage uses line gross", newTestDiscount(t, ValuePercentage, MethodByProduct, 10, 0), 3, 300},
		{"percentage to-total uses line gross too", newTestDiscount(t, ValuePercentage, MethodToTotal, 10, 0), 3, 300},
		{"fixed by-product scales with quantity", newTestDiscount(t, ValueFixed, MethodByProduct, 50, 0), 4, 200},
		{"fixed to-total is flat", newTestDiscount(t, ValueFixed, MethodToTotal, 50, 0), 4, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eval := Evaluate(tt.qty, testPrice, []Discount{tt.discount}, testNow)

			require.True(t, eval.HasApplicable())
			assert.True(t, eval.Total.Equal(decimal.NewFromInt(tt.want)), "got %s", eval.Total)
			assert.False(t, eval.Clamped)
		})
	}
}

func TestEvaluate_MinimumQuantityThreshold(t *testing.T) {
	d := newTestDiscount(t, ValueFixed, MethodToTotal, 100, 5)

	below := Evaluate(4, testPrice, []Discount{d}, testNow)
	assert.False(t, below.HasApplicable())
	assert.True(t, below.Total.IsZero())

	at := Evaluate(5, testPrice, []Discount{d}, testNow)
	assert.True(t, at.HasApplicable())
	assert.True(t, at.Total.Equal(decimal.NewFromInt(100)))
}

func TestEvaluate_SkipsInactiveAndExpired(t *testing.T) {
	inactive := newTestDiscount(t, ValueFixed, MethodToTotal, 100, 0)
	inactive.IsActive = false
	expired := newTestDiscount(t, ValueFixed, MethodToTotal, 100, 0)
	expired.ValidUntil = testNow.Add(-time.Minute)

	eval := Evaluate(1, testPrice, []Discount{inactive, expired}, testNow)

	assert.False(t, eval.HasApplicable())
	assert.True(t, eval.Total.IsZero())
}

func TestEvaluate_StacksAndClampsToGross(t *testing.T) {
	pct := newTestDiscount(t, ValuePercentage, MethodByProduct, 90, 0)
	flat := newTestDiscount(t, ValueFixed, MethodByProduct, 500, 0)

	eval := Evaluate(2, testPrice, []Discount{pct, flat}, testNow)

	require.Len(t, eval.Applied, 2)
	assert.True(t, eval.Applied[0].Amount.Equal(decimal.NewFromInt(1800)))
	assert.True(t, eval.Applied[1].Amount.Equal(decimal.NewFromInt(1000)))
	assert.True(t, eval.Total.Equal(decimal.NewFromInt(2000)))
	assert.True(t, eval.Clamped)
}

func TestEvaluate_IsDeterministic(t *testing.T) {
	discounts := []Discount{
		newTestDiscount(t, ValuePercentage, MethodByProduct, 15, 2),
		newTestDiscount(t, ValueFixed, MethodToTotal, 30, 1),
	}

	first := Evaluate(3, decimal.NewFromFloat(19.99), discounts, testNow)
	second := Evaluate(3, decimal.NewFromFloat(19.99), discounts, testNow)

	assert.True(t, first.Total.Equal(second.Total))
	assert.Equal(t, len(first.Applied), len(second.Applied))
	// 59.97 * 15% = 8.9955 -> 9.00, plus 30
	assert.True(t, first.Total.Equal(decimal.NewFromFloat(39)), "got %s", first.Total)
}

func TestEvaluate_ZeroQuantity(t *testing.T) {
	eval := Evaluate(0, testPrice, []Discount{newTestDiscount(t, ValueFixed, MethodToTotal, 10, 0)}, testNow)

	assert.False(t, eval.HasApplicable())
	assert.True(t, eval.Gross.IsZero())
}

func TestEvaluate_ZeroAmountDoesNotApply(t *testing.T) {
	// 1% of a 0.40 line rounds to zero
	d := newTestDiscount(t, ValuePercentage, MethodByProduct, 1, 0)
	eval := Evaluate(1, decimal.NewFromFloat(0.40), []Discount{d}, testNow)

	assert.False(t, eval.HasApplicable())
	assert.Empty(t, eval.Applied)
	assert.True(t, eval.Total.IsZero())

	// a stored discount is not revalidated on load
	d.ValueType = ValueFixed
	d.Value = decimal.Zero
	eval = Evaluate(3, testPrice, []Discount{d}, testNow)
	assert.False(t, eval.HasApplicable())
}

func TestEvaluation_HasApplicableIgnoresZeroEntries(t *testing.T) {
	eval := Evaluation{Applied: []AppliedDiscount{{DiscountID: uuid.New(), Amount: decimal.Zero}}}
	assert.False(t, eval.HasApplicable())

	eval.Applied = append(eval.Applied, AppliedDiscount{DiscountID: uuid.New(), Amount: decimal.NewFromInt(5)})
	assert.True(t, eval.HasApplicable())
}
