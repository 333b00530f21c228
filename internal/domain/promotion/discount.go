package promotion

import (
	"strings"
	"time"

	"github.com/CristobalNPE/ventesca-sub000/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Scope selects which lines a discount targets
type Scope string

const (
	ScopeProduct  Scope = "PRODUCT"
	ScopeCategory Scope = "CATEGORY"
	ScopeGlobal   Scope = "GLOBAL"
)

// IsValid checks if the scope is a known value
func (s Scope) IsValid() bool {
	switch s {
	case ScopeProduct, ScopeCategory, ScopeGlobal:
		return true
	}
	return false
}

// ApplicationMethod selects how a FIXED value scales with quantity
type ApplicationMethod string

const (
	// MethodByProduct applies the value once per unit
	MethodByProduct ApplicationMethod = "BY_PRODUCT"
	// MethodToTotal applies the value once per line
	MethodToTotal ApplicationMethod = "TO_TOTAL"
)

// IsValid checks if the method is a known value
func (m ApplicationMethod) IsValid() bool {
	return m == MethodByProduct || m == MethodToTotal
}

// ValueType selects between an amount and a percentage
type ValueType string

const (
	ValueFixed      ValueType = "FIXED"
	ValuePercentage ValueType = "PERCENTAGE"
)

// IsValid checks if the value type is a known value
func (v ValueType) IsValid() bool {
	return v == ValueFixed || v == ValuePercentage
}

var hundred = decimal.NewFromInt(100)

// Discount is a promotional rule attached to a product, a category or the whole business
type Discount struct {
	shared.BusinessAggregateRoot
	Name            string
	Scope           Scope
	ProductID       *uuid.UUID
	CategoryID      *uuid.UUID
	Method          ApplicationMethod
	ValueType       ValueType
	Value           decimal.Decimal
	MinimumQuantity int
	ValidFrom       time.Time
	ValidUntil      time.Time
	IsActive        bool
}

// DiscountParams groups the inputs of NewDiscount
type DiscountParams struct {
	Name            string
	Scope           Scope
	TargetID        *uuid.UUID
	Method          ApplicationMethod
	ValueType       ValueType
	Value           decimal.Decimal
	MinimumQuantity int
	ValidFrom       time.Time
	ValidUntil      time.Time
}

// NewDiscount creates an active discount after validating the rule
func NewDiscount(businessID uuid.UUID, p DiscountParams) (*Discount, error) {
	if strings.TrimSpace(p.Name) == "" {
		return nil, shared.NewValidationError("name", "Discount name cannot be empty")
	}
	if !p.Scope.IsValid() {
		return nil, shared.NewValidationError("scope", "Unknown discount scope")
	}
	if p.Scope != ScopeGlobal && (p.TargetID == nil || *p.TargetID == uuid.Nil) {
		return nil, shared.NewValidationError("target_id", "Product and category discounts need a target")
	}
	if !p.Method.IsValid() {
		return nil, shared.NewValidationError("method", "Unknown application method")
	}
	if err := validateValue(p.ValueType, p.Value); err != nil {
		return nil, err
	}
	if p.MinimumQuantity < 0 {
		return nil, shared.NewValidationError("minimum_quantity", "Minimum quantity cannot be negative")
	}
	if p.ValidUntil.Before(p.ValidFrom) {
		return nil, shared.NewValidationError("valid_until", "Validity window ends before it starts")
	}

	d := &Discount{
		BusinessAggregateRoot: shared.NewBusinessAggregateRoot(businessID),
		Name:                  p.Name,
		Scope:                 p.Scope,
		Method:                p.Method,
		ValueType:             p.ValueType,
		Value:                 p.Value,
		MinimumQuantity:       p.MinimumQuantity,
		ValidFrom:             p.ValidFrom,
		ValidUntil:            p.ValidUntil,
		IsActive:              true,
	}
	switch p.Scope {
	case ScopeProduct:
		d.ProductID = p.TargetID
	case ScopeCategory:
		d.CategoryID = p.TargetID
	}
	return d, nil
}

func validateValue(vt ValueType, value decimal.Decimal) error {
	if !vt.IsValid() {
		return shared.NewValidationError("value_type", "Unknown value type")
	}
	if value.IsNegative() {
		return shared.NewValidationError("value", "Discount value cannot be negative")
	}
	if vt == ValueFixed && value.IsZero() {
		return shared.NewValidationError("value", "Fixed discount must be greater than zero")
	}
	if vt == ValuePercentage && (value.LessThan(decimal.NewFromInt(1)) || value.GreaterThan(hundred)) {
		return shared.NewValidationError("value", "Percentage must be between 1 and 100")
	}
	return nil
}

// IsActiveAt reports whether the discount is switched on and inside its window.
// Both window bounds are inclusive.
func (d *Discount) IsActiveAt(now time.Time) bool {
	if !d.IsActive {
		return false
	}
	return !now.Before(d.ValidFrom) && !now.After(d.ValidUntil)
}

// IsEligible reports whether quantity reaches the minimum threshold
func (d *Discount) IsEligible(quantity int) bool {
	return quantity >= d.MinimumQuantity
}

// AppliesTo reports whether the discount contributes to a line at now
func (d *Discount) AppliesTo(quantity int, now time.Time) bool {
	return d.IsEligible(quantity) && d.IsActiveAt(now)
}

// AmountFor computes the raw contribution for a line, before clamping.
// Percentages always apply to the line gross.
func (d *Discount) AmountFor(quantity int, unitPrice decimal.Decimal) decimal.Decimal {
	qty := decimal.NewFromInt(int64(quantity))
	switch d.ValueType {
	case ValuePercentage:
		return unitPrice.Mul(qty).Mul(d.Value).Div(hundred).Round(MoneyPlaces)
	case ValueFixed:
		if d.Method == MethodByProduct {
			return d.Value.Mul(qty)
		}
		return d.Value
	}
	return decimal.Zero
}

// Deactivate switches the discount off
func (d *Discount) Deactivate() {
	d.IsActive = false
	d.Touch()
	d.IncrementVersion()
}
