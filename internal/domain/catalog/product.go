package catalog

import (
	"strings"
	"time"

	"github.com/CristobalNPE/ventesca-sub000/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a sellable item owned by a business.
// Stock is a plain unit count and never goes below zero.
type Product struct {
	shared.BusinessAggregateRoot
	Code         string
	Name         string
	CategoryID   *uuid.UUID
	UnitCost     decimal.Decimal
	SellingPrice decimal.Decimal
	Stock        int
	IsActive     bool
	DeletedAt    *time.Time
}

// NewProduct creates a new active product
func NewProduct(businessID uuid.UUID, code, name string, unitCost, sellingPrice decimal.Decimal, stock int) (*Product, error) {
	if strings.TrimSpace(code) == "" {
		return nil, shared.NewValidationError("code", "Product code cannot be empty")
	}
	if len(code) > 50 {
		return nil, shared.NewValidationError("code", "Product code cannot exceed 50 characters")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewValidationError("name", "Product name cannot be empty")
	}
	if stock < 0 {
		return nil, shared.NewValidationError("stock", "Stock cannot be negative")
	}

	if err := validatePrices(unitCost, sellingPrice); err != nil {
		return nil, err
	}

	return &Product{
		BusinessAggregateRoot: shared.NewBusinessAggregateRoot(businessID),
		Code:                  strings.ToUpper(code),
		Name:                  name,
		UnitCost:              unitCost,
		SellingPrice:          sellingPrice,
		Stock:                 stock,
		IsActive:              true,
	}, nil
}

// SetPrices updates cost and selling price
func (p *Product) SetPrices(unitCost, sellingPrice decimal.Decimal) error {
	if err := validatePrices(unitCost, sellingPrice); err != nil {
		return err
	}

	p.UnitCost = unitCost
	p.SellingPrice = sellingPrice
	p.Touch()
	p.IncrementVersion()
	return nil
}

func validatePrices(unitCost, sellingPrice decimal.Decimal) error {
	if unitCost.IsNegative() {
		return shared.NewValidationError("unit_cost", "Unit cost cannot be negative")
	}
	if sellingPrice.IsNegative() {
		return shared.NewValidationError("selling_price", "Selling price cannot be negative")
	}
	return nil
}

// SetCategory assigns or clears the product category
func (p *Product) SetCategory(categoryID *uuid.UUID) {
	p.CategoryID = categoryID
	p.Touch()
	p.IncrementVersion()
}

// ProfitPerUnit is selling price minus cost
func (p *Product) ProfitPerUnit() decimal.Decimal {
	return p.SellingPrice.Sub(p.UnitCost)
}

// IsDeleted reports whether the product was soft-deleted
func (p *Product) IsDeleted() bool {
	return p.DeletedAt != nil
}

// IsSellable reports whether new lines may reference the product
func (p *Product) IsSellable() bool {
	return p.IsActive && !p.IsDeleted()
}

// Deactivate hides the product from new sales
func (p *Product) Deactivate() {
	p.IsActive = false
	p.Touch()
	p.IncrementVersion()
}

// Activate makes the product available for sale again
func (p *Product) Activate() error {
	if p.IsDeleted() {
		return shared.NewDomainError(shared.CodeInvalidState, "Cannot activate a deleted product")
	}
	p.IsActive = true
	p.Touch()
	p.IncrementVersion()
	return nil
}

// SoftDelete marks the product deleted. Historical orders keep referencing it.
func (p *Product) SoftDelete() {
	now := time.Now()
	p.DeletedAt = &now
	p.IsActive = false
	p.UpdatedAt = now
	p.IncrementVersion()
}

// CanFulfil reports whether quantity units are currently in stock
func (p *Product) CanFulfil(quantity int) bool {
	return quantity <= p.Stock
}

// ApplyStockDelta adds delta to stock, flooring the result at zero.
// It returns the delta actually applied; clamped is true when the floor
// swallowed part of a negative delta.
func (p *Product) ApplyStockDelta(delta int) (applied int, clamped bool) {
	next := p.Stock + delta
	if next < 0 {
		applied = -p.Stock
		clamped = true
		next = 0
	} else {
		applied = delta
	}

	if applied != 0 {
		p.Stock = next
		p.Touch()
		p.IncrementVersion()
	}
	if clamped {
		p.AddDomainEvent(NewProductStockClampedEvent(p, delta, applied))
	}
	return applied, clamped
}
