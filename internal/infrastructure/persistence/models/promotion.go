package models

import (
	"time"

	"github.com/CristobalNPE/ventesca-sub000/internal/domain/promotion"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DiscountModel is the persistence model for the Discount aggregate root
type DiscountModel struct {
	BusinessAggregateModel
	Name            string                      `gorm:"type:varchar(200);not null"`
	Scope           promotion.Scope             `gorm:"type:varchar(20);not null;index"`
	ProductID       *uuid.UUID                  `gorm:"type:uuid;index"`
	CategoryID      *uuid.UUID                  `gorm:"type:uuid;index"`
	Method          promotion.ApplicationMethod `gorm:"type:varchar(20);not null"`
	ValueType       promotion.ValueType         `gorm:"type:varchar(20);not null"`
	Value           decimal.Decimal             `gorm:"type:decimal(18,4);not null"`
	MinimumQuantity int                         `gorm:"not null;default:0"`
	ValidFrom       time.Time                   `gorm:"not null"`
	ValidUntil      time.Time                   `gorm:"not null"`
	IsActive        bool                        `gorm:"not null"`
}

// TableName returns the table name for GORM
func (DiscountModel) TableName() string {
	return "discounts"
}

// ToDomain converts the persistence model to a domain Discount
func (m *DiscountModel) ToDomain() *promotion.Discount {
	return &promotion.Discount{
		BusinessAggregateRoot: m.ToDomainBusinessAggregateRoot(),
		Name:                  m.Name,
		Scope:                 m.Scope,
		ProductID:             m.ProductID,
		CategoryID:            m.CategoryID,
		Method:                m.Method,
		ValueType:             m.ValueType,
		Value:                 m.Value,
		MinimumQuantity:       m.MinimumQuantity,
		ValidFrom:             m.ValidFrom,
		ValidUntil:            m.ValidUntil,
		IsActive:              m.IsActive,
	}
}

// DiscountModelFromDomain creates a persistence model from a domain Discount
func DiscountModelFromDomain(d *promotion.Discount) *DiscountModel {
	m := &DiscountModel{
		Name:            d.Name,
		Scope:           d.Scope,
		ProductID:       d.ProductID,
		CategoryID:      d.CategoryID,
		Method:          d.Method,
		ValueType:       d.ValueType,
		Value:           d.Value,
		MinimumQuantity: d.MinimumQuantity,
		ValidFrom:       d.ValidFrom,
		ValidUntil:      d.ValidUntil,
		IsActive:        d.IsActive,
	}
	m.FromDomainBusinessAggregateRoot(d.BusinessAggregateRoot)
	return m
}
