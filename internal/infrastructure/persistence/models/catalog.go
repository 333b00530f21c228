package models

import (
	"time"

	"github.com/CristobalNPE/ventesca-sub000/internal/domain/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductModel is the persistence model for the Product aggregate root.
// DeletedAt is a plain column so soft-deleted products stay visible to order history.
type ProductModel struct {
	BusinessAggregateModel
	Code         string          `gorm:"type:varchar(50);not null"`
	Name         string          `gorm:"type:varchar(200);not null"`
	CategoryID   *uuid.UUID      `gorm:"type:uuid;index"`
	UnitCost     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	SellingPrice decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Stock        int             `gorm:"not null;default:0"`
	IsActive     bool            `gorm:"not null"`
	DeletedAt    *time.Time      `gorm:"index"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product
func (m *ProductModel) ToDomain() *catalog.Product {
	return &catalog.Product{
		BusinessAggregateRoot: m.ToDomainBusinessAggregateRoot(),
		Code:                  m.Code,
		Name:                  m.Name,
		CategoryID:            m.CategoryID,
		UnitCost:              m.UnitCost,
		SellingPrice:          m.SellingPrice,
		Stock:                 m.Stock,
		IsActive:              m.IsActive,
		DeletedAt:             m.DeletedAt,
	}
}

// ProductModelFromDomain creates a persistence model from a domain Product
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{
		Code:         p.Code,
		Name:         p.Name,
		CategoryID:   p.CategoryID,
		UnitCost:     p.UnitCost,
		SellingPrice: p.SellingPrice,
		Stock:        p.Stock,
		IsActive:     p.IsActive,
		DeletedAt:    p.DeletedAt,
	}
	m.FromDomainBusinessAggregateRoot(p.BusinessAggregateRoot)
	return m
}

// ProductAnalyticsModel stores the running sales counters of a product
type ProductAnalyticsModel struct {
	ID           uuid.UUID       `gorm:"type:uuid;primary_key"`
	ProductID    uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	BusinessID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	TotalSales   int             `gorm:"not null;default:0"`
	TotalProfit  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TotalReturns int             `gorm:"not null;default:0"`
	UpdatedAt    time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ProductAnalyticsModel) TableName() string {
	return "product_analytics"
}

// ToDomain converts the persistence model to domain ProductAnalytics
func (m *ProductAnalyticsModel) ToDomain() *catalog.ProductAnalytics {
	return &catalog.ProductAnalytics{
		ID:           m.ID,
		ProductID:    m.ProductID,
		BusinessID:   m.BusinessID,
		TotalSales:   m.TotalSales,
		TotalProfit:  m.TotalProfit,
		TotalReturns: m.TotalReturns,
		UpdatedAt:    m.UpdatedAt,
	}
}

// ProductAnalyticsModelFromDomain creates a persistence model from domain ProductAnalytics
func ProductAnalyticsModelFromDomain(a *catalog.ProductAnalytics) *ProductAnalyticsModel {
	return &ProductAnalyticsModel{
		ID:           a.ID,
		ProductID:    a.ProductID,
		BusinessID:   a.BusinessID,
		TotalSales:   a.TotalSales,
		TotalProfit:  a.TotalProfit,
		TotalReturns: a.TotalReturns,
		UpdatedAt:    a.UpdatedAt,
	}
}
