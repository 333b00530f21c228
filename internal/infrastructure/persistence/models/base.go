package models

import (
	"time"

	"github.com/CristobalNPE/ventesca-sub000/internal/domain/shared"
	"github.com/google/uuid"
)

// BaseModel provides common persistence fields for all models
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// AggregateModel adds the optimistic-lock version of an aggregate root
type AggregateModel struct {
	BaseModel
	Version int `gorm:"not null;default:1"`
}

// FromDomainAggregateRoot populates AggregateModel from a domain BaseAggregateRoot
func (m *AggregateModel) FromDomainAggregateRoot(a shared.BaseAggregateRoot) {
	m.ID = a.ID
	m.CreatedAt = a.CreatedAt
	m.UpdatedAt = a.UpdatedAt
	m.Version = a.Version
}

// ToDomainAggregateRoot builds a domain BaseAggregateRoot
func (m *AggregateModel) ToDomainAggregateRoot() shared.BaseAggregateRoot {
	return shared.BaseAggregateRoot{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		Version: m.Version,
	}
}

// BusinessAggregateModel scopes an aggregate row to its business
type BusinessAggregateModel struct {
	AggregateModel
	BusinessID uuid.UUID `gorm:"type:uuid;not null;index"`
}

// FromDomainBusinessAggregateRoot populates the model from a domain aggregate root
func (m *BusinessAggregateModel) FromDomainBusinessAggregateRoot(a shared.BusinessAggregateRoot) {
	m.FromDomainAggregateRoot(a.BaseAggregateRoot)
	m.BusinessID = a.BusinessID
}

// ToDomainBusinessAggregateRoot builds the embedded domain aggregate root
func (m *BusinessAggregateModel) ToDomainBusinessAggregateRoot() shared.BusinessAggregateRoot {
	return shared.BusinessAggregateRoot{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		BusinessID:        m.BusinessID,
	}
}
