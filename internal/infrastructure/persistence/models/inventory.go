package models

import (
	"time"

	"github.com/CristobalNPE/ventesca-sub000/internal/domain/inventory"
	"github.com/CristobalNPE/ventesca-sub000/internal/domain/trade"
	"github.com/google/uuid"
)

// StockMovementModel is one row of the append-only stock ledger
type StockMovementModel struct {
	ID             uuid.UUID                   `gorm:"type:uuid;primary_key"`
	BusinessID     uuid.UUID                   `gorm:"type:uuid;not null;index"`
	ProductID      uuid.UUID                   `gorm:"type:uuid;not null;index:idx_stock_movements_product,priority:1"`
	OrderID        uuid.UUID                   `gorm:"type:uuid;not null;index"`
	Action         trade.OrderAction           `gorm:"type:varchar(20);not null"`
	Effect         trade.EffectDirection       `gorm:"type:varchar(20);not null"`
	Direction      inventory.MovementDirection `gorm:"type:varchar(20);not null"`
	RequestedDelta int                         `gorm:"not null"`
	AppliedDelta   int                         `gorm:"not null"`
	StockBefore    int                         `gorm:"not null"`
	StockAfter     int                         `gorm:"not null"`
	Clamped        bool                        `gorm:"not null;default:false"`
	CreatedAt      time.Time                   `gorm:"not null;index:idx_stock_movements_product,priority:2"`
}

// TableName returns the table name for GORM
func (StockMovementModel) TableName() string {
	return "stock_movements"
}

// ToDomain converts the persistence model to a domain StockMovement
func (m *StockMovementModel) ToDomain() *inventory.StockMovement {
	return &inventory.StockMovement{
		ID:             m.ID,
		BusinessID:     m.BusinessID,
		ProductID:      m.ProductID,
		OrderID:        m.OrderID,
		Action:         m.Action,
		Effect:         m.Effect,
		Direction:      m.Direction,
		RequestedDelta: m.RequestedDelta,
		AppliedDelta:   m.AppliedDelta,
		StockBefore:    m.StockBefore,
		StockAfter:     m.StockAfter,
		Clamped:        m.Clamped,
		CreatedAt:      m.CreatedAt,
	}
}

// StockMovementModelFromDomain creates a persistence model from a domain StockMovement
func StockMovementModelFromDomain(mv *inventory.StockMovement) *StockMovementModel {
	return &StockMovementModel{
		ID:             mv.ID,
		BusinessID:     mv.BusinessID,
		ProductID:      mv.ProductID,
		OrderID:        mv.OrderID,
		Action:         mv.Action,
		Effect:         mv.Effect,
		Direction:      mv.Direction,
		RequestedDelta: mv.RequestedDelta,
		AppliedDelta:   mv.AppliedDelta,
		StockBefore:    mv.StockBefore,
		StockAfter:     mv.StockAfter,
		Clamped:        mv.Clamped,
		CreatedAt:      mv.CreatedAt,
	}
}

// AllModels returns every model in migration order
func AllModels() []any {
	return []any{
		&ProductModel{},
		&ProductAnalyticsModel{},
		&DiscountModel{},
		&OrderModel{},
		&LineItemModel{},
		&StockMovementModel{},
	}
}
