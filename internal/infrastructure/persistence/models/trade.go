package models

import (
	"time"

	"github.com/CristobalNPE/ventesca-sub000/internal/domain/shared"
	"github.com/CristobalNPE/ventesca-sub000/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderModel is the persistence model for the Order aggregate root.
// At most one PENDING order may exist per seller and business.
type OrderModel struct {
	AggregateModel
	BusinessID           uuid.UUID                `gorm:"type:uuid;not null;index;uniqueIndex:idx_orders_pending_seller,priority:1,where:status = 'PENDING'"`
	SellerID             uuid.UUID                `gorm:"type:uuid;not null;index;uniqueIndex:idx_orders_pending_seller,priority:2,where:status = 'PENDING'"`
	Status               trade.OrderStatus        `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	PaymentMethod        trade.PaymentMethod      `gorm:"type:varchar(20);not null;default:'CASH'"`
	DirectDiscountKind   trade.DirectDiscountKind `gorm:"type:varchar(20);not null;default:''"`
	DirectDiscountValue  decimal.Decimal          `gorm:"type:decimal(18,4);not null;default:0"`
	Subtotal             decimal.Decimal          `gorm:"type:decimal(18,4);not null;default:0"`
	TotalDiscount        decimal.Decimal          `gorm:"type:decimal(18,4);not null;default:0"`
	DirectDiscountAmount decimal.Decimal          `gorm:"type:decimal(18,4);not null;default:0"`
	Total                decimal.Decimal          `gorm:"type:decimal(18,4);not null;default:0"`
	EffectsApplied       bool                     `gorm:"not null;default:false"`
	CompletedAt          *time.Time
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model and its loaded lines to a domain Order
func (m *OrderModel) ToDomain(items []LineItemModel) *trade.Order {
	order := &trade.Order{
		BusinessAggregateRoot: shared.BusinessAggregateRoot{
			BaseAggregateRoot: m.ToDomainAggregateRoot(),
			BusinessID:        m.BusinessID,
		},
		SellerID:              m.SellerID,
		Status:                m.Status,
		PaymentMethod:         m.PaymentMethod,
		DirectDiscount: trade.DirectDiscount{
			Kind:  m.DirectDiscountKind,
			Value: m.DirectDiscountValue,
		},
		Subtotal:             m.Subtotal,
		TotalDiscount:        m.TotalDiscount,
		DirectDiscountAmount: m.DirectDiscountAmount,
		Total:                m.Total,
		EffectsApplied:       m.EffectsApplied,
		CompletedAt:          m.CompletedAt,
		Items:                make([]trade.LineItem, len(items)),
	}
	for i := range items {
		order.Items[i] = *items[i].ToDomain()
	}
	return order
}

// OrderModelFromDomain creates a persistence model from a domain Order. Lines are converted separately.
func OrderModelFromDomain(o *trade.Order) *OrderModel {
	m := &OrderModel{
		BusinessID:           o.BusinessID,
		SellerID:             o.SellerID,
		Status:               o.Status,
		PaymentMethod:        o.PaymentMethod,
		DirectDiscountKind:   o.DirectDiscount.Kind,
		DirectDiscountValue:  o.DirectDiscount.Value,
		Subtotal:             o.Subtotal,
		TotalDiscount:        o.TotalDiscount,
		DirectDiscountAmount: o.DirectDiscountAmount,
		Total:                o.Total,
		EffectsApplied:       o.EffectsApplied,
		CompletedAt:          o.CompletedAt,
	}
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	return m
}

// LineItemModel is the persistence model for one order line
type LineItemModel struct {
	ID                uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrderID           uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_line_items_order_product,priority:1"`
	ProductID         uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:idx_line_items_order_product,priority:2"`
	Quantity          int             `gorm:"not null"`
	Type              trade.LineType  `gorm:"type:varchar(20);not null"`
	UnitPrice         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TotalPrice        decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TotalDiscount     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	UnitCost          decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Profit            decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	AppliedStockDelta int             `gorm:"not null;default:0"`
	CreatedAt         time.Time       `gorm:"not null"`
	UpdatedAt         time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (LineItemModel) TableName() string {
	return "order_line_items"
}

// ToDomain converts the persistence model to a domain LineItem
func (m *LineItemModel) ToDomain() *trade.LineItem {
	return &trade.LineItem{
		ID:                m.ID,
		OrderID:           m.OrderID,
		ProductID:         m.ProductID,
		Quantity:          m.Quantity,
		Type:              m.Type,
		UnitPrice:         m.UnitPrice,
		TotalPrice:        m.TotalPrice,
		TotalDiscount:     m.TotalDiscount,
		UnitCost:          m.UnitCost,
		Profit:            m.Profit,
		AppliedStockDelta: m.AppliedStockDelta,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

// LineItemModelFromDomain creates a persistence model from a domain LineItem
func LineItemModelFromDomain(item *trade.LineItem) *LineItemModel {
	return &LineItemModel{
		ID:                item.ID,
		OrderID:           item.OrderID,
		ProductID:         item.ProductID,
		Quantity:          item.Quantity,
		Type:              item.Type,
		UnitPrice:         item.UnitPrice,
		TotalPrice:        item.TotalPrice,
		TotalDiscount:     item.TotalDiscount,
		UnitCost:          item.UnitCost,
		Profit:            item.Profit,
		AppliedStockDelta: item.AppliedStockDelta,
		CreatedAt:         item.CreatedAt,
		UpdatedAt:         item.UpdatedAt,
	}
}
