package trade

import (
	"github.com/CristobalNPE/ventesca-sub000/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeOrder = "Order"

// Event type constants
const (
	EventTypeOrderFinished  = "OrderFinished"
	EventTypeOrderDiscarded = "OrderDiscarded"
	EventTypeOrderReopened  = "OrderReopened"
	EventTypeOrderDeleted   = "OrderDeleted"
)

// OrderFinishedEvent is published when a PENDING order is closed
type OrderFinishedEvent struct {
	shared.BaseDomainEvent
	OrderID       uuid.UUID       `json:"order_id"`
	SellerID      uuid.UUID       `json:"seller_id"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	ItemCount     int             `json:"item_count"`
	Total         decimal.Decimal `json:"total"`
}

// NewOrderFinishedEvent creates a new OrderFinishedEvent
func NewOrderFinishedEvent(o *Order) *OrderFinishedEvent {
	return &OrderFinishedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderFinished, AggregateTypeOrder, o.ID, o.BusinessID),
		OrderID:         o.ID,
		SellerID:        o.SellerID,
		PaymentMethod:   o.PaymentMethod,
		ItemCount:       len(o.Items),
		Total:           o.Total,
	}
}

// OrderDiscardedEvent is published when an order is discarded
type OrderDiscardedEvent struct {
	shared.BaseDomainEvent
	OrderID        uuid.UUID   `json:"order_id"`
	PreviousStatus OrderStatus `json:"previous_status"`
}

// NewOrderDiscardedEvent creates a new OrderDiscardedEvent
func NewOrderDiscardedEvent(o *Order, previous OrderStatus) *OrderDiscardedEvent {
	return &OrderDiscardedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderDiscarded, AggregateTypeOrder, o.ID, o.BusinessID),
		OrderID:         o.ID,
		PreviousStatus:  previous,
	}
}

// OrderReopenedEvent is published when a DISCARDED order is undiscarded
type OrderReopenedEvent struct {
	shared.BaseDomainEvent
	OrderID uuid.UUID       `json:"order_id"`
	Total   decimal.Decimal `json:"total"`
}

// NewOrderReopenedEvent creates a new OrderReopenedEvent
func NewOrderReopenedEvent(o *Order) *OrderReopenedEvent {
	return &OrderReopenedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderReopened, AggregateTypeOrder, o.ID, o.BusinessID),
		OrderID:         o.ID,
		Total:           o.Total,
	}
}

// OrderDeletedEvent is published when an order is permanently removed
type OrderDeletedEvent struct {
	shared.BaseDomainEvent
	OrderID  uuid.UUID       `json:"order_id"`
	Status   OrderStatus     `json:"status"`
	Reversed bool            `json:"reversed"`
	Total    decimal.Decimal `json:"total"`
}

// NewOrderDeletedEvent creates a new OrderDeletedEvent
func NewOrderDeletedEvent(o *Order, effect EffectDirection) *OrderDeletedEvent {
	return &OrderDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderDeleted, AggregateTypeOrder, o.ID, o.BusinessID),
		OrderID:         o.ID,
		Status:          o.Status,
		Reversed:        effect == EffectReverse,
		Total:           o.Total,
	}
}
