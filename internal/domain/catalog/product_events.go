package catalog

import (
	"github.com/CristobalNPE/ventesca-sub000/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constant
const AggregateTypeProduct = "Product"

// Event type constants
const (
	EventTypeProductStockClamped = "ProductStockClamped"
)

// ProductStockClampedEvent is raised when a stock decrement hit the zero floor.
// Historical reversals can trigger it after stock was edited out of band.
type ProductStockClampedEvent struct {
	shared.BaseDomainEvent
	ProductID      uuid.UUID `json:"product_id"`
	Code           string    `json:"code"`
	RequestedDelta int       `json:"requested_delta"`
	AppliedDelta   int       `json:"applied_delta"`
}

// NewProductStockClampedEvent creates a new ProductStockClampedEvent
func NewProductStockClampedEvent(p *Product, requested, applied int) *ProductStockClampedEvent {
	return &ProductStockClampedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductStockClamped, AggregateTypeProduct, p.ID, p.BusinessID),
		ProductID:       p.ID,
		Code:            p.Code,
		RequestedDelta:  requested,
		AppliedDelta:    applied,
	}
}
