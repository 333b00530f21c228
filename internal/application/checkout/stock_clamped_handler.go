package checkout

import (
	"context"
	"fmt"

	"github.com/CristobalNPE/ventesca-sub000/internal/domain/catalog"
	"github.com/CristobalNPE/ventesca-sub000/internal/domain/shared"
	"go.uber.org/zap"
)

// StockClampedHandler reports stock decrements that hit the zero floor.
// A clamp means stored stock drifted from the order history, usually after a
// manual stock edit, and someone should recount the product.
type StockClampedHandler struct {
	logger *zap.Logger
}

// NewStockClampedHandler creates a new handler for ProductStockClamped events
func NewStockClampedHandler(logger *zap.Logger) *StockClampedHandler {
	return &StockClampedHandler{logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *StockClampedHandler) EventTypes() []string {
	return []string{catalog.EventTypeProductStockClamped}
}

// Handle logs the clamped product
func (h *StockClampedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	clamped, ok := event.(*catalog.ProductStockClampedEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", catalog.EventTypeProductStockClamped),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			catalog.EventTypeProductStockClamped, event.EventType())
	}

	h.logger.Warn("product stock clamped at zero",
		zap.String("business_id", clamped.BusinessID().String()),
		zap.String("product_id", clamped.ProductID.String()),
		zap.String("product_code", clamped.Code),
		zap.Int("requested_delta", clamped.RequestedDelta),
		zap.Int("applied_delta", clamped.AppliedDelta),
	)
	return nil
}
