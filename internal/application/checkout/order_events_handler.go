package checkout

import (
	"context"

	"github.com/CristobalNPE/ventesca-sub000/internal/domain/shared"
	"github.com/CristobalNPE/ventesca-sub000/internal/domain/trade"
	"go.uber.org/zap"
)

// OrderAuditHandler writes one structured log line per order lifecycle event
type OrderAuditHandler struct {
	logger *zap.Logger
}

// NewOrderAuditHandler creates a new OrderAuditHandler
func NewOrderAuditHandler(logger *zap.Logger) *OrderAuditHandler {
	return &OrderAuditHandler{logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *OrderAuditHandler) EventTypes() []string {
	return []string{
		trade.EventTypeOrderFinished,
		trade.EventTypeOrderDiscarded,
		trade.EventTypeOrderReopened,
		trade.EventTypeOrderDeleted,
	}
}

// Handle logs the event with its order fields
func (h *OrderAuditHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	fields := []zap.Field{
		zap.String("event_type", event.EventType()),
		zap.String("event_id", event.EventID().String()),
		zap.String("business_id", event.BusinessID().String()),
		zap.String("order_id", event.AggregateID().String()),
	}

	switch e := event.(type) {
	case *trade.OrderFinishedEvent:
		fields = append(fields,
			zap.String("seller_id", e.SellerID.String()),
			zap.String("payment_method", string(e.PaymentMethod)),
			zap.Int("items_count", e.ItemCount),
			zap.String("total", e.Total.String()),
		)
	case *trade.OrderDiscardedEvent:
		fields = append(fields, zap.String("previous_status", e.PreviousStatus.String()))
	case *trade.OrderDeletedEvent:
		fields = append(fields, zap.String("status", e.Status.String()), zap.Bool("reversed", e.Reversed))
	}

	h.logger.Info("order lifecycle event", fields...)
	return nil
}
