package inventory

import (
	"context"

	"github.com/google/uuid"
)

// StockMovementRepository persists the stock movement ledger
type StockMovementRepository interface {
	CreateBatch(ctx context.Context, movements []*StockMovement) error
	FindByOrder(ctx context.Context, orderID uuid.UUID) ([]*StockMovement, error)
	FindByProduct(ctx context.Context, productID uuid.UUID, limit int) ([]*StockMovement, error)
}
