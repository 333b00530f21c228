package trade

import (
	"context"

	"github.com/google/uuid"
)

// OrderRepository defines persistence for orders and their lines
type OrderRepository interface {
	// FindByID loads the order with its lines
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	// FindByIDForUpdate loads the order with its lines and row-locks the order
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Order, error)
	// FindPending returns the PENDING order of a seller
	FindPending(ctx context.Context, businessID, sellerID uuid.UUID) (*Order, error)
	// Create inserts a new order. A second PENDING order for the same seller
	// fails with shared.ErrAlreadyExists.
	Create(ctx context.Context, order *Order) error
	// Save persists the order and syncs its lines, checking the version
	Save(ctx context.Context, order *Order) error
	// Delete removes the order and its lines
	Delete(ctx context.Context, id uuid.UUID) error
}
