package catalog

import (
	"context"

	"github.com/google/uuid"
)

// ProductRepository defines persistence for products
type ProductRepository interface {
	// FindByID returns the product including soft-deleted ones
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	// FindByIDs returns the products without locking
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*Product, error)
	// FindByIDsForUpdate row-locks the products in ascending id order
	FindByIDsForUpdate(ctx context.Context, ids []uuid.UUID) ([]*Product, error)
	// Create inserts the product together with its zeroed analytics row
	Create(ctx context.Context, product *Product) error
	// Save persists price, stock and status changes
	Save(ctx context.Context, product *Product) error
}

// ProductAnalyticsRepository defines persistence for product analytics
type ProductAnalyticsRepository interface {
	// FindByProductIDsForUpdate returns analytics keyed by product id, locked for update
	FindByProductIDsForUpdate(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]*ProductAnalytics, error)
	// Save upserts the analytics row of a product
	Save(ctx context.Context, analytics *ProductAnalytics) error
}
