package promotion

import (
	"context"

	"github.com/google/uuid"
)

// DiscountSource fetches the candidate discounts of a line: those attached to the
// product, to its category and the globally scoped ones of the business.
// Validity windows are checked by Evaluate, not by the source.
type DiscountSource interface {
	FindCandidates(ctx context.Context, businessID, productID uuid.UUID, categoryID *uuid.UUID) ([]Discount, error)
}

// DiscountRepository defines persistence for discounts
type DiscountRepository interface {
	DiscountSource
	FindByID(ctx context.Context, id uuid.UUID) (*Discount, error)
	Save(ctx context.Context, discount *Discount) error
}
