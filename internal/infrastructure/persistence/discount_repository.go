package persistence

import (
	"context"

	"github.com/CristobalNPE/ventesca-sub000/internal/domain/promotion"
	"github.com/CristobalNPE/ventesca-sub000/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormDiscountRepository implements promotion.DiscountRepository using GORM
type GormDiscountRepository struct {
	db *gorm.DB
}

// NewGormDiscountRepository creates a new GormDiscountRepository
func NewGormDiscountRepository(db *gorm.DB) *GormDiscountRepository {
	return &GormDiscountRepository{db: db}
}

// WithTx returns a new repository instance with the given transaction
func (r *GormDiscountRepository) WithTx(tx *gorm.DB) *GormDiscountRepository {
	return &GormDiscountRepository{db: tx}
}

// FindCandidates returns the switched-on discounts of the business that target the
// product, its category or everything. Validity windows are left to the evaluator.
func (r *GormDiscountRepository) FindCandidates(ctx context.Context, businessID, productID uuid.UUID, categoryID *uuid.UUID) ([]promotion.Discount, error) {
	query := r.db.WithContext(ctx).
		Where("business_id = ? AND is_active = ?", businessID, true)

	if categoryID != nil {
		query = query.Where(
			"(scope = ? OR (scope = ? AND product_id = ?) OR (scope = ? AND category_id = ?))",
			promotion.ScopeGlobal, promotion.ScopeProduct, productID, promotion.ScopeCategory, *categoryID,
		)
	} else {
		query = query.Where(
			"(scope = ? OR (scope = ? AND product_id = ?))",
			promotion.ScopeGlobal, promotion.ScopeProduct, productID,
		)
	}

	var rows []models.DiscountModel
	if err := query.Order("created_at ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	discounts := make([]promotion.Discount, len(rows))
	for i := range rows {
		discounts[i] = *rows[i].ToDomain()
	}
	return discounts, nil
}

// FindByID finds a discount by id
func (r *GormDiscountRepository) FindByID(ctx context.Context, id uuid.UUID) (*promotion.Discount, error) {
	var model models.DiscountModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		return nil, translateError(err, "discount", id)
	}
	return model.ToDomain(), nil
}

// Save inserts or updates a discount
func (r *GormDiscountRepository) Save(ctx context.Context, discount *promotion.Discount) error {
	return translateError(r.db.WithContext(ctx).Save(models.DiscountModelFromDomain(discount)).Error, "discount", discount.ID)
}

var _ promotion.DiscountRepository = (*GormDiscountRepository)(nil)
