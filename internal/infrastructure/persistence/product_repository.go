package persistence

import (
	"context"

	"github.com/CristobalNPE/ventesca-sub000/internal/domain/catalog"
	"github.com/CristobalNPE/ventesca-sub000/internal/domain/shared"
	"github.com/CristobalNPE/ventesca-sub000/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProductRepository implements catalog.ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// WithTx returns a new repository instance with the given transaction
func (r *GormProductRepository) WithTx(tx *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: tx}
}

// FindByID finds a product by id, soft-deleted ones included
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		return nil, translateError(err, "product", id)
	}
	return model.ToDomain(), nil
}

// FindByIDs returns the products with the given ids ordered by id. Missing ids are skipped.
func (r *GormProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*catalog.Product, error) {
	return r.findMany(r.db.WithContext(ctx), ids)
}

// FindByIDsForUpdate row-locks the products in ascending id order
func (r *GormProductRepository) FindByIDsForUpdate(ctx context.Context, ids []uuid.UUID) ([]*catalog.Product, error) {
	return r.findMany(r.db.WithContext(ctx).Clauses(lockForUpdate), ids)
}

func (r *GormProductRepository) findMany(query *gorm.DB, ids []uuid.UUID) ([]*catalog.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var productModels []models.ProductModel
	if err := query.Where("id IN ?", ids).Order("id ASC").Find(&productModels).Error; err != nil {
		return nil, err
	}
	products := make([]*catalog.Product, len(productModels))
	for i := range productModels {
		products[i] = productModels[i].ToDomain()
	}
	return products, nil
}

// Create inserts the product together with its zeroed analytics row
func (r *GormProductRepository) Create(ctx context.Context, product *catalog.Product) error {
	db := r.db.WithContext(ctx)
	if err := db.Create(models.ProductModelFromDomain(product)).Error; err != nil {
		return translateError(err, "product", product.ID)
	}
	analytics := models.ProductAnalyticsModelFromDomain(catalog.NewProductAnalytics(product))
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "product_id"}},
		DoNothing: true,
	}).Create(analytics).Error
}

// Save persists price, stock and status changes. Callers hold the row lock.
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	result := r.db.WithContext(ctx).Model(&models.ProductModel{}).
		Where("id = ?", product.ID).
		Updates(map[string]any{
			"code":          product.Code,
			"name":          product.Name,
			"category_id":   product.CategoryID,
			"unit_cost":     product.UnitCost,
			"selling_price": product.SellingPrice,
			"stock":         product.Stock,
			"is_active":     product.IsActive,
			"deleted_at":    product.DeletedAt,
			"version":       product.Version,
			"updated_at":    product.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("product", product.ID)
	}
	return nil
}

var _ catalog.ProductRepository = (*GormProductRepository)(nil)

// GormProductAnalyticsRepository implements catalog.ProductAnalyticsRepository using GORM
type GormProductAnalyticsRepository struct {
	db *gorm.DB
}

// NewGormProductAnalyticsRepository creates a new GormProductAnalyticsRepository
func NewGormProductAnalyticsRepository(db *gorm.DB) *GormProductAnalyticsRepository {
	return &GormProductAnalyticsRepository{db: db}
}

// WithTx returns a new repository instance with the given transaction
func (r *GormProductAnalyticsRepository) WithTx(tx *gorm.DB) *GormProductAnalyticsRepository {
	return &GormProductAnalyticsRepository{db: tx}
}

// FindByProductIDsForUpdate returns the analytics rows keyed by product id, locked for update
func (r *GormProductAnalyticsRepository) FindByProductIDsForUpdate(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]*catalog.ProductAnalytics, error) {
	result := make(map[uuid.UUID]*catalog.ProductAnalytics, len(productIDs))
	if len(productIDs) == 0 {
		return result, nil
	}
	var rows []models.ProductAnalyticsModel
	if err := r.db.WithContext(ctx).
		Clauses(lockForUpdate).
		Where("product_id IN ?", productIDs).
		Order("product_id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		result[rows[i].ProductID] = rows[i].ToDomain()
	}
	return result, nil
}

// Save upserts the analytics row of a product
func (r *GormProductAnalyticsRepository) Save(ctx context.Context, analytics *catalog.ProductAnalytics) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "product_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"total_sales", "total_profit", "total_returns", "updated_at"}),
	}).Create(models.ProductAnalyticsModelFromDomain(analytics)).Error
}

var _ catalog.ProductAnalyticsRepository = (*GormProductAnalyticsRepository)(nil)
