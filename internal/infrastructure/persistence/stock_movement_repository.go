package persistence

import (
	"context"

	"github.com/CristobalNPE/ventesca-sub000/internal/domain/inventory"
	"github.com/CristobalNPE/ventesca-sub000/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const movementBatchSize = 100

// GormStockMovementRepository implements inventory.StockMovementRepository using GORM
type GormStockMovementRepository struct {
	db *gorm.DB
}

// NewGormStockMovementRepository creates a new GormStockMovementRepository
func NewGormStockMovementRepository(db *gorm.DB) *GormStockMovementRepository {
	return &GormStockMovementRepository{db: db}
}

// WithTx returns a new repository instance with the given transaction
func (r *GormStockMovementRepository) WithTx(tx *gorm.DB) *GormStockMovementRepository {
	return &GormStockMovementRepository{db: tx}
}

// CreateBatch appends movements to the ledger
func (r *GormStockMovementRepository) CreateBatch(ctx context.Context, movements []*inventory.StockMovement) error {
	if len(movements) == 0 {
		return nil
	}
	rows := make([]*models.StockMovementModel, len(movements))
	for i, mv := range movements {
		rows[i] = models.StockMovementModelFromDomain(mv)
	}
	return r.db.WithContext(ctx).CreateInBatches(rows, movementBatchSize).Error
}

// FindByOrder returns the movements written for an order, oldest first
func (r *GormStockMovementRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]*inventory.StockMovement, error) {
	var rows []models.StockMovementModel
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toMovements(rows), nil
}

// FindByProduct returns the latest movements of a product, newest first. limit <= 0 means all.
func (r *GormStockMovementRepository) FindByProduct(ctx context.Context, productID uuid.UUID, limit int) ([]*inventory.StockMovement, error) {
	query := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var rows []models.StockMovementModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toMovements(rows), nil
}

func toMovements(rows []models.StockMovementModel) []*inventory.StockMovement {
	movements := make([]*inventory.StockMovement, len(rows))
	for i := range rows {
		movements[i] = rows[i].ToDomain()
	}
	return movements
}

var _ inventory.StockMovementRepository = (*GormStockMovementRepository)(nil)
