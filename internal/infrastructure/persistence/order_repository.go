package persistence

import (
	"context"
	"time"

	"github.com/CristobalNPE/ventesca-sub000/internal/domain/shared"
	"github.com/CristobalNPE/ventesca-sub000/internal/domain/trade"
	"github.com/CristobalNPE/ventesca-sub000/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOrderRepository implements trade.OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// WithTx returns a new repository instance with the given transaction
func (r *GormOrderRepository) WithTx(tx *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: tx}
}

// FindByID loads an order with its lines
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Order, error) {
	return r.find(ctx, r.db.WithContext(ctx), id)
}

// FindByIDForUpdate loads an order with its lines and holds a row lock on the order until commit
func (r *GormOrderRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*trade.Order, error) {
	return r.find(ctx, r.db.WithContext(ctx).Clauses(lockForUpdate), id)
}

func (r *GormOrderRepository) find(ctx context.Context, query *gorm.DB, id uuid.UUID) (*trade.Order, error) {
	var model models.OrderModel
	if err := query.Where("id = ?", id).First(&model).Error; err != nil {
		return nil, translateError(err, "order", id)
	}
	return r.withItems(ctx, &model)
}

// FindPending returns the PENDING order of a seller
func (r *GormOrderRepository) FindPending(ctx context.Context, businessID, sellerID uuid.UUID) (*trade.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).
		Where("business_id = ? AND seller_id = ? AND status = ?", businessID, sellerID, trade.OrderStatusPending).
		First(&model).Error; err != nil {
		return nil, translateError(err, "order", uuid.Nil)
	}
	return r.withItems(ctx, &model)
}

func (r *GormOrderRepository) withItems(ctx context.Context, model *models.OrderModel) (*trade.Order, error) {
	var items []models.LineItemModel
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", model.ID).
		Order("created_at ASC, id ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return model.ToDomain(items), nil
}

// Create inserts a new order and its lines. The partial unique index on
// pending orders turns a second PENDING order of a seller into ErrAlreadyExists.
func (r *GormOrderRepository) Create(ctx context.Context, order *trade.Order) error {
	db := r.db.WithContext(ctx)
	if err := db.Create(models.OrderModelFromDomain(order)).Error; err != nil {
		return translateError(err, "order", order.ID)
	}
	if len(order.Items) == 0 {
		return nil
	}
	items := make([]*models.LineItemModel, len(order.Items))
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
		items[i] = models.LineItemModelFromDomain(&order.Items[i])
	}
	return translateError(db.Create(&items).Error, "order", order.ID)
}

// Save persists the order with an optimistic version check, then syncs its lines.
// On success order.Version is incremented.
func (r *GormOrderRepository) Save(ctx context.Context, order *trade.Order) error {
	db := r.db.WithContext(ctx)
	now := time.Now()

	result := db.Model(&models.OrderModel{}).
		Where("id = ? AND version = ?", order.ID, order.Version).
		Updates(map[string]any{
			"status":                 order.Status,
			"payment_method":         order.PaymentMethod,
			"direct_discount_kind":   order.DirectDiscount.Kind,
			"direct_discount_value":  order.DirectDiscount.Value,
			"subtotal":               order.Subtotal,
			"total_discount":         order.TotalDiscount,
			"direct_discount_amount": order.DirectDiscountAmount,
			"total":                  order.Total,
			"effects_applied":        order.EffectsApplied,
			"completed_at":           order.CompletedAt,
			"version":                order.Version + 1,
			"updated_at":             now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := db.Model(&models.OrderModel{}).Where("id = ?", order.ID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return shared.NewNotFoundError("order", order.ID)
		}
		return shared.ErrConcurrencyConflict
	}

	if err := r.syncItems(db, order); err != nil {
		return err
	}

	order.IncrementVersion()
	order.UpdatedAt = now
	return nil
}

func (r *GormOrderRepository) syncItems(db *gorm.DB, order *trade.Order) error {
	keep := make([]uuid.UUID, len(order.Items))
	for i := range order.Items {
		keep[i] = order.Items[i].ID
	}

	stale := db.Where("order_id = ?", order.ID)
	if len(keep) > 0 {
		stale = stale.Where("id NOT IN ?", keep)
	}
	if err := stale.Delete(&models.LineItemModel{}).Error; err != nil {
		return err
	}
	if len(order.Items) == 0 {
		return nil
	}

	items := make([]*models.LineItemModel, len(order.Items))
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
		items[i] = models.LineItemModelFromDomain(&order.Items[i])
	}
	return db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"quantity", "type", "unit_price", "total_price", "total_discount",
			"unit_cost", "profit", "applied_stock_delta", "updated_at",
		}),
	}).Create(&items).Error
}

// Delete removes an order and its lines
func (r *GormOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("order_id = ?", id).Delete(&models.LineItemModel{}).Error; err != nil {
		return err
	}
	result := db.Where("id = ?", id).Delete(&models.OrderModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("order", id)
	}
	return nil
}

var _ trade.OrderRepository = (*GormOrderRepository)(nil)
