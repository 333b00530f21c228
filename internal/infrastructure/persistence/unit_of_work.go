package persistence

import (
	"context"

	"github.com/CristobalNPE/ventesca-sub000/internal/application/checkout"
	"github.com/CristobalNPE/ventesca-sub000/internal/domain/catalog"
	"github.com/CristobalNPE/ventesca-sub000/internal/domain/inventory"
	"github.com/CristobalNPE/ventesca-sub000/internal/domain/promotion"
	"github.com/CristobalNPE/ventesca-sub000/internal/domain/trade"
	"gorm.io/gorm"
)

// GormUnitOfWork runs checkout operations inside one database transaction
type GormUnitOfWork struct {
	db        *gorm.DB
	orders    *GormOrderRepository
	products  *GormProductRepository
	analytics *GormProductAnalyticsRepository
	discounts *GormDiscountRepository
	movements *GormStockMovementRepository
}

// NewGormUnitOfWork creates a unit of work over db
func NewGormUnitOfWork(db *gorm.DB) *GormUnitOfWork {
	return &GormUnitOfWork{
		db:        db,
		orders:    NewGormOrderRepository(db),
		products:  NewGormProductRepository(db),
		analytics: NewGormProductAnalyticsRepository(db),
		discounts: NewGormDiscountRepository(db),
		movements: NewGormStockMovementRepository(db),
	}
}

// Execute runs fn in a transaction. Returning an error, or panicking, rolls it back.
func (u *GormUnitOfWork) Execute(ctx context.Context, fn func(repos checkout.Repositories) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&txRepositories{
			orders:    u.orders.WithTx(tx),
			products:  u.products.WithTx(tx),
			analytics: u.analytics.WithTx(tx),
			discounts: u.discounts.WithTx(tx),
			movements: u.movements.WithTx(tx),
		})
	})
}

type txRepositories struct {
	orders    *GormOrderRepository
	products  *GormProductRepository
	analytics *GormProductAnalyticsRepository
	discounts *GormDiscountRepository
	movements *GormStockMovementRepository
}

func (r *txRepositories) Orders() trade.OrderRepository                 { return r.orders }
func (r *txRepositories) Products() catalog.ProductRepository           { return r.products }
func (r *txRepositories) Analytics() catalog.ProductAnalyticsRepository { return r.analytics }
func (r *txRepositories) Discounts() promotion.DiscountSource           { return r.discounts }
func (r *txRepositories) Movements() inventory.StockMovementRepository  { return r.movements }

var _ checkout.UnitOfWork = (*GormUnitOfWork)(nil)
