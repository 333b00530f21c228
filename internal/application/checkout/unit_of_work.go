package checkout

import (
	"context"

	"github.com/CristobalNPE/ventesca-sub000/internal/domain/catalog"
	"github.com/CristobalNPE/ventesca-sub000/internal/domain/inventory"
	"github.com/CristobalNPE/ventesca-sub000/internal/domain/promotion"
	"github.com/CristobalNPE/ventesca-sub000/internal/domain/trade"
)

// UnitOfWork runs a function inside one storage transaction.
// If fn returns an error every write made through repos is rolled back.
type UnitOfWork interface {
	Execute(ctx context.Context, fn func(repos Repositories) error) error
}

// Repositories gives access to every repository a checkout operation touches.
// All of them share the transaction of the enclosing UnitOfWork.
type Repositories interface {
	Orders() trade.OrderRepository
	Products() catalog.ProductRepository
	Analytics() catalog.ProductAnalyticsRepository
	Discounts() promotion.DiscountSource
	Movements() inventory.StockMovementRepository
}

// OrderLocker serializes writers of the same order across goroutines or processes.
// The returned unlock func must always be called.
type OrderLocker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

type noopLocker struct{}

func (noopLocker) Lock(context.Context, string) (func(), error) {
	return func() {}, nil
}

// Metrics records checkout outcomes
type Metrics interface {
	RecordTransition(ctx context.Context, from, to trade.OrderStatus, effect trade.EffectDirection)
	RecordReconciliationFailure(ctx context.Context, effect trade.EffectDirection)
	RecordStockClamp(ctx context.Context, count int)
}

type noopMetrics struct{}

func (noopMetrics) RecordTransition(context.Context, trade.OrderStatus, trade.OrderStatus, trade.EffectDirection) {
}
func (noopMetrics) RecordReconciliationFailure(context.Context, trade.EffectDirection) {}
func (noopMetrics) RecordStockClamp(context.Context, int)                              {}
