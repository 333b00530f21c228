package checkout

import (
	"context"
	"sync"

	"github.com/CristobalNPE/ventesca-sub000/internal/domain/catalog"
	"github.com/CristobalNPE/ventesca-sub000/internal/domain/inventory"
	"github.com/CristobalNPE/ventesca-sub000/internal/domain/promotion"
	"github.com/CristobalNPE/ventesca-sub000/internal/domain/shared"
	"github.com/CristobalNPE/ventesca-sub000/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// memStore is an in-memory snapshot of everything checkout persists
type memStore struct {
	orders    map[uuid.UUID]*trade.Order
	products  map[uuid.UUID]*catalog.Product
	analytics map[uuid.UUID]*catalog.ProductAnalytics
	discounts []promotion.Discount
	movements []*inventory.StockMovement
}

func newMemStore() *memStore {
	return &memStore{
		orders:    make(map[uuid.UUID]*trade.Order),
		products:  make(map[uuid.UUID]*catalog.Product),
		analytics: make(map[uuid.UUID]*catalog.ProductAnalytics),
	}
}

func cloneOrder(o *trade.Order) *trade.Order {
	c := *o
	c.Items = append([]trade.LineItem(nil), o.Items...)
	c.ClearDomainEvents()
	return &c
}

func cloneProduct(p *catalog.Product) *catalog.Product {
	c := *p
	c.ClearDomainEvents()
	return &c
}

func cloneAnalytics(a *catalog.ProductAnalytics) *catalog.ProductAnalytics {
	c := *a
	return &c
}

func (s *memStore) clone() *memStore {
	c := newMemStore()
	for id, o := range s.orders {
		c.orders[id] = cloneOrder(o)
	}
	for id, p := range s.products {
		c.products[id] = cloneProduct(p)
	}
	for id, a := range s.analytics {
		c.analytics[id] = cloneAnalytics(a)
	}
	c.discounts = append(c.discounts, s.discounts...)
	c.movements = append(c.movements, s.movements...)
	return c
}

// memUnitOfWork commits a working copy of the store only when fn succeeds
type memUnitOfWork struct {
	mu    sync.Mutex
	store *memStore

	failMovements error
	failAnalytics error
	// raceOnCreate simulates another request creating the pending order first
	raceOnCreate func(committed *memStore)
	executions   int
}

func newMemUnitOfWork() *memUnitOfWork {
	return &memUnitOfWork{store: newMemStore()}
}

func (u *memUnitOfWork) Execute(_ context.Context, fn func(repos Repositories) error) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.executions++

	work := u.store.clone()
	if err := fn(&memRepos{uow: u, store: work}); err != nil {
		return err
	}
	u.store = work
	return nil
}

func (u *memUnitOfWork) addProduct(p *catalog.Product) {
	u.store.products[p.ID] = cloneProduct(p)
	u.store.analytics[p.ID] = catalog.NewProductAnalytics(p)
}

func (u *memUnitOfWork) addDiscount(d *promotion.Discount) {
	u.store.discounts = append(u.store.discounts, *d)
}

func (u *memUnitOfWork) product(id uuid.UUID) *catalog.Product {
	return u.store.products[id]
}

func (u *memUnitOfWork) stats(id uuid.UUID) *catalog.ProductAnalytics {
	return u.store.analytics[id]
}

func (u *memUnitOfWork) order(id uuid.UUID) *trade.Order {
	return u.store.orders[id]
}

type memRepos struct {
	uow   *memUnitOfWork
	store *memStore
}

func (r *memRepos) Orders() trade.OrderRepository                 { return memOrders{r} }
func (r *memRepos) Products() catalog.ProductRepository           { return memProducts{r} }
func (r *memRepos) Analytics() catalog.ProductAnalyticsRepository { return memAnalytics{r} }
func (r *memRepos) Discounts() promotion.DiscountSource           { return memDiscounts{r} }
func (r *memRepos) Movements() inventory.StockMovementRepository  { return memMovements{r} }

type memOrders struct{ r *memRepos }

func (m memOrders) FindByID(_ context.Context, id uuid.UUID) (*trade.Order, error) {
	o, ok := m.r.store.orders[id]
	if !ok {
		return nil, shared.NewNotFoundError("order", id)
	}
	return cloneOrder(o), nil
}

func (m memOrders) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*trade.Order, error) {
	return m.FindByID(ctx, id)
}

func (m memOrders) FindPending(_ context.Context, businessID, sellerID uuid.UUID) (*trade.Order, error) {
	for _, o := range m.r.store.orders {
		if o.BusinessID == businessID && o.SellerID == sellerID && o.IsPending() {
			return cloneOrder(o), nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m memOrders) Create(ctx context.Context, order *trade.Order) error {
	if race := m.r.uow.raceOnCreate; race != nil {
		m.r.uow.raceOnCreate = nil
		race(m.r.uow.store)
		return shared.ErrAlreadyExists
	}
	if _, err := m.FindPending(ctx, order.BusinessID, order.SellerID); err == nil {
		return shared.ErrAlreadyExists
	}
	m.r.store.orders[order.ID] = cloneOrder(order)
	return nil
}

func (m memOrders) Save(_ context.Context, order *trade.Order) error {
	stored, ok := m.r.store.orders[order.ID]
	if !ok {
		return shared.NewNotFoundError("order", order.ID)
	}
	if stored.Version != order.Version {
		return shared.ErrConcurrencyConflict
	}
	order.IncrementVersion()
	m.r.store.orders[order.ID] = cloneOrder(order)
	return nil
}

func (m memOrders) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.r.store.orders[id]; !ok {
		return shared.NewNotFoundError("order", id)
	}
	delete(m.r.store.orders, id)
	return nil
}

type memProducts struct{ r *memRepos }

func (m memProducts) FindByID(_ context.Context, id uuid.UUID) (*catalog.Product, error) {
	p, ok := m.r.store.products[id]
	if !ok {
		return nil, shared.NewNotFoundError("product", id)
	}
	return cloneProduct(p), nil
}

func (m memProducts) FindByIDs(_ context.Context, ids []uuid.UUID) ([]*catalog.Product, error) {
	out := make([]*catalog.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := m.r.store.products[id]; ok {
			out = append(out, cloneProduct(p))
		}
	}
	return out, nil
}

func (m memProducts) FindByIDsForUpdate(ctx context.Context, ids []uuid.UUID) ([]*catalog.Product, error) {
	return m.FindByIDs(ctx, ids)
}

func (m memProducts) Create(_ context.Context, p *catalog.Product) error {
	m.r.store.products[p.ID] = cloneProduct(p)
	m.r.store.analytics[p.ID] = catalog.NewProductAnalytics(p)
	return nil
}

func (m memProducts) Save(_ context.Context, p *catalog.Product) error {
	m.r.store.products[p.ID] = cloneProduct(p)
	return nil
}

type memAnalytics struct{ r *memRepos }

func (m memAnalytics) FindByProductIDsForUpdate(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]*catalog.ProductAnalytics, error) {
	out := make(map[uuid.UUID]*catalog.ProductAnalytics, len(ids))
	for _, id := range ids {
		if a, ok := m.r.store.analytics[id]; ok {
			out[id] = cloneAnalytics(a)
		}
	}
	return out, nil
}

func (m memAnalytics) Save(_ context.Context, a *catalog.ProductAnalytics) error {
	if m.r.uow.failAnalytics != nil {
		return m.r.uow.failAnalytics
	}
	m.r.store.analytics[a.ProductID] = cloneAnalytics(a)
	return nil
}

type memDiscounts struct{ r *memRepos }

func (m memDiscounts) FindCandidates(_ context.Context, businessID, productID uuid.UUID, categoryID *uuid.UUID) ([]promotion.Discount, error) {
	var out []promotion.Discount
	for _, d := range m.r.store.discounts {
		if d.BusinessID != businessID {
			continue
		}
		switch d.Scope {
		case promotion.ScopeGlobal:
			out = append(out, d)
		case promotion.ScopeProduct:
			if d.ProductID != nil && *d.ProductID == productID {
				out = append(out, d)
			}
		case promotion.ScopeCategory:
			if d.CategoryID != nil && categoryID != nil && *d.CategoryID == *categoryID {
				out = append(out, d)
			}
		}
	}
	return out, nil
}

type memMovements struct{ r *memRepos }

func (m memMovements) CreateBatch(_ context.Context, movements []*inventory.StockMovement) error {
	if m.r.uow.failMovements != nil {
		return m.r.uow.failMovements
	}
	m.r.store.movements = append(m.r.store.movements, movements...)
	return nil
}

func (m memMovements) FindByOrder(_ context.Context, orderID uuid.UUID) ([]*inventory.StockMovement, error) {
	var out []*inventory.StockMovement
	for _, mv := range m.r.store.movements {
		if mv.OrderID == orderID {
			out = append(out, mv)
		}
	}
	return out, nil
}

func (m memMovements) FindByProduct(_ context.Context, productID uuid.UUID, limit int) ([]*inventory.StockMovement, error) {
	var out []*inventory.StockMovement
	for _, mv := range m.r.store.movements {
		if mv.ProductID == productID {
			out = append(out, mv)
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// MockEventPublisher is a mock implementation of shared.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

// MockMetrics is a mock implementation of Metrics
type MockMetrics struct {
	mock.Mock
}

func (m *MockMetrics) RecordTransition(ctx context.Context, from, to trade.OrderStatus, effect trade.EffectDirection) {
	m.Called(ctx, from, to, effect)
}

func (m *MockMetrics) RecordReconciliationFailure(ctx context.Context, effect trade.EffectDirection) {
	m.Called(ctx, effect)
}

func (m *MockMetrics) RecordStockClamp(ctx context.Context, count int) {
	m.Called(ctx, count)
}
