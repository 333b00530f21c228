package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/CristobalNPE/ventesca-sub000/internal/domain/catalog"
	"github.com/CristobalNPE/ventesca-sub000/internal/domain/inventory"
	"github.com/CristobalNPE/ventesca-sub000/internal/domain/promotion"
	"github.com/CristobalNPE/ventesca-sub000/internal/domain/shared"
	"github.com/CristobalNPE/ventesca-sub000/internal/domain/trade"
	"github.com/CristobalNPE/ventesca-sub000/internal/infrastructure/logger"
	"github.com/CristobalNPE/ventesca-sub000/internal/infrastructure/telemetry"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Service is the caller-facing entry point of the checkout engine.
// Every mutating operation holds the per-order lock, runs in one unit of work,
// row-locks the order and locks product rows in ascending id order.
type Service struct {
	uow        UnitOfWork
	locker     OrderLocker
	reconciler *inventory.Reconciler
	publisher  shared.EventPublisher
	metrics    Metrics
	validate   *validator.Validate
	logger     *zap.Logger
	clock      func() time.Time
}

// Option configures a Service
type Option func(*Service)

// WithLocker sets the per-order lock
func WithLocker(l OrderLocker) Option {
	return func(s *Service) {
		if l != nil {
			s.locker = l
		}
	}
}

// WithEventPublisher sets the publisher used after commit
func WithEventPublisher(p shared.EventPublisher) Option {
	return func(s *Service) {
		s.publisher = p
	}
}

// WithMetrics sets the checkout metrics recorder
func WithMetrics(m Metrics) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithClock overrides the clock used for discount windows and reconciliation
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewService creates a checkout service
func NewService(uow UnitOfWork, log *zap.Logger, opts ...Option) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Service{
		uow:      uow,
		locker:   noopLocker{},
		metrics:  noopMetrics{},
		validate: newValidator(),
		logger:   log,
		clock:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.reconciler = inventory.NewReconcilerWithClock(s.clock)
	return s
}

// log returns the service logger tagged with the active trace
func (s *Service) log(ctx context.Context) *zap.Logger {
	return logger.WithTraceContext(ctx, s.logger)
}

func orderLockKey(orderID uuid.UUID) string {
	return "order:" + orderID.String()
}

func pendingLockKey(businessID, sellerID uuid.UUID) string {
	return "pending:" + businessID.String() + ":" + sellerID.String()
}

// GetOrCreatePendingOrder returns the PENDING order of a seller, creating it if missing.
// Uniqueness is enforced by storage; losing a creation race returns the winner.
func (s *Service) GetOrCreatePendingOrder(ctx context.Context, businessID, sellerID uuid.UUID) (*OrderResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "checkout", "get_or_create_pending_order")
	defer span.End()
	ctx = logger.WithBusinessID(ctx, businessID.String())

	unlock, err := s.locker.Lock(ctx, pendingLockKey(businessID, sellerID))
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	defer unlock()

	var order *trade.Order
	err = s.uow.Execute(ctx, func(repos Repositories) error {
		existing, err := repos.Orders().FindPending(ctx, businessID, sellerID)
		if err == nil {
			order = existing
			return nil
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return err
		}

		created, err := trade.NewPendingOrder(businessID, sellerID)
		if err != nil {
			return err
		}
		if err := repos.Orders().Create(ctx, created); err != nil {
			return err
		}
		order = created
		return nil
	})

	if errors.Is(err, shared.ErrAlreadyExists) {
		s.log(ctx).Info("pending order created concurrently, loading winner",
			zap.String("business_id", businessID.String()),
			zap.String("seller_id", sellerID.String()),
		)
		err = s.uow.Execute(ctx, func(repos Repositories) error {
			winner, err := repos.Orders().FindPending(ctx, businessID, sellerID)
			if err != nil {
				return err
			}
			order = winner
			return nil
		})
	}
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttribute(span, telemetry.SpanAttrOrderID, order.ID.String())
	resp := ToOrderResponse(order)
	return &resp, nil
}

// AddOrChangeLineItem adds a product to a PENDING order, or changes the existing
// line of that product, and recomputes the line and order totals.
func (s *Service) AddOrChangeLineItem(ctx context.Context, req AddOrChangeLineItemRequest) (*LineItemTotals, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "checkout", "add_or_change_line_item")
	defer span.End()
	ctx = logger.WithOrderID(ctx, req.OrderID.String())

	if err := s.validate.Struct(req); err != nil {
		verr := toValidationError(err)
		telemetry.RecordError(span, verr)
		return nil, verr
	}
	telemetry.SetAttributes(span,
		telemetry.SpanAttrOrderID, req.OrderID.String(),
		telemetry.SpanAttrProductID, req.ProductID.String(),
		telemetry.SpanAttrQuantity, req.Quantity,
	)

	unlock, err := s.locker.Lock(ctx, orderLockKey(req.OrderID))
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	defer unlock()

	var result *LineItemTotals
	err = s.uow.Execute(ctx, func(repos Repositories) error {
		order, err := repos.Orders().FindByIDForUpdate(ctx, req.OrderID)
		if err != nil {
			return err
		}
		if !order.IsPending() {
			return shared.NewDomainError(shared.CodeInvalidState,
				fmt.Sprintf("Cannot modify order in %s status", order.Status))
		}

		products, err := repos.Products().FindByIDsForUpdate(ctx, []uuid.UUID{req.ProductID})
		if err != nil {
			return err
		}
		if len(products) == 0 || products[0].BusinessID != order.BusinessID {
			return shared.NewNotFoundError("product", req.ProductID)
		}
		product := products[0]

		if !product.IsSellable() {
			return shared.NewValidationError("product_id", "Product is not available for sale")
		}
		if req.Type != trade.LineTypeReturn && !product.CanFulfil(req.Quantity) {
			e := shared.NewDomainError(shared.CodeInsufficientStock,
				fmt.Sprintf("Only %d units of %s in stock", product.Stock, product.Code))
			e.Field = "quantity"
			return e
		}

		item, err := order.UpsertItem(product.ID, req.Quantity, req.Type)
		if err != nil {
			return err
		}
		eval, err := s.evaluateLine(ctx, repos, order.BusinessID, product, item.Quantity)
		if err != nil {
			return err
		}
		item.Recalculate(product.SellingPrice, eval)
		order.RecalculateTotals()

		if err := repos.Orders().Save(ctx, order); err != nil {
			return err
		}
		result = toLineItemTotals(order, item, req.Type, eval)
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if result.Type != result.RequestedType {
		s.log(ctx).Debug("promo line fell back to sell",
			zap.String("order_id", req.OrderID.String()),
			zap.String("product_id", req.ProductID.String()),
		)
	}
	return result, nil
}

// RemoveLineItem deletes a line from a PENDING order and recomputes its totals
func (s *Service) RemoveLineItem(ctx context.Context, orderID, lineItemID uuid.UUID) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "checkout", "remove_line_item",
		telemetry.WithAttribute(telemetry.SpanAttrOrderID, orderID.String()))
	defer span.End()
	ctx = logger.WithOrderID(ctx, orderID.String())

	unlock, err := s.locker.Lock(ctx, orderLockKey(orderID))
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}
	defer unlock()

	err = s.uow.Execute(ctx, func(repos Repositories) error {
		order, err := repos.Orders().FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if err := order.RemoveItem(lineItemID); err != nil {
			return err
		}
		return repos.Orders().Save(ctx, order)
	})
	if err != nil {
		telemetry.RecordError(span, err)
	}
	return err
}

// ApplyDirectDiscount sets or clears the order-level discount of a PENDING order
func (s *Service) ApplyDirectDiscount(ctx context.Context, req ApplyDirectDiscountRequest) (*OrderTotals, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "checkout", "apply_direct_discount")
	defer span.End()

	if err := s.validate.Struct(req); err != nil {
		verr := toValidationError(err)
		telemetry.RecordError(span, verr)
		return nil, verr
	}

	return s.mutateOrder(ctx, span, req.OrderID, func(order *trade.Order) error {
		return order.SetDirectDiscount(trade.DirectDiscountKind(req.Kind), req.Value)
	})
}

// SetPaymentMethod changes how a PENDING order is paid
func (s *Service) SetPaymentMethod(ctx context.Context, orderID uuid.UUID, method trade.PaymentMethod) (*OrderTotals, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "checkout", "set_payment_method")
	defer span.End()

	return s.mutateOrder(ctx, span, orderID, func(order *trade.Order) error {
		return order.SetPaymentMethod(method)
	})
}

func (s *Service) mutateOrder(ctx context.Context, span trace.Span, orderID uuid.UUID, fn func(*trade.Order) error) (*OrderTotals, error) {
	ctx = logger.WithOrderID(ctx, orderID.String())
	telemetry.SetAttribute(span, telemetry.SpanAttrOrderID, orderID.String())

	unlock, err := s.locker.Lock(ctx, orderLockKey(orderID))
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	defer unlock()

	var totals OrderTotals
	err = s.uow.Execute(ctx, func(repos Repositories) error {
		order, err := repos.Orders().FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if err := fn(order); err != nil {
			return err
		}
		if err := repos.Orders().Save(ctx, order); err != nil {
			return err
		}
		totals = ToOrderTotals(order)
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return &totals, nil
}

// TransitionOrder moves an order to a new status. Stock and analytics are
// reconciled in the same unit of work; if reconciliation fails the order keeps
// its previous status and the returned error is retryable.
func (s *Service) TransitionOrder(ctx context.Context, orderID uuid.UUID, status trade.OrderStatus) (*OrderTotals, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "checkout", "transition_order",
		telemetry.WithAttribute(telemetry.SpanAttrOrderID, orderID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrOrderStatus, status.String()),
	)
	defer span.End()
	ctx = logger.WithOrderID(ctx, orderID.String())

	unlock, err := s.locker.Lock(ctx, orderLockKey(orderID))
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	defer unlock()

	var (
		transition trade.Transition
		order      *trade.Order
		outcome    *inventory.Outcome
	)
	err = s.uow.Execute(ctx, func(repos Repositories) error {
		var err error
		order, err = repos.Orders().FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}

		planned, err := trade.PlanTransition(order.Status, status, order.ItemCount())
		if err != nil {
			return err
		}
		transition = planned

		var products map[uuid.UUID]*catalog.Product
		if planned.Effect() != trade.EffectNone {
			products, err = s.lockProducts(ctx, repos, order)
			if err != nil {
				return s.reconciliationError(planned, err)
			}
		}
		// first completion prices lines now, including orders discarded while PENDING
		if planned.Effect() == trade.EffectApply && order.CompletedAt == nil {
			if _, err := s.refreshLines(ctx, repos, order, products); err != nil {
				return s.reconciliationError(planned, err)
			}
			order.RecalculateTotals()
		}

		if _, err := order.Transition(status); err != nil {
			return err
		}

		if planned.Effect() != trade.EffectNone {
			outcome, err = s.reconcile(ctx, repos, order, planned.Action, products)
			if err != nil {
				return s.reconciliationError(planned, err)
			}
		}

		if err := repos.Orders().Save(ctx, order); err != nil {
			return s.reconciliationError(planned, err)
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		if transition.Effect() != trade.EffectNone {
			s.metrics.RecordReconciliationFailure(ctx, transition.Effect())
			s.log(ctx).Error("order transition failed",
				zap.String("order_id", orderID.String()),
				zap.String("target", status.String()),
				zap.String("direction", transition.Effect().String()),
				zap.Error(err),
			)
		}
		return nil, err
	}

	s.metrics.RecordTransition(ctx, transition.From, transition.To, transition.Effect())
	s.afterReconcile(ctx, order, outcome)
	s.log(ctx).Info("order transitioned",
		zap.String("order_id", order.ID.String()),
		zap.String("from", transition.From.String()),
		zap.String("to", transition.To.String()),
		zap.String("direction", transition.Effect().String()),
	)

	totals := ToOrderTotals(order)
	return &totals, nil
}

// DeleteOrder removes a FINISHED or DISCARDED order. A FINISHED order's
// effects are reversed first, in the same unit of work.
func (s *Service) DeleteOrder(ctx context.Context, orderID uuid.UUID) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "checkout", "delete_order",
		telemetry.WithAttribute(telemetry.SpanAttrOrderID, orderID.String()))
	defer span.End()
	ctx = logger.WithOrderID(ctx, orderID.String())

	unlock, err := s.locker.Lock(ctx, orderLockKey(orderID))
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}
	defer unlock()

	var (
		transition trade.Transition
		order      *trade.Order
		outcome    *inventory.Outcome
	)
	err = s.uow.Execute(ctx, func(repos Repositories) error {
		var err error
		order, err = repos.Orders().FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		transition, err = order.MarkForDeletion()
		if err != nil {
			return err
		}

		if transition.Effect() != trade.EffectNone {
			products, err := s.lockProducts(ctx, repos, order)
			if err != nil {
				return s.reconciliationError(transition, err)
			}
			outcome, err = s.reconcile(ctx, repos, order, transition.Action, products)
			if err != nil {
				return s.reconciliationError(transition, err)
			}
		}

		if err := repos.Orders().Delete(ctx, order.ID); err != nil {
			return s.reconciliationError(transition, err)
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		if transition.Effect() != trade.EffectNone {
			s.metrics.RecordReconciliationFailure(ctx, transition.Effect())
		}
		return err
	}

	s.metrics.RecordTransition(ctx, transition.From, transition.To, transition.Effect())
	s.afterReconcile(ctx, order, outcome)
	s.log(ctx).Info("order deleted",
		zap.String("order_id", order.ID.String()),
		zap.String("status", transition.From.String()),
		zap.String("direction", transition.Effect().String()),
	)
	return nil
}

// RecomputeOrderTotals re-evaluates the lines of a PENDING order against the
// current prices and discounts and recomputes the aggregate. The order is
// persisted only when something changed.
func (s *Service) RecomputeOrderTotals(ctx context.Context, orderID uuid.UUID) (*OrderTotals, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "checkout", "recompute_order_totals",
		telemetry.WithAttribute(telemetry.SpanAttrOrderID, orderID.String()))
	defer span.End()
	ctx = logger.WithOrderID(ctx, orderID.String())

	unlock, err := s.locker.Lock(ctx, orderLockKey(orderID))
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	defer unlock()

	var (
		totals OrderTotals
		dirty  bool
	)
	err = s.uow.Execute(ctx, func(repos Repositories) error {
		order, err := repos.Orders().FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}

		if order.IsPending() && order.ItemCount() > 0 {
			products, err := s.lockProducts(ctx, repos, order)
			if err != nil {
				return err
			}
			linesChanged, err := s.refreshLines(ctx, repos, order, products)
			if err != nil {
				return err
			}
			dirty = linesChanged
		}
		if order.RecalculateTotals() {
			dirty = true
		}

		if dirty {
			if err := repos.Orders().Save(ctx, order); err != nil {
				return err
			}
		}
		totals = ToOrderTotals(order)
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttribute(span, "dirty", dirty)
	return &totals, nil
}

// GetOrderTotals returns the totals derived from the stored lines without writing
func (s *Service) GetOrderTotals(ctx context.Context, orderID uuid.UUID) (*OrderTotals, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "checkout", "get_order_totals",
		telemetry.WithAttribute(telemetry.SpanAttrOrderID, orderID.String()))
	defer span.End()
	ctx = logger.WithOrderID(ctx, orderID.String())

	var totals OrderTotals
	err := s.uow.Execute(ctx, func(repos Repositories) error {
		order, err := repos.Orders().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		totals = toOrderTotals(order, order.Totals())
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return &totals, nil
}

// GetOrder returns the order with its lines
func (s *Service) GetOrder(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "checkout", "get_order",
		telemetry.WithAttribute(telemetry.SpanAttrOrderID, orderID.String()))
	defer span.End()
	ctx = logger.WithOrderID(ctx, orderID.String())

	var resp OrderResponse
	err := s.uow.Execute(ctx, func(repos Repositories) error {
		order, err := repos.Orders().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		resp = ToOrderResponse(order)
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return &resp, nil
}

// lockProducts row-locks every product of the order in ascending id order
func (s *Service) lockProducts(ctx context.Context, repos Repositories, order *trade.Order) (map[uuid.UUID]*catalog.Product, error) {
	ids := order.ProductIDs()
	inventory.SortIDs(ids)

	list, err := repos.Products().FindByIDsForUpdate(ctx, ids)
	if err != nil {
		return nil, err
	}
	products := make(map[uuid.UUID]*catalog.Product, len(list))
	for _, p := range list {
		products[p.ID] = p
	}
	for _, id := range ids {
		if _, ok := products[id]; !ok {
			return nil, shared.NewNotFoundError("product", id)
		}
	}
	return products, nil
}

func (s *Service) evaluateLine(ctx context.Context, repos Repositories, businessID uuid.UUID, product *catalog.Product, quantity int) (promotion.Evaluation, error) {
	discounts, err := repos.Discounts().FindCandidates(ctx, businessID, product.ID, product.CategoryID)
	if err != nil {
		return promotion.Evaluation{}, err
	}
	return promotion.Evaluate(quantity, product.SellingPrice, discounts, s.clock()), nil
}

// refreshLines recomputes every line of a PENDING order from current prices
// and discounts. It reports whether any line changed.
func (s *Service) refreshLines(ctx context.Context, repos Repositories, order *trade.Order, products map[uuid.UUID]*catalog.Product) (bool, error) {
	changed := false
	for i := range order.Items {
		item := &order.Items[i]
		product, ok := products[item.ProductID]
		if !ok {
			return false, shared.NewNotFoundError("product", item.ProductID)
		}
		eval, err := s.evaluateLine(ctx, repos, order.BusinessID, product, item.Quantity)
		if err != nil {
			return false, err
		}
		if item.Recalculate(product.SellingPrice, eval) {
			changed = true
		}
	}
	return changed, nil
}

// reconcile applies the stock and analytics effect of action and persists it
func (s *Service) reconcile(ctx context.Context, repos Repositories, order *trade.Order, action trade.OrderAction, products map[uuid.UUID]*catalog.Product) (*inventory.Outcome, error) {
	plan, err := s.reconciler.Plan(order, action, products)
	if err != nil {
		return nil, err
	}
	analytics, err := repos.Analytics().FindByProductIDsForUpdate(ctx, plan.ProductIDs())
	if err != nil {
		return nil, err
	}
	outcome, err := plan.Apply(products, analytics)
	if err != nil {
		return nil, err
	}

	for _, p := range outcome.Products {
		if err := repos.Products().Save(ctx, p); err != nil {
			return nil, err
		}
	}
	for _, a := range outcome.Analytics {
		if err := repos.Analytics().Save(ctx, a); err != nil {
			return nil, err
		}
	}
	if len(outcome.Movements) > 0 {
		if err := repos.Movements().CreateBatch(ctx, outcome.Movements); err != nil {
			return nil, err
		}
	}
	return outcome, nil
}

// reconciliationError wraps storage failures raised while an effect was in
// flight. Domain errors pass through unchanged.
func (s *Service) reconciliationError(t trade.Transition, err error) error {
	if t.Effect() == trade.EffectNone {
		return err
	}
	var de *shared.DomainError
	if errors.As(err, &de) && !errors.Is(err, shared.ErrConcurrencyConflict) {
		return err
	}
	return shared.NewReconciliationError(err)
}

// afterReconcile publishes the events raised during a committed unit of work
func (s *Service) afterReconcile(ctx context.Context, order *trade.Order, outcome *inventory.Outcome) {
	events := order.GetDomainEvents()
	if outcome != nil {
		if n := len(outcome.ClampedProducts); n > 0 {
			s.metrics.RecordStockClamp(ctx, n)
		}
		for _, p := range outcome.Products {
			events = append(events, p.GetDomainEvents()...)
			p.ClearDomainEvents()
		}
	}
	order.ClearDomainEvents()

	if s.publisher == nil || len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.log(ctx).Warn("failed to publish checkout events",
			zap.String("order_id", order.ID.String()),
			zap.Int("event_count", len(events)),
			zap.Error(err),
		)
	}
}
