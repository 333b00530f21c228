package inventory

import (
	"bytes"
	"fmt"
	"sort"
	"time"

	"github.com/CristobalNPE/ventesca-sub000/internal/domain/catalog"
	"github.com/CristobalNPE/ventesca-sub000/internal/domain/shared"
	"github.com/CristobalNPE/ventesca-sub000/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductDelta is the net change one reconciliation makes to a product
type ProductDelta struct {
	ProductID    uuid.UUID
	StockDelta   int
	SalesDelta   int
	ProfitDelta  decimal.Decimal
	ReturnsDelta int
}

type lineEffect struct {
	item       *trade.LineItem
	unitCost   decimal.Decimal
	profit     decimal.Decimal
	stockDelta int
}

// Plan is the computed effect of an order action, ready to be applied to
// locked products and analytics inside one unit of work.
type Plan struct {
	OrderID    uuid.UUID
	BusinessID uuid.UUID
	Action     trade.OrderAction
	Direction  trade.EffectDirection
	// Deltas are sorted by ascending product id
	Deltas []ProductDelta

	lines   []lineEffect
	now     time.Time
	applied bool
}

// ProductIDs returns the products touched by the plan in ascending order
func (p *Plan) ProductIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(p.Deltas))
	for i := range p.Deltas {
		ids[i] = p.Deltas[i].ProductID
	}
	return ids
}

// Outcome is what applying a plan changed
type Outcome struct {
	Products        []*catalog.Product
	Analytics       []*catalog.ProductAnalytics
	Movements       []*StockMovement
	ClampedProducts []uuid.UUID
}

// Reconciler turns order lifecycle actions into stock and analytics deltas
type Reconciler struct {
	clock func() time.Time
}

// NewReconciler creates a reconciler using the wall clock
func NewReconciler() *Reconciler {
	return &Reconciler{clock: time.Now}
}

// NewReconcilerWithClock creates a reconciler with a custom clock
func NewReconcilerWithClock(clock func() time.Time) *Reconciler {
	return &Reconciler{clock: clock}
}

// SortIDs orders product ids ascending. Row locks are taken in this order.
func SortIDs(ids []uuid.UUID) {
	sort.Slice(ids, func(i, j int) bool {
		return bytes.Compare(ids[i][:], ids[j][:]) < 0
	})
}

// Plan computes the per-product deltas of action over the order lines.
//
// APPLY snapshots each line's cost and profit from the current product and
// removes SELL/PROMO units from stock (RETURN units go back in). REVERSE negates
// exactly what the last APPLY recorded on the lines, so the pair is lossless.
// products must contain every product referenced by the order.
func (r *Reconciler) Plan(order *trade.Order, action trade.OrderAction, products map[uuid.UUID]*catalog.Product) (*Plan, error) {
	direction := action.Direction()
	if direction == trade.EffectNone {
		return nil, shared.NewValidationError("action", fmt.Sprintf("Action %q has no stock effect", action))
	}

	plan := &Plan{
		OrderID:    order.ID,
		BusinessID: order.BusinessID,
		Action:     action,
		Direction:  direction,
		lines:      make([]lineEffect, 0, len(order.Items)),
		now:        r.clock(),
	}
	deltas := make(map[uuid.UUID]*ProductDelta)
	factor := direction.Factor()

	for i := range order.Items {
		item := &order.Items[i]
		product, ok := products[item.ProductID]
		if !ok {
			return nil, shared.NewNotFoundError("product", item.ProductID)
		}

		sign := item.Sign()
		effect := lineEffect{item: item}
		returns := 0
		if item.Type == trade.LineTypeReturn {
			returns = item.Quantity
		}

		if direction == trade.EffectApply {
			effect.unitCost = product.UnitCost
			effect.profit = item.LineProfit(product.UnitCost)
			effect.stockDelta = -sign * item.Quantity
		} else {
			effect.unitCost = item.UnitCost
			effect.profit = item.Profit.Neg()
			effect.stockDelta = -item.AppliedStockDelta
		}
		plan.lines = append(plan.lines, effect)

		d, ok := deltas[item.ProductID]
		if !ok {
			d = &ProductDelta{ProductID: item.ProductID, ProfitDelta: decimal.Zero}
			deltas[item.ProductID] = d
		}
		d.StockDelta += effect.stockDelta
		d.SalesDelta += factor * sign * item.Quantity
		d.ProfitDelta = d.ProfitDelta.Add(effect.profit)
		d.ReturnsDelta += factor * returns
	}

	ids := make([]uuid.UUID, 0, len(deltas))
	for id := range deltas {
		ids = append(ids, id)
	}
	SortIDs(ids)
	plan.Deltas = make([]ProductDelta, len(ids))
	for i, id := range ids {
		plan.Deltas[i] = *deltas[id]
	}
	return plan, nil
}

// Apply writes the plan to the given products and analytics and records the
// effect on the order lines. Stock is floored at zero. Missing analytics rows
// are created. A plan can be applied once.
func (p *Plan) Apply(products map[uuid.UUID]*catalog.Product, analytics map[uuid.UUID]*catalog.ProductAnalytics) (*Outcome, error) {
	if p.applied {
		return nil, shared.NewDomainError(shared.CodeInvalidState, "Reconciliation plan was already applied")
	}
	for _, d := range p.Deltas {
		if _, ok := products[d.ProductID]; !ok {
			return nil, shared.NewNotFoundError("product", d.ProductID)
		}
	}

	out := &Outcome{
		Products:  make([]*catalog.Product, 0, len(p.Deltas)),
		Analytics: make([]*catalog.ProductAnalytics, 0, len(p.Deltas)),
	}
	for _, d := range p.Deltas {
		product := products[d.ProductID]
		before := product.Stock
		applied, clamped := product.ApplyStockDelta(d.StockDelta)

		stats, ok := analytics[d.ProductID]
		if !ok {
			stats = catalog.NewProductAnalytics(product)
			analytics[d.ProductID] = stats
		}
		stats.Apply(d.SalesDelta, d.ProfitDelta, d.ReturnsDelta)

		out.Products = append(out.Products, product)
		out.Analytics = append(out.Analytics, stats)
		if d.StockDelta != 0 {
			out.Movements = append(out.Movements, newStockMovement(p, d.ProductID, d.StockDelta, applied, before, clamped, p.now))
		}
		if clamped {
			out.ClampedProducts = append(out.ClampedProducts, d.ProductID)
		}

		p.recordLines(d.ProductID, applied, clamped)
	}

	p.applied = true
	return out, nil
}

// recordLines distributes the applied stock delta of a product over its lines.
// Without a clamp every line keeps its own delta; with one, decrements absorb
// the shortfall in line order.
func (p *Plan) recordLines(productID uuid.UUID, applied int, clamped bool) {
	available := applied
	if clamped {
		for _, le := range p.lines {
			if le.item.ProductID == productID && le.stockDelta > 0 {
				available -= le.stockDelta
			}
		}
	}

	for _, le := range p.lines {
		if le.item.ProductID != productID {
			continue
		}
		share := le.stockDelta
		if clamped && share < 0 {
			if share < available {
				share = available
			}
			available -= share
		}

		if p.Direction == trade.EffectApply {
			le.item.RecordEffect(le.unitCost, le.profit, share)
		} else {
			le.item.ClearEffect()
		}
	}
}
