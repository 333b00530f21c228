package telemetry

import (
	"context"
	"fmt"

	"github.com/CristobalNPE/ventesca-sub000/internal/domain/trade"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys
var (
	AttrFromStatus = attribute.Key("from_status")
	AttrToStatus   = attribute.Key("to_status")
	AttrDirection  = attribute.Key("direction")
)

// Counter wraps an int64 counter
type Counter struct {
	counter metric.Int64Counter
}

// NewCounter creates a counter on meter
func NewCounter(meter metric.Meter, name, description, unit string) (*Counter, error) {
	c, err := meter.Int64Counter(name,
		metric.WithDescription(description),
		metric.WithUnit(unit),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create counter %s: %w", name, err)
	}
	return &Counter{counter: c}, nil
}

// Add adds value to the counter
func (c *Counter) Add(ctx context.Context, value int64, attrs ...attribute.KeyValue) {
	c.counter.Add(ctx, value, metric.WithAttributes(attrs...))
}

// Inc adds one to the counter
func (c *Counter) Inc(ctx context.Context, attrs ...attribute.KeyValue) {
	c.Add(ctx, 1, attrs...)
}

// CheckoutMetrics counts order transitions, failed reconciliations and stock clamps
type CheckoutMetrics struct {
	transitions            *Counter
	reconciliationFailures *Counter
	stockClamps            *Counter
}

// NewCheckoutMetrics registers the checkout counters on meter
func NewCheckoutMetrics(meter metric.Meter) (*CheckoutMetrics, error) {
	transitions, err := NewCounter(meter, "checkout_order_transitions_total",
		"Order lifecycle transitions committed", "{transition}")
	if err != nil {
		return nil, err
	}
	failures, err := NewCounter(meter, "checkout_reconciliation_failures_total",
		"Lifecycle transitions aborted because stock or analytics could not be written", "{failure}")
	if err != nil {
		return nil, err
	}
	clamps, err := NewCounter(meter, "checkout_stock_clamps_total",
		"Products whose stock decrement was floored at zero", "{product}")
	if err != nil {
		return nil, err
	}

	return &CheckoutMetrics{
		transitions:            transitions,
		reconciliationFailures: failures,
		stockClamps:            clamps,
	}, nil
}

// RecordTransition counts a committed transition
func (m *CheckoutMetrics) RecordTransition(ctx context.Context, from, to trade.OrderStatus, effect trade.EffectDirection) {
	m.transitions.Inc(ctx,
		AttrFromStatus.String(from.String()),
		AttrToStatus.String(to.String()),
		AttrDirection.String(effect.String()),
	)
}

// RecordReconciliationFailure counts an aborted transition
func (m *CheckoutMetrics) RecordReconciliationFailure(ctx context.Context, effect trade.EffectDirection) {
	m.reconciliationFailures.Inc(ctx, AttrDirection.String(effect.String()))
}

// RecordStockClamp counts clamped products
func (m *CheckoutMetrics) RecordStockClamp(ctx context.Context, count int) {
	m.stockClamps.Add(ctx, int64(count))
}
