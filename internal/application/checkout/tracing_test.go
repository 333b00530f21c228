package checkout

import (
	"context"
	"testing"

	"github.com/CristobalNPE/ventesca-sub000/internal/domain/shared"
	"github.com/CristobalNPE/ventesca-sub000/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func withSpanRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })
	return recorder
}

func endedSpan(t *testing.T, recorder *tracetest.SpanRecorder, name string) sdktrace.ReadOnlySpan {
	t.Helper()
	for _, s := range recorder.Ended() {
		if s.Name() == name {
			return s
		}
	}
	require.Failf(t, "span not recorded", "no ended span named %s", name)
	return nil
}

func TestService_ReadsAreTraced(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	orderID := f.pendingOrder(t)
	f.addLine(t, orderID, 1, trade.LineTypeSell)
	recorder := withSpanRecorder(t)

	_, err := f.svc.GetOrderTotals(ctx, orderID)
	require.NoError(t, err)
	_, err = f.svc.GetOrder(ctx, orderID)
	require.NoError(t, err)

	for _, name := range []string{"checkout.get_order_totals", "checkout.get_order"} {
		span := endedSpan(t, recorder, name)
		assert.Contains(t, span.Attributes(), attribute.String("order_id", orderID.String()), name)
	}
}

func TestService_ReadOfMissingOrderRecordsError(t *testing.T) {
	f := newServiceFixture(t)
	recorder := withSpanRecorder(t)

	_, err := f.svc.GetOrderTotals(context.Background(), uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)

	span := endedSpan(t, recorder, "checkout.get_order_totals")
	assert.Equal(t, codes.Error, span.Status().Code)
}
