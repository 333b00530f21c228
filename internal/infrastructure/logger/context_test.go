package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestFromContext_Default(t *testing.T) {
	assert.NotNil(t, FromContext(context.Background()))
}

func TestWithRequestID(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)

	ctx, log := WithRequestID(context.Background(), zap.New(core), "req-1")
	log.Info("first")
	FromContext(ctx).Info("second")

	assert.Equal(t, "req-1", GetRequestID(ctx))
	for _, e := range logs.All() {
		assert.Equal(t, "req-1", e.ContextMap()["request_id"])
	}
	assert.Equal(t, 2, logs.Len())
}

func TestWithBusinessAndOrderID(t *testing.T) {
	ctx := WithOrderID(WithBusinessID(context.Background(), "biz-1"), "order-1")
	assert.Equal(t, "biz-1", GetBusinessID(ctx))
	assert.Equal(t, "order-1", GetOrderID(ctx))
	assert.Empty(t, GetRequestID(ctx))

	assert.Equal(t, []zap.Field{
		zap.String("business_id", "biz-1"),
		zap.String("order_id", "order-1"),
	}, Fields(ctx))
	assert.Empty(t, Fields(context.Background()))
}

func TestL_AddsOrderFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	ctx, _ := WithRequestID(context.Background(), zap.New(core), "req-2")
	ctx = WithOrderID(ctx, "order-2")

	L(ctx).Info("line added")

	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "req-2", fields["request_id"])
	assert.Equal(t, "order-2", fields["order_id"])
	assert.NotContains(t, fields, "business_id")
}

func TestL_AddsTraceFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	tp := sdktrace.NewTracerProvider()
	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	defer span.End()

	ctx = WithContext(ctx, zap.New(core))
	L(ctx).Info("traced")

	fields := logs.All()[0].ContextMap()
	assert.Equal(t, span.SpanContext().TraceID().String(), fields["trace_id"])
	assert.Equal(t, span.SpanContext().SpanID().String(), fields["span_id"])
}

func TestWithTraceContext_NoSpan(t *testing.T) {
	base := zap.NewNop()
	assert.Same(t, base, WithTraceContext(context.Background(), base))
}
