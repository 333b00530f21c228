package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewProviders_Disabled(t *testing.T) {
	ctx := context.Background()

	p, err := NewProviders(ctx, Config{Enabled: false, ServiceName: "test"}, zap.NewNop())
	require.NoError(t, err)

	assert.False(t, p.IsEnabled())
	assert.Nil(t, p.LoggerProvider())
	assert.NotNil(t, p.Meter("test"))
	assert.NoError(t, p.Shutdown(ctx))
}

func TestSampler(t *testing.T) {
	assert.Contains(t, sampler(1).Description(), "AlwaysOn")
	assert.Contains(t, sampler(0).Description(), "AlwaysOff")
	assert.Contains(t, sampler(0.25).Description(), "TraceIDRatioBased")
}

func TestBridgeLogger_WithoutLogExport(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	bridged := BridgeLogger(base, &Providers{}, "test", zapcore.InfoLevel)
	bridged.Info("hello")

	assert.Same(t, base, bridged)
	assert.Equal(t, 1, logs.Len())
}

func TestBridgeLogger_TeesToOTEL(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	lp := sdklog.NewLoggerProvider()
	t.Cleanup(func() { _ = lp.Shutdown(context.Background()) })

	bridged := BridgeLogger(zap.New(core), &Providers{logs: lp}, "test", zapcore.WarnLevel)
	bridged.Debug("local only")
	bridged.Warn("both")

	assert.Equal(t, 2, logs.Len(), "base core still receives every entry")
}

func TestLevelFilterCore(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	filtered := &levelFilterCore{Core: core, minLevel: zapcore.WarnLevel}

	assert.False(t, filtered.Enabled(zapcore.InfoLevel))
	assert.True(t, filtered.Enabled(zapcore.ErrorLevel))
	assert.False(t, filtered.With(nil).Enabled(zapcore.DebugLevel))

	logger := zap.New(filtered)
	logger.Info("dropped")
	logger.Warn("kept")
	assert.Equal(t, 1, logs.Len())

	assert.False(t, NewZapOTELCore("test", nil, zapcore.DebugLevel).Enabled(zapcore.ErrorLevel))
}
