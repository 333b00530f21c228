package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func traceQuery(sql string) func() (string, int64) {
	return func() (string, int64) { return sql, 1 }
}

func TestGormLogger_Trace(t *testing.T) {
	tests := []struct {
		name    string
		level   gormlogger.LogLevel
		begin   time.Time
		err     error
		wantMsg string
		wantLvl zapcore.Level
	}{
		{"error", gormlogger.Error, time.Now(), errors.New("syntax"), "SQL Error", zapcore.ErrorLevel},
		{"slow", gormlogger.Warn, time.Now().Add(-time.Second), nil, "Slow SQL", zapcore.WarnLevel},
		{"query", gormlogger.Info, time.Now(), nil, "SQL Query", zapcore.DebugLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.DebugLevel)
			gl := NewGormLogger(zap.New(core), tt.level)

			gl.Trace(context.Background(), tt.begin, traceQuery("SELECT 1"), tt.err)

			entries := logs.All()
			if assert.Len(t, entries, 1) {
				assert.Equal(t, tt.wantMsg, entries[0].Message)
				assert.Equal(t, tt.wantLvl, entries[0].Level)
				assert.Equal(t, "SELECT 1", entries[0].ContextMap()["sql"])
			}
		})
	}
}

func TestGormLogger_IgnoresRecordNotFound(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	gl := NewGormLogger(zap.New(core), gormlogger.Error)

	gl.Trace(context.Background(), time.Now(), traceQuery("SELECT 1"), gormlogger.ErrRecordNotFound)
	assert.Equal(t, 0, logs.Len())

	loud := NewGormLogger(zap.New(core), gormlogger.Error, WithIgnoreRecordNotFoundError(false))
	loud.Trace(context.Background(), time.Now(), traceQuery("SELECT 1"), gormlogger.ErrRecordNotFound)
	assert.Equal(t, 1, logs.Len())
}

func TestGormLogger_Silent(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	gl := NewGormLogger(zap.New(core), gormlogger.Info).LogMode(gormlogger.Silent)

	gl.Trace(context.Background(), time.Now(), traceQuery("SELECT 1"), errors.New("x"))
	assert.Equal(t, 0, logs.Len())
}

func TestMapGormLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, MapGormLogLevel("silent"))
	assert.Equal(t, gormlogger.Error, MapGormLogLevel("error"))
	assert.Equal(t, gormlogger.Info, MapGormLogLevel("debug"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel("other"))
}

func TestGormLogger_TraceCarriesOrderContext(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	gl := NewGormLogger(zap.New(core), gormlogger.Info)
	ctx := WithOrderID(WithBusinessID(context.Background(), "biz-1"), "order-1")

	gl.Trace(ctx, time.Now(), func() (string, int64) { return "SELECT 1", -1 }, nil)

	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "biz-1", fields["business_id"])
	assert.Equal(t, "order-1", fields["order_id"])
	assert.NotContains(t, fields, "rows")
}

func TestGormLogger_ParamsFilter(t *testing.T) {
	sql := "UPDATE products SET stock = $1 WHERE id = $2"

	plain := NewGormLogger(zap.NewNop(), gormlogger.Info)
	gotSQL, params := plain.ParamsFilter(context.Background(), sql, 7, "p-1")
	assert.Equal(t, sql, gotSQL)
	assert.Equal(t, []any{7, "p-1"}, params)

	redacted := NewGormLogger(zap.NewNop(), gormlogger.Info, WithParameterizedQueries(true))
	gotSQL, params = redacted.ParamsFilter(context.Background(), sql, 7, "p-1")
	assert.Equal(t, sql, gotSQL)
	assert.Nil(t, params)
}
