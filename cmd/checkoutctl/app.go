package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/CristobalNPE/ventesca-sub000/internal/application/checkout"
	"github.com/CristobalNPE/ventesca-sub000/internal/infrastructure/config"
	"github.com/CristobalNPE/ventesca-sub000/internal/infrastructure/event"
	"github.com/CristobalNPE/ventesca-sub000/internal/infrastructure/lock"
	"github.com/CristobalNPE/ventesca-sub000/internal/infrastructure/logger"
	"github.com/CristobalNPE/ventesca-sub000/internal/infrastructure/persistence"
	"github.com/CristobalNPE/ventesca-sub000/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// app holds everything a command needs, built once per invocation
type app struct {
	cfg *config.Config
	log *zap.Logger
	db  *persistence.Database
	svc *checkout.Service

	products  *persistence.GormProductRepository
	discounts *persistence.GormDiscountRepository
	movements *persistence.GormStockMovementRepository

	closers []func(context.Context) error
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	output := cfg.Log.Output
	if output == "" || output == "stdout" {
		// stdout carries command results
		output = "stderr"
	}
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	a := &app{cfg: cfg}
	a.onClose(func(context.Context) error {
		_ = log.Sync()
		return nil
	})

	providers, err := telemetry.NewProviders(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
		LogsEnabled:       cfg.Telemetry.LogsEnabled,
	}, log)
	if err != nil {
		return nil, a.fail(ctx, fmt.Errorf("failed to initialize telemetry: %w", err))
	}
	a.onClose(providers.Shutdown)
	log = telemetry.BridgeLogger(log, providers, cfg.Telemetry.ServiceName, logger.ParseLevel(cfg.Log.Level))
	a.log = log

	db, err := persistence.NewDatabase(&cfg.Database,
		persistence.WithLogger(log, logger.MapGormLogLevel(cfg.Log.GormMode)),
		persistence.WithParameterizedSQL(!cfg.Telemetry.DBLogFullSQL))
	if err != nil {
		return nil, a.fail(ctx, err)
	}
	a.db = db
	a.onClose(func(context.Context) error { return db.Close() })

	if db.Driver == "sqlite" {
		if err := db.AutoMigrate(); err != nil {
			return nil, a.fail(ctx, fmt.Errorf("failed to migrate sqlite schema: %w", err))
		}
	}

	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:       cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		DBSystem:      db.DBSystem(),
		WithVariables: cfg.Telemetry.DBLogFullSQL,
	}, log); err != nil {
		return nil, a.fail(ctx, fmt.Errorf("failed to register database tracing: %w", err))
	}

	locker, err := lock.New(ctx, cfg.Lock, cfg.Redis, log)
	if err != nil {
		return nil, a.fail(ctx, err)
	}
	if c, ok := locker.(io.Closer); ok {
		a.onClose(func(context.Context) error { return c.Close() })
	}

	bus := event.NewInMemoryEventBus(log)
	bus.Subscribe(checkout.NewStockClampedHandler(log))
	bus.Subscribe(checkout.NewOrderAuditHandler(log))
	if err := bus.Start(ctx); err != nil {
		return nil, a.fail(ctx, fmt.Errorf("failed to start event bus: %w", err))
	}
	a.onClose(bus.Stop)

	metrics, err := telemetry.NewCheckoutMetrics(providers.Meter("checkout"))
	if err != nil {
		return nil, a.fail(ctx, fmt.Errorf("failed to create checkout metrics: %w", err))
	}

	a.svc = checkout.NewService(persistence.NewGormUnitOfWork(db.DB), log,
		checkout.WithLocker(locker),
		checkout.WithEventPublisher(bus),
		checkout.WithMetrics(metrics),
	)
	a.products = persistence.NewGormProductRepository(db.DB)
	a.discounts = persistence.NewGormDiscountRepository(db.DB)
	a.movements = persistence.NewGormStockMovementRepository(db.DB)
	return a, nil
}

func (a *app) onClose(fn func(context.Context) error) {
	a.closers = append(a.closers, fn)
}

// Close releases resources in reverse order of acquisition
func (a *app) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i](ctx))
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *app) fail(ctx context.Context, err error) error {
	return errors.Join(err, a.Close(ctx))
}
