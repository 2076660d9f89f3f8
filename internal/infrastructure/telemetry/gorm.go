package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig holds configuration for database tracing.
type DBTracingConfig struct {
	Enabled         bool
	LogFullSQL      bool // include query variables in spans
	SlowQueryThresh time.Duration
}

type queryStartKey struct{}

// InstrumentGORM registers the otelgorm plugin plus a slow query detector on db
func InstrumentGORM(db *gorm.DB, cfg DBTracingConfig, logger *zap.Logger) error {
	if !cfg.Enabled {
		return nil
	}

	opts := []otelgorm.Option{otelgorm.WithDBName("postgresql")}
	if !cfg.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	detector := &slowQueryDetector{threshold: cfg.SlowQueryThresh, logger: logger.Named("gorm")}
	if err := detector.register(db); err != nil {
		return err
	}

	logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", cfg.LogFullSQL),
		zap.Duration("slow_query_threshold", cfg.SlowQueryThresh),
	)
	return nil
}

type slowQueryDetector struct {
	threshold time.Duration
	logger    *zap.Logger
}

func (d *slowQueryDetector) register(db *gorm.DB) error {
	cb := db.Callback()
	processors := []struct {
		name   string
		before func(string) error
		after  func(string) error
	}{
		{"create", func(n string) error { return cb.Create().Before("gorm:create").Register(n, d.before) },
			func(n string) error { return cb.Create().After("gorm:create").Register(n, d.after) }},
		{"query", func(n string) error { return cb.Query().Before("gorm:query").Register(n, d.before) },
			func(n string) error { return cb.Query().After("gorm:query").Register(n, d.after) }},
		{"update", func(n string) error { return cb.Update().Before("gorm:update").Register(n, d.before) },
			func(n string) error { return cb.Update().After("gorm:update").Register(n, d.after) }},
		{"delete", func(n string) error { return cb.Delete().Before("gorm:delete").Register(n, d.before) },
			func(n string) error { return cb.Delete().After("gorm:delete").Register(n, d.after) }},
		{"row", func(n string) error { return cb.Row().Before("gorm:row").Register(n, d.before) },
			func(n string) error { return cb.Row().After("gorm:row").Register(n, d.after) }},
		{"raw", func(n string) error { return cb.Raw().Before("gorm:raw").Register(n, d.before) },
			func(n string) error { return cb.Raw().After("gorm:raw").Register(n, d.after) }},
	}
	for _, p := range processors {
		if err := p.before("slow_query:before_" + p.name); err != nil {
			return err
		}
		if err := p.after("slow_query:after_" + p.name); err != nil {
			return err
		}
	}
	return nil
}

func (d *slowQueryDetector) before(db *gorm.DB) {
	if db.Statement.Context != nil {
		db.Statement.Context = context.WithValue(db.Statement.Context, queryStartKey{}, time.Now())
	}
}

func (d *slowQueryDetector) after(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	start, ok := ctx.Value(queryStartKey{}).(time.Time)
	if !ok {
		return
	}

	span := trace.SpanFromContext(ctx)
	if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
		Fail(span, db.Error)
	}

	elapsed := time.Since(start)
	if d.threshold <= 0 || elapsed <= d.threshold {
		return
	}
	span.SetAttributes(
		attribute.Bool("db.slow_query", true),
		attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
	)
	d.logger.Warn("Slow query",
		zap.String("table", db.Statement.Table),
		zap.Duration("elapsed", elapsed),
		zap.Duration("threshold", d.threshold),
	)
}
