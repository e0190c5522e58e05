// Package bootstrap wires process-level dependencies shared by the commands.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"photogram/internal/cache"
	"photogram/internal/config"
	"photogram/internal/database"
	"photogram/internal/middleware"
	"photogram/internal/models"
	"photogram/internal/observability"
	"photogram/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedDemoData fills an empty development database with fake data.
	SeedDemoData bool
	Seed         seed.Options
}

// Runtime holds the shared connections of a running process.
type Runtime struct {
	DB    *gorm.DB
	Redis *redis.Client

	shutdownTracing func(context.Context) error
}

// InitRuntime installs tracing, connects to the database and Redis, and
// optionally seeds demo data.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*Runtime, error) {
	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfig{
		ServiceName:  observability.ServiceName,
		Environment:  cfg.Env,
		Enabled:      cfg.TracingEnabled,
		Exporter:     cfg.TracingExporter,
		OTLPEndpoint: cfg.OTLPEndpoint,
		SamplerRatio: cfg.TracingSampler,
	})
	if err != nil {
		return nil, fmt.Errorf("tracing init failed: %w", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		_ = shutdownTracing(ctx)
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	// A nil client means Redis is unreachable; callers degrade gracefully.
	cache.InitRedis(cfg.RedisURL)

	rt := &Runtime{DB: db, Redis: cache.GetClient(), shutdownTracing: shutdownTracing}

	if opts.SeedDemoData {
		if err := SeedIfEmpty(ctx, cfg, db, opts.Seed); err != nil {
			return nil, fmt.Errorf("failed to seed demo data: %w", err)
		}
	}
	return rt, nil
}

// Close flushes traces.
func (r *Runtime) Close(ctx context.Context) error {
	if r.shutdownTracing == nil {
		return nil
	}
	return r.shutdownTracing(ctx)
}

// SeedIfEmpty seeds development databases that have no users yet.
func SeedIfEmpty(ctx context.Context, cfg *config.Config, db *gorm.DB, opts seed.Options) error {
	if !strings.EqualFold(cfg.Env, "development") {
		return nil
	}
	var n int64
	if err := db.WithContext(ctx).Model(&models.User{}).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		middleware.Logger.InfoContext(ctx, "demo seed skipped, users present", slog.Int64("users", n))
		return nil
	}
	if opts.FacebookAppID == "" {
		opts.FacebookAppID = cfg.FacebookAppID
	}
	_, err := seed.NewSeeder(db, opts).Run(ctx)
	return err
}
