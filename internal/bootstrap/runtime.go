// Package bootstrap wires the process-wide dependencies shared by the commands.
package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"jobcrm/internal/cache"
	"jobcrm/internal/config"
	"jobcrm/internal/database"
	"jobcrm/internal/middleware"
	"jobcrm/internal/observability"
	"jobcrm/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const serviceName = "jobcrm-api"

// Options control runtime initialization behavior.
type Options struct {
	// SeedDemo loads the built-in demo fixtures. Ignored outside development.
	SeedDemo bool
}

// Runtime holds the initialized dependencies.
type Runtime struct {
	DB    *gorm.DB
	Redis *redis.Client

	shutdownTracing func(context.Context) error
}

// InitRuntime sets up tracing, connects to the database (applying the schema
// policy) and Redis, and optionally seeds demo data. Redis may end up nil.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*Runtime, error) {
	shutdown, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:  serviceName,
		Environment:  cfg.Env,
		Enabled:      cfg.TracingEnabled,
		Exporter:     cfg.TracingExporter,
		OTLPEndpoint: cfg.OTLPEndpoint,
		SamplerRatio: cfg.TracingSampleRatio,
	})
	if err != nil {
		return nil, fmt.Errorf("tracing init failed: %w", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		_ = shutdown(ctx)
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)

	rt := &Runtime{DB: db, Redis: cache.GetClient(), shutdownTracing: shutdown}

	if opts.SeedDemo {
		if err := seedDemo(ctx, cfg, db); err != nil {
			_ = rt.Close(ctx)
			return nil, err
		}
	}
	return rt, nil
}

func seedDemo(ctx context.Context, cfg *config.Config, db *gorm.DB) error {
	if !strings.EqualFold(cfg.Env, "development") {
		middleware.Logger.WarnContext(ctx, "demo seeding skipped outside development", "env", cfg.Env)
		return nil
	}
	fx, err := seed.DemoFixtures()
	if err != nil {
		return fmt.Errorf("load demo fixtures: %w", err)
	}
	if _, err := seed.NewSeeder(db).ApplyFixtures(ctx, fx); err != nil {
		return fmt.Errorf("seed demo fixtures: %w", err)
	}
	return nil
}

// Close flushes traces. The server closes the DB and Redis on its own shutdown.
func (rt *Runtime) Close(ctx context.Context) error {
	if rt == nil || rt.shutdownTracing == nil {
		return nil
	}
	return rt.shutdownTracing(ctx)
}
