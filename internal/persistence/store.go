package persistence

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/workorder-service/internal/config"
	"github.com/spec-kit/workorder-service/internal/repository"
	"github.com/spec-kit/workorder-service/internal/repository/memory"
	"github.com/spec-kit/workorder-service/internal/repository/sqlite"
)

// OpenStore builds the backend selected by STORE_DRIVER. The returned
// cleanup releases connections and is safe to call once.
func OpenStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.Store, func(), error) {
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		pg, err := NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		if cfg.Postgres.RunMigrations {
			if err := RunMigrations(ctx, pg.PoolHandle(), MigrationSource(cfg.Postgres.MigrationsDir), logger); err != nil {
				pg.Close()
				return nil, nil, err
			}
		}
		return repository.NewPostgresStore(pg.PoolHandle()), pg.Close, nil

	case config.DriverSQLite:
		store, err := sqlite.Open(ctx, cfg.Store.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("opened sqlite store", zap.String("path", cfg.Store.SQLitePath))
		return store, func() { _ = store.Close() }, nil

	case config.DriverMemory:
		logger.Warn("using in-memory store; data is lost on restart")
		return memory.NewStore(), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// SeedFromFile loads fixtures from path into store. An empty path is a no-op.
func SeedFromFile(ctx context.Context, store repository.Seeder, path string, logger *zap.Logger) error {
	if path == "" {
		return nil
	}
	fixtures, err := LoadFixtures(path)
	if err != nil {
		return err
	}
	if err := store.Seed(ctx, fixtures); err != nil {
		return fmt.Errorf("seed %s: %w", path, err)
	}
	logger.Info("seeded fixtures",
		zap.String("file", path),
		zap.Int("users", len(fixtures.Users)),
		zap.Int("equipment", len(fixtures.Equipment)),
	)
	return nil
}
