package kvstore

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"sobgamecoin/internal/config"
	"sobgamecoin/internal/infrastructure/mysql"
	"sobgamecoin/internal/infrastructure/postgres"
	"sobgamecoin/internal/storage"
)

// Open returns the store selected by STORAGE_DRIVER with its schema in
// place. The returned close function releases the underlying connections.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (storage.Store, func(), error) {
	switch cfg.Storage.Driver {
	case config.StorageMemory:
		logger.Warn("using in-memory storage, data is lost on restart")
		return storage.NewMemoryStore(), func() {}, nil

	case config.StorageMySQL:
		db, err := mysql.NewConnection(cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to mysql: %w", err)
		}
		store := mysql.NewMySQLKVStore(db, cfg.Order.TxTimeout)
		if err := store.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("preparing mysql schema: %w", err)
		}
		logger.Info("mysql storage ready", zap.String("host", cfg.Database.Host), zap.String("database", cfg.Database.Name))
		return store, func() { db.Close() }, nil

	case config.StoragePostgres:
		pool, err := postgres.Connect(ctx, cfg.Postgres)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to postgres: %w", err)
		}
		store := postgres.NewKVStore(pool)
		if err := store.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("preparing postgres schema: %w", err)
		}
		logger.Info("postgres storage ready")
		return store, pool.Close, nil
	}

	return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}
