package cli

import (
	"context"
	"fmt"

	"github.com/api-sage/bank-ledger/src/internal/adapter/repository/memory"
	"github.com/api-sage/bank-ledger/src/internal/adapter/repository/postgres"
	"github.com/api-sage/bank-ledger/src/internal/adapter/repository/sqlite"
	"github.com/api-sage/bank-ledger/src/internal/config"
	"github.com/api-sage/bank-ledger/src/internal/domain"
	"github.com/api-sage/bank-ledger/src/internal/logger"
)

// openStore opens the configured backend. With migrate set, pending Postgres
// migrations are applied first; SQLite applies its embedded schema on open.
func openStore(ctx context.Context, cfg config.Config, migrate bool) (domain.LedgerStore, error) {
	switch cfg.Store {
	case config.StorePostgres:
		db, err := postgres.Open(ctx, cfg.DatabaseDSN, poolOptions(cfg))
		if err != nil {
			return nil, err
		}
		if migrate {
			applied, err := postgres.RunMigrations(ctx, db, cfg.MigrationsDir)
			if err != nil {
				_ = db.Close()
				return nil, fmt.Errorf("run migrations: %w", err)
			}
			logger.Info("migrations completed", logger.Fields{"applied": len(applied)})
		}
		return postgres.NewLedgerStore(db), nil
	case config.StoreSQLite:
		return sqlite.Open(ctx, cfg.SQLitePath)
	case config.StoreMemory:
		logger.Warn("using in-memory ledger store; data is lost on exit", nil)
		return memory.NewLedgerStore(), nil
	default:
		return nil, fmt.Errorf("unsupported store %q", cfg.Store)
	}
}

func poolOptions(cfg config.Config) postgres.PoolOptions {
	pool := postgres.DefaultPoolOptions()
	if cfg.DBMaxOpenConns > 0 {
		pool.MaxOpenConns = cfg.DBMaxOpenConns
	}
	if cfg.DBMaxIdleConns > 0 {
		pool.MaxIdleConns = cfg.DBMaxIdleConns
	}
	return pool
}
