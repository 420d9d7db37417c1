package main

import (
	"context"
	"fmt"

	"github.com/jhoicas/lot-ledger/internal/application/ledger"
	"github.com/jhoicas/lot-ledger/internal/domain/repository"
	"github.com/jhoicas/lot-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/lot-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/lot-ledger/pkg/config"
	"github.com/jhoicas/lot-ledger/pkg/logger"
)

// storage repositorios del backend elegido en STORAGE_DRIVER.
type storage struct {
	products  repository.ProductRepository
	lots      repository.LotRepository
	txns      repository.TransactionRepository
	logs      repository.AuditLogRepository
	summaries repository.SummaryRepository
	txRunner  ledger.TxRunner
	close     func()
}

func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (*storage, error) {
	if cfg.Storage.Driver == config.StorageMemory {
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		store := memory.NewStore()
		return &storage{
			products:  memory.NewProductRepository(store),
			lots:      memory.NewLotRepository(store),
			txns:      memory.NewTransactionRepository(store),
			logs:      memory.NewAuditLogRepository(store),
			summaries: memory.NewSummaryRepository(store),
			txRunner:  memory.NewTxRunner(store),
			close:     func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
	}
	if cfg.DB.AutoMigrate {
		applied, err := postgres.Migrate(ctx, pool)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("migraciones: %w", err)
		}
		log.Info().Strs("applied", applied).Msg("migraciones aplicadas")
	}
	return &storage{
		products:  postgres.NewProductRepository(pool),
		lots:      postgres.NewLotRepository(pool),
		txns:      postgres.NewTransactionRepository(pool),
		logs:      postgres.NewAuditLogRepository(pool),
		summaries: postgres.NewSummaryRepository(pool),
		txRunner:  postgres.NewTxRunner(pool),
		close:     pool.Close,
	}, nil
}
