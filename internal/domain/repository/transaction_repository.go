package repository

import (
	"context"

	"github.com/jhoicas/lot-ledger/internal/domain/entity"
)

// TransactionWithLot movimiento con datos del lote unidos en la consulta.
type TransactionWithLot struct {
	entity.Transaction
	LotNumber string
	ProductID string
}

// TransactionRepository puerto del journal. Solo inserta y lee: no hay update ni delete.
type TransactionRepository interface {
	// Create asienta el movimiento. La implementación puede fijar txn.CreatedAt con su propio reloj.
	Create(ctx context.Context, txn *entity.Transaction) error
	GetByID(ctx context.Context, id string) (*entity.Transaction, error)
	// ListByLot devuelve los movimientos del lote en orden de asiento inverso (el último asentado primero).
	ListByLot(ctx context.Context, lotID string) ([]*entity.Transaction, error)
	// List devuelve todos los movimientos paginados, último asentado primero, y el total.
	List(ctx context.Context, limit, offset int) ([]TransactionWithLot, int, error)
	// Totals suma IN y OUT del lote.
	Totals(ctx context.Context, lotID string) (entity.LotTotals, error)
	// TotalsByLots igual que Totals para varios lotes en una sola consulta.
	TotalsByLots(ctx context.Context, lotIDs []string) (map[string]entity.LotTotals, error)
}
