package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/lot-ledger/internal/domain/entity"
)

// LotStockRow resultado crudo: un lote no eliminado con su saldo derivado del journal
// y los datos del producto unidos en la consulta. El use case agrega y ordena.
type LotStockRow struct {
	LotID            string
	LotNumber        string
	Location         string
	SafetyStockLevel decimal.Decimal
	ProductID        string
	ProductName      string
	MaterialGrade    string
	ProductType      string
	Unit             string
	PricePerUnit     decimal.Decimal
	Balance          decimal.Decimal
}

// SummaryRepository consultas de lectura para reportes. Read-only.
type SummaryRepository interface {
	LotStock(ctx context.Context) ([]LotStockRow, error)
	// JournalTotals suma IN y OUT de todo el journal.
	JournalTotals(ctx context.Context) (entity.LotTotals, error)
	CountProducts(ctx context.Context) (int, error)
}
