package postgres

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/lot-ledger/internal/domain/entity"
	"github.com/jhoicas/lot-ledger/internal/domain/repository"
)

var _ repository.SummaryRepository = (*SummaryRepo)(nil)

// SummaryRepo consultas de lectura para reportes. Los saldos salen del journal, no del contador.
type SummaryRepo struct {
	q Querier
}

// NewSummaryRepository construye el adaptador.
func NewSummaryRepository(q Querier) *SummaryRepo {
	return &SummaryRepo{q: q}
}

func (r *SummaryRepo) LotStock(ctx context.Context) ([]repository.LotStockRow, error) {
	query := `
		SELECT l.id, l.lot_number, l.location, l.safety_stock_level, l.product_id,
			COALESCE(p.name, ''), COALESCE(p.material_grade, ''), COALESCE(p.type, ''), COALESCE(p.unit, ''),
			COALESCE(p.price_per_unit, 0),
			COALESCE(t.total_in, 0) - COALESCE(t.total_out, 0)
		FROM lots l
		LEFT JOIN products p ON p.id = l.product_id
		LEFT JOIN (
			SELECT lot_id,
				SUM(quantity) FILTER (WHERE type = 'IN')  AS total_in,
				SUM(quantity) FILTER (WHERE type = 'OUT') AS total_out
			FROM lot_transactions
			GROUP BY lot_id
		) t ON t.lot_id = l.id
		WHERE l.is_deleted = false`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("lot stock: %w", err)
	}
	defer rows.Close()

	list := make([]repository.LotStockRow, 0)
	for rows.Next() {
		var row repository.LotStockRow
		if err := rows.Scan(
			&row.LotID, &row.LotNumber, &row.Location, &row.SafetyStockLevel, &row.ProductID,
			&row.ProductName, &row.MaterialGrade, &row.ProductType, &row.Unit,
			&row.PricePerUnit, &row.Balance,
		); err != nil {
			return nil, fmt.Errorf("scan lot stock: %w", err)
		}
		list = append(list, row)
	}
	return list, rows.Err()
}

func (r *SummaryRepo) JournalTotals(ctx context.Context) (entity.LotTotals, error) {
	totals := entity.LotTotals{In: decimal.Zero, Out: decimal.Zero}
	query := `SELECT ` + totalsSelect + ` FROM lot_transactions`
	if err := r.q.QueryRow(ctx, query).Scan(&totals.In, &totals.Out); err != nil {
		return totals, fmt.Errorf("journal totals: %w", err)
	}
	return totals, nil
}

func (r *SummaryRepo) CountProducts(ctx context.Context) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM products`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}
