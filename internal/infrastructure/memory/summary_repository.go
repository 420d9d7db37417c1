package memory

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/lot-ledger/internal/domain/entity"
	"github.com/jhoicas/lot-ledger/internal/domain/repository"
)

var _ repository.SummaryRepository = (*SummaryRepo)(nil)

// SummaryRepo consultas de reporte sobre el almacén en memoria.
type SummaryRepo struct {
	s *Store
}

// NewSummaryRepository construye el repositorio.
func NewSummaryRepository(s *Store) *SummaryRepo {
	return &SummaryRepo{s: s}
}

func (r *SummaryRepo) LotStock(_ context.Context) ([]repository.LotStockRow, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rows := make([]repository.LotStockRow, 0, len(r.s.lots))
	for _, l := range r.s.lots {
		if l.IsDeleted {
			continue
		}
		row := repository.LotStockRow{
			LotID:            l.ID,
			LotNumber:        l.LotNumber,
			Location:         l.Location,
			SafetyStockLevel: l.SafetyStockLevel,
			ProductID:        l.ProductID,
			PricePerUnit:     decimal.Zero,
			Balance:          r.s.totals(l.ID).Balance(),
		}
		if p, ok := r.s.products[l.ProductID]; ok {
			row.ProductName = p.Name
			row.MaterialGrade = p.MaterialGrade
			row.ProductType = p.Type
			row.Unit = p.Unit
			row.PricePerUnit = p.PricePerUnit
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (r *SummaryRepo) JournalTotals(_ context.Context) (entity.LotTotals, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	totals := entity.LotTotals{In: decimal.Zero, Out: decimal.Zero}
	for _, id := range r.s.txnIDs {
		t := r.s.txns[id]
		if t.Type == entity.TransactionTypeOUT {
			totals.Out = totals.Out.Add(t.Quantity)
		} else {
			totals.In = totals.In.Add(t.Quantity)
		}
	}
	return totals, nil
}

func (r *SummaryRepo) CountProducts(_ context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.products), nil
}
