package memory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/lot-ledger/internal/domain/entity"
	"github.com/jhoicas/lot-ledger/internal/domain/repository"
)

var _ repository.TransactionRepository = (*TransactionRepo)(nil)

// TransactionRepo journal en memoria: solo inserciones.
type TransactionRepo struct {
	s  *Store
	tx *tx
}

// NewTransactionRepository construye el repositorio fuera de transacción.
func NewTransactionRepository(s *Store) *TransactionRepo {
	return &TransactionRepo{s: s}
}

func (r *TransactionRepo) Create(_ context.Context, txn *entity.Transaction) error {
	cp := *txn
	return r.s.write(r.tx, nil, func(s *Store) {
		s.txns[cp.ID] = &cp
		s.txnIDs = append(s.txnIDs, cp.ID)
		s.nextSeq(cp.ID)
	})
}

func (r *TransactionRepo) GetByID(_ context.Context, id string) (*entity.Transaction, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t, ok := r.s.txns[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (r *TransactionRepo) ListByLot(_ context.Context, lotID string) ([]*entity.Transaction, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.Transaction, 0)
	for _, id := range r.s.txnIDs {
		if t := r.s.txns[id]; t.LotID == lotID {
			cp := *t
			out = append(out, &cp)
		}
	}
	r.sortNewest(out)
	return out, nil
}

func (r *TransactionRepo) List(_ context.Context, limit, offset int) ([]repository.TransactionWithLot, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	all := make([]*entity.Transaction, 0, len(r.s.txnIDs))
	for _, id := range r.s.txnIDs {
		cp := *r.s.txns[id]
		all = append(all, &cp)
	}
	r.sortNewest(all)

	page := paginate(all, limit, offset)
	out := make([]repository.TransactionWithLot, 0, len(page))
	for _, t := range page {
		item := repository.TransactionWithLot{Transaction: *t}
		if l, ok := r.s.lots[t.LotID]; ok {
			item.LotNumber = l.LotNumber
			item.ProductID = l.ProductID
		}
		out = append(out, item)
	}
	return out, len(all), nil
}

func (r *TransactionRepo) Totals(_ context.Context, lotID string) (entity.LotTotals, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.totals(lotID), nil
}

func (r *TransactionRepo) TotalsByLots(_ context.Context, lotIDs []string) (map[string]entity.LotTotals, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make(map[string]entity.LotTotals, len(lotIDs))
	for _, id := range lotIDs {
		out[id] = r.s.totals(id)
	}
	return out, nil
}

// sortNewest ordena por secuencia de asiento descendente, sin mirar CreatedAt. Requiere s.mu tomado.
func (r *TransactionRepo) sortNewest(items []*entity.Transaction) {
	sort.Slice(items, func(i, j int) bool {
		return r.s.order[items[i].ID] > r.s.order[items[j].ID]
	})
}

// totals requiere s.mu tomado.
func (s *Store) totals(lotID string) entity.LotTotals {
	totals := entity.LotTotals{In: decimal.Zero, Out: decimal.Zero}
	for _, id := range s.txnIDs {
		t := s.txns[id]
		if t.LotID != lotID {
			continue
		}
		if t.Type == entity.TransactionTypeOUT {
			totals.Out = totals.Out.Add(t.Quantity)
		} else {
			totals.In = totals.In.Add(t.Quantity)
		}
	}
	return totals
}
