package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/lot-ledger/internal/domain"
	"github.com/jhoicas/lot-ledger/internal/domain/entity"
	"github.com/jhoicas/lot-ledger/internal/domain/repository"
)

var _ repository.LotRepository = (*LotRepo)(nil)

// LotRepo repositorio de lotes en memoria.
type LotRepo struct {
	s  *Store
	tx *tx
}

// NewLotRepository construye el repositorio fuera de transacción.
func NewLotRepository(s *Store) *LotRepo {
	return &LotRepo{s: s}
}

func (r *LotRepo) Create(_ context.Context, lot *entity.Lot) error {
	cp := *lot
	return r.s.write(r.tx,
		func(s *Store) error {
			if _, ok := s.products[cp.ProductID]; !ok {
				return domain.ErrProductNotFound
			}
			if _, taken := s.lotKeys[cp.Identity()]; taken {
				return domain.ErrDuplicate
			}
			if _, taken := s.lots[cp.ID]; taken {
				return domain.ErrDuplicate
			}
			return nil
		},
		func(s *Store) {
			s.lots[cp.ID] = &cp
			s.lotKeys[cp.Identity()] = cp.ID
			s.nextSeq(cp.ID)
		})
}

func (r *LotRepo) GetByID(_ context.Context, id string) (*entity.Lot, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	lot, ok := r.s.lots[id]
	if !ok {
		return nil, nil
	}
	cp := *lot
	return &cp, nil
}

// GetForUpdate bloquea el lote hasta el fin de la transacción. Fuera de tx equivale a GetByID.
func (r *LotRepo) GetForUpdate(ctx context.Context, id string) (*entity.Lot, error) {
	if r.tx != nil {
		if err := r.tx.lock(ctx, id); err != nil {
			return nil, err
		}
	}
	return r.GetByID(ctx, id)
}

func (r *LotRepo) FindByIdentity(_ context.Context, key entity.LotIdentity) (*entity.Lot, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	id, ok := r.s.lotKeys[key]
	if !ok {
		return nil, nil
	}
	cp := *r.s.lots[id]
	return &cp, nil
}

func (r *LotRepo) Update(_ context.Context, lot *entity.Lot) error {
	id, location, safety, at := lot.ID, lot.Location, lot.SafetyStockLevel, lot.UpdatedAt
	return r.s.write(r.tx, requireLot(id), func(s *Store) {
		l := s.lots[id]
		l.Location = location
		l.SafetyStockLevel = safety
		l.UpdatedAt = at
	})
}

func (r *LotRepo) SetQuantity(_ context.Context, id string, qty decimal.Decimal, at time.Time) error {
	return r.s.write(r.tx,
		func(s *Store) error {
			if qty.IsNegative() {
				return &domain.IntegrityError{LotID: id, Journal: qty, Reason: "cantidad negativa"}
			}
			return nil
		},
		func(s *Store) {
			if l, ok := s.lots[id]; ok {
				l.Quantity = qty
				l.UpdatedAt = at
			}
		})
}

func (r *LotRepo) MarkDeleted(_ context.Context, id string, at time.Time) error {
	return r.s.write(r.tx, requireLot(id), func(s *Store) {
		l := s.lots[id]
		l.IsDeleted = true
		deletedAt := at
		l.DeletedAt = &deletedAt
		l.UpdatedAt = at
	})
}

func (r *LotRepo) List(_ context.Context, f repository.LotFilter) ([]*entity.Lot, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.Lot, 0)
	for _, l := range r.s.lots {
		if l.IsDeleted && !f.IncludeDeleted {
			continue
		}
		if f.ProductID != "" && l.ProductID != f.ProductID {
			continue
		}
		cp := *l
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		return r.s.newerFirst(out[i].ID, out[j].ID, out[i].CreatedAt.UnixNano(), out[j].CreatedAt.UnixNano())
	})
	return paginate(out, f.Limit, f.Offset), len(out), nil
}

func requireLot(id string) func(*Store) error {
	return func(s *Store) error {
		if _, ok := s.lots[id]; !ok {
			return domain.ErrLotNotFound
		}
		return nil
	}
}
