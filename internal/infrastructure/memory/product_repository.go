package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/lot-ledger/internal/domain"
	"github.com/jhoicas/lot-ledger/internal/domain/entity"
	"github.com/jhoicas/lot-ledger/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo catálogo en memoria.
type ProductRepo struct {
	s *Store
}

// NewProductRepository construye el repositorio.
func NewProductRepository(s *Store) *ProductRepo {
	return &ProductRepo{s: s}
}

func (r *ProductRepo) Create(_ context.Context, p *entity.Product) error {
	cp := *p
	return r.s.write(nil,
		func(s *Store) error {
			if _, taken := s.products[cp.ID]; taken || s.productTaken(&cp) {
				return domain.ErrDuplicate
			}
			return nil
		},
		func(s *Store) {
			s.products[cp.ID] = &cp
			s.nextSeq(cp.ID)
		})
}

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *ProductRepo) Update(_ context.Context, p *entity.Product) error {
	cp := *p
	return r.s.write(nil,
		func(s *Store) error {
			if _, ok := s.products[cp.ID]; !ok {
				return domain.ErrProductNotFound
			}
			if s.productTaken(&cp) {
				return domain.ErrDuplicate
			}
			return nil
		},
		func(s *Store) {
			cp.CreatedAt = s.products[cp.ID].CreatedAt
			s.products[cp.ID] = &cp
		})
}

func (r *ProductRepo) List(_ context.Context, limit, offset int) ([]*entity.Product, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.Product, 0, len(r.s.products))
	for _, p := range r.s.products {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		return r.s.newerFirst(out[i].ID, out[j].ID, out[i].CreatedAt.UnixNano(), out[j].CreatedAt.UnixNano())
	})
	return paginate(out, limit, offset), len(out), nil
}

func (r *ProductRepo) Delete(_ context.Context, id string) error {
	return r.s.write(nil,
		func(s *Store) error {
			if _, ok := s.products[id]; !ok {
				return domain.ErrProductNotFound
			}
			for _, l := range s.lots {
				if l.ProductID == id {
					return domain.ErrProductInUse
				}
			}
			return nil
		},
		func(s *Store) {
			delete(s.products, id)
			delete(s.order, id)
		})
}

// productTaken indica si otro producto ya usa (name, material_grade, type). Requiere s.mu tomado.
func (s *Store) productTaken(p *entity.Product) bool {
	for id, other := range s.products {
		if id != p.ID && other.Name == p.Name && other.MaterialGrade == p.MaterialGrade && other.Type == p.Type {
			return true
		}
	}
	return false
}
