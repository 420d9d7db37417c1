package memory

import (
	"context"
	"maps"
	"sort"

	"github.com/jhoicas/lot-ledger/internal/domain/entity"
	"github.com/jhoicas/lot-ledger/internal/domain/repository"
)

var _ repository.AuditLogRepository = (*AuditLogRepo)(nil)

// AuditLogRepo bitácora en memoria.
type AuditLogRepo struct {
	s *Store
}

// NewAuditLogRepository construye el repositorio.
func NewAuditLogRepository(s *Store) *AuditLogRepo {
	return &AuditLogRepo{s: s}
}

func (r *AuditLogRepo) Create(_ context.Context, e *entity.AuditEvent) error {
	cp := *e
	cp.Details = maps.Clone(e.Details)
	return r.s.write(nil, nil, func(s *Store) {
		s.logs = append(s.logs, &cp)
		s.nextSeq(cp.ID)
	})
}

func (r *AuditLogRepo) List(_ context.Context, f repository.AuditLogFilter) ([]*entity.AuditEvent, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.AuditEvent, 0)
	for _, e := range r.s.logs {
		if f.UserID != "" && e.UserID != f.UserID {
			continue
		}
		if f.EntityType != "" && e.EntityType != f.EntityType {
			continue
		}
		cp := *e
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		return r.s.newerFirst(out[i].ID, out[j].ID, out[i].CreatedAt.UnixNano(), out[j].CreatedAt.UnixNano())
	})
	return paginate(out, f.Limit, f.Offset), len(out), nil
}
