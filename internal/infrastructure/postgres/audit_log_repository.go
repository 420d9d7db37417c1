package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jhoicas/lot-ledger/internal/domain/entity"
	"github.com/jhoicas/lot-ledger/internal/domain/repository"
)

var _ repository.AuditLogRepository = (*AuditLogRepo)(nil)

// AuditLogRepo bitácora de actividad sobre la tabla activity_logs.
type AuditLogRepo struct {
	q Querier
}

// NewAuditLogRepository construye el adaptador.
func NewAuditLogRepository(q Querier) *AuditLogRepo {
	return &AuditLogRepo{q: q}
}

func (r *AuditLogRepo) Create(ctx context.Context, e *entity.AuditEvent) error {
	details := e.Details
	if details == nil {
		details = map[string]any{}
	}
	raw, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("encode audit details: %w", err)
	}
	query := `
		INSERT INTO activity_logs (id, user_id, user_email, action, entity_type, entity_id, details, source_address, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err = r.q.Exec(ctx, query,
		e.ID, e.UserID, e.UserEmail, e.Action, e.EntityType, e.EntityID, raw, e.SourceAddress, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create activity log: %w", err)
	}
	return nil
}

func (r *AuditLogRepo) List(ctx context.Context, f repository.AuditLogFilter) ([]*entity.AuditEvent, int, error) {
	where := `WHERE ($1 = '' OR user_id = $1) AND ($2 = '' OR entity_type = $2)`

	var total int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM activity_logs `+where, f.UserID, f.EntityType).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count activity logs: %w", err)
	}

	query := `
		SELECT id, user_id, user_email, action, entity_type, entity_id, details, source_address, created_at
		FROM activity_logs ` + where + `
		ORDER BY created_at DESC, id DESC LIMIT $3 OFFSET $4`
	rows, err := r.q.Query(ctx, query, f.UserID, f.EntityType, f.Limit, f.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list activity logs: %w", err)
	}
	defer rows.Close()

	list := make([]*entity.AuditEvent, 0)
	for rows.Next() {
		var (
			e   entity.AuditEvent
			raw []byte
		)
		if err := rows.Scan(&e.ID, &e.UserID, &e.UserEmail, &e.Action, &e.EntityType, &e.EntityID,
			&raw, &e.SourceAddress, &e.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan activity log: %w", err)
		}
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &e.Details); err != nil {
				return nil, 0, fmt.Errorf("decode audit details: %w", err)
			}
		}
		list = append(list, &e)
	}
	return list, total, rows.Err()
}
