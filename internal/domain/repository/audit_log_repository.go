package repository

import (
	"context"

	"github.com/jhoicas/lot-ledger/internal/domain/entity"
)

// AuditLogFilter filtros de la bitácora. Campos vacíos no filtran.
type AuditLogFilter struct {
	UserID     string
	EntityType string
	Limit      int
	Offset     int
}

// AuditLogRepository persistencia de la bitácora de actividad.
type AuditLogRepository interface {
	Create(ctx context.Context, event *entity.AuditEvent) error
	// List devuelve la página pedida (más recientes primero) y el total que cumple el filtro.
	List(ctx context.Context, filter AuditLogFilter) ([]*entity.AuditEvent, int, error)
}
