package usecase

import (
	"context"

	"github.com/jhoicas/lot-ledger/internal/application/dto"
	"github.com/jhoicas/lot-ledger/internal/domain/repository"
)

// AuditLogUseCase consulta de la bitácora de actividad.
type AuditLogUseCase struct {
	repo repository.AuditLogRepository
}

// NewAuditLogUseCase construye el caso de uso.
func NewAuditLogUseCase(repo repository.AuditLogRepository) *AuditLogUseCase {
	return &AuditLogUseCase{repo: repo}
}

// List página de la bitácora, más recientes primero, con filtros opcionales por usuario y tipo de entidad.
func (uc *AuditLogUseCase) List(ctx context.Context, q dto.AuditLogQuery) (*dto.AuditLogListResponse, error) {
	q.Normalize()
	events, total, err := uc.repo.List(ctx, repository.AuditLogFilter{
		UserID:     q.UserID,
		EntityType: q.EntityType,
		Limit:      q.Limit,
		Offset:     (q.Page - 1) * q.Limit,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.AuditLogResponse, 0, len(events))
	for _, e := range events {
		items = append(items, dto.AuditLogResponse{
			ID:            e.ID,
			UserID:        e.UserID,
			UserEmail:     e.UserEmail,
			Action:        e.Action,
			EntityType:    e.EntityType,
			EntityID:      e.EntityID,
			Details:       e.Details,
			SourceAddress: e.SourceAddress,
			CreatedAt:     e.CreatedAt,
		})
	}
	return &dto.AuditLogListResponse{
		Items:      items,
		Page:       q.Page,
		Limit:      q.Limit,
		Total:      total,
		TotalPages: (total + q.Limit - 1) / q.Limit,
	}, nil
}

// ListByUser atajo de List filtrado por usuario.
func (uc *AuditLogUseCase) ListByUser(ctx context.Context, userID string, q dto.AuditLogQuery) (*dto.AuditLogListResponse, error) {
	q.UserID = userID
	return uc.List(ctx, q)
}
