// Package audit emite la bitácora de actividad sin bloquear a quien muta el ledger.
package audit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/lot-ledger/internal/domain/entity"
	"github.com/jhoicas/lot-ledger/internal/domain/repository"
)

// NewEvent construye un evento a partir del actor resuelto en el borde.
func NewEvent(actor entity.Actor, action, entityType, entityID string, details map[string]any) entity.AuditEvent {
	userID := actor.UserID
	if userID == "" {
		userID = entity.AnonymousUserID
	}
	if details == nil {
		details = map[string]any{}
	}
	return entity.AuditEvent{
		ID:            uuid.New().String(),
		UserID:        userID,
		UserEmail:     actor.Email,
		Action:        action,
		EntityType:    entityType,
		EntityID:      entityID,
		Details:       details,
		SourceAddress: actor.SourceAddress,
		CreatedAt:     time.Now().UTC(),
	}
}

// Sink destino final de los eventos (tabla activity_logs, Kafka, ...).
type Sink interface {
	Record(ctx context.Context, event *entity.AuditEvent) error
}

// RepositorySink persiste los eventos en el repositorio de bitácora.
type RepositorySink struct {
	repo repository.AuditLogRepository
}

// NewRepositorySink adapta un AuditLogRepository como Sink.
func NewRepositorySink(repo repository.AuditLogRepository) *RepositorySink {
	return &RepositorySink{repo: repo}
}

func (s *RepositorySink) Record(ctx context.Context, event *entity.AuditEvent) error {
	return s.repo.Create(ctx, event)
}

// FanoutSink entrega cada evento a todos los destinos; un fallo no impide los demás.
type FanoutSink []Sink

func (f FanoutSink) Record(ctx context.Context, event *entity.AuditEvent) error {
	var errs []error
	for _, s := range f {
		if err := s.Record(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
