// Package kafka publica los eventos de auditoría en un tópico de Kafka.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/jhoicas/lot-ledger/internal/domain/entity"
	"github.com/jhoicas/lot-ledger/pkg/config"
)

// MessageProducer subconjunto de *kafka.Writer usado por el sink.
type MessageProducer interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// NewWriter construye el writer del tópico de auditoría.
func NewWriter(cfg config.AuditConfig) *kafkago.Writer {
	return &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaTopic,
		Balancer:               &kafkago.LeastBytes{},
		BatchTimeout:           10 * time.Millisecond,
		BatchSize:              100,
		RequiredAcks:           kafkago.RequireOne,
		AllowAutoTopicCreation: true,
	}
}

// auditMessage forma del evento publicado.
type auditMessage struct {
	ID            string         `json:"id"`
	UserID        string         `json:"user_id"`
	UserEmail     string         `json:"user_email,omitempty"`
	Action        string         `json:"action"`
	EntityType    string         `json:"entity_type"`
	EntityID      string         `json:"entity_id"`
	Details       map[string]any `json:"details"`
	SourceAddress string         `json:"source_address,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}

// AuditSink implementa audit.Sink. La clave del mensaje es el ID de la entidad,
// así los eventos de un mismo lote caen en la misma partición.
type AuditSink struct {
	producer MessageProducer
}

// NewAuditSink construye el sink.
func NewAuditSink(producer MessageProducer) *AuditSink {
	return &AuditSink{producer: producer}
}

func (s *AuditSink) Record(ctx context.Context, ev *entity.AuditEvent) error {
	payload, err := json.Marshal(auditMessage{
		ID:            ev.ID,
		UserID:        ev.UserID,
		UserEmail:     ev.UserEmail,
		Action:        ev.Action,
		EntityType:    ev.EntityType,
		EntityID:      ev.EntityID,
		Details:       ev.Details,
		SourceAddress: ev.SourceAddress,
		CreatedAt:     ev.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("kafka: serializar evento: %w", err)
	}
	msg := kafkago.Message{
		Key:   []byte(ev.EntityID),
		Value: payload,
		Time:  ev.CreatedAt,
		Headers: []kafkago.Header{
			{Key: "action", Value: []byte(ev.Action)},
			{Key: "entity_type", Value: []byte(ev.EntityType)},
		},
	}
	if err := s.producer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka: publicar evento %s: %w", ev.ID, err)
	}
	return nil
}

// Close cierra el producer.
func (s *AuditSink) Close() error {
	return s.producer.Close()
}
