package audit

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jhoicas/lot-ledger/internal/domain/entity"
	"github.com/jhoicas/lot-ledger/pkg/logger"
)

// EmitterConfig tamaño del buffer, número de consumidores y tiempo máximo por entrega.
type EmitterConfig struct {
	BufferSize int
	Workers    int
	Timeout    time.Duration
}

// Emitter encola eventos en un canal con buffer y los drena a un Sink desde goroutines propias.
// Emit nunca bloquea: si el buffer está lleno el evento se descarta y se registra en el log.
type Emitter struct {
	sink    Sink
	log     *logger.Logger
	timeout time.Duration
	events  chan entity.AuditEvent
	wg      sync.WaitGroup

	mu     sync.RWMutex
	closed bool

	delivered atomic.Int64
	dropped   atomic.Int64
	failed    atomic.Int64
}

// NewEmitter arranca los consumidores. Cerrar con Close.
func NewEmitter(sink Sink, log *logger.Logger, cfg EmitterConfig) *Emitter {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1024
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 3 * time.Second
	}
	e := &Emitter{
		sink:    sink,
		log:     log.Named("audit"),
		timeout: cfg.Timeout,
		events:  make(chan entity.AuditEvent, cfg.BufferSize),
	}
	for i := 0; i < cfg.Workers; i++ {
		e.wg.Add(1)
		go e.run()
	}
	return e
}

// Emit encola el evento sin bloquear.
func (e *Emitter) Emit(event entity.AuditEvent) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		e.dropped.Add(1)
		return
	}
	select {
	case e.events <- event:
	default:
		e.dropped.Add(1)
		e.log.Warn().Str("action", event.Action).Str("entity_id", event.EntityID).Msg("buffer de auditoría lleno, evento descartado")
	}
}

func (e *Emitter) run() {
	defer e.wg.Done()
	for ev := range e.events {
		e.deliver(ev)
	}
}

func (e *Emitter) deliver(ev entity.AuditEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			e.failed.Add(1)
			e.log.Error().Str("action", ev.Action).Str("panic", fmt.Sprint(r)).Msg("sink de auditoría en pánico")
		}
	}()

	if err := e.sink.Record(ctx, &ev); err != nil {
		e.failed.Add(1)
		e.log.Warn().Err(err).Str("action", ev.Action).Str("entity_id", ev.EntityID).Msg("no se pudo registrar evento de auditoría")
		return
	}
	e.delivered.Add(1)
}

// Close deja de aceptar eventos y espera a que se drene el buffer o venza ctx.
func (e *Emitter) Close(ctx context.Context) error {
	e.mu.Lock()
	if !e.closed {
		e.closed = true
		close(e.events)
	}
	e.mu.Unlock()

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("drain audit emitter: %w", ctx.Err())
	}
}

// Stats contadores de eventos entregados, descartados y fallidos.
func (e *Emitter) Stats() (delivered, dropped, failed int64) {
	return e.delivered.Load(), e.dropped.Load(), e.failed.Load()
}
