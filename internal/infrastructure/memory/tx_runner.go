package memory

import (
	"context"
	"fmt"

	"golang.org/x/sync/semaphore"

	"github.com/jhoicas/lot-ledger/internal/domain/repository"
)

// TxRunner ejecuta callbacks con repositorios atados a una transacción en memoria.
type TxRunner struct {
	store *Store
}

// NewTxRunner construye el runner sobre el almacén.
func NewTxRunner(store *Store) *TxRunner {
	return &TxRunner{store: store}
}

type op struct {
	check func(*Store) error
	apply func(*Store)
}

// tx acumula escrituras y los lotes bloqueados. Las lecturas ven el estado confirmado.
type tx struct {
	store *Store
	held  map[string]*semaphore.Weighted
	ops   []op
}

func (t *tx) lock(ctx context.Context, lotID string) error {
	if _, ok := t.held[lotID]; ok {
		return nil
	}
	sem := t.store.lotLock(lotID)
	if err := sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("lock lot %s: %w", lotID, err)
	}
	t.held[lotID] = sem
	return nil
}

func (t *tx) release() {
	for id, sem := range t.held {
		sem.Release(1)
		delete(t.held, id)
	}
}

// commit valida todas las escrituras y luego las aplica juntas bajo el lock del almacén.
func (t *tx) commit() error {
	s := t.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range t.ops {
		if o.check == nil {
			continue
		}
		if err := o.check(s); err != nil {
			return err
		}
	}
	for _, o := range t.ops {
		o.apply(s)
	}
	return nil
}

// Run ejecuta fn; si devuelve error nada se aplica. Los lotes bloqueados se liberan al terminar.
func (r *TxRunner) Run(ctx context.Context, fn func(
	lotRepo repository.LotRepository,
	txnRepo repository.TransactionRepository,
) error) error {
	t := &tx{store: r.store, held: make(map[string]*semaphore.Weighted)}
	defer t.release()

	if err := fn(&LotRepo{s: r.store, tx: t}, &TransactionRepo{s: r.store, tx: t}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return t.commit()
}
