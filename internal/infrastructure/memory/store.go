// Package memory implementa los puertos de persistencia en memoria de proceso.
// Respeta el mismo contrato que PostgreSQL: escrituras atómicas por transacción
// y bloqueo exclusivo por lote mientras dura la transacción.
package memory

import (
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/jhoicas/lot-ledger/internal/domain/entity"
)

// Store estado compartido por los repositorios en memoria.
type Store struct {
	mu       sync.RWMutex
	seq      int64
	order    map[string]int64 // id -> secuencia de inserción (desempate de orden)
	products map[string]*entity.Product
	lots     map[string]*entity.Lot
	lotKeys  map[entity.LotIdentity]string
	txns     map[string]*entity.Transaction
	txnIDs   []string
	logs     []*entity.AuditEvent

	locksMu sync.Mutex
	locks   map[string]*semaphore.Weighted
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{
		order:    make(map[string]int64),
		products: make(map[string]*entity.Product),
		lots:     make(map[string]*entity.Lot),
		lotKeys:  make(map[entity.LotIdentity]string),
		txns:     make(map[string]*entity.Transaction),
		locks:    make(map[string]*semaphore.Weighted),
	}
}

// lotLock devuelve el semáforo exclusivo del lote, creándolo si no existe.
func (s *Store) lotLock(lotID string) *semaphore.Weighted {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	sem, ok := s.locks[lotID]
	if !ok {
		sem = semaphore.NewWeighted(1)
		s.locks[lotID] = sem
	}
	return sem
}

// nextSeq requiere s.mu tomado en escritura.
func (s *Store) nextSeq(id string) {
	s.seq++
	s.order[id] = s.seq
}

// newerFirst compara por fecha de creación descendente y, a igual fecha, por inserción descendente.
func (s *Store) newerFirst(idA, idB string, a, b int64) bool {
	if a != b {
		return a > b
	}
	return s.order[idA] > s.order[idB]
}

// write aplica una escritura: dentro de una tx se difiere hasta el commit; fuera, se aplica ya.
func (s *Store) write(t *tx, check func(*Store) error, apply func(*Store)) error {
	if t != nil {
		t.ops = append(t.ops, op{check: check, apply: apply})
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if check != nil {
		if err := check(s); err != nil {
			return err
		}
	}
	apply(s)
	return nil
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}
