package ledger

import (
	"context"

	"github.com/jhoicas/lot-ledger/internal/application/dto"
	"github.com/jhoicas/lot-ledger/internal/domain/entity"
	"github.com/jhoicas/lot-ledger/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción, pasando repositorios atados a ella.
// LotRepository.GetForUpdate bloquea el lote hasta que Run termina.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		lotRepo repository.LotRepository,
		txnRepo repository.TransactionRepository,
	) error) error
}

// ProductCatalog lectura del catálogo de productos.
// Devuelve domain.ErrProductNotFound si no existe y domain.ErrUpstreamUnavailable si no responde.
type ProductCatalog interface {
	GetProduct(ctx context.Context, id string) (*entity.Product, error)
}

// EventEmitter publica eventos de auditoría. Emit no debe bloquear.
type EventEmitter interface {
	Emit(event entity.AuditEvent)
}

// StatementRenderer serializa el extracto de un lote.
type StatementRenderer interface {
	Render(statement *dto.LotStatement) (*dto.RenderedStatement, error)
}
