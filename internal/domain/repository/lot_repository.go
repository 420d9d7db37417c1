package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/lot-ledger/internal/domain/entity"
)

// LotFilter filtros de listado de lotes.
type LotFilter struct {
	ProductID      string
	IncludeDeleted bool
	Limit          int
	Offset         int
}

// LotRepository define el puerto de persistencia de lotes (usable con pool o tx).
// GetByID y GetForUpdate devuelven (nil, nil) si el lote no existe.
type LotRepository interface {
	// Create inserta el lote; devuelve domain.ErrDuplicate si la clave natural ya existe.
	Create(ctx context.Context, lot *entity.Lot) error
	GetByID(ctx context.Context, id string) (*entity.Lot, error)
	// GetForUpdate obtiene el lote y lo bloquea hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.Lot, error)
	// FindByIdentity busca por clave natural, incluidos los lotes eliminados.
	FindByIdentity(ctx context.Context, key entity.LotIdentity) (*entity.Lot, error)
	// Update persiste solo metadatos (ubicación, stock de seguridad).
	Update(ctx context.Context, lot *entity.Lot) error
	// SetQuantity actualiza el contador en caché. Solo se invoca junto con un insert del journal.
	SetQuantity(ctx context.Context, id string, qty decimal.Decimal, at time.Time) error
	MarkDeleted(ctx context.Context, id string, at time.Time) error
	// List devuelve la página pedida (más recientes primero) y el total.
	List(ctx context.Context, filter LotFilter) ([]*entity.Lot, int, error)
}
