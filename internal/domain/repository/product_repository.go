package repository

import (
	"context"

	"github.com/jhoicas/lot-ledger/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia del catálogo de productos.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	List(ctx context.Context, limit, offset int) ([]*entity.Product, int, error)
	// Delete elimina el producto solo si ningún lote (eliminado o no) lo referencia.
	// Devuelve domain.ErrProductNotFound o domain.ErrProductInUse.
	Delete(ctx context.Context, id string) error
}
