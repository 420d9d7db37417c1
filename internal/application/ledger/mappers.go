package ledger

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/lot-ledger/internal/application/dto"
	"github.com/jhoicas/lot-ledger/internal/domain/entity"
	"github.com/jhoicas/lot-ledger/pkg/logger"
)

func toLotResponse(l *entity.Lot, p *entity.Product, balance decimal.Decimal) dto.LotResponse {
	resp := dto.LotResponse{
		ID:                l.ID,
		ProductID:         l.ProductID,
		LotNumber:         l.LotNumber,
		BatchNumber:       l.BatchNumber,
		HeatNumber:        l.HeatNumber,
		Location:          l.Location,
		SafetyStockLevel:  l.SafetyStockLevel,
		AvailableQuantity: balance,
		State:             l.State(balance),
		BelowSafetyStock:  l.BelowSafetyStock(balance),
		IsDeleted:         l.IsDeleted,
		DeletedAt:         l.DeletedAt,
		CreatedAt:         l.CreatedAt,
		UpdatedAt:         l.UpdatedAt,
	}
	if p != nil {
		resp.Product = &dto.ProductRef{
			ID:            p.ID,
			Name:          p.Name,
			MaterialGrade: p.MaterialGrade,
			Type:          p.Type,
			Unit:          p.Unit,
			PricePerUnit:  p.PricePerUnit,
		}
	}
	return resp
}

func toTransactionResponse(t *entity.Transaction) dto.TransactionResponse {
	return dto.TransactionResponse{
		ID:        t.ID,
		LotID:     t.LotID,
		Type:      t.Type,
		Quantity:  t.Quantity,
		Remarks:   t.Remarks,
		CreatedBy: t.CreatedBy,
		CreatedAt: t.CreatedAt,
	}
}

// lookupProducts resuelve los productos para enriquecer respuestas de lectura.
// Si el catálogo falla el lote se devuelve igual, sin el producto embebido.
func lookupProducts(ctx context.Context, catalog ProductCatalog, log *logger.Logger, ids ...string) map[string]*entity.Product {
	out := make(map[string]*entity.Product, len(ids))
	for _, id := range ids {
		if _, seen := out[id]; seen {
			continue
		}
		p, err := catalog.GetProduct(ctx, id)
		if err != nil {
			log.Warn().Err(err).Str("product_id", id).Msg("producto no disponible para la respuesta")
		}
		out[id] = p
	}
	return out
}
