// Package ledger contiene el núcleo del inventario por lotes: registro de lotes,
// journal de movimientos y motor de saldos.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"

	"github.com/jhoicas/lot-ledger/internal/application/audit"
	"github.com/jhoicas/lot-ledger/internal/application/dto"
	"github.com/jhoicas/lot-ledger/internal/domain"
	"github.com/jhoicas/lot-ledger/internal/domain/entity"
	"github.com/jhoicas/lot-ledger/internal/domain/repository"
	"github.com/jhoicas/lot-ledger/pkg/logger"
)

const initialStockRemarks = "Initial stock"

// LotRegistry ciclo de vida de los lotes: alta, consulta, edición de metadatos y borrado lógico.
type LotRegistry struct {
	txRunner TxRunner
	lots     repository.LotRepository
	catalog  ProductCatalog
	balance  *BalanceEngine
	events   EventEmitter
	log      *logger.Logger
	now      func() time.Time
}

// NewLotRegistry construye el registro de lotes.
func NewLotRegistry(
	txRunner TxRunner,
	lots repository.LotRepository,
	catalog ProductCatalog,
	balance *BalanceEngine,
	events EventEmitter,
	log *logger.Logger,
) *LotRegistry {
	return &LotRegistry{
		txRunner: txRunner,
		lots:     lots,
		catalog:  catalog,
		balance:  balance,
		events:   events,
		log:      log.Named("lot_registry"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (r *LotRegistry) emit(actor entity.Actor, action, lotID string, details map[string]any) {
	r.events.Emit(audit.NewEvent(actor, action, entity.EntityTypeLot, lotID, details))
}

// fail registra el intento fallido y devuelve err sin cambios.
func (r *LotRegistry) fail(actor entity.Actor, action, lotID string, details map[string]any, err error) error {
	if details == nil {
		details = map[string]any{}
	}
	details["error"] = err.Error()
	r.emit(actor, action, lotID, details)
	return err
}

// internal registra en el log un error no esperado y lo audita con action.
func (r *LotRegistry) internal(actor entity.Actor, action, lotID string, details map[string]any, err error) error {
	r.log.Error().Err(err).Str("lot_id", lotID).Str("action", action).Msg("mutación de lote fallida")
	return r.fail(actor, action, lotID, details, err)
}

// CreateLot registra un lote nuevo. Si InitialQuantity > 0 se asienta como IN en la misma transacción.
func (r *LotRegistry) CreateLot(ctx context.Context, actor entity.Actor, in dto.CreateLotRequest) (_ *dto.LotResponse, err error) {
	key := entity.LotIdentity{
		ProductID:   in.ProductID,
		LotNumber:   in.LotNumber,
		BatchNumber: in.BatchNumber,
		HeatNumber:  in.HeatNumber,
	}.Normalize()
	ctx, span := startSpan(ctx, "LotRegistry.CreateLot",
		attribute.String("product.id", key.ProductID), attribute.String("lot.number", key.LotNumber))
	defer func() { endSpan(span, err) }()

	details := map[string]any{
		"product_id":   key.ProductID,
		"lot_number":   key.LotNumber,
		"batch_number": key.BatchNumber,
		"heat_number":  key.HeatNumber,
	}

	location := strings.TrimSpace(in.Location)
	if key.ProductID == "" || key.LotNumber == "" || key.BatchNumber == "" || key.HeatNumber == "" || location == "" {
		return nil, r.fail(actor, entity.ActionLotCreateInvalidInput, "", details,
			fmt.Errorf("%w: product_id, lot_number, batch_number, heat_number y location son obligatorios", domain.ErrInvalidInput))
	}
	if in.SafetyStockLevel.IsNegative() || in.InitialQuantity.IsNegative() {
		return nil, r.fail(actor, entity.ActionLotCreateInvalidInput, "", details,
			fmt.Errorf("%w: safety_stock_level e initial_quantity no pueden ser negativos", domain.ErrInvalidInput))
	}
	if !entity.FitsAmount(in.SafetyStockLevel) || !entity.FitsAmount(in.InitialQuantity) {
		return nil, r.fail(actor, entity.ActionLotCreateInvalidInput, "", details, domain.ErrAmountPrecision)
	}

	product, err := r.catalog.GetProduct(ctx, key.ProductID)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			r.emit(actor, entity.ActionLotCreateProductNotFound, "", details)
			return nil, err
		}
		return nil, r.internal(actor, entity.ActionLotCreateError, "", details, err)
	}

	existing, err := r.lots.FindByIdentity(ctx, key)
	if err != nil {
		return nil, r.internal(actor, entity.ActionLotCreateError, "", details, fmt.Errorf("find lot by identity: %w", err))
	}
	if existing != nil {
		details["existing_lot_id"] = existing.ID
		r.emit(actor, entity.ActionLotCreateDuplicate, "", details)
		return nil, fmt.Errorf("%w: ya existe un lote con ese producto, lote, batch y heat", domain.ErrDuplicate)
	}

	now := r.now()
	lot := &entity.Lot{
		ID:               uuid.New().String(),
		ProductID:        key.ProductID,
		LotNumber:        key.LotNumber,
		BatchNumber:      key.BatchNumber,
		HeatNumber:       key.HeatNumber,
		Location:         location,
		SafetyStockLevel: in.SafetyStockLevel,
		Quantity:         decimal.Zero,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	err = r.txRunner.Run(ctx, func(lotRepo repository.LotRepository, txnRepo repository.TransactionRepository) error {
		if err := lotRepo.Create(ctx, lot); err != nil {
			return err
		}
		if !in.InitialQuantity.IsPositive() {
			return nil
		}
		txn := &entity.Transaction{
			ID:        uuid.New().String(),
			LotID:     lot.ID,
			Type:      entity.TransactionTypeIN,
			Quantity:  in.InitialQuantity,
			Remarks:   initialStockRemarks,
			CreatedBy: actor.UserID,
			CreatedAt: now,
		}
		if err := txnRepo.Create(ctx, txn); err != nil {
			return err
		}
		return lotRepo.SetQuantity(ctx, lot.ID, in.InitialQuantity, now)
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			r.emit(actor, entity.ActionLotCreateDuplicate, "", details)
			return nil, fmt.Errorf("%w: ya existe un lote con ese producto, lote, batch y heat", domain.ErrDuplicate)
		}
		if errors.Is(err, domain.ErrProductNotFound) {
			// borrado del producto entre la consulta al catálogo y el insert
			r.emit(actor, entity.ActionLotCreateProductNotFound, "", details)
			return nil, err
		}
		return nil, r.internal(actor, entity.ActionLotCreateError, "", details, err)
	}
	if in.InitialQuantity.IsPositive() {
		lot.Quantity = in.InitialQuantity
	}

	details["location"] = lot.Location
	details["initial_quantity"] = lot.Quantity.String()
	r.emit(actor, entity.ActionLotCreated, lot.ID, details)

	resp := toLotResponse(lot, product, lot.Quantity)
	return &resp, nil
}

// GetLot devuelve el lote (incluso eliminado) con su saldo derivado del journal.
func (r *LotRegistry) GetLot(ctx context.Context, id string) (*dto.LotResponse, error) {
	lot, err := r.lots.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get lot: %w", err)
	}
	if lot == nil {
		return nil, domain.ErrLotNotFound
	}
	balance, err := r.balance.ComputeBalance(ctx, lot.ID)
	if err != nil {
		return nil, err
	}
	products := lookupProducts(ctx, r.catalog, r.log, lot.ProductID)
	resp := toLotResponse(lot, products[lot.ProductID], balance)
	return &resp, nil
}

// GetLotBalance saldo vivo del lote con sus totales de entradas y salidas.
func (r *LotRegistry) GetLotBalance(ctx context.Context, id string) (*dto.LotBalanceResponse, error) {
	lot, err := r.lots.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get lot: %w", err)
	}
	if lot == nil {
		return nil, domain.ErrLotNotFound
	}
	totals, balance, err := r.balance.Totals(ctx, lot.ID)
	if err != nil {
		return nil, err
	}
	return &dto.LotBalanceResponse{
		LotID:             lot.ID,
		AvailableQuantity: balance,
		TotalIn:           totals.In,
		TotalOut:          totals.Out,
	}, nil
}

// UpdateLot modifica solo metadatos. La cantidad nunca cambia por esta vía.
func (r *LotRegistry) UpdateLot(ctx context.Context, actor entity.Actor, id string, in dto.UpdateLotRequest) (*dto.LotResponse, error) {
	changes := map[string]any{}
	var location string
	if in.Location != nil {
		location = strings.TrimSpace(*in.Location)
		changes["location"] = location
		if location == "" {
			return nil, r.fail(actor, entity.ActionLotUpdateInvalidInput, id, changes,
				fmt.Errorf("%w: location no puede ser vacío", domain.ErrInvalidInput))
		}
	}
	if in.SafetyStockLevel != nil {
		changes["safety_stock_level"] = in.SafetyStockLevel.String()
		if in.SafetyStockLevel.IsNegative() {
			return nil, r.fail(actor, entity.ActionLotUpdateInvalidInput, id, changes,
				fmt.Errorf("%w: safety_stock_level no puede ser negativo", domain.ErrInvalidInput))
		}
		if !entity.FitsAmount(*in.SafetyStockLevel) {
			return nil, r.fail(actor, entity.ActionLotUpdateInvalidInput, id, changes, domain.ErrAmountPrecision)
		}
	}

	err := r.txRunner.Run(ctx, func(lotRepo repository.LotRepository, _ repository.TransactionRepository) error {
		lot, err := lotRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if lot == nil {
			return domain.ErrLotNotFound
		}
		if lot.IsDeleted {
			return domain.ErrLotDeleted
		}
		if in.Location != nil {
			lot.Location = location
		}
		if in.SafetyStockLevel != nil {
			lot.SafetyStockLevel = *in.SafetyStockLevel
		}
		lot.UpdatedAt = r.now()
		return lotRepo.Update(ctx, lot)
	})
	switch {
	case errors.Is(err, domain.ErrLotNotFound):
		r.emit(actor, entity.ActionLotUpdateNotFound, id, changes)
		return nil, err
	case errors.Is(err, domain.ErrLotDeleted):
		r.emit(actor, entity.ActionLotUpdateDeleted, id, changes)
		return nil, err
	case err != nil:
		return nil, r.internal(actor, entity.ActionLotUpdateError, id, changes, err)
	}

	r.emit(actor, entity.ActionLotUpdated, id, changes)
	return r.GetLot(ctx, id)
}

// DeleteLot borrado lógico, solo si el saldo es cero. La verificación y la marca ocurren
// con el lote bloqueado, de modo que ningún IN concurrente puede colarse entre ambas.
func (r *LotRegistry) DeleteLot(ctx context.Context, actor entity.Actor, id string) (err error) {
	ctx, span := startSpan(ctx, "LotRegistry.DeleteLot", attribute.String("lot.id", id))
	defer func() { endSpan(span, err) }()

	err = r.txRunner.Run(ctx, func(lotRepo repository.LotRepository, txnRepo repository.TransactionRepository) error {
		lot, err := lotRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if lot == nil {
			return domain.ErrLotNotFound
		}
		if lot.IsDeleted {
			return domain.ErrLotDeleted
		}
		totals, err := txnRepo.Totals(ctx, id)
		if err != nil {
			return fmt.Errorf("lot totals: %w", err)
		}
		balance, err := r.balance.verify(lot, totals)
		if err != nil {
			return err
		}
		if balance.IsPositive() {
			return &domain.LotNotEmptyError{Remaining: balance}
		}
		return lotRepo.MarkDeleted(ctx, id, r.now())
	})

	var notEmpty *domain.LotNotEmptyError
	switch {
	case errors.As(err, &notEmpty):
		r.emit(actor, entity.ActionLotDeleteBlocked, id, map[string]any{"available_quantity": notEmpty.Remaining.String()})
	case errors.Is(err, domain.ErrLotNotFound):
		r.emit(actor, entity.ActionLotDeleteNotFound, id, nil)
	case errors.Is(err, domain.ErrLotDeleted):
		r.emit(actor, entity.ActionLotDeleteAlreadyDeleted, id, nil)
	case errors.Is(err, domain.ErrDataIntegrity):
		return r.fail(actor, entity.ActionLotDeleteIntegrity, id, nil, err)
	case err != nil:
		return r.internal(actor, entity.ActionLotDeleteError, id, nil, err)
	default:
		r.emit(actor, entity.ActionLotDeleted, id, nil)
	}
	return err
}

// ListLots lotes más recientes primero, cada uno con su saldo vivo.
func (r *LotRegistry) ListLots(ctx context.Context, q dto.LotQuery) (*dto.LotListResponse, error) {
	q.DefaultPage()
	lots, total, err := r.lots.List(ctx, repository.LotFilter{
		ProductID:      strings.TrimSpace(q.ProductID),
		IncludeDeleted: q.IncludeDeleted,
		Limit:          q.Limit,
		Offset:         q.Offset,
	})
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(lots))
	productIDs := make([]string, 0, len(lots))
	for _, l := range lots {
		ids = append(ids, l.ID)
		productIDs = append(productIDs, l.ProductID)
	}
	balances, err := r.balance.Balances(ctx, ids)
	if err != nil {
		return nil, err
	}
	products := lookupProducts(ctx, r.catalog, r.log, productIDs...)

	items := make([]dto.LotResponse, 0, len(lots))
	for _, l := range lots {
		balance, ok := balances[l.ID]
		if !ok {
			balance = decimal.Zero
		}
		items = append(items, toLotResponse(l, products[l.ProductID], balance))
	}
	return &dto.LotListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: q.Limit, Offset: q.Offset, Total: total},
	}, nil
}

// ListLotsByProduct atajo de ListLots filtrado por producto.
func (r *LotRegistry) ListLotsByProduct(ctx context.Context, productID string, q dto.LotQuery) (*dto.LotListResponse, error) {
	q.ProductID = productID
	return r.ListLots(ctx, q)
}
