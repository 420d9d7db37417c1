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

// Journal registro inmutable de movimientos IN/OUT. Es la única vía para cambiar el saldo de un lote.
type Journal struct {
	txRunner TxRunner
	lots     repository.LotRepository
	txns     repository.TransactionRepository
	balance  *BalanceEngine
	events   EventEmitter
	log      *logger.Logger
	now      func() time.Time
}

// NewJournal construye el journal.
func NewJournal(
	txRunner TxRunner,
	lots repository.LotRepository,
	txns repository.TransactionRepository,
	balance *BalanceEngine,
	events EventEmitter,
	log *logger.Logger,
) *Journal {
	return &Journal{
		txRunner: txRunner,
		lots:     lots,
		txns:     txns,
		balance:  balance,
		events:   events,
		log:      log.Named("journal"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (j *Journal) emit(actor entity.Actor, action, entityID string, details map[string]any) {
	j.events.Emit(audit.NewEvent(actor, action, entity.EntityTypeTransaction, entityID, details))
}

// internal registra en el log un error no esperado y lo audita.
func (j *Journal) internal(actor entity.Actor, action string, details map[string]any, err error) error {
	j.log.Error().Err(err).Interface("lot_id", details["lot_id"]).Str("action", action).Msg("movimiento fallido")
	details["error"] = err.Error()
	j.emit(actor, action, "", details)
	return err
}

// Append valida y asienta un movimiento. Lectura del saldo, validación e inserción ocurren
// con el lote bloqueado, así dos OUT concurrentes nunca dejan el saldo negativo.
func (j *Journal) Append(ctx context.Context, actor entity.Actor, in dto.AppendTransactionRequest) (_ *dto.AppendTransactionResponse, err error) {
	lotID := strings.TrimSpace(in.LotID)
	ctx, span := startSpan(ctx, "Journal.Append",
		attribute.String("lot.id", lotID), attribute.String("transaction.type", in.Type))
	defer func() { endSpan(span, err) }()

	details := map[string]any{
		"lot_id":   lotID,
		"type":     in.Type,
		"quantity": in.Quantity.String(),
	}

	lot, err := j.lots.GetByID(ctx, lotID)
	if err != nil {
		return nil, j.internal(actor, entity.ActionTxnError, details, fmt.Errorf("get lot: %w", err))
	}
	if lot == nil {
		j.emit(actor, entity.ActionTxnLotNotFound, "", details)
		return nil, domain.ErrLotNotFound
	}
	typ, ok := entity.ParseTransactionType(in.Type)
	if !ok {
		j.emit(actor, entity.ActionTxnInvalidType, "", details)
		return nil, domain.ErrInvalidType
	}
	if !in.Quantity.IsPositive() {
		j.emit(actor, entity.ActionTxnInvalidQuantity, "", details)
		return nil, domain.ErrInvalidQuantity
	}
	if !entity.FitsAmount(in.Quantity) {
		j.emit(actor, entity.ActionTxnInvalidQuantity, "", details)
		return nil, domain.ErrAmountPrecision
	}

	var (
		txn        *entity.Transaction
		newBalance decimal.Decimal
	)
	err = j.txRunner.Run(ctx, func(lotRepo repository.LotRepository, txnRepo repository.TransactionRepository) error {
		locked, err := lotRepo.GetForUpdate(ctx, lotID)
		if err != nil {
			return err
		}
		if locked == nil {
			return domain.ErrLotNotFound
		}
		if locked.IsDeleted {
			return domain.ErrLotDeleted
		}
		totals, err := txnRepo.Totals(ctx, lotID)
		if err != nil {
			return fmt.Errorf("lot totals: %w", err)
		}
		current, err := j.balance.verify(locked, totals)
		if err != nil {
			return err
		}
		if typ == entity.TransactionTypeOUT && in.Quantity.GreaterThan(current) {
			return &domain.InsufficientStockError{Available: current, Requested: in.Quantity}
		}

		now := j.now()
		txn = &entity.Transaction{
			ID:        uuid.New().String(),
			LotID:     lotID,
			Type:      typ,
			Quantity:  in.Quantity,
			Remarks:   strings.TrimSpace(in.Remarks),
			CreatedBy: actor.UserID,
			CreatedAt: now,
		}
		if err := txnRepo.Create(ctx, txn); err != nil {
			return err
		}
		newBalance = current.Add(txn.Signed())
		return lotRepo.SetQuantity(ctx, lotID, newBalance, now)
	})

	var insufficient *domain.InsufficientStockError
	switch {
	case errors.As(err, &insufficient):
		details["available"] = insufficient.Available.String()
		details["requested"] = insufficient.Requested.String()
		j.emit(actor, entity.ActionTxnInsufficientStock, "", details)
		return nil, err
	case errors.Is(err, domain.ErrLotDeleted):
		j.emit(actor, entity.ActionTxnLotDeleted, "", details)
		return nil, err
	case errors.Is(err, domain.ErrLotNotFound):
		j.emit(actor, entity.ActionTxnLotNotFound, "", details)
		return nil, err
	case errors.Is(err, domain.ErrDataIntegrity):
		details["error"] = err.Error()
		j.emit(actor, entity.ActionTxnIntegrity, "", details)
		return nil, err
	case err != nil:
		return nil, j.internal(actor, entity.ActionTxnError, details, err)
	}

	action := entity.ActionTransactionIN
	if typ == entity.TransactionTypeOUT {
		action = entity.ActionTransactionOUT
	}
	details["type"] = typ
	details["balance_after"] = newBalance.String()
	if txn.Remarks != "" {
		details["remarks"] = txn.Remarks
	}
	j.emit(actor, action, txn.ID, details)

	resp := toTransactionResponse(txn)
	resp.LotNumber = lot.LotNumber
	resp.ProductID = lot.ProductID
	return &dto.AppendTransactionResponse{Transaction: resp, AvailableQuantity: newBalance}, nil
}

// ListByLot movimientos del lote, más recientes primero.
func (j *Journal) ListByLot(ctx context.Context, lotID string) ([]dto.TransactionResponse, error) {
	lot, err := j.lots.GetByID(ctx, lotID)
	if err != nil {
		return nil, fmt.Errorf("get lot: %w", err)
	}
	if lot == nil {
		return nil, domain.ErrLotNotFound
	}
	txns, err := j.txns.ListByLot(ctx, lot.ID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.TransactionResponse, 0, len(txns))
	for _, t := range txns {
		resp := toTransactionResponse(t)
		resp.LotNumber = lot.LotNumber
		resp.ProductID = lot.ProductID
		out = append(out, resp)
	}
	return out, nil
}

// ListTransactions todos los movimientos paginados, más recientes primero.
func (j *Journal) ListTransactions(ctx context.Context, page dto.PageRequest) (*dto.TransactionListResponse, error) {
	page.DefaultPage()
	items, total, err := j.txns.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.TransactionResponse, 0, len(items))
	for i := range items {
		resp := toTransactionResponse(&items[i].Transaction)
		resp.LotNumber = items[i].LotNumber
		resp.ProductID = items[i].ProductID
		out = append(out, resp)
	}
	return &dto.TransactionListResponse{
		Items: out,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}, nil
}

// GetTransaction devuelve un movimiento por ID.
func (j *Journal) GetTransaction(ctx context.Context, id string) (*dto.TransactionResponse, error) {
	t, err := j.txns.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.ErrTransactionNotFound
	}
	resp := toTransactionResponse(t)
	if lot, err := j.lots.GetByID(ctx, t.LotID); err == nil && lot != nil {
		resp.LotNumber = lot.LotNumber
		resp.ProductID = lot.ProductID
	}
	return &resp, nil
}
