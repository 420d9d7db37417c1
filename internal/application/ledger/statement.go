package ledger

import (
	"context"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/lot-ledger/internal/application/dto"
	"github.com/jhoicas/lot-ledger/internal/domain"
	"github.com/jhoicas/lot-ledger/internal/domain/entity"
	"github.com/jhoicas/lot-ledger/internal/domain/repository"
	"github.com/jhoicas/lot-ledger/pkg/logger"
)

// StatementUseCase genera el extracto de un lote con saldo acumulado.
type StatementUseCase struct {
	lots     repository.LotRepository
	txns     repository.TransactionRepository
	catalog  ProductCatalog
	balance  *BalanceEngine
	renderer StatementRenderer
	log      *logger.Logger
	now      func() time.Time
}

// NewStatementUseCase construye el caso de uso de extractos.
func NewStatementUseCase(
	lots repository.LotRepository,
	txns repository.TransactionRepository,
	catalog ProductCatalog,
	balance *BalanceEngine,
	renderer StatementRenderer,
	log *logger.Logger,
) *StatementUseCase {
	return &StatementUseCase{
		lots:     lots,
		txns:     txns,
		catalog:  catalog,
		balance:  balance,
		renderer: renderer,
		log:      log.Named("statement"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Build arma el extracto: movimientos del más antiguo al más reciente con el saldo tras cada uno.
func (uc *StatementUseCase) Build(ctx context.Context, lotID string) (*dto.LotStatement, error) {
	lot, err := uc.lots.GetByID(ctx, lotID)
	if err != nil {
		return nil, err
	}
	if lot == nil {
		return nil, domain.ErrLotNotFound
	}
	txns, err := uc.txns.ListByLot(ctx, lot.ID)
	if err != nil {
		return nil, err
	}
	slices.Reverse(txns)

	running, err := uc.balance.Replay(lot.ID, txns)
	if err != nil {
		return nil, err
	}

	st := &dto.LotStatement{GeneratedAt: uc.now(), TotalIn: decimal.Zero, TotalOut: decimal.Zero}
	for i, t := range txns {
		resp := toTransactionResponse(t)
		resp.LotNumber = lot.LotNumber
		resp.ProductID = lot.ProductID
		st.Entries = append(st.Entries, dto.StatementEntry{Transaction: resp, RunningBalance: running[i]})
		if t.Type == entity.TransactionTypeOUT {
			st.TotalOut = st.TotalOut.Add(t.Quantity)
		} else {
			st.TotalIn = st.TotalIn.Add(t.Quantity)
		}
	}
	balance := decimal.Zero
	if n := len(running); n > 0 {
		balance = running[n-1]
	}
	products := lookupProducts(ctx, uc.catalog, uc.log, lot.ProductID)
	st.Lot = toLotResponse(lot, products[lot.ProductID], balance)
	return st, nil
}

// Render arma y serializa el extracto.
func (uc *StatementUseCase) Render(ctx context.Context, lotID string) (*dto.RenderedStatement, error) {
	st, err := uc.Build(ctx, lotID)
	if err != nil {
		return nil, err
	}
	return uc.renderer.Render(st)
}
