package ledger

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/lot-ledger/internal/application/dto"
	"github.com/jhoicas/lot-ledger/internal/domain"
	"github.com/jhoicas/lot-ledger/internal/domain/entity"
	"github.com/jhoicas/lot-ledger/internal/domain/repository"
	"github.com/jhoicas/lot-ledger/pkg/logger"
)

// BalanceEngine deriva saldos del journal y agrega existencias para reportes.
// Un saldo negativo o un contador divergente es un IntegrityError: se registra y se propaga, nunca se corrige.
type BalanceEngine struct {
	txns      repository.TransactionRepository
	summaries repository.SummaryRepository
	log       *logger.Logger
}

// NewBalanceEngine construye el motor de saldos.
func NewBalanceEngine(txns repository.TransactionRepository, summaries repository.SummaryRepository, log *logger.Logger) *BalanceEngine {
	return &BalanceEngine{txns: txns, summaries: summaries, log: log.Named("balance")}
}

// ComputeBalance Σ IN − Σ OUT del lote.
func (e *BalanceEngine) ComputeBalance(ctx context.Context, lotID string) (decimal.Decimal, error) {
	_, balance, err := e.Totals(ctx, lotID)
	return balance, err
}

// Totals entradas y salidas acumuladas del lote junto con su saldo.
func (e *BalanceEngine) Totals(ctx context.Context, lotID string) (entity.LotTotals, decimal.Decimal, error) {
	totals, err := e.txns.Totals(ctx, lotID)
	if err != nil {
		return totals, decimal.Zero, fmt.Errorf("compute balance: %w", err)
	}
	balance, err := e.balanceOf(lotID, totals)
	if err != nil {
		return totals, decimal.Zero, err
	}
	return totals, balance, nil
}

// Balances saldo de varios lotes en una sola consulta.
func (e *BalanceEngine) Balances(ctx context.Context, lotIDs []string) (map[string]decimal.Decimal, error) {
	byLot, err := e.txns.TotalsByLots(ctx, lotIDs)
	if err != nil {
		return nil, fmt.Errorf("compute balances: %w", err)
	}
	out := make(map[string]decimal.Decimal, len(byLot))
	for id, totals := range byLot {
		b, err := e.balanceOf(id, totals)
		if err != nil {
			return nil, err
		}
		out[id] = b
	}
	return out, nil
}

func (e *BalanceEngine) balanceOf(lotID string, totals entity.LotTotals) (decimal.Decimal, error) {
	b := totals.Balance()
	if b.IsNegative() {
		return decimal.Zero, e.integrity(&domain.IntegrityError{LotID: lotID, Journal: b, Reason: "saldo derivado negativo"})
	}
	return b, nil
}

// verify compara el contador del lote con el journal. Solo es fiable con el lote bloqueado.
func (e *BalanceEngine) verify(lot *entity.Lot, totals entity.LotTotals) (decimal.Decimal, error) {
	b, err := e.balanceOf(lot.ID, totals)
	if err != nil {
		return decimal.Zero, err
	}
	if !lot.Quantity.Equal(b) {
		return decimal.Zero, e.integrity(&domain.IntegrityError{
			LotID: lot.ID, Cached: lot.Quantity, Journal: b, Reason: "contador divergente del journal",
		})
	}
	return b, nil
}

func (e *BalanceEngine) integrity(err *domain.IntegrityError) error {
	e.log.Error().
		Str("lot_id", err.LotID).
		Str("cached", err.Cached.String()).
		Str("journal", err.Journal.String()).
		Msg(err.Reason)
	return err
}

// Replay recorre los movimientos en orden cronológico y devuelve el saldo tras cada uno.
func (e *BalanceEngine) Replay(lotID string, oldestFirst []*entity.Transaction) ([]decimal.Decimal, error) {
	running := decimal.Zero
	out := make([]decimal.Decimal, len(oldestFirst))
	for i, t := range oldestFirst {
		running = running.Add(t.Signed())
		if running.IsNegative() {
			return nil, e.integrity(&domain.IntegrityError{LotID: lotID, Journal: running, Reason: "saldo acumulado negativo en el journal"})
		}
		out[i] = running
	}
	return out, nil
}

func (e *BalanceEngine) lotStock(ctx context.Context) ([]repository.LotStockRow, error) {
	rows, err := e.summaries.LotStock(ctx)
	if err != nil {
		return nil, fmt.Errorf("lot stock: %w", err)
	}
	for _, r := range rows {
		if r.Balance.IsNegative() {
			return nil, e.integrity(&domain.IntegrityError{LotID: r.LotID, Journal: r.Balance, Reason: "saldo derivado negativo"})
		}
	}
	return rows, nil
}

// AggregateSummary lotes, stock total y valor total sobre lotes no eliminados, más los totales del journal.
func (e *BalanceEngine) AggregateSummary(ctx context.Context) (*dto.StockSummaryResponse, error) {
	rows, err := e.lotStock(ctx)
	if err != nil {
		return nil, err
	}
	totals, err := e.summaries.JournalTotals(ctx)
	if err != nil {
		return nil, fmt.Errorf("journal totals: %w", err)
	}
	products, err := e.summaries.CountProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}

	out := &dto.StockSummaryResponse{
		TotalProducts:   products,
		LotCount:        len(rows),
		TotalIn:         totals.In,
		TotalOut:        totals.Out,
		TotalStock:      decimal.Zero,
		TotalStockValue: decimal.Zero,
	}
	for _, r := range rows {
		out.TotalStock = out.TotalStock.Add(r.Balance)
		out.TotalStockValue = out.TotalStockValue.Add(r.Balance.Mul(r.PricePerUnit))
	}
	return out, nil
}

// AggregateByProduct agrupa por producto, ordenado por cantidad total descendente
// y, a igual cantidad, por product id ascendente.
func (e *BalanceEngine) AggregateByProduct(ctx context.Context) ([]dto.ProductStockSummary, error) {
	rows, err := e.lotStock(ctx)
	if err != nil {
		return nil, err
	}

	byProduct := make(map[string]*dto.ProductStockSummary)
	for _, r := range rows {
		s, ok := byProduct[r.ProductID]
		if !ok {
			s = &dto.ProductStockSummary{
				ProductID:     r.ProductID,
				Name:          r.ProductName,
				MaterialGrade: r.MaterialGrade,
				Type:          r.ProductType,
				Unit:          r.Unit,
				PricePerUnit:  r.PricePerUnit,
				TotalQuantity: decimal.Zero,
				TotalValue:    decimal.Zero,
			}
			byProduct[r.ProductID] = s
		}
		s.LotCount++
		s.TotalQuantity = s.TotalQuantity.Add(r.Balance)
		s.TotalValue = s.TotalValue.Add(r.Balance.Mul(r.PricePerUnit))
	}

	out := make([]dto.ProductStockSummary, 0, len(byProduct))
	for _, s := range byProduct {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].TotalQuantity.Cmp(out[j].TotalQuantity); c != 0 {
			return c > 0
		}
		return out[i].ProductID < out[j].ProductID
	})
	return out, nil
}
