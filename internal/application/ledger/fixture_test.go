package ledger_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/lot-ledger/internal/application/dto"
	"github.com/jhoicas/lot-ledger/internal/application/ledger"
	"github.com/jhoicas/lot-ledger/internal/domain/entity"
	"github.com/jhoicas/lot-ledger/internal/infrastructure/cache"
	"github.com/jhoicas/lot-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/lot-ledger/internal/infrastructure/statement"
	"github.com/jhoicas/lot-ledger/pkg/logger"
)

var operator = entity.Actor{UserID: "u-42", Email: "ops@example.com", Role: "operator", SourceAddress: "10.0.0.7"}

// recorder guarda los eventos emitidos en orden.
type recorder struct {
	mu     sync.Mutex
	events []entity.AuditEvent
}

func (r *recorder) Emit(ev entity.AuditEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Action)
	}
	return out
}

func (r *recorder) last() entity.AuditEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[len(r.events)-1]
}

type fixture struct {
	store     *memory.Store
	products  *memory.ProductRepo
	lots      *memory.LotRepo
	registry  *ledger.LotRegistry
	journal   *ledger.Journal
	balance   *ledger.BalanceEngine
	statement *ledger.StatementUseCase
	events    *recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	products := memory.NewProductRepository(store)
	lots := memory.NewLotRepository(store)
	txns := memory.NewTransactionRepository(store)
	runner := memory.NewTxRunner(store)
	log := logger.Nop()

	catalog := cache.NewProductCatalog(products, nil, 0, log)
	balance := ledger.NewBalanceEngine(txns, memory.NewSummaryRepository(store), log)
	events := &recorder{}

	return &fixture{
		store:     store,
		products:  products,
		lots:      lots,
		registry:  ledger.NewLotRegistry(runner, lots, catalog, balance, events, log),
		journal:   ledger.NewJournal(runner, lots, txns, balance, events, log),
		balance:   balance,
		statement: ledger.NewStatementUseCase(lots, txns, catalog, balance, statement.NewXMLRenderer(), log),
		events:    events,
	}
}

func (f *fixture) product(t *testing.T, id, name string, price int64) *entity.Product {
	t.Helper()
	p := &entity.Product{
		ID: id, Name: name, MaterialGrade: "Fe500", Type: "Rod", Unit: entity.UnitKG,
		PricePerUnit: decimal.NewFromInt(price), CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, f.products.Create(context.Background(), p))
	return p
}

func (f *fixture) lot(t *testing.T, productID, lotNumber string, initial, safety int64) *dto.LotResponse {
	t.Helper()
	out, err := f.registry.CreateLot(context.Background(), operator, dto.CreateLotRequest{
		ProductID:        productID,
		LotNumber:        lotNumber,
		BatchNumber:      "B-" + lotNumber,
		HeatNumber:       "H-" + lotNumber,
		Location:         "Rack A",
		SafetyStockLevel: decimal.NewFromInt(safety),
		InitialQuantity:  decimal.NewFromInt(initial),
	})
	require.NoError(t, err)
	return out
}

func (f *fixture) move(lotID, typ string, qty int64) (*dto.AppendTransactionResponse, error) {
	return f.journal.Append(context.Background(), operator, dto.AppendTransactionRequest{
		LotID: lotID, Type: typ, Quantity: decimal.NewFromInt(qty),
	})
}

func (f *fixture) balanceOf(t *testing.T, lotID string) decimal.Decimal {
	t.Helper()
	b, err := f.balance.ComputeBalance(context.Background(), lotID)
	require.NoError(t, err)
	return b
}

func dec(n int64) decimal.Decimal { return decimal.NewFromInt(n) }
