package ledger_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/lot-ledger/internal/application/dto"
	"github.com/jhoicas/lot-ledger/internal/application/ledger"
	"github.com/jhoicas/lot-ledger/internal/domain"
	"github.com/jhoicas/lot-ledger/internal/domain/entity"
	"github.com/jhoicas/lot-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/lot-ledger/pkg/logger"
)

func TestCreateLot_InitialStockIsJournaled(t *testing.T) {
	f := newFixture(t)
	f.product(t, "p-1", "Steel Rod", 125)

	lot := f.lot(t, "p-1", "L-001", 100, 20)
	assert.Equal(t, entity.LotStateActive, lot.State)
	require.NotNil(t, lot.Product)
	assert.Equal(t, "Steel Rod", lot.Product.Name)

	txns, err := f.journal.ListByLot(context.Background(), lot.ID)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, entity.TransactionTypeIN, txns[0].Type)
	assert.Equal(t, "Initial stock", txns[0].Remarks)

	assert.Equal(t, entity.ActionLotCreated, f.events.last().Action)
	assert.Equal(t, operator.UserID, f.events.last().UserID)
	assert.Equal(t, operator.SourceAddress, f.events.last().SourceAddress)
}

func TestCreateLot_WithoutInitialQuantity(t *testing.T) {
	f := newFixture(t)
	f.product(t, "p-1", "Steel Rod", 125)

	lot := f.lot(t, "p-1", "L-001", 0, 0)
	assert.Equal(t, entity.LotStateActiveEmpty, lot.State)

	txns, err := f.journal.ListByLot(context.Background(), lot.ID)
	require.NoError(t, err)
	assert.Empty(t, txns)
}

func TestCreateLot_Validation(t *testing.T) {
	f := newFixture(t)
	f.product(t, "p-1", "Steel Rod", 125)

	cases := map[string]dto.CreateLotRequest{
		"solo producto":         {ProductID: "p-1"},
		"ubicación vacía":       {ProductID: "p-1", LotNumber: "L-1", BatchNumber: "B", HeatNumber: "H", Location: "  "},
		"inicial negativa":      {ProductID: "p-1", LotNumber: "L-1", BatchNumber: "B", HeatNumber: "H", Location: "Rack", InitialQuantity: decimal.NewFromInt(-1)},
		"inicial 5 decimales":   {ProductID: "p-1", LotNumber: "L-1", BatchNumber: "B", HeatNumber: "H", Location: "Rack", InitialQuantity: decimal.RequireFromString("1.00004")},
		"seguridad 5 decimales": {ProductID: "p-1", LotNumber: "L-1", BatchNumber: "B", HeatNumber: "H", Location: "Rack", SafetyStockLevel: decimal.RequireFromString("0.00001")},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			before := len(f.events.actions())
			_, err := f.registry.CreateLot(context.Background(), operator, req)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			require.Len(t, f.events.actions(), before+1, "el intento inválido queda auditado")
			assert.Equal(t, entity.ActionLotCreateInvalidInput, f.events.last().Action)
			assert.NotEmpty(t, f.events.last().Details["error"])
		})
	}

	list, err := f.registry.ListLots(context.Background(), dto.LotQuery{IncludeDeleted: true})
	require.NoError(t, err)
	assert.Zero(t, list.Page.Total)
}

func TestCreateLot_PrecisionError(t *testing.T) {
	f := newFixture(t)
	f.product(t, "p-1", "Steel Rod", 125)

	_, err := f.registry.CreateLot(context.Background(), operator, dto.CreateLotRequest{
		ProductID: "p-1", LotNumber: "L-1", BatchNumber: "B", HeatNumber: "H", Location: "Rack",
		InitialQuantity: decimal.RequireFromString("1.00004"),
	})
	assert.ErrorIs(t, err, domain.ErrAmountPrecision)

	lot, err := f.registry.CreateLot(context.Background(), operator, dto.CreateLotRequest{
		ProductID: "p-1", LotNumber: "L-1", BatchNumber: "B", HeatNumber: "H", Location: "Rack",
		InitialQuantity: decimal.RequireFromString("1.0004"),
	})
	require.NoError(t, err)
	assert.Equal(t, "1.0004", lot.AvailableQuantity.String())
}

// failingCatalog simula un catálogo caído.
type failingCatalog struct{}

func (failingCatalog) GetProduct(context.Context, string) (*entity.Product, error) {
	return nil, domain.ErrUpstreamUnavailable
}

func TestCreateLot_CatalogUnavailable(t *testing.T) {
	store := memory.NewStore()
	events := &recorder{}
	log := logger.Nop()
	txns := memory.NewTransactionRepository(store)
	registry := ledger.NewLotRegistry(
		memory.NewTxRunner(store), memory.NewLotRepository(store), failingCatalog{},
		ledger.NewBalanceEngine(txns, memory.NewSummaryRepository(store), log), events, log,
	)

	_, err := registry.CreateLot(context.Background(), operator, dto.CreateLotRequest{
		ProductID: "p-1", LotNumber: "L-1", BatchNumber: "B", HeatNumber: "H", Location: "Rack",
	})
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
	assert.Equal(t, entity.ActionLotCreateError, events.last().Action)
	assert.Equal(t, "p-1", events.last().Details["product_id"])
}

func TestCreateLot_UnknownProduct(t *testing.T) {
	f := newFixture(t)

	_, err := f.registry.CreateLot(context.Background(), operator, dto.CreateLotRequest{
		ProductID: "ghost", LotNumber: "L-1", BatchNumber: "B", HeatNumber: "H", Location: "Rack",
	})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
	assert.Equal(t, entity.ActionLotCreateProductNotFound, f.events.last().Action)
}

func TestCreateLot_DuplicateIdentity(t *testing.T) {
	f := newFixture(t)
	f.product(t, "p-1", "Steel Rod", 125)
	first := f.lot(t, "p-1", "L-001", 0, 0)

	_, err := f.registry.CreateLot(context.Background(), operator, dto.CreateLotRequest{
		ProductID: "p-1", LotNumber: " L-001 ", BatchNumber: "B-L-001", HeatNumber: "H-L-001", Location: "Rack B",
	})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
	assert.Equal(t, entity.ActionLotCreateDuplicate, f.events.last().Action)

	// La identidad sigue ocupada aunque el lote esté eliminado.
	require.NoError(t, f.registry.DeleteLot(context.Background(), operator, first.ID))
	_, err = f.registry.CreateLot(context.Background(), operator, dto.CreateLotRequest{
		ProductID: "p-1", LotNumber: "L-001", BatchNumber: "B-L-001", HeatNumber: "H-L-001", Location: "Rack B",
	})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	// Otro heat number es otra identidad.
	_, err = f.registry.CreateLot(context.Background(), operator, dto.CreateLotRequest{
		ProductID: "p-1", LotNumber: "L-001", BatchNumber: "B-L-001", HeatNumber: "H-2", Location: "Rack B",
	})
	assert.NoError(t, err)
}

func TestDeleteLot_Lifecycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.product(t, "p-1", "Steel Rod", 125)
	lot := f.lot(t, "p-1", "L-001", 30, 0)

	err := f.registry.DeleteLot(ctx, operator, lot.ID)
	var notEmpty *domain.LotNotEmptyError
	require.ErrorAs(t, err, &notEmpty)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, "30", notEmpty.Remaining.String())
	assert.Equal(t, entity.ActionLotDeleteBlocked, f.events.last().Action)

	_, err = f.move(lot.ID, "OUT", 30)
	require.NoError(t, err)
	require.NoError(t, f.registry.DeleteLot(ctx, operator, lot.ID))
	assert.Equal(t, entity.ActionLotDeleted, f.events.last().Action)

	got, err := f.registry.GetLot(ctx, lot.ID)
	require.NoError(t, err, "un lote eliminado sigue siendo consultable por ID")
	assert.Equal(t, entity.LotStateDeleted, got.State)
	assert.NotNil(t, got.DeletedAt)

	history, err := f.journal.ListByLot(ctx, lot.ID)
	require.NoError(t, err, "el journal de un lote eliminado sigue disponible")
	require.Len(t, history, 2)
	assert.Equal(t, entity.TransactionTypeOUT, history[0].Type)
	assert.Equal(t, "30", history[0].Quantity.String())
	assert.Equal(t, entity.TransactionTypeIN, history[1].Type)
	assert.Equal(t, "Initial stock", history[1].Remarks)

	_, err = f.move(lot.ID, "IN", 5)
	assert.ErrorIs(t, err, domain.ErrLotDeleted)
	assert.Equal(t, entity.ActionTxnLotDeleted, f.events.last().Action)

	err = f.registry.DeleteLot(ctx, operator, lot.ID)
	assert.ErrorIs(t, err, domain.ErrLotDeleted)
	assert.Equal(t, entity.ActionLotDeleteAlreadyDeleted, f.events.last().Action)
	assert.Equal(t, lot.ID, f.events.last().EntityID)

	loc := "Rack Z"
	_, err = f.registry.UpdateLot(ctx, operator, lot.ID, dto.UpdateLotRequest{Location: &loc})
	assert.ErrorIs(t, err, domain.ErrLotDeleted)
	assert.Equal(t, entity.ActionLotUpdateDeleted, f.events.last().Action)

	err = f.registry.DeleteLot(ctx, operator, "missing")
	assert.ErrorIs(t, err, domain.ErrLotNotFound)
	assert.Equal(t, entity.ActionLotDeleteNotFound, f.events.last().Action)
}

func TestListLots_ExcludesDeletedByDefault(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.product(t, "p-1", "Steel Rod", 125)
	f.product(t, "p-2", "Steel Plate", 300)
	a := f.lot(t, "p-1", "L-001", 0, 0)
	f.lot(t, "p-1", "L-002", 5, 0)
	c := f.lot(t, "p-2", "L-003", 7, 0)
	require.NoError(t, f.registry.DeleteLot(ctx, operator, a.ID))

	list, err := f.registry.ListLots(ctx, dto.LotQuery{})
	require.NoError(t, err)
	assert.Equal(t, 2, list.Page.Total)
	assert.Equal(t, c.ID, list.Items[0].ID, "más reciente primero")
	assert.Equal(t, "7", list.Items[0].AvailableQuantity.String())

	all, err := f.registry.ListLots(ctx, dto.LotQuery{IncludeDeleted: true})
	require.NoError(t, err)
	assert.Equal(t, 3, all.Page.Total)

	byProduct, err := f.registry.ListLotsByProduct(ctx, "p-2", dto.LotQuery{})
	require.NoError(t, err)
	require.Len(t, byProduct.Items, 1)
	assert.Equal(t, "L-003", byProduct.Items[0].LotNumber)
}

func TestUpdateLot_MetadataOnly(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.product(t, "p-1", "Steel Rod", 125)
	lot := f.lot(t, "p-1", "L-001", 40, 0)

	loc := " Rack C "
	level := decimal.NewFromInt(50)
	got, err := f.registry.UpdateLot(ctx, operator, lot.ID, dto.UpdateLotRequest{Location: &loc, SafetyStockLevel: &level})
	require.NoError(t, err)
	assert.Equal(t, "Rack C", got.Location)
	assert.Equal(t, "40", got.AvailableQuantity.String())
	assert.True(t, got.BelowSafetyStock)
	assert.Equal(t, entity.ActionLotUpdated, f.events.last().Action)

	empty := ""
	_, err = f.registry.UpdateLot(ctx, operator, lot.ID, dto.UpdateLotRequest{Location: &empty})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, entity.ActionLotUpdateInvalidInput, f.events.last().Action)

	fine := decimal.RequireFromString("10.00001")
	_, err = f.registry.UpdateLot(ctx, operator, lot.ID, dto.UpdateLotRequest{SafetyStockLevel: &fine})
	assert.ErrorIs(t, err, domain.ErrAmountPrecision)
	assert.Equal(t, entity.ActionLotUpdateInvalidInput, f.events.last().Action)

	_, err = f.registry.UpdateLot(ctx, operator, "missing", dto.UpdateLotRequest{Location: &loc})
	assert.ErrorIs(t, err, domain.ErrLotNotFound)
	assert.Equal(t, entity.ActionLotUpdateNotFound, f.events.last().Action)
}

func TestGetLotBalance(t *testing.T) {
	f := newFixture(t)
	f.product(t, "p-1", "Steel Rod", 125)
	lot := f.lot(t, "p-1", "L-001", 100, 0)
	_, err := f.move(lot.ID, "OUT", 35)
	require.NoError(t, err)

	bal, err := f.registry.GetLotBalance(context.Background(), lot.ID)
	require.NoError(t, err)
	assert.Equal(t, "65", bal.AvailableQuantity.String())
	assert.Equal(t, "100", bal.TotalIn.String())
	assert.Equal(t, "35", bal.TotalOut.String())

	_, err = f.registry.GetLotBalance(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrLotNotFound)
}
