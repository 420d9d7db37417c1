package ledger_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/lot-ledger/internal/application/dto"
	"github.com/jhoicas/lot-ledger/internal/domain"
	"github.com/jhoicas/lot-ledger/internal/domain/entity"
)

func TestAppend_InOutAndInsufficientStock(t *testing.T) {
	f := newFixture(t)
	f.product(t, "p-1", "Steel Rod", 125)
	lot := f.lot(t, "p-1", "L-001", 100, 0)
	assert.Equal(t, "100", lot.AvailableQuantity.String())

	out, err := f.move(lot.ID, "OUT", 40)
	require.NoError(t, err)
	assert.Equal(t, "60", out.AvailableQuantity.String())
	assert.Equal(t, operator.UserID, out.Transaction.CreatedBy)
	assert.Equal(t, "L-001", out.Transaction.LotNumber)

	_, err = f.move(lot.ID, "in", 10)
	require.NoError(t, err)
	assert.Equal(t, "70", f.balanceOf(t, lot.ID).String())

	_, err = f.move(lot.ID, "OUT", 80)
	var insufficient *domain.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, "70", insufficient.Available.String())
	assert.Equal(t, "80", insufficient.Requested.String())

	assert.Equal(t, "70", f.balanceOf(t, lot.ID).String(), "el rechazo no altera el saldo")

	txns, err := f.journal.ListByLot(context.Background(), lot.ID)
	require.NoError(t, err)
	assert.Len(t, txns, 3, "initial stock + OUT + IN; el OUT rechazado no se asienta")

	assert.Equal(t, entity.ActionTxnInsufficientStock, f.events.last().Action)
	assert.Equal(t, "70", f.events.last().Details["available"])
}

func TestAppend_OutOfExactBalanceEmptiesLot(t *testing.T) {
	f := newFixture(t)
	f.product(t, "p-1", "Steel Rod", 125)
	lot := f.lot(t, "p-1", "L-001", 25, 0)

	res, err := f.move(lot.ID, "OUT", 25)
	require.NoError(t, err)
	assert.True(t, res.AvailableQuantity.IsZero())

	got, err := f.registry.GetLot(context.Background(), lot.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.LotStateActiveEmpty, got.State)
}

func TestAppend_ValidationOrder(t *testing.T) {
	f := newFixture(t)
	f.product(t, "p-1", "Steel Rod", 125)
	lot := f.lot(t, "p-1", "L-001", 10, 0)

	_, err := f.journal.Append(context.Background(), operator, dto.AppendTransactionRequest{LotID: "missing", Type: "ADJUST", Quantity: dec(0)})
	assert.ErrorIs(t, err, domain.ErrLotNotFound, "el lote se valida antes que el tipo")
	assert.Equal(t, entity.ActionTxnLotNotFound, f.events.last().Action)

	_, err = f.journal.Append(context.Background(), operator, dto.AppendTransactionRequest{LotID: lot.ID, Type: "ADJUST", Quantity: dec(0)})
	assert.ErrorIs(t, err, domain.ErrInvalidType, "el tipo se valida antes que la cantidad")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, entity.ActionTxnInvalidType, f.events.last().Action)

	_, err = f.move(lot.ID, "IN", 0)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = f.move(lot.ID, "OUT", -5)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	assert.Equal(t, entity.ActionTxnInvalidQuantity, f.events.last().Action)

	res, err := f.move(lot.ID, " out ", 3)
	require.NoError(t, err)
	assert.Equal(t, entity.TransactionTypeOUT, res.Transaction.Type)
}

func TestAppend_ConcurrentOutsNeverOverdraw(t *testing.T) {
	f := newFixture(t)
	f.product(t, "p-1", "Steel Rod", 125)
	lot := f.lot(t, "p-1", "L-001", 1, 0)

	const workers = 20
	var (
		wg           sync.WaitGroup
		successes    atomic.Int32
		insufficient atomic.Int32
		start        = make(chan struct{})
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := f.move(lot.ID, "OUT", 1)
			switch {
			case err == nil:
				successes.Add(1)
			case errors.Is(err, domain.ErrInsufficientStock):
				insufficient.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.EqualValues(t, 1, successes.Load())
	assert.EqualValues(t, workers-1, insufficient.Load())
	assert.True(t, f.balanceOf(t, lot.ID).IsZero())
}

func TestAppend_ConcurrentInsAllApplied(t *testing.T) {
	f := newFixture(t)
	f.product(t, "p-1", "Steel Rod", 125)
	lot := f.lot(t, "p-1", "L-001", 0, 0)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.move(lot.ID, "IN", 2)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, "100", f.balanceOf(t, lot.ID).String())

	bal, err := f.registry.GetLotBalance(context.Background(), lot.ID)
	require.NoError(t, err)
	assert.Equal(t, "100", bal.TotalIn.String())
	assert.True(t, bal.TotalOut.IsZero())
}

func TestAppend_CachedCounterMismatchIsIntegrityError(t *testing.T) {
	f := newFixture(t)
	f.product(t, "p-1", "Steel Rod", 125)
	lot := f.lot(t, "p-1", "L-001", 10, 0)

	// Contador alterado por fuera del journal.
	require.NoError(t, f.lots.SetQuantity(context.Background(), lot.ID, dec(999), time.Now()))

	_, err := f.move(lot.ID, "OUT", 5)
	var integrity *domain.IntegrityError
	require.ErrorAs(t, err, &integrity)
	assert.ErrorIs(t, err, domain.ErrDataIntegrity)
	assert.Equal(t, lot.ID, integrity.LotID)
	assert.Equal(t, "999", integrity.Cached.String())
	assert.Equal(t, "10", integrity.Journal.String())

	assert.Equal(t, "10", f.balanceOf(t, lot.ID).String(), "las lecturas siguen reportando el saldo del journal")
	assert.Equal(t, entity.ActionTxnIntegrity, f.events.last().Action)
	assert.Equal(t, lot.ID, f.events.last().Details["lot_id"])

	err = f.registry.DeleteLot(context.Background(), operator, lot.ID)
	assert.ErrorIs(t, err, domain.ErrDataIntegrity)
	assert.Equal(t, entity.ActionLotDeleteIntegrity, f.events.last().Action)
}

func TestAppend_RejectsQuantitiesBeyondStoredScale(t *testing.T) {
	f := newFixture(t)
	f.product(t, "p-1", "Steel Rod", 125)
	lot := f.lot(t, "p-1", "L-001", 10, 0)

	for _, qty := range []string{"0.00001", "1.00004", "100000000000000"} {
		_, err := f.journal.Append(context.Background(), operator, dto.AppendTransactionRequest{
			LotID: lot.ID, Type: "IN", Quantity: decimal.RequireFromString(qty),
		})
		assert.ErrorIs(t, err, domain.ErrAmountPrecision, qty)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, qty)
		assert.Equal(t, entity.ActionTxnInvalidQuantity, f.events.last().Action)
	}

	res, err := f.journal.Append(context.Background(), operator, dto.AppendTransactionRequest{
		LotID: lot.ID, Type: "IN", Quantity: decimal.RequireFromString("0.0001"),
	})
	require.NoError(t, err)
	assert.Equal(t, "10.0001", res.AvailableQuantity.String())
	assert.Equal(t, "10.0001", f.events.last().Details["balance_after"])

	txns, err := f.journal.ListByLot(context.Background(), lot.ID)
	require.NoError(t, err)
	assert.Len(t, txns, 2, "solo el inicial y el IN válido")
}

func TestAppend_EntriesAreImmutable(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.product(t, "p-1", "Steel Rod", 125)
	lot := f.lot(t, "p-1", "L-001", 50, 0)

	first, err := f.journal.Append(ctx, operator, dto.AppendTransactionRequest{
		LotID: lot.ID, Type: "OUT", Quantity: dec(12), Remarks: " despacho 001 ",
	})
	require.NoError(t, err)
	before, err := f.journal.GetTransaction(ctx, first.Transaction.ID)
	require.NoError(t, err)

	for _, m := range []struct {
		typ string
		qty int64
	}{{"IN", 5}, {"OUT", 20}, {"IN", 1}, {"OUT", 40}} {
		_, _ = f.move(lot.ID, m.typ, m.qty)
	}
	loc := "Rack Z"
	_, err = f.registry.UpdateLot(ctx, operator, lot.ID, dto.UpdateLotRequest{Location: &loc})
	require.NoError(t, err)

	after, err := f.journal.GetTransaction(ctx, first.Transaction.ID)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Equal(t, "despacho 001", after.Remarks)
	assert.Equal(t, "12", after.Quantity.String())
	assert.Equal(t, entity.TransactionTypeOUT, after.Type)
	assert.Equal(t, operator.UserID, after.CreatedBy)

	history, err := f.journal.ListByLot(ctx, lot.ID)
	require.NoError(t, err)
	assert.Contains(t, history, *before)
}

func TestListTransactions_NewestFirst(t *testing.T) {
	f := newFixture(t)
	f.product(t, "p-1", "Steel Rod", 125)
	lot := f.lot(t, "p-1", "L-001", 10, 0)
	_, err := f.move(lot.ID, "OUT", 4)
	require.NoError(t, err)
	last, err := f.move(lot.ID, "IN", 1)
	require.NoError(t, err)

	page, err := f.journal.ListTransactions(context.Background(), dto.PageRequest{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, 3, page.Page.Total)
	assert.Equal(t, last.Transaction.ID, page.Items[0].ID)
	assert.Equal(t, "L-001", page.Items[0].LotNumber)
	assert.Equal(t, "p-1", page.Items[0].ProductID)

	got, err := f.journal.GetTransaction(context.Background(), last.Transaction.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TransactionTypeIN, got.Type)

	_, err = f.journal.GetTransaction(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrTransactionNotFound)
}
