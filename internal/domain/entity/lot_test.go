package entity_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/lot-ledger/internal/domain/entity"
)

func TestLotState(t *testing.T) {
	lot := &entity.Lot{ID: "L-1"}

	assert.Equal(t, entity.LotStateActiveEmpty, lot.State(decimal.Zero))
	assert.Equal(t, entity.LotStateActive, lot.State(decimal.NewFromInt(3)))

	lot.IsDeleted = true
	assert.Equal(t, entity.LotStateDeleted, lot.State(decimal.Zero))
}

func TestLotBelowSafetyStock(t *testing.T) {
	lot := &entity.Lot{SafetyStockLevel: decimal.NewFromInt(10)}

	assert.True(t, lot.BelowSafetyStock(decimal.NewFromInt(9)))
	assert.False(t, lot.BelowSafetyStock(decimal.NewFromInt(10)))

	lot.SafetyStockLevel = decimal.Zero
	assert.False(t, lot.BelowSafetyStock(decimal.Zero), "sin nivel configurado no hay alerta")
}

func TestLotIdentityNormalize(t *testing.T) {
	k := entity.LotIdentity{ProductID: " P1 ", LotNumber: "L-001 ", BatchNumber: " b1", HeatNumber: "H1"}.Normalize()

	assert.Equal(t, entity.LotIdentity{ProductID: "P1", LotNumber: "L-001", BatchNumber: "b1", HeatNumber: "H1"}, k)
}

func TestParseTransactionType(t *testing.T) {
	typ, ok := entity.ParseTransactionType(" out ")
	assert.True(t, ok)
	assert.Equal(t, entity.TransactionTypeOUT, typ)

	_, ok = entity.ParseTransactionType("ADJUST")
	assert.False(t, ok)
}

func TestTransactionSignedAndTotals(t *testing.T) {
	in := &entity.Transaction{Type: entity.TransactionTypeIN, Quantity: decimal.NewFromInt(100)}
	out := &entity.Transaction{Type: entity.TransactionTypeOUT, Quantity: decimal.NewFromInt(40)}

	assert.True(t, in.Signed().Add(out.Signed()).Equal(decimal.NewFromInt(60)))

	totals := entity.LotTotals{In: decimal.NewFromInt(100), Out: decimal.NewFromInt(40)}
	assert.True(t, totals.Balance().Equal(decimal.NewFromInt(60)))
}

func TestFitsAmount(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"1", true},
		{"1.0004", true},
		{"1.00040", true},
		{"0.00001", false},
		{"1.00004", false},
		{"99999999999999.9999", true},
		{"100000000000000", false},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, entity.FitsAmount(decimal.RequireFromString(tc.in)))
		})
	}
}
