package statement_test

import (
	"strings"
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/lot-ledger/internal/application/dto"
	"github.com/jhoicas/lot-ledger/internal/infrastructure/statement"
)

func sampleStatement() *dto.LotStatement {
	at := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	return &dto.LotStatement{
		Lot: dto.LotResponse{
			ID: "lot-1", ProductID: "p-1", LotNumber: "L-001", BatchNumber: "B1", HeatNumber: "H1",
			Location: "Rack A & B", SafetyStockLevel: decimal.NewFromInt(10),
			AvailableQuantity: decimal.NewFromInt(60), State: "ACTIVE",
		},
		Entries: []dto.StatementEntry{
			{Transaction: dto.TransactionResponse{ID: "t-1", Type: "IN", Quantity: decimal.NewFromInt(100), CreatedAt: at, CreatedBy: "u1"}, RunningBalance: decimal.NewFromInt(100)},
			{Transaction: dto.TransactionResponse{ID: "t-2", Type: "OUT", Quantity: decimal.NewFromInt(40), CreatedAt: at.Add(time.Hour), CreatedBy: "u1", Remarks: "despacho <urgente>"}, RunningBalance: decimal.NewFromInt(60)},
		},
		TotalIn:     decimal.NewFromInt(100),
		TotalOut:    decimal.NewFromInt(40),
		GeneratedAt: at.Add(2 * time.Hour),
	}
}

func TestRender_DigestMatchesBody(t *testing.T) {
	r := statement.NewXMLRenderer()

	out, err := r.Render(sampleStatement())
	require.NoError(t, err)
	assert.Equal(t, statement.ContentType, out.ContentType)
	assert.True(t, strings.HasPrefix(out.Digest, statement.DigestPrefix))

	again, err := statement.Digest(out.Body)
	require.NoError(t, err)
	assert.Equal(t, out.Digest, again)
}

func TestRender_EntriesInOrder(t *testing.T) {
	out, err := statement.NewXMLRenderer().Render(sampleStatement())
	require.NoError(t, err)

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(out.Body))

	entries := doc.FindElements("/LotStatement/Entries/Entry")
	require.Len(t, entries, 2)
	assert.Equal(t, "t-1", entries[0].SelectAttrValue("id", ""))
	assert.Equal(t, "60", entries[1].SelectElement("RunningBalance").Text())
	assert.Equal(t, "despacho <urgente>", entries[1].SelectElement("Remarks").Text())
	assert.Equal(t, "60", doc.FindElement("/LotStatement/Totals/Balance").Text())
}

func TestRender_DigestChangesWithContent(t *testing.T) {
	r := statement.NewXMLRenderer()
	a, err := r.Render(sampleStatement())
	require.NoError(t, err)

	st := sampleStatement()
	st.Entries[1].Transaction.Quantity = decimal.NewFromInt(41)
	b, err := r.Render(st)
	require.NoError(t, err)

	assert.NotEqual(t, a.Digest, b.Digest)
}

func TestRender_Nil(t *testing.T) {
	_, err := statement.NewXMLRenderer().Render(nil)
	assert.Error(t, err)
}
