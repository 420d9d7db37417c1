package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// AppendTransactionRequest body para POST /api/transactions.
type AppendTransactionRequest struct {
	LotID    string          `json:"lot_id"`
	Type     string          `json:"type"`
	Quantity decimal.Decimal `json:"quantity"`
	Remarks  string          `json:"remarks,omitempty"`
}

// TransactionResponse entrada del journal.
type TransactionResponse struct {
	ID        string          `json:"id"`
	LotID     string          `json:"lot_id"`
	LotNumber string          `json:"lot_number,omitempty"`
	ProductID string          `json:"product_id,omitempty"`
	Type      string          `json:"type"`
	Quantity  decimal.Decimal `json:"quantity"`
	Remarks   string          `json:"remarks,omitempty"`
	CreatedBy string          `json:"created_by"`
	CreatedAt time.Time       `json:"created_at"`
}

// AppendTransactionResponse movimiento creado y saldo resultante del lote.
type AppendTransactionResponse struct {
	Transaction       TransactionResponse `json:"transaction"`
	AvailableQuantity decimal.Decimal     `json:"available_quantity"`
}

// TransactionListResponse listado paginado del journal.
type TransactionListResponse struct {
	Items []TransactionResponse `json:"items"`
	Page  PageResponse          `json:"page"`
}

// StatementEntry línea del extracto de un lote con el saldo acumulado.
type StatementEntry struct {
	Transaction    TransactionResponse
	RunningBalance decimal.Decimal
}

// LotStatement historial completo de un lote, del más antiguo al más reciente.
type LotStatement struct {
	Lot         LotResponse
	Entries     []StatementEntry
	TotalIn     decimal.Decimal
	TotalOut    decimal.Decimal
	GeneratedAt time.Time
}

// RenderedStatement documento serializado y su digest.
type RenderedStatement struct {
	Body        []byte
	ContentType string
	Digest      string
}
