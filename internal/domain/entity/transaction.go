package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento del journal.
const (
	TransactionTypeIN  = "IN"  // entrada
	TransactionTypeOUT = "OUT" // salida
)

// Transaction entrada inmutable del journal. Quantity siempre es positiva; el signo lo da Type.
type Transaction struct {
	ID        string
	LotID     string
	Type      string
	Quantity  decimal.Decimal
	Remarks   string
	CreatedBy string
	CreatedAt time.Time
}

// Signed devuelve la cantidad con signo: +q para IN, -q para OUT.
func (t *Transaction) Signed() decimal.Decimal {
	if t.Type == TransactionTypeOUT {
		return t.Quantity.Neg()
	}
	return t.Quantity
}

// ParseTransactionType normaliza el tipo; ok=false si no es IN ni OUT.
func ParseTransactionType(s string) (string, bool) {
	switch t := strings.ToUpper(strings.TrimSpace(s)); t {
	case TransactionTypeIN, TransactionTypeOUT:
		return t, true
	default:
		return "", false
	}
}

// LotTotals sumas del journal de un lote.
type LotTotals struct {
	In  decimal.Decimal
	Out decimal.Decimal
}

// Balance Σ IN − Σ OUT.
func (t LotTotals) Balance() decimal.Decimal {
	return t.In.Sub(t.Out)
}
