package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Estados derivados de un lote.
const (
	LotStateActive      = "ACTIVE"
	LotStateActiveEmpty = "ACTIVE_EMPTY"
	LotStateDeleted     = "DELETED"
)

// LotIdentity clave natural del lote. Única entre todos los lotes, incluidos los eliminados.
type LotIdentity struct {
	ProductID   string
	LotNumber   string
	BatchNumber string
	HeatNumber  string
}

// Normalize recorta espacios; las mayúsculas se conservan.
func (k LotIdentity) Normalize() LotIdentity {
	return LotIdentity{
		ProductID:   strings.TrimSpace(k.ProductID),
		LotNumber:   strings.TrimSpace(k.LotNumber),
		BatchNumber: strings.TrimSpace(k.BatchNumber),
		HeatNumber:  strings.TrimSpace(k.HeatNumber),
	}
}

// Lot contenedor físico de stock de un producto.
// Quantity es el contador en caché; la fuente de verdad es el journal.
type Lot struct {
	ID               string
	ProductID        string
	LotNumber        string
	BatchNumber      string
	HeatNumber       string
	Location         string
	SafetyStockLevel decimal.Decimal
	Quantity         decimal.Decimal
	IsDeleted        bool
	DeletedAt        *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Identity devuelve la clave natural del lote.
func (l *Lot) Identity() LotIdentity {
	return LotIdentity{ProductID: l.ProductID, LotNumber: l.LotNumber, BatchNumber: l.BatchNumber, HeatNumber: l.HeatNumber}
}

// State deriva el estado a partir del flag de borrado y el saldo.
func (l *Lot) State(balance decimal.Decimal) string {
	switch {
	case l.IsDeleted:
		return LotStateDeleted
	case balance.IsZero():
		return LotStateActiveEmpty
	default:
		return LotStateActive
	}
}

// BelowSafetyStock indica si el saldo quedó por debajo del nivel de seguridad configurado.
func (l *Lot) BelowSafetyStock(balance decimal.Decimal) bool {
	return !l.IsDeleted && l.SafetyStockLevel.IsPositive() && balance.LessThan(l.SafetyStockLevel)
}
