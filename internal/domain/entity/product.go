package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Unidades de medida admitidas por el catálogo.
const (
	UnitKG        = "KG"
	UnitMeter     = "METER"
	UnitFeet      = "FEET"
	UnitMM        = "MM"
	UnitMetricTon = "METRIC TON"
	UnitQuintal   = "QUINTAL"
	UnitPieces    = "PIECES"
)

// ValidUnits conjunto de unidades aceptadas.
var ValidUnits = map[string]struct{}{
	UnitKG: {}, UnitMeter: {}, UnitFeet: {}, UnitMM: {}, UnitMetricTon: {}, UnitQuintal: {}, UnitPieces: {},
}

// Product producto del catálogo. El ledger solo lo referencia por ID y lo lee al responder.
type Product struct {
	ID            string
	Name          string
	MaterialGrade string
	Type          string
	Unit          string
	PricePerUnit  decimal.Decimal
	WeightPerUnit decimal.Decimal
	Brand         string
	Description   string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
