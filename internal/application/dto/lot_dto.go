package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateLotRequest body para POST /api/lots.
// InitialQuantity > 0 se registra como una entrada IN en la misma transacción.
type CreateLotRequest struct {
	ProductID        string          `json:"product_id"`
	LotNumber        string          `json:"lot_number"`
	BatchNumber      string          `json:"batch_number"`
	HeatNumber       string          `json:"heat_number"`
	Location         string          `json:"location"`
	SafetyStockLevel decimal.Decimal `json:"safety_stock_level"`
	InitialQuantity  decimal.Decimal `json:"initial_quantity"`
}

// UpdateLotRequest body para PUT /api/lots/:id. La cantidad no es editable por esta vía.
type UpdateLotRequest struct {
	Location         *string          `json:"location,omitempty"`
	SafetyStockLevel *decimal.Decimal `json:"safety_stock_level,omitempty"`
}

// LotQuery filtros de GET /api/lots.
type LotQuery struct {
	PageRequest
	ProductID      string `query:"product_id"`
	IncludeDeleted bool   `query:"include_deleted"`
}

// LotResponse lote con su saldo derivado del journal.
type LotResponse struct {
	ID                string          `json:"id"`
	ProductID         string          `json:"product_id"`
	Product           *ProductRef     `json:"product,omitempty"`
	LotNumber         string          `json:"lot_number"`
	BatchNumber       string          `json:"batch_number"`
	HeatNumber        string          `json:"heat_number"`
	Location          string          `json:"location"`
	SafetyStockLevel  decimal.Decimal `json:"safety_stock_level"`
	AvailableQuantity decimal.Decimal `json:"available_quantity"`
	State             string          `json:"state"`
	BelowSafetyStock  bool            `json:"below_safety_stock"`
	IsDeleted         bool            `json:"is_deleted"`
	DeletedAt         *time.Time      `json:"deleted_at,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// LotListResponse listado paginado de lotes.
type LotListResponse struct {
	Items []LotResponse `json:"items"`
	Page  PageResponse  `json:"page"`
}

// LotBalanceResponse respuesta de GET /api/lots/:id/balance.
type LotBalanceResponse struct {
	LotID             string          `json:"lot_id"`
	AvailableQuantity decimal.Decimal `json:"available_quantity"`
	TotalIn           decimal.Decimal `json:"total_in"`
	TotalOut          decimal.Decimal `json:"total_out"`
}

// SafetyStockAlertDTO lote por debajo de su nivel de seguridad.
type SafetyStockAlertDTO struct {
	LotID             string          `json:"lot_id"`
	LotNumber         string          `json:"lot_number"`
	Location          string          `json:"location"`
	ProductID         string          `json:"product_id"`
	ProductName       string          `json:"product_name"`
	AvailableQuantity decimal.Decimal `json:"available_quantity"`
	SafetyStockLevel  decimal.Decimal `json:"safety_stock_level"`
	Deficit           decimal.Decimal `json:"deficit"`
	Priority          int             `json:"priority"` // 1 = más urgente
}
