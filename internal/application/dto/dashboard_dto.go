package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockSummaryResponse resumen global de existencias (lotes no eliminados).
type StockSummaryResponse struct {
	TotalProducts   int             `json:"total_products"`
	LotCount        int             `json:"lot_count"`
	TotalIn         decimal.Decimal `json:"total_in"`
	TotalOut        decimal.Decimal `json:"total_out"`
	TotalStock      decimal.Decimal `json:"total_stock"`
	TotalStockValue decimal.Decimal `json:"total_stock_value"`
}

// ProductStockSummary existencias agregadas de un producto.
type ProductStockSummary struct {
	ProductID     string          `json:"product_id"`
	Name          string          `json:"name"`
	MaterialGrade string          `json:"material_grade"`
	Type          string          `json:"type"`
	Unit          string          `json:"unit"`
	PricePerUnit  decimal.Decimal `json:"price_per_unit"`
	LotCount      int             `json:"lot_count"`
	TotalQuantity decimal.Decimal `json:"total_quantity"`
	TotalValue    decimal.Decimal `json:"total_value"`
}

// OverviewResponse resumen y desglose por producto en una sola respuesta.
type OverviewResponse struct {
	Summary     StockSummaryResponse  `json:"summary"`
	Products    []ProductStockSummary `json:"products"`
	GeneratedAt time.Time             `json:"generated_at"`
}
