package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest body para POST /api/products.
type CreateProductRequest struct {
	Name          string          `json:"name"`
	MaterialGrade string          `json:"material_grade"`
	Type          string          `json:"type"`
	Unit          string          `json:"unit"`
	PricePerUnit  decimal.Decimal `json:"price_per_unit"`
	WeightPerUnit decimal.Decimal `json:"weight_per_unit"`
	Brand         string          `json:"brand,omitempty"`
	Description   string          `json:"description,omitempty"`
}

// UpdateProductRequest body para PUT /api/products/:id (campos opcionales).
type UpdateProductRequest struct {
	Name          *string          `json:"name,omitempty"`
	MaterialGrade *string          `json:"material_grade,omitempty"`
	Type          *string          `json:"type,omitempty"`
	Unit          *string          `json:"unit,omitempty"`
	PricePerUnit  *decimal.Decimal `json:"price_per_unit,omitempty"`
	WeightPerUnit *decimal.Decimal `json:"weight_per_unit,omitempty"`
	Brand         *string          `json:"brand,omitempty"`
	Description   *string          `json:"description,omitempty"`
}

// ProductResponse respuesta de un producto.
type ProductResponse struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	MaterialGrade string          `json:"material_grade"`
	Type          string          `json:"type"`
	Unit          string          `json:"unit"`
	PricePerUnit  decimal.Decimal `json:"price_per_unit"`
	WeightPerUnit decimal.Decimal `json:"weight_per_unit"`
	Brand         string          `json:"brand,omitempty"`
	Description   string          `json:"description,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ProductListResponse listado paginado de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// ProductRef datos del producto embebidos en la respuesta de un lote.
type ProductRef struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	MaterialGrade string          `json:"material_grade"`
	Type          string          `json:"type"`
	Unit          string          `json:"unit"`
	PricePerUnit  decimal.Decimal `json:"price_per_unit"`
}
