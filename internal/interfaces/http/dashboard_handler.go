package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/lot-ledger/internal/application/analytics"
)

// DashboardHandler maneja los endpoints de reportes de existencias.
type DashboardHandler struct {
	uc *appanalytics.DashboardUseCase
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc *appanalytics.DashboardUseCase) *DashboardHandler {
	return &DashboardHandler{uc: uc}
}

// GetSummary devuelve los totales globales de existencias.
// GET /api/dashboard/summary
//
// Respuesta: StockSummaryResponse (total_products, lot_count, total_in, total_out,
// total_stock, total_stock_value). Solo cuenta lotes no eliminados.
func (h *DashboardHandler) GetSummary(c *fiber.Ctx) error {
	out, err := h.uc.GetSummary(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetProductSummary existencias por producto, mayor cantidad primero.
// GET /api/dashboard/product-summary
func (h *DashboardHandler) GetProductSummary(c *fiber.Ctx) error {
	out, err := h.uc.GetProductSummary(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetOverview resumen y desglose en una sola respuesta.
// GET /api/dashboard/overview
func (h *DashboardHandler) GetOverview(c *fiber.Ctx) error {
	out, err := h.uc.GetOverview(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetReport reporte PDF de existencias.
// GET /api/dashboard/report
func (h *DashboardHandler) GetReport(c *fiber.Ctx) error {
	pdf, err := h.uc.StockReportPDF(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="reporte-existencias.pdf"`)
	return c.Send(pdf)
}
