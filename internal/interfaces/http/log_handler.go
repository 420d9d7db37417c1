package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/lot-ledger/internal/application/dto"
	"github.com/jhoicas/lot-ledger/internal/application/usecase"
)

// LogHandler expone la bitácora de actividad.
type LogHandler struct {
	uc *usecase.AuditLogUseCase
}

// NewLogHandler construye el handler.
func NewLogHandler(uc *usecase.AuditLogUseCase) *LogHandler {
	return &LogHandler{uc: uc}
}

// List godoc
// @Summary      Bitácora de actividad, más reciente primero
// @Tags         logs
// @Security     Bearer
// @Produce      json
// @Param        page         query  int     false  "Página"  default(1)
// @Param        limit        query  int     false  "Límite"  default(50)
// @Param        user_id      query  string  false  "Filtrar por usuario"
// @Param        entity_type  query  string  false  "Lot | Transaction | Product"
// @Success      200  {object}  dto.AuditLogListResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/logs [get]
func (h *LogHandler) List(c *fiber.Ctx) error {
	var q dto.AuditLogQuery
	if err := c.QueryParser(&q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros de consulta inválidos"})
	}
	out, err := h.uc.List(c.UserContext(), q)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ListByUser godoc
// @Summary      Bitácora de un usuario
// @Tags         logs
// @Security     Bearer
// @Produce      json
// @Param        userId  path  string  true  "ID del usuario"
// @Success      200  {object}  dto.AuditLogListResponse
// @Router       /api/logs/user/{userId} [get]
func (h *LogHandler) ListByUser(c *fiber.Ctx) error {
	q := dto.AuditLogQuery{Page: c.QueryInt("page", 1), Limit: c.QueryInt("limit", 50)}
	out, err := h.uc.ListByUser(c.UserContext(), c.Params("userId"), q)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
