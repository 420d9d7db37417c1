package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/lot-ledger/internal/application/dto"
	"github.com/jhoicas/lot-ledger/internal/application/ledger"
)

// LotHandler maneja el registro de lotes, sus saldos y extractos.
type LotHandler struct {
	registry  *ledger.LotRegistry
	journal   *ledger.Journal
	balance   *ledger.BalanceEngine
	statement *ledger.StatementUseCase
}

// NewLotHandler construye el handler.
func NewLotHandler(registry *ledger.LotRegistry, journal *ledger.Journal, balance *ledger.BalanceEngine, statement *ledger.StatementUseCase) *LotHandler {
	return &LotHandler{registry: registry, journal: journal, balance: balance, statement: statement}
}

// Create godoc
// @Summary      Crear lote
// @Description  initial_quantity > 0 se registra como entrada IN en la misma transacción.
// @Tags         lots
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateLotRequest  true  "Identidad y metadatos del lote"
// @Success      201   {object}  dto.LotResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/lots [post]
func (h *LotHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateLotRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.registry.CreateLot(c.UserContext(), ActorFrom(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar lotes
// @Tags         lots
// @Security     Bearer
// @Produce      json
// @Param        product_id       query  string  false  "Filtrar por producto"
// @Param        include_deleted  query  bool    false  "Incluir eliminados"
// @Param        limit            query  int     false  "Límite"  default(20)
// @Param        offset           query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.LotListResponse
// @Router       /api/lots [get]
func (h *LotHandler) List(c *fiber.Ctx) error {
	var q dto.LotQuery
	if err := c.QueryParser(&q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros de consulta inválidos"})
	}
	out, err := h.registry.ListLots(c.UserContext(), q)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ListByProduct godoc
// @Summary      Lotes de un producto
// @Tags         lots
// @Security     Bearer
// @Produce      json
// @Param        productId  path  string  true  "ID del producto"
// @Success      200  {object}  dto.LotListResponse
// @Router       /api/lots/product/{productId} [get]
func (h *LotHandler) ListByProduct(c *fiber.Ctx) error {
	q := dto.LotQuery{PageRequest: dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)}}
	out, err := h.registry.ListLotsByProduct(c.UserContext(), c.Params("productId"), q)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener lote
// @Tags         lots
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del lote"
// @Success      200  {object}  dto.LotResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/lots/{id} [get]
func (h *LotHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.registry.GetLot(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Balance godoc
// @Summary      Saldo de un lote (derivado del journal)
// @Tags         lots
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del lote"
// @Success      200  {object}  dto.LotBalanceResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/lots/{id}/balance [get]
func (h *LotHandler) Balance(c *fiber.Ctx) error {
	out, err := h.registry.GetLotBalance(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Transactions godoc
// @Summary      Movimientos de un lote, más reciente primero
// @Tags         lots
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del lote"
// @Success      200  {array}   dto.TransactionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/lots/{id}/transactions [get]
func (h *LotHandler) Transactions(c *fiber.Ctx) error {
	out, err := h.journal.ListByLot(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Statement godoc
// @Summary      Extracto XML del lote con saldo acumulado
// @Description  El header X-Statement-Digest lleva el BLAKE2b-256 de la forma canónica (C14N) del documento.
// @Tags         lots
// @Security     Bearer
// @Produce      xml
// @Param        id   path  string  true  "ID del lote"
// @Success      200  {string}  string
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/lots/{id}/statement [get]
func (h *LotHandler) Statement(c *fiber.Ctx) error {
	out, err := h.statement.Render(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, out.ContentType)
	c.Set("X-Statement-Digest", out.Digest)
	return c.Send(out.Body)
}

// SafetyStock godoc
// @Summary      Lotes por debajo de su nivel de seguridad
// @Tags         lots
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.SafetyStockAlertDTO
// @Router       /api/lots/safety-stock [get]
func (h *LotHandler) SafetyStock(c *fiber.Ctx) error {
	out, err := h.balance.SafetyStockReport(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar ubicación o nivel de seguridad del lote
// @Tags         lots
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del lote"
// @Param        body  body  dto.UpdateLotRequest  true  "Campos a actualizar"
// @Success      200   {object}  dto.LotResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/lots/{id} [put]
func (h *LotHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateLotRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.registry.UpdateLot(c.UserContext(), ActorFrom(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar lote (soft delete, solo con saldo cero)
// @Tags         lots
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del lote"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/lots/{id} [delete]
func (h *LotHandler) Delete(c *fiber.Ctx) error {
	if err := h.registry.DeleteLot(c.UserContext(), ActorFrom(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
