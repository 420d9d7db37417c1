package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/lot-ledger/internal/application/dto"
	"github.com/jhoicas/lot-ledger/internal/application/ledger"
)

// TransactionHandler maneja el journal de movimientos.
type TransactionHandler struct {
	journal *ledger.Journal
}

// NewTransactionHandler construye el handler.
func NewTransactionHandler(journal *ledger.Journal) *TransactionHandler {
	return &TransactionHandler{journal: journal}
}

// Append godoc
// @Summary      Registrar movimiento IN/OUT sobre un lote
// @Description  OUT mayor que el saldo disponible responde 409 con details.available y details.requested.
// @Tags         transactions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AppendTransactionRequest  true  "Movimiento"
// @Success      201   {object}  dto.AppendTransactionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/transactions [post]
func (h *TransactionHandler) Append(c *fiber.Ctx) error {
	var in dto.AppendTransactionRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.journal.Append(c.UserContext(), ActorFrom(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar movimientos, más reciente primero
// @Tags         transactions
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite"  default(20)
// @Param        offset  query  int  false  "Offset"  default(0)
// @Success      200  {object}  dto.TransactionListResponse
// @Router       /api/transactions [get]
func (h *TransactionHandler) List(c *fiber.Ctx) error {
	page := dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)}
	out, err := h.journal.ListTransactions(c.UserContext(), page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ListByLot godoc
// @Summary      Movimientos de un lote
// @Tags         transactions
// @Security     Bearer
// @Produce      json
// @Param        lotId  path  string  true  "ID del lote"
// @Success      200  {array}   dto.TransactionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/transactions/lot/{lotId} [get]
func (h *TransactionHandler) ListByLot(c *fiber.Ctx) error {
	out, err := h.journal.ListByLot(c.UserContext(), c.Params("lotId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener movimiento
// @Tags         transactions
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del movimiento"
// @Success      200  {object}  dto.TransactionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/transactions/{id} [get]
func (h *TransactionHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.journal.GetTransaction(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
