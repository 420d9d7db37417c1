package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/jhoicas/lot-ledger/internal/application/dto"
	"github.com/jhoicas/lot-ledger/internal/domain"
)

// respondError traduce errores de dominio a status HTTP y cuerpo dto.ErrorResponse.
func respondError(c *fiber.Ctx, err error) error {
	var (
		insufficient *domain.InsufficientStockError
		notEmpty     *domain.LotNotEmptyError
		integrity    *domain.IntegrityError
	)
	switch {
	case errors.As(err, &insufficient):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Code:    "INSUFFICIENT_STOCK",
			Message: err.Error(),
			Details: map[string]any{
				"available": insufficient.Available,
				"requested": insufficient.Requested,
			},
		})
	case errors.As(err, &notEmpty):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Code:    "LOT_NOT_EMPTY",
			Message: err.Error(),
			Details: map[string]any{"available_quantity": notEmpty.Remaining},
		})
	case errors.As(err, &integrity):
		log.Error().Err(err).Str("lot_id", integrity.LotID).Str("path", c.Path()).Msg("violación de integridad del ledger")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Code:    "DATA_INTEGRITY",
			Message: "inconsistencia detectada en el ledger del lote",
			Details: map[string]any{"lot_id": integrity.LotID},
		})
	case errors.Is(err, domain.ErrProductInUse):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "PRODUCT_IN_USE", Message: err.Error()})
	case errors.Is(err, domain.ErrLotDeleted):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "LOT_DELETED", Message: err.Error()})
	case errors.Is(err, domain.ErrDuplicate):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: err.Error()})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrDataIntegrity):
		log.Error().Err(err).Str("path", c.Path()).Msg("violación de integridad del ledger")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "DATA_INTEGRITY", Message: "inconsistencia detectada en el ledger"})
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "UPSTREAM_UNAVAILABLE", Message: "catálogo de productos no disponible, intente más tarde"})
	case errors.Is(err, domain.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: err.Error()})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: err.Error()})
	default:
		log.Error().Err(err).Str("path", c.Path()).Str("method", c.Method()).Msg("error interno")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
	}
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}
