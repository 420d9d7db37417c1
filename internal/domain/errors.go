package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio.
var (
	ErrNotFound            = errors.New("recurso no encontrado")
	ErrInvalidInput        = errors.New("entrada inválida")
	ErrDuplicate           = errors.New("recurso duplicado")
	ErrUnauthorized        = errors.New("no autorizado")
	ErrForbidden           = errors.New("acceso denegado")
	ErrConflict            = errors.New("conflicto con el estado actual")
	ErrInsufficientStock   = errors.New("stock insuficiente")
	ErrDataIntegrity       = errors.New("violación de integridad del ledger")
	ErrUpstreamUnavailable = errors.New("dependencia externa no disponible")
)

// Variantes específicas; errors.Is las reconoce como su error general.
var (
	ErrLotNotFound         = fmt.Errorf("lote no encontrado: %w", ErrNotFound)
	ErrProductNotFound     = fmt.Errorf("producto no encontrado: %w", ErrNotFound)
	ErrTransactionNotFound = fmt.Errorf("movimiento no encontrado: %w", ErrNotFound)
	ErrInvalidType         = fmt.Errorf("tipo de movimiento inválido, debe ser IN u OUT: %w", ErrInvalidInput)
	ErrInvalidQuantity     = fmt.Errorf("la cantidad debe ser mayor que cero: %w", ErrInvalidInput)
	ErrLotDeleted          = fmt.Errorf("el lote está eliminado: %w", ErrConflict)
	ErrAmountPrecision     = fmt.Errorf("la cantidad admite como máximo 4 decimales y 14 dígitos enteros: %w", ErrInvalidInput)
	ErrProductInUse        = fmt.Errorf("el producto tiene lotes registrados: %w", ErrConflict)
)

// InsufficientStockError indica un OUT mayor que el saldo disponible del lote.
type InsufficientStockError struct {
	Available decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente: disponible %s, solicitado %s", e.Available.String(), e.Requested.String())
}

// Is permite errors.Is(err, ErrInsufficientStock).
func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

// LotNotEmptyError indica que el lote no puede eliminarse porque aún tiene saldo.
type LotNotEmptyError struct {
	Remaining decimal.Decimal
}

func (e *LotNotEmptyError) Error() string {
	return fmt.Sprintf("no se puede eliminar el lote: quedan %s unidades disponibles", e.Remaining.String())
}

// Is permite errors.Is(err, ErrConflict).
func (e *LotNotEmptyError) Is(target error) bool { return target == ErrConflict }

// IntegrityError describe una divergencia entre el journal y el contador del lote,
// o un saldo derivado negativo. Nunca se corrige automáticamente.
type IntegrityError struct {
	LotID   string
	Cached  decimal.Decimal
	Journal decimal.Decimal
	Reason  string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("integridad del lote %s: %s (contador %s, journal %s)",
		e.LotID, e.Reason, e.Cached.String(), e.Journal.String())
}

// Is permite errors.Is(err, ErrDataIntegrity).
func (e *IntegrityError) Is(target error) bool { return target == ErrDataIntegrity }
