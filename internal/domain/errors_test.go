package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/lot-ledger/internal/domain"
)

func TestVariantesReconocenErrorGeneral(t *testing.T) {
	assert.ErrorIs(t, domain.ErrLotNotFound, domain.ErrNotFound)
	assert.ErrorIs(t, domain.ErrProductNotFound, domain.ErrNotFound)
	assert.ErrorIs(t, domain.ErrInvalidType, domain.ErrInvalidInput)
	assert.ErrorIs(t, domain.ErrInvalidQuantity, domain.ErrInvalidInput)
	assert.ErrorIs(t, domain.ErrLotDeleted, domain.ErrConflict)
	assert.NotErrorIs(t, domain.ErrLotNotFound, domain.ErrProductNotFound)
}

func TestInsufficientStockError_ConservaContexto(t *testing.T) {
	var err error = &domain.InsufficientStockError{
		Available: decimal.NewFromInt(40),
		Requested: decimal.NewFromInt(50),
	}
	wrapped := fmt.Errorf("append: %w", err)

	assert.ErrorIs(t, wrapped, domain.ErrInsufficientStock)

	var typed *domain.InsufficientStockError
	require.True(t, errors.As(wrapped, &typed))
	assert.True(t, typed.Available.Equal(decimal.NewFromInt(40)))
	assert.True(t, typed.Requested.Equal(decimal.NewFromInt(50)))
}

func TestLotNotEmptyError_EsConflicto(t *testing.T) {
	err := &domain.LotNotEmptyError{Remaining: decimal.NewFromInt(50)}
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Contains(t, err.Error(), "50")
}

func TestIntegrityError_EsDataIntegrity(t *testing.T) {
	err := &domain.IntegrityError{LotID: "L-1", Cached: decimal.NewFromInt(5), Journal: decimal.NewFromInt(3), Reason: "contador divergente"}
	assert.ErrorIs(t, err, domain.ErrDataIntegrity)
	assert.NotErrorIs(t, err, domain.ErrConflict)
}
