package usecase_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/lot-ledger/internal/application/dto"
	"github.com/jhoicas/lot-ledger/internal/application/usecase"
	"github.com/jhoicas/lot-ledger/internal/domain"
	"github.com/jhoicas/lot-ledger/internal/domain/entity"
	"github.com/jhoicas/lot-ledger/internal/infrastructure/memory"
)

var admin = entity.Actor{UserID: "u-1", Email: "admin@plant.local", Role: "admin", SourceAddress: "10.0.0.1"}

type recorder struct {
	mu     sync.Mutex
	events []entity.AuditEvent
}

func (r *recorder) Emit(e entity.AuditEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Action
	}
	return out
}

type invalidations struct{ ids []string }

func (i *invalidations) Invalidate(_ context.Context, id string) { i.ids = append(i.ids, id) }

func newProductUseCase() (*usecase.ProductUseCase, *recorder, *invalidations) {
	rec, inv := &recorder{}, &invalidations{}
	return usecase.NewProductUseCase(memory.NewProductRepository(memory.NewStore()), inv, rec), rec, inv
}

func rodRequest() dto.CreateProductRequest {
	return dto.CreateProductRequest{
		Name: " Steel Rod 12mm ", MaterialGrade: "Fe500", Type: "TMT", Unit: "kg",
		PricePerUnit: decimal.NewFromInt(65), WeightPerUnit: decimal.RequireFromString("0.888"),
	}
}

func TestProductUseCase_Create(t *testing.T) {
	uc, rec, _ := newProductUseCase()
	ctx := context.Background()

	res, err := uc.Create(ctx, admin, rodRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, res.ID)
	assert.Equal(t, "Steel Rod 12mm", res.Name)
	assert.Equal(t, entity.UnitKG, res.Unit)

	_, err = uc.Create(ctx, admin, rodRequest())
	assert.ErrorIs(t, err, domain.ErrDuplicate)
	assert.Equal(t, []string{entity.ActionProductCreated, entity.ActionProductCreateDuplicate}, rec.actions())

	got, err := uc.GetByID(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, res.ID, got.ID)

	_, err = uc.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestProductUseCase_CreateValidation(t *testing.T) {
	uc, rec, _ := newProductUseCase()
	ctx := context.Background()

	cases := map[string]func(*dto.CreateProductRequest){
		"nombre vacío":         func(r *dto.CreateProductRequest) { r.Name = "  " },
		"caracteres inválidos": func(r *dto.CreateProductRequest) { r.MaterialGrade = "Fe500;DROP" },
		"unidad desconocida":   func(r *dto.CreateProductRequest) { r.Unit = "GALLON" },
		"precio bajo":          func(r *dto.CreateProductRequest) { r.PricePerUnit = decimal.RequireFromString("0.5") },
		"precio alto":          func(r *dto.CreateProductRequest) { r.PricePerUnit = decimal.NewFromInt(1_000_001) },
		"peso negativo":        func(r *dto.CreateProductRequest) { r.WeightPerUnit = decimal.NewFromInt(-1) },
		"precio 5 decimales":   func(r *dto.CreateProductRequest) { r.PricePerUnit = decimal.RequireFromString("65.00001") },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			req := rodRequest()
			mutate(&req)
			_, err := uc.Create(ctx, admin, req)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
	require.Len(t, rec.actions(), len(cases), "cada intento inválido queda auditado")
	for _, action := range rec.actions() {
		assert.Equal(t, entity.ActionProductCreateInvalid, action)
	}
}

func TestProductUseCase_UpdateInvalidatesCache(t *testing.T) {
	uc, rec, inv := newProductUseCase()
	ctx := context.Background()

	res, err := uc.Create(ctx, admin, rodRequest())
	require.NoError(t, err)

	price := decimal.NewFromInt(70)
	updated, err := uc.Update(ctx, admin, res.ID, dto.UpdateProductRequest{PricePerUnit: &price})
	require.NoError(t, err)
	assert.True(t, updated.PricePerUnit.Equal(price))
	assert.Equal(t, []string{res.ID}, inv.ids)
	assert.Equal(t, entity.ActionProductUpdated, rec.actions()[1])

	bad := "GALLON"
	_, err = uc.Update(ctx, admin, res.ID, dto.UpdateProductRequest{Unit: &bad})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Len(t, inv.ids, 1)

	_, err = uc.Update(ctx, admin, "missing", dto.UpdateProductRequest{PricePerUnit: &price})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
	assert.Equal(t, []string{
		entity.ActionProductCreated,
		entity.ActionProductUpdated,
		entity.ActionProductUpdateInvalid,
		entity.ActionProductUpdateNotFound,
	}, rec.actions())
}

func TestProductUseCase_Delete(t *testing.T) {
	store := memory.NewStore()
	rec, inv := &recorder{}, &invalidations{}
	uc := usecase.NewProductUseCase(memory.NewProductRepository(store), inv, rec)
	ctx := context.Background()

	stocked, err := uc.Create(ctx, admin, rodRequest())
	require.NoError(t, err)
	plain := rodRequest()
	plain.Name = "Flat Bar"
	free, err := uc.Create(ctx, admin, plain)
	require.NoError(t, err)

	now := time.Now().UTC()
	require.NoError(t, memory.NewLotRepository(store).Create(ctx, &entity.Lot{
		ID: "lot-1", ProductID: stocked.ID, LotNumber: "L-1", BatchNumber: "B", HeatNumber: "H",
		Location: "Rack", Quantity: decimal.Zero, CreatedAt: now, UpdatedAt: now,
	}))

	err = uc.Delete(ctx, admin, stocked.ID)
	assert.ErrorIs(t, err, domain.ErrProductInUse)
	assert.ErrorIs(t, err, domain.ErrConflict)

	require.NoError(t, uc.Delete(ctx, admin, free.ID))
	assert.Equal(t, []string{free.ID}, inv.ids)
	_, err = uc.GetByID(ctx, free.ID)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	assert.ErrorIs(t, uc.Delete(ctx, admin, free.ID), domain.ErrProductNotFound)

	assert.Equal(t, []string{
		entity.ActionProductCreated,
		entity.ActionProductCreated,
		entity.ActionProductDeleteBlocked,
		entity.ActionProductDeleted,
		entity.ActionProductDeleteNotFound,
	}, rec.actions())
}

func TestProductUseCase_ListPaginates(t *testing.T) {
	uc, _, _ := newProductUseCase()
	ctx := context.Background()

	for _, name := range []string{"Rod A", "Rod B", "Rod C"} {
		req := rodRequest()
		req.Name = name
		_, err := uc.Create(ctx, admin, req)
		require.NoError(t, err)
	}

	list, err := uc.List(ctx, dto.PageRequest{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, list.Items, 2)
	assert.Equal(t, 3, list.Page.Total)

	list, err = uc.List(ctx, dto.PageRequest{Limit: 500, Offset: -3})
	require.NoError(t, err)
	assert.Equal(t, 100, list.Page.Limit)
	assert.Equal(t, 0, list.Page.Offset)
	assert.Len(t, list.Items, 3)
}
