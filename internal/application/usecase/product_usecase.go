package usecase

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/lot-ledger/internal/application/audit"
	"github.com/jhoicas/lot-ledger/internal/application/dto"
	"github.com/jhoicas/lot-ledger/internal/domain"
	"github.com/jhoicas/lot-ledger/internal/domain/entity"
	"github.com/jhoicas/lot-ledger/internal/domain/repository"
)

var (
	namePattern = regexp.MustCompile(`^[A-Za-z0-9\s\-/.]+$`)
	minPrice    = decimal.NewFromInt(1)
	maxPrice    = decimal.NewFromInt(1_000_000)
)

// CatalogInvalidator descarta copias en caché de un producto tras modificarlo.
type CatalogInvalidator interface {
	Invalidate(ctx context.Context, productID string)
}

// EventEmitter publica eventos de auditoría sin bloquear.
type EventEmitter interface {
	Emit(event entity.AuditEvent)
}

// ProductUseCase gestión mínima del catálogo. Un producto con lotes no se puede borrar.
type ProductUseCase struct {
	repo   repository.ProductRepository
	cache  CatalogInvalidator
	events EventEmitter
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository, cache CatalogInvalidator, events EventEmitter) *ProductUseCase {
	return &ProductUseCase{repo: repo, cache: cache, events: events}
}

// Create crea un producto. (name, material_grade, type) debe ser único.
func (uc *ProductUseCase) Create(ctx context.Context, actor entity.Actor, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	now := time.Now().UTC()
	product := &entity.Product{
		ID:            uuid.New().String(),
		Name:          strings.TrimSpace(in.Name),
		MaterialGrade: strings.TrimSpace(in.MaterialGrade),
		Type:          strings.TrimSpace(in.Type),
		Unit:          strings.ToUpper(strings.TrimSpace(in.Unit)),
		PricePerUnit:  in.PricePerUnit,
		WeightPerUnit: in.WeightPerUnit,
		Brand:         strings.TrimSpace(in.Brand),
		Description:   strings.TrimSpace(in.Description),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	details := map[string]any{"name": product.Name, "material_grade": product.MaterialGrade, "type": product.Type}
	if err := validateProduct(product); err != nil {
		return nil, uc.fail(actor, entity.ActionProductCreateInvalid, "", details, err)
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			uc.events.Emit(audit.NewEvent(actor, entity.ActionProductCreateDuplicate, entity.EntityTypeProduct, "", details))
			return nil, fmt.Errorf("%w: ya existe un producto con ese nombre, grado y tipo", domain.ErrDuplicate)
		}
		return nil, err
	}
	uc.events.Emit(audit.NewEvent(actor, entity.ActionProductCreated, entity.EntityTypeProduct, product.ID, details))
	return toProductResponse(product), nil
}

// GetByID obtiene un producto por ID.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}
	return toProductResponse(product), nil
}

// Update actualiza los campos presentes y descarta la copia en caché.
func (uc *ProductUseCase) Update(ctx context.Context, actor entity.Actor, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if product == nil {
		return nil, uc.fail(actor, entity.ActionProductUpdateNotFound, id, nil, domain.ErrProductNotFound)
	}
	changes := map[string]any{}
	if in.Name != nil {
		product.Name = strings.TrimSpace(*in.Name)
		changes["name"] = product.Name
	}
	if in.MaterialGrade != nil {
		product.MaterialGrade = strings.TrimSpace(*in.MaterialGrade)
		changes["material_grade"] = product.MaterialGrade
	}
	if in.Type != nil {
		product.Type = strings.TrimSpace(*in.Type)
		changes["type"] = product.Type
	}
	if in.Unit != nil {
		product.Unit = strings.ToUpper(strings.TrimSpace(*in.Unit))
		changes["unit"] = product.Unit
	}
	if in.PricePerUnit != nil {
		product.PricePerUnit = *in.PricePerUnit
		changes["price_per_unit"] = product.PricePerUnit.String()
	}
	if in.WeightPerUnit != nil {
		product.WeightPerUnit = *in.WeightPerUnit
		changes["weight_per_unit"] = product.WeightPerUnit.String()
	}
	if in.Brand != nil {
		product.Brand = strings.TrimSpace(*in.Brand)
	}
	if in.Description != nil {
		product.Description = strings.TrimSpace(*in.Description)
	}
	if err := validateProduct(product); err != nil {
		return nil, uc.fail(actor, entity.ActionProductUpdateInvalid, id, changes, err)
	}
	product.UpdatedAt = time.Now().UTC()
	if err := uc.repo.Update(ctx, product); err != nil {
		switch {
		case errors.Is(err, domain.ErrDuplicate):
			return nil, uc.fail(actor, entity.ActionProductUpdateDuplicate, id, changes,
				fmt.Errorf("%w: ya existe un producto con ese nombre, grado y tipo", domain.ErrDuplicate))
		case errors.Is(err, domain.ErrProductNotFound):
			return nil, uc.fail(actor, entity.ActionProductUpdateNotFound, id, changes, err)
		}
		return nil, err
	}
	uc.cache.Invalidate(ctx, product.ID)
	uc.events.Emit(audit.NewEvent(actor, entity.ActionProductUpdated, entity.EntityTypeProduct, product.ID, changes))
	return toProductResponse(product), nil
}

// Delete elimina un producto sin lotes. Con lotes (incluidos los eliminados) devuelve ErrProductInUse.
func (uc *ProductUseCase) Delete(ctx context.Context, actor entity.Actor, id string) error {
	err := uc.repo.Delete(ctx, id)
	switch {
	case errors.Is(err, domain.ErrProductNotFound):
		uc.events.Emit(audit.NewEvent(actor, entity.ActionProductDeleteNotFound, entity.EntityTypeProduct, id, nil))
		return err
	case errors.Is(err, domain.ErrProductInUse):
		uc.events.Emit(audit.NewEvent(actor, entity.ActionProductDeleteBlocked, entity.EntityTypeProduct, id, nil))
		return err
	case err != nil:
		return err
	}
	uc.cache.Invalidate(ctx, id)
	uc.events.Emit(audit.NewEvent(actor, entity.ActionProductDeleted, entity.EntityTypeProduct, id, nil))
	return nil
}

// List lista productos con paginación, más recientes primero.
func (uc *ProductUseCase) List(ctx context.Context, page dto.PageRequest) (*dto.ProductListResponse, error) {
	page.DefaultPage()
	list, total, err := uc.repo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}, nil
}

func (uc *ProductUseCase) fail(actor entity.Actor, action, id string, details map[string]any, err error) error {
	if details == nil {
		details = map[string]any{}
	}
	details["error"] = err.Error()
	uc.events.Emit(audit.NewEvent(actor, action, entity.EntityTypeProduct, id, details))
	return err
}

func validateProduct(p *entity.Product) error {
	for field, v := range map[string]string{"name": p.Name, "material_grade": p.MaterialGrade, "type": p.Type} {
		if v == "" || !namePattern.MatchString(v) {
			return fmt.Errorf("%w: %s vacío o con caracteres no permitidos", domain.ErrInvalidInput, field)
		}
	}
	if _, ok := entity.ValidUnits[p.Unit]; !ok {
		return fmt.Errorf("%w: unidad %q no soportada", domain.ErrInvalidInput, p.Unit)
	}
	if p.PricePerUnit.LessThan(minPrice) || p.PricePerUnit.GreaterThan(maxPrice) {
		return fmt.Errorf("%w: price_per_unit debe estar entre 1 y 1000000", domain.ErrInvalidInput)
	}
	if p.WeightPerUnit.IsNegative() {
		return fmt.Errorf("%w: weight_per_unit no puede ser negativo", domain.ErrInvalidInput)
	}
	if !entity.FitsAmount(p.PricePerUnit) || !entity.FitsAmount(p.WeightPerUnit) {
		return domain.ErrAmountPrecision
	}
	return nil
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:            p.ID,
		Name:          p.Name,
		MaterialGrade: p.MaterialGrade,
		Type:          p.Type,
		Unit:          p.Unit,
		PricePerUnit:  p.PricePerUnit,
		WeightPerUnit: p.WeightPerUnit,
		Brand:         p.Brand,
		Description:   p.Description,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}
