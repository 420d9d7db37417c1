package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/lot-ledger/internal/domain"
	"github.com/jhoicas/lot-ledger/internal/domain/entity"
	"github.com/jhoicas/lot-ledger/internal/domain/repository"
)

var _ repository.LotRepository = (*LotRepo)(nil)

const lotColumns = `id, product_id, lot_number, batch_number, heat_number, location,
	safety_stock_level, quantity, is_deleted, deleted_at, created_at, updated_at`

// LotRepo implementación de LotRepository sobre PostgreSQL (usable con pool o tx).
type LotRepo struct {
	q Querier
}

// NewLotRepository construye el adaptador de lotes. Pasar pool o tx (Querier).
func NewLotRepository(q Querier) *LotRepo {
	return &LotRepo{q: q}
}

func scanLot(row pgx.Row) (*entity.Lot, error) {
	var l entity.Lot
	err := row.Scan(
		&l.ID, &l.ProductID, &l.LotNumber, &l.BatchNumber, &l.HeatNumber, &l.Location,
		&l.SafetyStockLevel, &l.Quantity, &l.IsDeleted, &l.DeletedAt, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *LotRepo) Create(ctx context.Context, lot *entity.Lot) error {
	query := `
		INSERT INTO lots (id, product_id, lot_number, batch_number, heat_number, location,
			safety_stock_level, quantity, is_deleted, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, false, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		lot.ID, lot.ProductID, lot.LotNumber, lot.BatchNumber, lot.HeatNumber, lot.Location,
		lot.SafetyStockLevel, lot.Quantity, lot.CreatedAt, lot.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		if isForeignKeyViolation(err) {
			return domain.ErrProductNotFound
		}
		return fmt.Errorf("create lot: %w", err)
	}
	return nil
}

func (r *LotRepo) GetByID(ctx context.Context, id string) (*entity.Lot, error) {
	return r.get(ctx, `SELECT `+lotColumns+` FROM lots WHERE id = $1`, id)
}

// GetForUpdate obtiene el lote y bloquea la fila (SELECT FOR UPDATE) hasta el fin de la tx.
func (r *LotRepo) GetForUpdate(ctx context.Context, id string) (*entity.Lot, error) {
	return r.get(ctx, `SELECT `+lotColumns+` FROM lots WHERE id = $1 FOR UPDATE`, id)
}

func (r *LotRepo) get(ctx context.Context, query, id string) (*entity.Lot, error) {
	if !validID(id) {
		return nil, nil
	}
	lot, err := scanLot(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get lot: %w", err)
	}
	return lot, nil
}

func (r *LotRepo) FindByIdentity(ctx context.Context, key entity.LotIdentity) (*entity.Lot, error) {
	if !validID(key.ProductID) {
		return nil, nil
	}
	query := `SELECT ` + lotColumns + ` FROM lots
		WHERE product_id = $1 AND lot_number = $2 AND batch_number = $3 AND heat_number = $4`
	lot, err := scanLot(r.q.QueryRow(ctx, query, key.ProductID, key.LotNumber, key.BatchNumber, key.HeatNumber))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find lot by identity: %w", err)
	}
	return lot, nil
}

func (r *LotRepo) Update(ctx context.Context, lot *entity.Lot) error {
	query := `UPDATE lots SET location = $2, safety_stock_level = $3, updated_at = $4 WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, lot.ID, lot.Location, lot.SafetyStockLevel, lot.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update lot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrLotNotFound
	}
	return nil
}

func (r *LotRepo) SetQuantity(ctx context.Context, id string, qty decimal.Decimal, at time.Time) error {
	_, err := r.q.Exec(ctx, `UPDATE lots SET quantity = $2, updated_at = $3 WHERE id = $1`, id, qty, at)
	if err != nil {
		if isCheckViolation(err) {
			return &domain.IntegrityError{LotID: id, Journal: qty, Reason: "cantidad negativa rechazada por la DB"}
		}
		return fmt.Errorf("set lot quantity: %w", err)
	}
	return nil
}

func (r *LotRepo) MarkDeleted(ctx context.Context, id string, at time.Time) error {
	query := `UPDATE lots SET is_deleted = true, deleted_at = $2, updated_at = $2 WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, id, at)
	if err != nil {
		return fmt.Errorf("mark lot deleted: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrLotNotFound
	}
	return nil
}

func (r *LotRepo) List(ctx context.Context, f repository.LotFilter) ([]*entity.Lot, int, error) {
	where := `WHERE ($1 OR is_deleted = false) AND ($2 = '' OR product_id::text = $2)`

	var total int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM lots `+where, f.IncludeDeleted, f.ProductID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count lots: %w", err)
	}

	query := `SELECT ` + lotColumns + ` FROM lots ` + where + `
		ORDER BY created_at DESC, id DESC LIMIT $3 OFFSET $4`
	rows, err := r.q.Query(ctx, query, f.IncludeDeleted, f.ProductID, f.Limit, f.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list lots: %w", err)
	}
	defer rows.Close()

	var list []*entity.Lot
	for rows.Next() {
		lot, err := scanLot(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan lot: %w", err)
		}
		list = append(list, lot)
	}
	return list, total, rows.Err()
}
