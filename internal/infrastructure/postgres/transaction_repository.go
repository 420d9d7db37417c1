package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/lot-ledger/internal/domain"
	"github.com/jhoicas/lot-ledger/internal/domain/entity"
	"github.com/jhoicas/lot-ledger/internal/domain/repository"
)

var _ repository.TransactionRepository = (*TransactionRepo)(nil)

const transactionColumns = `id, lot_id, type, quantity, remarks, created_by, created_at`

// TransactionRepo journal sobre PostgreSQL. No existe ningún UPDATE ni DELETE sobre lot_transactions.
type TransactionRepo struct {
	q Querier
}

// NewTransactionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTransactionRepository(q Querier) *TransactionRepo {
	return &TransactionRepo{q: q}
}

func scanTransaction(row pgx.Row, extra ...any) (*entity.Transaction, error) {
	var t entity.Transaction
	dest := append([]any{&t.ID, &t.LotID, &t.Type, &t.Quantity, &t.Remarks, &t.CreatedBy, &t.CreatedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &t, nil
}

// Create asienta el movimiento. created_at y seq los asigna la base de datos; CreatedAt se
// actualiza con el valor persistido.
func (r *TransactionRepo) Create(ctx context.Context, t *entity.Transaction) error {
	query := `
		INSERT INTO lot_transactions (id, lot_id, type, quantity, remarks, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`
	err := r.q.QueryRow(ctx, query, t.ID, t.LotID, t.Type, t.Quantity, t.Remarks, t.CreatedBy).Scan(&t.CreatedAt)
	if err != nil {
		if isCheckViolation(err) {
			return fmt.Errorf("%w: movimiento rechazado por la base de datos", domain.ErrInvalidInput)
		}
		return fmt.Errorf("create transaction: %w", err)
	}
	return nil
}

func (r *TransactionRepo) GetByID(ctx context.Context, id string) (*entity.Transaction, error) {
	if !validID(id) {
		return nil, nil
	}
	t, err := scanTransaction(r.q.QueryRow(ctx, `SELECT `+transactionColumns+` FROM lot_transactions WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

func (r *TransactionRepo) ListByLot(ctx context.Context, lotID string) ([]*entity.Transaction, error) {
	if !validID(lotID) {
		return []*entity.Transaction{}, nil
	}
	query := `SELECT ` + transactionColumns + ` FROM lot_transactions
		WHERE lot_id = $1 ORDER BY seq DESC`
	rows, err := r.q.Query(ctx, query, lotID)
	if err != nil {
		return nil, fmt.Errorf("list transactions by lot: %w", err)
	}
	defer rows.Close()

	list := make([]*entity.Transaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

func (r *TransactionRepo) List(ctx context.Context, limit, offset int) ([]repository.TransactionWithLot, int, error) {
	var total int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM lot_transactions`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}

	query := `
		SELECT t.id, t.lot_id, t.type, t.quantity, t.remarks, t.created_by, t.created_at,
			l.lot_number, l.product_id
		FROM lot_transactions t
		JOIN lots l ON l.id = t.lot_id
		ORDER BY t.seq DESC
		LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	list := make([]repository.TransactionWithLot, 0)
	for rows.Next() {
		var item repository.TransactionWithLot
		t, err := scanTransaction(rows, &item.LotNumber, &item.ProductID)
		if err != nil {
			return nil, 0, fmt.Errorf("scan transaction: %w", err)
		}
		item.Transaction = *t
		list = append(list, item)
	}
	return list, total, rows.Err()
}

const totalsSelect = `
	COALESCE(SUM(quantity) FILTER (WHERE type = 'IN'), 0),
	COALESCE(SUM(quantity) FILTER (WHERE type = 'OUT'), 0)`

func (r *TransactionRepo) Totals(ctx context.Context, lotID string) (entity.LotTotals, error) {
	totals := entity.LotTotals{In: decimal.Zero, Out: decimal.Zero}
	if !validID(lotID) {
		return totals, nil
	}
	query := `SELECT ` + totalsSelect + ` FROM lot_transactions WHERE lot_id = $1`
	if err := r.q.QueryRow(ctx, query, lotID).Scan(&totals.In, &totals.Out); err != nil {
		return totals, fmt.Errorf("lot totals: %w", err)
	}
	return totals, nil
}

func (r *TransactionRepo) TotalsByLots(ctx context.Context, lotIDs []string) (map[string]entity.LotTotals, error) {
	out := make(map[string]entity.LotTotals, len(lotIDs))
	for _, id := range lotIDs {
		out[id] = entity.LotTotals{In: decimal.Zero, Out: decimal.Zero}
	}
	ids := parseIDs(lotIDs)
	if len(ids) == 0 {
		return out, nil
	}

	query := `SELECT lot_id, ` + totalsSelect + ` FROM lot_transactions
		WHERE lot_id = ANY($1) GROUP BY lot_id`
	rows, err := r.q.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("lot totals batch: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			lotID  string
			totals entity.LotTotals
		)
		if err := rows.Scan(&lotID, &totals.In, &totals.Out); err != nil {
			return nil, fmt.Errorf("scan lot totals: %w", err)
		}
		out[lotID] = totals
	}
	return out, rows.Err()
}
