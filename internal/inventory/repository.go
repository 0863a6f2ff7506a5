package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists inventory data in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes transactional operations used by the service.
type TxRepository interface {
	InsertMovement(ctx context.Context, mv Movement) (int64, error)
	GetBalanceForUpdate(ctx context.Context, productID int64) (Balance, error)
	UpsertBalance(ctx context.Context, balance Balance) error
	InsertCardEntry(ctx context.Context, card StockCardEntry, productID, movementID int64) error
}

type txRepo struct {
	tx pgx.Tx
}

// WithTx executes the callback inside a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(ctx, &txRepo{tx: tx}); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// GetStockCard lists card entries for one product, newest first.
func (r *Repository) GetStockCard(ctx context.Context, filter StockCardFilter) ([]StockCardEntry, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 200
	}
	from := filter.From
	to := filter.To

	rows, err := r.pool.Query(ctx,
		`SELECT code, movement_type, posted_at, qty_in, qty_out, balance_qty, unit_cost, balance_cost, note
		 FROM stock_card_entries
		 WHERE product_id = $1
		   AND ($2::timestamptz IS NULL OR posted_at >= $2)
		   AND ($3::timestamptz IS NULL OR posted_at <= $3)
		 ORDER BY posted_at DESC, id DESC
		 LIMIT $4`,
		filter.ProductID, nullableTime(from), nullableTime(to), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cards []StockCardEntry
	for rows.Next() {
		var e StockCardEntry
		if err := rows.Scan(&e.Code, &e.Type, &e.PostedAt, &e.QtyIn, &e.QtyOut,
			&e.BalanceQty, &e.UnitCost, &e.BalanceCost, &e.Note); err != nil {
			return nil, err
		}
		cards = append(cards, e)
	}
	return cards, rows.Err()
}

// GetBalance returns the current balance for a product.
func (r *Repository) GetBalance(ctx context.Context, productID int64) (Balance, error) {
	var b Balance
	err := r.pool.QueryRow(ctx,
		`SELECT product_id, qty, avg_cost, updated_at FROM stock_balances WHERE product_id = $1`,
		productID).Scan(&b.ProductID, &b.Qty, &b.AvgCost, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Balance{ProductID: productID}, ErrBalanceNotFound
		}
		return Balance{}, err
	}
	return b, nil
}

// ListBalances returns balances for all stocked products.
func (r *Repository) ListBalances(ctx context.Context) ([]Balance, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT product_id, qty, avg_cost, updated_at FROM stock_balances ORDER BY product_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Balance
	for rows.Next() {
		var b Balance
		if err := rows.Scan(&b.ProductID, &b.Qty, &b.AvgCost, &b.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *txRepo) InsertMovement(ctx context.Context, mv Movement) (int64, error) {
	var id int64
	err := r.tx.QueryRow(ctx,
		`INSERT INTO stock_movements (code, movement_type, product_id, qty, unit_cost, ref_module, ref_id, note, posted_at, created_by, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now()) RETURNING id`,
		mv.Code, string(mv.Type), mv.ProductID, mv.Qty, mv.UnitCost,
		mv.RefModule, mv.RefID, mv.Note, mv.PostedAt, mv.CreatedBy).Scan(&id)
	return id, err
}

func (r *txRepo) GetBalanceForUpdate(ctx context.Context, productID int64) (Balance, error) {
	var b Balance
	err := r.tx.QueryRow(ctx,
		`SELECT product_id, qty, avg_cost, updated_at FROM stock_balances WHERE product_id = $1 FOR UPDATE`,
		productID).Scan(&b.ProductID, &b.Qty, &b.AvgCost, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Balance{ProductID: productID}, ErrBalanceNotFound
		}
		return Balance{}, err
	}
	return b, nil
}

func (r *txRepo) UpsertBalance(ctx context.Context, balance Balance) error {
	_, err := r.tx.Exec(ctx,
		`INSERT INTO stock_balances (product_id, qty, avg_cost, updated_at)
		 VALUES ($1, $2, $3, now())
		 ON CONFLICT (product_id) DO UPDATE SET qty = $2, avg_cost = $3, updated_at = now()`,
		balance.ProductID, balance.Qty, balance.AvgCost)
	return err
}

func (r *txRepo) InsertCardEntry(ctx context.Context, card StockCardEntry, productID, movementID int64) error {
	_, err := r.tx.Exec(ctx,
		`INSERT INTO stock_card_entries (product_id, movement_id, code, movement_type, qty_in, qty_out, balance_qty, unit_cost, balance_cost, posted_at, note)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		productID, movementID, card.Code, string(card.Type), card.QtyIn, card.QtyOut,
		card.BalanceQty, card.UnitCost, card.BalanceCost, card.PostedAt, card.Note)
	return err
}

func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
