package contracts

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists contracts in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const contractColumns = `id, sale_id, customer_id, product_id, duration_months, starting_price,
	monthly_amount, started_at, expected_end, status, guarantor, next_of_kin, created_at, updated_at`

func scanContract(row pgx.Row) (*Contract, error) {
	var c Contract
	err := row.Scan(&c.ID, &c.SaleID, &c.CustomerID, &c.ProductID, &c.DurationMonths,
		&c.StartingPrice, &c.MonthlyAmount, &c.StartedAt, &c.ExpectedEnd, &c.Status,
		&c.Guarantor, &c.NextOfKin, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// Get returns one contract.
func (r *Repository) Get(ctx context.Context, id int64) (*Contract, error) {
	return scanContract(r.pool.QueryRow(ctx,
		`SELECT `+contractColumns+` FROM contracts WHERE id = $1`, id))
}

// List returns contracts, optionally filtered by status, newest first.
func (r *Repository) List(ctx context.Context, status *Status, limit, offset int) ([]Contract, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows pgx.Rows
	var err error
	if status != nil {
		rows, err = r.pool.Query(ctx,
			`SELECT `+contractColumns+` FROM contracts WHERE status = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
			string(*status), limit, offset)
	} else {
		rows, err = r.pool.Query(ctx,
			`SELECT `+contractColumns+` FROM contracts ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
			limit, offset)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Contract
	for rows.Next() {
		var c Contract
		if err := rows.Scan(&c.ID, &c.SaleID, &c.CustomerID, &c.ProductID, &c.DurationMonths,
			&c.StartingPrice, &c.MonthlyAmount, &c.StartedAt, &c.ExpectedEnd, &c.Status,
			&c.Guarantor, &c.NextOfKin, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// InsertTx inserts a contract inside an existing transaction. Sale submission
// uses this so the contract commits or rolls back with the sale.
func (r *Repository) InsertTx(ctx context.Context, tx pgx.Tx, c Contract) (int64, error) {
	var id int64
	err := tx.QueryRow(ctx,
		`INSERT INTO contracts (sale_id, customer_id, product_id, duration_months, starting_price,
		 monthly_amount, started_at, expected_end, status, guarantor, next_of_kin, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, now(), now()) RETURNING id`,
		c.SaleID, c.CustomerID, c.ProductID, c.DurationMonths, c.StartingPrice,
		c.MonthlyAmount, c.StartedAt, c.ExpectedEnd, string(c.Status), c.Guarantor, c.NextOfKin).Scan(&id)
	return id, err
}

// UpdateStatus changes the status only when the row still carries the
// expected current status.
func (r *Repository) UpdateStatus(ctx context.Context, id int64, from, to Status) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE contracts SET status = $3, updated_at = now() WHERE id = $1 AND status = $2`,
		id, string(from), string(to))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListOverdue returns ACTIVE contracts past their expected end.
func (r *Repository) ListOverdue(ctx context.Context, asOf time.Time) ([]Contract, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+contractColumns+` FROM contracts WHERE status = $1 AND expected_end < $2`,
		string(StatusActive), asOf)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Contract
	for rows.Next() {
		var c Contract
		if err := rows.Scan(&c.ID, &c.SaleID, &c.CustomerID, &c.ProductID, &c.DurationMonths,
			&c.StartingPrice, &c.MonthlyAmount, &c.StartedAt, &c.ExpectedEnd, &c.Status,
			&c.Guarantor, &c.NextOfKin, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
