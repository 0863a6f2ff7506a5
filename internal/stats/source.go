package stats

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SQLSource counts rows straight from PostgreSQL.
type SQLSource struct {
	pool *pgxpool.Pool
}

// NewSQLSource constructs a SQLSource.
func NewSQLSource(pool *pgxpool.Pool) *SQLSource {
	return &SQLSource{pool: pool}
}

func (s *SQLSource) count(ctx context.Context, query string) (int64, error) {
	var n int64
	err := s.pool.QueryRow(ctx, query).Scan(&n)
	return n, err
}

func (s *SQLSource) CountUsers(ctx context.Context) (int64, error) {
	return s.count(ctx, `SELECT count(*) FROM users`)
}

func (s *SQLSource) CountCustomers(ctx context.Context) (int64, error) {
	return s.count(ctx, `SELECT count(*) FROM customers`)
}

func (s *SQLSource) CountSales(ctx context.Context) (int64, error) {
	return s.count(ctx, `SELECT count(*) FROM sales`)
}
