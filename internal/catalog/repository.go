package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound      = errors.New("catalog entry not found")
	ErrAlreadyExists = errors.New("catalog entry already exists")
)

// Repository provides product and category persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func duplicateOr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrAlreadyExists
	}
	return err
}

// ListCategories returns all categories ordered by name.
func (r *Repository) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, created_at, updated_at FROM product_categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CreateCategory inserts a category.
func (r *Repository) CreateCategory(ctx context.Context, name string) (*Category, error) {
	var c Category
	err := r.pool.QueryRow(ctx,
		`INSERT INTO product_categories (name, created_at, updated_at)
		 VALUES ($1, now(), now()) RETURNING id, name, created_at, updated_at`, name).
		Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, duplicateOr(err)
	}
	return &c, nil
}

// UpdateCategory renames a category.
func (r *Repository) UpdateCategory(ctx context.Context, id int64, name string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE product_categories SET name = $2, updated_at = now() WHERE id = $1`, id, name)
	if err != nil {
		return duplicateOr(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteCategory removes a category without products.
func (r *Repository) DeleteCategory(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM product_categories WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const productColumns = `id, name, sku, category_id, unit_price, currency, is_active, created_at, updated_at`

// GetProduct fetches one product.
func (r *Repository) GetProduct(ctx context.Context, id int64) (*Product, error) {
	var p Product
	err := r.pool.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id).
		Scan(&p.ID, &p.Name, &p.SKU, &p.CategoryID, &p.UnitPrice, &p.Currency,
			&p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// ListProducts returns products matching the filters.
func (r *Repository) ListProducts(ctx context.Context, req ListProductsRequest) ([]Product, int, error) {
	var conditions []string
	var args []interface{}
	argPos := 1

	if req.CategoryID != nil {
		conditions = append(conditions, fmt.Sprintf("category_id = $%d", argPos))
		args = append(args, *req.CategoryID)
		argPos++
	}
	if req.ActiveOnly {
		conditions = append(conditions, "is_active = true")
	}
	if req.Search != nil && *req.Search != "" {
		pattern := "%" + *req.Search + "%"
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR sku ILIKE $%d)", argPos, argPos))
		args = append(args, pattern)
		argPos++
	}

	whereClause := ""
	for i, c := range conditions {
		if i == 0 {
			whereClause = "WHERE " + c
		} else {
			whereClause += " AND " + c
		}
	}

	var total int
	if err := r.pool.QueryRow(ctx, fmt.Sprintf("SELECT count(*) FROM products %s", whereClause), args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM products %s ORDER BY name LIMIT $%d OFFSET $%d`,
		productColumns, whereClause, argPos, argPos+1)
	args = append(args, req.Limit, req.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.SKU, &p.CategoryID, &p.UnitPrice, &p.Currency,
			&p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

// CreateProduct inserts a product and returns its id.
func (r *Repository) CreateProduct(ctx context.Context, in ProductInput) (int64, error) {
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO products (name, sku, category_id, unit_price, currency, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, now(), now()) RETURNING id`,
		in.Name, in.SKU, in.CategoryID, in.UnitPrice, in.Currency, active).Scan(&id)
	if err != nil {
		return 0, duplicateOr(err)
	}
	return id, nil
}

// UpdateProduct replaces product fields.
func (r *Repository) UpdateProduct(ctx context.Context, id int64, in ProductInput) error {
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	tag, err := r.pool.Exec(ctx,
		`UPDATE products SET name = $2, sku = $3, category_id = $4, unit_price = $5,
		 currency = $6, is_active = $7, updated_at = now() WHERE id = $1`,
		id, in.Name, in.SKU, in.CategoryID, in.UnitPrice, in.Currency, active)
	if err != nil {
		return duplicateOr(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
