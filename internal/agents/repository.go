package agents

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/suncore-erp/suncore/internal/platform/db"
)

var (
	ErrNotFound      = errors.New("agent not found")
	ErrAlreadyExists = errors.New("agent already exists")
)

// Repository provides agent persistence.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	Get(ctx context.Context, id int64) (*Agent, error)
	List(ctx context.Context, req ListAgentsRequest) ([]Agent, int, error)
	Create(ctx context.Context, agent Agent) (int64, error)
	Update(ctx context.Context, id int64, updates map[string]interface{}) error
	GenerateCode(ctx context.Context) (string, error)
}

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

type repository struct {
	db   dbtx
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

const agentColumns = `id, code, full_name, phone, email, region, is_active, created_by, created_at, updated_at`

func (r *repository) Get(ctx context.Context, id int64) (*Agent, error) {
	var a Agent
	err := r.db.QueryRow(ctx,
		`SELECT `+agentColumns+` FROM agents WHERE id = $1`, id).
		Scan(&a.ID, &a.Code, &a.FullName, &a.Phone, &a.Email, &a.Region,
			&a.IsActive, &a.CreatedBy, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *repository) List(ctx context.Context, req ListAgentsRequest) ([]Agent, int, error) {
	var conditions []string
	var args []interface{}
	argPos := 1

	if req.IsActive != nil {
		conditions = append(conditions, fmt.Sprintf("is_active = $%d", argPos))
		args = append(args, *req.IsActive)
		argPos++
	}
	if req.Region != nil && *req.Region != "" {
		conditions = append(conditions, fmt.Sprintf("region = $%d", argPos))
		args = append(args, *req.Region)
		argPos++
	}
	if req.Search != nil && *req.Search != "" {
		pattern := "%" + *req.Search + "%"
		conditions = append(conditions, fmt.Sprintf("(code ILIKE $%d OR full_name ILIKE $%d OR phone ILIKE $%d)", argPos, argPos, argPos))
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
	if err := r.db.QueryRow(ctx, fmt.Sprintf("SELECT count(*) FROM agents %s", whereClause), args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM agents %s ORDER BY code LIMIT $%d OFFSET $%d`,
		agentColumns, whereClause, argPos, argPos+1)
	args = append(args, req.Limit, req.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Agent
	for rows.Next() {
		var a Agent
		if err := rows.Scan(&a.ID, &a.Code, &a.FullName, &a.Phone, &a.Email, &a.Region,
			&a.IsActive, &a.CreatedBy, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, a)
	}
	return out, total, rows.Err()
}

func (r *repository) Create(ctx context.Context, a Agent) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx,
		`INSERT INTO agents (code, full_name, phone, email, region, is_active, created_by, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now()) RETURNING id`,
		a.Code, a.FullName, a.Phone, a.Email, a.Region, a.IsActive, a.CreatedBy).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, ErrAlreadyExists
		}
		return 0, err
	}
	return id, nil
}

func (r *repository) Update(ctx context.Context, id int64, updates map[string]interface{}) error {
	query := "UPDATE agents SET updated_at = now()"
	var args []interface{}
	argPos := 1

	for _, col := range []string{"full_name", "phone", "email", "region", "is_active"} {
		if v, ok := updates[col]; ok {
			query += fmt.Sprintf(", %s = $%d", col, argPos)
			args = append(args, v)
			argPos++
		}
	}

	query += fmt.Sprintf(" WHERE id = $%d", argPos)
	args = append(args, id)

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrAlreadyExists
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) GenerateCode(ctx context.Context) (string, error) {
	var count int64
	if err := r.db.QueryRow(ctx, "SELECT count(*) FROM agents").Scan(&count); err != nil {
		return "", err
	}
	return fmt.Sprintf("AGT-%05d", count+1), nil
}
