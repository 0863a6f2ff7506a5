package devices

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists devices and tokens in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const deviceColumns = `id, serial, product_id, state, sale_id, created_at, updated_at`

func scanDevice(row pgx.Row) (*Device, error) {
	var d Device
	err := row.Scan(&d.ID, &d.Serial, &d.ProductID, &d.State, &d.SaleID, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

// Get returns a device by id.
func (r *Repository) Get(ctx context.Context, id int64) (*Device, error) {
	return scanDevice(r.pool.QueryRow(ctx,
		`SELECT `+deviceColumns+` FROM devices WHERE id = $1`, id))
}

// GetBySerial returns a device by serial number.
func (r *Repository) GetBySerial(ctx context.Context, serial string) (*Device, error) {
	return scanDevice(r.pool.QueryRow(ctx,
		`SELECT `+deviceColumns+` FROM devices WHERE serial = $1`, serial))
}

// List returns devices, optionally filtered by state.
func (r *Repository) List(ctx context.Context, state *State, limit, offset int) ([]Device, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows pgx.Rows
	var err error
	if state != nil {
		rows, err = r.pool.Query(ctx,
			`SELECT `+deviceColumns+` FROM devices WHERE state = $1 ORDER BY serial LIMIT $2 OFFSET $3`,
			string(*state), limit, offset)
	} else {
		rows, err = r.pool.Query(ctx,
			`SELECT `+deviceColumns+` FROM devices ORDER BY serial LIMIT $1 OFFSET $2`,
			limit, offset)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Device
	for rows.Next() {
		var d Device
		if err := rows.Scan(&d.ID, &d.Serial, &d.ProductID, &d.State, &d.SaleID, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Register inserts a new device in AVAILABLE state.
func (r *Repository) Register(ctx context.Context, serial string, productID int64) (*Device, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO devices (serial, product_id, state, created_at, updated_at)
		 VALUES ($1, $2, $3, now(), now()) RETURNING id`,
		serial, productID, string(StateAvailable)).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrAlreadyExists
		}
		return nil, err
	}
	return r.Get(ctx, id)
}

// MarkAssigned transitions AVAILABLE devices to ASSIGNED for a sale.
// It fails when any serial is missing or not available.
func (r *Repository) MarkAssigned(ctx context.Context, tx pgx.Tx, serials []string, saleID int64) error {
	for _, serial := range serials {
		tag, err := tx.Exec(ctx,
			`UPDATE devices SET state = $2, sale_id = $3, updated_at = now()
			 WHERE serial = $1 AND state = $4`,
			serial, string(StateAssigned), saleID, string(StateAvailable))
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotAvailable
		}
	}
	return nil
}

// SetState forces a device state, used for lock/unlock flows.
func (r *Repository) SetState(ctx context.Context, id int64, state State) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE devices SET state = $2, updated_at = now() WHERE id = $1`, id, string(state))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const tokenColumns = `id, device_id, code, valid_from, valid_until, revoked, issued_by, created_at`

// InsertToken stores an issued token.
func (r *Repository) InsertToken(ctx context.Context, t Token) (*Token, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO device_tokens (device_id, code, valid_from, valid_until, revoked, issued_by, created_at)
		 VALUES ($1, $2, $3, $4, false, $5, now()) RETURNING id`,
		t.DeviceID, t.Code, t.ValidFrom, t.ValidUntil, t.IssuedBy).Scan(&id)
	if err != nil {
		return nil, err
	}
	return r.GetToken(ctx, id)
}

// GetToken fetches one token.
func (r *Repository) GetToken(ctx context.Context, id int64) (*Token, error) {
	var t Token
	err := r.pool.QueryRow(ctx,
		`SELECT `+tokenColumns+` FROM device_tokens WHERE id = $1`, id).
		Scan(&t.ID, &t.DeviceID, &t.Code, &t.ValidFrom, &t.ValidUntil, &t.Revoked, &t.IssuedBy, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// ListTokens returns tokens for a device, newest first.
func (r *Repository) ListTokens(ctx context.Context, deviceID int64) ([]Token, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+tokenColumns+` FROM device_tokens WHERE device_id = $1 ORDER BY created_at DESC`, deviceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Token
	for rows.Next() {
		var t Token
		if err := rows.Scan(&t.ID, &t.DeviceID, &t.Code, &t.ValidFrom, &t.ValidUntil, &t.Revoked, &t.IssuedBy, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// RevokeToken marks a token revoked.
func (r *Repository) RevokeToken(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE device_tokens SET revoked = true WHERE id = $1 AND revoked = false`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// RevokeExpired revokes tokens whose window ended before the cutoff and
// returns how many rows changed. The expiry sweep job calls this.
func (r *Repository) RevokeExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE device_tokens SET revoked = true WHERE revoked = false AND valid_until < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
