package sales

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/suncore-erp/suncore/internal/contracts"
	"github.com/suncore-erp/suncore/internal/devices"
	"github.com/suncore-erp/suncore/internal/platform/db"
)

// Repository abstracts sale persistence.
type Repository interface {
	CreateSale(ctx context.Context, rec SaleRecord) (*Sale, error)
	Get(ctx context.Context, id int64) (*Sale, error)
	List(ctx context.Context, req ListSalesRequest) ([]Sale, int, error)
}

type repository struct {
	pool      *pgxpool.Pool
	devices   *devices.Repository
	contracts *contracts.Repository
}

// NewRepository constructs the PostgreSQL repository. Device assignment and
// contract insertion share the sale transaction.
func NewRepository(pool *pgxpool.Pool, devRepo *devices.Repository, conRepo *contracts.Repository) Repository {
	return &repository{pool: pool, devices: devRepo, contracts: conRepo}
}

// CreateSale persists sale, items, device assignments and contracts atomically.
func (r *repository) CreateSale(ctx context.Context, rec SaleRecord) (*Sale, error) {
	var saleID int64
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		// The code derives from the serial id so concurrent submissions can
		// never mint the same one.
		err := tx.QueryRow(ctx,
			`INSERT INTO sales (code, category, customer_id, total, created_by, created_at)
			 VALUES ('', $1, $2, $3, $4, now()) RETURNING id`,
			string(rec.Sale.Category), rec.Sale.CustomerID, rec.Sale.Total, rec.Sale.CreatedBy).Scan(&saleID)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `UPDATE sales SET code = $1 WHERE id = $2`, saleCode(saleID), saleID); err != nil {
			return err
		}

		for i := range rec.Sale.Items {
			item := rec.Sale.Items[i]
			misc, err := json.Marshal(item.MiscellaneousPrices)
			if err != nil {
				return err
			}
			var itemID int64
			err = tx.QueryRow(ctx,
				`INSERT INTO sale_items (sale_id, product_id, quantity, payment_mode, unit_price, discount,
				 installment_duration, installment_starting_price, devices, miscellaneous_prices)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`,
				saleID, item.ProductID, item.Quantity, string(item.PaymentMode), item.UnitPrice, item.Discount,
				item.InstallmentDuration, item.InstallmentStartingPrice, item.Devices, misc).Scan(&itemID)
			if err != nil {
				return err
			}
			if err := r.devices.MarkAssigned(ctx, tx, item.Devices, saleID); err != nil {
				return err
			}
		}

		for i := range rec.Contracts {
			c := rec.Contracts[i]
			c.SaleID = saleID
			if _, err := r.contracts.InsertTx(ctx, tx, c); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, saleID)
}

// saleCode formats the display code for a persisted sale.
func saleCode(id int64) string {
	return fmt.Sprintf("SALE-%06d", id)
}

const saleColumns = `s.id, s.code, s.category, s.customer_id, c.full_name, s.total, s.created_by, s.created_at`

// Get returns a sale with its items and customer name.
func (r *repository) Get(ctx context.Context, id int64) (*Sale, error) {
	var s Sale
	err := r.pool.QueryRow(ctx,
		`SELECT `+saleColumns+` FROM sales s
		 JOIN customers c ON c.id = s.customer_id
		 WHERE s.id = $1`, id).
		Scan(&s.ID, &s.Code, &s.Category, &s.CustomerID, &s.CustomerName, &s.Total, &s.CreatedBy, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, sale_id, product_id, quantity, payment_mode, unit_price, discount,
		 installment_duration, installment_starting_price, devices, miscellaneous_prices
		 FROM sale_items WHERE sale_id = $1 ORDER BY id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var item SaleItem
		var misc []byte
		if err := rows.Scan(&item.ID, &item.SaleID, &item.ProductID, &item.Quantity, &item.PaymentMode,
			&item.UnitPrice, &item.Discount, &item.InstallmentDuration, &item.InstallmentStartingPrice,
			&item.Devices, &misc); err != nil {
			return nil, err
		}
		if len(misc) > 0 {
			if err := json.Unmarshal(misc, &item.MiscellaneousPrices); err != nil {
				return nil, err
			}
		}
		s.Items = append(s.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &s, nil
}

// List returns sales matching the filters, newest first.
func (r *repository) List(ctx context.Context, req ListSalesRequest) ([]Sale, int, error) {
	var conditions []string
	var args []interface{}
	argPos := 1

	if req.CustomerID != nil {
		conditions = append(conditions, fmt.Sprintf("s.customer_id = $%d", argPos))
		args = append(args, *req.CustomerID)
		argPos++
	}
	if req.PaymentMode != nil {
		conditions = append(conditions, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM sale_items si WHERE si.sale_id = s.id AND si.payment_mode = $%d)", argPos))
		args = append(args, string(*req.PaymentMode))
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
	if err := r.pool.QueryRow(ctx, fmt.Sprintf("SELECT count(*) FROM sales s %s", whereClause), args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 20
	}
	query := fmt.Sprintf(
		`SELECT %s FROM sales s JOIN customers c ON c.id = s.customer_id %s
		 ORDER BY s.created_at DESC LIMIT $%d OFFSET $%d`,
		saleColumns, whereClause, argPos, argPos+1)
	args = append(args, limit, req.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Sale
	for rows.Next() {
		var s Sale
		if err := rows.Scan(&s.ID, &s.Code, &s.Category, &s.CustomerID, &s.CustomerName,
			&s.Total, &s.CreatedBy, &s.CreatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, s)
	}
	return out, total, rows.Err()
}
