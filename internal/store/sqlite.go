package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/storefront/checkout/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS orders (
	id                TEXT PRIMARY KEY,
	external_order_id TEXT NOT NULL DEFAULT '',
	product_name      TEXT NOT NULL,
	amount            TEXT NOT NULL,
	currency_code     TEXT NOT NULL,
	status            TEXT NOT NULL,
	created_at        TEXT NOT NULL,
	updated_at        TEXT NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_orders_external_order_id
	ON orders(external_order_id) WHERE external_order_id != '';
`

// SQLite is a Store backed by a SQLite database. Amounts are stored as
// decimal strings so no precision is lost in transit.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at dsn and bootstraps the
// orders schema.
func OpenSQLite(dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite store: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("bootstrap orders schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLite) Close() error { return s.db.Close() }

// FindByExternalID returns the order with the given gateway order id.
func (s *SQLite) FindByExternalID(ctx context.Context, externalID string) (*model.Order, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, external_order_id, product_name, amount, currency_code, status, created_at, updated_at
		FROM orders WHERE external_order_id = ?`, externalID)

	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find order by external id: %w", err)
	}
	return o, nil
}

// Save inserts o when its ID is empty and updates the row otherwise.
func (s *SQLite) Save(ctx context.Context, o *model.Order) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO orders (id, external_order_id, product_name, amount, currency_code, status, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			o.ID, o.ExternalOrderID, o.ProductName, o.Amount.String(), o.CurrencyCode,
			string(o.Status), o.CreatedAt.UTC().Format(time.RFC3339Nano), o.UpdatedAt.UTC().Format(time.RFC3339Nano))
		if err != nil {
			o.ID = ""
			return fmt.Errorf("insert order: %w", err)
		}
		return nil
	}

	_, err := s.db.ExecContext(ctx, `
		UPDATE orders
		SET external_order_id = ?, product_name = ?, amount = ?, currency_code = ?, status = ?, created_at = ?, updated_at = ?
		WHERE id = ?`,
		o.ExternalOrderID, o.ProductName, o.Amount.String(), o.CurrencyCode,
		string(o.Status), o.CreatedAt.UTC().Format(time.RFC3339Nano), o.UpdatedAt.UTC().Format(time.RFC3339Nano), o.ID)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	return nil
}

// List returns all orders, newest first.
func (s *SQLite) List(ctx context.Context) ([]*model.Order, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, external_order_id, product_name, amount, currency_code, status, created_at, updated_at
		FROM orders ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var out []*model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(r rowScanner) (*model.Order, error) {
	var (
		o         model.Order
		amount    string
		status    string
		createdAt string
		updatedAt string
	)
	if err := r.Scan(&o.ID, &o.ExternalOrderID, &o.ProductName, &amount, &o.CurrencyCode, &status, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	if o.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("parse amount %q: %w", amount, err)
	}
	o.Status = model.OrderStatus(status)
	if o.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at %q: %w", createdAt, err)
	}
	if o.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at %q: %w", updatedAt, err)
	}
	return &o, nil
}
