package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/example/storefront/pkg/config"
	"github.com/example/storefront/pkg/order"
)

// PostgresOrderStore keeps orders in Postgres through database/sql.
type PostgresOrderStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewPostgresOrderStore connects, pings and creates the order tables.
func NewPostgresOrderStore(cfg *config.PostgresConfig) (*PostgresOrderStore, error) {
	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	if err := migratePostgres(db); err != nil {
		return nil, fmt.Errorf("failed to migrate postgres: %w", err)
	}
	return &PostgresOrderStore{db: db, now: time.Now}, nil
}

func migratePostgres(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS orders (
			id TEXT PRIMARY KEY,
			customer_name TEXT NOT NULL,
			customer_phone TEXT NOT NULL,
			customer_address TEXT NOT NULL,
			customer_landmark TEXT NOT NULL DEFAULT '',
			customer_city TEXT NOT NULL,
			customer_pincode TEXT NOT NULL DEFAULT '',
			total_amount BIGINT NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'received',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders (created_at DESC);

		CREATE TABLE IF NOT EXISTS order_items (
			id SERIAL PRIMARY KEY,
			order_id TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
			product_name TEXT NOT NULL,
			price BIGINT NOT NULL DEFAULT 0,
			quantity INT NOT NULL DEFAULT 1
		);
	`)
	return err
}

func (s *PostgresOrderStore) InsertOrder(ctx context.Context, customer order.CustomerInfo, total int64, status order.Status) (*order.Order, error) {
	now := s.now().UTC()
	o := &order.Order{
		ID:        uuid.NewString(),
		Customer:  customer,
		Total:     total,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO orders (id, customer_name, customer_phone, customer_address, customer_landmark,
			customer_city, customer_pincode, total_amount, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		o.ID, customer.Name, customer.Phone, customer.Address, customer.Landmark,
		customer.City, customer.Pincode, total, status.String(), now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert order: %w", err)
	}
	return o, nil
}

func (s *PostgresOrderStore) InsertOrderItems(ctx context.Context, orderID string, items []order.Item) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, it := range items {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO order_items (order_id, product_name, price, quantity) VALUES ($1, $2, $3, $4)",
			orderID, it.Name, it.Price, it.Quantity,
		)
		if err != nil {
			return fmt.Errorf("failed to insert order item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *PostgresOrderStore) ListOrders(ctx context.Context) ([]order.Order, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, customer_name, customer_phone, customer_address, customer_landmark,
			customer_city, customer_pincode, total_amount, status, created_at, updated_at
		FROM orders ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []order.Order
	index := make(map[string]int)
	for rows.Next() {
		var o order.Order
		var status string
		if err := rows.Scan(&o.ID, &o.Customer.Name, &o.Customer.Phone, &o.Customer.Address,
			&o.Customer.Landmark, &o.Customer.City, &o.Customer.Pincode, &o.Total, &status,
			&o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		o.Status, err = order.ParseStatus(status)
		if err != nil {
			o.Status = order.StatusReceived
		}
		index[o.ID] = len(orders)
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return orders, nil
	}

	itemRows, err := s.db.QueryContext(ctx,
		"SELECT order_id, product_name, price, quantity FROM order_items ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var orderID string
		var it order.Item
		if err := itemRows.Scan(&orderID, &it.Name, &it.Price, &it.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		if i, ok := index[orderID]; ok {
			orders[i].Items = append(orders[i].Items, it)
		}
	}
	return orders, itemRows.Err()
}

func (s *PostgresOrderStore) UpdateOrderStatus(ctx context.Context, orderID string, status order.Status) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE orders SET status = $1, updated_at = $2 WHERE id = $3",
		status.String(), s.now().UTC(), orderID,
	)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return order.ErrNotFound
	}
	return nil
}

// DeleteOrder relies on ON DELETE CASCADE to drop the items.
func (s *PostgresOrderStore) DeleteOrder(ctx context.Context, orderID string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM orders WHERE id = $1", orderID); err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}
	return nil
}

func (s *PostgresOrderStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresOrderStore) Close() error {
	return s.db.Close()
}
