package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmehra2102/commerce-choreography/internal/inventory/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS inventory_items (
	product_id  TEXT PRIMARY KEY,
	stock_level INT NOT NULL CHECK (stock_level >= 0),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS reservations (
	order_id          TEXT PRIMARY KEY,
	products          JSONB NOT NULL,
	reserved          BOOLEAN NOT NULL,
	failed_product_id TEXT NOT NULL DEFAULT '',
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS workflow_executions (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	key         TEXT NOT NULL,
	status      TEXT NOT NULL,
	attempts    INT NOT NULL,
	last_error  TEXT NOT NULL DEFAULT '',
	started_at  TIMESTAMPTZ NOT NULL,
	finished_at TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS workflow_executions_key ON workflow_executions (name, key);
`

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{
		log:  log,
		pool: pool,
	}
}

func (r *Repository) EnsureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, schema)
	return err
}

func (r *Repository) InitializeItem(ctx context.Context, productID string) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO inventory_items (product_id, stock_level, updated_at) VALUES ($1, 0, now())
		ON CONFLICT (product_id) DO UPDATE SET stock_level = 0, updated_at = now()`, productID)
	return err
}

func (r *Repository) Get(ctx context.Context, productID string) (domain.InventoryItem, error) {
	item := domain.InventoryItem{ProductID: productID}
	err := r.pool.QueryRow(ctx, `SELECT stock_level FROM inventory_items WHERE product_id = $1`, productID).Scan(&item.StockLevel)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.InventoryItem{}, &domain.NotFoundError{ProductID: productID}
	}
	return item, err
}

func (r *Repository) Save(ctx context.Context, item domain.InventoryItem) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO inventory_items (product_id, stock_level, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (product_id) DO UPDATE SET stock_level = $2, updated_at = now()`, item.ProductID, item.StockLevel)
	return err
}

// Reserve locks the order's reservation row and the stock rows it touches
// so concurrent deliveries of the same order serialise on the primary key.
func (r *Repository) Reserve(ctx context.Context, orderID string, products []string) (domain.Reservation, bool, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return domain.Reservation{}, false, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	productsJSON, err := json.Marshal(products)
	if err != nil {
		return domain.Reservation{}, false, err
	}

	// Claim the order id first; a conflict means another delivery got here.
	tag, err := tx.Exec(ctx, `INSERT INTO reservations (order_id, products, reserved) VALUES ($1, $2::jsonb, false)
		ON CONFLICT (order_id) DO NOTHING`, orderID, string(productsJSON))
	if err != nil {
		return domain.Reservation{}, false, err
	}
	if tag.RowsAffected() == 0 {
		res, err := r.loadReservation(ctx, tx, orderID)
		return res, false, err
	}

	stock := make(map[string]int, len(products))
	rows, err := tx.Query(ctx, `SELECT product_id, stock_level FROM inventory_items WHERE product_id = ANY($1) ORDER BY product_id FOR UPDATE`, products)
	if err != nil {
		return domain.Reservation{}, false, err
	}
	for rows.Next() {
		var id string
		var level int
		if err := rows.Scan(&id, &level); err != nil {
			rows.Close()
			return domain.Reservation{}, false, err
		}
		stock[id] = level
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return domain.Reservation{}, false, err
	}

	res, updated := domain.Reserve(orderID, products, stock)
	if len(updated) > 0 {
		batch := &pgx.Batch{}
		for id, level := range updated {
			batch.Queue(`UPDATE inventory_items SET stock_level = $2, updated_at = now() WHERE product_id = $1`, id, level)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return domain.Reservation{}, false, err
		}
	}
	if _, err := tx.Exec(ctx, `UPDATE reservations SET reserved = $2, failed_product_id = $3 WHERE order_id = $1`,
		orderID, res.Reserved, res.FailedProductID); err != nil {
		return domain.Reservation{}, false, err
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.Reservation{}, false, err
	}
	return res, true, nil
}

func (r *Repository) loadReservation(ctx context.Context, tx pgx.Tx, orderID string) (domain.Reservation, error) {
	res := domain.Reservation{OrderID: orderID}
	var products []byte
	err := tx.QueryRow(ctx, `SELECT products, reserved, failed_product_id FROM reservations WHERE order_id = $1`, orderID).
		Scan(&products, &res.Reserved, &res.FailedProductID)
	if err != nil {
		return domain.Reservation{}, err
	}
	if err := json.Unmarshal(products, &res.Products); err != nil {
		return domain.Reservation{}, err
	}
	return res, tx.Commit(ctx)
}
