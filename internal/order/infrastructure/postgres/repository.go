package postgres

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/dmehra2102/commerce-choreography/internal/order/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS orders (
	id          TEXT PRIMARY KEY,
	user_id     TEXT NOT NULL,
	order_type  TEXT NOT NULL,
	status      TEXT NOT NULL,
	total_price NUMERIC(12,2) NOT NULL DEFAULT 0,
	order_date  TIMESTAMPTZ NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS order_products (
	order_id   TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
	position   INT NOT NULL,
	product_id TEXT NOT NULL,
	PRIMARY KEY (order_id, position)
);`

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

func (r *Repository) EnsureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, schema)
	return err
}

// Create stores the order header and its product lines in one transaction.
func (r *Repository) Create(ctx context.Context, o *domain.Order) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	_, err = tx.Exec(ctx, `INSERT INTO orders (id, user_id, order_type, status, total_price, order_date)
		VALUES ($1, $2, $3, $4, $5::numeric, $6)`,
		o.ID, o.UserID, string(o.Type), string(o.Status), o.TotalPrice.String(), o.OrderDate)
	if err != nil {
		return err
	}

	batch := &pgx.Batch{}
	for i, productID := range o.Products {
		batch.Queue(`INSERT INTO order_products (order_id, position, product_id) VALUES ($1, $2, $3)`, o.ID, i, productID)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Update persists the mutable fields. Product lines never change after
// creation.
func (r *Repository) Update(ctx context.Context, o *domain.Order) error {
	ct, err := r.pool.Exec(ctx, `UPDATE orders SET status = $2, total_price = $3::numeric, updated_at = now() WHERE id = $1`,
		o.ID, string(o.Status), o.TotalPrice.String())
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return &domain.NotFoundError{OrderID: o.ID}
	}
	return nil
}

func (r *Repository) Get(ctx context.Context, id string) (*domain.Order, error) {
	var (
		userID, typ, status, total string
		orderDate                  time.Time
	)
	err := r.pool.QueryRow(ctx, `SELECT user_id, order_type, status, total_price::text, order_date FROM orders WHERE id = $1`, id).
		Scan(&userID, &typ, &status, &total, &orderDate)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &domain.NotFoundError{OrderID: id}
	}
	if err != nil {
		return nil, err
	}
	price, err := decimal.NewFromString(total)
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `SELECT product_id FROM order_products WHERE order_id = $1 ORDER BY position`, id)
	if err != nil {
		return nil, err
	}
	products, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []string{}
	}
	return domain.Reconstitute(id, userID, products, orderDate.UTC(), domain.OrderType(typ), domain.OrderStatus(status), price), nil
}
