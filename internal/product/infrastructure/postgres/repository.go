package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/dmehra2102/commerce-choreography/internal/product/domain"
)

const schema = `CREATE TABLE IF NOT EXISTS products (
	id             TEXT PRIMARY KEY,
	name           TEXT NOT NULL,
	price          NUMERIC(12,2) NOT NULL,
	previous_name  TEXT NOT NULL DEFAULT '',
	previous_price NUMERIC(12,2) NOT NULL DEFAULT 0,
	stock_level    INT NOT NULL DEFAULT 0,
	price_brackets JSONB NOT NULL DEFAULT '[]',
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
)`

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

type bracketRow struct {
	Quantity int    `json:"quantity"`
	Price    string `json:"price"`
}

func (r *Repository) Create(ctx context.Context, p *domain.Product) error {
	return r.upsert(ctx, p)
}

func (r *Repository) Update(ctx context.Context, p *domain.Product) error {
	return r.upsert(ctx, p)
}

// upsert writes the whole record; last write wins per id.
func (r *Repository) upsert(ctx context.Context, p *domain.Product) error {
	rows := make([]bracketRow, 0, len(p.PriceBrackets))
	for _, b := range p.PriceBrackets {
		rows = append(rows, bracketRow{Quantity: b.Quantity, Price: b.Price.StringFixed(2)})
	}
	brackets, err := json.Marshal(rows)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `INSERT INTO products (id, name, price, previous_name, previous_price, stock_level, price_brackets, updated_at)
		VALUES ($1, $2, $3::numeric, $4, $5::numeric, $6, $7::jsonb, now())
		ON CONFLICT (id) DO UPDATE SET
			name = $2, price = $3::numeric, previous_name = $4, previous_price = $5::numeric,
			stock_level = $6, price_brackets = $7::jsonb, updated_at = now()`,
		p.ID, p.Name, p.Price.String(), p.PreviousName, p.PreviousPrice.String(), p.StockLevel, string(brackets))
	return err
}

const selectProduct = `SELECT id, name, price::text, previous_name, previous_price::text, stock_level, price_brackets FROM products`

func (r *Repository) Get(ctx context.Context, id string) (*domain.Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx, selectProduct+` WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &domain.NotFoundError{ProductID: id}
	}
	return p, err
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	return err
}

func (r *Repository) List(ctx context.Context) ([]*domain.Product, error) {
	rows, err := r.pool.Query(ctx, selectProduct+` ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var (
		id, name, prevName, price, prevPrice string
		stock                                int
		raw                                  []byte
	)
	if err := row.Scan(&id, &name, &price, &prevName, &prevPrice, &stock, &raw); err != nil {
		return nil, err
	}
	pr, err := decimal.NewFromString(price)
	if err != nil {
		return nil, err
	}
	prev, err := decimal.NewFromString(prevPrice)
	if err != nil {
		return nil, err
	}
	var rows []bracketRow
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, err
	}
	brackets := make([]domain.PriceBracket, 0, len(rows))
	for _, b := range rows {
		d, err := decimal.NewFromString(b.Price)
		if err != nil {
			return nil, err
		}
		brackets = append(brackets, domain.PriceBracket{Quantity: b.Quantity, Price: d})
	}
	return domain.Reconstitute(id, name, pr, prevName, prev, stock, brackets), nil
}
