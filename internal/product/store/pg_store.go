package store

import (
	"context"
	"errors"
	"fmt"

	perrors "github.com/abgdnv/marketplace/internal/product/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	productColumns = `id, name, price, location, description, image, owner`

	containsKeyQuery = `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`
	getQuery         = `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	insertQuery      = `INSERT INTO products (` + productColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (id) DO UPDATE SET
    name        = EXCLUDED.name,
    price       = EXCLUDED.price,
    location    = EXCLUDED.location,
    description = EXCLUDED.description,
    image       = EXCLUDED.image,
    owner       = EXCLUDED.owner,
    updated_at  = now()`
	removeQuery = `DELETE FROM products WHERE id = $1 RETURNING ` + productColumns
	valuesQuery = `SELECT ` + productColumns + ` FROM products ORDER BY id COLLATE "C"`
)

// DBTX is the subset of *pgxpool.Pool used by PgStore.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PgStore implements ProductStore using PostgreSQL as the data store.
type PgStore struct {
	db DBTX
}

var _ ProductStore = (*PgStore)(nil)

// NewPgStore creates a new instance of ProductStore using a PostgreSQL connection pool.
func NewPgStore(db DBTX) *PgStore {
	return &PgStore{db: db}
}

func (p *PgStore) ContainsKey(ctx context.Context, id string) (bool, error) {
	var exists bool
	if err := p.db.QueryRow(ctx, containsKeyQuery, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check product %s: %w", id, err)
	}
	return exists, nil
}

func (p *PgStore) Get(ctx context.Context, id string) (*Product, error) {
	product, err := scanProduct(p.db.QueryRow(ctx, getQuery, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, perrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product %s: %w", id, err)
	}
	return &product, nil
}

func (p *PgStore) Insert(ctx context.Context, product Product) error {
	_, err := p.db.Exec(ctx, insertQuery,
		product.ID,
		product.Name,
		product.Price,
		product.Location,
		product.Description,
		product.Image,
		product.Owner,
	)
	if err != nil {
		return fmt.Errorf("failed to insert product %s: %w", product.ID, err)
	}
	return nil
}

func (p *PgStore) Remove(ctx context.Context, id string) (*Product, error) {
	product, err := scanProduct(p.db.QueryRow(ctx, removeQuery, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, perrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to remove product %s: %w", id, err)
	}
	return &product, nil
}

func (p *PgStore) Values(ctx context.Context) ([]Product, error) {
	rows, err := p.db.Query(ctx, valuesQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	products, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Product, error) {
		return scanProduct(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	if products == nil {
		products = []Product{}
	}
	return products, nil
}

func scanProduct(row pgx.Row) (Product, error) {
	var product Product
	err := row.Scan(
		&product.ID,
		&product.Name,
		&product.Price,
		&product.Location,
		&product.Description,
		&product.Image,
		&product.Owner,
	)
	return product, err
}
