package catalog

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/foundry-erp/foundry-erp/internal/shared"
)

// RepositoryPort describes catalog lookups used by the resolver.
type RepositoryPort interface {
	GetByCode(ctx context.Context, code string) (Item, error)
	ListByName(ctx context.Context, normalizedName string) ([]Item, error)
}

// Repository provides PostgreSQL backed catalog persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const itemColumns = `id, code, name, material_type, unit, created_at, updated_at`

// GetByCode fetches one catalog item by its exact code.
func (r *Repository) GetByCode(ctx context.Context, code string) (Item, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+itemColumns+` FROM catalog_items WHERE code = $1`, code)
	item, err := scanItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Item{}, shared.ErrNotFound
		}
		return Item{}, err
	}
	return item, nil
}

// ListByName returns every catalog item whose name matches after
// normalization. The SQL expression mirrors Normalize: lowercase,
// underscores to spaces, whitespace runs collapsed, ends trimmed.
func (r *Repository) ListByName(ctx context.Context, normalizedName string) ([]Item, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+itemColumns+`
		FROM catalog_items
		WHERE btrim(lower(regexp_replace(replace(name, '_', ' '), '\s+', ' ', 'g'))) = $1
		ORDER BY id
	`, normalizedName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func scanItem(row pgx.Row) (Item, error) {
	var item Item
	err := row.Scan(&item.ID, &item.Code, &item.Name, &item.MaterialType, &item.Unit, &item.CreatedAt, &item.UpdatedAt)
	return item, err
}
