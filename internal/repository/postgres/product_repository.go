package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/copperkettle/catering/internal/domain/catalog"
	domainErrors "github.com/copperkettle/catering/internal/domain/errors"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProductRepository implements catalog.Repository using PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository creates a new ProductRepository.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

func (r *ProductRepository) db(ctx context.Context) DBTX {
	return ConnFromCtx(ctx, r.pool)
}

// ListProviderManaged lists all products with a non-empty square_id, both
// active and archived. Locally-managed products (empty square_id) are
// excluded at the query level; they are never candidates for
// reconciliation.
func (r *ProductRepository) ListProviderManaged(ctx context.Context) ([]*catalog.Product, error) {
	rows, err := r.db(ctx).Query(ctx,
		`SELECT id, name, category, square_id, active, price_cents, currency, created_at, updated_at
		 FROM products WHERE square_id <> '' ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list provider products: %w", err)
	}
	defer rows.Close()

	var products []*catalog.Product
	for rows.Next() {
		p := &catalog.Product{}
		if err := rows.Scan(&p.ID, &p.Name, &p.Category, &p.SquareID, &p.Active, &p.PriceCents, &p.Currency, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// Archive sets active=false on a provider-managed product. The square_id
// predicate keeps locally-managed rows out of reach even if called with an
// empty id.
func (r *ProductRepository) Archive(ctx context.Context, squareID string) error {
	if squareID == "" {
		return domainErrors.ErrInvalidInput
	}
	tag, err := r.db(ctx).Exec(ctx,
		`UPDATE products SET active = false, updated_at = $1
		 WHERE square_id = $2 AND active = true`,
		time.Now(), squareID,
	)
	if err != nil {
		return fmt.Errorf("archive product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrProductNotFound
	}
	return nil
}

// Restore reactivates an archived product keyed on square_id. Returns
// false when no archived row matched.
func (r *ProductRepository) Restore(ctx context.Context, squareID string) (bool, error) {
	if squareID == "" {
		return false, domainErrors.ErrInvalidInput
	}
	tag, err := r.db(ctx).Exec(ctx,
		`UPDATE products SET active = true, updated_at = $1
		 WHERE square_id = $2 AND active = false`,
		time.Now(), squareID,
	)
	if err != nil {
		return false, fmt.Errorf("restore product: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
