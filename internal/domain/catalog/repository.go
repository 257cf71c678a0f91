package catalog

import "context"

// Repository defines the persistence interface for catalog products.
type Repository interface {
	// ListProviderManaged lists all products with a non-empty square_id,
	// both active and archived.
	ListProviderManaged(ctx context.Context) ([]*Product, error)

	// Archive sets active=false on a provider-managed product.
	Archive(ctx context.Context, squareID string) error

	// Restore reactivates an archived product keyed on square_id.
	// Returns false when no archived row matched.
	Restore(ctx context.Context, squareID string) (bool, error)
}
