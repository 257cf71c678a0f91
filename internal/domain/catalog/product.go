package catalog

import (
	"time"

	"github.com/google/uuid"
)

// Product is a catalog item mirrored from the provider. SquareID is empty
// for locally-managed items (custom catering lines entered by staff); those
// are never touched by reconciliation.
type Product struct {
	ID         uuid.UUID
	Name       string
	Category   string
	SquareID   string
	Active     bool
	PriceCents int64
	Currency   string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ProviderManaged reports whether the product is mirrored from the provider
// catalog and therefore eligible for archive/restore decisions.
func (p *Product) ProviderManaged() bool {
	return p.SquareID != ""
}
