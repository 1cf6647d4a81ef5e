// Package product provides the read-side product catalog used by the
// report aggregator for filtering and row labels. Product CRUD lives
// outside this engine.
package product

import (
	"context"
	"time"

	"stockbook/internal/core/id"
)

// Product is the catalog row the engine reads.
type Product struct {
	ID       id.ID  `db:"id" json:"id"`
	SKU      string `db:"sku" json:"sku"`
	Name     string `db:"name" json:"name"`
	UnitName string `db:"unit_name" json:"unitName"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Filter narrows List results.
type Filter struct {
	// IDs restricts to an explicit product set when non-empty.
	IDs []id.ID
	// Search matches name or SKU, case-insensitive substring.
	Search string
	Limit  int
	Offset int
}

// Repository defines read access to the product catalog.
type Repository interface {
	// GetByID returns one product or a NOT_FOUND apperror.
	GetByID(ctx context.Context, productID id.ID) (*Product, error)

	// List returns products matching the filter ordered by name.
	List(ctx context.Context, filter Filter) ([]Product, error)
}
