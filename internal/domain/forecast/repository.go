package forecast

import (
	"context"

	"stockbook/internal/core/id"
)

// ConfigRepository reads reorder configuration. The engine never
// writes these rows.
type ConfigRepository interface {
	// Get returns the config for one (warehouse, product) pair, or
	// (nil, nil) when the product is not tracked.
	Get(ctx context.Context, warehouseID, productID id.ID) (*Config, error)

	// ListByWarehouse returns every config row for a warehouse.
	ListByWarehouse(ctx context.Context, warehouseID id.ID) ([]Config, error)
}
