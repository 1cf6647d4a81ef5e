// Package forecast_repo provides the PostgreSQL implementation of the
// reorder configuration repository.
package forecast_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockbook/internal/core/id"
	"stockbook/internal/domain/forecast"
	"stockbook/internal/infrastructure/storage/postgres"
)

const configsTable = "warehouse_product_configs"

var configColumns = []string{
	"warehouse_id", "product_id", "alert_quantity",
	"stock_out_forecast_days", "target_inv_turnover_days", "order_leadtime_days",
}

// Compile-time check that Repo implements forecast.ConfigRepository.
var _ forecast.ConfigRepository = (*Repo)(nil)

// Repo implements forecast.ConfigRepository on top of Postgres.
type Repo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewRepo creates a reorder configuration repository.
func NewRepo(txManager *postgres.TxManager) *Repo {
	return &Repo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Get returns the config for one (warehouse, product) pair, or
// (nil, nil) when the product is not tracked.
func (r *Repo) Get(ctx context.Context, warehouseID, productID id.ID) (*forecast.Config, error) {
	q := r.builder.Select(configColumns...).
		From(configsTable).
		Where(squirrel.Eq{
			"warehouse_id": warehouseID,
			"product_id":   productID,
		}).Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var cfg forecast.Config
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &cfg, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get reorder config: %w", err)
	}

	return &cfg, nil
}

// ListByWarehouse returns every config row for a warehouse ordered by
// product so forecast runs are deterministic.
func (r *Repo) ListByWarehouse(ctx context.Context, warehouseID id.ID) ([]forecast.Config, error) {
	q := r.builder.Select(configColumns...).
		From(configsTable).
		Where(squirrel.Eq{"warehouse_id": warehouseID}).
		OrderBy("product_id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var configs []forecast.Config
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &configs, sql, args...); err != nil {
		return nil, fmt.Errorf("list reorder configs: %w", err)
	}

	return configs, nil
}
