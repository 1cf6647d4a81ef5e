// Package ledger_repo provides the PostgreSQL implementation of the
// stock ledger repository.
package ledger_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockbook/internal/core/id"
	"stockbook/internal/core/types"
	"stockbook/internal/domain/ledger"
	"stockbook/internal/infrastructure/storage/postgres"
)

const ledgerTable = "stock_ledger"

var ledgerColumns = []string{
	"product_id", "warehouse_id",
	"transaction_date", "transaction_type",
	"quantity", "unit_price", "total_price",
	"parent_id", "parent_type", "created_at",
}

// Compile-time check that Repo implements ledger.Repository.
var _ ledger.Repository = (*Repo)(nil)

// Repo implements ledger.Repository on top of Postgres.
type Repo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewRepo creates a ledger repository.
func NewRepo(txManager *postgres.TxManager) *Repo {
	return &Repo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Append batch inserts entries. Inside a transaction it uses COPY,
// otherwise a multi-row insert.
func (r *Repo) Append(ctx context.Context, entries []ledger.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	// Fast path: COPY when inside a transaction.
	if tx := r.txManager.GetTx(ctx); tx != nil {
		inserter := postgres.NewBatchInserter(r.txManager)
		rows := make([][]any, 0, len(entries))
		for _, e := range entries {
			rows = append(rows, entryRow(e))
		}
		if _, err := inserter.CopyFromSlice(ctx, ledgerTable, ledgerColumns, rows); err != nil {
			return fmt.Errorf("copy ledger entries: %w", err)
		}
		return nil
	}

	q := r.builder.Insert(ledgerTable).Columns(ledgerColumns...)
	for _, e := range entries {
		q = q.Values(entryRow(e)...)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert ledger entries: %w", err)
	}

	return nil
}

func entryRow(e ledger.Entry) []any {
	return []any{
		e.ProductID, e.WarehouseID,
		e.TransactionDate, e.TransactionType,
		e.Quantity, e.UnitPrice, e.TotalPrice,
		e.ParentID, e.ParentType, e.CreatedAt,
	}
}

// SelectEntries returns entries matching q ordered by
// (transaction_date, id). The id tie-break reproduces posting order
// for same-day entries.
func (r *Repo) SelectEntries(ctx context.Context, query ledger.EntryQuery) ([]ledger.Entry, error) {
	q := r.builder.Select(
		"id", "product_id", "warehouse_id",
		"transaction_date", "transaction_type",
		"quantity", "unit_price", "total_price",
		"parent_id", "parent_type", "created_at",
	).From(ledgerTable).
		Where(squirrel.Eq{"product_id": query.ProductID}).
		OrderBy("transaction_date ASC", "id ASC")

	if query.WarehouseID != nil {
		q = q.Where(squirrel.Eq{"warehouse_id": *query.WarehouseID})
	}
	if query.To != nil {
		q = q.Where(squirrel.LtOrEq{"transaction_date": *query.To})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var entries []ledger.Entry
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &entries, sql, args...); err != nil {
		return nil, fmt.Errorf("select ledger entries: %w", err)
	}

	return entries, nil
}

// SumQuantity returns the signed quantity sum over the filter window.
func (r *Repo) SumQuantity(ctx context.Context, f ledger.SumFilter) (types.Quantity, error) {
	q := r.builder.Select("COALESCE(SUM(quantity), 0)::bigint AS total").
		From(ledgerTable).
		Where(squirrel.Eq{"product_id": f.ProductID})

	if f.WarehouseID != nil {
		q = q.Where(squirrel.Eq{"warehouse_id": *f.WarehouseID})
	}
	if len(f.Types) > 0 {
		q = q.Where(squirrel.Eq{"transaction_type": f.Types})
	}
	if !f.From.IsZero() {
		q = q.Where(squirrel.GtOrEq{"transaction_date": f.From})
	}
	if !f.To.IsZero() {
		q = q.Where(squirrel.LtOrEq{"transaction_date": f.To})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}

	var total int64
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &total, sql, args...); err != nil {
		return 0, fmt.Errorf("sum quantity: %w", err)
	}

	return types.NewQuantityFromInt64Scaled(total), nil
}

// ValueTotals returns quantity/value sums partitioned by quantity
// sign. Every transaction type participates: Stock_Count rows act as
// valued opening/adjustment entries and fold into whichever side
// their sign puts them on.
func (r *Repo) ValueTotals(ctx context.Context, productID id.ID, asOf *time.Time) (ledger.ValueTotals, error) {
	q := r.builder.Select(
		"COALESCE(SUM(quantity) FILTER (WHERE quantity > 0), 0)::bigint AS in_qty",
		"COALESCE(SUM(total_price) FILTER (WHERE quantity > 0), 0) AS in_total",
		"COALESCE(SUM(quantity) FILTER (WHERE quantity < 0), 0)::bigint AS out_qty",
		"COALESCE(SUM(total_price) FILTER (WHERE quantity < 0), 0) AS out_total",
	).From(ledgerTable).
		Where(squirrel.Eq{"product_id": productID})

	if asOf != nil {
		q = q.Where(squirrel.LtOrEq{"transaction_date": *asOf})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return ledger.ValueTotals{}, fmt.Errorf("build query: %w", err)
	}

	var totals ledger.ValueTotals
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &totals, sql, args...); err != nil {
		return ledger.ValueTotals{}, fmt.Errorf("select value totals: %w", err)
	}

	return totals, nil
}

// MonthlyOutbound returns per-month absolute outbound quantity within
// [from, to]. Months without movement are absent.
func (r *Repo) MonthlyOutbound(ctx context.Context, productID id.ID, warehouseID *id.ID, from, to time.Time) ([]ledger.MonthlyQuantity, error) {
	q := r.builder.Select(
		"date_trunc('month', transaction_date) AS month",
		"SUM(ABS(quantity))::bigint AS quantity",
	).From(ledgerTable).
		Where(squirrel.Eq{"product_id": productID}).
		Where(squirrel.Eq{"transaction_type": ledger.TypeStockOut}).
		Where(squirrel.GtOrEq{"transaction_date": from}).
		Where(squirrel.LtOrEq{"transaction_date": to}).
		GroupBy("date_trunc('month', transaction_date)").
		OrderBy("month ASC")

	if warehouseID != nil {
		q = q.Where(squirrel.Eq{"warehouse_id": *warehouseID})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var months []ledger.MonthlyQuantity
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &months, sql, args...); err != nil {
		return nil, fmt.Errorf("select monthly outbound: %w", err)
	}

	return months, nil
}

// Warehouses returns the distinct warehouses that have ever moved the
// product.
func (r *Repo) Warehouses(ctx context.Context, productID id.ID) ([]id.ID, error) {
	q := r.builder.Select("DISTINCT warehouse_id").
		From(ledgerTable).
		Where(squirrel.Eq{"product_id": productID}).
		Where("warehouse_id IS NOT NULL").
		OrderBy("warehouse_id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var warehouses []id.ID
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &warehouses, sql, args...); err != nil {
		return nil, fmt.Errorf("select warehouses: %w", err)
	}

	return warehouses, nil
}

// PeriodTotals returns beginning/in/out sums for one product over a
// range. Beginning covers entries strictly before From; in-range
// entries partition by quantity sign.
func (r *Repo) PeriodTotals(ctx context.Context, f ledger.PeriodFilter) (ledger.PeriodTotals, error) {
	q := r.builder.Select().
		Column("COALESCE(SUM(quantity) FILTER (WHERE transaction_date < ?), 0)::bigint AS begin_qty", f.From).
		Column("COALESCE(SUM(total_price) FILTER (WHERE transaction_date < ?), 0) AS begin_value", f.From).
		Column("COALESCE(SUM(quantity) FILTER (WHERE transaction_date >= ? AND quantity > 0), 0)::bigint AS in_qty", f.From).
		Column("COALESCE(SUM(total_price) FILTER (WHERE transaction_date >= ? AND quantity > 0), 0) AS in_value", f.From).
		Column("COALESCE(SUM(quantity) FILTER (WHERE transaction_date >= ? AND quantity < 0), 0)::bigint AS out_qty", f.From).
		Column("COALESCE(SUM(total_price) FILTER (WHERE transaction_date >= ? AND quantity < 0), 0) AS out_value", f.From).
		From(ledgerTable).
		Where(squirrel.Eq{"product_id": f.ProductID}).
		Where(squirrel.LtOrEq{"transaction_date": f.To})

	if len(f.WarehouseIDs) > 0 {
		q = q.Where(squirrel.Eq{"warehouse_id": f.WarehouseIDs})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return ledger.PeriodTotals{}, fmt.Errorf("build query: %w", err)
	}

	var totals ledger.PeriodTotals
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &totals, sql, args...); err != nil {
		return ledger.PeriodTotals{}, fmt.Errorf("select period totals: %w", err)
	}

	return totals, nil
}
