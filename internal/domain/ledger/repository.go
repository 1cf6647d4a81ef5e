package ledger

import (
	"context"
	"time"

	"stockbook/internal/core/id"
	"stockbook/internal/core/types"
)

// Repository defines the aggregate queries the engine needs from the
// ledger store. All reads are plain range-and-group aggregations; the
// engine's logic stays independent of the query API behind them.
type Repository interface {
	// Append batch inserts entries. Called inside the posting
	// transaction of the originating document, so all entries of one
	// document commit atomically or not at all.
	Append(ctx context.Context, entries []Entry) error

	// SelectEntries returns entries matching q ordered ascending by
	// (transaction_date, id). The id tie-break preserves posting order
	// for same-day entries.
	SelectEntries(ctx context.Context, q EntryQuery) ([]Entry, error)

	// SumQuantity returns the signed quantity sum over the filter
	// window. Missing rows yield 0, not an error.
	SumQuantity(ctx context.Context, f SumFilter) (types.Quantity, error)

	// ValueTotals returns quantity/value sums partitioned by quantity
	// sign, warehouse-agnostic, optionally bounded by asOf (inclusive).
	ValueTotals(ctx context.Context, productID id.ID, asOf *time.Time) (ValueTotals, error)

	// MonthlyOutbound returns per-calendar-month sums of absolute
	// Stock_Out quantity within [from, to], ascending by month. Months
	// without outbound movement are absent from the result.
	MonthlyOutbound(ctx context.Context, productID id.ID, warehouseID *id.ID, from, to time.Time) ([]MonthlyQuantity, error)

	// Warehouses returns the distinct warehouses that have ever moved
	// the product, from the ledger itself.
	Warehouses(ctx context.Context, productID id.ID) ([]id.ID, error)

	// PeriodTotals returns beginning/in/out quantity and value sums for
	// one product over a date range, for the period stock report.
	PeriodTotals(ctx context.Context, f PeriodFilter) (PeriodTotals, error)
}

// EntryQuery filters SelectEntries.
type EntryQuery struct {
	ProductID   id.ID
	WarehouseID *id.ID
	// To bounds transaction_date inclusively when set.
	To *time.Time
}

// SumFilter selects a quantity sum window.
type SumFilter struct {
	ProductID   id.ID
	WarehouseID *id.ID
	Types       []TransactionType
	From        time.Time
	To          time.Time
}

// ValueTotals carries sign-partitioned quantity/value sums. Out
// components are already negative.
type ValueTotals struct {
	InQty    types.Quantity `db:"in_qty"`
	InTotal  types.Money    `db:"in_total"`
	OutQty   types.Quantity `db:"out_qty"`
	OutTotal types.Money    `db:"out_total"`
}

// MonthlyQuantity is one month's absolute outbound usage.
type MonthlyQuantity struct {
	Month    time.Time      `db:"month"`
	Quantity types.Quantity `db:"quantity"`
}

// PeriodFilter selects the report window for one product.
type PeriodFilter struct {
	ProductID    id.ID
	WarehouseIDs []id.ID
	From         time.Time
	To           time.Time
}

// PeriodTotals carries report sums for one product over a range.
// Beginning covers entries strictly before From; In/Out partition the
// in-range entries by quantity sign, so Stock_Count adjustments fold
// into whichever side their sign puts them on.
type PeriodTotals struct {
	BeginQty   types.Quantity `db:"begin_qty"`
	BeginValue types.Money    `db:"begin_value"`
	InQty      types.Quantity `db:"in_qty"`
	InValue    types.Money    `db:"in_value"`
	OutQty     types.Quantity `db:"out_qty"`
	OutValue   types.Money    `db:"out_value"`
}

// IsZero reports whether every component is zero (row gets dropped
// from report output).
func (t PeriodTotals) IsZero() bool {
	return t.BeginQty.IsZero() && t.InQty.IsZero() && t.OutQty.IsZero() &&
		t.BeginValue.IsZero() && t.InValue.IsZero() && t.OutValue.IsZero()
}
