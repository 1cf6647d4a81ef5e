// Package ledger provides the append-only stock ledger and the
// read-side calculation engine built on top of it: balance
// reconstruction, weighted-average costing and the checkpoint-based
// stock-on-hand calculator.
package ledger

import (
	"context"
	"time"

	"stockbook/internal/core/apperror"
	"stockbook/internal/core/id"
	"stockbook/internal/core/types"
)

// TransactionType enumerates supported stock movements.
type TransactionType string

const (
	// TypeStockIn represents an inbound movement (receipt).
	TypeStockIn TransactionType = "Stock_In"
	// TypeStockOut represents an outbound movement (issue).
	TypeStockOut TransactionType = "Stock_Out"
	// TypeStockCount represents a periodic physical count used as a
	// monthly closing checkpoint.
	TypeStockCount TransactionType = "Stock_Count"
)

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	switch t {
	case TypeStockIn, TypeStockOut, TypeStockCount:
		return true
	}
	return false
}

// Entry is one row of the stock ledger. Entries are immutable: once
// posted they are never updated or deleted, and every downstream
// calculation depends on that.
type Entry struct {
	// ID is a BIGSERIAL assigned on insert. Same-day entries are
	// ordered by ID, preserving original posting order.
	ID int64 `db:"id" json:"id"`

	// Dimensions
	ProductID id.ID `db:"product_id" json:"productId"`
	// WarehouseID is nil for entries posted in a global (all
	// warehouses) context.
	WarehouseID *id.ID `db:"warehouse_id" json:"warehouseId,omitempty"`

	// TransactionDate is a calendar date, not a timestamp.
	TransactionDate time.Time       `db:"transaction_date" json:"transactionDate"`
	TransactionType TransactionType `db:"transaction_type" json:"transactionType"`

	// Quantity is signed: positive inbound, negative outbound.
	Quantity types.Quantity `db:"quantity" json:"quantity"`

	// UnitPrice and TotalPrice carry the value attached when the entry
	// was posted. Outbound entries hold the (negative) value removed,
	// costed at whatever average applied at posting time; it is never
	// recomputed afterwards.
	UnitPrice  types.Money `db:"unit_price" json:"unitPrice"`
	TotalPrice types.Money `db:"total_price" json:"totalPrice"`

	// ParentID/ParentType reference the originating document, kept for
	// document-level resync workflows.
	ParentID   *id.ID `db:"parent_id" json:"parentId,omitempty"`
	ParentType string `db:"parent_type" json:"parentType,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Validate checks the invariants the ledger enforces at the append seam.
// Document-level validation belongs to the write path, not here.
func (e *Entry) Validate(ctx context.Context) error {
	if id.IsNil(e.ProductID) {
		return apperror.NewValidation("product_id is required")
	}
	if !e.TransactionType.Valid() {
		return apperror.NewValidation("unknown transaction type").
			WithDetail("transactionType", string(e.TransactionType))
	}
	if e.Quantity.IsZero() {
		return apperror.NewValidation("quantity must be non-zero")
	}
	switch e.TransactionType {
	case TypeStockIn:
		if e.Quantity.IsNegative() {
			return apperror.NewValidation("Stock_In quantity must be positive")
		}
	case TypeStockOut:
		if e.Quantity.IsPositive() {
			return apperror.NewValidation("Stock_Out quantity must be negative")
		}
	}
	if e.TransactionDate.IsZero() {
		return apperror.NewValidation("transaction_date is required")
	}
	return nil
}

// Line is an Entry with the running balance attached, as produced by
// the reconstructor.
type Line struct {
	Entry
	RunningQty types.Quantity `json:"runningQty"`
}
