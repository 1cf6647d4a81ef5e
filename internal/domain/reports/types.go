// Package reports provides the period stock report aggregator.
package reports

import (
	"time"

	"stockbook/internal/core/id"
	"stockbook/internal/core/types"
)

// StockReportFilter defines the report window and optional filters.
type StockReportFilter struct {
	// Period (required)
	From time.Time
	To   time.Time

	// Filters
	WarehouseIDs []id.ID
	ProductIDs   []id.ID

	// Search matches product name or SKU.
	Search string
}

// StockReportRow is one product's beginning/in/out/ending summary over
// the period. Quantities are 2-decimal floats for rendering; values
// keep full Money precision.
type StockReportRow struct {
	ProductID   id.ID  `json:"productId"`
	SKU         string `json:"sku"`
	ProductName string `json:"productName"`
	UnitName    string `json:"unitName"`

	BeginningQty   float64     `json:"beginningQty"`
	BeginningValue types.Money `json:"beginningValue"`

	StockInQty   float64     `json:"stockInQty"`
	StockInValue types.Money `json:"stockInValue"`

	StockOutQty   float64     `json:"stockOutQty"`
	StockOutValue types.Money `json:"stockOutValue"`

	EndingQty   float64     `json:"endingQty"`
	EndingValue types.Money `json:"endingValue"`

	AvgPrice types.Money `json:"avgPrice"`
}

// StockReport is the full report result.
type StockReport struct {
	From       time.Time        `json:"from"`
	To         time.Time        `json:"to"`
	Rows       []StockReportRow `json:"rows"`
	TotalRows  int              `json:"totalRows"`

	// Summary totals
	TotalBeginningQty float64 `json:"totalBeginningQty"`
	TotalStockInQty   float64 `json:"totalStockInQty"`
	TotalStockOutQty  float64 `json:"totalStockOutQty"`
	TotalEndingQty    float64 `json:"totalEndingQty"`
}
