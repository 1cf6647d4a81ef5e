// Package forecast provides the reorder-point and safety-stock engine.
// It consumes per-(warehouse, product) configuration and ledger-derived
// usage history to size order plans, demand forecasts and reorder levels.
package forecast

import (
	"stockbook/internal/core/id"
	"stockbook/internal/core/types"
)

// Config holds the reorder parameters for one (warehouse, product)
// pair. Rows are maintained by master-data CRUD outside this engine
// and read-only here; a missing row means the product is not tracked
// for reorder purposes, which is not an error.
type Config struct {
	WarehouseID id.ID `db:"warehouse_id" json:"warehouseId"`
	ProductID   id.ID `db:"product_id" json:"productId"`

	// AlertQuantity triggers the low-stock flag when on-hand falls to
	// or below it. Zero disables the alert.
	AlertQuantity types.Quantity `db:"alert_quantity" json:"alertQuantity"`

	// StockOutForecastDays is the demand forecast horizon.
	StockOutForecastDays float64 `db:"stock_out_forecast_days" json:"stockOutForecastDays"`

	// TargetInvTurnoverDays is the target days of supply to hold.
	TargetInvTurnoverDays float64 `db:"target_inv_turnover_days" json:"targetInvTurnoverDays"`

	// OrderLeadtimeDays is the replenishment lead time.
	OrderLeadtimeDays float64 `db:"order_leadtime_days" json:"orderLeadtimeDays"`
}

// ProductStockMetrics is the computed forecast record for one tracked
// product in one warehouse. Quantity fields are rounded to 2 decimal
// places; AvgPrice to 6.
type ProductStockMetrics struct {
	WarehouseID id.ID `json:"warehouseId"`
	ProductID   id.ID `json:"productId"`

	BeginningStockQty float64     `json:"beginningStockQty"`
	CurrentStockQty   float64     `json:"currentStockQty"`
	AvgPrice          types.Money `json:"avgPrice"`

	AvgUsage3M     float64 `json:"avgUsage3m"`
	AvgUsage6M     float64 `json:"avgUsage6m"`
	AvgUsage       float64 `json:"avgUsage"`
	LastMonthUsage float64 `json:"lastMonthUsage"`
	AvgDailyUse    float64 `json:"avgDailyUse"`

	OrderPlanQty         float64 `json:"orderPlanQty"`
	DemandForecastQty    float64 `json:"demandForecastQty"`
	EndingStockQty       float64 `json:"endingStockQty"`
	EndingStockCoverDays float64 `json:"endingStockCoverDays"`

	Buffer15DaysQty       float64 `json:"buffer15DaysQty"`
	OrderLeadTimeSSDays   float64 `json:"orderLeadTimeSsDays"`
	SafetyStockQty        float64 `json:"safetyStockQty"`
	StockInDays           float64 `json:"stockInDays"`
	TargetSafetyStockDays float64 `json:"targetSafetyStockDays"`

	StockValueUSD types.Money `json:"stockValueUsd"`

	InventoryReorderQty  float64 `json:"inventoryReorderQty"`
	ReorderLevelQty      float64 `json:"reorderLevelQty"`
	MaxInventoryLevelQty float64 `json:"maxInventoryLevelQty"`
	MaxUsageDays         float64 `json:"maxUsageDays"`

	BelowAlert bool `json:"belowAlert"`
}
