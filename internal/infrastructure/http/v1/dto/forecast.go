package dto

import (
	"stockbook/internal/core/types"
	"stockbook/internal/domain/forecast"
)

// ForecastResponse is the forecast run result for one warehouse.
type ForecastResponse struct {
	WarehouseID string                         `json:"warehouseId"`
	Products    []forecast.ProductStockMetrics `json:"products"`
	TotalValue  types.Money                    `json:"totalValue"`
}

// NewForecastResponse maps a warehouse forecast run, summing stock
// value across products.
func NewForecastResponse(warehouseID string, products []forecast.ProductStockMetrics) ForecastResponse {
	total := types.Zero()
	for _, p := range products {
		total = total.Add(p.StockValueUSD)
	}
	return ForecastResponse{
		WarehouseID: warehouseID,
		Products:    products,
		TotalValue:  total,
	}
}
