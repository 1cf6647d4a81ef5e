package handlers

import (
	"github.com/gin-gonic/gin"

	"stockbook/internal/core/apperror"
	"stockbook/internal/core/id"
	"stockbook/internal/domain/forecast"
	"stockbook/internal/infrastructure/http/v1/dto"
)

// ForecastHandler exposes the reorder forecast engine.
type ForecastHandler struct {
	*BaseHandler
	service *forecast.Service
}

// NewForecastHandler creates a new forecast handler.
func NewForecastHandler(service *forecast.Service) *ForecastHandler {
	return &ForecastHandler{
		BaseHandler: NewBaseHandler(),
		service:     service,
	}
}

// Warehouse runs the forecast for every tracked product in a warehouse.
// GET /api/v1/forecast/:warehouseId
func (h *ForecastHandler) Warehouse(c *gin.Context) {
	warehouseID, ok := h.parseWarehouseID(c)
	if !ok {
		return
	}

	products, err := h.service.CalculateWarehouse(c.Request.Context(), warehouseID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.NewForecastResponse(warehouseID.String(), products))
}

// Product runs the forecast for one (warehouse, product) pair.
// GET /api/v1/forecast/:warehouseId/products/:productId
func (h *ForecastHandler) Product(c *gin.Context) {
	warehouseID, ok := h.parseWarehouseID(c)
	if !ok {
		return
	}
	productID, err := id.Parse(c.Param("productId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid productId").WithDetail("productId", c.Param("productId")))
		return
	}

	metrics, err := h.service.CalculateForProduct(c.Request.Context(), warehouseID, productID)
	if err != nil {
		h.Error(c, err)
		return
	}
	if metrics == nil {
		h.Error(c, apperror.NewNotFound("reorder config", productID.String()))
		return
	}

	h.OK(c, metrics)
}

func (h *ForecastHandler) parseWarehouseID(c *gin.Context) (id.ID, bool) {
	warehouseID, err := id.Parse(c.Param("warehouseId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid warehouseId").WithDetail("warehouseId", c.Param("warehouseId")))
		return id.Nil(), false
	}
	return warehouseID, true
}
