package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"stockbook/internal/core/apperror"
	"stockbook/internal/core/id"
	"stockbook/internal/domain/ledger"
	"stockbook/internal/infrastructure/http/v1/dto"
)

// LedgerHandler exposes the stock ledger engine.
type LedgerHandler struct {
	*BaseHandler
	service *ledger.Service
}

// NewLedgerHandler creates a new ledger handler.
func NewLedgerHandler(service *ledger.Service) *LedgerHandler {
	return &LedgerHandler{
		BaseHandler: NewBaseHandler(),
		service:     service,
	}
}

// Record appends the ledger entries of one posted document.
// POST /api/v1/ledger
func (h *LedgerHandler) Record(c *gin.Context) {
	var req dto.RecordEntriesRequest
	if !h.BindJSON(c, &req) {
		return
	}

	entries := make([]ledger.Entry, 0, len(req.Entries))
	for _, in := range req.Entries {
		entry, err := in.ToEntry()
		if err != nil {
			h.Error(c, err)
			return
		}
		entries = append(entries, entry)
	}

	if err := h.service.Record(c.Request.Context(), entries); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "entries recorded")
}

// List replays a product's ledger with running balances.
// GET /api/v1/ledger/:productId?warehouseId=&asOf=
func (h *LedgerHandler) List(c *gin.Context) {
	productID, ok := h.parseProductID(c)
	if !ok {
		return
	}
	warehouseID, ok := h.parseWarehouseQuery(c)
	if !ok {
		return
	}
	asOf, ok := h.parseAsOfQuery(c)
	if !ok {
		return
	}

	lines, err := h.service.RecalcProduct(c.Request.Context(), productID, warehouseID, asOf)
	if err != nil {
		h.Error(c, err)
		return
	}

	resp := dto.LedgerResponse{
		ProductID: productID.String(),
		AsOf:      h.asOfLabel(asOf),
		Lines:     make([]dto.LedgerLineResponse, 0, len(lines)),
	}
	for _, l := range lines {
		resp.Lines = append(resp.Lines, dto.NewLedgerLineResponse(l))
	}
	if len(lines) > 0 {
		resp.Balance = lines[len(lines)-1].RunningQty.Float64()
	}

	h.OK(c, resp)
}

// AvgPrice returns the weighted average price across all warehouses.
// GET /api/v1/ledger/:productId/avg-price?asOf=
func (h *LedgerHandler) AvgPrice(c *gin.Context) {
	productID, ok := h.parseProductID(c)
	if !ok {
		return
	}
	asOf, ok := h.parseAsOfQuery(c)
	if !ok {
		return
	}

	price, err := h.service.AvgPrice(c.Request.Context(), productID, asOf)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.AvgPriceResponse{
		ProductID: productID.String(),
		AsOf:      h.asOfLabel(asOf),
		AvgPrice:  price,
	})
}

// OnHand returns the checkpoint-based stock on hand.
// GET /api/v1/ledger/:productId/on-hand?warehouseId=&asOf=
func (h *LedgerHandler) OnHand(c *gin.Context) {
	productID, ok := h.parseProductID(c)
	if !ok {
		return
	}
	warehouseID, ok := h.parseWarehouseQuery(c)
	if !ok {
		return
	}
	asOf, ok := h.parseAsOfQuery(c)
	if !ok {
		return
	}

	date := h.service.Today()
	if asOf != nil {
		date = *asOf
	}

	qty, err := h.service.StockOnHand(c.Request.Context(), productID, warehouseID, date)
	if err != nil {
		h.Error(c, err)
		return
	}

	resp := dto.OnHandResponse{
		ProductID: productID.String(),
		AsOf:      ledger.DateOf(date).Format(dto.DateFormat),
		Quantity:  qty.Float64(),
	}
	if warehouseID != nil {
		s := warehouseID.String()
		resp.WarehouseID = &s
	}

	h.OK(c, resp)
}

func (h *LedgerHandler) parseProductID(c *gin.Context) (id.ID, bool) {
	productID, err := id.Parse(c.Param("productId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid productId").WithDetail("productId", c.Param("productId")))
		return id.Nil(), false
	}
	return productID, true
}

func (h *LedgerHandler) parseWarehouseQuery(c *gin.Context) (*id.ID, bool) {
	raw := c.Query("warehouseId")
	if raw == "" {
		return nil, true
	}
	warehouseID, err := id.Parse(raw)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid warehouseId").WithDetail("warehouseId", raw))
		return nil, false
	}
	return &warehouseID, true
}

func (h *LedgerHandler) parseAsOfQuery(c *gin.Context) (*time.Time, bool) {
	raw := c.Query("asOf")
	if raw == "" {
		return nil, true
	}
	asOf, err := time.ParseInLocation(dto.DateFormat, raw, time.UTC)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid asOf date, expected YYYY-MM-DD").WithDetail("asOf", raw))
		return nil, false
	}
	return &asOf, true
}

func (h *LedgerHandler) asOfLabel(asOf *time.Time) string {
	if asOf == nil {
		return h.service.Today().Format(dto.DateFormat)
	}
	return asOf.Format(dto.DateFormat)
}
