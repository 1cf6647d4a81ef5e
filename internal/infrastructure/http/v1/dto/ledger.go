package dto

import (
	"time"

	"stockbook/internal/core/apperror"
	"stockbook/internal/core/id"
	"stockbook/internal/core/types"
	"stockbook/internal/domain/ledger"
)

// DateFormat is the wire format for transaction dates.
const DateFormat = "2006-01-02"

// RecordEntriesRequest carries the ledger entries of one posted
// document.
type RecordEntriesRequest struct {
	Entries []EntryInput `json:"entries" binding:"required,min=1"`
}

// EntryInput is one ledger entry to append.
type EntryInput struct {
	ProductID       string  `json:"productId" binding:"required"`
	WarehouseID     *string `json:"warehouseId"`
	TransactionDate string  `json:"transactionDate" binding:"required"`
	TransactionType string  `json:"transactionType" binding:"required"`

	// Quantity is signed: positive inbound, negative outbound.
	Quantity   float64     `json:"quantity" binding:"required"`
	UnitPrice  types.Money `json:"unitPrice"`
	TotalPrice types.Money `json:"totalPrice"`

	ParentID   *string `json:"parentId"`
	ParentType string  `json:"parentType"`
}

// ToEntry converts the input to a domain entry.
func (in EntryInput) ToEntry() (ledger.Entry, error) {
	var e ledger.Entry

	productID, err := id.Parse(in.ProductID)
	if err != nil {
		return e, apperror.NewValidation("invalid productId").WithDetail("productId", in.ProductID)
	}

	date, err := time.ParseInLocation(DateFormat, in.TransactionDate, time.UTC)
	if err != nil {
		return e, apperror.NewValidation("invalid transactionDate, expected YYYY-MM-DD").
			WithDetail("transactionDate", in.TransactionDate)
	}

	e = ledger.Entry{
		ProductID:       productID,
		TransactionDate: date,
		TransactionType: ledger.TransactionType(in.TransactionType),
		Quantity:        types.NewQuantityFromFloat64(in.Quantity),
		UnitPrice:       in.UnitPrice,
		TotalPrice:      in.TotalPrice,
		ParentType:      in.ParentType,
	}

	if in.WarehouseID != nil && *in.WarehouseID != "" {
		warehouseID, err := id.Parse(*in.WarehouseID)
		if err != nil {
			return e, apperror.NewValidation("invalid warehouseId").WithDetail("warehouseId", *in.WarehouseID)
		}
		e.WarehouseID = &warehouseID
	}
	if in.ParentID != nil && *in.ParentID != "" {
		parentID, err := id.Parse(*in.ParentID)
		if err != nil {
			return e, apperror.NewValidation("invalid parentId").WithDetail("parentId", *in.ParentID)
		}
		e.ParentID = &parentID
	}

	return e, nil
}

// LedgerLineResponse is one replayed entry with its running balance.
type LedgerLineResponse struct {
	ID              int64       `json:"id"`
	ProductID       string      `json:"productId"`
	WarehouseID     *string     `json:"warehouseId,omitempty"`
	TransactionDate string      `json:"transactionDate"`
	TransactionType string      `json:"transactionType"`
	Quantity        float64     `json:"quantity"`
	UnitPrice       types.Money `json:"unitPrice"`
	TotalPrice      types.Money `json:"totalPrice"`
	RunningQty      float64     `json:"runningQty"`
}

// LedgerResponse is the replay result for one product.
type LedgerResponse struct {
	ProductID string               `json:"productId"`
	AsOf      string               `json:"asOf"`
	Lines     []LedgerLineResponse `json:"lines"`
	Balance   float64              `json:"balance"`
}

// NewLedgerLineResponse maps a domain line.
func NewLedgerLineResponse(l ledger.Line) LedgerLineResponse {
	resp := LedgerLineResponse{
		ID:              l.ID,
		ProductID:       l.ProductID.String(),
		TransactionDate: l.TransactionDate.Format(DateFormat),
		TransactionType: string(l.TransactionType),
		Quantity:        l.Quantity.Float64(),
		UnitPrice:       l.UnitPrice,
		TotalPrice:      l.TotalPrice,
		RunningQty:      l.RunningQty.Float64(),
	}
	if l.WarehouseID != nil {
		s := l.WarehouseID.String()
		resp.WarehouseID = &s
	}
	return resp
}

// AvgPriceResponse is the weighted average price of a product.
type AvgPriceResponse struct {
	ProductID string      `json:"productId"`
	AsOf      string      `json:"asOf"`
	AvgPrice  types.Money `json:"avgPrice"`
}

// OnHandResponse is the checkpoint-based stock on hand.
type OnHandResponse struct {
	ProductID   string  `json:"productId"`
	WarehouseID *string `json:"warehouseId,omitempty"`
	AsOf        string  `json:"asOf"`
	Quantity    float64 `json:"quantity"`
}
