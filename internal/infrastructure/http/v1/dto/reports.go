package dto

import (
	"strings"
	"time"

	"stockbook/internal/core/apperror"
	"stockbook/internal/core/id"
	"stockbook/internal/domain/reports"
)

// StockReportRequest binds the stock report query parameters.
type StockReportRequest struct {
	From string `form:"from" binding:"required"`
	To   string `form:"to" binding:"required"`

	// Comma-separated UUID lists.
	WarehouseIDs string `form:"warehouseIds"`
	ProductIDs   string `form:"productIds"`

	Search string `form:"search"`
}

// ToFilter converts the request to a domain filter.
func (r StockReportRequest) ToFilter() (reports.StockReportFilter, error) {
	var f reports.StockReportFilter

	from, err := time.ParseInLocation(DateFormat, r.From, time.UTC)
	if err != nil {
		return f, apperror.NewValidation("invalid from date, expected YYYY-MM-DD").
			WithDetail("from", r.From)
	}
	to, err := time.ParseInLocation(DateFormat, r.To, time.UTC)
	if err != nil {
		return f, apperror.NewValidation("invalid to date, expected YYYY-MM-DD").
			WithDetail("to", r.To)
	}

	warehouseIDs, err := parseIDList(r.WarehouseIDs)
	if err != nil {
		return f, apperror.NewValidation("invalid warehouseIds").WithDetail("warehouseIds", r.WarehouseIDs)
	}
	productIDs, err := parseIDList(r.ProductIDs)
	if err != nil {
		return f, apperror.NewValidation("invalid productIds").WithDetail("productIds", r.ProductIDs)
	}

	return reports.StockReportFilter{
		From:         from,
		To:           to,
		WarehouseIDs: warehouseIDs,
		ProductIDs:   productIDs,
		Search:       r.Search,
	}, nil
}

func parseIDList(s string) ([]id.ID, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	ids := make([]id.ID, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		parsed, err := id.Parse(p)
		if err != nil {
			return nil, err
		}
		ids = append(ids, parsed)
	}
	return ids, nil
}
