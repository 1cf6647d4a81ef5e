package reports

import (
	"context"
	"fmt"
	"math"

	"stockbook/internal/core/apperror"
	"stockbook/internal/domain/catalogs/product"
	"stockbook/internal/domain/ledger"
	"stockbook/pkg/logger"
)

// Service generates the period stock report by composing the ledger
// engine's aggregations per product.
type Service struct {
	products product.Repository
	ledger   *ledger.Service
}

// NewService creates the reports service.
func NewService(products product.Repository, ledgerSvc *ledger.Service) *Service {
	return &Service{
		products: products,
		ledger:   ledgerSvc,
	}
}

// Generate builds one row per product with movement in the period:
// beginning balance/value before the range, in/out within it, derived
// ending, and the current average price. Rows with beginning, in and
// out all zero are dropped. With no warehouse filter, the warehouses
// that ever moved each product are discovered from the ledger rather
// than assumed.
func (s *Service) Generate(ctx context.Context, filter StockReportFilter) (*StockReport, error) {
	if filter.From.IsZero() || filter.To.IsZero() {
		return nil, apperror.NewValidation("from and to are required")
	}
	if filter.From.After(filter.To) {
		return nil, apperror.NewValidation("from must be before to")
	}

	prods, err := s.products.List(ctx, product.Filter{
		IDs:    filter.ProductIDs,
		Search: filter.Search,
	})
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	report := &StockReport{
		From: ledger.DateOf(filter.From),
		To:   ledger.DateOf(filter.To),
		Rows: make([]StockReportRow, 0, len(prods)),
	}

	for _, p := range prods {
		warehouses := filter.WarehouseIDs
		if len(warehouses) == 0 {
			warehouses, err = s.ledger.ActiveWarehouses(ctx, p.ID)
			if err != nil {
				return nil, fmt.Errorf("warehouses for %s: %w", p.ID, err)
			}
			if len(warehouses) == 0 {
				continue
			}
		}

		totals, err := s.ledger.PeriodTotals(ctx, ledger.PeriodFilter{
			ProductID:    p.ID,
			WarehouseIDs: warehouses,
			From:         filter.From,
			To:           filter.To,
		})
		if err != nil {
			return nil, fmt.Errorf("totals for %s: %w", p.ID, err)
		}
		if totals.IsZero() {
			continue
		}

		avgPrice, err := s.ledger.AvgPrice(ctx, p.ID, nil)
		if err != nil {
			return nil, fmt.Errorf("avg price for %s: %w", p.ID, err)
		}

		endingQty := totals.BeginQty + totals.InQty + totals.OutQty
		endingValue := totals.BeginValue.Add(totals.InValue).Add(totals.OutValue)

		row := StockReportRow{
			ProductID:   p.ID,
			SKU:         p.SKU,
			ProductName: p.Name,
			UnitName:    p.UnitName,

			BeginningQty:   round2(totals.BeginQty.Float64()),
			BeginningValue: totals.BeginValue,
			StockInQty:     round2(totals.InQty.Float64()),
			StockInValue:   totals.InValue,
			StockOutQty:    round2(totals.OutQty.Float64()),
			StockOutValue:  totals.OutValue,
			EndingQty:      round2(endingQty.Float64()),
			EndingValue:    endingValue,
			AvgPrice:       avgPrice,
		}
		report.Rows = append(report.Rows, row)

		report.TotalBeginningQty += row.BeginningQty
		report.TotalStockInQty += row.StockInQty
		report.TotalStockOutQty += row.StockOutQty
		report.TotalEndingQty += row.EndingQty
	}

	report.TotalRows = len(report.Rows)

	logger.Debug(ctx, "stock report generated",
		"from", report.From,
		"to", report.To,
		"rows", report.TotalRows,
	)
	return report, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
