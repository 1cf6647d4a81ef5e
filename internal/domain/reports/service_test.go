package reports

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockbook/internal/core/clock"
	"stockbook/internal/core/id"
	"stockbook/internal/core/types"
	"stockbook/internal/domain/catalogs/product"
	"stockbook/internal/domain/ledger"
)

type stubProductRepo struct {
	products []product.Product
}

func (s *stubProductRepo) GetByID(_ context.Context, productID id.ID) (*product.Product, error) {
	for _, p := range s.products {
		if p.ID == productID {
			found := p
			return &found, nil
		}
	}
	return nil, nil
}

func (s *stubProductRepo) List(_ context.Context, filter product.Filter) ([]product.Product, error) {
	var out []product.Product
	for _, p := range s.products {
		if len(filter.IDs) > 0 && !containsProductID(filter.IDs, p.ID) {
			continue
		}
		if filter.Search != "" && !matchesSearch(p, filter.Search) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func containsProductID(ids []id.ID, target id.ID) bool {
	for _, v := range ids {
		if v == target {
			return true
		}
	}
	return false
}

// matchesSearch mirrors the repository's case-insensitive substring
// match on name and SKU.
func matchesSearch(p product.Product, term string) bool {
	term = strings.ToLower(term)
	return strings.Contains(strings.ToLower(p.Name), term) ||
		strings.Contains(strings.ToLower(p.SKU), term)
}

// stubLedgerRepo returns canned per-product aggregates.
type stubLedgerRepo struct {
	totals     map[id.ID]ledger.PeriodTotals
	warehouses map[id.ID][]id.ID
	avgTotals  map[id.ID]ledger.ValueTotals

	periodCalls []ledger.PeriodFilter
}

func (s *stubLedgerRepo) Append(context.Context, []ledger.Entry) error { return nil }

func (s *stubLedgerRepo) SelectEntries(context.Context, ledger.EntryQuery) ([]ledger.Entry, error) {
	return nil, nil
}

func (s *stubLedgerRepo) SumQuantity(context.Context, ledger.SumFilter) (types.Quantity, error) {
	return 0, nil
}

func (s *stubLedgerRepo) ValueTotals(_ context.Context, productID id.ID, _ *time.Time) (ledger.ValueTotals, error) {
	if t, ok := s.avgTotals[productID]; ok {
		return t, nil
	}
	return ledger.ValueTotals{InTotal: types.Zero(), OutTotal: types.Zero()}, nil
}

func (s *stubLedgerRepo) MonthlyOutbound(context.Context, id.ID, *id.ID, time.Time, time.Time) ([]ledger.MonthlyQuantity, error) {
	return nil, nil
}

func (s *stubLedgerRepo) Warehouses(_ context.Context, productID id.ID) ([]id.ID, error) {
	return s.warehouses[productID], nil
}

func (s *stubLedgerRepo) PeriodTotals(_ context.Context, f ledger.PeriodFilter) (ledger.PeriodTotals, error) {
	s.periodCalls = append(s.periodCalls, f)
	if t, ok := s.totals[f.ProductID]; ok {
		return t, nil
	}
	return ledger.PeriodTotals{
		BeginValue: types.Zero(),
		InValue:    types.Zero(),
		OutValue:   types.Zero(),
	}, nil
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func qty(v float64) types.Quantity {
	return types.NewQuantityFromFloat64(v)
}

func newReportService(products *stubProductRepo, repo *stubLedgerRepo) *Service {
	ledgerSvc := ledger.NewService(repo, nil, clock.Fixed(day(2025, time.June, 15)))
	return NewService(products, ledgerSvc)
}

func TestGenerate_RequiresPeriod(t *testing.T) {
	svc := newReportService(&stubProductRepo{}, &stubLedgerRepo{})

	_, err := svc.Generate(context.Background(), StockReportFilter{})
	assert.Error(t, err)

	_, err = svc.Generate(context.Background(), StockReportFilter{
		From: day(2025, time.June, 30),
		To:   day(2025, time.June, 1),
	})
	assert.Error(t, err)
}

func TestGenerate_RowMathAndTotals(t *testing.T) {
	productID := id.New()
	warehouseID := id.New()
	products := &stubProductRepo{products: []product.Product{
		{ID: productID, SKU: "WID-1", Name: "Widget", UnitName: "pcs"},
	}}
	repo := &stubLedgerRepo{
		totals: map[id.ID]ledger.PeriodTotals{
			productID: {
				BeginQty:   qty(50),
				BeginValue: types.NewMoney(100),
				InQty:      qty(30),
				InValue:    types.NewMoney(75),
				OutQty:     qty(-20),
				OutValue:   types.NewMoney(-40),
			},
		},
		warehouses: map[id.ID][]id.ID{productID: {warehouseID}},
		avgTotals: map[id.ID]ledger.ValueTotals{
			productID: {
				InQty:    qty(80),
				InTotal:  types.NewMoney(175),
				OutQty:   qty(-20),
				OutTotal: types.NewMoney(-40),
			},
		},
	}
	svc := newReportService(products, repo)

	report, err := svc.Generate(context.Background(), StockReportFilter{
		From: day(2025, time.June, 1),
		To:   day(2025, time.June, 30),
	})
	require.NoError(t, err)
	require.Len(t, report.Rows, 1)

	row := report.Rows[0]
	assert.Equal(t, "Widget", row.ProductName)
	assert.Equal(t, 50.0, row.BeginningQty)
	assert.Equal(t, 30.0, row.StockInQty)
	assert.Equal(t, -20.0, row.StockOutQty)
	// Ending = beginning + in + out (out already negative).
	assert.Equal(t, 60.0, row.EndingQty)
	assert.True(t, row.EndingValue.Equal(types.NewMoney(135)), "got %s", row.EndingValue)
	// (175-40)/(80-20) = 2.25
	assert.True(t, row.AvgPrice.Equal(types.NewMoney(2.25)), "got %s", row.AvgPrice)

	assert.Equal(t, 1, report.TotalRows)
	assert.Equal(t, 50.0, report.TotalBeginningQty)
	assert.Equal(t, 60.0, report.TotalEndingQty)
}

func TestGenerate_DropsAllZeroRows(t *testing.T) {
	active, idle := id.New(), id.New()
	warehouseID := id.New()
	products := &stubProductRepo{products: []product.Product{
		{ID: active, Name: "Moving"},
		{ID: idle, Name: "Dormant"},
	}}
	repo := &stubLedgerRepo{
		totals: map[id.ID]ledger.PeriodTotals{
			active: {InQty: qty(5), InValue: types.NewMoney(10), BeginValue: types.Zero(), OutValue: types.Zero()},
		},
		warehouses: map[id.ID][]id.ID{
			active: {warehouseID},
			idle:   {warehouseID},
		},
	}
	svc := newReportService(products, repo)

	report, err := svc.Generate(context.Background(), StockReportFilter{
		From: day(2025, time.June, 1),
		To:   day(2025, time.June, 30),
	})
	require.NoError(t, err)
	require.Len(t, report.Rows, 1)
	assert.Equal(t, "Moving", report.Rows[0].ProductName)
}

func TestGenerate_SkipsProductsWithNoWarehouses(t *testing.T) {
	productID := id.New()
	products := &stubProductRepo{products: []product.Product{
		{ID: productID, Name: "Never moved"},
	}}
	repo := &stubLedgerRepo{}
	svc := newReportService(products, repo)

	report, err := svc.Generate(context.Background(), StockReportFilter{
		From: day(2025, time.June, 1),
		To:   day(2025, time.June, 30),
	})
	require.NoError(t, err)
	assert.Empty(t, report.Rows)
	// No aggregation query was issued for a product with no ledger
	// presence.
	assert.Empty(t, repo.periodCalls)
}

func TestGenerate_WarehouseFilterPassedThrough(t *testing.T) {
	productID := id.New()
	warehouseID := id.New()
	products := &stubProductRepo{products: []product.Product{
		{ID: productID, Name: "Widget"},
	}}
	repo := &stubLedgerRepo{
		totals: map[id.ID]ledger.PeriodTotals{
			productID: {InQty: qty(1), InValue: types.NewMoney(2), BeginValue: types.Zero(), OutValue: types.Zero()},
		},
	}
	svc := newReportService(products, repo)

	_, err := svc.Generate(context.Background(), StockReportFilter{
		From:         day(2025, time.June, 1),
		To:           day(2025, time.June, 30),
		WarehouseIDs: []id.ID{warehouseID},
	})
	require.NoError(t, err)

	// An explicit warehouse filter skips ledger discovery.
	require.Len(t, repo.periodCalls, 1)
	assert.Equal(t, []id.ID{warehouseID}, repo.periodCalls[0].WarehouseIDs)
}

func TestGenerate_SearchFiltersProducts(t *testing.T) {
	widget, gadget := id.New(), id.New()
	warehouseID := id.New()
	products := &stubProductRepo{products: []product.Product{
		{ID: widget, SKU: "WID-1", Name: "Widget"},
		{ID: gadget, SKU: "GAD-1", Name: "Gadget"},
	}}
	repo := &stubLedgerRepo{
		totals: map[id.ID]ledger.PeriodTotals{
			widget: {InQty: qty(5), InValue: types.NewMoney(10), BeginValue: types.Zero(), OutValue: types.Zero()},
			gadget: {InQty: qty(7), InValue: types.NewMoney(14), BeginValue: types.Zero(), OutValue: types.Zero()},
		},
		warehouses: map[id.ID][]id.ID{
			widget: {warehouseID},
			gadget: {warehouseID},
		},
	}
	svc := newReportService(products, repo)

	report, err := svc.Generate(context.Background(), StockReportFilter{
		From:   day(2025, time.June, 1),
		To:     day(2025, time.June, 30),
		Search: "wid",
	})
	require.NoError(t, err)
	require.Len(t, report.Rows, 1)
	assert.Equal(t, "Widget", report.Rows[0].ProductName)

	// SKU matches too.
	report, err = svc.Generate(context.Background(), StockReportFilter{
		From:   day(2025, time.June, 1),
		To:     day(2025, time.June, 30),
		Search: "GAD",
	})
	require.NoError(t, err)
	require.Len(t, report.Rows, 1)
	assert.Equal(t, "Gadget", report.Rows[0].ProductName)
}
