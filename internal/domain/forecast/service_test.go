package forecast

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockbook/internal/core/clock"
	"stockbook/internal/core/id"
	"stockbook/internal/core/types"
	"stockbook/internal/domain/ledger"
)

// stubLedgerRepo feeds the ledger engine canned aggregates.
type stubLedgerRepo struct {
	sumFn   func(ledger.SumFilter) types.Quantity
	totals  ledger.ValueTotals
	monthly []ledger.MonthlyQuantity
}

func (s *stubLedgerRepo) Append(context.Context, []ledger.Entry) error { return nil }

func (s *stubLedgerRepo) SelectEntries(context.Context, ledger.EntryQuery) ([]ledger.Entry, error) {
	return nil, nil
}

func (s *stubLedgerRepo) SumQuantity(_ context.Context, f ledger.SumFilter) (types.Quantity, error) {
	if s.sumFn == nil {
		return 0, nil
	}
	return s.sumFn(f), nil
}

func (s *stubLedgerRepo) ValueTotals(context.Context, id.ID, *time.Time) (ledger.ValueTotals, error) {
	return s.totals, nil
}

func (s *stubLedgerRepo) MonthlyOutbound(context.Context, id.ID, *id.ID, time.Time, time.Time) ([]ledger.MonthlyQuantity, error) {
	return s.monthly, nil
}

func (s *stubLedgerRepo) Warehouses(context.Context, id.ID) ([]id.ID, error) { return nil, nil }

func (s *stubLedgerRepo) PeriodTotals(context.Context, ledger.PeriodFilter) (ledger.PeriodTotals, error) {
	return ledger.PeriodTotals{}, nil
}

type stubConfigRepo struct {
	configs []Config
}

func (s *stubConfigRepo) Get(_ context.Context, warehouseID, productID id.ID) (*Config, error) {
	for _, c := range s.configs {
		if c.WarehouseID == warehouseID && c.ProductID == productID {
			cfg := c
			return &cfg, nil
		}
	}
	return nil, nil
}

func (s *stubConfigRepo) ListByWarehouse(_ context.Context, warehouseID id.ID) ([]Config, error) {
	var out []Config
	for _, c := range s.configs {
		if c.WarehouseID == warehouseID {
			out = append(out, c)
		}
	}
	return out, nil
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

var today = day(2025, time.June, 15)

// newEngine builds a forecast service over the stub ledger frozen at
// 2025-06-15.
func newEngine(repo *stubLedgerRepo, configs *stubConfigRepo) *Service {
	clk := clock.Fixed(today)
	ledgerSvc := ledger.NewService(repo, nil, clk)
	return NewService(configs, ledgerSvc, clk)
}

// scenarioRepo models: April checkpoint 60, May movement +10/-20
// (beginning 50); May checkpoint 100, June movement +20/-30 (on hand
// 90); remaining book value 200 over 80 units (avg 2.50); trailing
// outbound usage 180/210/240 for March/April/May.
func scenarioRepo() *stubLedgerRepo {
	return &stubLedgerRepo{
		sumFn: func(f ledger.SumFilter) types.Quantity {
			var t ledger.TransactionType
			if len(f.Types) == 1 {
				t = f.Types[0]
			}
			switch {
			case t == ledger.TypeStockCount && f.From.Equal(day(2025, time.April, 1)):
				return types.NewQuantityFromFloat64(60)
			case t == ledger.TypeStockCount && f.From.Equal(day(2025, time.May, 1)):
				return types.NewQuantityFromFloat64(100)
			case t == ledger.TypeStockIn && f.From.Equal(day(2025, time.May, 1)):
				return types.NewQuantityFromFloat64(10)
			case t == ledger.TypeStockOut && f.From.Equal(day(2025, time.May, 1)):
				return types.NewQuantityFromFloat64(-20)
			case t == ledger.TypeStockIn && f.From.Equal(day(2025, time.June, 1)):
				return types.NewQuantityFromFloat64(20)
			case t == ledger.TypeStockOut && f.From.Equal(day(2025, time.June, 1)):
				return types.NewQuantityFromFloat64(-30)
			}
			return 0
		},
		totals: ledger.ValueTotals{
			InQty:    types.NewQuantityFromFloat64(100),
			InTotal:  types.NewMoney(250),
			OutQty:   types.NewQuantityFromFloat64(-20),
			OutTotal: types.NewMoney(-50),
		},
		monthly: []ledger.MonthlyQuantity{
			{Month: day(2025, time.March, 1), Quantity: types.NewQuantityFromFloat64(180)},
			{Month: day(2025, time.April, 1), Quantity: types.NewQuantityFromFloat64(210)},
			{Month: day(2025, time.May, 1), Quantity: types.NewQuantityFromFloat64(240)},
		},
	}
}

func TestCalculateForProduct_FullScenario(t *testing.T) {
	warehouseID, productID := id.New(), id.New()
	cfg := Config{
		WarehouseID:           warehouseID,
		ProductID:             productID,
		AlertQuantity:         types.NewQuantityFromFloat64(100),
		StockOutForecastDays:  15,
		TargetInvTurnoverDays: 30,
		OrderLeadtimeDays:     7,
	}
	svc := newEngine(scenarioRepo(), &stubConfigRepo{configs: []Config{cfg}})

	m, err := svc.CalculateForProduct(context.Background(), warehouseID, productID)
	require.NoError(t, err)
	require.NotNil(t, m)

	assert.Equal(t, 50.0, m.BeginningStockQty)
	assert.Equal(t, 90.0, m.CurrentStockQty)
	assert.Equal(t, "2.5", m.AvgPrice.String())

	assert.Equal(t, 210.0, m.AvgUsage3M)
	assert.Equal(t, 210.0, m.AvgUsage6M)
	assert.Equal(t, 210.0, m.AvgUsage)
	assert.Equal(t, 240.0, m.LastMonthUsage)
	assert.Equal(t, 10.0, m.AvgDailyUse)

	assert.Equal(t, 300.0, m.OrderPlanQty)
	assert.Equal(t, 150.0, m.DemandForecastQty)
	assert.Equal(t, 200.0, m.EndingStockQty)
	assert.Equal(t, 28.0, m.EndingStockCoverDays)

	assert.Equal(t, 150.0, m.Buffer15DaysQty)
	assert.Equal(t, 0.33, m.OrderLeadTimeSSDays)
	assert.Equal(t, 220.0, m.SafetyStockQty)
	assert.Equal(t, 22.0, m.StockInDays)
	assert.Equal(t, 22.0, m.TargetSafetyStockDays)

	assert.Equal(t, "500", m.StockValueUSD.String())

	assert.Equal(t, 300.0, m.InventoryReorderQty)
	assert.Equal(t, 440.0, m.ReorderLevelQty)
	assert.Equal(t, 740.0, m.MaxInventoryLevelQty)
	assert.Equal(t, 74.0, m.MaxUsageDays)

	// On hand 90 is at the 100 alert threshold.
	assert.True(t, m.BelowAlert)
}

func TestCalculateForProduct_NotTracked(t *testing.T) {
	svc := newEngine(scenarioRepo(), &stubConfigRepo{})

	m, err := svc.CalculateForProduct(context.Background(), id.New(), id.New())
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestCalculateWarehouse_OnlyTrackedProducts(t *testing.T) {
	warehouseID := id.New()
	configs := &stubConfigRepo{configs: []Config{
		{WarehouseID: warehouseID, ProductID: id.New(), TargetInvTurnoverDays: 30},
		{WarehouseID: warehouseID, ProductID: id.New(), TargetInvTurnoverDays: 45},
		{WarehouseID: id.New(), ProductID: id.New(), TargetInvTurnoverDays: 10},
	}}
	svc := newEngine(scenarioRepo(), configs)

	metrics, err := svc.CalculateWarehouse(context.Background(), warehouseID)
	require.NoError(t, err)
	assert.Len(t, metrics, 2)
}

func TestCalculateProductStock_NoUsageNoPanic(t *testing.T) {
	warehouseID, productID := id.New(), id.New()
	cfg := Config{
		WarehouseID:           warehouseID,
		ProductID:             productID,
		StockOutForecastDays:  15,
		TargetInvTurnoverDays: 30,
		OrderLeadtimeDays:     7,
	}
	repo := &stubLedgerRepo{}
	svc := newEngine(repo, &stubConfigRepo{configs: []Config{cfg}})

	m, err := svc.CalculateForProduct(context.Background(), warehouseID, productID)
	require.NoError(t, err)
	require.NotNil(t, m)

	// Every guarded division yields 0, never NaN or Inf.
	assert.Equal(t, 0.0, m.AvgUsage)
	assert.Equal(t, 0.0, m.AvgDailyUse)
	assert.Equal(t, 0.0, m.DemandForecastQty)
	assert.Equal(t, 0.0, m.EndingStockCoverDays)
	assert.Equal(t, 0.0, m.StockInDays)
	assert.Equal(t, 0.0, m.MaxUsageDays)
	assert.False(t, m.BelowAlert)
}

func TestCalculateProductStock_FallsBackToSixMonthAverage(t *testing.T) {
	warehouseID, productID := id.New(), id.New()
	cfg := Config{
		WarehouseID:           warehouseID,
		ProductID:             productID,
		StockOutForecastDays:  15,
		TargetInvTurnoverDays: 30,
	}
	repo := scenarioRepo()
	// Usage only in the older half of the window.
	repo.monthly = []ledger.MonthlyQuantity{
		{Month: day(2025, time.January, 1), Quantity: types.NewQuantityFromFloat64(90)},
		{Month: day(2025, time.February, 1), Quantity: types.NewQuantityFromFloat64(110)},
	}
	svc := newEngine(repo, &stubConfigRepo{configs: []Config{cfg}})

	m, err := svc.CalculateForProduct(context.Background(), warehouseID, productID)
	require.NoError(t, err)
	require.NotNil(t, m)

	assert.Equal(t, 0.0, m.AvgUsage3M)
	assert.Equal(t, 100.0, m.AvgUsage6M)
	assert.Equal(t, 100.0, m.AvgUsage)
}

func TestSummarizeUsage_ExcludesZeroMonths(t *testing.T) {
	threeMonthsAgo := day(2025, time.March, 15)

	// Only one month moved; absent months do not drag the average
	// toward zero.
	months := []ledger.MonthlyQuantity{
		{Month: day(2025, time.May, 1), Quantity: types.NewQuantityFromFloat64(120)},
	}
	usage := summarizeUsage(months, threeMonthsAgo, today)
	assert.Equal(t, 120.0, usage.avg3m)
	assert.Equal(t, 120.0, usage.avg6m)
	assert.Equal(t, 120.0, usage.lastMonth)

	// An explicit zero month is skipped the same way.
	months = append(months, ledger.MonthlyQuantity{Month: day(2025, time.April, 1)})
	usage = summarizeUsage(months, threeMonthsAgo, today)
	assert.Equal(t, 120.0, usage.avg3m)
}

func TestSummarizeUsage_ThreeMonthWindow(t *testing.T) {
	threeMonthsAgo := day(2025, time.March, 15)

	months := []ledger.MonthlyQuantity{
		{Month: day(2025, time.January, 1), Quantity: types.NewQuantityFromFloat64(300)},
		{Month: day(2025, time.March, 1), Quantity: types.NewQuantityFromFloat64(100)},
		{Month: day(2025, time.May, 1), Quantity: types.NewQuantityFromFloat64(200)},
	}
	usage := summarizeUsage(months, threeMonthsAgo, today)

	// March sits on the cutoff month and counts toward both windows.
	assert.Equal(t, 150.0, usage.avg3m)
	assert.Equal(t, 200.0, usage.avg6m)
	assert.Equal(t, 200.0, usage.lastMonth)
}

func TestCalculateProductStock_MetricBounds(t *testing.T) {
	warehouseID, productID := id.New(), id.New()

	tests := []struct {
		name    string
		cfg     Config
		monthly []ledger.MonthlyQuantity
	}{
		{
			name: "typical config",
			cfg: Config{
				StockOutForecastDays:  15,
				TargetInvTurnoverDays: 30,
				OrderLeadtimeDays:     7,
			},
			monthly: scenarioRepo().monthly,
		},
		{
			name:    "zero lead time",
			cfg:     Config{StockOutForecastDays: 15, TargetInvTurnoverDays: 30},
			monthly: scenarioRepo().monthly,
		},
		{
			name:    "zero turnover days",
			cfg:     Config{StockOutForecastDays: 15, OrderLeadtimeDays: 7},
			monthly: scenarioRepo().monthly,
		},
		{
			name: "no usage history",
			cfg: Config{
				StockOutForecastDays:  15,
				TargetInvTurnoverDays: 30,
				OrderLeadtimeDays:     7,
			},
		},
		{
			name: "all zero config",
			cfg:  Config{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.cfg.WarehouseID = warehouseID
			tt.cfg.ProductID = productID
			repo := scenarioRepo()
			repo.monthly = tt.monthly
			svc := newEngine(repo, &stubConfigRepo{configs: []Config{tt.cfg}})

			m, err := svc.CalculateForProduct(context.Background(), warehouseID, productID)
			require.NoError(t, err)
			require.NotNil(t, m)

			assert.GreaterOrEqual(t, m.SafetyStockQty, 0.0)
			assert.GreaterOrEqual(t, m.ReorderLevelQty, 0.0)
			assert.GreaterOrEqual(t, m.MaxInventoryLevelQty, m.ReorderLevelQty)
		})
	}
}
