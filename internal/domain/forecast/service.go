package forecast

import (
	"context"
	"fmt"
	"math"
	"time"

	"stockbook/internal/core/clock"
	"stockbook/internal/core/id"
	"stockbook/internal/core/types"
	"stockbook/internal/domain/ledger"
	"stockbook/pkg/logger"
)

const (
	// workingDaysPerMonth approximates working days in one month and
	// converts monthly usage to daily usage throughout the engine.
	workingDaysPerMonth = 21.0

	// bufferDivisor converts monthly usage into roughly 15 working
	// days of buffer stock (21 / 1.4 = 15).
	bufferDivisor = 1.4
)

// Service computes reorder and safety-stock metrics. All reads are
// stateless aggregations; every division is guarded, zero denominators
// yield 0, never an error.
type Service struct {
	configs ConfigRepository
	ledger  *ledger.Service
	clock   clock.Clock
}

// NewService creates the forecast service.
func NewService(configs ConfigRepository, ledgerSvc *ledger.Service, clk clock.Clock) *Service {
	if clk == nil {
		clk = clock.System()
	}
	return &Service{
		configs: configs,
		ledger:  ledgerSvc,
		clock:   clk,
	}
}

// CalculateWarehouse computes metrics for every tracked product in a
// warehouse. Products without a config row are not tracked and simply
// absent from the result.
func (s *Service) CalculateWarehouse(ctx context.Context, warehouseID id.ID) ([]ProductStockMetrics, error) {
	configs, err := s.configs.ListByWarehouse(ctx, warehouseID)
	if err != nil {
		return nil, fmt.Errorf("list configs: %w", err)
	}

	today := clock.Today(s.clock)
	threeMonthsAgo := today.AddDate(0, -3, 0)
	sixMonthsAgo := today.AddDate(0, -6, 0)

	metrics := make([]ProductStockMetrics, 0, len(configs))
	for _, cfg := range configs {
		m, err := s.CalculateProductStock(ctx, cfg, warehouseID, threeMonthsAgo, sixMonthsAgo)
		if err != nil {
			return nil, fmt.Errorf("product %s: %w", cfg.ProductID, err)
		}
		metrics = append(metrics, m)
	}

	logger.Debug(ctx, "warehouse forecast calculated",
		"warehouse_id", warehouseID,
		"products", len(metrics),
	)
	return metrics, nil
}

// CalculateForProduct computes metrics for a single (warehouse,
// product) pair. Returns (nil, nil) when the product is not tracked.
func (s *Service) CalculateForProduct(ctx context.Context, warehouseID, productID id.ID) (*ProductStockMetrics, error) {
	cfg, err := s.configs.Get(ctx, warehouseID, productID)
	if err != nil {
		return nil, fmt.Errorf("get config: %w", err)
	}
	if cfg == nil {
		return nil, nil
	}

	today := clock.Today(s.clock)
	m, err := s.CalculateProductStock(ctx, *cfg, warehouseID, today.AddDate(0, -3, 0), today.AddDate(0, -6, 0))
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// CalculateProductStock computes the full metrics record for one
// config. The month anchors bound the trailing usage windows; monthly
// usage averaging counts only months with outbound movement (a month
// with zero usage is excluded, not averaged in as 0).
func (s *Service) CalculateProductStock(ctx context.Context, cfg Config, warehouseID id.ID, threeMonthsAgo, sixMonthsAgo time.Time) (ProductStockMetrics, error) {
	today := clock.Today(s.clock)
	_, prevMonthEnd := ledger.PreviousMonthRange(today)

	beginning, err := s.ledger.StockOnHand(ctx, cfg.ProductID, &warehouseID, prevMonthEnd)
	if err != nil {
		return ProductStockMetrics{}, fmt.Errorf("beginning stock: %w", err)
	}

	onHand, err := s.ledger.StockOnHand(ctx, cfg.ProductID, &warehouseID, today)
	if err != nil {
		return ProductStockMetrics{}, fmt.Errorf("stock on hand: %w", err)
	}

	avgPrice, err := s.ledger.GlobalAvgPrice(ctx, cfg.ProductID, &today)
	if err != nil {
		return ProductStockMetrics{}, fmt.Errorf("avg price: %w", err)
	}

	months, err := s.ledger.OutboundUsageByMonth(ctx, cfg.ProductID, &warehouseID, sixMonthsAgo, today)
	if err != nil {
		return ProductStockMetrics{}, fmt.Errorf("usage history: %w", err)
	}

	usage := summarizeUsage(months, threeMonthsAgo, today)

	avgUsage := usage.avg3m
	if avgUsage <= 0 {
		avgUsage = usage.avg6m
	}

	avgDailyUse := avgUsage / workingDaysPerMonth
	orderPlanQty := math.Ceil(avgDailyUse) * math.Ceil(cfg.TargetInvTurnoverDays)
	demandForecastQty := math.Ceil(avgDailyUse) * math.Ceil(cfg.StockOutForecastDays)

	beginningQty := beginning.Float64()
	endingStockQty := beginningQty + orderPlanQty - demandForecastQty

	endingStockCoverDays := 0.0
	if demandForecastQty > 0 {
		endingStockCoverDays = (endingStockQty / demandForecastQty) * workingDaysPerMonth
	}

	buffer15DaysQty := avgUsage / bufferDivisor
	orderLeadTimeSSDays := cfg.OrderLeadtimeDays / workingDaysPerMonth
	safetyStockQty := math.Ceil(avgUsage*orderLeadTimeSSDays + buffer15DaysQty)

	stockInDays := 0.0
	if avgUsage > 0 {
		stockInDays = math.Ceil((safetyStockQty / avgUsage) * workingDaysPerMonth)
	}

	inventoryReorderQty := math.Ceil(avgDailyUse) * cfg.TargetInvTurnoverDays
	reorderLevelQty := avgDailyUse*cfg.OrderLeadtimeDays + safetyStockQty + buffer15DaysQty
	maxInventoryLevelQty := reorderLevelQty + inventoryReorderQty

	maxUsageDays := 0.0
	if avgDailyUse > 0 {
		maxUsageDays = maxInventoryLevelQty / avgDailyUse
	}

	return ProductStockMetrics{
		WarehouseID: warehouseID,
		ProductID:   cfg.ProductID,

		BeginningStockQty: round2(beginningQty),
		CurrentStockQty:   round2(onHand.Float64()),
		AvgPrice:          avgPrice,

		AvgUsage3M:     round2(usage.avg3m),
		AvgUsage6M:     round2(usage.avg6m),
		AvgUsage:       round2(avgUsage),
		LastMonthUsage: round2(usage.lastMonth),
		AvgDailyUse:    round2(avgDailyUse),

		OrderPlanQty:         round2(orderPlanQty),
		DemandForecastQty:    round2(demandForecastQty),
		EndingStockQty:       round2(endingStockQty),
		EndingStockCoverDays: round2(endingStockCoverDays),

		Buffer15DaysQty:       round2(buffer15DaysQty),
		OrderLeadTimeSSDays:   round2(orderLeadTimeSSDays),
		SafetyStockQty:        round2(safetyStockQty),
		StockInDays:           round2(stockInDays),
		TargetSafetyStockDays: round2(stockInDays),

		StockValueUSD: avgPrice.Mul(types.NewMoney(endingStockQty)).Round(2),

		InventoryReorderQty:  round2(inventoryReorderQty),
		ReorderLevelQty:      round2(reorderLevelQty),
		MaxInventoryLevelQty: round2(maxInventoryLevelQty),
		MaxUsageDays:         round2(maxUsageDays),

		BelowAlert: cfg.AlertQuantity.IsPositive() && onHand <= cfg.AlertQuantity,
	}, nil
}

type usageSummary struct {
	avg3m     float64
	avg6m     float64
	lastMonth float64
}

// summarizeUsage averages the monthly outbound sums. Months absent
// from the slice had no outbound movement and stay excluded from both
// averages.
func summarizeUsage(months []ledger.MonthlyQuantity, threeMonthsAgo, today time.Time) usageSummary {
	threeMonthCutoff := ledger.StartOfMonth(threeMonthsAgo)
	prevMonthStart, _ := ledger.PreviousMonthRange(today)

	var sum3, sum6 float64
	var n3, n6 int
	var lastMonth float64

	for _, m := range months {
		qty := m.Quantity.Abs().Float64()
		if qty <= 0 {
			continue
		}
		sum6 += qty
		n6++
		if !m.Month.Before(threeMonthCutoff) {
			sum3 += qty
			n3++
		}
		if ledger.SameMonth(m.Month, prevMonthStart) {
			lastMonth = qty
		}
	}

	s := usageSummary{lastMonth: lastMonth}
	if n3 > 0 {
		s.avg3m = sum3 / float64(n3)
	}
	if n6 > 0 {
		s.avg6m = sum6 / float64(n6)
	}
	return s
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
