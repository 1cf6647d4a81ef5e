package ledger

import (
	"context"
	"fmt"
	"time"

	"stockbook/internal/core/apperror"
	"stockbook/internal/core/clock"
	"stockbook/internal/core/id"
	"stockbook/internal/core/tx"
	"stockbook/internal/core/types"
	"stockbook/pkg/logger"
)

// Service is the stock ledger engine. Every read operation is a pure,
// stateless aggregation over the append-only store: no locks, no
// engine-level state between calls, safe for concurrent use. Storage
// failures propagate wrapped; missing data yields zero values.
type Service struct {
	repo      Repository
	txManager tx.Manager
	clock     clock.Clock
}

// NewService creates the ledger service. txManager is only used by
// Record; read-only callers may pass nil.
func NewService(repo Repository, txManager tx.Manager, clk clock.Clock) *Service {
	if clk == nil {
		clk = clock.System()
	}
	return &Service{
		repo:      repo,
		txManager: txManager,
		clock:     clk,
	}
}

// Record appends the ledger entries of one posted document inside a
// single transaction. Either every entry commits or none does; a
// partial commit would silently corrupt every downstream calculation.
func (s *Service) Record(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}

	for i := range entries {
		// The ledger is append-only: a row that already has a database
		// ID was persisted once, and posting it again would rewrite
		// history behind every downstream aggregate.
		if entries[i].ID != 0 {
			return fmt.Errorf("entry %d: %w", i,
				apperror.NewBusinessRule(apperror.CodeLedgerImmutable,
					"ledger entries cannot be reposted").
					WithDetail("id", entries[i].ID))
		}
		if err := entries[i].Validate(ctx); err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
		entries[i].TransactionDate = DateOf(entries[i].TransactionDate)
		if entries[i].CreatedAt.IsZero() {
			entries[i].CreatedAt = s.clock.Now()
		}
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Append(ctx, entries)
	})
	if err != nil {
		return fmt.Errorf("append entries: %w", err)
	}

	logger.Info(ctx, "recorded ledger entries",
		"count", len(entries),
		"product_id", entries[0].ProductID,
	)
	return nil
}

// RecalcProduct replays the ledger slice for a product (optionally one
// warehouse) up to and including asOf, and returns the full ordered
// sequence with a running balance per entry. asOf defaults to the
// current date. An empty selection is valid and returns an empty
// slice, never an error; callers that only need the balance take the
// last line's RunningQty (0 when empty).
func (s *Service) RecalcProduct(ctx context.Context, productID id.ID, warehouseID *id.ID, asOf *time.Time) ([]Line, error) {
	date := s.asOfDate(asOf)
	entries, err := s.repo.SelectEntries(ctx, EntryQuery{
		ProductID:   productID,
		WarehouseID: warehouseID,
		To:          &date,
	})
	if err != nil {
		return nil, fmt.Errorf("select entries: %w", err)
	}

	lines := make([]Line, len(entries))
	var running types.Quantity
	for i, e := range entries {
		running += e.Quantity
		lines[i] = Line{Entry: e, RunningQty: running}
	}
	return lines, nil
}

// Balance returns the reconstructed balance as of asOf: the last
// running quantity of RecalcProduct, 0 for an empty ledger. Unlike
// StockOnHand it is exact over full history.
func (s *Service) Balance(ctx context.Context, productID id.ID, warehouseID *id.ID, asOf *time.Time) (types.Quantity, error) {
	lines, err := s.RecalcProduct(ctx, productID, warehouseID, asOf)
	if err != nil {
		return 0, err
	}
	if len(lines) == 0 {
		return 0, nil
	}
	return lines[len(lines)-1].RunningQty, nil
}

// AvgPrice computes the net weighted-average unit cost for a product
// across all warehouses, optionally bounded by asOf: remaining book
// value divided by remaining quantity, rounded to 6 decimal places.
// Outbound entries are assumed already priced at the average that
// applied when they were posted; historical layered costs are never
// recomputed. Zero or negative remaining quantity yields 0.
func (s *Service) AvgPrice(ctx context.Context, productID id.ID, asOf *time.Time) (types.Money, error) {
	totals, err := s.repo.ValueTotals(ctx, productID, asOf)
	if err != nil {
		return types.Zero(), fmt.Errorf("value totals: %w", err)
	}

	balanceQty := totals.InQty + totals.OutQty
	if !balanceQty.IsPositive() {
		return types.Zero(), nil
	}
	balanceTotal := totals.InTotal.Add(totals.OutTotal)
	return balanceTotal.Div(balanceQty.Decimal()).Round(6), nil
}

// GlobalAvgPrice is the warehouse-agnostic alias callers use
// interchangeably with AvgPrice.
func (s *Service) GlobalAvgPrice(ctx context.Context, productID id.ID, asOf *time.Time) (types.Money, error) {
	return s.AvgPrice(ctx, productID, asOf)
}

// StockOnHand approximates the balance at asOf without replaying full
// history: the prior-month Stock_Count entries act as a closing
// checkpoint, plus net movement from the start of asOf's month.
//
// Precondition: this is only correct when a Stock_Count checkpoint was
// posted for the prior month. When none exists the checkpoint
// contributes 0, understating the balance for products counted less
// often than monthly. Callers needing full historical correctness must
// use RecalcProduct/Balance instead.
func (s *Service) StockOnHand(ctx context.Context, productID id.ID, warehouseID *id.ID, asOf time.Time) (types.Quantity, error) {
	asOf = DateOf(asOf)
	prevStart, prevEnd := PreviousMonthRange(asOf)
	curStart := StartOfMonth(asOf)

	checkpoint, err := s.repo.SumQuantity(ctx, SumFilter{
		ProductID:   productID,
		WarehouseID: warehouseID,
		Types:       []TransactionType{TypeStockCount},
		From:        prevStart,
		To:          prevEnd,
	})
	if err != nil {
		return 0, fmt.Errorf("checkpoint sum: %w", err)
	}

	stockIn, err := s.repo.SumQuantity(ctx, SumFilter{
		ProductID:   productID,
		WarehouseID: warehouseID,
		Types:       []TransactionType{TypeStockIn},
		From:        curStart,
		To:          asOf,
	})
	if err != nil {
		return 0, fmt.Errorf("stock in sum: %w", err)
	}

	stockOut, err := s.repo.SumQuantity(ctx, SumFilter{
		ProductID:   productID,
		WarehouseID: warehouseID,
		Types:       []TransactionType{TypeStockOut},
		From:        curStart,
		To:          asOf,
	})
	if err != nil {
		return 0, fmt.Errorf("stock out sum: %w", err)
	}

	return checkpoint + stockIn + stockOut, nil
}

// OutboundUsageByMonth returns per-calendar-month absolute outbound
// quantity within [from, to]. Months with no outbound movement are
// absent; the forecast engine's averaging skips them by design.
func (s *Service) OutboundUsageByMonth(ctx context.Context, productID id.ID, warehouseID *id.ID, from, to time.Time) ([]MonthlyQuantity, error) {
	months, err := s.repo.MonthlyOutbound(ctx, productID, warehouseID, DateOf(from), DateOf(to))
	if err != nil {
		return nil, fmt.Errorf("monthly outbound: %w", err)
	}
	return months, nil
}

// ActiveWarehouses lists the warehouses that have ever moved the
// product, discovered from the ledger itself.
func (s *Service) ActiveWarehouses(ctx context.Context, productID id.ID) ([]id.ID, error) {
	ids, err := s.repo.Warehouses(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("warehouses: %w", err)
	}
	return ids, nil
}

// PeriodTotals exposes the report aggregation window for one product.
func (s *Service) PeriodTotals(ctx context.Context, f PeriodFilter) (PeriodTotals, error) {
	f.From = DateOf(f.From)
	f.To = DateOf(f.To)
	totals, err := s.repo.PeriodTotals(ctx, f)
	if err != nil {
		return PeriodTotals{}, fmt.Errorf("period totals: %w", err)
	}
	return totals, nil
}

// Today returns the service clock's current date truncated to
// midnight UTC. Callers defaulting an asOf parameter use this instead
// of reading the wall clock themselves.
func (s *Service) Today() time.Time {
	return clock.Today(s.clock)
}

func (s *Service) asOfDate(asOf *time.Time) time.Time {
	if asOf != nil {
		return DateOf(*asOf)
	}
	return clock.Today(s.clock)
}
