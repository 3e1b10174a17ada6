package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"stockflow/internal/cashflow"
	"stockflow/internal/sales"
)

const (
	// RecentSalesLimit is the number of sales listed on the dashboard.
	RecentSalesLimit = 5
	// MonthsShown is the number of months in the monthly sales series.
	MonthsShown = 6
)

// ItemSource provides the item aggregates.
type ItemSource interface {
	Count(ctx context.Context) (int64, error)
	TotalStock(ctx context.Context) (int64, error)
	CountLowStock(ctx context.Context) (int64, error)
}

// SaleSource provides the sale aggregates.
type SaleSource interface {
	Recent(ctx context.Context, limit int) ([]*sales.Sale, error)
	MonthlyTotals(ctx context.Context, limit int) ([]sales.MonthTotal, error)
}

// CashSource provides the cash ledger totals.
type CashSource interface {
	Totals(ctx context.Context) (cashflow.Totals, error)
}

// Service computes dashboard statistics with read-only queries.
type Service struct {
	items  ItemSource
	sales  SaleSource
	cash   CashSource
	logger *zap.Logger
}

// NewService creates a new Service.
func NewService(it ItemSource, sa SaleSource, cash CashSource, logger *zap.Logger) *Service {
	if logger == nil {
		logger, _ = zap.NewProduction()
	}

	return &Service{
		items:  it,
		sales:  sa,
		cash:   cash,
		logger: logger,
	}
}

// ComputeStats runs each aggregate in turn. The steps are independent reads
// with no snapshot across them; any failure fails the whole computation.
func (s *Service) ComputeStats(ctx context.Context) (*Stats, error) {
	var (
		stats Stats
		err   error
	)

	if stats.TotalItems, err = s.items.Count(ctx); err != nil {
		return nil, s.fail("count items", err)
	}
	if stats.TotalStock, err = s.items.TotalStock(ctx); err != nil {
		return nil, s.fail("sum stock", err)
	}
	if stats.LowStockCount, err = s.items.CountLowStock(ctx); err != nil {
		return nil, s.fail("count low stock", err)
	}

	totals, err := s.cash.Totals(ctx)
	if err != nil {
		return nil, s.fail("sum cash flows", err)
	}
	stats.CashBalance = decimal.NewFromFloat(totals.Inflow).
		Sub(decimal.NewFromFloat(totals.Outflow)).
		Round(2).
		InexactFloat64()

	if stats.RecentSales, err = s.sales.Recent(ctx, RecentSalesLimit); err != nil {
		return nil, s.fail("list recent sales", err)
	}

	months, err := s.sales.MonthlyTotals(ctx, MonthsShown)
	if err != nil {
		return nil, s.fail("group monthly sales", err)
	}
	stats.MonthlySales = monthlySeries(months)

	s.logger.Debug("dashboard computed",
		zap.Int64("total_items", stats.TotalItems),
		zap.Int64("total_stock", stats.TotalStock),
		zap.Int64("low_stock", stats.LowStockCount),
		zap.Float64("cash_balance", stats.CashBalance),
	)
	return &stats, nil
}

func (s *Service) fail(step string, err error) error {
	s.logger.Error("dashboard aggregation failed", zap.String("step", step), zap.Error(err))
	return fmt.Errorf("dashboard: %s: %w", step, err)
}

// monthlySeries labels grouped totals with month abbreviations, falling back
// to the placeholder series when there are no sales at all.
func monthlySeries(months []sales.MonthTotal) []MonthSale {
	if len(months) == 0 {
		return PlaceholderMonths()
	}

	out := make([]MonthSale, 0, len(months))
	for _, m := range months {
		out = append(out, MonthSale{
			Month: monthLabel(m.Month),
			Total: decimal.NewFromFloat(m.Total).Round(2).InexactFloat64(),
		})
	}
	return out
}

func monthLabel(key string) string {
	t, err := time.Parse(sales.MonthKeyFormat, key)
	if err != nil {
		return key
	}
	return t.Month().String()[:3]
}
