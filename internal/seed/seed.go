// Package seed fills an empty store with sample items, sales and cash flows.
package seed

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"stockflow/internal/cashflow"
	"stockflow/internal/items"
	"stockflow/internal/sales"
)

// Default sample sizes.
const (
	ItemCount     = 20
	SaleCount     = 50
	CashFlowCount = 40
	// HistoryDays is how far back sample sales and cash flows are dated.
	HistoryDays = 180
)

var (
	categories = []string{"Clothing", "Electronics", "Home", "Books", "Beauty", "Food", "Toys"}
	brands     = []string{"TopBrand", "Quality Co", "Premium", "Standard", "Luxury", "Basic", "Elite"}
	kinds      = map[string][]string{
		"Clothing":    {"T-Shirt", "Jeans", "Hoodie", "Jacket", "Socks", "Hat"},
		"Electronics": {"Phone", "Laptop", "Tablet", "Headphones", "Speaker", "Charger"},
		"Home":        {"Pillow", "Lamp", "Vase", "Frame", "Candle", "Rug"},
		"Books":       {"Fiction", "Non-Fiction", "Biography", "Cookbook", "Self-Help"},
		"Beauty":      {"Shampoo", "Lotion", "Cream", "Perfume", "Makeup"},
		"Food":        {"Snack", "Cereal", "Coffee", "Tea", "Spices"},
		"Toys":        {"Doll", "Car", "Puzzle", "Game", "Blocks"},
	}
	inflowDescriptions = []string{
		"Sales revenue", "Investment", "Refund", "Online orders",
		"Wholesale purchase", "Business loan", "Tax refund",
	}
	outflowDescriptions = []string{
		"Rent", "Utilities", "Salaries", "Inventory purchase",
		"Equipment", "Marketing", "Insurance", "Maintenance",
	}
)

// Seeder writes sample data through the ledger storages.
type Seeder struct {
	items     items.Storage
	sales     sales.Storage
	cashflows cashflow.Storage
	logger    *zap.Logger
	rnd       *rand.Rand
	now       func() time.Time
}

// New creates a Seeder. A nil rnd uses a time-seeded source.
func New(it items.Storage, sa sales.Storage, cf cashflow.Storage, rnd *rand.Rand, logger *zap.Logger) *Seeder {
	if logger == nil {
		logger, _ = zap.NewProduction()
	}
	if rnd == nil {
		seed := uint64(time.Now().UnixNano())
		rnd = rand.New(rand.NewPCG(seed, seed>>1))
	}

	return &Seeder{
		items:     it,
		sales:     sa,
		cashflows: cf,
		logger:    logger,
		rnd:       rnd,
		now:       time.Now,
	}
}

// Run inserts sample data unless items already exist. It reports whether
// anything was written.
func (s *Seeder) Run(ctx context.Context) (bool, error) {
	n, err := s.items.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("seed: count items: %w", err)
	}
	if n > 0 {
		s.logger.Info("store already has items, skipping sample data", zap.Int64("items", n))
		return false, nil
	}

	stocked := make([]*items.Item, 0, ItemCount)
	for _, it := range s.generateItems(ItemCount) {
		if err := s.items.Insert(ctx, it); err != nil {
			return false, fmt.Errorf("seed: insert item: %w", err)
		}
		stocked = append(stocked, it)
	}

	for _, sale := range s.generateSales(stocked, SaleCount) {
		if err := s.sales.Insert(ctx, sale); err != nil {
			return false, fmt.Errorf("seed: insert sale: %w", err)
		}
	}

	for _, cf := range s.generateCashFlows(CashFlowCount) {
		if err := s.cashflows.Insert(ctx, cf); err != nil {
			return false, fmt.Errorf("seed: insert cash flow: %w", err)
		}
	}

	s.logger.Info("sample data seeded",
		zap.Int("items", ItemCount),
		zap.Int("sales", SaleCount),
		zap.Int("cashflows", CashFlowCount),
	)
	return true, nil
}

// generateItems puts every fifth item below its low stock threshold.
func (s *Seeder) generateItems(n int) []*items.Item {
	now := s.now()
	out := make([]*items.Item, 0, n)
	for i := 1; i <= n; i++ {
		category := pick(s.rnd, categories)
		threshold := s.between(5, 20)
		quantity := s.between(1, 100)
		if i%5 == 0 {
			quantity = s.between(1, threshold-1)
		}

		out = append(out, &items.Item{
			// the index keeps the natural key unique
			Name:              fmt.Sprintf("%s %d", pick(s.rnd, kinds[category]), i),
			Brand:             pick(s.rnd, brands),
			Type:              category,
			Quantity:          quantity,
			LowStockThreshold: threshold,
			CreatedAt:         now.AddDate(0, 0, -s.between(1, 90)),
			UpdatedAt:         now,
		})
	}
	return out
}

// generateSales uses random unit prices so the monthly chart has some shape.
func (s *Seeder) generateSales(stocked []*items.Item, n int) []*sales.Sale {
	if len(stocked) == 0 {
		return nil
	}
	now := s.now()
	out := make([]*sales.Sale, 0, n)
	for i := 0; i < n; i++ {
		item := stocked[s.rnd.IntN(len(stocked))]
		quantity := s.between(1, 5)
		price := decimal.NewFromFloat(9.99 + s.rnd.Float64()*90)

		out = append(out, &sales.Sale{
			ItemID:   item.ID,
			ItemName: item.Name,
			Quantity: quantity,
			Total:    price.Mul(decimal.NewFromInt(int64(quantity))).Round(2).InexactFloat64(),
			SaleDate: now.AddDate(0, 0, -s.between(0, HistoryDays)),
		})
	}
	return out
}

func (s *Seeder) generateCashFlows(n int) []*cashflow.CashFlow {
	now := s.now()
	out := make([]*cashflow.CashFlow, 0, n)
	for i := 0; i < n; i++ {
		inflow := s.rnd.IntN(2) == 0
		descriptions := outflowDescriptions
		if inflow {
			descriptions = inflowDescriptions
		}

		out = append(out, &cashflow.CashFlow{
			Description: pick(s.rnd, descriptions),
			Amount:      decimal.NewFromFloat(100 + s.rnd.Float64()*4900).Round(2).InexactFloat64(),
			IsInflow:    inflow,
			Date:        now.AddDate(0, 0, -s.between(0, HistoryDays)),
		})
	}
	return out
}

// between returns a random integer in [lo, hi].
func (s *Seeder) between(lo, hi int) int {
	return lo + s.rnd.IntN(hi-lo+1)
}

func pick(rnd *rand.Rand, from []string) string {
	return from[rnd.IntN(len(from))]
}
