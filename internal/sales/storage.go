package sales

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Storage is the persistence interface for sales.
type Storage interface {
	Insert(ctx context.Context, sale *Sale) error
	// GetAll returns every sale, most recent first.
	GetAll(ctx context.Context) ([]*Sale, error)
	// Recent returns at most limit sales, most recent first.
	Recent(ctx context.Context, limit int) ([]*Sale, error)
	// MonthlyTotals returns the totals of the limit most recent months that
	// have sales, in ascending month order.
	MonthlyTotals(ctx context.Context, limit int) ([]MonthTotal, error)
	Count(ctx context.Context) (int64, error)
}

// LocalStorage provides an in-memory implementation for storing sales.
type LocalStorage struct {
	mu sync.RWMutex
	s  []*Sale
}

// NewLocalStorage instantiates a new empty LocalStorage.
func NewLocalStorage() *LocalStorage {
	return &LocalStorage{}
}

// Insert appends a sale, assigning an ID when it has none.
func (l *LocalStorage) Insert(_ context.Context, sale *Sale) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if sale.ID.IsZero() {
		sale.ID = primitive.NewObjectID()
	}
	c := *sale
	l.s = append(l.s, &c)
	return nil
}

func (l *LocalStorage) GetAll(ctx context.Context) ([]*Sale, error) {
	return l.Recent(ctx, 0)
}

// Recent returns the latest sales; a limit of zero or less means no limit.
func (l *LocalStorage) Recent(_ context.Context, limit int) ([]*Sale, error) {
	l.mu.RLock()
	out := make([]*Sale, 0, len(l.s))
	for _, s := range l.s {
		c := *s
		out = append(out, &c)
	}
	l.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SaleDate.After(out[j].SaleDate)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (l *LocalStorage) MonthlyTotals(_ context.Context, limit int) ([]MonthTotal, error) {
	l.mu.RLock()
	sums := map[string]decimal.Decimal{}
	for _, s := range l.s {
		key := s.SaleDate.UTC().Format(MonthKeyFormat)
		sums[key] = sums[key].Add(decimal.NewFromFloat(s.Total))
	}
	l.mu.RUnlock()

	keys := make([]string, 0, len(sums))
	for k := range sums {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if limit > 0 && len(keys) > limit {
		keys = keys[len(keys)-limit:]
	}

	out := make([]MonthTotal, 0, len(keys))
	for _, k := range keys {
		out = append(out, MonthTotal{Month: k, Total: sums[k].InexactFloat64()})
	}
	return out, nil
}

func (l *LocalStorage) Count(_ context.Context) (int64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return int64(len(l.s)), nil
}
