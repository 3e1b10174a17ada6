package cashflow

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Storage is the persistence interface for cash flow entries.
type Storage interface {
	Insert(ctx context.Context, cf *CashFlow) error
	// GetAll returns every entry, most recent first.
	GetAll(ctx context.Context) ([]*CashFlow, error)
	Totals(ctx context.Context) (Totals, error)
	Count(ctx context.Context) (int64, error)
}

// LocalStorage provides an in-memory implementation for storing cash flows.
type LocalStorage struct {
	mu sync.RWMutex
	s  []*CashFlow
}

// NewLocalStorage instantiates a new empty LocalStorage.
func NewLocalStorage() *LocalStorage {
	return &LocalStorage{}
}

func (l *LocalStorage) Insert(_ context.Context, cf *CashFlow) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if cf.ID.IsZero() {
		cf.ID = primitive.NewObjectID()
	}
	c := *cf
	l.s = append(l.s, &c)
	return nil
}

func (l *LocalStorage) GetAll(_ context.Context) ([]*CashFlow, error) {
	l.mu.RLock()
	out := make([]*CashFlow, 0, len(l.s))
	for _, cf := range l.s {
		c := *cf
		out = append(out, &c)
	}
	l.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out, nil
}

func (l *LocalStorage) Totals(_ context.Context) (Totals, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var in, out decimal.Decimal
	for _, cf := range l.s {
		if cf.IsInflow {
			in = in.Add(decimal.NewFromFloat(cf.Amount))
		} else {
			out = out.Add(decimal.NewFromFloat(cf.Amount))
		}
	}
	return Totals{Inflow: in.InexactFloat64(), Outflow: out.InexactFloat64()}, nil
}

func (l *LocalStorage) Count(_ context.Context) (int64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return int64(len(l.s)), nil
}
