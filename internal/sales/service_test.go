package sales

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap/zaptest"

	"stockflow/internal/items"
)

type fixture struct {
	svc    *Service
	sales  *LocalStorage
	ledger *items.Service
	itemID string
}

// newFixture stocks one item with ten units.
func newFixture(t *testing.T) fixture {
	t.Helper()
	logger := zaptest.NewLogger(t)

	ledger := items.NewService(items.NewLocalStorage(), logger)
	item, err := ledger.UpsertItem(context.Background(), items.NewItem{
		Name: "Cap", Brand: "X", Type: "Hat", Quantity: 10, LowStockThreshold: 3,
	})
	require.NoError(t, err)

	salesStorage := NewLocalStorage()
	return fixture{
		svc:    NewService(salesStorage, ledger, logger),
		sales:  salesStorage,
		ledger: ledger,
		itemID: item.ID.Hex(),
	}
}

func (f fixture) quantity(t *testing.T) int {
	t.Helper()
	item, err := f.ledger.GetItem(context.Background(), f.itemID)
	require.NoError(t, err)
	return item.Quantity
}

func TestNewService(t *testing.T) {
	svc := NewService(NewLocalStorage(), nil, nil)

	require.NotNil(t, svc)
	assert.NotNil(t, svc.storage)
	assert.NotNil(t, svc.logger)
}

func TestTotal(t *testing.T) {
	assert.Equal(t, 79.96, Total(4))
	assert.Equal(t, 19.99, Total(1))
	assert.Equal(t, 199.9, Total(10))
}

func TestRecordSale_DecrementsStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	when := time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return when }

	sale, err := f.svc.RecordSale(ctx, f.itemID, 4)
	require.NoError(t, err)

	assert.False(t, sale.ID.IsZero())
	assert.Equal(t, f.itemID, sale.ItemID.Hex())
	assert.Equal(t, "Cap", sale.ItemName)
	assert.Equal(t, 4, sale.Quantity)
	assert.Equal(t, 79.96, sale.Total)
	assert.Equal(t, when, sale.SaleDate)

	assert.Equal(t, 6, f.quantity(t))

	all, err := f.svc.ListSales(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, sale.ID, all[0].ID)
}

func TestRecordSale_InsufficientStockChangesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sale, err := f.svc.RecordSale(ctx, f.itemID, 12)
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Nil(t, sale)

	assert.Equal(t, 10, f.quantity(t))
	n, err := f.sales.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRecordSale_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		itemID   string
		quantity int
		want     error
	}{
		{"malformed id", "abc", 1, ErrInvalidItemID},
		{"unknown item", primitive.NewObjectID().Hex(), 1, ErrItemNotFound},
		{"zero quantity", f.itemID, 0, ErrInvalidQuantity},
		{"negative quantity", f.itemID, -3, ErrInvalidQuantity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.RecordSale(ctx, tt.itemID, tt.quantity)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Equal(t, 10, f.quantity(t))
}

// racingInventory reports enough stock on lookup but loses the decrement,
// as when another sale takes the stock in between.
type racingInventory struct {
	*items.Service
}

func (r racingInventory) DecrementStock(context.Context, string, int) (*items.Item, error) {
	return nil, items.ErrInsufficientStock
}

func TestRecordSale_LostRaceIsInsufficientStock(t *testing.T) {
	f := newFixture(t)
	svc := NewService(f.sales, racingInventory{f.ledger}, zaptest.NewLogger(t))

	_, err := svc.RecordSale(context.Background(), f.itemID, 2)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	n, err := f.sales.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

type failingStorage struct {
	*LocalStorage
}

func (failingStorage) Insert(context.Context, *Sale) error {
	return errors.New("connection reset")
}

func TestRecordSale_RestoresStockWhenSaveFails(t *testing.T) {
	f := newFixture(t)
	svc := NewService(failingStorage{NewLocalStorage()}, f.ledger, zaptest.NewLogger(t))

	_, err := svc.RecordSale(context.Background(), f.itemID, 3)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInsufficientStock)

	assert.Equal(t, 10, f.quantity(t))
}

func TestLocalStorage_RecentAndMonthlyTotals(t *testing.T) {
	storage := NewLocalStorage()
	ctx := context.Background()

	base := time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)
	for m := 0; m < 8; m++ {
		for n := 0; n <= m%2; n++ {
			require.NoError(t, storage.Insert(ctx, &Sale{
				ItemName: "Cap",
				Quantity: 1,
				Total:    10.5,
				SaleDate: base.AddDate(0, m, n),
			}))
		}
	}

	recent, err := storage.Recent(ctx, 5)
	require.NoError(t, err)
	require.Len(t, recent, 5)
	for i := 1; i < len(recent); i++ {
		assert.False(t, recent[i].SaleDate.After(recent[i-1].SaleDate))
	}
	assert.Equal(t, base.AddDate(0, 7, 1), recent[0].SaleDate)

	months, err := storage.MonthlyTotals(ctx, 6)
	require.NoError(t, err)
	require.Len(t, months, 6)
	assert.Equal(t, "2026-03", months[0].Month)
	assert.Equal(t, "2026-08", months[5].Month)
	assert.Equal(t, 10.5, months[0].Total)
	assert.Equal(t, 21.0, months[1].Total)
}
