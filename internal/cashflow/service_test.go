package cashflow

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestRecordCashFlow(t *testing.T) {
	svc := NewService(NewLocalStorage(), zaptest.NewLogger(t))
	when := time.Date(2026, 2, 1, 8, 30, 0, 0, time.UTC)
	svc.now = func() time.Time { return when }

	cf, err := svc.RecordCashFlow(context.Background(), "Rent", 1200, false)
	require.NoError(t, err)

	assert.False(t, cf.ID.IsZero())
	assert.Equal(t, "Rent", cf.Description)
	assert.Equal(t, 1200.0, cf.Amount)
	assert.False(t, cf.IsInflow)
	assert.Equal(t, when, cf.Date)
}

func TestRecordCashFlow_AcceptsNonPositiveAmounts(t *testing.T) {
	svc := NewService(NewLocalStorage(), zaptest.NewLogger(t))

	_, err := svc.RecordCashFlow(context.Background(), "Correction", -40, true)
	assert.NoError(t, err)
	_, err = svc.RecordCashFlow(context.Background(), "Nothing", 0, false)
	assert.NoError(t, err)
}

func TestListCashFlows_MostRecentFirst(t *testing.T) {
	svc := NewService(NewLocalStorage(), zaptest.NewLogger(t))
	ctx := context.Background()

	clock := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return clock }
	for _, d := range []string{"first", "second", "third"} {
		_, err := svc.RecordCashFlow(ctx, d, 10, true)
		require.NoError(t, err)
		clock = clock.Add(24 * time.Hour)
	}

	all, err := svc.ListCashFlows(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "third", all[0].Description)
	assert.Equal(t, "first", all[2].Description)
}

func TestLocalStorage_Totals(t *testing.T) {
	storage := NewLocalStorage()
	ctx := context.Background()

	totals, err := storage.Totals(ctx)
	require.NoError(t, err)
	assert.Zero(t, totals.Inflow)
	assert.Zero(t, totals.Outflow)

	for _, cf := range []*CashFlow{
		{Description: "Sales revenue", Amount: 100.1, IsInflow: true},
		{Description: "Investment", Amount: 200.2, IsInflow: true},
		{Description: "Rent", Amount: 50.05},
	} {
		require.NoError(t, storage.Insert(ctx, cf))
	}

	totals, err = storage.Totals(ctx)
	require.NoError(t, err)
	assert.Equal(t, 300.3, totals.Inflow)
	assert.Equal(t, 50.05, totals.Outflow)
}
