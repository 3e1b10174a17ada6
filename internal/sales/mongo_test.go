package sales

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// newMongoStorage connects to MONGODB_TEST_URI and returns a storage over a
// throwaway database. The test is skipped when the variable is unset.
func newMongoStorage(t *testing.T) *MongoStorage {
	t.Helper()
	uri := os.Getenv("MONGODB_TEST_URI")
	if uri == "" {
		t.Skip("MONGODB_TEST_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)

	db := client.Database("stockflow_sales_test_" + primitive.NewObjectID().Hex())
	storage := NewMongoStorage(db)
	_, err = storage.coll.Indexes().CreateMany(ctx, Indexes())
	require.NoError(t, err)

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = db.Drop(ctx)
		_ = client.Disconnect(ctx)
	})
	return storage
}

// insertMonthlySales stores one sale on the 15th of each of the nine months
// from 2025-10 to 2026-06, totalling 10, 20, ... 90, plus a second sale of
// 5 in 2026-06. It returns the sales in insertion order.
func insertMonthlySales(t *testing.T, storage *MongoStorage) []*Sale {
	t.Helper()
	ctx := context.Background()
	start := time.Date(2025, 10, 15, 12, 0, 0, 0, time.UTC)

	var out []*Sale
	for i := 0; i < 9; i++ {
		s := &Sale{
			ItemID:   primitive.NewObjectID(),
			ItemName: "Cap",
			Quantity: 1,
			Total:    float64((i + 1) * 10),
			SaleDate: start.AddDate(0, i, 0),
		}
		require.NoError(t, storage.Insert(ctx, s))
		out = append(out, s)
	}
	extra := &Sale{
		ItemID:   primitive.NewObjectID(),
		ItemName: "Mug",
		Quantity: 1,
		Total:    5,
		SaleDate: time.Date(2026, 6, 20, 9, 0, 0, 0, time.UTC),
	}
	require.NoError(t, storage.Insert(ctx, extra))
	return append(out, extra)
}

func TestMongoStorage_MonthlyTotals_KeepsNewestMonthsAscending(t *testing.T) {
	storage := newMongoStorage(t)
	ctx := context.Background()
	insertMonthlySales(t, storage)

	got, err := storage.MonthlyTotals(ctx, 6)
	require.NoError(t, err)
	require.Len(t, got, 6)

	want := []MonthTotal{
		{Month: "2026-01", Total: 40},
		{Month: "2026-02", Total: 50},
		{Month: "2026-03", Total: 60},
		{Month: "2026-04", Total: 70},
		{Month: "2026-05", Total: 80},
		{Month: "2026-06", Total: 95},
	}
	for i, w := range want {
		assert.Equal(t, w.Month, got[i].Month)
		assert.InDelta(t, w.Total, got[i].Total, 1e-9, w.Month)
	}

	all, err := storage.MonthlyTotals(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 9)
	assert.Equal(t, "2025-10", all[0].Month)
	assert.Equal(t, "2026-06", all[8].Month)
}

func TestMongoStorage_MonthlyTotals_Empty(t *testing.T) {
	storage := newMongoStorage(t)

	got, err := storage.MonthlyTotals(context.Background(), 6)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestMongoStorage_RecentNewestFirst(t *testing.T) {
	storage := newMongoStorage(t)
	ctx := context.Background()
	inserted := insertMonthlySales(t, storage)

	recent, err := storage.Recent(ctx, 5)
	require.NoError(t, err)
	require.Len(t, recent, 5)

	// the extra 2026-06-20 sale is the newest, then months count down
	assert.Equal(t, inserted[9].ID, recent[0].ID)
	assert.Equal(t, inserted[8].ID, recent[1].ID)
	assert.Equal(t, inserted[5].ID, recent[4].ID)
	for i := 1; i < len(recent); i++ {
		assert.True(t, recent[i-1].SaleDate.After(recent[i].SaleDate))
	}

	all, err := storage.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 10)
	assert.Equal(t, inserted[9].ID, all[0].ID)
	assert.Equal(t, inserted[0].ID, all[9].ID)

	n, err := storage.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 10, n)
}
