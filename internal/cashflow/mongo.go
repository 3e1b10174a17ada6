package cashflow

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionName is the mongo collection holding cash flows.
const CollectionName = "cashflows"

// MongoStorage stores cash flows in a mongo collection.
type MongoStorage struct {
	coll *mongo.Collection
}

// NewMongoStorage returns a storage over the cashflows collection of db.
func NewMongoStorage(db *mongo.Database) *MongoStorage {
	return &MongoStorage{coll: db.Collection(CollectionName)}
}

// Indexes returns the indexes used by the cash flow queries.
func Indexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "date", Value: -1}},
			Options: options.Index().SetName("date_desc"),
		},
	}
}

func (s *MongoStorage) Insert(ctx context.Context, cf *CashFlow) error {
	res, err := s.coll.InsertOne(ctx, cf)
	if err != nil {
		return fmt.Errorf("insert cash flow: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		cf.ID = oid
	}
	return nil
}

func (s *MongoStorage) GetAll(ctx context.Context) ([]*CashFlow, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	cur, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find cash flows: %w", err)
	}
	out := make([]*CashFlow, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode cash flows: %w", err)
	}
	return out, nil
}

// Totals sums amounts grouped by direction. A direction without entries
// sums to zero.
func (s *MongoStorage) Totals(ctx context.Context) (Totals, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$isInflow"},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: "$amount"}}},
		}}},
	}
	cur, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return Totals{}, fmt.Errorf("aggregate cash flows: %w", err)
	}
	var rows []struct {
		IsInflow bool    `bson:"_id"`
		Total    float64 `bson:"total"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return Totals{}, fmt.Errorf("decode cash flow totals: %w", err)
	}

	var t Totals
	for _, r := range rows {
		if r.IsInflow {
			t.Inflow = r.Total
		} else {
			t.Outflow = r.Total
		}
	}
	return t, nil
}

func (s *MongoStorage) Count(ctx context.Context) (int64, error) {
	n, err := s.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("count cash flows: %w", err)
	}
	return n, nil
}
