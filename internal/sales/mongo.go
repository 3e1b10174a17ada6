package sales

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionName is the mongo collection holding sales.
const CollectionName = "sales"

// MongoStorage stores sales in a mongo collection.
type MongoStorage struct {
	coll *mongo.Collection
}

// NewMongoStorage returns a storage over the sales collection of db.
func NewMongoStorage(db *mongo.Database) *MongoStorage {
	return &MongoStorage{coll: db.Collection(CollectionName)}
}

// Indexes returns the indexes used by the sales queries.
func Indexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "saleDate", Value: -1}},
			Options: options.Index().SetName("sale_date_desc"),
		},
	}
}

func (s *MongoStorage) Insert(ctx context.Context, sale *Sale) error {
	res, err := s.coll.InsertOne(ctx, sale)
	if err != nil {
		return fmt.Errorf("insert sale: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		sale.ID = oid
	}
	return nil
}

func (s *MongoStorage) GetAll(ctx context.Context) ([]*Sale, error) {
	return s.Recent(ctx, 0)
}

func (s *MongoStorage) Recent(ctx context.Context, limit int) ([]*Sale, error) {
	opts := options.Find().SetSort(bson.D{{Key: "saleDate", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cur, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find sales: %w", err)
	}
	out := make([]*Sale, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode sales: %w", err)
	}
	return out, nil
}

func (s *MongoStorage) MonthlyTotals(ctx context.Context, limit int) ([]MonthTotal, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{{Key: "$dateToString", Value: bson.D{
				{Key: "format", Value: "%Y-%m"},
				{Key: "date", Value: "$saleDate"},
			}}}},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: "$total"}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: -1}}}},
	}
	if limit > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: limit}})
	}

	cur, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate monthly sales: %w", err)
	}
	out := make([]MonthTotal, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode monthly sales: %w", err)
	}

	// newest first from the pipeline; callers get ascending months
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func (s *MongoStorage) Count(ctx context.Context) (int64, error) {
	n, err := s.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("count sales: %w", err)
	}
	return n, nil
}
