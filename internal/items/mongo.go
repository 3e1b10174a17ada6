package items

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionName is the mongo collection holding items.
const CollectionName = "items"

var lowStockFilter = bson.M{"$expr": bson.M{"$lt": bson.A{"$quantity", "$lowStockThreshold"}}}

// MongoStorage stores items in a mongo collection.
type MongoStorage struct {
	coll *mongo.Collection
}

// NewMongoStorage returns a storage over the items collection of db.
func NewMongoStorage(db *mongo.Database) *MongoStorage {
	return &MongoStorage{coll: db.Collection(CollectionName)}
}

// Indexes returns the indexes the items collection relies on. The unique
// natural-key index keeps concurrent upserts from creating duplicates.
func Indexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name", Value: 1}, {Key: "brand", Value: 1}, {Key: "type", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("natural_key"),
		},
	}
}

func (s *MongoStorage) GetAll(ctx context.Context) ([]*Item, error) {
	return s.find(ctx, bson.M{})
}

func (s *MongoStorage) Read(ctx context.Context, id primitive.ObjectID) (*Item, error) {
	var it Item
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&it)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find item %s: %w", id.Hex(), err)
	}
	return &it, nil
}

// Upsert only matches an existing item with room for in.Quantity more
// units. When the key exists but is full, the upsert's insert collides with
// the natural-key index and ErrQuantityLimit is returned.
func (s *MongoStorage) Upsert(ctx context.Context, in NewItem, now time.Time) (*Item, error) {
	filter := bson.M{
		"name":     in.Name,
		"brand":    in.Brand,
		"type":     in.Type,
		"quantity": bson.M{"$lte": MaxQuantity - in.Quantity},
	}
	update := bson.M{
		"$inc": bson.M{"quantity": in.Quantity},
		"$set": bson.M{"updatedAt": now},
		"$setOnInsert": bson.M{
			"lowStockThreshold": in.LowStockThreshold,
			"createdAt":         now,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var it Item
	err := s.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&it)
	if mongo.IsDuplicateKeyError(err) {
		// Either a concurrent upsert inserted the same key first, in which
		// case the retry matches it, or the existing item is full.
		err = s.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&it)
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrQuantityLimit
		}
	}
	if err != nil {
		return nil, fmt.Errorf("upsert item: %w", err)
	}
	return &it, nil
}

func (s *MongoStorage) Decrement(ctx context.Context, id primitive.ObjectID, amount int, now time.Time) (*Item, error) {
	filter := bson.M{"_id": id, "quantity": bson.M{"$gte": amount}}
	it, err := s.adjust(ctx, filter, -amount, now)
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return it, err
	}

	n, err := s.coll.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return nil, fmt.Errorf("count item %s: %w", id.Hex(), err)
	}
	if n == 0 {
		return nil, ErrNotFound
	}
	return nil, ErrInsufficientStock
}

func (s *MongoStorage) Increment(ctx context.Context, id primitive.ObjectID, amount int, now time.Time) (*Item, error) {
	filter := bson.M{"_id": id, "quantity": bson.M{"$lte": MaxQuantity - amount}}
	it, err := s.adjust(ctx, filter, amount, now)
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return it, err
	}

	n, err := s.coll.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return nil, fmt.Errorf("count item %s: %w", id.Hex(), err)
	}
	if n == 0 {
		return nil, ErrNotFound
	}
	return nil, ErrQuantityLimit
}

func (s *MongoStorage) LowStock(ctx context.Context) ([]*Item, error) {
	return s.find(ctx, lowStockFilter)
}

func (s *MongoStorage) Insert(ctx context.Context, item *Item) error {
	res, err := s.coll.InsertOne(ctx, item)
	if err != nil {
		return fmt.Errorf("insert item: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		item.ID = oid
	}
	return nil
}

func (s *MongoStorage) Count(ctx context.Context) (int64, error) {
	n, err := s.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}
	return n, nil
}

func (s *MongoStorage) TotalStock(ctx context.Context) (int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: "$quantity"}}},
		}}},
	}
	cur, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("aggregate total stock: %w", err)
	}
	var rows []struct {
		Total int64 `bson:"total"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return 0, fmt.Errorf("decode total stock: %w", err)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Total, nil
}

func (s *MongoStorage) CountLowStock(ctx context.Context) (int64, error) {
	n, err := s.coll.CountDocuments(ctx, lowStockFilter)
	if err != nil {
		return 0, fmt.Errorf("count low stock items: %w", err)
	}
	return n, nil
}

// adjust applies a quantity delta to the document matching filter and
// returns the post-update state. It returns mongo.ErrNoDocuments unwrapped
// when nothing matches.
func (s *MongoStorage) adjust(ctx context.Context, filter bson.M, delta int, now time.Time) (*Item, error) {
	update := bson.M{
		"$inc": bson.M{"quantity": delta},
		"$set": bson.M{"updatedAt": now},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var it Item
	err := s.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&it)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("update item quantity: %w", err)
	}
	return &it, nil
}

func (s *MongoStorage) find(ctx context.Context, filter bson.M) ([]*Item, error) {
	cur, err := s.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find items: %w", err)
	}
	out := make([]*Item, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode items: %w", err)
	}
	return out, nil
}
