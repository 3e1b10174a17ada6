package items

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrNotFound is returned when an item with the given ID is not found.
var ErrNotFound = errors.New("item not found")

// ErrInsufficientStock is returned when a decrement exceeds the quantity on hand.
var ErrInsufficientStock = errors.New("insufficient stock")

// ErrInvalidID is returned when an identifier is not a valid ObjectID.
var ErrInvalidID = errors.New("invalid item id")

// ErrQuantityLimit is returned when adding stock would take an item above MaxQuantity.
var ErrQuantityLimit = errors.New("quantity exceeds limit")

// MaxQuantity is the most units a single item can hold.
const MaxQuantity = math.MaxInt32

// Storage is the persistence interface of the item ledger.
type Storage interface {
	GetAll(ctx context.Context) ([]*Item, error)
	Read(ctx context.Context, id primitive.ObjectID) (*Item, error)
	// Upsert increments the quantity of the item matching the natural key of
	// in, or creates it. It returns the post-update state.
	Upsert(ctx context.Context, in NewItem, now time.Time) (*Item, error)
	// Decrement reduces the quantity by amount only if at least amount is on hand.
	Decrement(ctx context.Context, id primitive.ObjectID, amount int, now time.Time) (*Item, error)
	Increment(ctx context.Context, id primitive.ObjectID, amount int, now time.Time) (*Item, error)
	LowStock(ctx context.Context) ([]*Item, error)
	Insert(ctx context.Context, item *Item) error
	Count(ctx context.Context) (int64, error)
	TotalStock(ctx context.Context) (int64, error)
	CountLowStock(ctx context.Context) (int64, error)
}

// ParseID converts the hex form of an item id.
func ParseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidID
	}
	return oid, nil
}

// LocalStorage provides an in-memory implementation for storing items.
type LocalStorage struct {
	mu    sync.RWMutex
	m     map[primitive.ObjectID]*Item
	order []primitive.ObjectID
}

// NewLocalStorage instantiates a new LocalStorage with an empty map.
func NewLocalStorage() *LocalStorage {
	return &LocalStorage{
		m: map[primitive.ObjectID]*Item{},
	}
}

// GetAll returns copies of every item in insertion order.
func (l *LocalStorage) GetAll(_ context.Context) ([]*Item, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]*Item, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, clone(l.m[id]))
	}
	return out, nil
}

// Read retrieves an item by ID.
// Returns ErrNotFound if the item is not found.
func (l *LocalStorage) Read(_ context.Context, id primitive.ObjectID) (*Item, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	it, ok := l.m[id]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(it), nil
}

func (l *LocalStorage) Upsert(_ context.Context, in NewItem, now time.Time) (*Item, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, id := range l.order {
		it := l.m[id]
		if it.Key() == in.key() {
			if in.Quantity > MaxQuantity-it.Quantity {
				return nil, ErrQuantityLimit
			}
			it.Quantity += in.Quantity
			it.UpdatedAt = now
			return clone(it), nil
		}
	}

	it := &Item{
		ID:                primitive.NewObjectID(),
		Name:              in.Name,
		Brand:             in.Brand,
		Type:              in.Type,
		Quantity:          in.Quantity,
		LowStockThreshold: in.LowStockThreshold,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	l.put(it)
	return clone(it), nil
}

func (l *LocalStorage) Decrement(_ context.Context, id primitive.ObjectID, amount int, now time.Time) (*Item, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	it, ok := l.m[id]
	if !ok {
		return nil, ErrNotFound
	}
	if it.Quantity < amount {
		return nil, ErrInsufficientStock
	}
	it.Quantity -= amount
	it.UpdatedAt = now
	return clone(it), nil
}

func (l *LocalStorage) Increment(_ context.Context, id primitive.ObjectID, amount int, now time.Time) (*Item, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	it, ok := l.m[id]
	if !ok {
		return nil, ErrNotFound
	}
	if amount > MaxQuantity-it.Quantity {
		return nil, ErrQuantityLimit
	}
	it.Quantity += amount
	it.UpdatedAt = now
	return clone(it), nil
}

func (l *LocalStorage) LowStock(_ context.Context) ([]*Item, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]*Item, 0)
	for _, id := range l.order {
		if it := l.m[id]; it.IsLowStock() {
			out = append(out, clone(it))
		}
	}
	return out, nil
}

// Insert stores item as-is, assigning an ID when it has none.
func (l *LocalStorage) Insert(_ context.Context, item *Item) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if item.ID.IsZero() {
		item.ID = primitive.NewObjectID()
	}
	l.put(clone(item))
	return nil
}

func (l *LocalStorage) Count(_ context.Context) (int64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return int64(len(l.m)), nil
}

func (l *LocalStorage) TotalStock(_ context.Context) (int64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var total int64
	for _, it := range l.m {
		total += int64(it.Quantity)
	}
	return total, nil
}

func (l *LocalStorage) CountLowStock(_ context.Context) (int64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var n int64
	for _, it := range l.m {
		if it.IsLowStock() {
			n++
		}
	}
	return n, nil
}

// put must be called with the write lock held.
func (l *LocalStorage) put(it *Item) {
	if _, ok := l.m[it.ID]; !ok {
		l.order = append(l.order, it.ID)
	}
	l.m[it.ID] = it
}

func clone(it *Item) *Item {
	c := *it
	return &c
}
