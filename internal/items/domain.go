package items

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Item is a stocked product, identified by its (name, brand, type) triple.
type Item struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name              string             `bson:"name" json:"name"`
	Brand             string             `bson:"brand" json:"brand"`
	Type              string             `bson:"type" json:"type"`
	Quantity          int                `bson:"quantity" json:"quantity"`
	LowStockThreshold int                `bson:"lowStockThreshold" json:"lowStockThreshold"`
	CreatedAt         time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// IsLowStock reports whether the quantity on hand is strictly below the threshold.
func (i *Item) IsLowStock() bool {
	return i.Quantity < i.LowStockThreshold
}

// Key is the natural key used to deduplicate items.
type Key struct {
	Name  string
	Brand string
	Type  string
}

// Key returns the natural key of the item.
func (i *Item) Key() Key {
	return Key{Name: i.Name, Brand: i.Brand, Type: i.Type}
}

// NewItem carries the fields accepted when stocking an item.
type NewItem struct {
	Name              string
	Brand             string
	Type              string
	Quantity          int
	LowStockThreshold int
}

func (n NewItem) key() Key {
	return Key{Name: n.Name, Brand: n.Brand, Type: n.Type}
}
