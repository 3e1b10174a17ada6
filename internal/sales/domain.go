package sales

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Sale represents stock leaving inventory. It is immutable once recorded.
type Sale struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ItemID   primitive.ObjectID `bson:"itemId" json:"itemId"`
	ItemName string             `bson:"itemName" json:"itemName"`
	Quantity int                `bson:"quantity" json:"quantity"`
	Total    float64            `bson:"total" json:"total"`
	SaleDate time.Time          `bson:"saleDate" json:"saleDate"`
}

// MonthTotal is the summed sale total of one calendar month. Month is the
// "2006-01" year-month key in UTC.
type MonthTotal struct {
	Month string  `bson:"_id" json:"month"`
	Total float64 `bson:"total" json:"total"`
}

// MonthKeyFormat is the layout of MonthTotal.Month.
const MonthKeyFormat = "2006-01"
