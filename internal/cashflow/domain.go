package cashflow

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CashFlow is an immutable ledger entry for money coming in or going out.
type CashFlow struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Description string             `bson:"description" json:"description"`
	Amount      float64            `bson:"amount" json:"amount"`
	IsInflow    bool               `bson:"isInflow" json:"isInflow"`
	Date        time.Time          `bson:"date" json:"date"`
}

// Totals holds the summed inflow and outflow amounts.
type Totals struct {
	Inflow  float64
	Outflow float64
}
