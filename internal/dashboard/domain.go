package dashboard

import "stockflow/internal/sales"

// MonthSale is the sales total of one month, labelled with its three-letter
// abbreviation.
type MonthSale struct {
	Month string  `json:"month"`
	Total float64 `json:"total"`
}

// Stats is the derived dashboard view. It is computed on demand and never stored.
type Stats struct {
	TotalItems    int64         `json:"totalItems"`
	TotalStock    int64         `json:"totalStock"`
	LowStockCount int64         `json:"lowStockCount"`
	CashBalance   float64       `json:"cashBalance"`
	RecentSales   []*sales.Sale `json:"recentSales"`
	MonthlySales  []MonthSale   `json:"monthlySales"`
}

// placeholderMonths is shown while no sale has been recorded.
var placeholderMonths = []MonthSale{
	{Month: "Jan", Total: 5000},
	{Month: "Feb", Total: 6200},
	{Month: "Mar", Total: 4800},
	{Month: "Apr", Total: 5600},
	{Month: "May", Total: 7500},
	{Month: "Jun", Total: 8200},
}

// PlaceholderMonths returns a copy of the series used for an empty system.
func PlaceholderMonths() []MonthSale {
	return append([]MonthSale(nil), placeholderMonths...)
}
