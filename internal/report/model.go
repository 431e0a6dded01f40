package report

import (
	"time"

	"github.com/shopspring/decimal"
)

type Bucket struct {
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

type ItemBucket struct {
	Quantity int             `json:"quantity"`
	Revenue  decimal.Decimal `json:"revenue"`
}

type Summary struct {
	TotalRevenue decimal.Decimal `json:"totalRevenue"`
	TotalOrders  int             `json:"totalOrders"`
	PaidOrders   int             `json:"paidOrders"`
	UnpaidOrders int             `json:"unpaidOrders"`
}

type Report struct {
	Summary         Summary                           `json:"summary"`
	ByDate          map[string]*Bucket                `json:"byDate"`
	ByCategory      map[string]*Bucket                `json:"byCategory"`
	ByPaymentType   map[string]*Bucket                `json:"byPaymentType"`
	ByPaymentMethod map[string]*Bucket                `json:"byPaymentMethod"`
	ItemsByDate     map[string]map[string]*ItemBucket `json:"itemsByDate"`
}

// OrderRow is the read-side projection the aggregator consumes.
type OrderRow struct {
	ID          string
	TotalCost   decimal.Decimal
	IsPaid      bool
	PaymentType *string
	CreatedAt   time.Time
	Lines       []LineRow
}

// LineRow carries the line snapshot plus the item's *current* category name.
// Reassigning an item to a new category changes how past orders report;
// deleted items fall into the "Unknown" bucket.
type LineRow struct {
	OrderID        string
	Quantity       int
	PriceAtTime    decimal.Decimal
	ItemNameAtTime string
	CategoryName   *string
}
