package order

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentType string

const (
	PaymentCash       PaymentType = "Cash"
	PaymentETransfer  PaymentType = "E-transfer"
	PaymentCreditCard PaymentType = "Credit Card"
)

// ValidPaymentType reports whether p is one of the accepted payment methods.
func ValidPaymentType(p PaymentType) bool {
	switch p {
	case PaymentCash, PaymentETransfer, PaymentCreditCard:
		return true
	}
	return false
}

type Order struct {
	ID           string          `json:"id"`
	CustomerName string          `json:"customer_name"`
	TotalCost    decimal.Decimal `json:"total_cost"`
	IsPaid       bool            `json:"is_paid"`
	PaymentType  *PaymentType    `json:"payment_type"`
	CreatedAt    time.Time       `json:"created_at"`
	Items        []*OrderItem    `json:"order_items"`
}

// OrderItem is a line snapshot. PriceAtTime and ItemNameAtTime are fixed at
// order creation or edit time and never recomputed from the live item, so
// historical totals survive later catalog changes. ItemID goes null when the
// referenced item is deleted; the snapshot fields stay authoritative.
type OrderItem struct {
	ID             string          `json:"id"`
	OrderID        string          `json:"order_id"`
	ItemID         *string         `json:"item_id"`
	Quantity       int             `json:"quantity"`
	PriceAtTime    decimal.Decimal `json:"price_at_time"`
	ItemNameAtTime string          `json:"item_name_at_time"`
}

// LineInput is one requested order line. For custom-price items the price is
// the cashier-chosen value; the server never re-derives it from the catalog.
type LineInput struct {
	ItemID   *string         `json:"item_id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

type SortField string

const (
	SortByCustomerName SortField = "customer_name"
	SortByDate         SortField = "date"
)

type ListParams struct {
	Page         int
	Limit        int
	UnpaidOnly   bool
	StartDate    *time.Time
	EndDate      *time.Time
	CustomerName string
	SortBy       SortField
	SortOrder    string // "asc" or "desc"
}

type ListResult struct {
	Orders     []*Order `json:"orders"`
	TotalCount int64    `json:"total_count"`
	Page       int      `json:"page"`
	Limit      int      `json:"limit"`
}

// ListQuery is the repository-level slice of ListParams: everything the store
// can filter natively. Customer-name matching stays in the service layer
// because the store's filtering is accent-sensitive.
type ListQuery struct {
	UnpaidOnly bool
	StartDate  *time.Time
	EndDate    *time.Time
	SortBy     SortField
	SortOrder  string
	Limit      int // 0 means no limit
	Offset     int
}
