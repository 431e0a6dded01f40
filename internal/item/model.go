package item

import (
	"time"

	"vinestore-be/internal/category"

	"github.com/shopspring/decimal"
)

// Item is a catalog entry. Price is authoritative only when HasCustomPrice is
// false; custom-price items get their price supplied per order line.
type Item struct {
	ID             string             `json:"id"`
	Name           string             `json:"name"`
	CategoryID     string             `json:"category_id"`
	Price          *decimal.Decimal   `json:"price"`
	HasCustomPrice bool               `json:"has_custom_price"`
	ImageURL       *string            `json:"image_url"`
	IsActive       bool               `json:"is_active"`
	CreatedAt      time.Time          `json:"created_at"`
	Category       *category.Category `json:"category,omitempty"`
}

type CreateItemParams struct {
	Name           string
	CategoryID     string
	Price          *decimal.Decimal
	HasCustomPrice bool
	ImageURL       *string
}

// UpdateItemParams carries a partial update; nil fields are left unchanged.
type UpdateItemParams struct {
	ID             string
	Name           *string
	CategoryID     *string
	Price          *decimal.Decimal
	HasCustomPrice *bool
	ImageURL       *string
	IsActive       *bool
}

// IsActiveOnly reports whether the update toggles is_active and nothing else.
// That shape is the activate/deactivate action and skips price validation.
func (p UpdateItemParams) IsActiveOnly() bool {
	return p.IsActive != nil &&
		p.Name == nil &&
		p.CategoryID == nil &&
		p.Price == nil &&
		p.HasCustomPrice == nil &&
		p.ImageURL == nil
}
