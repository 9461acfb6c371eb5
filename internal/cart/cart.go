package cart

import (
	"github.com/angelmondragon/gearmart-backend/internal/pricing"
	"github.com/angelmondragon/gearmart-backend/pkg/db/models"
	"github.com/shopspring/decimal"
)

// Cart is an immutable snapshot of the active cart.
type Cart struct {
	Items     []models.CartLineItem `json:"items"`
	ItemCount int                   `json:"item_count"`
	Total     decimal.Decimal       `json:"total"`
	IsEmpty   bool                  `json:"is_empty"`
}

// NewCart derives the aggregate view from the given line items.
func NewCart(items []models.CartLineItem) Cart {
	count := 0
	for _, item := range items {
		count += item.Quantity
	}
	return Cart{
		Items:     items,
		ItemCount: count,
		Total:     pricing.Subtotal(items),
		IsEmpty:   len(items) == 0,
	}
}
