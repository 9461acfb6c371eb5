package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartLineItem persists one product-quantity pair of the active cart.
// At most one row exists per product id; quantity never drops below 1.
type CartLineItem struct {
	ID             int64           `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ProductID      int64           `gorm:"column:product_id;not null;uniqueIndex:idx_cart_line_items_product_id" json:"product_id"`
	Name           string          `gorm:"column:name;not null" json:"name"`
	Description    string          `gorm:"column:description;not null;default:''" json:"description"`
	UnitPrice      decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null" json:"unit_price"`
	ImageRef       string          `gorm:"column:image_ref;not null;default:''" json:"image_ref"`
	Category       string          `gorm:"column:category;not null;default:''" json:"category"`
	AvailableStock int             `gorm:"column:available_stock;not null;default:0" json:"available_stock"`
	Quantity       int             `gorm:"column:quantity;not null" json:"quantity"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// Subtotal derives unit price times quantity.
func (c CartLineItem) Subtotal() decimal.Decimal {
	return c.UnitPrice.Mul(decimal.NewFromInt(int64(c.Quantity)))
}
