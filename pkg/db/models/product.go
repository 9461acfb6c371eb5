package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents one catalog listing available to the shopper.
type Product struct {
	ID             int64           `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name           string          `gorm:"column:name;not null" json:"name"`
	Description    string          `gorm:"column:description;not null;default:''" json:"description"`
	UnitPrice      decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null" json:"unit_price"`
	ImageRef       string          `gorm:"column:image_ref;not null;default:''" json:"image_ref"`
	Category       string          `gorm:"column:category;not null;default:''" json:"category"`
	AvailableStock int             `gorm:"column:available_stock;not null;default:0" json:"available_stock"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
