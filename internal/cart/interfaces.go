package cart

import (
	"context"

	"github.com/angelmondragon/gearmart-backend/pkg/db/models"
	"gorm.io/gorm"
)

// LineItemRepository exposes persistence operations for the cart line-item
// table. The Store is the only writer; no other component touches the rows
// directly.
type LineItemRepository interface {
	WithTx(tx *gorm.DB) LineItemRepository
	FindByProductID(ctx context.Context, productID int64) (*models.CartLineItem, error)
	List(ctx context.Context) ([]models.CartLineItem, error)
	Create(ctx context.Context, item *models.CartLineItem) error
	UpdateQuantity(ctx context.Context, productID int64, quantity int) error
	Delete(ctx context.Context, productID int64) error
	DeleteAll(ctx context.Context) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}
