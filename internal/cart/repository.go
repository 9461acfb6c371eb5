package cart

import (
	"context"

	"github.com/angelmondragon/gearmart-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository is the gorm-backed LineItemRepository.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a line-item repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) LineItemRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// FindByProductID loads the line item for the product, if any.
func (r *Repository) FindByProductID(ctx context.Context, productID int64) (*models.CartLineItem, error) {
	var row models.CartLineItem
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// List returns all line items in insertion order.
func (r *Repository) List(ctx context.Context) ([]models.CartLineItem, error) {
	var rows []models.CartLineItem
	if err := r.db.WithContext(ctx).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Create inserts a new line item. The unique index on product_id rejects a
// second row for the same product.
func (r *Repository) Create(ctx context.Context, item *models.CartLineItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// UpdateQuantity overwrites the stored quantity for the product.
func (r *Repository) UpdateQuantity(ctx context.Context, productID int64, quantity int) error {
	return r.db.WithContext(ctx).
		Model(&models.CartLineItem{}).
		Where("product_id = ?", productID).
		Update("quantity", quantity).Error
}

// Delete removes the line item for the product.
func (r *Repository) Delete(ctx context.Context, productID int64) error {
	return r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Delete(&models.CartLineItem{}).Error
}

// DeleteAll removes every line item of the active cart.
func (r *Repository) DeleteAll(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Where("1 = 1").
		Delete(&models.CartLineItem{}).Error
}
