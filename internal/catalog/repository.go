package catalog

import (
	"context"

	"github.com/angelmondragon/gearmart-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository exposes read access to the product catalog.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a catalog repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// List returns all catalog products ordered by id.
func (r *Repository) List(ctx context.Context) ([]models.Product, error) {
	var rows []models.Product
	if err := r.db.WithContext(ctx).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FindByID loads a single product.
func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Product, error) {
	var row models.Product
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// Count returns the number of catalog rows.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Insert persists the provided products.
func (r *Repository) Insert(ctx context.Context, products []models.Product) error {
	if len(products) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&products).Error
}
