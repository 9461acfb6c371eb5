package catalog

import (
	"context"

	"github.com/angelmondragon/gearmart-backend/pkg/db/models"
	"github.com/shopspring/decimal"
)

// DemoProducts is the starter catalog used for local development.
func DemoProducts() []models.Product {
	return []models.Product{
		{
			Name:           "Mouse Gamer",
			Description:    "Mouse RGB 6400dpi",
			UnitPrice:      decimal.NewFromInt(25000),
			Category:       "Periféricos",
			AvailableStock: 10,
		},
		{
			Name:           "Teclado Mecánico",
			Description:    "Switch Blue RGB",
			UnitPrice:      decimal.NewFromInt(45000),
			Category:       "Periféricos",
			AvailableStock: 5,
		},
		{
			Name:           "Audífonos Gamer",
			Description:    "Surround 7.1",
			UnitPrice:      decimal.NewFromInt(35000),
			Category:       "Audio",
			AvailableStock: 8,
		},
	}
}

// SeedDemo inserts the demo catalog when the products table is empty.
func SeedDemo(ctx context.Context, repo *Repository) error {
	count, err := repo.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return repo.Insert(ctx, DemoProducts())
}
