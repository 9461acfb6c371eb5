package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/angelmondragon/gearmart-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/gearmart-backend/pkg/errors"
	"gorm.io/gorm"
)

// ProductReader is the catalog surface consumed by the cart store.
type ProductReader interface {
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
}

// Service exposes read-only catalog operations. Catalog management lives
// outside this engine; the service only supplies Product records on demand.
type Service interface {
	ProductReader
	ListProducts(ctx context.Context) ([]models.Product, error)
}

type repository interface {
	List(ctx context.Context) ([]models.Product, error)
	FindByID(ctx context.Context, id int64) (*models.Product, error)
}

type service struct {
	repo repository
}

// NewService builds a catalog service backed by the provided repository.
func NewService(repo repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo}, nil
}

// ListProducts returns the full catalog.
func (s *service) ListProducts(ctx context.Context) ([]models.Product, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return rows, nil
}

// GetProduct loads one product or reports not-found.
func (s *service) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	if id <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return row, nil
}
