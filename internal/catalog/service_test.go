package catalog

import (
	"context"
	"testing"

	"github.com/angelmondragon/gearmart-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/gearmart-backend/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestGetProductNotFound(t *testing.T) {
	t.Parallel()

	svc, err := NewService(&stubRepo{})
	require.NoError(t, err)

	_, err = svc.GetProduct(context.Background(), 99)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestGetProductInvalidID(t *testing.T) {
	t.Parallel()

	svc, err := NewService(&stubRepo{})
	require.NoError(t, err)

	_, err = svc.GetProduct(context.Background(), 0)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestListProducts(t *testing.T) {
	t.Parallel()

	repo := &stubRepo{products: DemoProducts()}
	svc, err := NewService(repo)
	require.NoError(t, err)

	products, err := svc.ListProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 3)
	assert.Equal(t, "Mouse Gamer", products[0].Name)
	assert.True(t, products[0].UnitPrice.Equal(decimal.NewFromInt(25000)))
}

type stubRepo struct {
	products []models.Product
}

func (s *stubRepo) List(ctx context.Context) ([]models.Product, error) {
	return s.products, nil
}

func (s *stubRepo) FindByID(ctx context.Context, id int64) (*models.Product, error) {
	for i := range s.products {
		if s.products[i].ID == id {
			return &s.products[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}
