package store

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/asati/internal/datamodels/product"
)

func categoryNames(s *Store) []string {
	var out []string
	for _, c := range s.Categories() {
		out = append(out, c.Name)
	}
	return out
}

func TestCategoriesSortedByName(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	admin := adminSession(t, s)

	assert.Equal(t, []string{"Clothing", "Home Decor"}, categoryNames(s))

	c, err := s.CreateCategory(ctx, admin, "  Accessories ")
	require.NoError(t, err)
	assert.Equal(t, "Accessories", c.Name)
	assert.NotEmpty(t, c.ID)
	_, err = s.CreateCategory(ctx, admin, "Jewellery")
	require.NoError(t, err)

	assert.Equal(t, []string{"Accessories", "Clothing", "Home Decor", "Jewellery"}, categoryNames(s))
	assert.Equal(t, "Category added!", notification(t, s, admin).Message)
}

func TestCreateCategoryRejectsDuplicatesAndBlank(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	admin := adminSession(t, s)

	_, err := s.CreateCategory(ctx, admin, "clothing")
	assert.ErrorIs(t, err, ErrDuplicateCategory)
	assert.Equal(t, "Category already exists.", notification(t, s, admin).Message)

	_, err = s.CreateCategory(ctx, admin, "   ")
	assert.ErrorIs(t, err, ErrBlankCategory)

	assert.Len(t, s.Categories(), 2)
}

func TestDeleteCategoryInUse(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	admin := adminSession(t, s)
	before := s.Categories()

	err := s.DeleteCategory(ctx, admin, "c1")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCategoryInUse)
	var inUse *CategoryInUseError
	require.ErrorAs(t, err, &inUse)
	assert.Equal(t, 2, inUse.Count)
	assert.Equal(t, "Clothing", inUse.Name)

	assert.Equal(t, before, s.Categories())
	n := notification(t, s, admin)
	assert.Equal(t, "Cannot delete category. 2 product(s) are using it.", n.Message)
	assert.Equal(t, NotifyError, n.Kind)
}

func TestDeleteUnusedCategory(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	admin := adminSession(t, s)

	c, err := s.CreateCategory(ctx, admin, "Rugs")
	require.NoError(t, err)
	require.NoError(t, s.DeleteCategory(ctx, admin, c.ID))
	assert.Equal(t, []string{"Clothing", "Home Decor"}, categoryNames(s))

	assert.ErrorIs(t, s.DeleteCategory(ctx, admin, c.ID), ErrCategoryNotFound)
}

func TestSaveProduct(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	admin := adminSession(t, s)

	created, err := s.SaveProduct(ctx, admin, product.Product{
		Name: "Silk Stole", Price: decimal.RequireFromString("42.00"), Category: "Clothing",
	})
	require.NoError(t, err)
	assert.Greater(t, created.ID, int64(3))
	assert.Equal(t, created, s.Products()[0])
	assert.Equal(t, "Product added successfully!", notification(t, s, admin).Message)

	updated := created
	updated.Price = decimal.RequireFromString("45.00")
	updated.Name = "Silk Stole II"
	_, err = s.SaveProduct(ctx, admin, updated)
	require.NoError(t, err)

	got, err := s.Product(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Silk Stole II", got.Name)
	assert.Len(t, s.Products(), 4)

	_, err = s.SaveProduct(ctx, admin, product.Product{ID: 999, Name: "Ghost"})
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.Len(t, s.Products(), 4)
}

func TestSaveProductRejectsNegativeValues(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	admin := adminSession(t, s)

	_, err := s.SaveProduct(ctx, admin, product.Product{
		Name: "Bad Price", Price: decimal.RequireFromString("-3"), Category: "Clothing",
	})
	assert.ErrorIs(t, err, ErrInvalidProduct)
	assert.True(t, IsClientError(err))

	_, err = s.SaveProduct(ctx, admin, product.Product{
		Name: "Bad Stock", Price: decimal.RequireFromString("3"), Category: "Clothing", Inventory: -1,
	})
	assert.ErrorIs(t, err, ErrInvalidProduct)

	// 更新同样校验，原商品保持不变
	_, err = s.SaveProduct(ctx, admin, product.Product{ID: 1, Name: "Product A", Price: decimal.RequireFromString("10.00"), Inventory: -5})
	assert.ErrorIs(t, err, ErrInvalidProduct)
	got, err := s.Product(1)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, got.Inventory, 0)
	assert.Len(t, s.Products(), 3)
}

func TestDeleteProduct(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	admin := adminSession(t, s)

	require.NoError(t, s.DeleteProduct(ctx, admin, 2))
	_, err := s.Product(2)
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.ErrorIs(t, s.DeleteProduct(ctx, admin, 2), ErrProductNotFound)

	// 引用数随商品删除而减少
	err = s.DeleteCategory(ctx, admin, "c1")
	var inUse *CategoryInUseError
	require.ErrorAs(t, err, &inUse)
	assert.Equal(t, 1, inUse.Count)
}

func TestProductsByCategory(t *testing.T) {
	s := newTestStore(t)

	assert.Len(t, s.ProductsByCategory("clothing"), 2)
	assert.Len(t, s.ProductsByCategory("Home Decor"), 1)
	assert.Empty(t, s.ProductsByCategory("Rugs"))
	assert.Len(t, s.ProductsByCategory(""), 3)
}
