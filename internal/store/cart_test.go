package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddToCartMergesQuantities(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	sid := s.NewSession()

	_, err := s.AddToCart(ctx, sid, 1, 2)
	require.NoError(t, err)
	sum, err := s.AddToCart(ctx, sid, 1, 3)
	require.NoError(t, err)

	require.Len(t, sum.Items, 1)
	assert.Equal(t, 5, sum.Items[0].Quantity)
	assert.Equal(t, 5, sum.ItemCount)
	assert.Equal(t, "Product A added to cart!", notification(t, s, sid).Message)
}

func TestAddToCartFloorsQuantity(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	sid := s.NewSession()

	sum, err := s.AddToCart(ctx, sid, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Items[0].Quantity)

	sum, err = s.AddToCart(ctx, sid, 2, -4)
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Items[0].Quantity)

	_, err = s.AddToCart(ctx, sid, 404, 1)
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.Equal(t, NotifyError, notification(t, s, sid).Kind)
}

func TestCartTotals(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	sid := s.NewSession()

	_, err := s.AddToCart(ctx, sid, 1, 2)
	require.NoError(t, err)
	sum, err := s.AddToCart(ctx, sid, 2, 3)
	require.NoError(t, err)

	assert.Equal(t, "35.00", sum.Subtotal.StringFixed(2))
	assert.Equal(t, "3.50", sum.Tax.StringFixed(2))
	assert.Equal(t, "38.50", sum.Total.StringFixed(2))
	assert.Equal(t, 5, sum.ItemCount)
}

func TestUpdateQuantity(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	sid := s.NewSession()

	_, err := s.AddToCart(ctx, sid, 1, 2)
	require.NoError(t, err)
	_, err = s.AddToCart(ctx, sid, 2, 1)
	require.NoError(t, err)

	// 绝对值，不是增量
	sum, err := s.UpdateQuantity(ctx, sid, 1, 7)
	require.NoError(t, err)
	assert.Equal(t, 7, sum.Items[0].Quantity)

	sum, err = s.UpdateQuantity(ctx, sid, 1, 0)
	require.NoError(t, err)
	require.Len(t, sum.Items, 1)
	assert.EqualValues(t, 2, sum.Items[0].Product.ID)

	sum, err = s.UpdateQuantity(ctx, sid, 2, -3)
	require.NoError(t, err)
	assert.Empty(t, sum.Items)

	// 不在购物车里的商品不会被加入
	sum, err = s.UpdateQuantity(ctx, sid, 3, 4)
	require.NoError(t, err)
	assert.Empty(t, sum.Items)
}

func TestRemoveFromCart(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	sid := s.NewSession()

	_, err := s.AddToCart(ctx, sid, 1, 1)
	require.NoError(t, err)
	before, err := s.Cart(sid)
	require.NoError(t, err)

	sum, err := s.RemoveFromCart(ctx, sid, 3)
	require.NoError(t, err)
	assert.Equal(t, before, sum)

	sum, err = s.RemoveFromCart(ctx, sid, 1)
	require.NoError(t, err)
	assert.Empty(t, sum.Items)
	assert.True(t, sum.Total.IsZero())

	_, err = s.RemoveFromCart(ctx, "missing", 1)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestCartIsPerSession(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a, b := s.NewSession(), s.NewSession()

	_, err := s.AddToCart(ctx, a, 1, 1)
	require.NoError(t, err)

	sum, err := s.Cart(b)
	require.NoError(t, err)
	assert.Empty(t, sum.Items)
	n, err := s.Notification(b)
	require.NoError(t, err)
	assert.Nil(t, n)
}
