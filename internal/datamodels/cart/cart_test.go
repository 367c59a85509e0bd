package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/example/asati/internal/datamodels/product"
)

func item(id int64, price string, qty int) Item {
	return Item{Product: product.Product{ID: id, Price: decimal.RequireFromString(price)}, Quantity: qty}
}

func TestSummarize(t *testing.T) {
	items := []Item{item(1, "10.00", 2), item(2, "5.00", 3)}
	sum := Summarize(items)

	assert.Equal(t, "35.00", sum.Subtotal.StringFixed(2))
	assert.Equal(t, "3.50", sum.Tax.StringFixed(2))
	assert.Equal(t, "38.50", sum.Total.StringFixed(2))
	assert.Equal(t, 5, sum.ItemCount)
}

func TestSummarizeEmpty(t *testing.T) {
	sum := Summarize(nil)
	assert.True(t, sum.Total.IsZero())
	assert.Zero(t, sum.ItemCount)
	assert.NotNil(t, sum.Items)
}

func TestTotalKeepsCents(t *testing.T) {
	// 0.1 + 0.2 不能出现浮点误差
	items := []Item{item(1, "0.10", 1), item(2, "0.20", 1)}
	assert.True(t, Subtotal(items).Equal(decimal.RequireFromString("0.30")))
	assert.Equal(t, "0.33", Total(items).StringFixed(2))
}

func TestCloneIsIndependent(t *testing.T) {
	items := []Item{item(1, "1.00", 1)}
	c := Clone(items)
	c[0].Quantity = 9
	assert.Equal(t, 1, items[0].Quantity)
}
