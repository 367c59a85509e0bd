package cart

import (
	"github.com/shopspring/decimal"

	"github.com/example/asati/internal/datamodels/product"
)

// TaxRate 固定税率 10%
var TaxRate = decimal.RequireFromString("0.10")

// Item 购物车条目
type Item struct {
	Product  product.Product `json:"product"`
	Quantity int             `json:"quantity"`
}

// LineTotal 单价 × 数量
func (i Item) LineTotal() decimal.Decimal {
	return i.Product.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Subtotal 所有条目小计
func Subtotal(items []Item) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.LineTotal())
	}
	return sum
}

// Tax 税额 = 小计 × 税率
func Tax(items []Item) decimal.Decimal {
	return Subtotal(items).Mul(TaxRate)
}

// Total 小计 + 税额
func Total(items []Item) decimal.Decimal {
	sub := Subtotal(items)
	return sub.Add(sub.Mul(TaxRate))
}

// ItemCount 购物车角标显示的件数
func ItemCount(items []Item) int {
	n := 0
	for _, it := range items {
		n += it.Quantity
	}
	return n
}

// Clone 深拷贝，用于订单快照
func Clone(items []Item) []Item {
	out := make([]Item, len(items))
	copy(out, items)
	return out
}

// Summary 购物车展示用的汇总
type Summary struct {
	Items     []Item          `json:"items"`
	ItemCount int             `json:"item_count"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Tax       decimal.Decimal `json:"tax"`
	Total     decimal.Decimal `json:"total"`
}

// Summarize 根据当前条目计算汇总
func Summarize(items []Item) Summary {
	return Summary{
		Items:     Clone(items),
		ItemCount: ItemCount(items),
		Subtotal:  Subtotal(items),
		Tax:       Tax(items),
		Total:     Total(items),
	}
}
