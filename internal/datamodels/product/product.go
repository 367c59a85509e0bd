package product

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Product 手织商品
type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	Material    string          `json:"material"`
	Category    string          `json:"category"` // 分类名称引用，非分类 ID
	ImageURL    string          `json:"image_url"`
	Inventory   int             `json:"inventory"`
}

// InCategory 按分类名称匹配（忽略大小写），空分类表示全部
func (p *Product) InCategory(name string) bool {
	if name == "" {
		return true
	}
	return strings.EqualFold(p.Category, name)
}
