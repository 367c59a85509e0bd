package category

import "strings"

// Category 商品分类
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SameName 分类名称比较忽略大小写
func (c *Category) SameName(name string) bool {
	return strings.EqualFold(c.Name, name)
}
