package store

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/example/asati/internal/datamodels/category"
	"github.com/example/asati/internal/datamodels/product"
)

// findProduct 需持有锁
func (s *Store) findProduct(id int64) (int, bool) {
	for i := range s.products {
		if s.products[i].ID == id {
			return i, true
		}
	}
	return -1, false
}

func (s *Store) saveProduct(sess *Session, p product.Product) (any, *Event, error) {
	if p.Price.IsNegative() || p.Inventory < 0 {
		return nil, nil, ErrInvalidProduct
	}
	if p.ID != 0 {
		idx, ok := s.findProduct(p.ID)
		if !ok {
			return nil, nil, ErrProductNotFound
		}
		s.products[idx] = p
		notifySuccess(sess, "Product updated successfully!")
		return p, nil, nil
	}
	p.ID = s.productIDs.next(s.now())
	s.products = append([]product.Product{p}, s.products...)
	notifySuccess(sess, "Product added successfully!")
	return p, nil, nil
}

func (s *Store) deleteProduct(sess *Session, id int64) (any, *Event, error) {
	idx, ok := s.findProduct(id)
	if !ok {
		return nil, nil, ErrProductNotFound
	}
	s.products = append(s.products[:idx:idx], s.products[idx+1:]...)
	notifySuccess(sess, "Product deleted.")
	return nil, nil, nil
}

func (s *Store) createCategory(sess *Session, name string) (any, *Event, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil, ErrBlankCategory
	}
	for i := range s.categories {
		if s.categories[i].SameName(name) {
			return nil, nil, ErrDuplicateCategory
		}
	}
	c := category.Category{
		ID:   strconv.FormatInt(s.categoryIDs.next(s.now()), 10),
		Name: name,
	}
	s.categories = append(s.categories, c)
	s.sortCategories()
	notifySuccess(sess, "Category added!")
	return c, nil, nil
}

func (s *Store) deleteCategory(sess *Session, id string) (any, *Event, error) {
	idx := -1
	for i := range s.categories {
		if s.categories[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, nil, ErrCategoryNotFound
	}
	name := s.categories[idx].Name
	count := 0
	for i := range s.products {
		if s.products[i].Category == name {
			count++
		}
	}
	if count > 0 {
		return nil, nil, &CategoryInUseError{Name: name, Count: count}
	}
	s.categories = append(s.categories[:idx:idx], s.categories[idx+1:]...)
	notifySuccess(sess, "Category deleted.")
	return nil, nil, nil
}

// sortCategories 按名称的语言规则排序，需持有锁
func (s *Store) sortCategories() {
	sort.SliceStable(s.categories, func(i, j int) bool {
		return s.collator.CompareString(s.categories[i].Name, s.categories[j].Name) < 0
	})
}

// SaveProduct 新建（ID 为 0）或整体替换商品
func (s *Store) SaveProduct(ctx context.Context, sid string, p product.Product) (product.Product, error) {
	res, err := s.Apply(ctx, sid, SaveProduct{Product: p})
	if err != nil {
		return product.Product{}, err
	}
	return res.(product.Product), nil
}

// DeleteProduct 删除商品
func (s *Store) DeleteProduct(ctx context.Context, sid string, id int64) error {
	_, err := s.Apply(ctx, sid, DeleteProduct{ID: id})
	return err
}

// CreateCategory 新建分类，名称忽略大小写唯一
func (s *Store) CreateCategory(ctx context.Context, sid, name string) (category.Category, error) {
	res, err := s.Apply(ctx, sid, CreateCategory{Title: name})
	if err != nil {
		return category.Category{}, err
	}
	return res.(category.Category), nil
}

// DeleteCategory 删除未被引用的分类
func (s *Store) DeleteCategory(ctx context.Context, sid, id string) error {
	_, err := s.Apply(ctx, sid, DeleteCategory{ID: id})
	return err
}

// SelectProduct 打开商品详情
func (s *Store) SelectProduct(ctx context.Context, sid string, id int64) (product.Product, error) {
	res, err := s.Apply(ctx, sid, SelectProduct{ID: id})
	if err != nil {
		return product.Product{}, err
	}
	return res.(product.Product), nil
}

// ClearSelection 关闭商品详情
func (s *Store) ClearSelection(ctx context.Context, sid string) error {
	_, err := s.Apply(ctx, sid, ClearSelection{})
	return err
}

// Products 全部商品（新建的在前）
func (s *Store) Products() []product.Product {
	return s.ProductsByCategory("")
}

// ProductsByCategory 按分类名筛选，忽略大小写；空表示全部
func (s *Store) ProductsByCategory(name string) []product.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]product.Product, 0, len(s.products))
	for i := range s.products {
		if s.products[i].InCategory(name) {
			out = append(out, s.products[i])
		}
	}
	return out
}

// Product 按 ID 查询
func (s *Store) Product(id int64) (product.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, ok := s.findProduct(id)
	if !ok {
		return product.Product{}, ErrProductNotFound
	}
	return s.products[idx], nil
}

// Categories 全部分类（按名称排序）
func (s *Store) Categories() []category.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]category.Category, len(s.categories))
	copy(out, s.categories)
	return out
}
