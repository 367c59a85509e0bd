package store

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/example/asati/internal/datamodels/category"
	"github.com/example/asati/internal/datamodels/product"
)

//go:embed seed.yaml
var defaultSeed []byte

// Seed 初始商品目录
type Seed struct {
	Categories []category.Category
	Products   []product.Product
}

type seedFile struct {
	Categories []struct {
		ID   string `yaml:"id"`
		Name string `yaml:"name"`
	} `yaml:"categories"`
	Products []struct {
		ID          int64  `yaml:"id"`
		Name        string `yaml:"name"`
		Price       string `yaml:"price"`
		Category    string `yaml:"category"`
		Material    string `yaml:"material"`
		Description string `yaml:"description"`
		ImageURL    string `yaml:"image_url"`
		Inventory   int    `yaml:"inventory"`
	} `yaml:"products"`
}

// ParseSeed 解析 YAML 格式的种子目录
func ParseSeed(raw []byte) (*Seed, error) {
	var f seedFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	seed := &Seed{}
	for _, c := range f.Categories {
		seed.Categories = append(seed.Categories, category.Category{ID: c.ID, Name: c.Name})
	}
	for _, p := range f.Products {
		price, err := decimal.NewFromString(p.Price)
		if err != nil {
			return nil, fmt.Errorf("parse seed: product %d price %q: %w", p.ID, p.Price, err)
		}
		if price.IsNegative() {
			return nil, fmt.Errorf("parse seed: product %d has negative price", p.ID)
		}
		if p.Inventory < 0 {
			return nil, fmt.Errorf("parse seed: product %d has negative inventory", p.ID)
		}
		seed.Products = append(seed.Products, product.Product{
			ID:          p.ID,
			Name:        p.Name,
			Price:       price,
			Description: p.Description,
			Material:    p.Material,
			Category:    p.Category,
			ImageURL:    p.ImageURL,
			Inventory:   p.Inventory,
		})
	}
	return seed, nil
}

// LoadSeedFile 从文件读取种子目录
func LoadSeedFile(path string) (*Seed, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseSeed(raw)
}

// DefaultSeed 内置的种子目录
func DefaultSeed() *Seed {
	seed, err := ParseSeed(defaultSeed)
	if err != nil {
		panic(err)
	}
	return seed
}

// loadSeed 替换目录数据，构造阶段调用
func (s *Store) loadSeed(seed *Seed) {
	s.categories = append([]category.Category(nil), seed.Categories...)
	s.products = append([]product.Product(nil), seed.Products...)
	s.productIDs = idGen{}
	for _, p := range s.products {
		s.productIDs.observe(p.ID)
	}
	s.sortCategories()
}
