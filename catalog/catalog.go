// Package catalog serves the static product list the storefront sells.
package catalog

import (
	"strings"

	"storefront-service/models"

	"golang.org/x/text/cases"
)

// CategoryAll selects every category in Filter.
const CategoryAll = "all"

// Catalog is the read-only product source consumed by the storefront.
type Catalog interface {
	All() []models.Product
	FindByID(id string) (models.Product, bool)
	Search(term string) []models.Product
	Filter(term, category string) []models.Product
	Categories() []string
}

type staticCatalog struct {
	products []models.Product
	byID     map[string]int
}

// NewStatic builds a catalog over products. Products are copied; ids are
// expected to be unique and later duplicates are ignored.
func NewStatic(products []models.Product) Catalog {
	c := &staticCatalog{byID: make(map[string]int, len(products))}
	for _, p := range products {
		if _, dup := c.byID[p.ID]; dup {
			continue
		}
		c.byID[p.ID] = len(c.products)
		c.products = append(c.products, p)
	}
	return c
}

// NewDemo returns the six-product demo catalog.
func NewDemo() Catalog {
	return NewStatic(DemoProducts())
}

func (c *staticCatalog) All() []models.Product {
	out := make([]models.Product, len(c.products))
	copy(out, c.products)
	return out
}

func (c *staticCatalog) FindByID(id string) (models.Product, bool) {
	i, ok := c.byID[id]
	if !ok {
		return models.Product{}, false
	}
	return c.products[i], true
}

// Search matches term case-insensitively against name or category.
func (c *staticCatalog) Search(term string) []models.Product {
	return c.Filter(term, CategoryAll)
}

func (c *staticCatalog) Filter(term, category string) []models.Product {
	folder := cases.Fold()
	needle := folder.String(term)

	out := []models.Product{}
	for _, p := range c.products {
		if category != "" && category != CategoryAll && p.Category != category {
			continue
		}
		if needle != "" &&
			!strings.Contains(folder.String(p.Name), needle) &&
			!strings.Contains(folder.String(p.Category), needle) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Categories lists CategoryAll followed by each category in first-seen order.
func (c *staticCatalog) Categories() []string {
	seen := map[string]bool{}
	out := []string{CategoryAll}
	for _, p := range c.products {
		if seen[p.Category] {
			continue
		}
		seen[p.Category] = true
		out = append(out, p.Category)
	}
	return out
}
