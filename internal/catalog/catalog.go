// Package catalog provides the static in-memory product catalog.
package catalog

import "github.com/shopspring/decimal"

// Product is an immutable catalog entry.
type Product struct {
	ID    int64
	Name  string
	Price decimal.Decimal
}

// Catalog is a fixed list of products. It is safe for concurrent use
// because it is never mutated after construction.
type Catalog struct {
	products []Product
}

// New returns the default storefront catalog.
func New() *Catalog {
	return &Catalog{
		products: []Product{
			{ID: 1, Name: "Mock T-Shirt", Price: decimal.RequireFromString("19.99")},
			{ID: 2, Name: "Mock Hoodie", Price: decimal.RequireFromString("39.99")},
			{ID: 3, Name: "Mock Sneakers", Price: decimal.RequireFromString("59.99")},
		},
	}
}

// All returns every product in catalog order.
func (c *Catalog) All() []Product {
	out := make([]Product, len(c.products))
	copy(out, c.products)
	return out
}

// ByID returns the product with the given id, if any.
func (c *Catalog) ByID(id int64) (Product, bool) {
	for _, p := range c.products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}
