// Package catalog holds the fixed product list the storefront sells.
package catalog

import (
	"fmt"

	"github.com/example/storefront/pkg/config"
)

// Product is an immutable catalog entry. Price is in whole currency units.
// Weight is the package size shown to customers and plays no part in totals.
type Product struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Price       int64  `json:"price"`
	Image       string `json:"image"`
	Description string `json:"description"`
	Weight      string `json:"weight"`
}

// Catalog is a read-only, ordered product list.
type Catalog struct {
	products []Product
	byID     map[string]int
}

var defaultProducts = []Product{
	{ID: "garam-masala", Name: "Garam Masala", Price: 150, Image: "/images/garam-masala.jpg", Description: "Slow-roasted whole spice blend.", Weight: "500g"},
	{ID: "sambar-powder", Name: "Sambar Powder", Price: 120, Image: "/images/sambar-powder.jpg", Description: "Stone-ground lentil and chilli mix.", Weight: "500g"},
	{ID: "rasam-powder", Name: "Rasam Powder", Price: 110, Image: "/images/rasam-powder.jpg", Description: "Pepper and cumin forward.", Weight: "500g"},
	{ID: "chutney-pudi", Name: "Chutney Pudi", Price: 90, Image: "/images/chutney-pudi.jpg", Description: "Dry peanut and curry leaf chutney.", Weight: "500g"},
	{ID: "turmeric", Name: "Turmeric Powder", Price: 80, Image: "/images/turmeric.jpg", Description: "Single origin, sun dried.", Weight: "500g"},
}

// New builds a catalog from products. Duplicate ids are rejected.
func New(products []Product) (*Catalog, error) {
	c := &Catalog{
		products: make([]Product, 0, len(products)),
		byID:     make(map[string]int, len(products)),
	}
	for _, p := range products {
		if p.ID == "" {
			return nil, fmt.Errorf("product %q has no id", p.Name)
		}
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("duplicate product id %q", p.ID)
		}
		if p.Price < 0 {
			return nil, fmt.Errorf("product %q has a negative price", p.ID)
		}
		c.byID[p.ID] = len(c.products)
		c.products = append(c.products, p)
	}
	return c, nil
}

// FromConfig builds the catalog from shop.products, falling back to the built-in list.
func FromConfig(cfg *config.ShopConfig) (*Catalog, error) {
	if len(cfg.Products) == 0 {
		return New(defaultProducts)
	}
	products := make([]Product, len(cfg.Products))
	for i, p := range cfg.Products {
		products[i] = Product{
			ID:          p.ID,
			Name:        p.Name,
			Price:       p.Price,
			Image:       p.Image,
			Description: p.Description,
			Weight:      p.Weight,
		}
	}
	return New(products)
}

// Products returns a copy of the catalog in display order.
func (c *Catalog) Products() []Product {
	out := make([]Product, len(c.products))
	copy(out, c.products)
	return out
}

// Lookup finds a product by id.
func (c *Catalog) Lookup(id string) (Product, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Product{}, false
	}
	return c.products[i], true
}
