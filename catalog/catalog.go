package catalog

import (
	"context"

	"github.com/shopspring/decimal"
)

// Product is an immutable snapshot fetched from the catalog. It is never
// mutated locally.
type Product struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Images      []string        `json:"images"`
}

// Service is the read-only product catalog capability.
type Service interface {
	ListProducts(c context.Context) ([]Product, error)
	GetProduct(c context.Context, id string) (Product, error)
}
