// Package favorites owns the favorited-product set. Entries are snapshots
// captured at favorite time and do not track later catalog changes.
package favorites

import (
	"sync"

	"github.com/shopspring/decimal"

	"github.com/verdantmart/storefront/catalog"
)

type Item struct {
	ID          string
	Title       string
	Price       decimal.Decimal
	Image       string
	Description string
	Category    string
}

type Set struct {
	mu    sync.Mutex
	order []string
	items map[string]Item
}

func NewSet() *Set {
	return &Set{items: map[string]Item{}}
}

// Add stores a snapshot of the product. Adding an id already in the set is a
// no-op.
func (s *Set) Add(product catalog.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[product.ID]; ok {
		return
	}
	image := ""
	if len(product.Images) > 0 {
		image = product.Images[0]
	}
	s.items[product.ID] = Item{
		ID:          product.ID,
		Title:       product.Title,
		Price:       product.Price,
		Image:       image,
		Description: product.Description,
		Category:    product.Category,
	}
	s.order = append(s.order, product.ID)
}

func (s *Set) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return
	}
	delete(s.items, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *Set) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order = nil
	s.items = map[string]Item{}
}

func (s *Set) Contains(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.items[id]
	return ok
}

// Items returns the favorites in insertion order.
func (s *Set) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]Item, 0, len(s.order))
	for _, id := range s.order {
		items = append(items, s.items[id])
	}
	return items
}
