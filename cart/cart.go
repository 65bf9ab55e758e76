// Package cart owns the shopping cart line items and their derived totals.
// Totals are recomputed inside every mutation, so a reader never observes the
// item list and the totals out of sync.
package cart

import (
	"sync"

	"github.com/shopspring/decimal"

	"github.com/verdantmart/storefront/catalog"
)

// Item is a cart line. Price is a snapshot taken when the product was added.
// Quantity is always >= 1; an item that would drop to zero is removed.
type Item struct {
	ProductID string
	Title     string
	Price     decimal.Decimal
	Image     string
	Quantity  int
}

type Snapshot struct {
	Items         []Item
	TotalQuantity int
	TotalAmount   decimal.Decimal
}

// Ledger keeps items in insertion order.
type Ledger struct {
	mu    sync.Mutex
	order []string
	items map[string]Item
}

func NewLedger() *Ledger {
	return &Ledger{items: map[string]Item{}}
}

// Add inserts the product with quantity 1. Adding an id already in the ledger
// is a no-op; a second add must go through SetQuantity.
func (l *Ledger) Add(product catalog.Product) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.items[product.ID]; ok {
		return
	}
	image := ""
	if len(product.Images) > 0 {
		image = product.Images[0]
	}
	l.items[product.ID] = Item{
		ProductID: product.ID,
		Title:     product.Title,
		Price:     product.Price,
		Image:     image,
		Quantity:  1,
	}
	l.order = append(l.order, product.ID)
}

// SetQuantity sets the item's quantity, removing the item when q <= 0.
func (l *Ledger) SetQuantity(id string, q int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	item, ok := l.items[id]
	if !ok {
		return
	}
	if q <= 0 {
		l.removeLocked(id)
		return
	}
	item.Quantity = q
	l.items[id] = item
}

func (l *Ledger) Remove(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.removeLocked(id)
}

func (l *Ledger) removeLocked(id string) {
	if _, ok := l.items[id]; !ok {
		return
	}
	delete(l.items, id)
	for i, existing := range l.order {
		if existing == id {
			l.order = append(l.order[:i], l.order[i+1:]...)
			break
		}
	}
}

func (l *Ledger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.order = nil
	l.items = map[string]Item{}
}

// Snapshot returns the items in insertion order together with totals computed
// from them in the same critical section.
func (l *Ledger) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	items := make([]Item, 0, len(l.order))
	totalQuantity := 0
	totalAmount := decimal.Zero
	for _, id := range l.order {
		item := l.items[id]
		items = append(items, item)
		totalQuantity += item.Quantity
		totalAmount = totalAmount.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return Snapshot{Items: items, TotalQuantity: totalQuantity, TotalAmount: totalAmount}
}
