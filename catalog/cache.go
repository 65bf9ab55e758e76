package catalog

import (
	"context"
	"sync"
)

// Cache holds the last fetched catalog snapshot together with its load state.
// Mutations replace the whole snapshot, so a reader never observes a torn
// product list.
type Cache struct {
	mu       sync.Mutex
	products []Product
	selected *Product
	loading  bool
	err      error
}

func NewCache() *Cache {
	return &Cache{}
}

// Load fetches the full catalog through svc and replaces the snapshot. The
// previous snapshot stays visible until the fetch resolves.
func (ca *Cache) Load(c context.Context, svc Service) ([]Product, error) {
	ca.setLoading()
	products, err := svc.ListProducts(c)

	ca.mu.Lock()
	defer ca.mu.Unlock()
	ca.loading = false
	if err != nil {
		ca.err = err
		return nil, err
	}
	ca.products = products
	ca.err = nil
	return ca.snapshotLocked(), nil
}

// LoadProduct fetches a single product and records it as the selected one.
func (ca *Cache) LoadProduct(c context.Context, svc Service, id string) (Product, error) {
	ca.setLoading()
	product, err := svc.GetProduct(c, id)

	ca.mu.Lock()
	defer ca.mu.Unlock()
	ca.loading = false
	if err != nil {
		ca.err = err
		return Product{}, err
	}
	ca.selected = &product
	ca.err = nil
	return product, nil
}

func (ca *Cache) setLoading() {
	ca.mu.Lock()
	defer ca.mu.Unlock()
	ca.loading = true
	ca.err = nil
}

func (ca *Cache) Products() []Product {
	ca.mu.Lock()
	defer ca.mu.Unlock()
	return ca.snapshotLocked()
}

func (ca *Cache) snapshotLocked() []Product {
	snapshot := make([]Product, len(ca.products))
	copy(snapshot, ca.products)
	return snapshot
}

func (ca *Cache) Selected() (Product, bool) {
	ca.mu.Lock()
	defer ca.mu.Unlock()
	if ca.selected == nil {
		return Product{}, false
	}
	return *ca.selected, true
}

func (ca *Cache) ClearSelected() {
	ca.mu.Lock()
	defer ca.mu.Unlock()
	ca.selected = nil
}

func (ca *Cache) Loading() bool {
	ca.mu.Lock()
	defer ca.mu.Unlock()
	return ca.loading
}

func (ca *Cache) Err() error {
	ca.mu.Lock()
	defer ca.mu.Unlock()
	return ca.err
}

func (ca *Cache) ClearError() {
	ca.mu.Lock()
	defer ca.mu.Unlock()
	ca.err = nil
}
