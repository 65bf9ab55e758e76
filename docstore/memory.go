package docstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/verdantmart/storefront/internal/errors"
)

// Memory is an in-memory Store used by tests and the local shell.
type Memory struct {
	mu          sync.Mutex
	collections map[string]map[string]Document
}

func NewMemory() *Memory {
	return &Memory{collections: map[string]map[string]Document{}}
}

func (m *Memory) Get(c context.Context, collection, key string) (Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.collections[collection][key]
	if !ok {
		return nil, errors.ErrNotFound
	}
	return doc.clone(), nil
}

func (m *Memory) Set(c context.Context, collection, key string, doc Document, merge bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.collections[collection] == nil {
		m.collections[collection] = map[string]Document{}
	}
	existing, ok := m.collections[collection][key]
	if merge && ok {
		merged := existing.clone()
		for k, v := range doc {
			merged[k] = v
		}
		m.collections[collection][key] = merged
		return nil
	}
	m.collections[collection][key] = doc.clone()
	return nil
}

func (m *Memory) Add(c context.Context, collection string, doc Document) (string, error) {
	key := uuid.NewString()
	err := m.Set(c, collection, key, doc, false)
	if err != nil {
		return "", err
	}
	return key, nil
}

func (m *Memory) Query(
	c context.Context,
	collection string,
	filter Filter,
	order Order,
) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries := []Entry{}
	for key, doc := range m.collections[collection] {
		if filter.Field != "" && fmt.Sprint(doc[filter.Field]) != fmt.Sprint(filter.Value) {
			continue
		}
		entries = append(entries, Entry{Key: key, Doc: doc.clone()})
	}

	if order.Field != "" {
		sort.SliceStable(entries, func(i, j int) bool {
			a := fmt.Sprint(entries[i].Doc[order.Field])
			b := fmt.Sprint(entries[j].Doc[order.Field])
			if order.Desc {
				return a > b
			}
			return a < b
		})
	}
	return entries, nil
}
