package search

import (
	"sync"

	"github.com/verdantmart/storefront/catalog"
)

const historyLimit = 10

// State owns the current query, its filtered result ids, and the capped
// search history. Mutations replace the whole snapshot.
type State struct {
	mu sync.Mutex
	s  Snapshot
}

type Snapshot struct {
	Query       string
	IsSearching bool
	ResultIDs   []string
	History     []string
}

func NewState() *State {
	return &State{}
}

func (st *State) SetQuery(query string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s.Query = query
}

func (st *State) SetSearching(searching bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s.IsSearching = searching
}

// Apply filters products with the current query, records the result ids, and
// returns the matching products.
func (st *State) Apply(products []catalog.Product) []catalog.Product {
	st.mu.Lock()
	query := st.s.Query
	st.mu.Unlock()

	filtered := Filter(products, query)

	ids := make([]string, 0, len(filtered))
	for _, product := range filtered {
		ids = append(ids, product.ID)
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	st.s.ResultIDs = ids
	return filtered
}

// Record prepends a non-empty query to the history unless it is already
// present, dropping the oldest entry past the cap. A repeated query is not
// moved to the front.
func (st *State) Record(query string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s.History = recordHistory(st.s.History, query)
}

func recordHistory(history []string, query string) []string {
	if query == "" {
		return history
	}
	for _, entry := range history {
		if entry == query {
			return history
		}
	}
	next := make([]string, 0, len(history)+1)
	next = append(next, query)
	next = append(next, history...)
	if len(next) > historyLimit {
		next = next[:historyLimit]
	}
	return next
}

// Clear resets the query, result ids, and searching flag. History survives.
func (st *State) Clear() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s.Query = ""
	st.s.ResultIDs = nil
	st.s.IsSearching = false
}

func (st *State) ClearHistory() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s.History = nil
}

func (st *State) Snapshot() Snapshot {
	st.mu.Lock()
	defer st.mu.Unlock()
	snapshot := st.s
	snapshot.ResultIDs = append([]string(nil), st.s.ResultIDs...)
	snapshot.History = append([]string(nil), st.s.History...)
	return snapshot
}
