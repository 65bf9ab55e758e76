package search

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/verdantmart/storefront/catalog"
)

func TestRecordHistory(t *testing.T) {
	t.Run("given empty query should not record", func(t *testing.T) {
		state := NewState()
		state.Record("")
		assert.Empty(t, state.Snapshot().History)
	})

	t.Run("given new query should prepend", func(t *testing.T) {
		state := NewState()
		state.Record("first")
		state.Record("second")
		assert.Equal(t, []string{"second", "first"}, state.Snapshot().History)
	})

	t.Run("given duplicate query should not reorder", func(t *testing.T) {
		state := NewState()
		state.Record("first")
		state.Record("second")
		state.Record("first")
		assert.Equal(t, []string{"second", "first"}, state.Snapshot().History)
	})

	t.Run("given more than ten queries should drop the oldest", func(t *testing.T) {
		state := NewState()
		for i := 0; i < 12; i++ {
			state.Record(fmt.Sprintf("query-%d", i))
		}
		history := state.Snapshot().History
		assert.Len(t, history, 10)
		assert.Equal(t, "query-11", history[0])
		assert.NotContains(t, history, "query-0")
		assert.NotContains(t, history, "query-1")
	})

	t.Run("history should never contain duplicates", func(t *testing.T) {
		state := NewState()
		for i := 0; i < 20; i++ {
			state.Record(fmt.Sprintf("query-%d", i%5))
		}
		history := state.Snapshot().History
		seen := map[string]bool{}
		for _, entry := range history {
			assert.False(t, seen[entry], "history should not contain %s twice", entry)
			seen[entry] = true
		}
	})
}

func TestStateApply(t *testing.T) {
	sneaker := product("1", "Red Sneaker", "", "")
	table := product("2", "Oak Table", "", "")

	state := NewState()
	state.SetQuery("sneaker")
	filtered := state.Apply([]catalog.Product{sneaker, table})

	assert.Equal(t, []catalog.Product{sneaker}, filtered)
	assert.Equal(t, []string{"1"}, state.Snapshot().ResultIDs)
}

func TestStateClear(t *testing.T) {
	state := NewState()
	state.SetQuery("sneaker")
	state.SetSearching(true)
	state.Record("sneaker")
	state.Apply([]catalog.Product{product("1", "Red Sneaker", "", "")})

	state.Clear()

	snapshot := state.Snapshot()
	assert.Empty(t, snapshot.Query)
	assert.False(t, snapshot.IsSearching)
	assert.Empty(t, snapshot.ResultIDs)
	assert.Equal(t, []string{"sneaker"}, snapshot.History, "clear should keep history")

	state.ClearHistory()
	assert.Empty(t, state.Snapshot().History)
}
