package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/verdantmart/storefront/catalog"
)

func product(id string, price int64) catalog.Product {
	return catalog.Product{
		ID:     id,
		Title:  "product-" + id,
		Price:  decimal.NewFromInt(price),
		Images: []string{"https://img.example/" + id + ".jpg"},
	}
}

func assertTotalsConsistent(t *testing.T, snapshot Snapshot) {
	t.Helper()
	quantity := 0
	amount := decimal.Zero
	for _, item := range snapshot.Items {
		assert.GreaterOrEqual(t, item.Quantity, 1, "quantity must always be >= 1")
		quantity += item.Quantity
		amount = amount.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	assert.Equal(t, quantity, snapshot.TotalQuantity)
	assert.True(t, amount.Equal(snapshot.TotalAmount),
		"expected totalAmount=%s got=%s", amount, snapshot.TotalAmount)
}

func TestLedgerTotals(t *testing.T) {
	ledger := NewLedger()
	ledger.Add(product("1", 10))
	ledger.SetQuantity("1", 2)
	ledger.Add(product("2", 5))

	snapshot := ledger.Snapshot()
	assert.Equal(t, 3, snapshot.TotalQuantity)
	assert.True(t, decimal.NewFromInt(25).Equal(snapshot.TotalAmount))
	assertTotalsConsistent(t, snapshot)
}

func TestLedgerMutations(t *testing.T) {
	tests := []struct {
		name             string
		mutate           func(*Ledger)
		expectedIDs      []string
		expectedQuantity int
	}{
		{
			name: "given duplicate add should not increment",
			mutate: func(l *Ledger) {
				l.Add(product("1", 10))
				l.Add(product("1", 10))
			},
			expectedIDs:      []string{"1"},
			expectedQuantity: 1,
		},
		{
			name: "given setQuantity should replace quantity",
			mutate: func(l *Ledger) {
				l.Add(product("1", 10))
				l.SetQuantity("1", 5)
			},
			expectedIDs:      []string{"1"},
			expectedQuantity: 5,
		},
		{
			name: "given setQuantity zero should remove item",
			mutate: func(l *Ledger) {
				l.Add(product("1", 10))
				l.SetQuantity("1", 0)
			},
			expectedIDs:      []string{},
			expectedQuantity: 0,
		},
		{
			name: "given setQuantity negative should remove item",
			mutate: func(l *Ledger) {
				l.Add(product("1", 10))
				l.SetQuantity("1", -3)
			},
			expectedIDs:      []string{},
			expectedQuantity: 0,
		},
		{
			name: "given setQuantity for absent id should be a no-op",
			mutate: func(l *Ledger) {
				l.SetQuantity("missing", 4)
			},
			expectedIDs:      []string{},
			expectedQuantity: 0,
		},
		{
			name: "given remove of absent id should be a no-op",
			mutate: func(l *Ledger) {
				l.Add(product("1", 10))
				l.Remove("missing")
			},
			expectedIDs:      []string{"1"},
			expectedQuantity: 1,
		},
		{
			name: "given clear should empty the ledger",
			mutate: func(l *Ledger) {
				l.Add(product("1", 10))
				l.Add(product("2", 5))
				l.Clear()
			},
			expectedIDs:      []string{},
			expectedQuantity: 0,
		},
		{
			name: "given removals should preserve insertion order",
			mutate: func(l *Ledger) {
				l.Add(product("1", 10))
				l.Add(product("2", 5))
				l.Add(product("3", 7))
				l.Remove("2")
			},
			expectedIDs:      []string{"1", "3"},
			expectedQuantity: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger := NewLedger()
			tt.mutate(ledger)

			snapshot := ledger.Snapshot()
			ids := make([]string, 0, len(snapshot.Items))
			for _, item := range snapshot.Items {
				ids = append(ids, item.ProductID)
			}
			assert.Equal(t, tt.expectedIDs, ids)
			assert.Equal(t, tt.expectedQuantity, snapshot.TotalQuantity)
			assertTotalsConsistent(t, snapshot)
		})
	}
}

func TestSetQuantityZeroEqualsRemove(t *testing.T) {
	viaSet := NewLedger()
	viaSet.Add(product("1", 10))
	viaSet.Add(product("2", 5))
	viaSet.SetQuantity("1", 0)

	viaRemove := NewLedger()
	viaRemove.Add(product("1", 10))
	viaRemove.Add(product("2", 5))
	viaRemove.Remove("1")

	assert.Equal(t, viaRemove.Snapshot(), viaSet.Snapshot())
}

func TestAddSnapshotsPriceAndImage(t *testing.T) {
	ledger := NewLedger()
	ledger.Add(product("1", 10))

	snapshot := ledger.Snapshot()
	assert.Len(t, snapshot.Items, 1)
	assert.Equal(t, "https://img.example/1.jpg", snapshot.Items[0].Image)
	assert.True(t, decimal.NewFromInt(10).Equal(snapshot.Items[0].Price))
}
