package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/verdantmart/storefront/internal/config"
	"github.com/verdantmart/storefront/internal/errors"
)

const productsBody = `[
	{
		"id": 1,
		"title": "Red Sneaker",
		"description": "a running shoe",
		"price": 10.5,
		"category": {"id": 4, "name": "Footwear"},
		"images": ["https://img.example/1.jpg"]
	},
	{
		"id": 2,
		"title": "Oak Table",
		"description": "solid oak dining table",
		"price": 120,
		"category": {"id": 7, "name": "Furniture"},
		"images": ["https://img.example/2.jpg", "https://img.example/2b.jpg"]
	}
]`

const productBody = `{
	"id": 1,
	"title": "Red Sneaker",
	"description": "a running shoe",
	"price": 10.5,
	"category": {"id": 4, "name": "Footwear"},
	"images": ["https://img.example/1.jpg"]
}`

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	client := NewClient(config.Catalog{BaseURL: server.URL, TimeoutSeconds: 5})
	return client, server
}

func TestListProducts(t *testing.T) {
	c := context.Background()

	t.Run("given catalog response should map wire products", func(t *testing.T) {
		client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/products", r.URL.Path)
			w.Write([]byte(productsBody))
		})
		defer server.Close()

		products, err := client.ListProducts(c)
		assert.NoError(t, err)
		assert.Len(t, products, 2)
		assert.Equal(t, "1", products[0].ID)
		assert.Equal(t, "Red Sneaker", products[0].Title)
		assert.Equal(t, "Footwear", products[0].Category)
		assert.True(t, decimal.NewFromFloat(10.5).Equal(products[0].Price))
		assert.Equal(t, []string{"https://img.example/2.jpg", "https://img.example/2b.jpg"}, products[1].Images)
	})

	t.Run("given non-200 status should fail with store error", func(t *testing.T) {
		client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})
		defer server.Close()

		_, err := client.ListProducts(c)
		storeErr := errors.StoreError{}
		assert.ErrorAs(t, err, &storeErr)
	})

	t.Run("given malformed body should fail with store error", func(t *testing.T) {
		client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"not": "a list"}`))
		})
		defer server.Close()

		_, err := client.ListProducts(c)
		storeErr := errors.StoreError{}
		assert.ErrorAs(t, err, &storeErr)
	})
}

func TestGetProduct(t *testing.T) {
	c := context.Background()

	t.Run("given catalog response should map the wire product", func(t *testing.T) {
		client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/products/1", r.URL.Path)
			w.Write([]byte(productBody))
		})
		defer server.Close()

		product, err := client.GetProduct(c, "1")
		assert.NoError(t, err)
		assert.Equal(t, "1", product.ID)
		assert.Equal(t, "Red Sneaker", product.Title)
		assert.True(t, decimal.NewFromFloat(10.5).Equal(product.Price))
	})

	t.Run("given missing product should fail with store error", func(t *testing.T) {
		client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})
		defer server.Close()

		_, err := client.GetProduct(c, "999")
		storeErr := errors.StoreError{}
		assert.ErrorAs(t, err, &storeErr)
	})
}
