package docstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/verdantmart/storefront/internal/errors"
)

func setupPostgres(t *testing.T, c context.Context) (*Postgres, func()) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}

	pgContainer, err := postgres.Run(
		c,
		"postgres:16.6-alpine3.21",
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		postgres.WithDatabase("postgres"),
		postgres.BasicWaitStrategies(),
		postgres.WithInitScripts(
			filepath.Join("..", "migrations", "000001_create_table_documents.up.sql"),
		),
	)
	if err != nil {
		t.Fatalf("failed running postgres container with error: %s", err)
	}

	pgConnStr, err := pgContainer.ConnectionString(c)
	if err != nil {
		t.Fatalf("failed getting postgres connection string with error: %s", err)
	}

	pool, err := pgxpool.New(c, pgConnStr)
	if err != nil {
		t.Fatalf("failed creating postgres pool with error: %s", err)
	}
	if err = pool.Ping(c); err != nil {
		t.Fatalf("failed ping postgres pool with error: %s", err)
	}

	teardown := func() {
		pool.Close()
		if err := testcontainers.TerminateContainer(pgContainer); err != nil {
			t.Fatalf("failed to terminate container: %s", err)
		}
	}
	return NewPostgres(pool), teardown
}

func TestPostgresRoundTrip(t *testing.T) {
	c := context.Background()
	store, teardown := setupPostgres(t, c)
	defer teardown()

	t.Run("given missing key should return not found", func(t *testing.T) {
		_, err := store.Get(c, "users", "missing")
		assert.ErrorIs(t, err, errors.ErrNotFound)
	})

	t.Run("given set then get should round trip the document", func(t *testing.T) {
		err := store.Set(c, "users", "u1", Document{"email": "a@b.com", "firstName": "Ada"}, false)
		assert.NoError(t, err)

		doc, err := store.Get(c, "users", "u1")
		assert.NoError(t, err)
		assert.Equal(t, "a@b.com", doc["email"])
		assert.Equal(t, "Ada", doc["firstName"])
	})

	t.Run("given merge true should keep untouched fields", func(t *testing.T) {
		err := store.Set(c, "users", "u2", Document{"a": "1", "b": "2"}, false)
		assert.NoError(t, err)
		err = store.Set(c, "users", "u2", Document{"a": "3"}, true)
		assert.NoError(t, err)

		doc, err := store.Get(c, "users", "u2")
		assert.NoError(t, err)
		assert.Equal(t, "3", doc["a"])
		assert.Equal(t, "2", doc["b"])
	})

	t.Run("given merge false should replace the document", func(t *testing.T) {
		err := store.Set(c, "users", "u3", Document{"a": "1", "b": "2"}, false)
		assert.NoError(t, err)
		err = store.Set(c, "users", "u3", Document{"a": "3"}, false)
		assert.NoError(t, err)

		doc, err := store.Get(c, "users", "u3")
		assert.NoError(t, err)
		assert.Equal(t, Document{"a": "3"}, doc)
	})

	t.Run("given add should mint a fresh key", func(t *testing.T) {
		key1, err := store.Add(c, "orders", Document{"orderId": "o1"})
		assert.NoError(t, err)
		key2, err := store.Add(c, "orders", Document{"orderId": "o2"})
		assert.NoError(t, err)
		assert.NotEqual(t, key1, key2)

		doc, err := store.Get(c, "orders", key1)
		assert.NoError(t, err)
		assert.Equal(t, "o1", doc["orderId"])
	})
}

func TestPostgresQuery(t *testing.T) {
	c := context.Background()
	store, teardown := setupPostgres(t, c)
	defer teardown()

	_, err := store.Add(c, "orders", Document{"userId": "u1", "orderDate": "2026-01-02T00:00:00Z"})
	assert.NoError(t, err)
	_, err = store.Add(c, "orders", Document{"userId": "u1", "orderDate": "2026-01-01T00:00:00Z"})
	assert.NoError(t, err)
	_, err = store.Add(c, "orders", Document{"userId": "u2", "orderDate": "2026-01-03T00:00:00Z"})
	assert.NoError(t, err)

	t.Run("given filter and descending order should sort newest first", func(t *testing.T) {
		entries, err := store.Query(
			c,
			"orders",
			Filter{Field: "userId", Value: "u1"},
			Order{Field: "orderDate", Desc: true},
		)
		assert.NoError(t, err)
		assert.Len(t, entries, 2)
		assert.Equal(t, "2026-01-02T00:00:00Z", entries[0].Doc["orderDate"])
		assert.Equal(t, "2026-01-01T00:00:00Z", entries[1].Doc["orderDate"])
	})

	t.Run("given no match should return empty entries", func(t *testing.T) {
		entries, err := store.Query(c, "orders", Filter{Field: "userId", Value: "nobody"}, Order{})
		assert.NoError(t, err)
		assert.Empty(t, entries)
	})
}
