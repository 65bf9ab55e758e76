package catalog

import (
	"context"
	stderrors "errors"
	"sync/atomic"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/testcontainers/testcontainers-go"
	testRedis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func setupRedis(t *testing.T, c context.Context) (*redis.Client, func()) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}

	redisContainer, err := testRedis.Run(c, "redis:7.4.2-alpine3.21")
	if err != nil {
		t.Fatalf("failed running redis container with error: %s", err)
	}

	redisConnStr, err := redisContainer.ConnectionString(c)
	if err != nil {
		t.Fatalf("failed getting redis connection string with error: %s", err)
	}

	redisOpt, err := redis.ParseURL(redisConnStr)
	if err != nil {
		t.Fatalf("failed parsing redis connection string with error: %s", err)
	}

	redisClient := redis.NewClient(redisOpt)
	if err = redisClient.Ping(c).Err(); err != nil {
		t.Fatalf("failed ping redis client with error: %s", err)
	}

	teardown := func() {
		redisClient.Close()
		if err := testcontainers.TerminateContainer(redisContainer); err != nil {
			t.Fatalf("failed to terminate container: %s", err)
		}
	}
	return redisClient, teardown
}

type countingService struct {
	stubService
	listCalls int32
	getCalls  int32
}

func (s *countingService) ListProducts(c context.Context) ([]Product, error) {
	atomic.AddInt32(&s.listCalls, 1)
	return s.stubService.ListProducts(c)
}

func (s *countingService) GetProduct(c context.Context, id string) (Product, error) {
	atomic.AddInt32(&s.getCalls, 1)
	return s.stubService.GetProduct(c, id)
}

func TestCachedServiceListProducts(t *testing.T) {
	c := context.Background()
	redisClient, teardown := setupRedis(t, c)
	defer teardown()

	products := fixtureProducts()
	next := &countingService{stubService: stubService{products: products}}
	cached := NewCachedService(next, redisClient)

	first, err := cached.ListProducts(c)
	assert.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&next.listCalls))

	second, err := cached.ListProducts(c)
	assert.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&next.listCalls), "second read should hit the cache")

	assert.Len(t, first, len(products))
	assert.Equal(t, first[0].ID, second[0].ID)
	assert.Equal(t, first[0].Title, second[0].Title)
	assert.True(t, first[0].Price.Equal(second[0].Price))
}

func TestCachedServiceGetProduct(t *testing.T) {
	c := context.Background()
	redisClient, teardown := setupRedis(t, c)
	defer teardown()

	products := fixtureProducts()
	next := &countingService{stubService: stubService{product: products[0]}}
	cached := NewCachedService(next, redisClient)

	first, err := cached.GetProduct(c, products[0].ID)
	assert.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&next.getCalls))

	second, err := cached.GetProduct(c, products[0].ID)
	assert.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&next.getCalls), "second read should hit the cache")
	assert.Equal(t, first.ID, second.ID)
}

func TestCachedServiceUpstreamFailure(t *testing.T) {
	c := context.Background()
	redisClient, teardown := setupRedis(t, c)
	defer teardown()

	fetchErr := stderrors.New("catalog unavailable")
	next := &countingService{stubService: stubService{err: fetchErr}}
	cached := NewCachedService(next, redisClient)

	_, err := cached.ListProducts(c)
	assert.ErrorIs(t, err, fetchErr)

	_, err = cached.GetProduct(c, "1")
	assert.ErrorIs(t, err, fetchErr)
}

func fixtureProducts() []Product {
	return []Product{
		{
			ID:       "1",
			Title:    "Red Sneaker",
			Price:    decimal.RequireFromString("10.5"),
			Category: "Footwear",
			Images:   []string{"https://img.example/1.jpg"},
		},
		{
			ID:       "2",
			Title:    "Oak Table",
			Price:    decimal.NewFromInt(120),
			Category: "Furniture",
			Images:   []string{"https://img.example/2.jpg"},
		},
	}
}
