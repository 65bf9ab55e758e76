package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/verdantmart/storefront/internal/errors"
	"github.com/verdantmart/storefront/internal/log"
	"github.com/verdantmart/storefront/internal/otel"
)

const (
	keyProducts = "storefront:products"
	keyProduct  = "storefront:products:%s"
	snapshotTTL = time.Hour
)

// CachedService decorates a Service with a redis-backed snapshot cache so
// repeated catalog reads do not hit the remote catalog.
type CachedService struct {
	next  Service
	cache *redis.Client
}

func NewCachedService(next Service, cache *redis.Client) *CachedService {
	return &CachedService{next: next, cache: cache}
}

func (s *CachedService) ListProducts(c context.Context) ([]Product, error) {
	c, span := otel.Tracer.Start(c, "CachedService ListProducts")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CachedService ListProducts").
		Str(log.KeyCacheKey, keyProducts).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding products in cache").Logger()
	logger.Info().Msg("finding products in cache")
	jsonString, err := s.cache.Get(c, keyProducts).Result()
	if err != nil {
		logger.Info().Err(err).Msg("products not in cache")

		logger = logger.With().Str(log.KeyProcess, "fetching products from catalog").Logger()
		logger.Info().Msg("fetching products from catalog")
		products, err := s.next.ListProducts(c)
		if err != nil {
			err = fmt.Errorf("failed fetching products from catalog with error=%w", err)
			errors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return nil, err
		}
		logger.Info().Msg("fetched products from catalog")

		logger = logger.With().Str(log.KeyProcess, "inserting products to cache").Logger()
		logger.Info().Msg("inserting products to cache")
		encoded, err := json.Marshal(products)
		if err != nil {
			err = fmt.Errorf("failed marshaling products with error=%w", err)
			errors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return nil, err
		}
		err = s.cache.Set(c, keyProducts, encoded, snapshotTTL).Err()
		if err != nil {
			err = fmt.Errorf("failed inserting products to cache with error=%w", err)
			errors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return nil, err
		}
		logger.Info().Msg("inserted products to cache")
		return products, nil
	}
	logger.Info().Msg("found products in cache")

	logger = logger.With().Str(log.KeyProcess, "unmarshaling cache").Logger()
	logger.Info().Msg("unmarshaling cache")
	products := []Product{}
	err = json.Unmarshal([]byte(jsonString), &products)
	if err != nil {
		err = fmt.Errorf("failed unmarshaling cache with error=%w", err)
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Info().Msg("unmarshaled cache")

	return products, nil
}

func (s *CachedService) GetProduct(c context.Context, id string) (Product, error) {
	c, span := otel.Tracer.Start(c, "CachedService GetProduct")
	defer span.End()

	cacheKey := fmt.Sprintf(keyProduct, id)
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CachedService GetProduct").
		Str(log.KeyProductID, id).
		Str(log.KeyCacheKey, cacheKey).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding product in cache").Logger()
	logger.Info().Msg("finding product in cache")
	jsonString, err := s.cache.Get(c, cacheKey).Result()
	if err != nil {
		logger.Info().Err(err).Msg("product not in cache")

		logger = logger.With().Str(log.KeyProcess, "fetching product from catalog").Logger()
		logger.Info().Msg("fetching product from catalog")
		product, err := s.next.GetProduct(c, id)
		if err != nil {
			err = fmt.Errorf("failed fetching productId=%s from catalog with error=%w", id, err)
			errors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return Product{}, err
		}
		logger.Info().Msg("fetched product from catalog")

		logger = logger.With().Str(log.KeyProcess, "inserting product to cache").Logger()
		logger.Info().Msg("inserting product to cache")
		encoded, err := json.Marshal(product)
		if err != nil {
			err = fmt.Errorf("failed marshaling product with error=%w", err)
			errors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return Product{}, err
		}
		err = s.cache.Set(c, cacheKey, encoded, snapshotTTL).Err()
		if err != nil {
			err = fmt.Errorf("failed inserting product to cache with error=%w", err)
			errors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return Product{}, err
		}
		logger.Info().Msg("inserted product to cache")
		return product, nil
	}
	logger.Info().Msg("found product in cache")

	product := Product{}
	err = json.Unmarshal([]byte(jsonString), &product)
	if err != nil {
		err = fmt.Errorf("failed unmarshaling cache with error=%w", err)
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Product{}, err
	}

	return product, nil
}
