package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rs/zerolog"

	"github.com/verdantmart/storefront/catalog"
	"github.com/verdantmart/storefront/internal/config"
	"github.com/verdantmart/storefront/internal/infra"
	"github.com/verdantmart/storefront/internal/log"
	"github.com/verdantmart/storefront/search"
)

func loadProducts(c context.Context) []catalog.Product {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "main loadProducts").
		Logger()

	logger.Info().Str(log.KeyProcess, "init config").Msg("initializing config")
	cfg := config.InitConfig(c, "storefront")
	logger.Info().Str(log.KeyProcess, "init config").Msg("initialized config")

	var svc catalog.Service = catalog.NewClient(cfg.Catalog)
	if cfg.Cache.Host != "" {
		svc = catalog.NewCachedService(svc, infra.NewCacheClient(c, cfg.Cache))
	}
	cache := catalog.NewCache()

	logger.Info().Str(log.KeyProcess, "loading catalog").Msg("loading catalog")
	products, err := cache.Load(c, svc)
	if err != nil {
		logger.Fatal().Err(err).Msgf("failed loading catalog with error=%s", err.Error())
	}
	logger.Info().
		Str(log.KeyProcess, "loading catalog").
		Int(log.KeyProductCount, len(products)).
		Msg("loaded catalog")

	return products
}

func runBrowse(c context.Context, query string) {
	products := loadProducts(c)
	if query != "" {
		logger := zerolog.Ctx(c).
			With().
			Str(log.KeyTag, "main runBrowse").
			Str(log.KeyQuery, query).
			Logger()
		products = search.Filter(products, query)
		logger.Info().Int(log.KeyProductCount, len(products)).Msg("filtered catalog")
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tPRICE\tCATEGORY")
	for _, product := range products {
		fmt.Fprintf(
			w,
			"%s\t%s\t%s\t%s\n",
			product.ID,
			product.Title,
			product.Price.StringFixed(2),
			search.Categorize(product),
		)
	}
	w.Flush()
}

func runCategories(c context.Context) {
	products := loadProducts(c)
	for _, category := range search.AvailableCategories(products) {
		fmt.Println(category)
	}
}
