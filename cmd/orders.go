package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rs/zerolog"

	"github.com/verdantmart/storefront/docstore"
	"github.com/verdantmart/storefront/internal/config"
	"github.com/verdantmart/storefront/internal/infra"
	"github.com/verdantmart/storefront/internal/log"
)

// runOrders prints the persisted order history straight from the document
// store, newest first, optionally scoped to one user.
func runOrders(c context.Context, userID string) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "main runOrders").
		Logger()

	logger.Info().Str(log.KeyProcess, "init config").Msg("initializing config")
	cfg := config.InitConfig(c, "storefront")
	logger.Info().Str(log.KeyProcess, "init config").Msg("initialized config")

	pool := infra.NewDatabaseClient(c, cfg.Database)
	defer pool.Close()
	docs := docstore.NewPostgres(pool)

	filter := docstore.Filter{}
	if userID != "" {
		filter = docstore.Filter{Field: "userId", Value: userID}
	}

	logger.Info().Str(log.KeyProcess, "finding orders").Msg("finding orders")
	entries, err := docs.Query(c, "orders", filter, docstore.Order{Field: "orderDate", Desc: true})
	if err != nil {
		logger.Fatal().Err(err).Msgf("failed finding orders with error=%s", err.Error())
	}
	logger.Info().
		Str(log.KeyProcess, "finding orders").
		Int(log.KeyOrderCount, len(entries)).
		Msg("found orders")

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ORDER\tUSER\tTOTAL\tDATE\tSTATUS")
	for _, entry := range entries {
		fmt.Fprintf(
			w,
			"%s\t%s\t%s\t%s\t%s\n",
			entry.Doc["orderId"],
			entry.Doc["userEmail"],
			entry.Doc["totalAmount"],
			entry.Doc["orderDate"],
			entry.Doc["status"],
		)
	}
	w.Flush()
}
