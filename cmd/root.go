package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/verdantmart/storefront/internal/config"
	"github.com/verdantmart/storefront/internal/log"
	"github.com/verdantmart/storefront/internal/otel"
)

func Start() {
	logger := log.InitLogger("/var/log/storefront.log").
		With().
		Str(log.KeyAppName, "storefront").
		Str(log.KeyTag, "main Start").
		Logger()

	logger.Info().Msg("adding listener for SIGINT and SIGTERM")
	c, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	logger.Info().Msg("added listener for SIGINT and SIGTERM")

	c = logger.WithContext(c)

	logger = logger.With().Str(log.KeyProcess, "init config").Logger()
	logger.Info().Msg("initializing config")
	cfg := config.InitConfig(c, "storefront")
	logger.Info().Msg("initialized config")

	logger = logger.With().Str(log.KeyProcess, "initializing otel sdk").Logger()
	logger.Info().Msg("initializing otel sdk")
	otelShutdowns, err := otel.InitOtelSdk(c, fmt.Sprintf("%s:%d", cfg.Otel.Host, cfg.Otel.Port))
	if err != nil {
		logger.Fatal().Err(err).Msgf("failed initializing otel sdk with error=%s", err.Error())
	}
	defer func() {
		logger = logger.With().Str(log.KeyProcess, "shutting down otel").Logger()
		logger.Info().Msg("shutting down otel")
		if err := otel.ShutdownOtel(c, otelShutdowns); err != nil {
			err = fmt.Errorf("failed shutting down otel with error=%w", err)
			logger.Error().Err(err).Msg(err.Error())
			return
		}
		logger.Info().Msg("shutdown otel")
	}()
	logger.Info().Msg("initialized otel sdk")

	rootCmd := &cobra.Command{Use: "storefront"}
	commands := []*cobra.Command{
		{
			Use:   "browse",
			Short: "List the product catalog",
			Run: func(cmd *cobra.Command, args []string) {
				runBrowse(cmd.Context(), "")
			},
		},
		{
			Use:   "search [query]",
			Short: "Search the product catalog",
			Args:  cobra.ExactArgs(1),
			Run: func(cmd *cobra.Command, args []string) {
				runBrowse(cmd.Context(), args[0])
			},
		},
		{
			Use:   "categories",
			Short: "List the categories derived from the catalog",
			Run: func(cmd *cobra.Command, args []string) {
				runCategories(cmd.Context())
			},
		},
	}
	ordersCmd := &cobra.Command{
		Use:   "orders",
		Short: "List persisted orders, newest first",
		Run: func(cmd *cobra.Command, args []string) {
			userID, _ := cmd.Flags().GetString("user")
			runOrders(cmd.Context(), userID)
		},
	}
	ordersCmd.Flags().String("user", "", "only orders for this user id")
	commands = append(commands, ordersCmd)
	rootCmd.AddCommand(commands...)
	if err := rootCmd.ExecuteContext(c); err != nil {
		logger.Fatal().Err(err).Msgf("error when executing command=%s", err.Error())
	}
}
