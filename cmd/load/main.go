package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"ecomdemo/datagen/config"
	"ecomdemo/datagen/database"
	"ecomdemo/datagen/dataset"
	"ecomdemo/datagen/logger"
	"ecomdemo/datagen/store"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Error().Err(err).Msg("load failed")
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger.Init(cfg.AppName, cfg.LogLevel)

	fs := flag.NewFlagSet("load", flag.ContinueOnError)
	dataDir := fs.String("data-dir", cfg.DataDir, "directory holding events.csv and orders.csv")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := cfg.ClickHouse.Validate(); err != nil {
		return err
	}

	events, err := dataset.ReadEventsCSV(filepath.Join(*dataDir, dataset.EventsCSV))
	if err != nil {
		return err
	}
	orders, err := dataset.ReadOrdersCSV(filepath.Join(*dataDir, dataset.OrdersCSV))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	chClient, err := database.NewClickHouseDB(ctx, cfg.ClickHouse)
	if err != nil {
		return err
	}
	defer chClient.Close()

	analytics := store.NewAnalyticsStore(chClient)
	if err := analytics.EnsureSchema(ctx); err != nil {
		return err
	}
	if err := analytics.InsertEvents(ctx, events); err != nil {
		return err
	}
	if err := analytics.InsertOrders(ctx, orders); err != nil {
		return err
	}

	log.Info().Int("events", len(events)).Int("orders", len(orders)).Str("database", chClient.Database).Msg("dataset loaded into ClickHouse")
	return nil
}
