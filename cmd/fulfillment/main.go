package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/afrigros/marketplace-api/internal/config"
	"github.com/afrigros/marketplace-api/internal/fulfillment"
	kafkax "github.com/afrigros/marketplace-api/internal/kafka"
	"github.com/afrigros/marketplace-api/internal/orders"
	"github.com/afrigros/marketplace-api/internal/postgres"
	"github.com/afrigros/marketplace-api/internal/redisx"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := zerolog.New(os.Stdout).With().Timestamp().Str("service", "fulfillment-svc").Logger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect")
	}
	defer db.Close()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	svc := &fulfillment.Service{
		Repo:  &orders.Repo{DB: db},
		Redis: rdb,
		Log:   log,
	}

	group := getenv("FULFILLMENT_GROUP", "fulfillment-svc")
	workers := getint("FULFILLMENT_WORKERS", 4)
	consumer := kafkax.NewConsumer(cfg.KafkaBrokers, group, orders.TopicOrderCreated, workers, log)

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		log.Info().Msg("shutting down...")
		cancel()
	}()

	log.Info().Str("group", group).Int("workers", workers).Msg("consuming order events")
	if err := consumer.Start(ctx, svc.HandleOrderCreated); err != nil && err != context.Canceled {
		log.Fatal().Err(err).Msg("consumer stopped")
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}
