package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/afrigros/marketplace-api/internal/auth"
	"github.com/afrigros/marketplace-api/internal/catalog"
	"github.com/afrigros/marketplace-api/internal/config"
	"github.com/afrigros/marketplace-api/internal/httpx"
	kafkax "github.com/afrigros/marketplace-api/internal/kafka"
	"github.com/afrigros/marketplace-api/internal/orders"
	"github.com/afrigros/marketplace-api/internal/postgres"
	"github.com/afrigros/marketplace-api/internal/redisx"
	"github.com/afrigros/marketplace-api/internal/reviews"
	"github.com/afrigros/marketplace-api/internal/users"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := zerolog.New(os.Stdout).With().Timestamp().Str("service", cfg.ServiceName).Logger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	if err := postgres.Migrate(cfg.PostgresDSN); err != nil {
		log.Fatal().Err(err).Msg("migrate")
	}
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect")
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producers
	created := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderCreated, 1024, log)
	created.Start(ctx)
	cancelled := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderCancelled, 1024, log)
	cancelled.Start(ctx)

	// Repos, auth, handlers
	userRepo := &users.Repo{DB: db}
	tokens := auth.NewTokens(cfg.JWTSecret, cfg.JWTExpiry)
	authn := &httpx.Authenticator{Tokens: tokens, Users: userRepo}
	images := &httpx.ImageStore{Dir: cfg.UploadDir}

	productRepo := &catalog.ProductRepo{DB: db}
	categoryRepo := &catalog.CategoryRepo{DB: db}
	reviewRepo := &reviews.Repo{DB: db}
	orderRepo := &orders.Repo{DB: db}

	router := httpx.NewRouter(log, cfg.UploadDir)
	(&httpx.UsersHandler{Repo: userRepo, Tokens: tokens, Auth: authn}).Register(router)
	(&httpx.CategoriesHandler{Categories: categoryRepo, Products: productRepo, Auth: authn}).Register(router)
	(&httpx.ProductsHandler{Products: productRepo, Categories: categoryRepo, Reviews: reviewRepo, Images: images, Auth: authn}).Register(router)
	(&httpx.OrdersHandler{Repo: orderRepo, Created: created, Cancelled: cancelled, Redis: rdb, Service: cfg.ServiceName, Auth: authn}).Register(router)
	(&httpx.ReviewsHandler{Reviews: reviewRepo, Products: productRepo, Auth: authn}).Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("HTTP listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info().Msg("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)

	created.Close() // flushes buffered events, then closes the writer
	cancelled.Close()
	cancel()
	created.WaitClosed()
	cancelled.WaitClosed()
}
