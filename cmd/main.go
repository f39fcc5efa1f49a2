package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/fjod/go_cart/storefront/internal/auth"
	"github.com/fjod/go_cart/storefront/internal/cache"
	"github.com/fjod/go_cart/storefront/internal/config"
	"github.com/fjod/go_cart/storefront/internal/events"
	h "github.com/fjod/go_cart/storefront/internal/http"
	"github.com/fjod/go_cart/storefront/internal/lock"
	"github.com/fjod/go_cart/storefront/internal/payment"
	"github.com/fjod/go_cart/storefront/internal/poller"
	"github.com/fjod/go_cart/storefront/internal/repository"
	"github.com/fjod/go_cart/storefront/internal/service"
	"github.com/fjod/go_cart/storefront/pkg/logger"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", logger.Err(err))
		os.Exit(1)
	}
	slog.SetDefault(logger.New(os.Stdout, cfg.LogLevel))
	otel.SetTextMapPropagator(propagation.TraceContext{})

	ctx := context.Background()
	var wg sync.WaitGroup

	// MongoDB
	db, err := repository.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		fatal("failed to connect to MongoDB", err)
	}
	if err := repository.CreateIndexes(ctx, db); err != nil {
		fatal("failed to create indexes", err)
	}
	slog.Info("connected to MongoDB", slog.String("database", cfg.MongoDBName))

	users := repository.NewUserRepository(db)
	products := repository.NewProductRepository(db)
	orders := repository.NewOrderRepository(db)

	// Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		fatal("redis connection failed", err)
	}
	slog.Info("redis ping succeeded", slog.String("addr", cfg.RedisAddr))

	// Kafka
	var publisher events.Publisher = events.NoopPublisher{}
	var reconciler *poller.Poller
	pollerCtx, pollerCancel := context.WithCancel(context.Background())
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.KafkaBrokers...)
		reconciler = poller.NewPoller(users, orders, cfg.KafkaBrokers...)
		wg.Add(1)
		go func() {
			defer wg.Done()
			reconciler.Run(pollerCtx)
		}()
		slog.Info("order events enabled", slog.Any("brokers", cfg.KafkaBrokers))
	} else {
		slog.Warn("KAFKA_BROKERS not set, order events disabled")
	}

	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.JWTTTL)
	hasher := auth.NewHasher(cfg.SaltRound)
	charger := payment.NewStripeCharger(cfg.StripeKey, cfg.PaymentTimeout, nil)

	router := h.NewRouter(h.Deps{
		Auth:     service.NewAuthService(users, products, orders, hasher, tokens),
		Catalog:  service.NewCatalogService(products, cache.NewRedisCache(redisClient, cfg.CatalogCacheTTL)),
		Users:    service.NewUserService(users, products, orders, hasher),
		Checkout: service.NewCheckoutService(users, products, orders, charger, lock.NewRedisLocker(redisClient), publisher, cfg.PaymentTimeout+15*time.Second),
		Sessions: auth.NewSessionStore(cfg.SessionSecret, cfg.CookieSecure),
		Tokens:   tokens,
	})

	// Global middleware wraps the API router
	root := http.Handler(router)
	root = middleware.Compress(5)(root)
	root = middleware.Timeout(cfg.RequestTimeout)(root)
	root = middleware.Recoverer(root)
	root = middleware.RequestID(root)
	root = otelhttp.NewHandler(root, "storefront")

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      root,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("storefront listening", slog.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal("server error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down storefront...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", logger.Err(err))
	}

	pollerCancel()
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		slog.Info("reconciler stopped cleanly")
	case <-shutdownCtx.Done():
		slog.Warn("reconciler didn't stop in time")
	}
	if reconciler != nil {
		reconciler.Close()
	}

	if err := publisher.Close(); err != nil {
		slog.Error("failed to close publisher", logger.Err(err))
	}
	if err := redisClient.Close(); err != nil {
		slog.Error("failed to close redis", logger.Err(err))
	}
	if err := db.Client().Disconnect(shutdownCtx); err != nil {
		slog.Error("failed to disconnect MongoDB", logger.Err(err))
	}
	slog.Info("storefront stopped")
}

func fatal(msg string, err error) {
	slog.Error(msg, logger.Err(err))
	os.Exit(1)
}
