package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/deundomarinel09/easyshop-engine/internal/backend"
	"github.com/deundomarinel09/easyshop-engine/internal/cart"
	"github.com/deundomarinel09/easyshop-engine/internal/checkout"
	"github.com/deundomarinel09/easyshop-engine/internal/config"
	"github.com/deundomarinel09/easyshop-engine/internal/domain"
	apphttp "github.com/deundomarinel09/easyshop-engine/internal/http"
	"github.com/deundomarinel09/easyshop-engine/internal/reconciler"
	"github.com/deundomarinel09/easyshop-engine/internal/reorder"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.LogLevel)

	if err := run(cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("storefront exited with error")
	}
}

func run(cfg config.Config, logger zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, cleanup, err := newCartStore(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initializing cart store: %w", err)
	}
	defer cleanup()

	backendClient := backend.NewClient(cfg.BackendBaseURL, cfg.RequestTimeout, logger)

	cartSvc := cart.NewService(store, logger)
	storeLocation := domain.GeoPoint{Lat: cfg.StoreLat, Lng: cfg.StoreLng}
	checkoutSvc := checkout.NewService(cartSvc, backendClient, storeLocation, logger)

	manager := reconciler.NewManager(backendClient, cfg.PollInterval, logger)
	defer manager.Close()

	transformer := reorder.NewTransformer(backendClient, cartSvc, logger)

	router := apphttp.NewRouter(
		logger,
		cfg.RequestTimeout,
		apphttp.NewCartHandler(cartSvc, checkoutSvc, backendClient, cfg.RequestTimeout),
		apphttp.NewCheckoutHandler(checkoutSvc, cfg.RequestTimeout),
		apphttp.NewOrdersHandler(manager, transformer, cfg.RequestTimeout),
		apphttp.NewProductHandler(backendClient, cfg.RequestTimeout),
	)

	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Str("cart_backend", cfg.CartBackend).Msg("storefront starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info().Msg("server exited")
	return nil
}

// newCartStore builds the configured persistence layer and a cleanup
// function for its connections.
func newCartStore(ctx context.Context, cfg config.Config, logger zerolog.Logger) (cart.Store, func(), error) {
	noop := func() {}

	switch cfg.CartBackend {
	case config.CartBackendMemory:
		return cart.NewMemoryStore(), noop, nil

	case config.CartBackendRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			return nil, nil, fmt.Errorf("connecting to redis at %s: %w", cfg.RedisAddr, err)
		}
		cleanup := func() {
			if err := client.Close(); err != nil {
				logger.Warn().Err(err).Msg("closing redis client")
			}
		}
		return cart.NewRedisStore(client), cleanup, nil

	case config.CartBackendMongo:
		db, err := cart.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, nil, err
		}
		store := cart.NewMongoStore(db)
		if err := store.EnsureIndexes(ctx); err != nil {
			return nil, nil, fmt.Errorf("creating mongo indexes: %w", err)
		}
		cleanup := func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := db.Client().Disconnect(disconnectCtx); err != nil {
				logger.Warn().Err(err).Msg("disconnecting mongo client")
			}
		}
		return store, cleanup, nil

	default:
		return nil, nil, fmt.Errorf("unknown cart backend %q", cfg.CartBackend)
	}
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(os.Stdout).Level(lvl).With().Timestamp().Str("service", "storefront").Logger()
}
