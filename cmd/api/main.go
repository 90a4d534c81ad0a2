package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront_miniapp/internal/events"
	apphttp "storefront_miniapp/internal/http"
	"storefront_miniapp/internal/http/router"
	"storefront_miniapp/internal/scheduler"
	"storefront_miniapp/internal/shop"
	"storefront_miniapp/internal/shop/service"
	"storefront_miniapp/platform/config"
	"storefront_miniapp/platform/db"
	"storefront_miniapp/platform/logger"
	"storefront_miniapp/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, "migrations")
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)
	registerEventLogging(eventBus, log)

	redisClient := initRedis(cfg, log)
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
	}

	orderNotifier, closeNotifier := initOrderNotifier(cfg, log)
	if closeNotifier != nil {
		defer closeNotifier()
	}

	// Shared validator instance for dependency injection
	val := validator.New()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	shopModule := shop.NewModule(pool, eventBus, val, log, service.Options{
		RedisClient: redisClient,
		CacheTTL:    cfg.GetCatalogCacheTTL(),
		Notifier:    orderNotifier,
		BotToken:    cfg.GetTelegramBotToken(),
	})

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: eventBus,
		Modules: []apphttp.Module{
			shopModule,
		},
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = shutdownCtx
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

// registerEventLogging gives the shop events an audit trail in the API logs.
func registerEventLogging(bus *events.InMemoryBus, log *logger.Logger) {
	bus.Subscribe(events.OrderCreated{}.EventName(), events.HandlerFunc(func(_ context.Context, e events.Event) error {
		if evt, ok := e.(events.OrderCreated); ok {
			log.Info("order event", "orderId", evt.OrderID, "product", evt.ProductName)
		}
		return nil
	}))
	bus.Subscribe(events.StockDepleted{}.EventName(), events.HandlerFunc(func(_ context.Context, e events.Event) error {
		if evt, ok := e.(events.StockDepleted); ok {
			log.Warn("product sold out", "productId", evt.ProductID, "product", evt.ProductName)
		}
		return nil
	}))
}

func initRedis(cfg config.CacheConfig, log *logger.Logger) *redis.Client {
	if !cfg.IsCacheEnabled() {
		log.Warn("REDIS_URL not configured; catalog cache disabled")
		return nil
	}

	opt, err := redis.ParseURL(cfg.GetRedisURL())
	if err != nil {
		log.Error("invalid REDIS_URL; catalog cache disabled", "error", err)
		return nil
	}

	return redis.NewClient(opt)
}

func initOrderNotifier(cfg config.SchedulerConfig, log *logger.Logger) (scheduler.OrderNotifier, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; admin order notifications disabled")
		return nil, nil
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize order notifier client", "error", err)
		return nil, nil
	}

	return client, func() {
		_ = client.Close()
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
