package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/maxviazov/fabricare-service/internal/cache"
	"github.com/maxviazov/fabricare-service/internal/config"
	"github.com/maxviazov/fabricare-service/internal/handler"
	"github.com/maxviazov/fabricare-service/internal/logger"
	"github.com/maxviazov/fabricare-service/internal/payment"
	postgres "github.com/maxviazov/fabricare-service/internal/repository"
	pg "github.com/maxviazov/fabricare-service/internal/repository/postgres"
	"github.com/maxviazov/fabricare-service/internal/service"
	"github.com/maxviazov/fabricare-service/migrations"
)

func main() {
	configPath := "config.yaml"
	if p := os.Getenv("APP_CONFIG"); p != "" {
		configPath = p
	}

	// Load application config
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("❌ Config loading failed: %v", err)
	}

	// Initialize logger
	if cfg.Logger.Env == "" {
		cfg.Logger.Env = cfg.App.Env
	}
	appLogger, err := logger.New(&cfg.Logger)
	if err != nil {
		log.Fatalf("❌ Logger initialization failed: %v", err)
	}
	appLogger.Info().Str("config", configPath).Msg("✅ Logger initialized successfully")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	connectPgx, err := postgres.New(ctx, cfg, &appLogger)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("❌ Postgres connection failed")
	}
	defer connectPgx.Close()

	if cfg.Postgres.Migrate {
		if err := connectPgx.Migrate(ctx, migrations.FS); err != nil {
			appLogger.Fatal().Err(err).Msg("❌ Migrations failed")
		}
	}

	responseCache, closeCache, err := cache.New(ctx, cfg.Cache, appLogger)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("❌ Cache initialization failed")
	}
	defer func() {
		if err := closeCache(); err != nil {
			appLogger.Warn().Err(err).Msg("cache close failed")
		}
	}()

	pool := connectPgx.Pool()
	users := pg.NewUserRepository(pool)
	artists := pg.NewArtistRepository(pool)
	products := pg.NewProductRepository(pool)
	carts := pg.NewCartRepository(pool)
	orders := pg.NewOrderRepository(pool)

	gateway := payment.NewStripe(payment.StripeConfig{
		SecretKey:     cfg.Payment.StripeSecretKey,
		WebhookSecret: cfg.Payment.WebhookSecret,
		SuccessURL:    cfg.Payment.SuccessURL,
		CancelURL:     cfg.Payment.CancelURL,
		Currency:      cfg.Payment.Currency,
	}, appLogger)

	lists := service.ListSettings{MaxLimit: cfg.Pagination.MaxLimit, CacheTTL: cfg.Pagination.CacheTTL()}
	tokens, err := service.NewTokenService(cfg.Auth.PasetoKey, time.Duration(cfg.Auth.AccessTokenMinutes)*time.Minute, appLogger)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("❌ Token service initialization failed")
	}
	svc := handler.Services{
		Users:    service.NewUserService(users, responseCache, lists, appLogger),
		Tokens:   tokens,
		Artists:  service.NewArtistService(artists, responseCache, lists, appLogger),
		Products: service.NewProductService(products, artists, carts, responseCache, lists, appLogger),
		Carts:    service.NewCartService(carts, products, users, gateway, responseCache, lists, appLogger),
		Orders: service.NewOrderService(service.OrderDeps{
			Orders:   orders,
			Carts:    carts,
			Users:    users,
			Products: products,
			Tx:       pg.NewTxManager(pool),
			Gateway:  gateway,
		}, responseCache, lists, appLogger),
	}

	if cfg.App.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	handler.Register(router, connectPgx, svc, appLogger)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		// Start service
		appLogger.Info().Str("addr", srv.Addr).Str("version", cfg.App.Version).Msg("🚀 Service started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			appLogger.Error().Err(err).Msg("❌ HTTP server failed")
		}
	case <-ctx.Done():
		appLogger.Info().Msg("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.App.ShutdownTimeout)*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error().Err(err).Msg("graceful shutdown failed")
		return
	}
	appLogger.Info().Msg("👋 Service stopped")
}
