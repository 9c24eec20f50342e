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

	"github.com/pawradise/backend/config"
	httpDelivery "github.com/pawradise/backend/internal/delivery/http"
	"github.com/pawradise/backend/internal/domain"
	"github.com/pawradise/backend/internal/infrastructure/cache"
	"github.com/pawradise/backend/internal/infrastructure/catalog"
	"github.com/pawradise/backend/internal/infrastructure/gemini"
	"github.com/pawradise/backend/internal/infrastructure/storage"
	"github.com/pawradise/backend/internal/logger"
	"github.com/pawradise/backend/internal/usecase"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zapLogger, err := logger.Init(cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = zapLogger.Sync() }()

	if err := run(cfg); err != nil {
		zap.S().Errorf("Server stopped with error: %v", err)
		_ = zapLogger.Sync()
		os.Exit(1)
	}
	zap.S().Info("Server stopped")
}

func run(cfg *config.Config) error {
	zap.S().Infof("Starting Pawradise Backend v1.0.0")
	zap.S().Infof("Environment: %s", cfg.Server.Environment)
	zap.S().Infof("Port: %s", cfg.Server.Port)

	// Initialize infrastructure dependencies
	memoryCache := cache.NewMemoryCache(0)
	defer memoryCache.Close()
	zap.S().Infof("Cache TTL: %s", cfg.Cache.TTL)

	products := catalog.NewStaticCatalog(nil)
	zap.S().Infof("Catalog loaded: %d products", len(products.All()))

	cartStore, closeCartStore, err := openCartStore(cfg)
	if err != nil {
		return err
	}
	defer closeCartStore()

	geminiClient := gemini.NewClient(gemini.ClientConfig{
		APIKey:            cfg.Gemini.APIKey,
		BaseURL:           cfg.Gemini.BaseURL,
		ChatModel:         cfg.Gemini.ChatModel,
		ImageModel:        cfg.Gemini.ImageModel,
		Timeout:           cfg.Gemini.Timeout,
		RequestsPerMinute: cfg.RateLimit.Gemini,
	})

	// Enable debug mode in development environment
	debug := cfg.Server.Environment == "development"
	if debug {
		geminiClient.SetDebug(true)
		zap.S().Info("Gemini client debug mode enabled")
	}

	if cfg.Gemini.APIKey != "" {
		zap.S().Infof("Gemini API configured: %s (key: %s)", cfg.Gemini.BaseURL, maskKey(cfg.Gemini.APIKey))
	} else {
		zap.S().Warnf("Gemini API key NOT CONFIGURED - the assistant will answer with its fallback reply")
	}

	// Initialize usecase layer
	catalogService := usecase.NewCatalogService(products)
	cartService := usecase.NewCartService(products, cartStore)
	assistantService := usecase.NewAssistantService(
		geminiClient,
		memoryCache,
		catalogService,
		usecase.AssistantServiceConfig{
			Temperature:   cfg.Gemini.Temperature,
			MaxHistory:    cfg.Assistant.MaxHistory,
			SessionTTL:    cfg.Assistant.SessionTTL,
			ImageCacheTTL: cfg.Cache.TTL,
			EnableImages:  cfg.Assistant.EnableImages,
			Debug:         debug,
		},
	)

	zap.S().Infof("Assistant: model=%s, images=%v (%s), history=%d",
		cfg.Gemini.ChatModel, cfg.Assistant.EnableImages, cfg.Gemini.ImageModel, cfg.Assistant.MaxHistory)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(catalogService, cartService, assistantService)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		zap.S().Infof("Server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		zap.S().Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// openCartStore builds the configured cart backend and its cleanup func
func openCartStore(cfg *config.Config) (domain.CartRepository, func(), error) {
	switch cfg.Cart.Store {
	case "bolt":
		boltStore, err := storage.OpenBoltCartStore(cfg.Cart.BoltPath)
		if err != nil {
			return nil, nil, err
		}
		sweeper, err := storage.NewSweeper(boltStore, cfg.Cart.TTL, cfg.Cart.SweepSchedule)
		if err != nil {
			_ = boltStore.Close()
			return nil, nil, err
		}
		sweeper.Start()
		zap.S().Infof("Cart store: bolt (%s), sweep %q, idle ttl %s", cfg.Cart.BoltPath, cfg.Cart.SweepSchedule, cfg.Cart.TTL)

		return boltStore, func() {
			sweeper.Stop()
			if err := boltStore.Close(); err != nil {
				zap.S().Warnf("Failed to close cart store: %v", err)
			}
		}, nil
	default:
		// carts get their own cache, apart from chat and image entries
		cartCache := cache.NewMemoryCache(0)
		zap.S().Infof("Cart store: memory, idle ttl %s", cfg.Cart.TTL)
		return storage.NewCacheCartStore(cartCache, cfg.Cart.TTL), cartCache.Close, nil
	}
}

// maskKey shows only the first characters of a secret
func maskKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:8] + "..."
}
