package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	adapterports "github.com/vendoria/commerce-service/internal/adapters/ports"
	"github.com/vendoria/commerce-service/internal/adapters/postgres"
	"github.com/vendoria/commerce-service/internal/adapters/razorpay"
	"github.com/vendoria/commerce-service/internal/adapters/secrets"
	"github.com/vendoria/commerce-service/internal/adapters/shiprocket"
	"github.com/vendoria/commerce-service/internal/auth"
	"github.com/vendoria/commerce-service/internal/config"
	"github.com/vendoria/commerce-service/internal/handlers"
	webhookHandler "github.com/vendoria/commerce-service/internal/handlers/webhook"
	"github.com/vendoria/commerce-service/internal/middleware"
	cartService "github.com/vendoria/commerce-service/internal/services/cart"
	catalogService "github.com/vendoria/commerce-service/internal/services/catalog"
	orderService "github.com/vendoria/commerce-service/internal/services/order"
	reconciliationService "github.com/vendoria/commerce-service/internal/services/reconciliation"
	sellerService "github.com/vendoria/commerce-service/internal/services/seller"
	shipmentService "github.com/vendoria/commerce-service/internal/services/shipment"
	"github.com/vendoria/commerce-service/pkg/observability"
)

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		bootstrap, _ := zap.NewProduction()
		bootstrap.Fatal("Failed to load configuration", zap.Error(err))
	}

	logger := initLogger(cfg.Logger)
	defer logger.Sync()

	logger.Info("Starting commerce service",
		zap.String("version", "0.1.0"),
	)

	dbPool, err := initDatabase(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer dbPool.Close()

	logger.Info("Database connection established",
		zap.String("database", cfg.Database.Database),
	)

	ctx := context.Background()
	secretManager := initSecretManager(ctx, cfg, logger)

	// Config values win; anything left blank comes out of the secret manager.
	courierWebhookKey := resolveSecret(ctx, secretManager, cfg.Courier.WebhookKey, adapterports.SecretCourierWebhookKey, logger)
	gatewayWebhookSecret := resolveSecret(ctx, secretManager, cfg.Gateway.WebhookSecret, adapterports.SecretGatewayWebhookSecret, logger)
	jwtSecret := resolveSecret(ctx, secretManager, cfg.Auth.JWTSecret, adapterports.SecretJWTSigningKey, logger)

	deps := initDependencies(dbPool, cfg, jwtSecret, logger)

	rateLimiter := middleware.NewRateLimiter(cfg.Server.RateLimit, cfg.Server.RateBurst)
	defer rateLimiter.Stop()

	router := buildRouter(deps, routerConfig{
		courierWebhookKey:    courierWebhookKey,
		gatewayWebhookSecret: gatewayWebhookSecret,
		rateLimiter:          rateLimiter,
		development:          cfg.Logger.Development,
	}, logger)

	healthChecker := observability.NewHealthChecker(dbPool)
	healthChecker.RegisterCheck("courier", func(ctx context.Context) error {
		if deps.courierClient.BreakerOpen() {
			return fmt.Errorf("circuit breaker open")
		}
		return nil
	})
	if cfg.Secrets.Backend != "env" {
		healthChecker.RegisterCheck("secrets", func(ctx context.Context) error {
			_, err := secretManager.GetSecret(ctx, adapterports.SecretJWTSigningKey)
			return err
		})
	}
	metricsServer := observability.StartMetricsServer(cfg.Server.MetricsPort, healthChecker, logger)
	logger.Info("Metrics server listening", zap.Int("port", cfg.Server.MetricsPort))

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening",
			zap.String("address", httpServer.Addr),
		)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to serve HTTP", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down servers...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}
	if err := observability.ShutdownMetricsServer(metricsServer); err != nil {
		logger.Error("Metrics server shutdown error", zap.Error(err))
	}

	logger.Info("Servers stopped")
}

// Dependencies holds all initialized handlers
type Dependencies struct {
	catalogHandler  *handlers.CatalogHandler
	cartHandler     *handlers.CartHandler
	orderHandler    *handlers.OrderHandler
	shipmentHandler *handlers.ShipmentHandler
	sellerHandler   *handlers.SellerHandler
	courierWebhook  *webhookHandler.CourierHandler
	paymentWebhook  *webhookHandler.PaymentHandler
	authGate        *middleware.AuthGate
	courierClient   *shiprocket.Client
}

// initDependencies wires repositories, external clients, services, and
// handlers together
func initDependencies(dbPool *pgxpool.Pool, cfg *config.Config, jwtSecret string, logger *zap.Logger) *Dependencies {
	db := postgres.NewDBExecutor(dbPool)

	sellers := postgres.NewSellerRepository(db)
	categories := postgres.NewCategoryRepository(db)
	products := postgres.NewProductRepository(db)
	reviews := postgres.NewReviewRepository(db)
	carts := postgres.NewCartRepository(db)
	orders := postgres.NewOrderRepository(db)
	orderItems := postgres.NewOrderItemRepository(db)
	payments := postgres.NewPaymentRepository(db)
	shipments := postgres.NewShipmentRepository(db)
	tracking := postgres.NewTrackingRepository(db)

	courier := shiprocket.NewClient(shiprocket.Config{
		BaseURL:  cfg.Courier.BaseURL,
		Email:    cfg.Courier.Email,
		Password: cfg.Courier.Password,
		Timeout:  cfg.Courier.Timeout,
	}, logger)

	gateway := razorpay.NewClient(razorpay.Config{
		BaseURL:   cfg.Gateway.BaseURL,
		KeyID:     cfg.Gateway.KeyID,
		KeySecret: cfg.Gateway.KeySecret,
		Timeout:   cfg.Gateway.Timeout,
	}, logger)

	catalogSvc := catalogService.NewService(db, products, categories, reviews, logger)
	cartSvc := cartService.NewService(db, carts, products, logger)
	orderSvc := orderService.NewService(db, orders, orderItems, payments, carts, products, gateway, logger)
	shipmentSvc := shipmentService.NewService(db, shipments, orderItems, orders, tracking, sellers, products, courier, logger)
	sellerSvc := sellerService.NewService(db, sellers, orderItems, logger)
	reconciliationSvc := reconciliationService.NewService(db, shipments, orderItems, tracking, logger)

	tokens := auth.NewTokenManager([]byte(jwtSecret), cfg.Auth.Issuer, cfg.Auth.TokenTTL)

	return &Dependencies{
		catalogHandler:  handlers.NewCatalogHandler(catalogSvc, logger),
		cartHandler:     handlers.NewCartHandler(cartSvc, logger),
		orderHandler:    handlers.NewOrderHandler(orderSvc, logger),
		shipmentHandler: handlers.NewShipmentHandler(shipmentSvc, logger),
		sellerHandler:   handlers.NewSellerHandler(sellerSvc, logger),
		courierWebhook:  webhookHandler.NewCourierHandler(reconciliationSvc, logger),
		paymentWebhook:  webhookHandler.NewPaymentHandler(reconciliationSvc, logger),
		authGate:        middleware.NewAuthGate(tokens, logger),
		courierClient:   courier,
	}
}

type routerConfig struct {
	courierWebhookKey    string
	gatewayWebhookSecret string
	rateLimiter          *middleware.RateLimiter
	development          bool
}

func buildRouter(deps *Dependencies, rc routerConfig, logger *zap.Logger) http.Handler {
	securityHeaders := middleware.NewSecurityHeaders(rc.development)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(observability.MetricsMiddleware)
	r.Use(securityHeaders.Middleware)
	r.Use(rc.rateLimiter.Middleware)

	// Webhooks authenticate with their own shared secrets, not session tokens.
	r.Route("/webhooks", func(r chi.Router) {
		r.With(middleware.CourierWebhookAuth(rc.courierWebhookKey, logger)).
			Post("/courier/tracking", deps.courierWebhook.HandleTracking)
		r.With(middleware.GatewayWebhookAuth(rc.gatewayWebhookSecret, logger)).
			Post("/payment/razorpay", deps.paymentWebhook.HandleEvent)
	})

	r.Route("/api/v1", func(r chi.Router) {
		// Public catalog browsing and seller signup
		r.Get("/products", deps.catalogHandler.ListProducts)
		r.Get("/products/{id}", deps.catalogHandler.GetProduct)
		r.Get("/products/{id}/reviews", deps.catalogHandler.ListReviews)
		r.Get("/categories", deps.catalogHandler.ListCategories)
		r.Post("/sellers", deps.sellerHandler.Register)

		r.Group(func(r chi.Router) {
			r.Use(deps.authGate.Middleware)

			r.Post("/products", deps.catalogHandler.CreateProduct)
			r.Patch("/products/{id}", deps.catalogHandler.UpdateProduct)
			r.Delete("/products/{id}", deps.catalogHandler.DeleteProduct)
			r.Post("/products/{id}/reviews", deps.catalogHandler.CreateReview)
			r.Post("/categories", deps.catalogHandler.CreateCategory)
			r.Delete("/categories/{id}", deps.catalogHandler.DeleteCategory)

			r.Get("/cart", deps.cartHandler.GetCart)
			r.Post("/cart/items", deps.cartHandler.AddItem)
			r.Patch("/cart/items/{id}", deps.cartHandler.UpdateItem)
			r.Delete("/cart/items/{id}", deps.cartHandler.RemoveItem)
			r.Get("/wishlist", deps.cartHandler.ListWishlist)
			r.Post("/wishlist", deps.cartHandler.AddToWishlist)
			r.Delete("/wishlist/{productId}", deps.cartHandler.RemoveFromWishlist)

			r.Post("/orders", deps.orderHandler.Checkout)
			r.Get("/orders", deps.orderHandler.ListOrders)
			r.Get("/orders/{id}", deps.orderHandler.GetOrder)
			r.Get("/orders/{id}/items", deps.orderHandler.ListOrderItems)
			r.Post("/orders/{id}/payment", deps.orderHandler.ConfirmPayment)
			r.Post("/orders/{id}/cancel", deps.orderHandler.CancelOrder)
			r.Post("/orders/items/{id}/refund", deps.orderHandler.RequestRefund)
			r.Get("/orders/items/{id}/tracking", deps.shipmentHandler.TrackingHistory)

			r.Post("/shipments", deps.shipmentHandler.CreateShipment)
			r.Get("/shipments/track/{awb}", deps.shipmentHandler.Track)
			r.Get("/shipments/{id}", deps.shipmentHandler.GetShipment)
			r.Post("/shipments/{id}/cancel", deps.shipmentHandler.CancelShipment)
			r.Patch("/shipments/{id}/status", deps.shipmentHandler.UpdateStatus)
			r.Post("/shipments/{id}/label", deps.shipmentHandler.GenerateLabel)

			r.Get("/sellers/{id}", deps.sellerHandler.GetSeller)
			r.Patch("/sellers/{id}", deps.sellerHandler.UpdateSeller)
			r.Get("/sellers/{id}/order-items", deps.sellerHandler.ListOrderItems)
		})
	})

	return r
}

// initLogger initializes the logger
func initLogger(cfg config.LoggerConfig) *zap.Logger {
	level := zapcore.InfoLevel
	if parsed, err := zapcore.ParseLevel(cfg.Level); err == nil {
		level = parsed
	}

	if cfg.Development {
		zapCfg := zap.NewDevelopmentConfig()
		zapCfg.Level = zap.NewAtomicLevelAt(level)
		logger, _ := zapCfg.Build()
		return logger
	}

	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	logger, _ := zapCfg.Build()
	return logger
}

// initDatabase initializes the PostgreSQL connection pool
func initDatabase(cfg *config.Config, logger *zap.Logger) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(cfg.Database.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}

	poolConfig.MaxConns = cfg.Database.MaxConns
	poolConfig.MinConns = cfg.Database.MinConns

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// initSecretManager selects the secret backend from configuration
func initSecretManager(ctx context.Context, cfg *config.Config, logger *zap.Logger) adapterports.SecretManager {
	switch cfg.Secrets.Backend {
	case "aws":
		sm, err := secrets.NewAWSSecretManager(ctx, secrets.AWSConfig{
			Region:     cfg.Secrets.AWSRegion,
			Endpoint:   cfg.Secrets.AWSEndpoint,
			PathPrefix: cfg.Secrets.PathPrefix,
			CacheTTL:   cfg.Secrets.CacheTTL,
		}, logger)
		if err != nil {
			logger.Fatal("Failed to initialize AWS secret manager", zap.Error(err))
		}
		return sm
	case "vault":
		sm, err := secrets.NewVaultSecretManager(secrets.VaultConfig{
			Address:    cfg.Secrets.VaultAddress,
			Token:      cfg.Secrets.VaultToken,
			MountPath:  cfg.Secrets.VaultMount,
			PathPrefix: cfg.Secrets.PathPrefix,
			CacheTTL:   cfg.Secrets.CacheTTL,
		}, logger)
		if err != nil {
			logger.Fatal("Failed to initialize Vault secret manager", zap.Error(err))
		}
		return sm
	default:
		prefix := strings.ToUpper(strings.ReplaceAll(cfg.Secrets.PathPrefix, "-", "_"))
		return secrets.NewEnvSecretManager(prefix, logger)
	}
}

// resolveSecret prefers the configured value and falls back to the secret
// manager. Missing secrets are fatal; the webhook and auth paths cannot run
// without them.
func resolveSecret(ctx context.Context, sm adapterports.SecretManager, configured, name string, logger *zap.Logger) string {
	if configured != "" {
		return configured
	}
	secret, err := sm.GetSecret(ctx, name)
	if err != nil {
		logger.Fatal("Failed to load secret",
			zap.String("name", name),
			zap.Error(err),
		)
	}
	return secret.Value
}
