package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"storefront-service/clients"
	"storefront-service/common/auth"
	apperrors "storefront-service/common/errors"
	"storefront-service/common/logger"
	commonmw "storefront-service/common/middleware"
	"storefront-service/config"
	"storefront-service/controllers"
	"storefront-service/database"
	awspkg "storefront-service/pkg/aws"
	"storefront-service/routes"
	"storefront-service/services"
)

const serviceName = "storefront-service"

func main() {
	cfg := config.Load()
	ctx := context.Background()

	awsCfg, err := awspkg.LoadAWSConfig(ctx)
	if err != nil {
		logger.Initialize(cfg.Env, cfg.LogLevel, nil)
		logger.Log.Fatal("failed to load AWS config", zap.Error(err))
	}

	var sink io.Writer
	if cfg.CloudWatchEnabled {
		if w, err := awspkg.NewCloudWatchLogsWriter(ctx, awsCfg, os.Getenv("CLOUDWATCH_LOG_GROUP"), serviceName); err == nil {
			sink = w
		} else {
			os.Stderr.WriteString("cloudwatch logs disabled: " + err.Error() + "\n")
		}
	}
	log := logger.Initialize(cfg.Env, cfg.LogLevel, sink)
	defer func() { _ = log.Sync() }()

	jwtSecret, err := resolveJWTSecret(ctx, cfg, awsCfg)
	if err != nil {
		log.Fatal("failed to resolve JWT secret", zap.Error(err))
	}

	policy, err := services.ParsePricingPolicy(cfg.FreeShippingOver, cfg.FlatShippingFee, cfg.TaxRate)
	if err != nil {
		log.Fatal("invalid pricing configuration", zap.Error(err))
	}

	redisClient, err := database.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal("failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	log.Info("Connected to Redis")

	metrics := awspkg.NewMetricsClient(awsCfg, os.Getenv("CLOUDWATCH_NAMESPACE"), cfg.CloudWatchEnabled)
	var publisher awspkg.SNSPublisher
	if cfg.OrderEventsTopicArn != "" {
		publisher = awspkg.NewSNSClient(awsCfg)
	}

	// Repositories and upstream clients
	cartRepo := database.NewCartRepository(redisClient, cfg.CartTTL)
	catalogCache := database.NewCatalogCache(redisClient, cfg.CatalogCacheTTL)
	catalogClient := clients.NewCatalogClient(cfg.CatalogURL, cfg.RequestTimeout)
	backendClient := clients.NewBackendClient(cfg.BackendURL, cfg.RequestTimeout, clients.ContextTokenSource{})

	// Services
	catalogSvc := services.NewCatalogService(catalogClient, catalogCache, metrics)
	quoteSvc := services.NewQuoteService(catalogSvc, policy, cfg.QuoteConcurrency)
	cartSvc := services.NewCartService(cartRepo, catalogSvc, quoteSvc)
	checkoutSvc := services.NewCheckoutService(cartRepo, cartRepo, backendClient, quoteSvc, publisher, metrics, services.CheckoutConfig{
		LockTTL:           cfg.CheckoutLockTTL,
		ConfirmationRoute: cfg.ConfirmationRoute,
		OrderTopicArn:     cfg.OrderEventsTopicArn,
	})
	addressSvc := services.NewAddressService(backendClient)
	sellerSvc := services.NewSellerService(backendClient, catalogSvc, metrics, cfg.MaxProductImages)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.MaxMultipartMemory = cfg.MaxUploadSizeBytes

	limiter := commonmw.NewRateLimiter(rate.Every(time.Minute/100), 50, 5*time.Minute)
	done := make(chan struct{})
	limiter.StartSweeper(done)

	router.Use(
		gin.Recovery(),
		commonmw.RequestID(),
		commonmw.RequestLogger(log),
		commonmw.CORS(cfg.AllowedOrigins),
		commonmw.SecurityHeaders(),
		commonmw.RateLimitMiddleware(limiter),
		commonmw.MetricsMiddleware(metrics, serviceName),
		apperrors.ErrorMiddleware(),
	)

	routes.RegisterRoutes(router, routes.Controllers{
		Health:   controllers.NewHealthController(map[string]controllers.Pinger{"redis": redisPinger(redisClient)}),
		Catalog:  controllers.NewCatalogController(catalogSvc),
		Cart:     controllers.NewCartController(cartSvc),
		Checkout: controllers.NewCheckoutController(checkoutSvc),
		Address:  controllers.NewAddressController(addressSvc),
		Seller:   controllers.NewSellerController(sellerSvc, cfg.MaxUploadSizeBytes),
	}, auth.NewTokenValidator(jwtSecret))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("Storefront service is running", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("Shutting down gracefully...")
	close(done)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Shutdown error", zap.Error(err))
	}
	log.Info("Server shutdown complete.")
}

// resolveJWTSecret prefers JWT_SECRET and falls back to Secrets Manager.
func resolveJWTSecret(ctx context.Context, cfg config.Config, awsCfg sdkaws.Config) (string, error) {
	if cfg.JWTSecret != "" {
		return cfg.JWTSecret, nil
	}
	if cfg.JWTSecretName == "" {
		return "", errors.New("set JWT_SECRET or JWT_SECRET_NAME")
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return awspkg.NewSecretsClient(awsCfg).GetSecretField(ctx, cfg.JWTSecretName, "JWT_SECRET")
}

func redisPinger(client *redis.Client) controllers.Pinger {
	return func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}
}
