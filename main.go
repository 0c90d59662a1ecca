package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/tivrax/storefront/controllers"
	"github.com/tivrax/storefront/database"
	"github.com/tivrax/storefront/events"
	"github.com/tivrax/storefront/middleware"
	aws_pkg "github.com/tivrax/storefront/pkg/aws"
	"github.com/tivrax/storefront/pkg/logger"
	"github.com/tivrax/storefront/repository"
	"github.com/tivrax/storefront/routes"
	"github.com/tivrax/storefront/services"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/time/rate"
)

const serviceName = "storefront"

func main() {
	ctx := context.Background()

	cfg, err := LoadConfig(ctx)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// AWS is optional locally; every AWS-backed feature degrades when absent
	awsCfg, awsErr := aws_pkg.LoadAWSConfig(ctx)

	var sink zapcore.WriteSyncer
	if cfg.CloudWatchEnabled && awsErr == nil {
		cw, err := aws_pkg.NewCloudWatchLogsClient(ctx, awsCfg, cfg.CloudWatchLogGroup, serviceName)
		if err != nil {
			log.Printf("CloudWatch logs disabled: %v", err)
		} else {
			sink = cw
		}
	}

	zl, err := logger.New(cfg.Env, sink)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zl.Sync() //nolint:errcheck

	if awsErr != nil {
		zl.Warn("AWS config unavailable, AWS integrations disabled", zap.Error(awsErr))
	}

	db, err := database.Connect(cfg.DB, zl)
	if err != nil {
		zl.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(db) //nolint:errcheck

	if err := database.RunMigrations(db, zl); err != nil {
		zl.Fatal("Failed to run migrations", zap.Error(err))
	}

	rdb, err := database.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		zl.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer rdb.Close() //nolint:errcheck

	var metrics aws_pkg.MetricsRecorder
	if cfg.MetricsEnabled && awsErr == nil {
		metrics = aws_pkg.NewMetricsClient(awsCfg, cfg.MetricsNamespace, true)
	}

	publisher, err := newPublisher(cfg, awsCfg, awsErr, zl)
	if err != nil {
		zl.Fatal("Failed to init event publisher", zap.Error(err))
	}
	defer publisher.Close() //nolint:errcheck

	var gateway services.PaymentGateway
	if cfg.StripeSecretKey != "" {
		gateway = services.NewStripeGateway(cfg.StripeSecretKey, cfg.StripeWebhookSecret)
	} else {
		zl.Warn("STRIPE_SECRET_KEY not set, card payments disabled")
	}

	var presigner aws_pkg.Presigner
	if cfg.S3Bucket != "" && awsErr == nil {
		presigner = aws_pkg.NewS3Presigner(awsCfg, cfg.S3Bucket)
	}

	// Repositories
	productRepo := repository.NewGormProductRepository(db)
	cartRepo := repository.NewGormCartRepository(db)
	orderRepo := repository.NewGormOrderRepository(db)
	wishlistRepo := repository.NewGormWishlistRepository(db)
	sessions := repository.NewRedisCheckoutSessionStore(rdb, cfg.CheckoutSessionTTL)

	// Services
	cartService := services.NewCartService(cartRepo, productRepo, zl)
	checkoutService := services.NewCheckoutService(
		sessions, cartRepo, productRepo, orderRepo,
		services.NewUPILinkBuilder(cfg.UPIPayeeVPA, cfg.UPIPayeeName),
		gateway, publisher, metrics,
		services.CheckoutOptions{
			ClearCartOnOrder: cfg.ClearCartOnOrder,
			Currency:         cfg.Currency,
		},
		zl,
	)
	orderService := services.NewOrderService(orderRepo, publisher, metrics, zl)
	productService := services.NewProductService(
		productRepo,
		services.NewProductCache(rdb, cfg.ProductCacheTTL, metrics, zl),
		presigner,
		zl,
	)
	wishlistService := services.NewWishlistService(wishlistRepo, productRepo, zl)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.RequestID())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.MetricsMiddleware(metrics, serviceName))
	r.Use(middleware.RequestLogger(zl))
	r.Use(middleware.Timeout(30 * time.Second))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": serviceName})
	})

	verifier := middleware.NewTokenVerifier(cfg.JWTSecret)
	confirmLimiter := middleware.NewRateLimiter(rate.Every(time.Minute/time.Duration(cfg.ConfirmPerMinute)), cfg.ConfirmPerMinute, 10*time.Minute)

	routes.RegisterRoutes(r, routes.Handlers{
		Cart:     controllers.NewCartController(cartService),
		Checkout: controllers.NewCheckoutController(checkoutService),
		Orders:   controllers.NewOrderController(orderService),
		Products: controllers.NewProductController(productService),
		Wishlist: controllers.NewWishlistController(wishlistService),
		Payments: controllers.NewPaymentController(gateway, orderService, zl),
	}, routes.Guards{
		Auth:         middleware.AuthMiddleware(verifier),
		Admin:        middleware.AdminOnly(cfg.AdminEmails),
		ConfirmLimit: middleware.RateLimit(confirmLimiter),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zl.Info("Storefront starting", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zl.Info("Shutting down storefront...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Error("Server forced to shutdown", zap.Error(err))
	}
	zl.Info("Storefront stopped gracefully")
}

func newPublisher(cfg *Config, awsCfg sdkaws.Config, awsErr error, zl *zap.Logger) (events.Publisher, error) {
	switch cfg.EventsBackend {
	case events.BackendSNS:
		if awsErr != nil {
			return nil, awsErr
		}
		return events.NewSNSPublisher(aws_pkg.NewSNSClient(awsCfg), cfg.SNSTopicARN), nil
	case events.BackendKafka:
		return events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, zl), nil
	default:
		return events.NopPublisher{}, nil
	}
}
