package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/saicherry93479/little-loopies-fulfillment/cache"
	"github.com/saicherry93479/little-loopies-fulfillment/controllers"
	"github.com/saicherry93479/little-loopies-fulfillment/database"
	"github.com/saicherry93479/little-loopies-fulfillment/notifier"
	aws_pkg "github.com/saicherry93479/little-loopies-fulfillment/pkg/aws"
	"github.com/saicherry93479/little-loopies-fulfillment/repository"
	"github.com/saicherry93479/little-loopies-fulfillment/routes"
	servicepkg "github.com/saicherry93479/little-loopies-fulfillment/services"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	cfg, err := LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	if err := database.Connect(cfg.DSN(), logger); err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close() //nolint:errcheck

	// AWS clients
	var snsClient aws_pkg.SNSPublisher
	if awsCfg, awsErr := aws_pkg.LoadAWSConfig(context.Background()); awsErr != nil {
		logger.Warn("AWS config unavailable, SNS disabled", zap.Error(awsErr))
	} else {
		snsClient = aws_pkg.NewSNSClient(awsCfg)
	}

	// Redis-backed idempotency store (optional)
	var idempotency cache.IdempotencyStore
	if cfg.RedisURL != "" {
		if client, redisErr := cache.NewRedisClient(cfg.RedisURL); redisErr != nil {
			logger.Warn("Redis unavailable, idempotency disabled", zap.Error(redisErr))
		} else {
			idempotency = cache.NewRedisIdempotencyStore(client)
		}
	}

	// SMTP confirmation mail (optional)
	var emailSender notifier.EmailSender
	if smtp, smtpErr := notifier.NewSMTPSender(); smtpErr != nil {
		logger.Warn("SMTP unavailable, confirmation mail disabled", zap.Error(smtpErr))
	} else {
		emailSender = smtp
	}

	// Repositories and DI chain
	orderRepo := repository.NewGormOrderRepository(database.DB)
	productRepo := repository.NewGormProductRepository(database.DB)
	storeRepo := repository.NewGormStoreRepository(database.DB)
	trackingRepo := repository.NewGormTrackingRepository(database.DB)

	orderService := servicepkg.NewOrderService(
		orderRepo, productRepo, storeRepo,
		emailSender, snsClient, cfg.OrderSNSTopicARN,
		idempotency, cfg.TrackingBaseURL, logger,
	)
	statusService := servicepkg.NewStatusService(orderRepo, snsClient, cfg.OrderSNSTopicARN, logger)
	trackingService := servicepkg.NewTrackingService(trackingRepo, orderRepo, orderService, logger)
	storeService := servicepkg.NewStoreService(storeRepo, orderRepo, logger)

	orderController := controllers.NewOrderController(orderService, statusService)
	trackingController := controllers.NewTrackingController(trackingService)
	storeController := controllers.NewStoreController(storeService)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	// Global request-logging middleware
	r.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", duration),
		)
	})

	// 30-second request timeout
	r.Use(func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "fulfillment-service"})
	})

	routes.RegisterRoutes(r, orderController, trackingController, storeController)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	logger.Info("Fulfillment service started", zap.String("port", cfg.Port))
	<-quit
	logger.Info("Shutting down fulfillment service...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}
	logger.Info("Server exited cleanly")
}
