package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront-service/catalog"
	"storefront-service/common/locale"
	"storefront-service/common/logger"
	"storefront-service/common/middleware"
	"storefront-service/config"
	"storefront-service/controllers"
	"storefront-service/database"
	"storefront-service/eventlog"
	aws_pkg "storefront-service/pkg/aws"
	"storefront-service/routes"
	"storefront-service/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Config load failed: %v", err)
	}

	ctx := context.Background()

	// --- AWS setup ---
	var (
		snsClient     aws_pkg.SNSPublisher
		metricsClient *aws_pkg.MetricsClient
		logsWriter    *aws_pkg.CloudWatchLogsWriter
		shipper       zapcore.WriteSyncer
	)
	if cfg.AWSEnabled {
		awsCfg, err := aws_pkg.LoadAWSConfig(ctx, cfg.AWSRegion, cfg.AWSEndpoint, nil)
		if err != nil {
			log.Fatalf("Failed to load AWS config: %v", err)
		}
		snsClient = aws_pkg.NewSNSClient(awsCfg)
		metricsClient = aws_pkg.NewMetricsClient(awsCfg, cfg.CloudWatchNamespace, cfg.CloudWatchEnabled)

		if cfg.CloudWatchEnabled {
			logsWriter, err = aws_pkg.NewCloudWatchLogsWriter(ctx, awsCfg, cfg.CloudWatchLogGroup, cfg.ServiceName)
			if err != nil {
				log.Printf("CloudWatch Logs shipping disabled: %v", err)
			} else {
				shipper = logsWriter
			}
		}
	}

	zl, err := logger.New(cfg.AppEnv, shipper)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer zl.Sync()
	zl = zl.With(zap.String("service", cfg.ServiceName))

	// --- Session storage ---
	var repo database.SessionRepository
	if cfg.RedisURL != "" {
		rdb, err := database.NewRedisClient(ctx, cfg.RedisURL, zl)
		if err != nil {
			zl.Fatal("Redis connection failed", zap.Error(err))
		}
		defer rdb.Close()
		repo = database.NewRedisSessionRepository(rdb, cfg.SessionTTL)
	} else {
		zl.Warn("REDIS_URL not set, sessions are kept in memory")
		repo = database.NewMemorySessionRepository(cfg.SessionTTL)
	}

	// --- Dependency injection ---
	var recorder services.OrderMetrics
	if metricsClient.IsEnabled() {
		recorder = metricsClient
	}
	if cfg.OrderSNSTopicArn == "" {
		zl.Warn("ORDER_SNS_TOPIC_ARN not set, order events will not be published")
	}

	sinks := []eventlog.Sink{eventlog.NewAuditSink(zl)}
	if recorder != nil {
		sinks = append(sinks, eventlog.BestEffort(eventlog.NewMetricsSink(recorder, cfg.ServiceName), zl))
	}

	sessionService := services.NewSessionService(
		repo,
		catalog.NewDemo(),
		snsClient,
		cfg.OrderSNSTopicArn,
		recorder,
		zl,
		services.WithChannel(cfg.AnalyticsChannel),
		services.WithServiceName(cfg.ServiceName),
		services.WithFormatter(locale.New(cfg.Locale)),
		services.WithIdempotencyTTL(cfg.IdempotencyTTL),
		services.WithSinks(sinks...),
	)
	sessionController := controllers.NewSessionController(sessionService)

	// --- HTTP router ---
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(zl))
	r.Use(middleware.MetricsMiddleware(metricsClient, cfg.ServiceName))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSAllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", controllers.IdempotencyKeyHeader, middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	limiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute, cfg.RateLimitBurst, 10*time.Minute)
	stopLimiter := make(chan struct{})
	go limiter.Run(stopLimiter)
	r.Use(middleware.RateLimit(limiter))
	r.Use(middleware.Timeout(cfg.RequestTimeout))

	routes.RegisterHealthRoutes(r, cfg.ServiceName)
	routes.RegisterSessionRoutes(r, sessionController)

	// --- HTTP server ---
	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		zl.Info("Storefront Service started", zap.String("port", cfg.Port), zap.String("env", cfg.AppEnv))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zl.Fatal("server failed", zap.Error(err))
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zl.Info("Initiating graceful shutdown...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Error("Server shutdown error", zap.Error(err))
	}
	close(stopLimiter)

	zl.Info("Storefront Service stopped gracefully")
	if logsWriter != nil {
		_ = zl.Sync()
		if err := logsWriter.Close(); err != nil {
			log.Printf("CloudWatch Logs close error: %v", err)
		}
	}
}
