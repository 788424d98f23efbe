package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/driftwood-blog/backend/internal/cache"
	"github.com/driftwood-blog/backend/internal/config"
	"github.com/driftwood-blog/backend/internal/counting"
	"github.com/driftwood-blog/backend/internal/database"
	"github.com/driftwood-blog/backend/internal/fingerprint"
	"github.com/driftwood-blog/backend/internal/handlers"
	"github.com/driftwood-blog/backend/internal/logger"
	"github.com/driftwood-blog/backend/internal/middleware"
	"github.com/driftwood-blog/backend/internal/retention"
	"github.com/driftwood-blog/backend/internal/telemetry"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logger.Initialize(cfg.LogLevel, cfg.LogFile); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Close()

	logger.Log.Info("=== Driftwood analytics server starting ===")

	// Database
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(db)

	if err := database.Migrate(db); err != nil {
		logger.Log.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Redis is optional; without it the response cache and rate limiter
	// middlewares become pass-throughs.
	if cfg.RedisHost != "" {
		redisClient, err := cache.NewRedisClient(cfg.RedisHost, cfg.RedisPort, cfg.RedisPassword)
		if err != nil {
			logger.Log.Warn("Redis unavailable, continuing without response cache and rate limiting", zap.Error(err))
		} else {
			defer redisClient.Close()
		}
	}

	// Tracing (disabled unless an OTLP endpoint is configured)
	tp, err := telemetry.InitTracer(telemetry.Config{
		ServiceName:  "driftwood-analytics",
		Environment:  cfg.Environment,
		OTLPEndpoint: cfg.OTLPEndpoint,
		Enabled:      cfg.OTLPEndpoint != "",
		SamplingRate: 1.0,
	})
	if err != nil {
		logger.Log.Warn("Failed to initialize tracer", zap.Error(err))
	}
	if tp != nil {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = tp.Shutdown(ctx)
		}()
	}

	// Fingerprint generators; views and reactions may carry distinct keys
	viewFP, err := fingerprint.NewGenerator([]byte(cfg.ViewSecret))
	if err != nil {
		logger.Log.Fatal("Failed to create view fingerprint generator", zap.Error(err))
	}
	reactionFP, err := fingerprint.NewGenerator([]byte(cfg.ReactionSecret))
	if err != nil {
		logger.Log.Fatal("Failed to create reaction fingerprint generator", zap.Error(err))
	}

	countingService := counting.NewService(db, viewFP, reactionFP)
	h := handlers.NewHandlers(countingService)

	// Optional retention sweeper for the append-only event tables
	if cfg.RetentionDays > 0 {
		sweeper := retention.NewSweeper(db, time.Duration(cfg.RetentionDays)*24*time.Hour, time.Hour)
		sweeper.Start()
		defer sweeper.Stop()
	}

	// Router
	if cfg.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.GinLoggerMiddleware())
	r.Use(middleware.MetricsMiddleware())
	if cfg.OTLPEndpoint != "" {
		r.Use(otelgin.Middleware("driftwood-analytics"))
	}
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"} // Configure properly for production
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type"}
	r.Use(cors.New(corsConfig))

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		status := "ok"
		code := http.StatusOK
		if err := database.Health(db); err != nil {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"status":    status,
			"timestamp": time.Now().UTC(),
			"service":   "driftwood-analytics",
		})
	})

	// Prometheus metrics
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API routes
	api := r.Group("/api/v1")
	{
		views := api.Group("/views")
		{
			views.POST("/track",
				middleware.RedisRateLimitMiddleware(60, time.Minute),
				middleware.CacheInvalidationMiddleware("response:/api/v1/views*"),
				h.TrackView)
			views.GET("", middleware.ResponseCacheMiddleware(15*time.Second), h.GetViewCount)
			views.POST("/batch", h.BatchViewCounts)
		}

		reactions := api.Group("/reactions")
		{
			reactions.POST("/react",
				middleware.RedisRateLimitMiddleware(60, time.Minute),
				middleware.CacheInvalidationMiddleware("response:/api/v1/reactions*"),
				h.React)
			reactions.GET("", middleware.ResponseCacheMiddleware(15*time.Second), h.GetReactions)
		}
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		logger.Log.Info("Driftwood analytics listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Log.Info("Server exited")
}
