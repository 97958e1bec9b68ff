package main

import (
	"context"
	"fmt"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cctncr/habitstreak/internal/api/handlers"
	"github.com/cctncr/habitstreak/internal/api/middleware"
	"github.com/cctncr/habitstreak/internal/api/routes"
	"github.com/cctncr/habitstreak/internal/domain/habits"
	"github.com/cctncr/habitstreak/internal/infrastructure/cache"
	"github.com/cctncr/habitstreak/internal/infrastructure/persistence/postgres/connection"
	"github.com/cctncr/habitstreak/internal/infrastructure/persistence/postgres/migrations"
	"github.com/cctncr/habitstreak/internal/infrastructure/scheduler"
	"github.com/cctncr/habitstreak/pkg/config"
	"github.com/cctncr/habitstreak/pkg/logger"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// RequestLoggerMiddleware logs all incoming HTTP requests
func RequestLoggerMiddleware(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		log.Info("Request completed",
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.String("path", path),
			zap.String("method", method),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

func main() {
	cfg, err := config.LoadConfig("")
	if err != nil {
		stdlog.Fatalf("Failed to load configuration: %v", err)
	}

	log := logger.NewLogger()
	defer log.Sync()

	log.Info("Configuration loaded", zap.String("mode", cfg.Server.Mode))

	if cfg.Server.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(RequestLoggerMiddleware(log))
	router.Use(middleware.NewMetricsMiddleware().CollectMetrics())
	router.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORS.AllowedOrigins,
		AllowMethods: cfg.CORS.AllowedMethods,
		AllowHeaders: append(cfg.CORS.AllowedHeaders,
			"Accept-Encoding",
			"Content-Encoding",
			"Content-Type",
		),
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Encoding",
			"Content-Type",
		},
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	db, err := connection.NewDatabase(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := migrations.AutoMigrate(db, log.Logger); err != nil {
		log.Fatal("Failed to run database migrations", zap.Error(err))
	}

	// Redis is optional: without it events and response caching are off.
	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Warn("Redis unavailable, continuing without cache", zap.Error(err))
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	habitsRepo := habits.NewRepository(db)
	habitsService := habits.NewService(habitsRepo, redisClient, log.Logger)

	reminderSystem, err := SetupReminderSystem(db, habitsService, log, cfg.Server.Mode != "production")
	if err != nil {
		log.Fatal("Failed to initialize reminder system", zap.Error(err))
	}

	dispatcher := scheduler.NewDispatcher(reminderSystem.Coordinator, redisClient, cfg.Reminder.DispatchHours, log)
	dispatcher.Start()
	defer dispatcher.Stop()

	cacheMiddleware := middleware.NewCacheMiddleware(redisClient, "habitstreak", 5*time.Minute, reminderSystem.Logger)

	habitsHandler := handlers.NewHabitsHandler(habitsService)
	reminderHandler := handlers.NewReminderHandler(reminderSystem.Coordinator, reminderSystem.Flow, reminderSystem.Permissions, cfg.Reminder.WeekStartDay())
	eventsHandler := handlers.NewEventsHandler(redisClient, log)

	routes.SetupHealthRoutes(router, db, redisClient)
	routes.NewHabitsRoutes(habitsHandler).RegisterRoutes(router, cacheMiddleware)
	routes.NewReminderRoutes(reminderHandler, log).RegisterRoutes(router)
	routes.NewEventsRoutes(eventsHandler).RegisterRoutes(router)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Info(fmt.Sprintf("Server starting on port %d", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	log.Info("Shutting down server...")
	if err := server.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited properly")
}
