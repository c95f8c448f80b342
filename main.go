package main

import (
	"log"

	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/djakk/covoiturage-libre/config"
	"github.com/djakk/covoiturage-libre/internal/handler"
	"github.com/djakk/covoiturage-libre/internal/middleware"
	"github.com/djakk/covoiturage-libre/internal/notifier"
	"github.com/djakk/covoiturage-libre/internal/repository"
	"github.com/djakk/covoiturage-libre/internal/service"
	"github.com/djakk/covoiturage-libre/pkg/cache"
	"github.com/djakk/covoiturage-libre/pkg/database"
	"github.com/djakk/covoiturage-libre/pkg/logger"
	"github.com/djakk/covoiturage-libre/pkg/rabbitmq"
)

func main() {
	cfg := config.Load()

	zl, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zl.Sync()

	db, err := database.NewPostgresDB(cfg.DSN())
	if err != nil {
		zl.Fatal("database init failed", zap.Error(err))
	}

	publisher, err := rabbitmq.NewPublisher(cfg.RabbitURL, zl)
	if err != nil {
		zl.Fatal("rabbitmq init failed", zap.Error(err))
	}
	defer publisher.Close()

	// The price cache is optional; without Redis every lookup recomputes.
	var priceCache *cache.Redis
	if cfg.RedisAddr != "" {
		priceCache, err = cache.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, zl)
		if err != nil {
			zl.Warn("redis unavailable, running without price cache", zap.Error(err))
			priceCache = nil
		} else {
			defer priceCache.Close()
		}
	}

	tripRepo := repository.NewTripRepository(db, zl)
	dispatcher := notifier.NewTripNotifier(publisher, zl)
	tripSvc := service.NewTripService(tripRepo, dispatcher, priceCache, zl)

	e := echo.New()
	e.HTTPErrorHandler = middleware.ErrorHandler
	e.Use(echoMw.RequestLoggerWithConfig(echoMw.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v echoMw.RequestLoggerValues) error {
			zl.Info("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status))
			return nil
		},
	}))
	e.Use(echoMw.Recover())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok", "service": "trip-service"})
	})

	handler.NewTripHandler(tripSvc).RegisterRoutes(e)

	zl.Info("Trip Service starting", zap.String("port", cfg.ServerPort))
	e.Logger.Fatal(e.Start(":" + cfg.ServerPort))
}
