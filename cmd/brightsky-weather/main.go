package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpapi "github.com/i474232898/brightsky-weather/internal/api/http"
	"github.com/i474232898/brightsky-weather/internal/config"
	"github.com/i474232898/brightsky-weather/internal/mqtt"
	"github.com/i474232898/brightsky-weather/internal/observability"
	"github.com/i474232898/brightsky-weather/internal/scheduler"
	"github.com/i474232898/brightsky-weather/internal/statecache"
	"github.com/i474232898/brightsky-weather/internal/store"
	"github.com/i474232898/brightsky-weather/internal/weather"
	"github.com/i474232898/brightsky-weather/internal/weather/brightsky"
)

const serviceName = "brightsky-weather"

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.SetupTracing(ctx, serviceName, cfg.OTLPEndpoint)
	if err != nil {
		logger.Error("failed to set up tracing", "error", err)
		os.Exit(1)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Warn("tracer shutdown failed", "error", err)
		}
	}()

	metrics := observability.NewMetrics(prometheus.DefaultRegisterer)

	// Shared HTTP client for outbound BrightSky calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}
	client := brightsky.NewClient(httpClient, cfg.Endpoint, cfg.MaxRetries)

	// In-memory store with configured retention.
	memStore := store.NewMemoryStore(cfg.StoreMaxHistory, cfg.StoreMaxAge)

	coord := weather.NewCoordinator(client, memStore, cfg.Location, weather.CoordinatorOptions{
		Timeout:  cfg.RefreshTimeout,
		Logger:   logger.With("component", "coordinator"),
		Observer: metrics,
	})

	if cfg.MQTTBrokerURL != "" {
		mqttClient, err := mqtt.New(cfg.MQTTBrokerURL, mqtt.AvailabilityTopicFor(cfg.MQTTTopicPrefix, cfg.Name))
		if err != nil {
			logger.Error("failed to connect to MQTT broker", "error", err)
			os.Exit(1)
		}
		defer mqttClient.Close()
		publisher := mqtt.NewPublisher(mqttClient, cfg.MQTTTopicPrefix, cfg.Name, logger.With("component", "mqtt"))
		defer coord.Subscribe(publisher.Handle)()
	}

	if cfg.RedisURL != "" {
		rdb, err := statecache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer rdb.Close()
		mirror := statecache.NewMirror(rdb, cfg.Location, cfg.RedisTTL, logger.With("component", "statecache"))
		defer coord.Subscribe(mirror.Handle)()
	}

	// The first refresh must succeed before the service is considered ready.
	if err := coord.FirstRefresh(ctx); err != nil {
		logger.Error("initial weather refresh failed", "location", cfg.Location.Key(), "error", err)
		os.Exit(1)
	}

	sched := scheduler.New(coord, cfg.RefreshInterval, logger.With("component", "scheduler"))
	if err := sched.Start(); err != nil {
		logger.Error("failed to start scheduler", "error", err)
		os.Exit(1)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               serviceName,
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          cfg.RefreshTimeout + 10*time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	app.Use(fiberlogger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		status := coord.Status()
		return c.JSON(fiber.Map{
			"status":              "ok",
			"service":             serviceName,
			"last_update_success": status.LastUpdateSuccess,
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	httpapi.RegisterRoutes(app, coord, httpapi.Defaults{
		HourlyLimit:  cfg.HourlyLimit,
		DailyLimit:   cfg.DailyLimit,
		ForecastMode: cfg.ForecastMode,
	})

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			logger.Error("fiber server stopped", "error", err)
		}
	}()
	logger.Info("service started", "port", cfg.Port, "location", cfg.Location.Key(), "interval", cfg.RefreshInterval)

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("error during shutdown", "error", err)
	}
}
