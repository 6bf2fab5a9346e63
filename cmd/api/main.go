package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/samirrijal/utechnav/internal/adapters/airquality"
	"github.com/samirrijal/utechnav/internal/adapters/http"
	natsadapter "github.com/samirrijal/utechnav/internal/adapters/nats"
	"github.com/samirrijal/utechnav/internal/adapters/nominatim"
	"github.com/samirrijal/utechnav/internal/adapters/valhalla"
	"github.com/samirrijal/utechnav/internal/adapters/valkey"
	"github.com/samirrijal/utechnav/internal/core/ports"
	"github.com/samirrijal/utechnav/internal/core/usecases"
	"github.com/samirrijal/utechnav/internal/pkg/config"
	"github.com/samirrijal/utechnav/internal/pkg/logging"
	"github.com/samirrijal/utechnav/internal/pkg/telemetry"
)

const janitorInterval = time.Minute

func main() {
	cfg, err := config.Load("utechnav-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	deps := &http.Dependencies{Version: version()}

	// Cache (optional: searches go straight to the provider without it)
	var cache ports.CacheService
	if cfg.Valkey.Addr != "" {
		vc, err := valkey.New(cfg.Valkey.Addr)
		if err != nil {
			slog.Warn("valkey unavailable", "error", err)
		} else {
			defer vc.Close()
			cache = vc
			deps.Cache = vc
		}
	}

	// NATS (optional: WebSocket clients read the in-process session without it)
	var publisher ports.StatePublisher
	if cfg.NATS.URL != "" {
		if conn, err := natsadapter.Connect(cfg.NATS.URL); err != nil {
			slog.Warn("nats unavailable", "error", err)
		} else {
			pub, err := natsadapter.NewPublisher(conn)
			if err != nil {
				slog.Warn("nats jetstream unavailable", "error", err)
				conn.Close()
			} else {
				defer pub.Close()
				publisher = pub
				deps.NATS = conn
				if sub, err := natsadapter.NewSubscriber(conn); err != nil {
					slog.Warn("nats subscriber unavailable", "error", err)
				} else {
					deps.Subscriber = sub
				}
			}
		}
	}

	// Providers
	timeout := cfg.Providers.RequestTimeout()
	places := nominatim.New(cfg.Search.NominatimURL, cfg.Search.UserAgent, timeout)
	aq := airquality.New(cfg.AirQuality.BaseURL, cfg.AirQuality.APIKey, timeout)
	directions := valhalla.New(cfg.Directions.ValhallaURL, cfg.Directions.Alternates, timeout)

	// Use cases
	deps.Places = usecases.NewPlaceSearchService(places, cache, cfg.Search.CacheTTL, cfg.Search.Limit)
	deps.AirQuality = usecases.NewAirQualityService(aq)
	deps.Routes = usecases.NewRouteService(directions)
	deps.Sessions = usecases.NewSessionService(usecases.PresenterConfig{
		Search:          deps.Places,
		AirQuality:      deps.AirQuality,
		Routes:          deps.Routes,
		Publisher:       publisher,
		ProviderTimeout: timeout,
		SearchLimit:     cfg.Search.Limit,
		Logger:          slog.Default(),
	}, time.Duration(cfg.Sessions.IdleTTL)*time.Minute)

	go deps.Sessions.RunJanitor(ctx, janitorInterval)

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    64 * 1024,
		AppName:      "UtechNav API",
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, If-None-Match",
		MaxAge:       3600,
	}))

	http.SetupRoutes(app, deps, http.RouterOptions{
		Logger:         slog.Default(),
		RequestTimeout: timeout + 5*time.Second,
	})

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	// Sessions publish their close notices before NATS is drained.
	deps.Sessions.CloseAll(shutdownCtx)
	cancel()

	slog.Info("server stopped")
}

func version() string {
	if v := os.Getenv("UTECHNAV_VERSION"); v != "" {
		return v
	}
	return "dev"
}
