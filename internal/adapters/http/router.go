package http

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/utechnav/internal/pkg/metrics"
)

// RouterOptions tunes the middleware stack. Zero values fall back to defaults.
type RouterOptions struct {
	Logger *slog.Logger
	// RequestTimeout bounds each /v1 handler.
	RequestTimeout time.Duration
	// RateLimit is requests per minute per client IP.
	RateLimit int
	SpecPath  string
}

func (o RouterOptions) withDefaults() RouterOptions {
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.RequestTimeout <= 0 {
		o.RequestTimeout = 15 * time.Second
	}
	if o.RateLimit <= 0 {
		o.RateLimit = 120
	}
	if o.SpecPath == "" {
		o.SpecPath = DefaultSpecPath
	}
	return o
}

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies, opts RouterOptions) {
	opts = opts.withDefaults()

	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	app.Use(requestid.New())
	app.Use(RequestIDLogMiddleware(opts.Logger))
	app.Use(AccessLogMiddleware())

	app.Use(limiter.New(limiter.Config{
		Max:        opts.RateLimit,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return newError(c, fiber.StatusTooManyRequests, "rate_limited", "too many requests, please try again later")
		},
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	app.Use(ETagMiddleware())
	app.Use(CachingMiddleware())

	// Health & readiness (no timeout, fast internal checks)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	withTimeout := func(h fiber.Handler) fiber.Handler {
		return timeout.NewWithContext(h, opts.RequestTimeout)
	}

	v1 := app.Group("/v1")

	// Stateless lookups
	v1.Get("/places/search", withTimeout(SearchPlacesHandler(deps)))
	v1.Get("/air-quality", withTimeout(AirQualityHandler(deps)))
	v1.Get("/routes/estimate", withTimeout(RouteEstimateHandler(deps)))

	// Navigation sessions. Commands return immediately with the new
	// snapshot; provider results arrive through later snapshots.
	sessions := v1.Group("/sessions")
	sessions.Post("/", CreateSessionHandler(deps))
	sessions.Get("/", ListSessionsHandler(deps))
	sessions.Get("/:id", GetSessionHandler(deps))
	sessions.Delete("/:id", DeleteSessionHandler(deps))
	sessions.Post("/:id/search", SessionSearchHandler(deps))
	sessions.Post("/:id/select", SessionSelectHandler(deps))
	sessions.Post("/:id/directions", SessionDirectionsHandler(deps))
	sessions.Post("/:id/recenter", SessionRecenterHandler(deps))
	sessions.Post("/:id/dismiss", SessionDismissHandler(deps))
	sessions.Put("/:id/mode", SessionModeHandler(deps))
	sessions.Put("/:id/style", SessionStyleHandler(deps))
	sessions.Put("/:id/location", SessionLocationHandler(deps))
	sessions.Put("/:id/authorization", SessionAuthorizationHandler(deps))

	app.Post("/graphql", withTimeout(GraphQLHandler(deps)))

	SetupDocs(app, opts.SpecPath)

	app.Use("/ws", WebSocketUpgrade(deps))
	app.Get("/ws", websocket.New(WebSocketHandler(deps)))
}
