package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CachingMiddleware sets Cache-Control on GET responses the handler left alone.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		if c.Method() != fiber.MethodGet || len(c.Response().Header.Peek(fiber.HeaderCacheControl)) > 0 {
			return err
		}

		path := c.Path()
		var ttl string

		switch {
		case path == "/v1/health" || path == "/v1/ready":
			ttl = "public, max-age=10"

		case path == "/metrics", path == "/ws":
			ttl = "no-cache"

		// Session state changes underneath the client, and air quality is
		// fetched fresh on every selection.
		case strings.HasPrefix(path, "/v1/sessions"), strings.HasPrefix(path, "/v1/air-quality"):
			ttl = "no-store"

		case strings.HasPrefix(path, "/v1/places"):
			ttl = "public, max-age=300"

		// Travel times depend on traffic and schedules.
		case strings.HasPrefix(path, "/v1/routes"):
			ttl = "public, max-age=60"

		case path == "/docs" || strings.HasPrefix(path, "/docs/"):
			ttl = "public, max-age=3600"

		case strings.HasPrefix(path, "/v1/"):
			ttl = "public, max-age=60"
		}

		if ttl != "" {
			c.Set(fiber.HeaderCacheControl, ttl)
		}
		return err
	}
}
