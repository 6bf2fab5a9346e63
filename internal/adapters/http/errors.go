package http

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/utechnav/internal/core/domain"
)

// APIError is the consistent error envelope returned by all endpoints.
type APIError struct {
	Status    int    `json:"status"`
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

func newError(c *fiber.Ctx, status int, code, msg string) error {
	rid, _ := c.Locals("requestid").(string)
	return c.Status(status).JSON(APIError{
		Status:    status,
		Code:      code,
		Message:   msg,
		RequestID: rid,
	})
}

func errBadRequest(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusBadRequest, "bad_request", msg)
}

func errNotFound(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusNotFound, "not_found", msg)
}

func errForbidden(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusForbidden, "forbidden", msg)
}

func errBadGateway(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusBadGateway, "upstream_failure", msg)
}

func errInternal(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusInternalServerError, "internal_error", msg)
}

// errFromDomain maps the error taxonomy onto a status code. Upstream
// failures are reported with the user-visible message so provider URLs
// never reach the client.
func errFromDomain(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return errBadRequest(c, err.Error())
	case errors.Is(err, domain.ErrNoResultFound):
		return errNotFound(c, err.Error())
	case errors.Is(err, domain.ErrPermissionDenied):
		return errForbidden(c, domain.UserMessage(err))
	case errors.Is(err, domain.ErrDecodeFailure):
		return errBadGateway(c, domain.MessageDecode)
	case domain.IsNetwork(err), errors.Is(err, context.Canceled):
		return errBadGateway(c, domain.MessageNetwork)
	default:
		LoggerFromCtx(c.UserContext()).Error("unhandled error", "error", err)
		return errInternal(c, "internal error")
	}
}

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", domain.ErrInvalidInput, msg)
}

func badBody(err error) error {
	return fmt.Errorf("%w: malformed body: %v", domain.ErrInvalidInput, err)
}
