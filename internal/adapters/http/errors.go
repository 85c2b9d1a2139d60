package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/geosearch/internal/core/domain"
	"github.com/samirrijal/geosearch/internal/core/usecases"
)

// APIError is a structured error response.
type APIError struct {
	Status    int    `json:"status"`
	Code      string `json:"code"`    // Error code: bad_request, invalid_grid_reference, not_found, upstream_error, etc.
	Message   string `json:"message"` // Human-readable message
	RequestID string `json:"request_id,omitempty"`
}

// newError builds a JSON error response with a request ID.
func newError(c *fiber.Ctx, status int, code string, message string) error {
	reqID, _ := c.Locals("requestid").(string)
	return c.Status(status).JSON(APIError{
		Status:    status,
		Code:      code,
		Message:   message,
		RequestID: reqID,
	})
}

// errBadRequest returns a 400 error.
func errBadRequest(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusBadRequest, "bad_request", msg)
}

// errNotFound returns a 404 error.
func errNotFound(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusNotFound, "not_found", msg)
}

// errInternal returns a 500 error.
func errInternal(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusInternalServerError, "internal_error", msg)
}

// errUpstream returns a 502 error for feature service failures.
func errUpstream(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusBadGateway, "upstream_error", msg)
}

// errUnavailable returns a 503 error.
func errUnavailable(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusServiceUnavailable, "unavailable", msg)
}

// errFromUsecase maps use case errors onto the API envelope. Unrecognised
// errors are rendered by fallback.
func errFromUsecase(c *fiber.Ctx, err error, fallback func(*fiber.Ctx, string) error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidGridReference):
		return newError(c, fiber.StatusBadRequest, "invalid_grid_reference", err.Error())
	case errors.Is(err, domain.ErrInvalidEntry):
		return errBadRequest(c, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return errNotFound(c, "saved search not found")
	case errors.Is(err, usecases.ErrSchedulerUnavailable):
		return errUnavailable(c, err.Error())
	}
	return fallback(c, err.Error())
}
