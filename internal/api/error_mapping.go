package api

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/cvagent/internal/services"
)

// respondServiceError writes the status and body for an error returned by a
// service. Unknown errors are logged and answered with an opaque 500.
func (handler *Handler) respondServiceError(c *fiber.Ctx, err error) error {
	var validationErr *services.ValidationError
	if errors.As(err, &validationErr) {
		return apiFieldError(c, fiber.StatusBadRequest, validationErr.Field, validationErr.Message)
	}
	var conflictErr *services.ConflictError
	if errors.As(err, &conflictErr) {
		return apiFieldError(c, fiber.StatusConflict, conflictErr.Field, conflictErr.Error())
	}

	switch {
	case errors.Is(err, services.ErrOverlap):
		return apiFieldError(c, fiber.StatusBadRequest, "availabilities", err.Error())
	case errors.Is(err, services.ErrPasswordMismatch):
		return apiFieldError(c, fiber.StatusBadRequest, "confirmPassword", err.Error())
	case errors.Is(err, services.ErrPasscodeNotFound),
		errors.Is(err, services.ErrInvalidPasscode),
		errors.Is(err, services.ErrPasscodeExpired),
		errors.Is(err, services.ErrPasscodeAttemptsExceeded),
		errors.Is(err, services.ErrPasscodeNotConfirmed):
		return apiFieldError(c, fiber.StatusBadRequest, "passcode", err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		return apiError(c, fiber.StatusUnauthorized, err.Error())
	case errors.Is(err, services.ErrInvalidSession), errors.Is(err, services.ErrSessionExpired):
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	case errors.Is(err, services.ErrForbidden):
		return apiError(c, fiber.StatusForbidden, "forbidden")
	case errors.Is(err, services.ErrNotFound):
		return apiError(c, fiber.StatusNotFound, "not found")
	case errors.Is(err, services.ErrCompetenceCatalogNotReady):
		return apiError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrUniqueViolation), errors.Is(err, services.ErrStatusUnchanged):
		return apiError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		handler.logger.WarnContext(c.UserContext(), "request timed out",
			"request_id", requestID(c),
			"method", c.Method(),
			"path", c.Path(),
		)
		return apiError(c, fiber.StatusServiceUnavailable, "request timed out")
	}

	handler.logger.ErrorContext(c.UserContext(), "request failed",
		"request_id", requestID(c),
		"method", c.Method(),
		"path", c.Path(),
		"error", err,
	)
	return apiError(c, fiber.StatusInternalServerError, "internal server error")
}
