package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/cvagent/internal/services"
)

// Login checks the credentials and issues a session cookie. A request with
// an empty body resumes the session carried by a valid cookie.
func (handler *Handler) Login(c *fiber.Ctx) error {
	if len(c.Body()) == 0 {
		session, err := handler.authenticateRequest(c)
		if err != nil {
			if errors.Is(err, services.ErrInvalidSession) || errors.Is(err, services.ErrSessionExpired) {
				return apiError(c, fiber.StatusUnauthorized, "unauthorized")
			}
			return handler.respondServiceError(c, err)
		}
		return c.JSON(userResponse{User: newPersonResponse(session.Person)})
	}

	limiterKey := requestLimiterKey(c)
	slot, ok := handler.loginLimiter.reserve(limiterKey)
	if !ok {
		return apiError(c, fiber.StatusTooManyRequests, "too many login attempts, try again later")
	}

	input, err := parseInput[loginInput](c)
	if err != nil {
		handler.loginLimiter.release(limiterKey, slot)
		return handler.respondServiceError(c, err)
	}

	ctx, cancel := handler.requestContext(c)
	defer cancel()

	person, err := handler.authService.Login(ctx, *input.Username, *input.Password)
	if err != nil {
		if !errors.Is(err, services.ErrInvalidCredentials) {
			handler.loginLimiter.release(limiterKey, slot)
		}
		return handler.respondServiceError(c, err)
	}
	handler.loginLimiter.reset(limiterKey)

	if err := handler.setSessionCookie(c, person); err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(userResponse{User: newPersonResponse(person)})
}

func (handler *Handler) Logout(c *fiber.Ctx) error {
	handler.clearSessionCookie(c)
	return c.JSON(fiber.Map{"message": "logged out"})
}

func (handler *Handler) Me(c *fiber.Ctx) error {
	session, ok := currentSession(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	return c.JSON(userResponse{User: newPersonResponse(session.Person)})
}

func (handler *Handler) Register(c *fiber.Ctx) error {
	input, err := parseInput[registerInput](c)
	if err != nil {
		return handler.respondServiceError(c, err)
	}

	ctx, cancel := handler.requestContext(c)
	defer cancel()

	person, err := handler.authService.Register(ctx, input.toService())
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	if err := handler.setSessionCookie(c, person); err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(userResponse{User: newPersonResponse(person)})
}
