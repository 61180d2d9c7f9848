package api

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/cvagent/internal/services"
)

func (handler *Handler) AuthRequired(c *fiber.Ctx) error {
	session, err := handler.authenticateRequest(c)
	if err != nil {
		if errors.Is(err, services.ErrInvalidSession) || errors.Is(err, services.ErrSessionExpired) {
			return apiError(c, fiber.StatusUnauthorized, "unauthorized")
		}
		return handler.respondServiceError(c, err)
	}

	c.Locals(contextSessionKey, session)
	return c.Next()
}

func (handler *Handler) RecruiterOnly(c *fiber.Ctx) error {
	session, ok := currentSession(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	if !session.IsRecruiter() {
		return apiError(c, fiber.StatusForbidden, "recruiter access required")
	}
	return c.Next()
}

func (handler *Handler) authenticateRequest(c *fiber.Ctx) (*sessionContext, error) {
	rawToken := strings.TrimSpace(c.Cookies(sessionCookieName))
	if rawToken == "" {
		return nil, services.ErrInvalidSession
	}

	claims, err := handler.sessions.Verify(rawToken)
	if err != nil {
		return nil, err
	}

	ctx, cancel := handler.requestContext(c)
	defer cancel()

	person, err := handler.authService.FindByID(ctx, claims.PersonID)
	if errors.Is(err, services.ErrNotFound) {
		return nil, services.ErrInvalidSession
	}
	if err != nil {
		return nil, err
	}
	return &sessionContext{Person: person}, nil
}

// authorizePerson allows the owner of personID, and recruiters when
// allowRecruiter is set.
func authorizePerson(session *sessionContext, personID uint, allowRecruiter bool) error {
	if session.PersonID() == personID {
		return nil
	}
	if allowRecruiter && session.IsRecruiter() {
		return nil
	}
	return services.ErrForbidden
}
