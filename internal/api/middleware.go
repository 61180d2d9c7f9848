package api

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/cvagent/internal/models"
)

const (
	sessionCookieName = "cvagent_session"
	contextSessionKey = "current_session"
	contextRequestID  = "requestid"
)

// sessionContext is the caller identity resolved from the session cookie.
type sessionContext struct {
	Person models.Person
}

func (session *sessionContext) PersonID() uint {
	return session.Person.ID
}

func (session *sessionContext) IsRecruiter() bool {
	return session.Person.IsRecruiter()
}

func currentSession(c *fiber.Ctx) (*sessionContext, bool) {
	session, ok := c.Locals(contextSessionKey).(*sessionContext)
	return session, ok && session != nil
}

func requestID(c *fiber.Ctx) string {
	value, _ := c.Locals(contextRequestID).(string)
	return value
}

func (handler *Handler) requestContext(c *fiber.Ctx) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.UserContext(), handler.requestTimeout)
}
