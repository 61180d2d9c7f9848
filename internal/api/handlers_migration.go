package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/cvagent/internal/services"
)

func (handler *Handler) RequestPasscode(c *fiber.Ctx) error {
	input, err := parseInput[requestPasscodeInput](c)
	if err != nil {
		return handler.respondServiceError(c, err)
	}

	ctx, cancel := handler.requestContext(c)
	defer cancel()

	if err := handler.migrationService.RequestPasscode(ctx, *input.Email); err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "passcode sent"})
}

func (handler *Handler) ConfirmPasscode(c *fiber.Ctx) error {
	limiterKey := requestLimiterKey(c)
	slot, ok := handler.passcodeLimiter.reserve(limiterKey)
	if !ok {
		return apiError(c, fiber.StatusTooManyRequests, "too many passcode attempts, try again later")
	}

	input, err := parseInput[confirmPasscodeInput](c)
	if err != nil {
		handler.passcodeLimiter.release(limiterKey, slot)
		return handler.respondServiceError(c, err)
	}

	ctx, cancel := handler.requestContext(c)
	defer cancel()

	if err := handler.migrationService.ConfirmPasscode(ctx, *input.Email, *input.Passcode); err != nil {
		if !errors.Is(err, services.ErrInvalidPasscode) && !errors.Is(err, services.ErrPasscodeAttemptsExceeded) {
			handler.passcodeLimiter.release(limiterKey, slot)
		}
		return handler.respondServiceError(c, err)
	}
	handler.passcodeLimiter.reset(limiterKey)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "passcode confirmed"})
}

// UpdateMigratingApplicant finishes the migration and signs the person in.
func (handler *Handler) UpdateMigratingApplicant(c *fiber.Ctx) error {
	input, err := parseInput[migratingApplicantInput](c)
	if err != nil {
		return handler.respondServiceError(c, err)
	}

	ctx, cancel := handler.requestContext(c)
	defer cancel()

	person, err := handler.migrationService.CompleteMigration(ctx, input.toService())
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	if err := handler.setSessionCookie(c, person); err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(userResponse{User: newPersonResponse(person)})
}

func (handler *Handler) UpdateRecruiter(c *fiber.Ctx) error {
	session, ok := currentSession(c)
	if !ok {
		return handler.respondServiceError(c, errUnauthorized)
	}
	input, err := parseInput[updateRecruiterInput](c)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	if err := authorizePerson(session, *input.PersonID, false); err != nil {
		return handler.respondServiceError(c, err)
	}

	ctx, cancel := handler.requestContext(c)
	defer cancel()

	person, err := handler.authService.UpdateRecruiterContact(ctx, *input.PersonID, *input.Email, *input.PersonalNumber)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(userResponse{User: newPersonResponse(person)})
}
