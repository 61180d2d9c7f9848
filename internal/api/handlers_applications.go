package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/cvagent/internal/services"
)

var errUnauthorized = services.ErrInvalidSession

func (handler *Handler) Competencies(c *fiber.Ctx) error {
	ctx, cancel := handler.requestContext(c)
	defer cancel()

	competencies, err := handler.applicationService.ListCompetencies(ctx)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(newCompetenceResponses(competencies))
}

// personFromBody decodes a {person_id} body and checks the caller may act
// on that person.
func (handler *Handler) personFromBody(c *fiber.Ctx, allowRecruiter bool) (uint, error) {
	session, ok := currentSession(c)
	if !ok {
		return 0, errUnauthorized
	}
	input, err := parseInput[personInput](c)
	if err != nil {
		return 0, err
	}
	if err := authorizePerson(session, *input.PersonID, allowRecruiter); err != nil {
		return 0, err
	}
	return *input.PersonID, nil
}

func (handler *Handler) UserCompetencies(c *fiber.Ctx) error {
	personID, err := handler.personFromBody(c, true)
	if err != nil {
		return handler.respondServiceError(c, err)
	}

	ctx, cancel := handler.requestContext(c)
	defer cancel()

	entries, err := handler.applicationService.UserCompetencies(ctx, personID)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(newUserCompetenceResponses(entries))
}

func (handler *Handler) UserAvailability(c *fiber.Ctx) error {
	personID, err := handler.personFromBody(c, true)
	if err != nil {
		return handler.respondServiceError(c, err)
	}

	ctx, cancel := handler.requestContext(c)
	defer cancel()

	entries, err := handler.applicationService.UserAvailability(ctx, personID)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(newAvailabilityResponses(entries))
}

func (handler *Handler) UserApplication(c *fiber.Ctx) error {
	personID, err := handler.personFromBody(c, true)
	if err != nil {
		return handler.respondServiceError(c, err)
	}

	ctx, cancel := handler.requestContext(c)
	defer cancel()

	snapshot, err := handler.applicationService.CurrentApplication(ctx, personID)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(newApplicationResponse(snapshot))
}

func (handler *Handler) CreateApplication(c *fiber.Ctx) error {
	session, ok := currentSession(c)
	if !ok {
		return handler.respondServiceError(c, errUnauthorized)
	}
	input, err := parseInput[createApplicationInput](c)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	if err := authorizePerson(session, *input.PersonID, false); err != nil {
		return handler.respondServiceError(c, err)
	}

	ctx, cancel := handler.requestContext(c)
	defer cancel()

	competencies, availabilities := input.toService()
	snapshot, err := handler.applicationService.SubmitApplication(ctx, *input.PersonID, competencies, availabilities)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(newApplicationResponse(snapshot))
}

// UpdateCompetencies replaces only the competence set of the caller.
func (handler *Handler) UpdateCompetencies(c *fiber.Ctx) error {
	session, ok := currentSession(c)
	if !ok {
		return handler.respondServiceError(c, errUnauthorized)
	}
	input, err := parseInput[updateCompetenciesInput](c)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	if err := authorizePerson(session, *input.PersonID, false); err != nil {
		return handler.respondServiceError(c, err)
	}

	ctx, cancel := handler.requestContext(c)
	defer cancel()

	entries, err := handler.applicationService.ReplaceCompetencies(ctx, *input.PersonID, competenceInputs(input.Competencies))
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(newUserCompetenceResponses(entries))
}

// UpdateAvailability replaces only the availability set of the caller.
func (handler *Handler) UpdateAvailability(c *fiber.Ctx) error {
	session, ok := currentSession(c)
	if !ok {
		return handler.respondServiceError(c, errUnauthorized)
	}
	input, err := parseInput[updateAvailabilityInput](c)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	if err := authorizePerson(session, *input.PersonID, false); err != nil {
		return handler.respondServiceError(c, err)
	}

	ctx, cancel := handler.requestContext(c)
	defer cancel()

	entries, err := handler.applicationService.ReplaceAvailability(ctx, *input.PersonID, availabilityInputs(input.Availabilities))
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(newAvailabilityResponses(entries))
}

func (handler *Handler) AddAvailability(c *fiber.Ctx) error {
	session, ok := currentSession(c)
	if !ok {
		return handler.respondServiceError(c, errUnauthorized)
	}
	input, err := parseInput[addAvailabilityInput](c)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	if err := authorizePerson(session, *input.PersonID, false); err != nil {
		return handler.respondServiceError(c, err)
	}

	ctx, cancel := handler.requestContext(c)
	defer cancel()

	entries, err := handler.applicationService.AddAvailability(ctx, *input.PersonID, services.AvailabilityInput{
		FromDate: *input.FromDate,
		ToDate:   *input.ToDate,
	})
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(newAvailabilityResponses(entries))
}

func (handler *Handler) DeleteCompetence(c *fiber.Ctx) error {
	personID, err := handler.personFromBody(c, false)
	if err != nil {
		return handler.respondServiceError(c, err)
	}

	ctx, cancel := handler.requestContext(c)
	defer cancel()

	if err := handler.applicationService.DeleteCompetencies(ctx, personID); err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "competencies deleted"})
}

func (handler *Handler) DeleteAvailability(c *fiber.Ctx) error {
	personID, err := handler.personFromBody(c, false)
	if err != nil {
		return handler.respondServiceError(c, err)
	}

	ctx, cancel := handler.requestContext(c)
	defer cancel()

	if err := handler.applicationService.DeleteAvailability(ctx, personID); err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "availability deleted"})
}

func (handler *Handler) ApplicantProfiles(c *fiber.Ctx) error {
	ctx, cancel := handler.requestContext(c)
	defer cancel()

	profiles, err := handler.applicationService.ListApplicantProfiles(ctx)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(newApplicantProfileResponses(profiles))
}

func (handler *Handler) UpdateApplicationStatus(c *fiber.Ctx) error {
	input, err := parseInput[updateStatusInput](c)
	if err != nil {
		return handler.respondServiceError(c, err)
	}

	ctx, cancel := handler.requestContext(c)
	defer cancel()

	application, err := handler.applicationService.UpdateStatus(ctx, *input.PersonID, *input.Status)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(newApplicationStatusResponse(application))
}
