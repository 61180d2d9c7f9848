package api

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(app *fiber.App, handler *Handler) {
	app.Get("/healthz", handler.Health)

	api := app.Group("/api")

	api.Post("/login", handler.Login)
	api.Post("/logout", handler.Logout)
	api.Post("/register", handler.Register)
	api.Get("/me", handler.AuthRequired, handler.Me)

	api.Get("/competencies", handler.Competencies)
	api.Post("/userCompetencies", handler.AuthRequired, handler.UserCompetencies)
	api.Post("/userAvailability", handler.AuthRequired, handler.UserAvailability)
	api.Post("/userApplication", handler.AuthRequired, handler.UserApplication)
	api.Post("/createApplication", handler.AuthRequired, handler.CreateApplication)
	api.Post("/updateCompetencies", handler.AuthRequired, handler.UpdateCompetencies)
	api.Post("/updateAvailability", handler.AuthRequired, handler.UpdateAvailability)
	api.Post("/addAvailability", handler.AuthRequired, handler.AddAvailability)
	api.Post("/deleteCompetence", handler.AuthRequired, handler.DeleteCompetence)
	api.Post("/deleteAvailability", handler.AuthRequired, handler.DeleteAvailability)

	api.Get("/applicantProfiles", handler.AuthRequired, handler.RecruiterOnly, handler.ApplicantProfiles)
	api.Post("/updateApplicationStatus", handler.AuthRequired, handler.RecruiterOnly, handler.UpdateApplicationStatus)
	api.Post("/updateRecruiter", handler.AuthRequired, handler.RecruiterOnly, handler.UpdateRecruiter)

	api.Post("/requestPasscode", handler.RequestPasscode)
	api.Post("/confirmPasscode", handler.ConfirmPasscode)
	api.Post("/updateMigratingApplicant", handler.UpdateMigratingApplicant)
}
