package api

import (
	"time"

	"github.com/terraincognita07/cvagent/internal/models"
	"github.com/terraincognita07/cvagent/internal/services"
)

type personResponse struct {
	ID             uint   `json:"id"`
	Name           string `json:"name"`
	Surname        string `json:"surname"`
	PersonalNumber string `json:"pnr,omitempty"`
	Email          string `json:"email,omitempty"`
	Username       string `json:"username,omitempty"`
	Role           string `json:"role"`
}

func newPersonResponse(person models.Person) personResponse {
	return personResponse{
		ID:             person.ID,
		Name:           person.Name,
		Surname:        person.Surname,
		PersonalNumber: models.StringValue(person.PersonalNumber),
		Email:          models.StringValue(person.Email),
		Username:       models.StringValue(person.Username),
		Role:           person.Role,
	}
}

type userResponse struct {
	User personResponse `json:"user"`
}

type competenceResponse struct {
	ID   uint   `json:"competence_id"`
	Name string `json:"name"`
}

func newCompetenceResponses(competencies []models.Competence) []competenceResponse {
	response := make([]competenceResponse, 0, len(competencies))
	for _, competence := range competencies {
		response = append(response, competenceResponse{ID: competence.ID, Name: competence.Name})
	}
	return response
}

type userCompetenceResponse struct {
	CompetenceID      uint    `json:"competence_id"`
	Name              string  `json:"name"`
	YearsOfExperience float64 `json:"years_of_experience"`
}

func newUserCompetenceResponses(entries []models.UserCompetence) []userCompetenceResponse {
	response := make([]userCompetenceResponse, 0, len(entries))
	for _, entry := range entries {
		response = append(response, userCompetenceResponse{
			CompetenceID:      entry.CompetenceID,
			Name:              entry.Competence.Name,
			YearsOfExperience: entry.YearsOfExperience,
		})
	}
	return response
}

type availabilityResponse struct {
	ID       uint   `json:"availability_id"`
	FromDate string `json:"from_date"`
	ToDate   string `json:"to_date"`
}

func newAvailabilityResponses(entries []models.Availability) []availabilityResponse {
	response := make([]availabilityResponse, 0, len(entries))
	for _, entry := range entries {
		response = append(response, availabilityResponse{
			ID:       entry.ID,
			FromDate: entry.FromDate.UTC().Format(models.DateLayout),
			ToDate:   entry.ToDate.UTC().Format(models.DateLayout),
		})
	}
	return response
}

type applicationResponse struct {
	PersonID       uint                     `json:"person_id"`
	Status         string                   `json:"status"`
	SubmittedAt    time.Time                `json:"submitted_at"`
	UpdatedAt      time.Time                `json:"updated_at"`
	Competencies   []userCompetenceResponse `json:"competencies,omitempty"`
	Availabilities []availabilityResponse   `json:"availabilities,omitempty"`
}

func newApplicationResponse(snapshot services.ApplicationSnapshot) applicationResponse {
	response := newApplicationStatusResponse(snapshot.Application)
	response.Competencies = newUserCompetenceResponses(snapshot.Competencies)
	response.Availabilities = newAvailabilityResponses(snapshot.Availabilities)
	return response
}

func newApplicationStatusResponse(application models.Application) applicationResponse {
	return applicationResponse{
		PersonID:    application.PersonID,
		Status:      application.Status,
		SubmittedAt: application.SubmittedAt,
		UpdatedAt:   application.UpdatedAt,
	}
}

type applicantProfileResponse struct {
	Person         personResponse           `json:"person"`
	Status         string                   `json:"status"`
	SubmittedAt    time.Time                `json:"submitted_at"`
	Competencies   []userCompetenceResponse `json:"competencies"`
	Availabilities []availabilityResponse   `json:"availabilities"`
}

func newApplicantProfileResponses(persons []models.Person) []applicantProfileResponse {
	response := make([]applicantProfileResponse, 0, len(persons))
	for _, person := range persons {
		profile := applicantProfileResponse{
			Person:         newPersonResponse(person),
			Competencies:   newUserCompetenceResponses(person.Competencies),
			Availabilities: newAvailabilityResponses(person.Availabilities),
		}
		if person.Application != nil {
			profile.Status = person.Application.Status
			profile.SubmittedAt = person.Application.SubmittedAt
		}
		response = append(response, profile)
	}
	return response
}
