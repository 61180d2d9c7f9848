package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/terraincognita07/cvagent/internal/models"
	"gorm.io/gorm"
)

type ApplicationRepository interface {
	ListCompetencies(ctx context.Context) ([]models.Competence, error)
	ListUserCompetencies(ctx context.Context, personID uint) ([]models.UserCompetence, error)
	ListAvailability(ctx context.Context, personID uint) ([]models.Availability, error)
	ReplaceApplication(ctx context.Context, personID uint, competencies []models.UserCompetence, availabilities []models.Availability, submittedAt time.Time) (models.Application, error)
	ReplaceUserCompetencies(ctx context.Context, personID uint, competencies []models.UserCompetence) error
	ReplaceUserAvailability(ctx context.Context, personID uint, availabilities []models.Availability) error
	AddAvailability(ctx context.Context, entry *models.Availability, guard func(existing []models.Availability) error) error
	DeleteUserCompetencies(ctx context.Context, personID uint) error
	DeleteAvailability(ctx context.Context, personID uint) error
	FindApplication(ctx context.Context, personID uint) (models.Application, bool, error)
	UpdateStatus(ctx context.Context, personID uint, status string, updatedAt time.Time) error
	ListApplicantProfiles(ctx context.Context) ([]models.Person, error)
}

type CompetenceInput struct {
	Name              string
	YearsOfExperience float64
}

type AvailabilityInput struct {
	FromDate string
	ToDate   string
}

// ApplicationSnapshot is a person's current application: the review status
// together with the competence and availability sets it covers.
type ApplicationSnapshot struct {
	Application    models.Application
	Competencies   []models.UserCompetence
	Availabilities []models.Availability
}

type ApplicationService struct {
	applications ApplicationRepository
	now          func() time.Time
}

func NewApplicationService(applications ApplicationRepository) *ApplicationService {
	return &ApplicationService{applications: applications, now: time.Now}
}

func (service *ApplicationService) ListCompetencies(ctx context.Context) ([]models.Competence, error) {
	competencies, err := service.applications.ListCompetencies(ctx)
	if err != nil {
		return nil, fmt.Errorf("list competencies: %w", err)
	}
	if len(competencies) == 0 {
		return nil, ErrCompetenceCatalogNotReady
	}
	return competencies, nil
}

func (service *ApplicationService) UserCompetencies(ctx context.Context, personID uint) ([]models.UserCompetence, error) {
	entries, err := service.applications.ListUserCompetencies(ctx, personID)
	if err != nil {
		return nil, fmt.Errorf("list user competencies: %w", err)
	}
	return entries, nil
}

func (service *ApplicationService) UserAvailability(ctx context.Context, personID uint) ([]models.Availability, error) {
	entries, err := service.applications.ListAvailability(ctx, personID)
	if err != nil {
		return nil, fmt.Errorf("list availability: %w", err)
	}
	return entries, nil
}

func (service *ApplicationService) CurrentApplication(ctx context.Context, personID uint) (ApplicationSnapshot, error) {
	application, found, err := service.applications.FindApplication(ctx, personID)
	if err != nil {
		return ApplicationSnapshot{}, fmt.Errorf("find application: %w", err)
	}
	if !found {
		return ApplicationSnapshot{}, ErrNotFound
	}

	competencies, err := service.UserCompetencies(ctx, personID)
	if err != nil {
		return ApplicationSnapshot{}, err
	}
	availabilities, err := service.UserAvailability(ctx, personID)
	if err != nil {
		return ApplicationSnapshot{}, err
	}

	return ApplicationSnapshot{
		Application:    application,
		Competencies:   competencies,
		Availabilities: availabilities,
	}, nil
}

// SubmitApplication replaces the person's competencies and availability and
// resets the review status. Nothing is written unless every entry is valid.
func (service *ApplicationService) SubmitApplication(
	ctx context.Context,
	personID uint,
	competencies []CompetenceInput,
	availabilities []AvailabilityInput,
) (ApplicationSnapshot, error) {
	if len(competencies) == 0 {
		return ApplicationSnapshot{}, newValidationError("competencies", "at least one competence is required")
	}
	if len(availabilities) == 0 {
		return ApplicationSnapshot{}, newValidationError("availabilities", "at least one availability period is required")
	}

	catalog, err := service.ListCompetencies(ctx)
	if err != nil {
		return ApplicationSnapshot{}, err
	}

	competenceRows, err := resolveCompetencies(personID, competencies, catalog)
	if err != nil {
		return ApplicationSnapshot{}, err
	}

	availabilityRows, err := buildAvailabilitySet(personID, availabilities)
	if err != nil {
		return ApplicationSnapshot{}, err
	}

	if _, err := service.applications.ReplaceApplication(ctx, personID, competenceRows, availabilityRows, service.now().UTC()); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ApplicationSnapshot{}, ErrUniqueViolation
		}
		return ApplicationSnapshot{}, fmt.Errorf("replace application: %w", err)
	}

	return service.CurrentApplication(ctx, personID)
}

// ReplaceCompetencies swaps the person's competence set. Availability and the
// review status are left as they are.
func (service *ApplicationService) ReplaceCompetencies(ctx context.Context, personID uint, competencies []CompetenceInput) ([]models.UserCompetence, error) {
	if len(competencies) == 0 {
		return nil, newValidationError("competencies", "at least one competence is required")
	}

	catalog, err := service.ListCompetencies(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := resolveCompetencies(personID, competencies, catalog)
	if err != nil {
		return nil, err
	}

	if err := service.applications.ReplaceUserCompetencies(ctx, personID, rows); err != nil {
		switch {
		case errors.Is(err, gorm.ErrDuplicatedKey):
			return nil, ErrUniqueViolation
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, ErrNotFound
		default:
			return nil, fmt.Errorf("replace competencies: %w", err)
		}
	}
	return service.UserCompetencies(ctx, personID)
}

// ReplaceAvailability swaps the person's availability set for one with no
// overlapping intervals.
func (service *ApplicationService) ReplaceAvailability(ctx context.Context, personID uint, availabilities []AvailabilityInput) ([]models.Availability, error) {
	if len(availabilities) == 0 {
		return nil, newValidationError("availabilities", "at least one availability period is required")
	}

	rows, err := buildAvailabilitySet(personID, availabilities)
	if err != nil {
		return nil, err
	}

	if err := service.applications.ReplaceUserAvailability(ctx, personID, rows); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("replace availability: %w", err)
	}
	return service.UserAvailability(ctx, personID)
}

func buildAvailabilitySet(personID uint, inputs []AvailabilityInput) ([]models.Availability, error) {
	rows := make([]models.Availability, 0, len(inputs))
	for index, input := range inputs {
		entry, err := BuildAvailability(
			personID,
			fmt.Sprintf("availabilities[%d].from_date", index), input.FromDate,
			fmt.Sprintf("availabilities[%d].to_date", index), input.ToDate,
		)
		if err != nil {
			return nil, err
		}
		rows = append(rows, entry)
	}
	if err := ValidateAvailabilitySet(rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func resolveCompetencies(personID uint, inputs []CompetenceInput, catalog []models.Competence) ([]models.UserCompetence, error) {
	byName := make(map[string]models.Competence, len(catalog))
	for _, competence := range catalog {
		byName[strings.ToLower(strings.TrimSpace(competence.Name))] = competence
	}

	rows := make([]models.UserCompetence, 0, len(inputs))
	seen := make(map[uint]struct{}, len(inputs))
	for index, input := range inputs {
		nameField := fmt.Sprintf("competencies[%d].name", index)
		name := strings.ToLower(strings.TrimSpace(input.Name))
		if name == "" {
			return nil, newValidationError(nameField, "competence name is required")
		}
		competence, ok := byName[name]
		if !ok {
			return nil, newValidationError(nameField, fmt.Sprintf("unknown competence %q", strings.TrimSpace(input.Name)))
		}
		if _, duplicate := seen[competence.ID]; duplicate {
			return nil, newValidationError(nameField, fmt.Sprintf("competence %q is listed more than once", competence.Name))
		}
		seen[competence.ID] = struct{}{}

		years := input.YearsOfExperience
		if math.IsNaN(years) || math.IsInf(years, 0) || years < 0 {
			return nil, newValidationError(fmt.Sprintf("competencies[%d].years_of_experience", index), "years of experience must be a non-negative number")
		}

		rows = append(rows, models.UserCompetence{
			PersonID:          personID,
			CompetenceID:      competence.ID,
			YearsOfExperience: years,
			Competence:        competence,
		})
	}
	return rows, nil
}

// AddAvailability stores one more interval unless it overlaps a stored one,
// and returns the person's updated availability.
func (service *ApplicationService) AddAvailability(ctx context.Context, personID uint, input AvailabilityInput) ([]models.Availability, error) {
	entry, err := BuildAvailability(personID, "from_date", input.FromDate, "to_date", input.ToDate)
	if err != nil {
		return nil, err
	}

	err = service.applications.AddAvailability(ctx, &entry, func(existing []models.Availability) error {
		if _, overlaps := FindOverlap(entry, existing); overlaps {
			return ErrOverlap
		}
		return nil
	})
	if errors.Is(err, ErrOverlap) {
		return nil, ErrOverlap
	}
	if err != nil {
		return nil, fmt.Errorf("add availability: %w", err)
	}

	return service.UserAvailability(ctx, personID)
}

func (service *ApplicationService) DeleteCompetencies(ctx context.Context, personID uint) error {
	if err := service.applications.DeleteUserCompetencies(ctx, personID); err != nil {
		return fmt.Errorf("delete competencies: %w", err)
	}
	return nil
}

func (service *ApplicationService) DeleteAvailability(ctx context.Context, personID uint) error {
	if err := service.applications.DeleteAvailability(ctx, personID); err != nil {
		return fmt.Errorf("delete availability: %w", err)
	}
	return nil
}

func (service *ApplicationService) ListApplicantProfiles(ctx context.Context) ([]models.Person, error) {
	profiles, err := service.applications.ListApplicantProfiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("list applicant profiles: %w", err)
	}
	return profiles, nil
}

// UpdateStatus moves an application to another status. Any status may follow
// any other; repeating the current one is reported as ErrStatusUnchanged.
func (service *ApplicationService) UpdateStatus(ctx context.Context, personID uint, status string) (models.Application, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if !models.IsValidStatus(status) {
		return models.Application{}, newValidationError("status", "status must be one of unhandled, accepted, rejected")
	}

	application, found, err := service.applications.FindApplication(ctx, personID)
	if err != nil {
		return models.Application{}, fmt.Errorf("find application: %w", err)
	}
	if !found {
		return models.Application{}, ErrNotFound
	}
	if application.Status == status {
		return models.Application{}, ErrStatusUnchanged
	}

	updatedAt := service.now().UTC()
	if err := service.applications.UpdateStatus(ctx, personID, status, updatedAt); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Application{}, ErrNotFound
		}
		return models.Application{}, fmt.Errorf("update application status: %w", err)
	}

	application.Status = status
	application.UpdatedAt = updatedAt
	return application, nil
}
