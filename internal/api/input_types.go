package api

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/cvagent/internal/services"
)

type loginInput struct {
	Username *string `json:"username"`
	Password *string `json:"password"`
}

func (input loginInput) validate() error {
	if err := requireField(input.Username != nil, "username"); err != nil {
		return err
	}
	return requireField(input.Password != nil, "password")
}

type registerInput struct {
	Name            *string `json:"name"`
	Surname         *string `json:"surname"`
	PersonalNumber  *string `json:"pnr"`
	Email           *string `json:"email"`
	Username        *string `json:"username"`
	Password        *string `json:"password"`
	ConfirmPassword *string `json:"confirmPassword"`
}

func (input registerInput) validate() error {
	required := []struct {
		present bool
		field   string
	}{
		{input.Name != nil, "name"},
		{input.Surname != nil, "surname"},
		{input.PersonalNumber != nil, "pnr"},
		{input.Email != nil, "email"},
		{input.Username != nil, "username"},
		{input.Password != nil, "password"},
		{input.ConfirmPassword != nil, "confirmPassword"},
	}
	for _, entry := range required {
		if err := requireField(entry.present, entry.field); err != nil {
			return err
		}
	}
	return nil
}

func (input registerInput) toService() services.RegistrationInput {
	return services.RegistrationInput{
		Name:            *input.Name,
		Surname:         *input.Surname,
		PersonalNumber:  *input.PersonalNumber,
		Email:           *input.Email,
		Username:        *input.Username,
		Password:        *input.Password,
		ConfirmPassword: *input.ConfirmPassword,
	}
}

type personInput struct {
	PersonID *uint `json:"person_id"`
}

func (input personInput) validate() error {
	return requirePersonID(input.PersonID)
}

type competenceEntryInput struct {
	Name              *string  `json:"name"`
	YearsOfExperience *float64 `json:"years_of_experience"`
}

type availabilityEntryInput struct {
	FromDate *string `json:"from_date"`
	ToDate   *string `json:"to_date"`
}

type createApplicationInput struct {
	PersonID       *uint                    `json:"person_id"`
	Competencies   []competenceEntryInput   `json:"competencies"`
	Availabilities []availabilityEntryInput `json:"availabilities"`
}

func (input createApplicationInput) validate() error {
	if err := requirePersonID(input.PersonID); err != nil {
		return err
	}
	if err := validateCompetenceEntries(input.Competencies); err != nil {
		return err
	}
	return validateAvailabilityEntries(input.Availabilities)
}

func (input createApplicationInput) toService() ([]services.CompetenceInput, []services.AvailabilityInput) {
	return competenceInputs(input.Competencies), availabilityInputs(input.Availabilities)
}

type updateCompetenciesInput struct {
	PersonID     *uint                  `json:"person_id"`
	Competencies []competenceEntryInput `json:"competencies"`
}

func (input updateCompetenciesInput) validate() error {
	if err := requirePersonID(input.PersonID); err != nil {
		return err
	}
	return validateCompetenceEntries(input.Competencies)
}

type updateAvailabilityInput struct {
	PersonID       *uint                    `json:"person_id"`
	Availabilities []availabilityEntryInput `json:"availabilities"`
}

func (input updateAvailabilityInput) validate() error {
	if err := requirePersonID(input.PersonID); err != nil {
		return err
	}
	return validateAvailabilityEntries(input.Availabilities)
}

func validateCompetenceEntries(entries []competenceEntryInput) error {
	for index, entry := range entries {
		if err := requireField(entry.Name != nil, indexedField("competencies", index, "name")); err != nil {
			return err
		}
		if err := requireField(entry.YearsOfExperience != nil, indexedField("competencies", index, "years_of_experience")); err != nil {
			return err
		}
	}
	return nil
}

func validateAvailabilityEntries(entries []availabilityEntryInput) error {
	for index, entry := range entries {
		if err := requireField(entry.FromDate != nil, indexedField("availabilities", index, "from_date")); err != nil {
			return err
		}
		if err := requireField(entry.ToDate != nil, indexedField("availabilities", index, "to_date")); err != nil {
			return err
		}
	}
	return nil
}

func competenceInputs(entries []competenceEntryInput) []services.CompetenceInput {
	competencies := make([]services.CompetenceInput, 0, len(entries))
	for _, entry := range entries {
		competencies = append(competencies, services.CompetenceInput{
			Name:              *entry.Name,
			YearsOfExperience: *entry.YearsOfExperience,
		})
	}
	return competencies
}

func availabilityInputs(entries []availabilityEntryInput) []services.AvailabilityInput {
	availabilities := make([]services.AvailabilityInput, 0, len(entries))
	for _, entry := range entries {
		availabilities = append(availabilities, services.AvailabilityInput{
			FromDate: *entry.FromDate,
			ToDate:   *entry.ToDate,
		})
	}
	return availabilities
}

type addAvailabilityInput struct {
	PersonID *uint   `json:"person_id"`
	FromDate *string `json:"from_date"`
	ToDate   *string `json:"to_date"`
}

func (input addAvailabilityInput) validate() error {
	if err := requirePersonID(input.PersonID); err != nil {
		return err
	}
	if err := requireField(input.FromDate != nil, "from_date"); err != nil {
		return err
	}
	return requireField(input.ToDate != nil, "to_date")
}

type updateStatusInput struct {
	PersonID *uint   `json:"person_id"`
	Status   *string `json:"status"`
}

func (input updateStatusInput) validate() error {
	if err := requirePersonID(input.PersonID); err != nil {
		return err
	}
	return requireField(input.Status != nil, "status")
}

type requestPasscodeInput struct {
	Email *string `json:"email"`
}

func (input requestPasscodeInput) validate() error {
	return requireField(input.Email != nil, "email")
}

type confirmPasscodeInput struct {
	Email    *string `json:"email"`
	Passcode *string `json:"passcode"`
}

func (input confirmPasscodeInput) validate() error {
	if err := requireField(input.Email != nil, "email"); err != nil {
		return err
	}
	return requireField(input.Passcode != nil, "passcode")
}

type migratingApplicantInput struct {
	Email           *string `json:"email"`
	Passcode        *string `json:"passcode"`
	Username        *string `json:"username"`
	Password        *string `json:"password"`
	ConfirmPassword *string `json:"confirmPassword"`
}

func (input migratingApplicantInput) validate() error {
	required := []struct {
		present bool
		field   string
	}{
		{input.Email != nil, "email"},
		{input.Passcode != nil, "passcode"},
		{input.Username != nil, "username"},
		{input.Password != nil, "password"},
		{input.ConfirmPassword != nil, "confirmPassword"},
	}
	for _, entry := range required {
		if err := requireField(entry.present, entry.field); err != nil {
			return err
		}
	}
	return nil
}

func (input migratingApplicantInput) toService() services.MigrationInput {
	return services.MigrationInput{
		Email:           *input.Email,
		Passcode:        *input.Passcode,
		Username:        *input.Username,
		Password:        *input.Password,
		ConfirmPassword: *input.ConfirmPassword,
	}
}

type updateRecruiterInput struct {
	PersonID       *uint   `json:"person_id"`
	Email          *string `json:"email"`
	PersonalNumber *string `json:"pnr"`
}

func (input updateRecruiterInput) validate() error {
	if err := requirePersonID(input.PersonID); err != nil {
		return err
	}
	if err := requireField(input.Email != nil, "email"); err != nil {
		return err
	}
	return requireField(input.PersonalNumber != nil, "pnr")
}

type validatable interface {
	validate() error
}

// parseInput decodes the body strictly and checks required fields.
func parseInput[T validatable](c *fiber.Ctx) (T, error) {
	var input T
	if err := decodeJSONBody(c, &input); err != nil {
		return input, err
	}
	if err := input.validate(); err != nil {
		return input, err
	}
	return input, nil
}

func indexedField(collection string, index int, field string) string {
	return fmt.Sprintf("%s[%d].%s", collection, index, field)
}
