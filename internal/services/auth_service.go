package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/terraincognita07/cvagent/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthPersonRepository interface {
	FindByID(ctx context.Context, personID uint) (models.Person, bool, error)
	FindByUsername(ctx context.Context, username string) (models.Person, bool, error)
	FindByNormalizedEmail(ctx context.Context, email string) (models.Person, bool, error)
	Create(ctx context.Context, person *models.Person) error
	UpdatePassword(ctx context.Context, personID uint, passwordHash string) error
	UpdateContact(ctx context.Context, personID uint, email string, personalNumber string) error
}

type RegistrationInput struct {
	Name            string
	Surname         string
	PersonalNumber  string
	Email           string
	Username        string
	Password        string
	ConfirmPassword string
}

type AuthService struct {
	persons AuthPersonRepository
}

func NewAuthService(persons AuthPersonRepository) *AuthService {
	return &AuthService{persons: persons}
}

var (
	dummyPasswordHashOnce sync.Once
	dummyPasswordHash     []byte
)

// compareDummyPassword spends the same bcrypt work as a real comparison so
// unknown usernames cannot be told apart by response time.
func compareDummyPassword(password string) {
	dummyPasswordHashOnce.Do(func() {
		dummyPasswordHash, _ = bcrypt.GenerateFromPassword([]byte("cvagent-unknown-user"), bcrypt.DefaultCost)
	})
	_ = bcrypt.CompareHashAndPassword(dummyPasswordHash, []byte(password))
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func (service *AuthService) Login(ctx context.Context, username string, password string) (models.Person, error) {
	username = NormalizeUsername(username)
	if username == "" || password == "" {
		return models.Person{}, ErrInvalidCredentials
	}

	person, found, err := service.persons.FindByUsername(ctx, username)
	if err != nil {
		return models.Person{}, fmt.Errorf("find person by username: %w", err)
	}
	if !found || !person.HasCredentials() {
		compareDummyPassword(password)
		return models.Person{}, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(person.PasswordHash), []byte(password)) != nil {
		return models.Person{}, ErrInvalidCredentials
	}
	return person, nil
}

func (service *AuthService) FindByID(ctx context.Context, personID uint) (models.Person, error) {
	person, found, err := service.persons.FindByID(ctx, personID)
	if err != nil {
		return models.Person{}, fmt.Errorf("find person: %w", err)
	}
	if !found {
		return models.Person{}, ErrNotFound
	}
	return person, nil
}

// Register creates an applicant account with login credentials.
func (service *AuthService) Register(ctx context.Context, input RegistrationInput) (models.Person, error) {
	return service.createPerson(ctx, input, models.RoleApplicant)
}

func (service *AuthService) CreateRecruiter(ctx context.Context, input RegistrationInput) (models.Person, error) {
	return service.createPerson(ctx, input, models.RoleRecruiter)
}

func (service *AuthService) createPerson(ctx context.Context, input RegistrationInput, role string) (models.Person, error) {
	normalized, err := validateRegistration(input)
	if err != nil {
		return models.Person{}, err
	}

	if _, taken, err := service.persons.FindByUsername(ctx, normalized.Username); err != nil {
		return models.Person{}, fmt.Errorf("find person by username: %w", err)
	} else if taken {
		return models.Person{}, &ConflictError{Field: "username"}
	}
	if _, taken, err := service.persons.FindByNormalizedEmail(ctx, normalized.Email); err != nil {
		return models.Person{}, fmt.Errorf("find person by email: %w", err)
	} else if taken {
		return models.Person{}, &ConflictError{Field: "email"}
	}

	passwordHash, err := HashPassword(normalized.Password)
	if err != nil {
		return models.Person{}, err
	}

	person := models.Person{
		Name:           normalized.Name,
		Surname:        normalized.Surname,
		PersonalNumber: models.StringPointer(normalized.PersonalNumber),
		Email:          models.StringPointer(normalized.Email),
		Username:       models.StringPointer(normalized.Username),
		PasswordHash:   passwordHash,
		Role:           role,
	}
	if err := service.persons.Create(ctx, &person); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.Person{}, ErrUniqueViolation
		}
		return models.Person{}, fmt.Errorf("create person: %w", err)
	}
	return person, nil
}

func validateRegistration(input RegistrationInput) (RegistrationInput, error) {
	normalized := RegistrationInput{
		Name:            strings.TrimSpace(input.Name),
		Surname:         strings.TrimSpace(input.Surname),
		PersonalNumber:  strings.TrimSpace(input.PersonalNumber),
		Email:           NormalizeEmail(input.Email),
		Username:        NormalizeUsername(input.Username),
		Password:        input.Password,
		ConfirmPassword: input.ConfirmPassword,
	}

	switch {
	case !IsValidName(normalized.Name):
		return RegistrationInput{}, newValidationError("name", "name must be 2 to 255 letters")
	case !IsValidName(normalized.Surname):
		return RegistrationInput{}, newValidationError("surname", "surname must be 2 to 255 letters")
	case !IsValidPersonalNumber(normalized.PersonalNumber):
		return RegistrationInput{}, newValidationError("pnr", "personal number must be exactly 12 digits")
	case !IsValidEmail(normalized.Email):
		return RegistrationInput{}, newValidationError("email", "email address is not valid")
	case !IsValidUsername(normalized.Username):
		return RegistrationInput{}, newValidationError("username", "username must be 6 to 255 letters or digits")
	case normalized.Password != normalized.ConfirmPassword:
		return RegistrationInput{}, ErrPasswordMismatch
	case !IsValidPassword(normalized.Password):
		return RegistrationInput{}, newValidationError("password", passwordPolicyMessage)
	}
	return normalized, nil
}

const passwordPolicyMessage = "password must be 6 to 255 characters with an uppercase letter, a digit and one of ! @ $ % ^ & * + #"

// UpdateRecruiterContact fills in the email and personal number of a
// recruiter account.
func (service *AuthService) UpdateRecruiterContact(ctx context.Context, personID uint, email string, personalNumber string) (models.Person, error) {
	email = NormalizeEmail(email)
	personalNumber = strings.TrimSpace(personalNumber)
	if !IsValidEmail(email) {
		return models.Person{}, newValidationError("email", "email address is not valid")
	}
	if !IsValidPersonalNumber(personalNumber) {
		return models.Person{}, newValidationError("pnr", "personal number must be exactly 12 digits")
	}

	person, err := service.FindByID(ctx, personID)
	if err != nil {
		return models.Person{}, err
	}
	if !person.IsRecruiter() {
		return models.Person{}, ErrForbidden
	}

	if err := service.persons.UpdateContact(ctx, personID, email, personalNumber); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.Person{}, ErrUniqueViolation
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Person{}, ErrNotFound
		}
		return models.Person{}, fmt.Errorf("update recruiter contact: %w", err)
	}

	person.Email = models.StringPointer(email)
	person.PersonalNumber = models.StringPointer(personalNumber)
	return person, nil
}

// ResetPassword replaces the password of the account with the given username.
func (service *AuthService) ResetPassword(ctx context.Context, username string, password string) error {
	if !IsValidPassword(password) {
		return newValidationError("password", passwordPolicyMessage)
	}

	person, found, err := service.persons.FindByUsername(ctx, NormalizeUsername(username))
	if err != nil {
		return fmt.Errorf("find person by username: %w", err)
	}
	if !found {
		return ErrNotFound
	}

	passwordHash, err := HashPassword(password)
	if err != nil {
		return err
	}
	if err := service.persons.UpdatePassword(ctx, person.ID, passwordHash); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}
