package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/terraincognita07/cvagent/internal/models"
	"github.com/terraincognita07/cvagent/internal/security"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	DefaultPasscodeTTL         = 15 * time.Minute
	DefaultMaxPasscodeAttempts = 5
	passcodeLength             = 6
)

// PasscodeStore keeps one migration challenge per email address.
//
// ReserveAttempt atomically increments the challenge's attempt counter when
// it is below maxAttempts and returns the new count. It reports false when
// the counter is exhausted or the challenge is gone. UpdateState is a no-op
// for a missing challenge.
type PasscodeStore interface {
	Save(ctx context.Context, challenge models.PasscodeChallenge) error
	Find(ctx context.Context, email string) (models.PasscodeChallenge, bool, error)
	ReserveAttempt(ctx context.Context, email string, maxAttempts int) (int, bool, error)
	UpdateState(ctx context.Context, email string, state string, resetAttempts bool, updatedAt time.Time) error
	Delete(ctx context.Context, email string) error
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

type MigrationPersonRepository interface {
	FindByID(ctx context.Context, personID uint) (models.Person, bool, error)
	FindByUsername(ctx context.Context, username string) (models.Person, bool, error)
	FindPendingLegacyByEmail(ctx context.Context, email string) (models.Person, bool, error)
	UpdateCredentials(ctx context.Context, personID uint, username string, passwordHash string) error
}

type MigrationInput struct {
	Email           string
	Passcode        string
	Username        string
	Password        string
	ConfirmPassword string
}

// MigrationService lets the owner of an imported record claim it: request a
// passcode by email, confirm it, then choose a username and password.
type MigrationService struct {
	persons          MigrationPersonRepository
	passcodes        PasscodeStore
	notifier         PasscodeNotifier
	ttl              time.Duration
	maxAttempts      int
	now              func() time.Time
	generatePasscode func() (string, error)
}

func NewMigrationService(persons MigrationPersonRepository, passcodes PasscodeStore, notifier PasscodeNotifier, ttl time.Duration) *MigrationService {
	if ttl <= 0 {
		ttl = DefaultPasscodeTTL
	}
	return &MigrationService{
		persons:     persons,
		passcodes:   passcodes,
		notifier:    notifier,
		ttl:         ttl,
		maxAttempts: DefaultMaxPasscodeAttempts,
		now:         time.Now,
		generatePasscode: func() (string, error) {
			return security.NumericCode(passcodeLength)
		},
	}
}

func (service *MigrationService) RequestPasscode(ctx context.Context, email string) error {
	email = NormalizeEmail(email)
	if !IsValidEmail(email) {
		return newValidationError("email", "email address is not valid")
	}

	person, found, err := service.persons.FindPendingLegacyByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("find legacy person: %w", err)
	}
	if !found {
		return ErrNotFound
	}

	passcode, err := service.generatePasscode()
	if err != nil {
		return fmt.Errorf("generate passcode: %w", err)
	}
	passcodeHash, err := bcrypt.GenerateFromPassword([]byte(passcode), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash passcode: %w", err)
	}

	now := service.now().UTC()
	challenge := models.PasscodeChallenge{
		Email:        email,
		PersonID:     person.ID,
		PasscodeHash: string(passcodeHash),
		State:        models.PasscodeStateAwaitingPasscode,
		ExpiresAt:    now.Add(service.ttl),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := service.passcodes.Save(ctx, challenge); err != nil {
		return fmt.Errorf("save passcode challenge: %w", err)
	}

	if service.notifier != nil {
		if err := service.notifier.SendPasscode(ctx, PasscodeNotification{
			PersonID:  person.ID,
			Email:     email,
			Passcode:  passcode,
			ExpiresAt: challenge.ExpiresAt,
		}); err != nil {
			_ = service.passcodes.Delete(ctx, email)
			return fmt.Errorf("send passcode: %w", err)
		}
	}
	return nil
}

func (service *MigrationService) ConfirmPasscode(ctx context.Context, email string, passcode string) error {
	email = NormalizeEmail(email)
	passcode = strings.TrimSpace(passcode)
	if !IsValidEmail(email) {
		return newValidationError("email", "email address is not valid")
	}
	if passcode == "" {
		return newValidationError("passcode", "passcode is required")
	}

	challenge, err := service.loadChallenge(ctx, email)
	if err != nil {
		return err
	}
	if err := service.checkPasscode(ctx, challenge, passcode); err != nil {
		return err
	}

	if err := service.passcodes.UpdateState(ctx, email, models.PasscodeStateAwaitingProfile, true, service.now().UTC()); err != nil {
		return fmt.Errorf("update passcode challenge: %w", err)
	}
	return nil
}

// CompleteMigration sets the username and password of the legacy record
// behind a confirmed challenge and returns the claimed person.
func (service *MigrationService) CompleteMigration(ctx context.Context, input MigrationInput) (models.Person, error) {
	email := NormalizeEmail(input.Email)
	passcode := strings.TrimSpace(input.Passcode)
	username := NormalizeUsername(input.Username)

	if input.Password != input.ConfirmPassword {
		return models.Person{}, ErrPasswordMismatch
	}
	if !IsValidPassword(input.Password) {
		return models.Person{}, newValidationError("password", passwordPolicyMessage)
	}
	if !IsValidUsername(username) {
		return models.Person{}, newValidationError("username", "username must be 6 to 255 letters or digits")
	}
	if !IsValidEmail(email) {
		return models.Person{}, newValidationError("email", "email address is not valid")
	}
	if passcode == "" {
		return models.Person{}, newValidationError("passcode", "passcode is required")
	}

	challenge, err := service.loadChallenge(ctx, email)
	if err != nil {
		return models.Person{}, err
	}
	if challenge.State != models.PasscodeStateAwaitingProfile {
		return models.Person{}, ErrPasscodeNotConfirmed
	}
	if err := service.checkPasscode(ctx, challenge, passcode); err != nil {
		return models.Person{}, err
	}

	if holder, taken, err := service.persons.FindByUsername(ctx, username); err != nil {
		return models.Person{}, fmt.Errorf("find person by username: %w", err)
	} else if taken && holder.ID != challenge.PersonID {
		return models.Person{}, &ConflictError{Field: "username"}
	}

	passwordHash, err := HashPassword(input.Password)
	if err != nil {
		return models.Person{}, err
	}
	if err := service.persons.UpdateCredentials(ctx, challenge.PersonID, username, passwordHash); err != nil {
		switch {
		case errors.Is(err, gorm.ErrDuplicatedKey):
			return models.Person{}, &ConflictError{Field: "username"}
		case errors.Is(err, gorm.ErrRecordNotFound):
			return models.Person{}, ErrNotFound
		default:
			return models.Person{}, fmt.Errorf("update credentials: %w", err)
		}
	}

	// The account is claimed at this point; an undeleted challenge expires on its own.
	_ = service.passcodes.Delete(ctx, email)

	person, found, err := service.persons.FindByID(ctx, challenge.PersonID)
	if err != nil {
		return models.Person{}, fmt.Errorf("find person: %w", err)
	}
	if !found {
		return models.Person{}, ErrNotFound
	}
	return person, nil
}

func (service *MigrationService) loadChallenge(ctx context.Context, email string) (models.PasscodeChallenge, error) {
	challenge, found, err := service.passcodes.Find(ctx, email)
	if err != nil {
		return models.PasscodeChallenge{}, fmt.Errorf("find passcode challenge: %w", err)
	}
	if !found {
		return models.PasscodeChallenge{}, ErrPasscodeNotFound
	}
	if challenge.Expired(service.now()) {
		_ = service.passcodes.Delete(ctx, email)
		return models.PasscodeChallenge{}, ErrPasscodeExpired
	}
	return challenge, nil
}

// checkPasscode spends one attempt and compares the passcode with the stored
// hash. The attempt is reserved before the comparison so concurrent guesses
// cannot exceed the limit. A match clears the counter; a mismatch sends the
// challenge back to awaiting_passcode, and the last allowed mismatch deletes it.
func (service *MigrationService) checkPasscode(ctx context.Context, challenge models.PasscodeChallenge, passcode string) error {
	attempts, reserved, err := service.passcodes.ReserveAttempt(ctx, challenge.Email, service.maxAttempts)
	if err != nil {
		return fmt.Errorf("reserve passcode attempt: %w", err)
	}
	if !reserved {
		return ErrPasscodeAttemptsExceeded
	}

	now := service.now().UTC()
	if bcrypt.CompareHashAndPassword([]byte(challenge.PasscodeHash), []byte(passcode)) == nil {
		if err := service.passcodes.UpdateState(ctx, challenge.Email, challenge.State, true, now); err != nil {
			return fmt.Errorf("update passcode challenge: %w", err)
		}
		return nil
	}

	if attempts >= service.maxAttempts {
		if err := service.passcodes.Delete(ctx, challenge.Email); err != nil {
			return fmt.Errorf("delete passcode challenge: %w", err)
		}
		return ErrPasscodeAttemptsExceeded
	}
	if err := service.passcodes.UpdateState(ctx, challenge.Email, models.PasscodeStateAwaitingPasscode, false, now); err != nil {
		return fmt.Errorf("update passcode challenge: %w", err)
	}
	return ErrInvalidPasscode
}
