package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/terraincognita07/cvagent/internal/db"
	"github.com/terraincognita07/cvagent/internal/models"
	"github.com/terraincognita07/cvagent/internal/services"
)

// RecruiterDetails are the profile fields of a new recruiter account. The
// password is prompted for separately.
type RecruiterDetails struct {
	Name           string
	Surname        string
	PersonalNumber string
	Email          string
	Username       string
}

func RunCreateRecruiterCommand(options db.OpenOptions, details RecruiterDetails) error {
	authService, closeDatabase, err := openAuthService(options)
	if err != nil {
		return err
	}
	defer closeDatabase()

	return createRecruiter(context.Background(), authService, details, TerminalPasswordReader(os.Stdin, os.Stderr), os.Stdout)
}

func createRecruiter(
	ctx context.Context,
	authService *services.AuthService,
	details RecruiterDetails,
	readPassword PasswordReader,
	out io.Writer,
) error {
	password, err := readPassword("Password: ")
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}
	confirmPassword, err := readPassword("Confirm password: ")
	if err != nil {
		return fmt.Errorf("read password confirmation: %w", err)
	}

	person, err := authService.CreateRecruiter(ctx, services.RegistrationInput{
		Name:            details.Name,
		Surname:         details.Surname,
		PersonalNumber:  details.PersonalNumber,
		Email:           details.Email,
		Username:        details.Username,
		Password:        password,
		ConfirmPassword: confirmPassword,
	})
	if err != nil {
		return fmt.Errorf("create recruiter: %w", err)
	}

	fmt.Fprintf(out, "Recruiter %s created (id %d)\n", models.StringValue(person.Username), person.ID)
	return nil
}
