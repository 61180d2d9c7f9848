package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/terraincognita07/cvagent/internal/db"
	"github.com/terraincognita07/cvagent/internal/security"
	"github.com/terraincognita07/cvagent/internal/services"
)

const temporaryPasswordLength = 12

func RunResetPasswordCommand(options db.OpenOptions, username string) error {
	authService, closeDatabase, err := openAuthService(options)
	if err != nil {
		return err
	}
	defer closeDatabase()

	return resetPassword(context.Background(), authService, username, os.Stdout)
}

func resetPassword(ctx context.Context, authService *services.AuthService, username string, out io.Writer) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return errors.New("username is required")
	}

	temporaryPassword, err := security.TemporaryPassword(temporaryPasswordLength)
	if err != nil {
		return fmt.Errorf("generate temporary password: %w", err)
	}

	if err := authService.ResetPassword(ctx, username, temporaryPassword); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return fmt.Errorf("user %s not found", username)
		}
		return fmt.Errorf("reset password: %w", err)
	}

	fmt.Fprintln(out, "Password reset successful")
	fmt.Fprintf(out, "Temporary password: %s\n", temporaryPassword)
	return nil
}

func openAuthService(options db.OpenOptions) (*services.AuthService, func(), error) {
	database, err := db.Open(options)
	if err != nil {
		return nil, nil, fmt.Errorf("database init failed: %w", err)
	}
	closeDatabase := func() {
		if sqlDB, err := database.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return services.NewAuthService(db.NewPersonRepository(database)), closeDatabase, nil
}
