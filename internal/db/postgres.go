package db

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/terraincognita07/cvagent/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// postgresConstraints holds what AutoMigrate cannot express from struct tags.
var postgresConstraints = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_persons_email_normalized ON persons (lower(trim(email)))`,
}

// OpenPostgres connects to a Postgres database and reconciles the schema
// with AutoMigrate. The embedded SQL migrations target SQLite only, so the
// expression index on email is created by hand.
func OpenPostgres(dsn string, logger *slog.Logger) (*gorm.DB, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("postgres dsn is required")
	}

	database, err := gorm.Open(postgres.Open(dsn), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if err := database.AutoMigrate(
		&models.Person{},
		&models.Competence{},
		&models.UserCompetence{},
		&models.Availability{},
		&models.Application{},
		&models.PasscodeChallenge{},
	); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	for _, statement := range postgresConstraints {
		if err := database.Exec(statement).Error; err != nil {
			return nil, fmt.Errorf("apply postgres constraint: %w", err)
		}
	}
	loggerOrDiscard(logger).Info("postgres schema reconciled", "constraints", len(postgresConstraints))
	if err := SeedCompetenceCatalog(database); err != nil {
		return nil, fmt.Errorf("seed competence catalog: %w", err)
	}

	return database, nil
}
