package db

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/terraincognita07/cvagent/internal/models"
	"gorm.io/gorm"
)

func openTestDatabase(t *testing.T) *gorm.DB {
	t.Helper()

	database, err := OpenSQLite(filepath.Join(t.TempDir(), "cvagent-test.db"), nil)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("open sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return database
}

func createTestApplicant(t *testing.T, database *gorm.DB, username string, email string) models.Person {
	t.Helper()

	person := models.Person{
		Name:         "Ada",
		Surname:      "Lovelace",
		Email:        models.StringPointer(email),
		Username:     models.StringPointer(username),
		PasswordHash: "hash",
		Role:         models.RoleApplicant,
	}
	if err := database.Create(&person).Error; err != nil {
		t.Fatalf("create applicant %q: %v", username, err)
	}
	return person
}

func competenceIDByName(t *testing.T, database *gorm.DB, name string) uint {
	t.Helper()

	competence := models.Competence{}
	if err := database.Where("name = ?", name).First(&competence).Error; err != nil {
		t.Fatalf("load competence %q: %v", name, err)
	}
	return competence.ID
}

func availabilityRange(t *testing.T, personID uint, from string, to string) models.Availability {
	t.Helper()

	fromDate, err := time.Parse(models.DateLayout, from)
	if err != nil {
		t.Fatalf("parse from date %q: %v", from, err)
	}
	toDate, err := time.Parse(models.DateLayout, to)
	if err != nil {
		t.Fatalf("parse to date %q: %v", to, err)
	}
	return models.Availability{PersonID: personID, FromDate: fromDate, ToDate: toDate}
}
