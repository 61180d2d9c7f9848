package db

import (
	"github.com/terraincognita07/cvagent/internal/models"
	"gorm.io/gorm"
)

// SeedCompetenceCatalog inserts the built-in competences that are missing.
// Running it again is a no-op.
func SeedCompetenceCatalog(database *gorm.DB) error {
	return database.Transaction(func(tx *gorm.DB) error {
		for _, name := range models.DefaultCompetenceCatalog {
			competence := models.Competence{}
			if err := tx.Where(models.Competence{Name: name}).FirstOrCreate(&competence).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
