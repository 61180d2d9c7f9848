package db

import (
	"context"
	"time"

	"github.com/terraincognita07/cvagent/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ApplicationRepository struct {
	database *gorm.DB
}

func NewApplicationRepository(database *gorm.DB) *ApplicationRepository {
	return &ApplicationRepository{database: database}
}

func (repo *ApplicationRepository) ListCompetencies(ctx context.Context) ([]models.Competence, error) {
	competencies := make([]models.Competence, 0)
	if err := repo.database.WithContext(ctx).Order("id ASC").Find(&competencies).Error; err != nil {
		return nil, err
	}
	return competencies, nil
}

func (repo *ApplicationRepository) ListUserCompetencies(ctx context.Context, personID uint) ([]models.UserCompetence, error) {
	entries := make([]models.UserCompetence, 0)
	if err := repo.database.WithContext(ctx).
		Preload("Competence").
		Where("person_id = ?", personID).
		Order("competence_id ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (repo *ApplicationRepository) ListAvailability(ctx context.Context, personID uint) ([]models.Availability, error) {
	return listAvailability(repo.database.WithContext(ctx), personID)
}

func listAvailability(database *gorm.DB, personID uint) ([]models.Availability, error) {
	entries := make([]models.Availability, 0)
	if err := database.
		Where("person_id = ?", personID).
		Order("from_date ASC, id ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// ReplaceApplication swaps the person's competencies and availabilities for
// the given sets and resets the review status, all in one transaction.
func (repo *ApplicationRepository) ReplaceApplication(
	ctx context.Context,
	personID uint,
	competencies []models.UserCompetence,
	availabilities []models.Availability,
	submittedAt time.Time,
) (models.Application, error) {
	application := models.Application{
		PersonID:    personID,
		Status:      models.StatusUnhandled,
		SubmittedAt: submittedAt,
		UpdatedAt:   submittedAt,
	}

	err := repo.database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockPerson(tx, personID); err != nil {
			return err
		}
		if err := replaceUserCompetencies(tx, personID, competencies); err != nil {
			return err
		}
		if err := replaceUserAvailability(tx, personID, availabilities); err != nil {
			return err
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "person_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"status", "submitted_at", "updated_at"}),
		}).Create(&application).Error
	})
	if err != nil {
		return models.Application{}, translateWriteError(err)
	}
	return application, nil
}

func (repo *ApplicationRepository) ReplaceUserCompetencies(ctx context.Context, personID uint, competencies []models.UserCompetence) error {
	return translateWriteError(repo.database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockPerson(tx, personID); err != nil {
			return err
		}
		return replaceUserCompetencies(tx, personID, competencies)
	}))
}

func (repo *ApplicationRepository) ReplaceUserAvailability(ctx context.Context, personID uint, availabilities []models.Availability) error {
	return translateWriteError(repo.database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockPerson(tx, personID); err != nil {
			return err
		}
		return replaceUserAvailability(tx, personID, availabilities)
	}))
}

// lockPerson takes a row lock on the person so writers of the same person's
// sets queue behind each other. SQLite has a single writer and no row locks,
// so there it only checks the person exists.
func lockPerson(tx *gorm.DB, personID uint) error {
	query := tx.Model(&models.Person{}).Select("id").Where("id = ?", personID)
	if tx.Dialector.Name() != DriverSQLite {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	person := models.Person{}
	return query.Take(&person).Error
}

func replaceUserCompetencies(tx *gorm.DB, personID uint, competencies []models.UserCompetence) error {
	if err := tx.Where("person_id = ?", personID).Delete(&models.UserCompetence{}).Error; err != nil {
		return err
	}
	if len(competencies) == 0 {
		return nil
	}

	rows := make([]models.UserCompetence, 0, len(competencies))
	for _, entry := range competencies {
		rows = append(rows, models.UserCompetence{
			PersonID:          personID,
			CompetenceID:      entry.CompetenceID,
			YearsOfExperience: entry.YearsOfExperience,
		})
	}
	return tx.Omit("Competence").Create(&rows).Error
}

func replaceUserAvailability(tx *gorm.DB, personID uint, availabilities []models.Availability) error {
	if err := tx.Where("person_id = ?", personID).Delete(&models.Availability{}).Error; err != nil {
		return err
	}
	if len(availabilities) == 0 {
		return nil
	}

	rows := make([]models.Availability, 0, len(availabilities))
	for _, entry := range availabilities {
		rows = append(rows, models.Availability{
			PersonID: personID,
			FromDate: entry.FromDate,
			ToDate:   entry.ToDate,
		})
	}
	return tx.Create(&rows).Error
}

// AddAvailability inserts one interval. The guard sees the person's stored
// intervals inside the same transaction and can veto the insert.
func (repo *ApplicationRepository) AddAvailability(
	ctx context.Context,
	entry *models.Availability,
	guard func(existing []models.Availability) error,
) error {
	return repo.database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockPerson(tx, entry.PersonID); err != nil {
			return err
		}
		existing, err := listAvailability(tx, entry.PersonID)
		if err != nil {
			return err
		}
		if guard != nil {
			if err := guard(existing); err != nil {
				return err
			}
		}
		return tx.Create(entry).Error
	})
}

func (repo *ApplicationRepository) DeleteUserCompetencies(ctx context.Context, personID uint) error {
	return repo.database.WithContext(ctx).Where("person_id = ?", personID).Delete(&models.UserCompetence{}).Error
}

func (repo *ApplicationRepository) DeleteAvailability(ctx context.Context, personID uint) error {
	return repo.database.WithContext(ctx).Where("person_id = ?", personID).Delete(&models.Availability{}).Error
}

func (repo *ApplicationRepository) FindApplication(ctx context.Context, personID uint) (models.Application, bool, error) {
	application := models.Application{}
	result := repo.database.WithContext(ctx).Where("person_id = ?", personID).Limit(1).Find(&application)
	if result.Error != nil {
		return models.Application{}, false, result.Error
	}
	if result.RowsAffected == 0 {
		return models.Application{}, false, nil
	}
	return application, true, nil
}

func (repo *ApplicationRepository) UpdateStatus(ctx context.Context, personID uint, status string, updatedAt time.Time) error {
	result := repo.database.WithContext(ctx).
		Model(&models.Application{}).
		Where("person_id = ?", personID).
		Updates(map[string]any{
			"status":     status,
			"updated_at": updatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListApplicantProfiles returns every applicant with a submitted application
// together with their competencies and availability.
func (repo *ApplicationRepository) ListApplicantProfiles(ctx context.Context) ([]models.Person, error) {
	persons := make([]models.Person, 0)
	if err := repo.database.WithContext(ctx).
		Joins("JOIN applications ON applications.person_id = persons.id").
		Where("persons.role = ?", models.RoleApplicant).
		Preload("Competencies", func(query *gorm.DB) *gorm.DB {
			return query.Order("competence_id ASC")
		}).
		Preload("Competencies.Competence").
		Preload("Availabilities", func(query *gorm.DB) *gorm.DB {
			return query.Order("from_date ASC, id ASC")
		}).
		Preload("Application").
		Order("applications.submitted_at ASC, persons.id ASC").
		Find(&persons).Error; err != nil {
		return nil, err
	}
	return persons, nil
}
