package db

import (
	"context"

	"github.com/terraincognita07/cvagent/internal/models"
	"gorm.io/gorm"
)

type PersonRepository struct {
	database *gorm.DB
}

func NewPersonRepository(database *gorm.DB) *PersonRepository {
	return &PersonRepository{database: database}
}

func (repo *PersonRepository) FindByID(ctx context.Context, personID uint) (models.Person, bool, error) {
	return repo.findOne(ctx, "id = ?", personID)
}

func (repo *PersonRepository) FindByUsername(ctx context.Context, username string) (models.Person, bool, error) {
	return repo.findOne(ctx, "username = ?", username)
}

func (repo *PersonRepository) FindByNormalizedEmail(ctx context.Context, email string) (models.Person, bool, error) {
	return repo.findOne(ctx, "lower(trim(email)) = ?", email)
}

// FindPendingLegacyByEmail returns an imported applicant record that has not
// been claimed yet.
func (repo *PersonRepository) FindPendingLegacyByEmail(ctx context.Context, email string) (models.Person, bool, error) {
	return repo.findOne(ctx,
		"lower(trim(email)) = ? AND role = ? AND (username IS NULL OR username = '' OR password_hash = '')",
		email,
		models.RoleApplicant,
	)
}

func (repo *PersonRepository) findOne(ctx context.Context, query string, args ...any) (models.Person, bool, error) {
	person := models.Person{}
	result := repo.database.WithContext(ctx).Where(query, args...).Order("id ASC").Limit(1).Find(&person)
	if result.Error != nil {
		return models.Person{}, false, result.Error
	}
	if result.RowsAffected == 0 {
		return models.Person{}, false, nil
	}
	return person, true, nil
}

func (repo *PersonRepository) Create(ctx context.Context, person *models.Person) error {
	return translateWriteError(repo.database.WithContext(ctx).Create(person).Error)
}

// UpdateCredentials sets the username and password hash of a person that has
// none yet. It reports gorm.ErrRecordNotFound when the record was claimed
// concurrently.
func (repo *PersonRepository) UpdateCredentials(ctx context.Context, personID uint, username string, passwordHash string) error {
	result := repo.database.WithContext(ctx).
		Model(&models.Person{}).
		Where("id = ? AND (username IS NULL OR username = '' OR password_hash = '')", personID).
		Updates(map[string]any{
			"username":      username,
			"password_hash": passwordHash,
		})
	if result.Error != nil {
		return translateWriteError(result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (repo *PersonRepository) UpdatePassword(ctx context.Context, personID uint, passwordHash string) error {
	result := repo.database.WithContext(ctx).
		Model(&models.Person{}).
		Where("id = ?", personID).
		Update("password_hash", passwordHash)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (repo *PersonRepository) UpdateContact(ctx context.Context, personID uint, email string, personalNumber string) error {
	result := repo.database.WithContext(ctx).
		Model(&models.Person{}).
		Where("id = ?", personID).
		Updates(map[string]any{
			"email":           email,
			"personal_number": personalNumber,
		})
	if result.Error != nil {
		return translateWriteError(result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
