package db

import (
	"context"
	"time"

	"github.com/terraincognita07/cvagent/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PasscodeRepository struct {
	database *gorm.DB
}

func NewPasscodeRepository(database *gorm.DB) *PasscodeRepository {
	return &PasscodeRepository{database: database}
}

func (repo *PasscodeRepository) Save(ctx context.Context, challenge models.PasscodeChallenge) error {
	return repo.database.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&challenge).Error
}

func (repo *PasscodeRepository) Find(ctx context.Context, email string) (models.PasscodeChallenge, bool, error) {
	challenge := models.PasscodeChallenge{}
	result := repo.database.WithContext(ctx).Where("email = ?", email).Limit(1).Find(&challenge)
	if result.Error != nil {
		return models.PasscodeChallenge{}, false, result.Error
	}
	if result.RowsAffected == 0 {
		return models.PasscodeChallenge{}, false, nil
	}
	return challenge, true, nil
}

// ReserveAttempt bumps the attempt counter with a single conditional UPDATE,
// so concurrent callers never both take the last attempt.
func (repo *PasscodeRepository) ReserveAttempt(ctx context.Context, email string, maxAttempts int) (int, bool, error) {
	attempts := 0
	reserved := false
	err := repo.database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.PasscodeChallenge{}).
			Where("email = ? AND attempts < ?", email, maxAttempts).
			UpdateColumn("attempts", gorm.Expr("attempts + ?", 1))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}

		challenge := models.PasscodeChallenge{}
		if err := tx.Select("attempts").Where("email = ?", email).Take(&challenge).Error; err != nil {
			return err
		}
		attempts = challenge.Attempts
		reserved = true
		return nil
	})
	if err != nil {
		return 0, false, err
	}
	return attempts, reserved, nil
}

func (repo *PasscodeRepository) UpdateState(ctx context.Context, email string, state string, resetAttempts bool, updatedAt time.Time) error {
	changes := map[string]any{
		"state":      state,
		"updated_at": updatedAt,
	}
	if resetAttempts {
		changes["attempts"] = 0
	}
	return repo.database.WithContext(ctx).
		Model(&models.PasscodeChallenge{}).
		Where("email = ?", email).
		UpdateColumns(changes).Error
}

func (repo *PasscodeRepository) Delete(ctx context.Context, email string) error {
	return repo.database.WithContext(ctx).Where("email = ?", email).Delete(&models.PasscodeChallenge{}).Error
}

func (repo *PasscodeRepository) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	result := repo.database.WithContext(ctx).Where("expires_at <= ?", now).Delete(&models.PasscodeChallenge{})
	return result.RowsAffected, result.Error
}
