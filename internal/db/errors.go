package db

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// translateWriteError maps driver uniqueness failures to gorm.ErrDuplicatedKey.
// GORM's own translation misses expression indexes on SQLite.
func translateWriteError(err error) error {
	if err == nil || errors.Is(err, gorm.ErrDuplicatedKey) {
		return err
	}

	message := strings.ToLower(err.Error())
	if strings.Contains(message, "unique constraint failed") ||
		strings.Contains(message, "duplicate key value") ||
		strings.Contains(message, "sqlstate 23505") {
		return fmt.Errorf("%w: %v", gorm.ErrDuplicatedKey, err)
	}
	return err
}
