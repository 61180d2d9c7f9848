package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/terraincognita07/cvagent/internal/models"
)

// HasOverlap reports whether two closed date intervals share at least one day.
func HasOverlap(candidate models.Availability, existing models.Availability) bool {
	return withinRange(candidate.FromDate, existing) ||
		withinRange(candidate.ToDate, existing) ||
		(!candidate.FromDate.After(existing.FromDate) && !candidate.ToDate.Before(existing.ToDate))
}

func withinRange(day time.Time, interval models.Availability) bool {
	return !day.Before(interval.FromDate) && !day.After(interval.ToDate)
}

func FindOverlap(candidate models.Availability, existing []models.Availability) (models.Availability, bool) {
	for _, entry := range existing {
		if HasOverlap(candidate, entry) {
			return entry, true
		}
	}
	return models.Availability{}, false
}

// ValidateAvailabilitySet checks every interval is ordered and that no two
// intervals of the set overlap.
func ValidateAvailabilitySet(entries []models.Availability) error {
	for index, entry := range entries {
		if entry.FromDate.After(entry.ToDate) {
			return newValidationError(fmt.Sprintf("availabilities[%d].to_date", index), "to_date must not be before from_date")
		}
		if _, overlaps := FindOverlap(entry, entries[:index]); overlaps {
			return ErrOverlap
		}
	}
	return nil
}

func ParseAvailabilityDate(field string, raw string) (time.Time, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, newValidationError(field, "date is required")
	}
	parsed, err := time.ParseInLocation(models.DateLayout, value, time.UTC)
	if err != nil {
		return time.Time{}, newValidationError(field, "date must use the YYYY-MM-DD format")
	}
	return parsed, nil
}

func BuildAvailability(personID uint, fromField string, fromRaw string, toField string, toRaw string) (models.Availability, error) {
	fromDate, err := ParseAvailabilityDate(fromField, fromRaw)
	if err != nil {
		return models.Availability{}, err
	}
	toDate, err := ParseAvailabilityDate(toField, toRaw)
	if err != nil {
		return models.Availability{}, err
	}
	if fromDate.After(toDate) {
		return models.Availability{}, newValidationError(toField, "to_date must not be before from_date")
	}
	return models.Availability{PersonID: personID, FromDate: fromDate, ToDate: toDate}, nil
}
