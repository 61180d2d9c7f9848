package models

import "time"

const (
	StatusUnhandled = "unhandled"
	StatusAccepted  = "accepted"
	StatusRejected  = "rejected"
)

// Application holds the review status of a person's current application.
// Competencies and availabilities live in their own tables and are replaced
// as a whole on every submission.
type Application struct {
	PersonID    uint      `gorm:"primaryKey;autoIncrement:false"`
	Status      string    `gorm:"not null;default:unhandled"`
	SubmittedAt time.Time `gorm:"not null"`
	UpdatedAt   time.Time
}

func (Application) TableName() string {
	return "applications"
}

func IsValidStatus(status string) bool {
	switch status {
	case StatusUnhandled, StatusAccepted, StatusRejected:
		return true
	default:
		return false
	}
}
