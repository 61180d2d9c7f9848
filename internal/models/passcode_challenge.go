package models

import "time"

const (
	PasscodeStateAwaitingPasscode = "awaiting_passcode"
	PasscodeStateAwaitingProfile  = "awaiting_profile"
)

type PasscodeChallenge struct {
	Email        string    `gorm:"primaryKey"`
	PersonID     uint      `gorm:"not null;index"`
	PasscodeHash string    `gorm:"not null"`
	State        string    `gorm:"not null;default:awaiting_passcode"`
	Attempts     int       `gorm:"not null;default:0"`
	ExpiresAt    time.Time `gorm:"not null;index"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (PasscodeChallenge) TableName() string {
	return "passcode_challenges"
}

func (challenge PasscodeChallenge) Expired(now time.Time) bool {
	return !now.Before(challenge.ExpiresAt)
}
