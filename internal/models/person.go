package models

import "time"

const (
	RoleApplicant = "applicant"
	RoleRecruiter = "recruiter"
)

// Person is the root entity. Legacy records imported from the previous
// system carry an email and personal number but no username or password
// until the owner claims them through the passcode migration.
type Person struct {
	ID             uint    `gorm:"primaryKey"`
	Name           string  `gorm:"not null"`
	Surname        string  `gorm:"not null;default:''"`
	PersonalNumber *string `gorm:"uniqueIndex"`
	Email          *string `gorm:"uniqueIndex"`
	Username       *string `gorm:"uniqueIndex"`
	PasswordHash   string  `gorm:"not null;default:''"`
	Role           string  `gorm:"not null;default:applicant"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Competencies   []UserCompetence `gorm:"foreignKey:PersonID;constraint:OnDelete:CASCADE"`
	Availabilities []Availability   `gorm:"foreignKey:PersonID;constraint:OnDelete:CASCADE"`
	Application    *Application     `gorm:"foreignKey:PersonID;constraint:OnDelete:CASCADE"`
}

func (Person) TableName() string {
	return "persons"
}

func (person Person) IsRecruiter() bool {
	return person.Role == RoleRecruiter
}

// HasCredentials reports whether the person can log in with a username and
// password. Pending legacy records cannot.
func (person Person) HasCredentials() bool {
	return person.Username != nil && *person.Username != "" && person.PasswordHash != ""
}

func StringValue(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func StringPointer(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
