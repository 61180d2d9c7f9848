package models

import "time"

var DefaultCompetenceCatalog = []string{
	"ticket sales",
	"lotteries",
	"roller coaster operation",
}

type Competence struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"uniqueIndex;not null"`
}

func (Competence) TableName() string {
	return "competences"
}

type UserCompetence struct {
	ID                uint    `gorm:"primaryKey"`
	PersonID          uint    `gorm:"not null;uniqueIndex:uidx_person_competence"`
	CompetenceID      uint    `gorm:"not null;uniqueIndex:uidx_person_competence"`
	YearsOfExperience float64 `gorm:"not null;check:chk_user_competences_years,years_of_experience >= 0"`
	CreatedAt         time.Time

	Competence Competence `gorm:"foreignKey:CompetenceID"`
}

func (UserCompetence) TableName() string {
	return "user_competences"
}
