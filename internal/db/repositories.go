package db

import "gorm.io/gorm"

type Repositories struct {
	Persons      *PersonRepository
	Applications *ApplicationRepository
	Passcodes    *PasscodeRepository
}

func NewRepositories(database *gorm.DB) *Repositories {
	return &Repositories{
		Persons:      NewPersonRepository(database),
		Applications: NewApplicationRepository(database),
		Passcodes:    NewPasscodeRepository(database),
	}
}
