package models

import "time"

const DateLayout = "2006-01-02"

type Availability struct {
	ID        uint      `gorm:"primaryKey"`
	PersonID  uint      `gorm:"not null;index"`
	FromDate  time.Time `gorm:"type:date;not null;check:chk_availabilities_range,from_date <= to_date"`
	ToDate    time.Time `gorm:"type:date;not null"`
	CreatedAt time.Time
}

func (Availability) TableName() string {
	return "availabilities"
}
