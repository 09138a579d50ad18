package models

import (
	"time"

	"gorm.io/gorm"
)

// Holiday marks a date on which no sessions are held for a school site.
// Its presence suppresses materialization for that date entirely.
type Holiday struct {
	gorm.Model
	Date     time.Time `json:"date" gorm:"not null;index"`
	Name     string    `json:"name"`
	School   string    `json:"school"`
	District string    `json:"district"`
}

// HolidayInput binds the JSON body for creating a holiday.
type HolidayInput struct {
	Date     string `json:"date" binding:"required"` // "2006-01-02"
	Name     string `json:"name"`
	School   string `json:"school"`
	District string `json:"district"`
}
