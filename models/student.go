// speddy/models/student.go

package models

import (
	"time"

	"gorm.io/gorm"
)

// Student represents a student on a provider's caseload.
type Student struct {
	gorm.Model
	ProviderID uint   `json:"providerId" gorm:"not null;index"`
	Initials   string `json:"initials" gorm:"not null"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	GradeLevel string `json:"gradeLevel"`
	School     string `json:"school"`
	District   string `json:"district"`

	// Teacher of record for the student's general-ed classroom.
	TeacherName string `json:"teacherName"`

	// Service mandate from the IEP, used by the schedule export.
	SessionsPerWeek   int `json:"sessionsPerWeek"`
	MinutesPerSession int `json:"minutesPerSession"`

	UpcomingIEPDate   *time.Time `json:"upcomingIepDate"`
	UpcomingTriennial *time.Time `json:"upcomingTriennialDate"`

	Goals []IEPGoal `gorm:"foreignKey:StudentID" json:"goals,omitempty"`
}

// StudentInput binds the JSON body for creating or updating a student.
type StudentInput struct {
	Initials          string `json:"initials" binding:"required"`
	FirstName         string `json:"firstName"`
	LastName          string `json:"lastName"`
	GradeLevel        string `json:"gradeLevel"`
	School            string `json:"school"`
	District          string `json:"district"`
	TeacherName       string `json:"teacherName"`
	SessionsPerWeek   int    `json:"sessionsPerWeek" binding:"omitempty,min=0,max=10"`
	MinutesPerSession int    `json:"minutesPerSession" binding:"omitempty,min=0,max=240"`
}
