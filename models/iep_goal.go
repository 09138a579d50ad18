package models

import (
	"time"

	"gorm.io/gorm"
)

// IEPGoal is one annual goal from a student's IEP. The mastery
// criterion is a boolean expression over the variables reported with
// each progress probe, e.g. "accuracy >= 80 && trials >= 4".
type IEPGoal struct {
	gorm.Model
	StudentID uint   `json:"studentId" gorm:"not null;index"`
	Area      string `json:"area"` // reading, writing, math, behavior...
	Text      string `json:"text" gorm:"not null"`
	Criterion string `json:"criterion"`

	TargetDate *time.Time `json:"targetDate"`
	MasteredAt *time.Time `json:"masteredAt"`

	Probes []GoalProbe `gorm:"foreignKey:GoalID" json:"probes,omitempty"`
}

// GoalProbe is a single progress-monitoring data point.
type GoalProbe struct {
	gorm.Model
	GoalID     uint      `json:"goalId" gorm:"not null;index"`
	RecordedBy uint      `json:"recordedBy"`
	ProbeDate  time.Time `json:"probeDate"`
	// Raw measurements keyed by criterion variable name, stored as JSON.
	Values  string `json:"values" gorm:"type:json"`
	Mastery bool   `json:"mastery"`
	Notes   string `json:"notes"`
}

// IEPGoalInput binds the JSON body for creating or updating a goal.
type IEPGoalInput struct {
	StudentID  uint   `json:"studentId" binding:"required"`
	Area       string `json:"area"`
	Text       string `json:"text" binding:"required"`
	Criterion  string `json:"criterion"`
	TargetDate string `json:"targetDate"` // "2006-01-02"
}

// GoalProbeInput binds one reported progress data point.
type GoalProbeInput struct {
	ProbeDate string             `json:"probeDate"` // "2006-01-02", defaults to today
	Values    map[string]float64 `json:"values" binding:"required"`
	Notes     string             `json:"notes"`
}
