// speddy/models/session.go

package models

import (
	"time"

	"gorm.io/gorm"
)

// Delivery roles for a session. The owning provider is not always the
// person in the room; specialists and SEAs carry assigned sessions.
const (
	DeliveredByProvider   = "provider"
	DeliveredBySpecialist = "specialist"
	DeliveredBySea        = "sea"
)

// ScheduleSession represents one row of the 'schedule_sessions' table.
// A row with a NULL SessionDate is a recurring weekly template; a row
// with a date is that template materialized for one calendar day.
// Templates are the durable source of truth for what normally happens.
type ScheduleSession struct {
	gorm.Model
	ProviderID uint  `json:"providerId" gorm:"not null;index"`
	StudentID  uint  `json:"studentId" gorm:"not null;index"`
	DayOfWeek  *int  `json:"dayOfWeek"` // 1=Monday .. 5=Friday; NULL = unscheduled placeholder
	// Times are stored as "HH:MM". NULL time means the slot has not been
	// placed on the grid yet and must never be expanded or conflict-checked.
	StartTime *string `json:"startTime"`
	EndTime   *string `json:"endTime"`

	// NULL = template, non-NULL = dated instance.
	SessionDate *time.Time `json:"sessionDate" gorm:"index"`

	DeliveredBy          string `json:"deliveredBy" gorm:"default:provider"`
	AssignedSpecialistID *uint  `json:"assignedSpecialistId" gorm:"index"`
	AssignedSeaID        *uint  `json:"assignedSeaId" gorm:"index"`

	// Grouping lives on templates only, so it recurs week over week.
	GroupID   *string `json:"groupId" gorm:"index"`
	GroupName *string `json:"groupName"`

	CompletedAt  *time.Time `json:"completedAt"`
	CompletedBy  *uint      `json:"completedBy"`
	SessionNotes string     `json:"sessionNotes"`

	Student *Student `gorm:"foreignKey:StudentID" json:"student,omitempty"`
}

// IsTemplate reports whether the row is a recurring weekly definition.
func (s *ScheduleSession) IsTemplate() bool {
	return s.SessionDate == nil
}

// IsScheduled reports whether the row has been placed on the weekly grid.
// Unscheduled rows are surfaced separately and excluded from expansion
// and conflict checking.
func (s *ScheduleSession) IsScheduled() bool {
	return s.DayOfWeek != nil && s.StartTime != nil && s.EndTime != nil
}

// DelivererID returns the id of the person actually carrying out the
// session, falling back to the owning provider.
func (s *ScheduleSession) DelivererID() uint {
	switch s.DeliveredBy {
	case DeliveredBySpecialist:
		if s.AssignedSpecialistID != nil {
			return *s.AssignedSpecialistID
		}
	case DeliveredBySea:
		if s.AssignedSeaID != nil {
			return *s.AssignedSeaID
		}
	}
	return s.ProviderID
}

// SessionInput binds the JSON body for creating or rescheduling a slot.
type SessionInput struct {
	StudentID   uint    `json:"studentId" binding:"required"`
	DayOfWeek   *int    `json:"dayOfWeek" binding:"omitempty,min=1,max=5"`
	StartTime   *string `json:"startTime"`
	EndTime     *string `json:"endTime"`
	DeliveredBy string  `json:"deliveredBy" binding:"omitempty,oneof=provider specialist sea"`

	AssignedSpecialistID *uint `json:"assignedSpecialistId"`
	AssignedSeaID        *uint `json:"assignedSeaId"`
}
