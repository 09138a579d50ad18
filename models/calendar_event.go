// speddy/models/calendar_event.go

package models

import "time"

// CalendarEvent is a dated, non-recurring entry on a provider's
// calendar (IEP meetings, assessments, trainings). Recurring teaching
// sessions live in schedule_sessions, not here.
type CalendarEvent struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	OwnerID     uint      `json:"ownerId" gorm:"not null;index"`
	Title       string    `json:"title" gorm:"not null"`
	Description string    `json:"description"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	AllDay      bool      `json:"allDay"`
	Location    string    `json:"location,omitempty"`
	Color       string    `json:"color,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CalendarEventInput binds the JSON body for creating/updating an event.
type CalendarEventInput struct {
	Title       string    `json:"title" binding:"required"`
	Description string    `json:"description"`
	StartTime   time.Time `json:"start_time" binding:"required"`
	EndTime     time.Time `json:"end_time" binding:"required"`
	AllDay      bool      `json:"allDay"`
	Location    string    `json:"location"`
	Color       string    `json:"color"`
}
