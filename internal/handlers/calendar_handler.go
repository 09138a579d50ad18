// speddy/internal/handlers/calendar_handler.go

package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bstewart2255/speddy-sub006/config"
	"github.com/bstewart2255/speddy-sub006/models"
)

// CombinedEvent is the calendar-feed shape for dated events and
// holidays, compatible with the FullCalendar frontend.
type CombinedEvent struct {
	ID          string    `json:"id"`
	GroupID     string    `json:"groupId,omitempty"` // 'holidays', 'events'
	Title       string    `json:"title"`
	Start       time.Time `json:"start,omitempty"`
	End         time.Time `json:"end,omitempty"`
	AllDay      bool      `json:"allDay"`
	Editable    bool      `json:"editable"` // false for holidays
	Color       string    `json:"color,omitempty"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location,omitempty"`
}

// GetEventsHandler returns the caller's dated events plus site
// holidays as all-day background entries. Teaching sessions are served
// by /api/sessions, not here.
func GetEventsHandler(c *gin.Context) {
	currentUserID := c.GetUint("user_id")
	if currentUserID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var allEvents []CombinedEvent

	var events []models.CalendarEvent
	if err := config.DB.Where("owner_id = ?", currentUserID).Find(&events).Error; err != nil {
		slog.Error("Failed to fetch calendar events", "error", err, "user_id", currentUserID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch events"})
		return
	}
	for _, ev := range events {
		allEvents = append(allEvents, CombinedEvent{
			ID:          strconv.FormatUint(uint64(ev.ID), 10),
			GroupID:     "events",
			Title:       ev.Title,
			Start:       ev.StartTime,
			End:         ev.EndTime,
			AllDay:      ev.AllDay,
			Editable:    true,
			Color:       ev.Color,
			Description: ev.Description,
			Location:    ev.Location,
		})
	}

	var holidays []models.Holiday
	if err := callerHolidaysQuery(c).Find(&holidays).Error; err != nil {
		slog.Error("Failed to fetch holidays for calendar", "error", err, "user_id", currentUserID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch holidays"})
		return
	}
	for _, h := range holidays {
		title := h.Name
		if title == "" {
			title = "No school"
		}
		allEvents = append(allEvents, CombinedEvent{
			ID:       "holiday-" + strconv.FormatUint(uint64(h.ID), 10),
			GroupID:  "holidays",
			Title:    title,
			Start:    h.Date,
			AllDay:   true,
			Editable: false,
			Color:    "#d9d9d9",
		})
	}

	c.JSON(http.StatusOK, allEvents)
}

// CreateEventHandler creates a dated calendar event for the caller.
func CreateEventHandler(c *gin.Context) {
	currentUserID := c.GetUint("user_id")

	var input models.CalendarEventInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if input.EndTime.Before(input.StartTime) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "End time must be after start time"})
		return
	}

	event := models.CalendarEvent{
		OwnerID:     currentUserID,
		Title:       input.Title,
		Description: input.Description,
		StartTime:   input.StartTime,
		EndTime:     input.EndTime,
		AllDay:      input.AllDay,
		Location:    input.Location,
		Color:       input.Color,
	}
	if err := config.DB.Create(&event).Error; err != nil {
		slog.Error("Failed to create calendar event", "error", err, "user_id", currentUserID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create event"})
		return
	}
	c.JSON(http.StatusCreated, event)
}

// UpdateEventHandler updates one of the caller's events.
func UpdateEventHandler(c *gin.Context) {
	currentUserID := c.GetUint("user_id")

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event id"})
		return
	}

	var event models.CalendarEvent
	if err := config.DB.First(&event, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
		return
	}
	if event.OwnerID != currentUserID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You cannot modify this event"})
		return
	}

	var input models.CalendarEventInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	event.Title = input.Title
	event.Description = input.Description
	event.StartTime = input.StartTime
	event.EndTime = input.EndTime
	event.AllDay = input.AllDay
	event.Location = input.Location
	event.Color = input.Color
	if err := config.DB.Save(&event).Error; err != nil {
		slog.Error("Failed to update calendar event", "error", err, "event_id", event.ID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not update event"})
		return
	}
	c.JSON(http.StatusOK, event)
}

// DeleteEventHandler removes one of the caller's events.
func DeleteEventHandler(c *gin.Context) {
	currentUserID := c.GetUint("user_id")

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event id"})
		return
	}

	var event models.CalendarEvent
	if err := config.DB.First(&event, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
		return
	}
	if event.OwnerID != currentUserID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You cannot delete this event"})
		return
	}

	if err := config.DB.Delete(&event).Error; err != nil {
		slog.Error("Failed to delete calendar event", "error", err, "event_id", event.ID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not delete event"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Event deleted"})
}
