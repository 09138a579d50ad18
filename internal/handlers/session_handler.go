// speddy/internal/handlers/session_handler.go

package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/bstewart2255/speddy-sub006/config"
	"github.com/bstewart2255/speddy-sub006/internal/scheduling"
	"github.com/bstewart2255/speddy-sub006/models"
)

// SessionEvent is the calendar-feed shape for one dated occurrence.
// Pending occurrences carry their template id and no row id; they gain
// a row id the first time a mutation persists them.
type SessionEvent struct {
	ID              uint       `json:"id,omitempty"`
	TemplateID      uint       `json:"templateId,omitempty"`
	Pending         bool       `json:"pending"`
	Date            string     `json:"date"`
	DayOfWeek       int        `json:"dayOfWeek"`
	StartTime       string     `json:"startTime"`
	EndTime         string     `json:"endTime"`
	StudentID       uint       `json:"studentId"`
	StudentInitials string     `json:"studentInitials,omitempty"`
	DeliveredBy     string     `json:"deliveredBy"`
	GroupID         string     `json:"groupId,omitempty"`
	GroupName       string     `json:"groupName,omitempty"`
	GroupColor      string     `json:"groupColor,omitempty"`
	Conflict        bool       `json:"conflict"`
	CompletedAt     *time.Time `json:"completedAt,omitempty"`
	SessionNotes    string     `json:"sessionNotes,omitempty"`
}

// GetSessionsHandler materializes the caller's calendar for a date
// range: persisted instances where they exist, pending occurrences
// where the weekly templates say a session should happen, nothing on
// holidays. Failures degrade to an empty calendar rather than a broken
// view.
func GetSessionsHandler(c *gin.Context) {
	caller := callerFromContext(c)

	start, ok := parseDateParam(c, "start")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing or invalid 'start' parameter"})
		return
	}
	end, ok := parseDateParam(c, "end")
	if !ok || end.Before(start) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing or invalid 'end' parameter"})
		return
	}

	var sessions []models.ScheduleSession
	err := callerSessionsQuery(caller).
		Preload("Student").
		Where("session_date IS NULL OR (session_date >= ? AND session_date <= ?)", start, end).
		Find(&sessions).Error
	if err != nil {
		slog.Error("Failed to load schedule sessions", "error", err, "user_id", caller.UserID)
		c.JSON(http.StatusOK, []SessionEvent{})
		return
	}

	var holidays []models.Holiday
	if err := callerHolidaysQuery(c).
		Where("date >= ? AND date <= ?", start, end).
		Find(&holidays).Error; err != nil {
		slog.Error("Failed to load holidays", "error", err, "user_id", caller.UserID)
		c.JSON(http.StatusOK, []SessionEvent{})
		return
	}

	occs := scheduling.Expand(caller, sessions, holidays, start, end)
	scheduling.MarkConflicts(occs)

	events := make([]SessionEvent, 0, len(occs))
	for i := range occs {
		events = append(events, sessionEventFrom(&occs[i]))
	}
	c.JSON(http.StatusOK, events)
}

func sessionEventFrom(o *scheduling.Occurrence) SessionEvent {
	s := o.Session()
	ev := SessionEvent{
		Pending:      o.IsPending(),
		Date:         o.Date.Format(dateLayout),
		StudentID:    s.StudentID,
		DeliveredBy:  s.DeliveredBy,
		Conflict:     o.Conflict,
		CompletedAt:  s.CompletedAt,
		SessionNotes: s.SessionNotes,
	}
	if o.IsPending() {
		ev.TemplateID = o.Pending.Template.ID
	} else {
		ev.ID = s.ID
	}
	if s.DayOfWeek != nil {
		ev.DayOfWeek = *s.DayOfWeek
	}
	if s.StartTime != nil {
		ev.StartTime = *s.StartTime
	}
	if s.EndTime != nil {
		ev.EndTime = *s.EndTime
	}
	if s.Student != nil {
		ev.StudentInitials = s.Student.Initials
	}
	if s.GroupID != nil {
		ev.GroupID = *s.GroupID
		ev.GroupColor = scheduling.GroupColor(*s.GroupID)
		if s.GroupName != nil {
			ev.GroupName = *s.GroupName
		}
	}
	return ev
}

// ListUnscheduledSessionsHandler returns the caller's placeholder
// slots (no day or time yet). They never appear on the calendar and
// are never conflict-checked.
func ListUnscheduledSessionsHandler(c *gin.Context) {
	caller := callerFromContext(c)
	var sessions []models.ScheduleSession
	err := callerSessionsQuery(caller).
		Preload("Student").
		Where("session_date IS NULL AND (day_of_week IS NULL OR start_time IS NULL OR end_time IS NULL)").
		Find(&sessions).Error
	if err != nil {
		slog.Error("Failed to load unscheduled sessions", "error", err, "user_id", caller.UserID)
		c.JSON(http.StatusOK, []models.ScheduleSession{})
		return
	}
	c.JSON(http.StatusOK, sessions)
}

// CreateSessionHandler creates a recurring weekly template (or an
// unscheduled placeholder when day/time are omitted). At most one
// template may exist per (student, weekday, start time).
func CreateSessionHandler(c *gin.Context) {
	caller := callerFromContext(c)

	var input models.SessionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if input.StartTime != nil && input.EndTime != nil {
		if _, err := scheduling.DurationMinutes(*input.StartTime, *input.EndTime); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	session := models.ScheduleSession{
		ProviderID:           caller.UserID,
		StudentID:            input.StudentID,
		DayOfWeek:            input.DayOfWeek,
		StartTime:            input.StartTime,
		EndTime:              input.EndTime,
		DeliveredBy:          input.DeliveredBy,
		AssignedSpecialistID: input.AssignedSpecialistID,
		AssignedSeaID:        input.AssignedSeaID,
	}
	if session.DeliveredBy == "" {
		session.DeliveredBy = models.DeliveredByProvider
	}

	if session.IsScheduled() {
		var existing models.ScheduleSession
		err := config.DB.
			Where("student_id = ? AND day_of_week = ? AND start_time = ? AND session_date IS NULL",
				session.StudentID, *session.DayOfWeek, *session.StartTime).
			First(&existing).Error
		switch {
		case err == nil:
			c.JSON(http.StatusConflict, gin.H{"error": "A recurring session already exists at that slot"})
			return
		case !errors.Is(err, gorm.ErrRecordNotFound):
			slog.Error("Failed to check template uniqueness", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}
	}

	if err := config.DB.Create(&session).Error; err != nil {
		slog.Error("Failed to create session", "error", err, "user_id", caller.UserID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create session"})
		return
	}

	ScheduleHub.NotifyChange(affectedUserIDs(&session), "session_created", session.ID)
	c.JSON(http.StatusCreated, session)
}

// MoveRequest binds a drag-and-drop reschedule of a recurring slot.
type MoveRequest struct {
	DayOfWeek int    `json:"dayOfWeek" binding:"required,min=1,max=5"`
	StartTime string `json:"startTime" binding:"required"`
	EndTime   string `json:"endTime" binding:"required"`
}

// MoveSessionHandler reschedules a slot after checking the target for
// double-booking. An invalid target aborts the move and leaves state
// unchanged.
func MoveSessionHandler(c *gin.Context) {
	caller := callerFromContext(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid session id"})
		return
	}

	var input MoveRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	startMin, err := scheduling.MinutesOf(input.StartTime)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	endMin, err := scheduling.MinutesOf(input.EndTime)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if endMin <= startMin {
		c.JSON(http.StatusBadRequest, gin.H{"error": "End time must be after start time"})
		return
	}

	var session models.ScheduleSession
	if err := config.DB.First(&session, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}
	if !scheduling.Visible(caller, &session) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You cannot modify this session"})
		return
	}

	// Candidate set for the conflict gate: every scheduled template
	// sharing the student or the deliverer.
	deliverer := session.DelivererID()
	var candidates []models.ScheduleSession
	err = config.DB.
		Where("session_date IS NULL").
		Where("student_id = ? OR provider_id = ? OR assigned_sea_id = ? OR assigned_specialist_id = ?",
			session.StudentID, deliverer, deliverer, deliverer).
		Find(&candidates).Error
	if err != nil {
		slog.Error("Failed to load sessions for conflict check", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	placement := scheduling.Placement{
		SessionID:    session.ID,
		StudentID:    session.StudentID,
		DelivererID:  deliverer,
		DayOfWeek:    input.DayOfWeek,
		StartMinutes: startMin,
		EndMinutes:   endMin,
	}
	if scheduling.HasConflict(placement, candidates) {
		c.JSON(http.StatusConflict, gin.H{"error": "That time overlaps another session for this student or provider"})
		return
	}

	updates := map[string]interface{}{
		"day_of_week": input.DayOfWeek,
		"start_time":  scheduling.FormatMinutes(startMin),
		"end_time":    scheduling.FormatMinutes(endMin),
	}
	if err := config.DB.Model(&session).Updates(updates).Error; err != nil {
		slog.Error("Failed to move session", "error", err, "session_id", session.ID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not move session"})
		return
	}

	ScheduleHub.NotifyChange(affectedUserIDs(&session), "session_moved", session.ID)
	c.JSON(http.StatusOK, session)
}

// MutateRequest binds mutations that may target a pending occurrence:
// when :id names a template, Date selects which materialized day the
// mutation lands on.
type MutateRequest struct {
	Date  string `json:"date"`
	Notes string `json:"notes"`
}

// CompleteSessionHandler marks one dated occurrence complete,
// persisting it first when it only existed as a template expansion.
func CompleteSessionHandler(c *gin.Context) {
	caller := callerFromContext(c)

	var input MutateRequest
	if err := c.ShouldBindJSON(&input); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	instance, status, err := materializeInstance(c, caller, input.Date)
	if err != nil {
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	now := time.Now()
	updates := map[string]interface{}{
		"completed_at": now,
		"completed_by": caller.UserID,
	}
	if err := config.DB.Model(instance).Updates(updates).Error; err != nil {
		slog.Error("Failed to complete session", "error", err, "session_id", instance.ID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not complete session"})
		return
	}

	ScheduleHub.NotifyChange(affectedUserIDs(instance), "session_completed", instance.ID)
	c.JSON(http.StatusOK, instance)
}

// UpdateSessionNotesHandler sets the free-text notes on one dated
// occurrence, persisting it on demand just like completion.
func UpdateSessionNotesHandler(c *gin.Context) {
	caller := callerFromContext(c)

	var input MutateRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	instance, status, err := materializeInstance(c, caller, input.Date)
	if err != nil {
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	if err := config.DB.Model(instance).Update("session_notes", input.Notes).Error; err != nil {
		slog.Error("Failed to update session notes", "error", err, "session_id", instance.ID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not save notes"})
		return
	}
	c.JSON(http.StatusOK, instance)
}

// DeleteSessionHandler un-schedules a slot. Deleting a template also
// removes its dated instances; that is the only path that deletes
// instances.
func DeleteSessionHandler(c *gin.Context) {
	caller := callerFromContext(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid session id"})
		return
	}

	var session models.ScheduleSession
	if err := config.DB.First(&session, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}
	if !scheduling.Visible(caller, &session) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You cannot delete this session"})
		return
	}

	err = config.DB.Transaction(func(tx *gorm.DB) error {
		if session.IsTemplate() && session.IsScheduled() {
			if err := tx.
				Where("student_id = ? AND day_of_week = ? AND start_time = ? AND session_date IS NOT NULL",
					session.StudentID, *session.DayOfWeek, *session.StartTime).
				Delete(&models.ScheduleSession{}).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&session).Error
	})
	if err != nil {
		slog.Error("Failed to delete session", "error", err, "session_id", session.ID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not delete session"})
		return
	}

	ScheduleHub.NotifyChange(affectedUserIDs(&session), "session_deleted", session.ID)
	c.JSON(http.StatusOK, gin.H{"message": "Session deleted"})
}

// materializeInstance resolves the :id route param plus an optional
// date into a persisted instance row. Given an instance id it returns
// the row; given a template id and a date it finds the stored instance
// for that day or converts the pending occurrence into a row. This is
// the single place a pending occurrence becomes durable.
func materializeInstance(c *gin.Context, caller scheduling.Caller, dateStr string) (*models.ScheduleSession, int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return nil, http.StatusBadRequest, fmt.Errorf("invalid session id")
	}

	var session models.ScheduleSession
	if err := config.DB.First(&session, id).Error; err != nil {
		return nil, http.StatusNotFound, fmt.Errorf("session not found")
	}
	if !scheduling.Visible(caller, &session) {
		return nil, http.StatusForbidden, fmt.Errorf("you cannot modify this session")
	}
	if !session.IsTemplate() {
		return &session, http.StatusOK, nil
	}

	if !session.IsScheduled() {
		return nil, http.StatusBadRequest, fmt.Errorf("session has no scheduled slot")
	}
	if dateStr == "" {
		return nil, http.StatusBadRequest, fmt.Errorf("a date is required for a recurring session")
	}
	date, err := time.Parse(dateLayout, dateStr)
	if err != nil {
		return nil, http.StatusBadRequest, fmt.Errorf("invalid date %q", dateStr)
	}

	// A date off the template's weekday or on a holiday never yields an
	// occurrence, so it must not yield a stored instance either.
	var holidays []models.Holiday
	if err := callerHolidaysQuery(c).Where("date = ?", date).Find(&holidays).Error; err != nil {
		slog.Error("Failed to check holidays", "error", err, "template_id", session.ID)
		return nil, http.StatusInternalServerError, fmt.Errorf("database error")
	}
	if err := scheduling.ValidateInstanceDate(&session, date, holidays); err != nil {
		return nil, http.StatusBadRequest, err
	}

	var existing models.ScheduleSession
	err = config.DB.
		Where("student_id = ? AND session_date = ? AND start_time = ?",
			session.StudentID, date, *session.StartTime).
		First(&existing).Error
	switch {
	case err == nil:
		return &existing, http.StatusOK, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		slog.Error("Failed to look up instance", "error", err, "template_id", session.ID)
		return nil, http.StatusInternalServerError, fmt.Errorf("database error")
	}

	pending := scheduling.PendingSession{Template: session, Date: date}
	row := pending.Row()
	if err := config.DB.Create(&row).Error; err != nil {
		slog.Error("Failed to persist pending occurrence", "error", err, "template_id", session.ID)
		return nil, http.StatusInternalServerError, fmt.Errorf("could not save session")
	}
	return &row, http.StatusOK, nil
}

// affectedUserIDs lists everyone whose open calendar should refresh
// after a mutation of this row.
func affectedUserIDs(s *models.ScheduleSession) []uint {
	ids := []uint{s.ProviderID}
	if s.AssignedSpecialistID != nil {
		ids = append(ids, *s.AssignedSpecialistID)
	}
	if s.AssignedSeaID != nil {
		ids = append(ids, *s.AssignedSeaID)
	}
	return ids
}
