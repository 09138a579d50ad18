// speddy/internal/handlers/group_handler.go

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/bstewart2255/speddy-sub006/config"
	"github.com/bstewart2255/speddy-sub006/internal/scheduling"
	"github.com/bstewart2255/speddy-sub006/models"
)

// GroupRequest binds the /api/sessions/group and /ungroup bodies.
// Session ids arrive as strings; a selected pending occurrence is sent
// as its template's id, since grouping attaches to templates anyway.
type GroupRequest struct {
	SessionIDs []string `json:"sessionIds" binding:"required"`
	GroupName  string   `json:"groupName"`
}

// GroupSessionsHandler applies one group label across the templates
// behind the selected sessions. Unauthorized or unresolvable
// selections are skipped with a log line; fewer than two surviving
// templates fails the whole call. Template updates happen in one
// transaction, so a retry is idempotent.
func GroupSessionsHandler(c *gin.Context) {
	caller := callerFromContext(c)

	var input GroupRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if input.GroupName == "" {
		input.GroupName = "Group"
	}

	selected, templates, ok := loadGroupingRows(c, caller, input.SessionIDs)
	if !ok {
		return
	}

	plan, err := scheduling.PlanGrouping(caller, selected, templates, input.GroupName)
	if err != nil {
		if errors.Is(err, scheduling.ErrTooFewSessions) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		slog.Error("Failed to plan grouping", "error", err, "user_id", caller.UserID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not group sessions"})
		return
	}
	for _, id := range plan.SkippedIDs {
		slog.Warn("Skipping session in grouping request", "session_id", id, "user_id", caller.UserID)
	}

	err = config.DB.Transaction(func(tx *gorm.DB) error {
		return tx.Model(&models.ScheduleSession{}).
			Where("id IN ?", plan.TemplateIDs).
			Updates(map[string]interface{}{
				"group_id":   plan.GroupID,
				"group_name": plan.GroupName,
			}).Error
	})
	if err != nil {
		slog.Error("Failed to apply group", "error", err, "group_id", plan.GroupID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not group sessions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"groupId":    plan.GroupID,
		"groupName":  plan.GroupName,
		"groupColor": scheduling.GroupColor(plan.GroupID),
		"sessionIds": plan.TemplateIDs,
	})
}

// UngroupSessionsHandler clears the group label on the templates
// behind the selected sessions. Where a template no longer exists
// (legacy rows) the instance itself is cleared and a warning logged;
// recurrence is not preserved for those.
func UngroupSessionsHandler(c *gin.Context) {
	caller := callerFromContext(c)

	var input GroupRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	selected, templates, ok := loadGroupingRows(c, caller, input.SessionIDs)
	if !ok {
		return
	}

	plan := scheduling.PlanUngrouping(caller, selected, templates)
	for _, id := range plan.SkippedIDs {
		slog.Warn("Skipping session in ungrouping request", "session_id", id, "user_id", caller.UserID)
	}
	for _, id := range plan.FallbackIDs {
		slog.Warn("No template found for instance; clearing group on the instance only, recurrence will not be preserved",
			"session_id", id, "user_id", caller.UserID)
	}

	unset := map[string]interface{}{"group_id": nil, "group_name": nil}
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if len(plan.TemplateIDs) > 0 {
			if err := tx.Model(&models.ScheduleSession{}).
				Where("id IN ?", plan.TemplateIDs).
				Updates(unset).Error; err != nil {
				return err
			}
		}
		if len(plan.FallbackIDs) > 0 {
			if err := tx.Model(&models.ScheduleSession{}).
				Where("id IN ?", plan.FallbackIDs).
				Updates(unset).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		slog.Error("Failed to ungroup sessions", "error", err, "user_id", caller.UserID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not ungroup sessions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ungrouped": len(plan.TemplateIDs), "cleared": len(plan.FallbackIDs)})
}

// loadGroupingRows fetches the selected rows and the caller's template
// pool for resolution. Selection ids that do not parse or do not exist
// are reported as a bad request rather than silently dropped.
func loadGroupingRows(c *gin.Context, caller scheduling.Caller, sessionIDs []string) (selected, templates []models.ScheduleSession, ok bool) {
	ids := make([]uint, 0, len(sessionIDs))
	for _, raw := range sessionIDs {
		id, err := strconv.Atoi(raw)
		if err != nil || id <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid session id: " + raw})
			return nil, nil, false
		}
		ids = append(ids, uint(id))
	}

	// Fetch through the caller's scope so a selection can only name rows
	// they may see. Admins are thereby held to their own school.
	if err := callerSessionsQuery(caller).Where("id IN ?", ids).Find(&selected).Error; err != nil {
		slog.Error("Failed to load selected sessions", "error", err, "user_id", caller.UserID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return nil, nil, false
	}
	if len(selected) != len(ids) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "One or more selected sessions do not exist or are not yours"})
		return nil, nil, false
	}

	// Template pool: the whole student set of the selection, so that
	// resolution can find templates the caller does not own (they will
	// be skipped as unauthorized, not mistaken for legacy rows).
	studentIDs := make([]uint, 0, len(selected))
	for i := range selected {
		studentIDs = append(studentIDs, selected[i].StudentID)
	}
	if err := config.DB.
		Where("session_date IS NULL AND student_id IN ?", studentIDs).
		Find(&templates).Error; err != nil {
		slog.Error("Failed to load templates for grouping", "error", err, "user_id", caller.UserID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return nil, nil, false
	}
	return selected, templates, true
}
