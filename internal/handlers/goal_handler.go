// speddy/internal/handlers/goal_handler.go

package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/Knetic/govaluate"
	"github.com/gin-gonic/gin"

	"github.com/bstewart2255/speddy-sub006/config"
	"github.com/bstewart2255/speddy-sub006/internal/scheduling"
	"github.com/bstewart2255/speddy-sub006/models"
)

// ListGoalsHandler returns the goals for one student on the caller's
// caseload.
func ListGoalsHandler(c *gin.Context) {
	caller := callerFromContext(c)

	studentID, err := strconv.Atoi(c.Query("studentId"))
	if err != nil || studentID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing or invalid studentId parameter"})
		return
	}
	var student models.Student
	if err := callerStudentsQuery(caller).First(&student, studentID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Student not found"})
		return
	}

	var goals []models.IEPGoal
	if err := config.DB.Where("student_id = ?", student.ID).Preload("Probes").Find(&goals).Error; err != nil {
		slog.Error("Failed to fetch goals", "error", err, "student_id", student.ID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch goals"})
		return
	}
	c.JSON(http.StatusOK, goals)
}

// CreateGoalHandler adds an IEP goal. The mastery criterion must parse
// as a boolean expression so probe evaluation cannot fail later.
func CreateGoalHandler(c *gin.Context) {
	caller := callerFromContext(c)

	var input models.IEPGoalInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	var student models.Student
	if err := callerStudentsQuery(caller).First(&student, input.StudentID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Student not found"})
		return
	}

	if input.Criterion != "" {
		if _, err := govaluate.NewEvaluableExpression(input.Criterion); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid mastery criterion: " + err.Error()})
			return
		}
	}

	goal := models.IEPGoal{
		StudentID: student.ID,
		Area:      input.Area,
		Text:      input.Text,
		Criterion: input.Criterion,
	}
	if input.TargetDate != "" {
		if t, err := time.Parse(dateLayout, input.TargetDate); err == nil {
			goal.TargetDate = &t
		}
	}

	if err := config.DB.Create(&goal).Error; err != nil {
		slog.Error("Failed to create goal", "error", err, "student_id", student.ID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create goal"})
		return
	}
	c.JSON(http.StatusCreated, goal)
}

// DeleteGoalHandler removes a goal and its recorded probes.
func DeleteGoalHandler(c *gin.Context) {
	caller := callerFromContext(c)

	goal, status, err := loadCallerGoal(caller, c.Param("id"))
	if err != nil {
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	if err := config.DB.Select("Probes").Delete(goal).Error; err != nil {
		slog.Error("Failed to delete goal", "error", err, "goal_id", goal.ID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not delete goal"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Goal deleted"})
}

// RecordProbeHandler stores one progress-monitoring data point and
// evaluates the goal's mastery criterion against it. A probe that
// satisfies the criterion stamps the goal's MasteredAt.
func RecordProbeHandler(c *gin.Context) {
	caller := callerFromContext(c)

	goal, status, err := loadCallerGoal(caller, c.Param("id"))
	if err != nil {
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	var input models.GoalProbeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	probeDate := time.Now()
	if input.ProbeDate != "" {
		if t, parseErr := time.Parse(dateLayout, input.ProbeDate); parseErr == nil {
			probeDate = t
		}
	}

	mastery := false
	if goal.Criterion != "" {
		expr, exprErr := govaluate.NewEvaluableExpression(goal.Criterion)
		if exprErr != nil {
			slog.Error("Stored criterion no longer parses", "error", exprErr, "goal_id", goal.ID)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Goal criterion is invalid"})
			return
		}
		params := make(map[string]interface{}, len(input.Values))
		for k, v := range input.Values {
			params[k] = v
		}
		result, evalErr := expr.Evaluate(params)
		if evalErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Probe values do not satisfy the criterion variables: " + evalErr.Error()})
			return
		}
		mastery, _ = result.(bool)
	}

	rawValues, err := json.Marshal(input.Values)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid probe values"})
		return
	}

	probe := models.GoalProbe{
		GoalID:     goal.ID,
		RecordedBy: caller.UserID,
		ProbeDate:  probeDate,
		Values:     string(rawValues),
		Mastery:    mastery,
		Notes:      input.Notes,
	}
	if err := config.DB.Create(&probe).Error; err != nil {
		slog.Error("Failed to record probe", "error", err, "goal_id", goal.ID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not record progress"})
		return
	}

	if mastery && goal.MasteredAt == nil {
		if err := config.DB.Model(goal).Update("mastered_at", probeDate).Error; err != nil {
			slog.Error("Failed to stamp goal mastery", "error", err, "goal_id", goal.ID)
		}
	}

	c.JSON(http.StatusCreated, gin.H{"probe": probe, "mastery": mastery})
}

// loadCallerGoal fetches a goal and checks it belongs to a student the
// caller may see.
func loadCallerGoal(caller scheduling.Caller, rawID string) (*models.IEPGoal, int, error) {
	id, err := strconv.Atoi(rawID)
	if err != nil {
		return nil, http.StatusBadRequest, fmt.Errorf("invalid goal id")
	}

	var goal models.IEPGoal
	if err := config.DB.First(&goal, id).Error; err != nil {
		return nil, http.StatusNotFound, fmt.Errorf("goal not found")
	}
	var student models.Student
	if err := callerStudentsQuery(caller).First(&student, goal.StudentID).Error; err != nil {
		return nil, http.StatusForbidden, fmt.Errorf("you cannot access this goal")
	}
	return &goal, http.StatusOK, nil
}
