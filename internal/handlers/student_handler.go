// speddy/internal/handlers/student_handler.go
package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/bstewart2255/speddy-sub006/config"
	"github.com/bstewart2255/speddy-sub006/internal/scheduling"
	"github.com/bstewart2255/speddy-sub006/models"
)

// ListStudentsHandler returns the caller's caseload, paginated. SEAs
// and specialists get the students whose sessions are assigned to
// them; providers and admins their own scope.
func ListStudentsHandler(c *gin.Context) {
	caller := callerFromContext(c)

	query := callerStudentsQuery(caller).Order("initials asc")

	var students []models.Student
	if c.Query("all") == "true" {
		if err := query.Find(&students).Error; err != nil {
			slog.Error("Failed to fetch students", "error", err, "user_id", caller.UserID)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch students"})
			return
		}
		c.JSON(http.StatusOK, students)
		return
	}

	var totalRows int64
	callerStudentsQuery(caller).Count(&totalRows)
	if err := query.Scopes(Paginate(c)).Find(&students).Error; err != nil {
		slog.Error("Failed to fetch students", "error", err, "user_id", caller.UserID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch students"})
		return
	}
	c.JSON(http.StatusOK, CreatePaginatedResponse(c, students, totalRows))
}

// callerStudentsQuery scopes students the same way sessions are
// scoped: ownership for providers, assignment for support roles,
// school for admins.
func callerStudentsQuery(caller scheduling.Caller) *gorm.DB {
	q := config.DB.Model(&models.Student{})
	switch caller.Role {
	case models.RoleAdmin:
		return q.Where("school = ?", caller.School)
	case models.RoleSpecialist:
		return q.Where("id IN (?)", config.DB.Model(&models.ScheduleSession{}).
			Distinct("student_id").Where("assigned_specialist_id = ?", caller.UserID))
	case models.RoleSea:
		return q.Where("id IN (?)", config.DB.Model(&models.ScheduleSession{}).
			Distinct("student_id").Where("assigned_sea_id = ?", caller.UserID))
	default:
		return q.Where("provider_id = ?", caller.UserID)
	}
}

// GetSeaStudentsHandler is the role-filtered student list the SEA
// daily view uses: every student with at least one session assigned to
// the calling SEA, with the assigning provider's name attached.
func GetSeaStudentsHandler(c *gin.Context) {
	caller := callerFromContext(c)
	if caller.Role != models.RoleSea && caller.Role != models.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "Permission denied"})
		return
	}

	type seaStudent struct {
		models.Student
		ProviderName string `json:"providerName"`
	}
	var students []seaStudent
	err := config.DB.Model(&models.Student{}).
		Select("students.*, profiles.full_name AS provider_name").
		Joins("JOIN schedule_sessions ON schedule_sessions.student_id = students.id AND schedule_sessions.session_date IS NULL").
		Joins("JOIN profiles ON profiles.id = students.provider_id").
		Where("schedule_sessions.assigned_sea_id = ?", caller.UserID).
		Group("students.id, profiles.full_name").
		Find(&students).Error
	if err != nil {
		slog.Error("Failed to fetch SEA students", "error", err, "user_id", caller.UserID)
		c.JSON(http.StatusOK, []seaStudent{})
		return
	}
	c.JSON(http.StatusOK, students)
}

// GetStudentHandler returns one student with their IEP goals.
func GetStudentHandler(c *gin.Context) {
	caller := callerFromContext(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid student id"})
		return
	}

	var student models.Student
	if err := callerStudentsQuery(caller).Preload("Goals").First(&student, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Student not found"})
		return
	}
	c.JSON(http.StatusOK, student)
}

// CreateStudentHandler adds a student to the caller's caseload.
func CreateStudentHandler(c *gin.Context) {
	caller := callerFromContext(c)

	var input models.StudentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	student := models.Student{
		ProviderID:        caller.UserID,
		Initials:          input.Initials,
		FirstName:         input.FirstName,
		LastName:          input.LastName,
		GradeLevel:        input.GradeLevel,
		School:            input.School,
		District:          input.District,
		TeacherName:       input.TeacherName,
		SessionsPerWeek:   input.SessionsPerWeek,
		MinutesPerSession: input.MinutesPerSession,
	}
	if student.School == "" {
		student.School = caller.School
	}
	if student.District == "" {
		student.District = c.GetString("district")
	}

	if err := config.DB.Create(&student).Error; err != nil {
		slog.Error("Failed to create student", "error", err, "user_id", caller.UserID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create student"})
		return
	}
	c.JSON(http.StatusCreated, student)
}

// UpdateStudentHandler updates a student on the caller's caseload.
func UpdateStudentHandler(c *gin.Context) {
	caller := callerFromContext(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid student id"})
		return
	}

	var student models.Student
	if err := callerStudentsQuery(caller).First(&student, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Student not found"})
		return
	}

	var input models.StudentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	student.Initials = input.Initials
	student.FirstName = input.FirstName
	student.LastName = input.LastName
	student.GradeLevel = input.GradeLevel
	student.TeacherName = input.TeacherName
	student.SessionsPerWeek = input.SessionsPerWeek
	student.MinutesPerSession = input.MinutesPerSession
	if input.School != "" {
		student.School = input.School
	}
	if input.District != "" {
		student.District = input.District
	}

	if err := config.DB.Save(&student).Error; err != nil {
		slog.Error("Failed to update student", "error", err, "student_id", student.ID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not update student"})
		return
	}
	c.JSON(http.StatusOK, student)
}

// DeleteStudentHandler unenrolls a student, removing their recurring
// sessions with them.
func DeleteStudentHandler(c *gin.Context) {
	caller := callerFromContext(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid student id"})
		return
	}

	var student models.Student
	if err := callerStudentsQuery(caller).First(&student, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Student not found"})
		return
	}

	err = config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("student_id = ?", student.ID).Delete(&models.ScheduleSession{}).Error; err != nil {
			return err
		}
		return tx.Delete(&student).Error
	})
	if err != nil {
		slog.Error("Failed to delete student", "error", err, "student_id", student.ID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not delete student"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Student deleted"})
}
