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

// ListHolidaysHandler returns the holidays for the caller's site,
// optionally narrowed to a date range.
func ListHolidaysHandler(c *gin.Context) {
	q := callerHolidaysQuery(c).Order("date asc")
	if start, ok := parseDateParam(c, "start"); ok {
		q = q.Where("date >= ?", start)
	}
	if end, ok := parseDateParam(c, "end"); ok {
		q = q.Where("date <= ?", end)
	}

	var holidays []models.Holiday
	if err := q.Find(&holidays).Error; err != nil {
		slog.Error("Failed to load holidays", "error", err)
		c.JSON(http.StatusOK, []models.Holiday{})
		return
	}
	c.JSON(http.StatusOK, holidays)
}

// CreateHolidayHandler records a no-session date for a site. The date
// disappears from every calendar at that site on the next fetch.
func CreateHolidayHandler(c *gin.Context) {
	var input models.HolidayInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	date, err := time.Parse(dateLayout, input.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date, expected YYYY-MM-DD"})
		return
	}

	holiday := models.Holiday{
		Date:     date,
		Name:     input.Name,
		School:   input.School,
		District: input.District,
	}
	if holiday.School == "" {
		holiday.School = c.GetString("school")
	}
	if holiday.District == "" {
		holiday.District = c.GetString("district")
	}

	if err := config.DB.Create(&holiday).Error; err != nil {
		slog.Error("Failed to create holiday", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create holiday"})
		return
	}
	c.JSON(http.StatusCreated, holiday)
}

// DeleteHolidayHandler removes a holiday; its date resumes normal
// materialization.
func DeleteHolidayHandler(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid holiday id"})
		return
	}

	result := config.DB.Delete(&models.Holiday{}, id)
	if result.Error != nil {
		slog.Error("Failed to delete holiday", "error", result.Error, "holiday_id", id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not delete holiday"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Holiday not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Holiday deleted"})
}
