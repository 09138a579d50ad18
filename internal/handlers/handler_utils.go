package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/bstewart2255/speddy-sub006/config"
	"github.com/bstewart2255/speddy-sub006/internal/scheduling"
	"github.com/bstewart2255/speddy-sub006/models"
)

const dateLayout = "2006-01-02"

// callerFromContext builds the explicit caller identity every
// scheduling operation takes, from what the auth middleware loaded.
func callerFromContext(c *gin.Context) scheduling.Caller {
	return scheduling.Caller{
		UserID: c.GetUint("user_id"),
		Role:   c.GetString("role"),
		School: c.GetString("school"),
	}
}

// callerSessionsQuery scopes schedule_sessions to what the caller may
// see: providers their own caseload, specialists and SEAs the rows
// assigned to them, admins everything owned by providers at their
// school.
func callerSessionsQuery(caller scheduling.Caller) *gorm.DB {
	q := config.DB.Model(&models.ScheduleSession{})
	switch caller.Role {
	case models.RoleAdmin:
		return q.Where("provider_id IN (?)",
			config.DB.Model(&models.Profile{}).Select("id").Where("school = ?", caller.School))
	case models.RoleSpecialist:
		return q.Where("assigned_specialist_id = ?", caller.UserID)
	case models.RoleSea:
		return q.Where("assigned_sea_id = ?", caller.UserID)
	default:
		return q.Where("provider_id = ?", caller.UserID)
	}
}

// callerHolidaysQuery scopes holidays to the caller's site. A row with
// an empty school applies district-wide.
func callerHolidaysQuery(c *gin.Context) *gorm.DB {
	q := config.DB.Model(&models.Holiday{})
	school := c.GetString("school")
	district := c.GetString("district")
	if school == "" && district == "" {
		return q
	}
	return q.Where("school = ? OR (school = '' AND district = ?)", school, district)
}

func parseDateParam(c *gin.Context, name string) (time.Time, bool) {
	v := c.Query(name)
	if v == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
