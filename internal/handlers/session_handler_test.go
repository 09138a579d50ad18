// speddy/internal/handlers/session_handler_test.go

package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bstewart2255/speddy-sub006/models"
)

// Completing a recurring session materializes an instance for the
// given date, but only for dates the expander would produce: the
// template's weekday, and never a holiday.
func TestCompleteSessionGuardsMaterializationDate(t *testing.T) {
	db := newTestDB(t)
	tpl := seedTemplate(t, db, testProvider.UserID, 100, 2, "09:00", "09:30") // Tuesdays
	require.NoError(t, db.Create(&models.Holiday{
		Date: time.Date(2026, time.January, 6, 0, 0, 0, 0, time.UTC),
		Name: "Staff development", District: "USD",
	}).Error)
	r := testEngine(testProvider, "USD")

	path := "/api/sessions/" + sessionIDs(tpl)[0] + "/complete"

	// 2026-01-07 is a Wednesday; the Tuesday template never occurs there.
	w := postJSON(t, r, path, MutateRequest{Date: "2026-01-07"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeBody(t, w)["error"], "weekday")

	// 2026-01-06 is a Tuesday, but a district holiday suppresses it.
	w = postJSON(t, r, path, MutateRequest{Date: "2026-01-06"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeBody(t, w)["error"], "holiday")

	var count int64
	require.NoError(t, db.Model(&models.ScheduleSession{}).
		Where("session_date IS NOT NULL").Count(&count).Error)
	assert.Equal(t, int64(0), count, "no instance may be stored for a refused date")

	// The following Tuesday is an ordinary school day.
	w = postJSON(t, r, path, MutateRequest{Date: "2026-01-13"})
	require.Equal(t, http.StatusOK, w.Code)

	var instance models.ScheduleSession
	require.NoError(t, db.
		Where("session_date IS NOT NULL AND student_id = ?", 100).
		First(&instance).Error)
	assert.NotEqual(t, tpl.ID, instance.ID)
	require.NotNil(t, instance.CompletedAt)
	require.NotNil(t, instance.CompletedBy)
	assert.Equal(t, testProvider.UserID, *instance.CompletedBy)
}
