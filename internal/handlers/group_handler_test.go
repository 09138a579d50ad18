// speddy/internal/handlers/group_handler_test.go

package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/bstewart2255/speddy-sub006/config"
	"github.com/bstewart2255/speddy-sub006/internal/scheduling"
	"github.com/bstewart2255/speddy-sub006/models"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

// newTestDB swaps config.DB for a fresh in-memory database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Profile{},
		&models.Student{},
		&models.ScheduleSession{},
		&models.Holiday{},
	))
	config.DB = db
	return db
}

// testEngine builds a router whose auth layer is replaced by a fixed
// identity, the way the middleware would have populated the context.
func testEngine(caller scheduling.Caller, district string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", caller.UserID)
		c.Set("role", caller.Role)
		c.Set("school", caller.School)
		c.Set("district", district)
		c.Next()
	})
	sessions := r.Group("/api/sessions")
	sessions.POST("/group", GroupSessionsHandler)
	sessions.POST("/ungroup", UngroupSessionsHandler)
	sessions.POST("/:id/complete", CompleteSessionHandler)
	return r
}

func postJSON(t *testing.T, r *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	buf, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(buf))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func seedTemplate(t *testing.T, db *gorm.DB, provider, student uint, day int, start, end string) models.ScheduleSession {
	t.Helper()
	s := models.ScheduleSession{
		ProviderID:  provider,
		StudentID:   student,
		DayOfWeek:   intPtr(day),
		StartTime:   strPtr(start),
		EndTime:     strPtr(end),
		DeliveredBy: models.DeliveredByProvider,
	}
	require.NoError(t, db.Create(&s).Error)
	return s
}

func sessionIDs(sessions ...models.ScheduleSession) []string {
	ids := make([]string, 0, len(sessions))
	for _, s := range sessions {
		ids = append(ids, strconv.FormatUint(uint64(s.ID), 10))
	}
	return ids
}

var testProvider = scheduling.Caller{UserID: 7, Role: models.RoleProvider, School: "Lincoln"}

func TestGroupSessionsAppliesSharedLabel(t *testing.T) {
	db := newTestDB(t)
	a := seedTemplate(t, db, testProvider.UserID, 100, 2, "09:00", "09:30")
	b := seedTemplate(t, db, testProvider.UserID, 101, 2, "09:00", "09:30")
	r := testEngine(testProvider, "USD")

	w := postJSON(t, r, "/api/sessions/group", GroupRequest{
		SessionIDs: sessionIDs(a, b),
		GroupName:  "Reading group",
	})

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.NotEmpty(t, body["groupId"])
	assert.Equal(t, "Reading group", body["groupName"])
	assert.Contains(t, body["groupColor"], "#")

	var rows []models.ScheduleSession
	require.NoError(t, db.Order("id asc").Find(&rows).Error)
	require.Len(t, rows, 2)
	require.NotNil(t, rows[0].GroupID)
	require.NotNil(t, rows[1].GroupID)
	assert.Equal(t, *rows[0].GroupID, *rows[1].GroupID)
	assert.Equal(t, "Reading group", *rows[0].GroupName)
}

func TestGroupSessionsRejectsSingleSelection(t *testing.T) {
	db := newTestDB(t)
	a := seedTemplate(t, db, testProvider.UserID, 100, 2, "09:00", "09:30")
	r := testEngine(testProvider, "USD")

	w := postJSON(t, r, "/api/sessions/group", GroupRequest{SessionIDs: sessionIDs(a)})

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeBody(t, w)["error"], "at least two")
}

func TestUngroupSessionsClearsTemplates(t *testing.T) {
	db := newTestDB(t)
	a := seedTemplate(t, db, testProvider.UserID, 100, 2, "09:00", "09:30")
	b := seedTemplate(t, db, testProvider.UserID, 101, 2, "09:00", "09:30")
	require.NoError(t, db.Model(&models.ScheduleSession{}).
		Where("id IN ?", []uint{a.ID, b.ID}).
		Updates(map[string]interface{}{"group_id": "g-old", "group_name": "Old group"}).Error)
	r := testEngine(testProvider, "USD")

	w := postJSON(t, r, "/api/sessions/ungroup", GroupRequest{SessionIDs: sessionIDs(a, b)})

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, float64(2), body["ungrouped"])
	assert.Equal(t, float64(0), body["cleared"])

	var rows []models.ScheduleSession
	require.NoError(t, db.Find(&rows).Error)
	for _, row := range rows {
		assert.Nil(t, row.GroupID)
		assert.Nil(t, row.GroupName)
	}
}

func TestGroupSessionsAdminScopedToOwnSchool(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Create(&models.Profile{
		Model: gorm.Model{ID: 9}, Email: "south@example.com", PasswordHash: "x",
		Role: models.RoleProvider, School: "South",
	}).Error)
	a := seedTemplate(t, db, 9, 100, 2, "09:00", "09:30")
	b := seedTemplate(t, db, 9, 101, 2, "09:00", "09:30")

	admin := scheduling.Caller{UserID: 1, Role: models.RoleAdmin, School: "North"}
	r := testEngine(admin, "USD")

	w := postJSON(t, r, "/api/sessions/group", GroupRequest{
		SessionIDs: sessionIDs(a, b),
		GroupName:  "Cross-school",
	})

	require.Equal(t, http.StatusBadRequest, w.Code)

	var rows []models.ScheduleSession
	require.NoError(t, db.Find(&rows).Error)
	for _, row := range rows {
		assert.Nil(t, row.GroupID, "another school's templates must stay untouched")
	}
}
