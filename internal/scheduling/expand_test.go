package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/bstewart2255/speddy-sub006/models"
)

const providerID = uint(7)

var owner = Caller{UserID: providerID, Role: models.RoleProvider}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func template(id, student uint, day int, start, end string) models.ScheduleSession {
	return models.ScheduleSession{
		Model:      gorm.Model{ID: id},
		ProviderID: providerID,
		StudentID:  student,
		DayOfWeek:  intPtr(day),
		StartTime:  strPtr(start),
		EndTime:    strPtr(end),
	}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Two-week range Mon 2026-01-05 .. Fri 2026-01-16 contains exactly two
// Tuesdays: Jan 6 and Jan 13.
var (
	rangeStart = day(2026, time.January, 5)
	rangeEnd   = day(2026, time.January, 16)
	tuesday1   = day(2026, time.January, 6)
	tuesday2   = day(2026, time.January, 13)
)

func TestExpandWeeklyTemplate(t *testing.T) {
	sessions := []models.ScheduleSession{template(1, 100, 2, "09:00", "09:30")}

	occs := Expand(owner, sessions, nil, rangeStart, rangeEnd)

	require.Len(t, occs, 2)
	assert.True(t, occs[0].Date.Equal(tuesday1))
	assert.True(t, occs[1].Date.Equal(tuesday2))
	for _, o := range occs {
		assert.True(t, o.IsPending(), "nothing was persisted yet")
		assert.Equal(t, uint(100), o.Session().StudentID)
	}
}

func TestExpandSkipsHolidays(t *testing.T) {
	sessions := []models.ScheduleSession{template(1, 100, 2, "09:00", "09:30")}
	holidays := []models.Holiday{{Date: tuesday1, Name: "Staff development"}}

	occs := Expand(owner, sessions, holidays, rangeStart, rangeEnd)

	require.Len(t, occs, 1)
	assert.True(t, occs[0].Date.Equal(tuesday2))
}

func TestExpandHolidaySuppressesPersistedRows(t *testing.T) {
	inst := template(2, 100, 2, "09:00", "09:30")
	d := tuesday1
	inst.SessionDate = &d
	sessions := []models.ScheduleSession{template(1, 100, 2, "09:00", "09:30"), inst}
	holidays := []models.Holiday{{Date: tuesday1}}

	occs := Expand(owner, sessions, holidays, rangeStart, rangeEnd)

	require.Len(t, occs, 1)
	assert.True(t, occs[0].Date.Equal(tuesday2))
}

func TestExpandUnscheduledTemplateNeverExpands(t *testing.T) {
	unplaced := models.ScheduleSession{
		Model:      gorm.Model{ID: 3},
		ProviderID: providerID,
		StudentID:  100,
	}
	noTime := template(4, 101, 2, "09:00", "09:30")
	noTime.StartTime = nil

	occs := Expand(owner, []models.ScheduleSession{unplaced, noTime}, nil, rangeStart, rangeEnd)
	assert.Empty(t, occs)
}

func TestExpandReusesPersistedInstance(t *testing.T) {
	tmpl := template(1, 100, 2, "09:00", "09:30")
	occs := Expand(owner, []models.ScheduleSession{tmpl}, nil, rangeStart, rangeEnd)
	require.Len(t, occs, 2)
	require.True(t, occs[0].IsPending())

	// Persist the first Tuesday the way a mutation would.
	row := occs[0].Pending.Row()
	row.ID = 50

	// Re-expanding must yield the stored row for that date, never a
	// duplicate pending copy.
	occs = Expand(owner, []models.ScheduleSession{tmpl, row}, nil, rangeStart, rangeEnd)
	require.Len(t, occs, 2)
	require.False(t, occs[0].IsPending())
	assert.Equal(t, uint(50), occs[0].Persisted.ID)
	assert.True(t, occs[1].IsPending())
}

func TestExpandIncludesOneOffInstances(t *testing.T) {
	// A dated makeup session with no recurring template still shows up.
	makeup := template(9, 102, 4, "13:00", "13:30")
	d := day(2026, time.January, 8) // Thursday
	makeup.SessionDate = &d

	occs := Expand(owner, []models.ScheduleSession{makeup}, nil, rangeStart, rangeEnd)
	require.Len(t, occs, 1)
	assert.False(t, occs[0].IsPending())
	assert.Equal(t, uint(9), occs[0].Persisted.ID)
}

func TestExpandInvertedRange(t *testing.T) {
	sessions := []models.ScheduleSession{template(1, 100, 2, "09:00", "09:30")}
	assert.Empty(t, Expand(owner, sessions, nil, rangeEnd, rangeStart))
}

func TestExpandFiltersByAssignment(t *testing.T) {
	mine := template(1, 100, 2, "09:00", "09:30")
	seaID := uint(42)
	mine.DeliveredBy = models.DeliveredBySea
	mine.AssignedSeaID = &seaID
	other := template(2, 101, 2, "10:00", "10:30")

	sea := Caller{UserID: seaID, Role: models.RoleSea}
	occs := Expand(sea, []models.ScheduleSession{mine, other}, nil, rangeStart, rangeEnd)

	require.Len(t, occs, 2) // both Tuesdays of the assigned slot only
	for _, o := range occs {
		assert.Equal(t, uint(100), o.Session().StudentID)
	}
}

func TestExpandSortsByDateThenTime(t *testing.T) {
	a := template(1, 100, 2, "10:00", "10:30")
	b := template(2, 101, 2, "09:00", "09:30")

	occs := Expand(owner, []models.ScheduleSession{a, b}, nil, rangeStart, rangeEnd)
	require.Len(t, occs, 4)
	assert.Equal(t, uint(101), occs[0].Session().StudentID)
	assert.Equal(t, uint(100), occs[1].Session().StudentID)
	assert.True(t, occs[1].Date.Equal(occs[0].Date))
	assert.True(t, occs[2].Date.After(occs[1].Date))
}

func TestValidateInstanceDate(t *testing.T) {
	tpl := template(1, 100, 2, "09:00", "09:30")

	assert.NoError(t, ValidateInstanceDate(&tpl, tuesday1, nil))

	wednesday := day(2026, time.January, 7)
	err := ValidateInstanceDate(&tpl, wednesday, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "weekday")

	holidays := []models.Holiday{{Date: tuesday1, Name: "Staff development"}}
	err = ValidateInstanceDate(&tpl, tuesday1, holidays)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "holiday")

	// The other Tuesday is unaffected by the holiday.
	assert.NoError(t, ValidateInstanceDate(&tpl, tuesday2, holidays))

	unscheduled := models.ScheduleSession{ProviderID: providerID, StudentID: 100}
	assert.Error(t, ValidateInstanceDate(&unscheduled, tuesday1, nil))
}
