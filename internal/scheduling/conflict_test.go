package scheduling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bstewart2255/speddy-sub006/models"
)

func TestMarkConflictsSameStudentOverlap(t *testing.T) {
	// Two templates for the same student, 09:00-09:30 and 09:15-09:45,
	// expanded for the same Tuesday: both produced, both flagged.
	a := template(1, 100, 2, "09:00", "09:30")
	b := template(2, 100, 2, "09:15", "09:45")

	occs := Expand(owner, []models.ScheduleSession{a, b}, nil, tuesday1, tuesday1)
	require.Len(t, occs, 2)

	MarkConflicts(occs)
	assert.True(t, occs[0].Conflict)
	assert.True(t, occs[1].Conflict)
}

func TestMarkConflictsTouchingIntervalsAreValid(t *testing.T) {
	a := template(1, 100, 2, "09:00", "09:30")
	b := template(2, 100, 2, "09:30", "10:00")

	occs := Expand(owner, []models.ScheduleSession{a, b}, nil, tuesday1, tuesday1)
	require.Len(t, occs, 2)

	MarkConflicts(occs)
	assert.False(t, occs[0].Conflict)
	assert.False(t, occs[1].Conflict)
}

func TestMarkConflictsDistinctResourcesPass(t *testing.T) {
	// Different students, same owning provider but different deliverers:
	// no shared resource, no conflict.
	seaID := uint(42)
	a := template(1, 100, 2, "09:00", "09:30")
	a.DeliveredBy = models.DeliveredBySea
	a.AssignedSeaID = &seaID
	b := template(2, 101, 2, "09:00", "09:30")
	b.DeliveredBy = models.DeliveredBySpecialist
	specialistID := uint(43)
	b.AssignedSpecialistID = &specialistID

	occs := Expand(owner, []models.ScheduleSession{a, b}, nil, tuesday1, tuesday1)
	require.Len(t, occs, 2)

	MarkConflicts(occs)
	assert.False(t, occs[0].Conflict)
	assert.False(t, occs[1].Conflict)
}

func TestMarkConflictsSharedDeliverer(t *testing.T) {
	// Different students but the same SEA in the room: double-booked.
	seaID := uint(42)
	a := template(1, 100, 2, "09:00", "09:30")
	a.DeliveredBy = models.DeliveredBySea
	a.AssignedSeaID = &seaID
	b := template(2, 101, 2, "09:15", "09:45")
	b.DeliveredBy = models.DeliveredBySea
	b.AssignedSeaID = &seaID

	occs := Expand(owner, []models.ScheduleSession{a, b}, nil, tuesday1, tuesday1)
	require.Len(t, occs, 2)

	MarkConflicts(occs)
	assert.True(t, occs[0].Conflict)
	assert.True(t, occs[1].Conflict)
}

func TestMarkConflictsDifferentDays(t *testing.T) {
	a := template(1, 100, 2, "09:00", "09:30")
	b := template(2, 100, 3, "09:00", "09:30")

	occs := Expand(owner, []models.ScheduleSession{a, b}, nil, rangeStart, rangeEnd)
	MarkConflicts(occs)
	for _, o := range occs {
		assert.False(t, o.Conflict)
	}
}

func TestHasConflictGate(t *testing.T) {
	existing := []models.ScheduleSession{
		template(1, 100, 2, "09:00", "09:30"),
		template(2, 101, 2, "10:00", "10:30"),
	}

	// Moving student 100 onto 09:15 Tuesday collides with their own slot.
	p := Placement{StudentID: 100, DelivererID: providerID, DayOfWeek: 2, StartMinutes: 555, EndMinutes: 585}
	assert.True(t, HasConflict(p, existing))

	// The row being moved is excluded from comparison with itself, and
	// the provider's 10:00 slot does not overlap 09:15-09:45.
	p.SessionID = 1
	assert.False(t, HasConflict(p, existing))
}

func TestHasConflictExcludesSelfAndUnscheduled(t *testing.T) {
	tmpl := template(1, 100, 2, "09:00", "09:30")
	unscheduled := models.ScheduleSession{ProviderID: providerID, StudentID: 100}
	existing := []models.ScheduleSession{tmpl, unscheduled}

	// Nudging the slot by 15 minutes conflicts only with itself, which
	// is excluded, so the move is valid.
	p := Placement{SessionID: 1, StudentID: 100, DelivererID: providerID, DayOfWeek: 2, StartMinutes: 555, EndMinutes: 585}
	assert.False(t, HasConflict(p, existing))

	// Unscheduled rows always report no conflict.
	p.SessionID = 0
	p.StartMinutes, p.EndMinutes = 540, 570
	assert.True(t, HasConflict(p, existing)) // the template, not the unscheduled row
}

func TestHasConflictTouchingEndpoints(t *testing.T) {
	existing := []models.ScheduleSession{template(1, 100, 2, "09:00", "09:30")}
	p := Placement{StudentID: 100, DelivererID: providerID, DayOfWeek: 2, StartMinutes: 570, EndMinutes: 600}
	assert.False(t, HasConflict(p, existing))
}
