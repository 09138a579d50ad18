// speddy/internal/scheduling/occurrence.go

package scheduling

import (
	"fmt"
	"time"

	"github.com/bstewart2255/speddy-sub006/models"
)

// Caller identifies who is asking. Every operation in this package
// takes it explicitly instead of reading ambient session state, so the
// same inputs always produce the same outputs.
type Caller struct {
	UserID uint
	Role   string
	School string
}

// Visible reports whether the caller may see (and therefore modify) a
// session row. Visibility is decided by role plus explicit assignment:
// providers see their own caseload, specialists and SEAs see sessions
// assigned to them, admins see everything their school-scoped query
// returned.
func Visible(caller Caller, s *models.ScheduleSession) bool {
	switch caller.Role {
	case models.RoleAdmin:
		return true
	case models.RoleSpecialist:
		return s.AssignedSpecialistID != nil && *s.AssignedSpecialistID == caller.UserID
	case models.RoleSea:
		return s.AssignedSeaID != nil && *s.AssignedSeaID == caller.UserID
	default:
		return s.ProviderID == caller.UserID
	}
}

// Occurrence is one dated calendar slot. Exactly one of Persisted and
// Pending is set: Persisted points at a stored instance row, Pending
// carries a template expanded for a date that has never been saved.
// Making this a tagged pair (instead of a magic id prefix) means
// persist-on-demand is an explicit conversion, not a string check.
type Occurrence struct {
	Date      time.Time
	Persisted *models.ScheduleSession
	Pending   *PendingSession

	// Derived at render time, never stored.
	Conflict bool
}

// PendingSession is a template expanded for one date but not yet saved.
// It becomes durable the first time any mutation touches it.
type PendingSession struct {
	Template models.ScheduleSession
	Date     time.Time
}

// Row builds the instance row that persisting this occurrence would
// insert: the template's fields stamped with the date, identity cleared
// so the database assigns a fresh one.
func (p *PendingSession) Row() models.ScheduleSession {
	row := p.Template
	row.ID = 0
	row.CreatedAt = time.Time{}
	row.UpdatedAt = time.Time{}
	d := p.Date
	row.SessionDate = &d
	return row
}

// ValidateInstanceDate reports why a template may not materialize an
// instance on the given date. The date must land on the template's
// weekday, and a holiday yields no session at all, so persisting one
// there is refused too.
func ValidateInstanceDate(template *models.ScheduleSession, date time.Time, holidays []models.Holiday) error {
	if template.DayOfWeek == nil || isoWeekday(date) != *template.DayOfWeek {
		return fmt.Errorf("date %s does not fall on this session's weekday", date.Format(dateKeyLayout))
	}
	key := date.Format(dateKeyLayout)
	for _, h := range holidays {
		if h.Date.Format(dateKeyLayout) == key {
			return fmt.Errorf("no session occurs on %s, it is a school holiday", key)
		}
	}
	return nil
}

// IsPending reports whether the occurrence has no stored row yet.
func (o *Occurrence) IsPending() bool {
	return o.Persisted == nil
}

// Session returns the session fields of the occurrence regardless of
// which side of the variant is populated.
func (o *Occurrence) Session() models.ScheduleSession {
	if o.Persisted != nil {
		return *o.Persisted
	}
	return o.Pending.Row()
}
