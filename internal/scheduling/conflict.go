// speddy/internal/scheduling/conflict.go

package scheduling

import (
	"github.com/bstewart2255/speddy-sub006/models"
)

// MarkConflicts sets the Conflict flag on every occurrence that shares
// a date and a student, or a date and a deliverer, with another
// occurrence whose [start, end) interval overlaps its own. Both
// members of an overlapping pair are flagged; the UI marks both.
// Occurrences whose times fail to parse are left unflagged.
func MarkConflicts(occs []Occurrence) {
	type span struct {
		idx       int
		date      string
		student   uint
		deliverer uint
		start     int
		end       int
	}
	spans := make([]span, 0, len(occs))
	for i := range occs {
		s := occs[i].Session()
		if !s.IsScheduled() {
			continue
		}
		st, err := MinutesOf(*s.StartTime)
		if err != nil {
			continue
		}
		en, err := MinutesOf(*s.EndTime)
		if err != nil {
			continue
		}
		spans = append(spans, span{
			idx:       i,
			date:      occs[i].Date.Format(dateKeyLayout),
			student:   s.StudentID,
			deliverer: s.DelivererID(),
			start:     st,
			end:       en,
		})
	}

	for i := 0; i < len(spans); i++ {
		for j := i + 1; j < len(spans); j++ {
			a, b := spans[i], spans[j]
			if a.date != b.date {
				continue
			}
			if a.student != b.student && a.deliverer != b.deliverer {
				continue
			}
			if Overlaps(a.start, a.end, b.start, b.end) {
				occs[a.idx].Conflict = true
				occs[b.idx].Conflict = true
			}
		}
	}
}

// Placement is a proposed slot for a session, checked before a
// drag-and-drop move is persisted.
type Placement struct {
	SessionID    uint // existing row to exclude from comparison, 0 for new
	StudentID    uint
	DelivererID  uint
	DayOfWeek    int
	StartMinutes int
	EndMinutes   int
}

// HasConflict reports whether placing the slot would overlap an
// existing session on the same weekday for the same student or the
// same deliverer. Unscheduled rows never conflict. An invalid target
// aborts the move; the caller leaves state unchanged.
func HasConflict(p Placement, existing []models.ScheduleSession) bool {
	for i := range existing {
		s := &existing[i]
		if s.ID == p.SessionID || !s.IsScheduled() {
			continue
		}
		if *s.DayOfWeek != p.DayOfWeek {
			continue
		}
		if s.StudentID != p.StudentID && s.DelivererID() != p.DelivererID {
			continue
		}
		st, err := MinutesOf(*s.StartTime)
		if err != nil {
			continue
		}
		en, err := MinutesOf(*s.EndTime)
		if err != nil {
			continue
		}
		if Overlaps(p.StartMinutes, p.EndMinutes, st, en) {
			return true
		}
	}
	return false
}
