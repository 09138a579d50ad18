// speddy/internal/scheduling/expand.go

package scheduling

import (
	"fmt"
	"sort"
	"time"

	"github.com/bstewart2255/speddy-sub006/models"
)

const dateKeyLayout = "2006-01-02"

// Expand materializes the calendar between start and end (inclusive):
// one occurrence per (template, matching date) pair, reusing a
// persisted instance where one exists and synthesizing a pending one
// where it does not. Holiday dates produce nothing at all, persisted
// rows included. Sessions the caller may not see and unscheduled
// templates (null day or time) are skipped entirely.
//
// The sessions slice may mix templates and dated instances, exactly as
// a single query against schedule_sessions returns them.
func Expand(caller Caller, sessions []models.ScheduleSession, holidays []models.Holiday, start, end time.Time) []Occurrence {
	if end.Before(start) {
		return nil
	}

	holidaySet := make(map[string]bool, len(holidays))
	for _, h := range holidays {
		holidaySet[h.Date.Format(dateKeyLayout)] = true
	}

	var templates []models.ScheduleSession
	persisted := make(map[string]*models.ScheduleSession)
	var orphans []*models.ScheduleSession // dated rows with no template in the set
	for i := range sessions {
		s := &sessions[i]
		if !Visible(caller, s) {
			continue
		}
		if s.IsTemplate() {
			if s.IsScheduled() {
				templates = append(templates, *s)
			}
			continue
		}
		persisted[instanceKey(s.StudentID, *s.SessionDate, s.StartTime)] = s
	}

	start = truncateToDay(start)
	end = truncateToDay(end)

	var out []Occurrence
	claimed := make(map[string]bool)
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		if holidaySet[day.Format(dateKeyLayout)] {
			continue
		}
		weekday := isoWeekday(day)
		for i := range templates {
			t := templates[i]
			if *t.DayOfWeek != weekday {
				continue
			}
			key := instanceKey(t.StudentID, day, t.StartTime)
			if row, ok := persisted[key]; ok {
				claimed[key] = true
				out = append(out, Occurrence{Date: day, Persisted: row})
				continue
			}
			out = append(out, Occurrence{Date: day, Pending: &PendingSession{Template: t, Date: day}})
		}
	}

	// Dated rows without a recurring template (one-off makeups, legacy
	// data) still belong on the calendar.
	for key, row := range persisted {
		if claimed[key] {
			continue
		}
		day := truncateToDay(*row.SessionDate)
		if day.Before(start) || day.After(end) || holidaySet[day.Format(dateKeyLayout)] {
			continue
		}
		orphans = append(orphans, row)
	}
	for _, row := range orphans {
		out = append(out, Occurrence{Date: truncateToDay(*row.SessionDate), Persisted: row})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		si, sj := out[i].Session(), out[j].Session()
		mi, mj := startMinutes(&si), startMinutes(&sj)
		if mi != mj {
			return mi < mj
		}
		return si.StudentID < sj.StudentID
	})
	return out
}

// instanceKey identifies an instance by its template identity plus
// date: (student, date, start time).
func instanceKey(studentID uint, date time.Time, start *string) string {
	s := ""
	if start != nil {
		if m, err := MinutesOf(*start); err == nil {
			s = FormatMinutes(m)
		}
	}
	return fmt.Sprintf("%d|%s|%s", studentID, date.Format(dateKeyLayout), s)
}

// isoWeekday maps time.Weekday onto the 1=Monday..5=Friday convention
// used by schedule_sessions (Sunday becomes 7, never stored).
func isoWeekday(day time.Time) int {
	wd := int(day.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func startMinutes(s *models.ScheduleSession) int {
	if s.StartTime == nil {
		return -1
	}
	m, err := MinutesOf(*s.StartTime)
	if err != nil {
		return -1
	}
	return m
}
