// speddy/internal/scheduling/group.go

package scheduling

import (
	"errors"
	"hash/fnv"

	"github.com/google/uuid"

	"github.com/bstewart2255/speddy-sub006/models"
)

// ErrTooFewSessions is returned when a grouping request resolves to
// fewer than two authorized recurring sessions.
var ErrTooFewSessions = errors.New("grouping requires at least two authorized recurring sessions")

// ResolveTemplate finds the recurring template an instance descends
// from: same student, same weekday, same start time, null session
// date. Returns nil when none matches (legacy data).
func ResolveTemplate(inst *models.ScheduleSession, templates []models.ScheduleSession) *models.ScheduleSession {
	if inst.IsTemplate() {
		// Already a template; resolution is the identity.
		for i := range templates {
			if templates[i].ID == inst.ID {
				return &templates[i]
			}
		}
		return nil
	}
	if inst.DayOfWeek == nil || inst.StartTime == nil {
		return nil
	}
	want, err := MinutesOf(*inst.StartTime)
	if err != nil {
		return nil
	}
	for i := range templates {
		t := &templates[i]
		if !t.IsTemplate() || !t.IsScheduled() {
			continue
		}
		if t.StudentID != inst.StudentID || *t.DayOfWeek != *inst.DayOfWeek {
			continue
		}
		got, err := MinutesOf(*t.StartTime)
		if err != nil || got != want {
			continue
		}
		return t
	}
	return nil
}

// GroupPlan is the reconciled outcome of a grouping request: which
// templates receive the group label, and which selections were skipped
// (unauthorized or unresolvable). The caller applies TemplateIDs in
// one transaction and logs the skips.
type GroupPlan struct {
	GroupID     string
	GroupName   string
	TemplateIDs []uint
	SkippedIDs  []uint
}

// PlanGrouping resolves each selected instance to its template and
// plans one group across all of them. Unauthorized or unresolved
// selections are skipped rather than failing the call, but fewer than
// two surviving templates fails the whole operation. When every
// surviving template already carries the same group id the plan reuses
// it, so regrouping the same set is idempotent: one group, not two.
func PlanGrouping(caller Caller, selected []models.ScheduleSession, templates []models.ScheduleSession, groupName string) (*GroupPlan, error) {
	plan := &GroupPlan{GroupName: groupName}

	seen := make(map[uint]bool)
	var resolved []*models.ScheduleSession
	for i := range selected {
		t := ResolveTemplate(&selected[i], templates)
		if t == nil || !Visible(caller, t) {
			plan.SkippedIDs = append(plan.SkippedIDs, selected[i].ID)
			continue
		}
		if seen[t.ID] {
			continue
		}
		seen[t.ID] = true
		resolved = append(resolved, t)
	}

	if len(resolved) < 2 {
		return nil, ErrTooFewSessions
	}

	sharedID := ""
	for i, t := range resolved {
		if t.GroupID == nil {
			sharedID = ""
			break
		}
		if i == 0 {
			sharedID = *t.GroupID
		} else if *t.GroupID != sharedID {
			sharedID = ""
			break
		}
	}
	if sharedID == "" {
		sharedID = uuid.NewString()
	}
	plan.GroupID = sharedID
	for _, t := range resolved {
		plan.TemplateIDs = append(plan.TemplateIDs, t.ID)
	}
	return plan, nil
}

// UngroupPlan mirrors GroupPlan: templates whose group fields get
// cleared, plus instance rows to clear directly where no template
// exists any more. Fallback rows lose recurrence, which the caller
// logs as a warning.
type UngroupPlan struct {
	TemplateIDs []uint
	FallbackIDs []uint
	SkippedIDs  []uint
}

// PlanUngrouping resolves each selection to its template and clears
// the group there, so the whole recurring series is ungrouped.
// Ungrouping a template that is not in any group is a no-op, not an
// error.
func PlanUngrouping(caller Caller, selected []models.ScheduleSession, templates []models.ScheduleSession) *UngroupPlan {
	plan := &UngroupPlan{}
	seen := make(map[uint]bool)
	for i := range selected {
		sel := &selected[i]
		t := ResolveTemplate(sel, templates)
		if t == nil {
			if sel.ID != 0 && Visible(caller, sel) {
				plan.FallbackIDs = append(plan.FallbackIDs, sel.ID)
			} else {
				plan.SkippedIDs = append(plan.SkippedIDs, sel.ID)
			}
			continue
		}
		if !Visible(caller, t) {
			plan.SkippedIDs = append(plan.SkippedIDs, sel.ID)
			continue
		}
		if t.GroupID == nil || seen[t.ID] {
			continue
		}
		seen[t.ID] = true
		plan.TemplateIDs = append(plan.TemplateIDs, t.ID)
	}
	return plan
}

// groupPalette is the fixed set of display colors. Cosmetic only.
var groupPalette = []string{
	"#4e79a7", "#f28e2b", "#e15759", "#76b7b2",
	"#59a14f", "#edc948", "#b07aa1", "#9c755f",
}

// GroupColor maps a group id onto the palette. Same id, same color,
// across renders and reloads.
func GroupColor(groupID string) string {
	h := fnv.New32a()
	h.Write([]byte(groupID))
	return groupPalette[h.Sum32()%uint32(len(groupPalette))]
}
