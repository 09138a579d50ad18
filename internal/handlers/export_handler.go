// speddy/internal/handlers/export_handler.go

package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"

	"github.com/divan/num2words"
	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/bstewart2255/speddy-sub006/internal/scheduling"
	"github.com/bstewart2255/speddy-sub006/models"
)

var weekdayNames = map[int]string{
	1: "Monday", 2: "Tuesday", 3: "Wednesday", 4: "Thursday", 5: "Friday",
}

// ExportScheduleHandler downloads the caller's weekly schedule as an
// .xlsx workbook: the recurring grid on one sheet, per-student service
// minutes on a second, with totals spelled out the way IEP paperwork
// states them ("three hundred (300) minutes").
func ExportScheduleHandler(c *gin.Context) {
	caller := callerFromContext(c)

	var sessions []models.ScheduleSession
	if err := callerSessionsQuery(caller).
		Preload("Student").
		Where("session_date IS NULL").
		Order("day_of_week asc, start_time asc").
		Find(&sessions).Error; err != nil {
		slog.Error("Failed to load sessions for export", "error", err, "user_id", caller.UserID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not export schedule"})
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	const grid = "Weekly Schedule"
	f.SetSheetName("Sheet1", grid)
	headers := []string{"Day", "Start", "End", "Student", "Delivered by", "Group"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(grid, cell, h)
	}

	row := 2
	for i := range sessions {
		s := &sessions[i]
		if !s.IsScheduled() {
			continue
		}
		if _, err := scheduling.DurationMinutes(*s.StartTime, *s.EndTime); err != nil {
			continue
		}

		initials := ""
		if s.Student != nil {
			initials = s.Student.Initials
		}
		groupName := ""
		if s.GroupName != nil {
			groupName = *s.GroupName
		}
		values := []interface{}{
			weekdayNames[*s.DayOfWeek], *s.StartTime, *s.EndTime, initials, s.DeliveredBy, groupName,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			f.SetCellValue(grid, cell, v)
		}
		row++
	}

	const minutesSheet = "Service Minutes"
	f.NewSheet(minutesSheet)
	for i, h := range []string{"Student", "Scheduled weekly", "Mandated weekly", "Stated as"} {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(minutesSheet, cell, h)
	}
	row = 2
	for _, r := range serviceMinuteRows(sessions) {
		values := []interface{}{r.Initials, r.Scheduled, r.Mandated, spellMinutes(r.Scheduled)}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			f.SetCellValue(minutesSheet, cell, v)
		}
		row++
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", `attachment; filename="weekly-schedule.xlsx"`)
	if _, err := f.WriteTo(c.Writer); err != nil {
		slog.Error("Failed to stream schedule workbook", "error", err, "user_id", caller.UserID)
	}
}

type serviceMinuteRow struct {
	StudentID uint
	Initials  string
	Scheduled int
	Mandated  int
}

// serviceMinuteRows totals the scheduled weekly minutes per student
// across the recurring templates, in a stable order (initials, then
// student id) so two exports of the same schedule are identical.
func serviceMinuteRows(sessions []models.ScheduleSession) []serviceMinuteRow {
	minutesByStudent := make(map[uint]int)
	studentByID := make(map[uint]*models.Student)
	for i := range sessions {
		s := &sessions[i]
		if s.Student != nil {
			studentByID[s.StudentID] = s.Student
		}
		if !s.IsScheduled() {
			continue
		}
		dur, err := scheduling.DurationMinutes(*s.StartTime, *s.EndTime)
		if err != nil {
			continue
		}
		minutesByStudent[s.StudentID] += dur
	}

	rows := make([]serviceMinuteRow, 0, len(minutesByStudent))
	for studentID, minutes := range minutesByStudent {
		r := serviceMinuteRow{
			StudentID: studentID,
			Initials:  fmt.Sprintf("#%d", studentID),
			Scheduled: minutes,
		}
		if student := studentByID[studentID]; student != nil {
			r.Initials = student.Initials
			r.Mandated = student.SessionsPerWeek * student.MinutesPerSession
		}
		rows = append(rows, r)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Initials != rows[j].Initials {
			return rows[i].Initials < rows[j].Initials
		}
		return rows[i].StudentID < rows[j].StudentID
	})
	return rows
}

// spellMinutes renders a minute total the way service summaries state
// it: "three hundred (300) minutes per week".
func spellMinutes(minutes int) string {
	words := strings.TrimSpace(num2words.Convert(minutes))
	return fmt.Sprintf("%s (%d) minutes per week", words, minutes)
}
