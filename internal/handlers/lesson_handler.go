// speddy/internal/handlers/lesson_handler.go

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/generative-ai-go/genai"

	"github.com/bstewart2255/speddy-sub006/config"
	"github.com/bstewart2255/speddy-sub006/models"
)

// extractJSON finds the first complete JSON object in a model
// response, cutting it out of markdown fences and any surrounding
// chatter.
func extractJSON(raw string) string {
	if jsonBlockStart := strings.Index(raw, "```json"); jsonBlockStart != -1 {
		raw = raw[jsonBlockStart+7:]
		if jsonBlockEnd := strings.Index(raw, "```"); jsonBlockEnd != -1 {
			raw = raw[:jsonBlockEnd]
		}
	} else if blockStart := strings.Index(raw, "```"); blockStart != -1 {
		raw = raw[blockStart+3:]
		if blockEnd := strings.Index(raw, "```"); blockEnd != -1 {
			raw = raw[:blockEnd]
		}
	}

	start := strings.Index(raw, "{")
	if start == -1 {
		return ""
	}
	end := strings.LastIndex(raw, "}")
	if end == -1 || end < start {
		return ""
	}

	potentialJSON := raw[start : end+1]
	if json.Valid([]byte(potentialJSON)) {
		return potentialJSON
	}

	slog.Warn("AI response contained a malformed or incomplete JSON object.", "snippet", potentialJSON)
	return ""
}

// LessonRequest binds a generation request for one session or group of
// date-aligned sessions.
type LessonRequest struct {
	StudentIDs      []uint `json:"studentIds" binding:"required,min=1"`
	DurationMinutes int    `json:"durationMinutes" binding:"required,min=5,max=120"`
	Focus           string `json:"focus"`
	WithWorksheet   bool   `json:"withWorksheet"`
}

// LessonPlan is the structured shape we require from the model.
type LessonPlan struct {
	Title        string   `json:"title"`
	Objective    string   `json:"objective"`
	WarmUp       string   `json:"warm_up"`
	MainActivity string   `json:"main_activity"`
	WrapUp       string   `json:"wrap_up"`
	Materials    []string `json:"materials"`
	Worksheet    *struct {
		Instructions string   `json:"instructions"`
		Problems     []string `json:"problems"`
	} `json:"worksheet,omitempty"`
}

// GenerateLessonHandler builds an IEP-goal-aware lesson plan for the
// selected students through the Gemini API. Generation is stateless;
// the plan goes back to the client, nothing is stored.
func GenerateLessonHandler(c *gin.Context) {
	caller := callerFromContext(c)

	if config.GeminiClient == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Lesson generation is not configured"})
		return
	}

	var input LessonRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	var students []models.Student
	if err := callerStudentsQuery(caller).Preload("Goals").
		Where("students.id IN ?", input.StudentIDs).
		Find(&students).Error; err != nil {
		slog.Error("Failed to load students for lesson generation", "error", err, "user_id", caller.UserID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not load students"})
		return
	}
	if len(students) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "No students found on your caseload"})
		return
	}

	prompt := constructLessonPrompt(students, input)
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	iter := config.GeminiClient.GenerateContentStream(ctx, genai.Text(prompt))
	var fullResponse strings.Builder

	for {
		resp, err := iter.Next()
		if err != nil {
			if errors.Is(err, io.EOF) || strings.Contains(err.Error(), "no more items in iterator") {
				break
			}
			slog.Error("Error during AI stream", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate lesson"})
			return
		}
		if resp != nil && len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
			for _, part := range resp.Candidates[0].Content.Parts {
				if txt, ok := part.(genai.Text); ok {
					fullResponse.WriteString(string(txt))
				}
			}
		}
	}

	cleanJSON := extractJSON(fullResponse.String())
	if cleanJSON == "" {
		slog.Error("AI returned invalid or incomplete data (no valid JSON found)", "response", fullResponse.String())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "The generator returned unusable data. Please try again."})
		return
	}

	var plan LessonPlan
	if err := json.Unmarshal([]byte(cleanJSON), &plan); err != nil {
		slog.Error("Failed to parse extracted JSON from AI", "json", cleanJSON, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to parse the generated lesson"})
		return
	}
	if plan.Title == "" && plan.MainActivity == "" {
		slog.Warn("AI JSON was valid but resulted in an empty lesson.", "json", cleanJSON)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "The generator produced an empty lesson. Please try again."})
		return
	}

	c.JSON(http.StatusOK, plan)
}

// constructLessonPrompt builds a strict generation task from the
// students' grade levels and open IEP goals.
func constructLessonPrompt(students []models.Student, input LessonRequest) string {
	var sb strings.Builder
	for _, s := range students {
		fmt.Fprintf(&sb, "- Student %s, grade %s.", s.Initials, s.GradeLevel)
		for _, g := range s.Goals {
			if g.MasteredAt == nil {
				fmt.Fprintf(&sb, ` Goal (%s): "%s".`, g.Area, g.Text)
			}
		}
		sb.WriteString("\n")
	}

	worksheetRule := "Omit the \"worksheet\" key."
	if input.WithWorksheet {
		worksheetRule = `Include a "worksheet" object with "instructions" and 5-8 "problems" matched to the goals.`
	}
	focus := input.Focus
	if focus == "" {
		focus = "the students' IEP goals"
	}

	return fmt.Sprintf(`
	**Task**: Generate a %d-minute small-group special-education lesson plan focused on %s, as a JSON object.

	**Strict rules**:
	1. **JSON only**: Respond with EXCLUSIVELY a valid JSON object. No text before or after, no markdown fences, no comments.
	2. **Keys**: "title", "objective", "warm_up", "main_activity", "wrap_up", "materials" (array of strings). %s
	3. **Audience**: Activities must be deliverable by one adult at a small table with minimal prep.
	4. Every activity must tie back to at least one of the listed goals.

	**Students**:
%s`, input.DurationMinutes, focus, worksheetRule, sb.String())
}
