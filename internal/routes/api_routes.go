// speddy/internal/routes/api_routes.go
package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/bstewart2255/speddy-sub006/internal/handlers"
	"github.com/bstewart2255/speddy-sub006/internal/middleware"
	"github.com/bstewart2255/speddy-sub006/models"
)

// RegisterAPIRoutes registers every authenticated API route.
func RegisterAPIRoutes(api *gin.RouterGroup) {
	apiGroup := api.Group("/api")
	{
		// Profile
		profile := apiGroup.Group("/profile")
		{
			profile.GET("", handlers.GetProfileHandler)
			profile.PUT("", handlers.UpdateProfileHandler)
		}

		// Materialized calendar: recurring sessions expanded over a range
		sessions := apiGroup.Group("/sessions")
		{
			sessions.GET("", handlers.GetSessionsHandler)
			sessions.GET("/unscheduled", handlers.ListUnscheduledSessionsHandler)
			sessions.POST("", middleware.RoleMiddleware(models.RoleProvider), handlers.CreateSessionHandler)
			sessions.PUT("/:id/move", handlers.MoveSessionHandler)
			sessions.POST("/:id/complete", handlers.CompleteSessionHandler)
			sessions.PUT("/:id/notes", handlers.UpdateSessionNotesHandler)
			sessions.DELETE("/:id", middleware.RoleMiddleware(models.RoleProvider), handlers.DeleteSessionHandler)

			sessions.POST("/group", handlers.GroupSessionsHandler)
			sessions.POST("/ungroup", handlers.UngroupSessionsHandler)
		}

		// Live calendar updates
		schedule := apiGroup.Group("/schedule")
		{
			schedule.GET("/ws", handlers.ScheduleWSEndpoint)
			schedule.GET("/export", handlers.ExportScheduleHandler)
		}

		// Holidays
		holidays := apiGroup.Group("/holidays")
		{
			holidays.GET("", handlers.ListHolidaysHandler)
			holidays.POST("", middleware.RoleMiddleware(models.RoleProvider, models.RoleAdmin), handlers.CreateHolidayHandler)
			holidays.DELETE("/:id", middleware.RoleMiddleware(models.RoleProvider, models.RoleAdmin), handlers.DeleteHolidayHandler)
		}

		// Dated calendar events
		events := apiGroup.Group("/events")
		{
			events.GET("", handlers.GetEventsHandler)
			events.POST("", handlers.CreateEventHandler)
			events.PUT("/:id", handlers.UpdateEventHandler)
			events.DELETE("/:id", handlers.DeleteEventHandler)
		}

		// Caseload
		students := apiGroup.Group("/students")
		{
			students.GET("", handlers.ListStudentsHandler)
			students.GET("/sea", handlers.GetSeaStudentsHandler)
			students.GET("/:id", handlers.GetStudentHandler)
			students.POST("", middleware.RoleMiddleware(models.RoleProvider), handlers.CreateStudentHandler)
			students.PUT("/:id", middleware.RoleMiddleware(models.RoleProvider), handlers.UpdateStudentHandler)
			students.DELETE("/:id", middleware.RoleMiddleware(models.RoleProvider), handlers.DeleteStudentHandler)
		}

		// IEP goals and progress monitoring
		goals := apiGroup.Group("/goals")
		{
			goals.GET("", handlers.ListGoalsHandler)
			goals.POST("", middleware.RoleMiddleware(models.RoleProvider), handlers.CreateGoalHandler)
			goals.DELETE("/:id", middleware.RoleMiddleware(models.RoleProvider), handlers.DeleteGoalHandler)
			goals.POST("/:id/progress", handlers.RecordProbeHandler)
		}

		// AI generation
		lessons := apiGroup.Group("/lessons")
		{
			lessons.POST("/generate", handlers.GenerateLessonHandler)
		}
	}
}
