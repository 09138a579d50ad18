// speddy/cmd/server/main.go

package main

import (
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/bstewart2255/speddy-sub006/config"
	"github.com/bstewart2255/speddy-sub006/internal/handlers"
	"github.com/bstewart2255/speddy-sub006/internal/routes"
	"github.com/bstewart2255/speddy-sub006/models"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment as-is")
	}

	config.ConnectDB()
	config.ConnectRedis()
	config.InitJWT()
	if err := config.InitGoogleServices(); err != nil {
		// The app runs without generation; the lesson endpoint reports 503.
		slog.Warn("Gemini client not initialized", "error", err)
	}

	if err := config.DB.AutoMigrate(
		&models.Profile{},
		&models.Student{},
		&models.ScheduleSession{},
		&models.Holiday{},
		&models.CalendarEvent{},
		&models.IEPGoal{},
		&models.GoalProbe{},
	); err != nil {
		slog.Error("Auto-migration failed", "error", err)
		os.Exit(1)
	}

	go handlers.ScheduleHub.Run()

	r := gin.Default()
	routes.SetupRoutes(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	slog.Info("Starting server", "port", port)
	if err := r.Run(":" + port); err != nil {
		slog.Error("Server exited", "error", err)
		os.Exit(1)
	}
}
