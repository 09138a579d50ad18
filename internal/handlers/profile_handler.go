package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bstewart2255/speddy-sub006/config"
	"github.com/bstewart2255/speddy-sub006/models"
)

// GetProfileHandler returns the current user. The middleware already
// loaded everything into the context; no extra query needed.
func GetProfileHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"id":       c.GetUint("user_id"),
		"email":    c.GetString("email"),
		"fullName": c.GetString("userName"),
		"role":     c.GetString("role"),
		"school":   c.GetString("school"),
		"district": c.GetString("district"),
	})
}

// ProfileUpdateInput binds the editable profile fields.
type ProfileUpdateInput struct {
	FullName string `json:"fullName"`
	School   string `json:"school"`
	District string `json:"district"`
}

// UpdateProfileHandler updates the caller's own profile and drops the
// cached copy so the next request sees the change.
func UpdateProfileHandler(c *gin.Context) {
	userID := c.GetUint("user_id")

	var input ProfileUpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	var profile models.Profile
	if err := config.DB.First(&profile, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
		return
	}

	if input.FullName != "" {
		profile.FullName = input.FullName
	}
	if input.School != "" {
		profile.School = input.School
	}
	if input.District != "" {
		profile.District = input.District
	}

	if err := config.DB.Save(&profile).Error; err != nil {
		slog.Error("Failed to update profile", "error", err, "user_id", userID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not update profile"})
		return
	}

	if config.RDB != nil {
		config.RDB.Del(config.Ctx, fmt.Sprintf("profile:%d:data", userID))
	}
	c.JSON(http.StatusOK, profile)
}
