// speddy/internal/handlers/auth_handler.go
package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/bstewart2255/speddy-sub006/config"
	"github.com/bstewart2255/speddy-sub006/models"
)

const tokenLifetime = 24 * time.Hour

// LoginHandler verifies credentials and issues the auth cookie.
func LoginHandler(c *gin.Context) {
	var input models.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required"})
		return
	}

	var profile models.Profile
	if err := config.DB.Where("email = ?", input.Email).First(&profile).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(input.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	tokenStr, err := issueToken(profile.ID)
	if err != nil {
		slog.Error("Failed to sign JWT", "error", err, "user_id", profile.ID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not log in"})
		return
	}

	c.SetCookie("auth_token", tokenStr, int(tokenLifetime.Seconds()), "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{
		"token": tokenStr,
		"user": gin.H{
			"id":       profile.ID,
			"email":    profile.Email,
			"fullName": profile.FullName,
			"role":     profile.Role,
		},
	})
}

// RegisterHandler creates a staff account.
func RegisterHandler(c *gin.Context) {
	var input models.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid registration data"})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		slog.Error("Failed to hash password", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not register"})
		return
	}

	profile := models.Profile{
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
		FullName:     input.FullName,
		Role:         input.Role,
		School:       input.School,
		District:     input.District,
	}
	if profile.Role == "" {
		profile.Role = models.RoleProvider
	}

	if err := config.DB.Create(&profile).Error; err != nil {
		slog.Error("Failed to create profile", "error", err, "email", input.Email)
		c.JSON(http.StatusConflict, gin.H{"error": "An account with that email may already exist"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": profile.ID, "email": profile.Email})
}

// LogoutHandler clears the auth cookie and the cached profile.
func LogoutHandler(c *gin.Context) {
	if userID := c.GetUint("user_id"); userID != 0 && config.RDB != nil {
		config.RDB.Del(config.Ctx, fmt.Sprintf("profile:%d:data", userID))
	}
	c.SetCookie("auth_token", "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

func issueToken(userID uint) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(tokenLifetime).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(config.JwtKey)
}
