package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/bstewart2255/speddy-sub006/internal/middleware"
)

// SetupRoutes wires up all application routes.
func SetupRoutes(r *gin.Engine) {
	// Public routes first: login, registration.
	RegisterAuthRoutes(r)

	// Everything else requires a valid token.
	authRequired := r.Group("/")
	authRequired.Use(middleware.AuthMiddleware())
	{
		RegisterAPIRoutes(authRequired)
	}
}
