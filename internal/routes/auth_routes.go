package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/bstewart2255/speddy-sub006/internal/handlers"
)

// RegisterAuthRoutes registers the public authentication routes. No
// token middleware applies here.
func RegisterAuthRoutes(r *gin.Engine) {
	r.POST("/login", handlers.LoginHandler)
	r.POST("/register", handlers.RegisterHandler)
	r.GET("/logout", handlers.LogoutHandler)
}
