package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers all user-related routes (including Auth).
func RegisterRoutes(g *gin.RouterGroup, h *UserHandler, authMiddleware, adminMiddleware gin.HandlerFunc) {
	// Public routes
	authGroup := g.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
		authGroup.GET("/verify-token", authMiddleware, h.VerifyToken)
	}

	// Authenticated routes
	g.GET("/me", authMiddleware, h.Me)
	g.PATCH("/users/:id", authMiddleware, h.Update)

	// Admin routes
	usersGroup := g.Group("/users")
	usersGroup.Use(authMiddleware, adminMiddleware)
	{
		usersGroup.GET("", h.List)
		usersGroup.GET("/:id", h.Get)
		usersGroup.PATCH("/:id/role", h.UpdateRole)
		usersGroup.DELETE("/:id", h.Delete)
	}
}
