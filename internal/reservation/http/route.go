package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers reservation and availability routes.
func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, managerMiddleware gin.HandlerFunc) {
	// Public availability lookups
	g.GET("/availability", h.Availability)
	g.POST("/terrains/available", h.AvailableTerrains)
	g.GET("/reservations/confirm", h.Confirm)

	reservations := g.Group("/reservations")
	reservations.Use(authMiddleware)
	{
		reservations.POST("", h.Create)
		reservations.GET("", h.List)
		reservations.GET("/:id", h.Get)
		reservations.PATCH("/:id", h.Update)
		reservations.DELETE("/:id", h.Delete)
		reservations.POST("/:id/send-confirmation", h.SendConfirmation)
		reservations.GET("/stats", managerMiddleware, h.Stats)
	}
}
