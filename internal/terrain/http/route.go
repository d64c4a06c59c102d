package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers terrain routes.
// managerMiddleware must allow gerant and admin; adminMiddleware admin only.
func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, managerMiddleware, adminMiddleware gin.HandlerFunc) {
	terrains := g.Group("/terrains")
	{
		terrains.GET("", h.List)
		terrains.GET("/:id", h.Get)
		terrains.GET("/:id/image", h.GetImage)

		terrains.POST("", authMiddleware, managerMiddleware, h.Create)
		terrains.PATCH("/:id", authMiddleware, managerMiddleware, h.Update)
		terrains.POST("/:id/image", authMiddleware, managerMiddleware, h.UploadImage)
		terrains.DELETE("/:id", authMiddleware, adminMiddleware, h.Delete)
	}
}
