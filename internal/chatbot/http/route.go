package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers the webhook endpoints. The webhook itself is
// called by the NLU agent, not by browsers, so it stays public.
func RegisterRoutes(g *gin.RouterGroup, h *Handler) {
	g.POST("/chatbot/message", h.Message)
	g.POST("/webhook", h.Webhook)
	g.POST("/webhook/userId", h.BindUser)
	g.POST("/webhook/logout", h.UnbindUser)
}
