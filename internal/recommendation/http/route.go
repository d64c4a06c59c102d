package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers the recommendation endpoints. They are read
// only and public: the chatbot calls them without a session.
func RegisterRoutes(g *gin.RouterGroup, h *Handler) {
	recs := g.Group("/recommendations")
	{
		recs.GET("/popular", h.Popular)
		recs.GET("/global", h.Global)
		recs.GET("/personalized/:userId", h.Personalized)
		recs.GET("/similar/:id", h.Similar)
		recs.GET("/hourly/:userId", h.Hourly)
		recs.GET("/times/:userId", h.Times)
		recs.GET("/price/:userId", h.Price)
		recs.GET("/friends/:userId", h.Friends)
		recs.GET("/ratings", h.Ratings)
		recs.GET("/promotions", h.Promotions)
		recs.GET("/weather", h.Weather)
		recs.GET("/ml/:userId", h.ML)
	}
}
