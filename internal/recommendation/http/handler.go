package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/terrabook/pitch-booking-backend/internal/pkg/request"
	"github.com/terrabook/pitch-booking-backend/internal/recommendation"
)

// Handler serves the recommendation endpoints. These back both the web
// frontend and the chatbot's recommendation intents.
type Handler struct {
	service recommendation.Service
}

func NewHandler(service recommendation.Service) *Handler {
	return &Handler{service: service}
}

// byUserIDRequest binds the :userId path parameter.
type byUserIDRequest struct {
	UserID string `uri:"userId" binding:"required,uuid"`
}

func (h *Handler) Popular(c *gin.Context) {
	recs, err := h.service.Popular(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load popular terrains"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"terrains": recs})
}

func (h *Handler) Global(c *gin.Context) {
	recs, err := h.service.Global(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load global recommendations"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"terrains": recs})
}

func (h *Handler) Personalized(c *gin.Context) {
	var req byUserIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	p, err := h.service.Personalized(c.Request.Context(), req.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load personalized recommendations"})
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) Similar(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid terrain id"})
		return
	}

	recs, err := h.service.SimilarToTerrain(c.Request.Context(), req.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load similar terrains"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"terrains": recs})
}

func (h *Handler) Hourly(c *gin.Context) {
	var req byUserIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	recs, err := h.service.Hourly(c.Request.Context(), req.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load hourly recommendations"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"recommendations": recs})
}

func (h *Handler) Times(c *gin.Context) {
	var req byUserIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	times, err := h.service.PopularTimes(c.Request.Context(), req.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load popular times"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user_id": req.UserID, "popular_times": times})
}

func (h *Handler) Price(c *gin.Context) {
	var req byUserIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	advice, err := h.service.PriceBand(c.Request.Context(), req.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load price recommendations"})
		return
	}
	c.JSON(http.StatusOK, advice)
}

func (h *Handler) Friends(c *gin.Context) {
	var req byUserIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	recs, err := h.service.Friends(c.Request.Context(), req.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load friends recommendations"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"terrains": recs})
}

func (h *Handler) Ratings(c *gin.Context) {
	rated, err := h.service.TopRated(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load top rated terrains"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"recommendations": rated})
}

func (h *Handler) Promotions(c *gin.Context) {
	promos, err := h.service.Promotions(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load promotions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"promotions": promos})
}

func (h *Handler) Weather(c *gin.Context) {
	advice, err := h.service.Weather(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "weather recommendations unavailable"})
		return
	}
	c.JSON(http.StatusOK, advice)
}

func (h *Handler) ML(c *gin.Context) {
	var req byUserIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	raw, err := h.service.ML(c.Request.Context(), req.UserID)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "ML recommender unavailable"})
		return
	}
	c.Data(http.StatusOK, "application/json", raw)
}
