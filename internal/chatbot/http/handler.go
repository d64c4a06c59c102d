package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/terrabook/pitch-booking-backend/internal/chatbot"
)

// Handler serves the conversational webhook and the session binding
// endpoint the frontend calls at login time.
type Handler struct {
	engine   *chatbot.Engine
	sessions *chatbot.SessionStore
	nlu      *chatbot.NLUClient
}

func NewHandler(engine *chatbot.Engine, sessions *chatbot.SessionStore, nlu *chatbot.NLUClient) *Handler {
	return &Handler{engine: engine, sessions: sessions, nlu: nlu}
}

// Webhook handles one conversation turn.
func (h *Handler) Webhook(c *gin.Context) {
	var req chatbot.WebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid webhook payload", "details": err.Error()})
		return
	}

	resp := h.engine.Handle(c.Request.Context(), &req)
	c.JSON(http.StatusOK, resp)
}

type messageRequest struct {
	Session string `json:"session" binding:"required"`
	Message string `json:"message" binding:"required"`
	UserID  string `json:"userId" binding:"omitempty,uuid"`
}

// Message proxies one raw user utterance to the external NLU agent and
// returns its reply. An optional userId binds the session on the way.
func (h *Handler) Message(c *gin.Context) {
	var req messageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	if !h.nlu.Enabled() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "chat agent is not configured"})
		return
	}

	if req.UserID != "" {
		h.sessions.Bind(req.Session, req.UserID)
	}

	reply, err := h.nlu.Detect(c.Request.Context(), req.Session, req.Message)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"reply": "Désolé, je n'arrive pas à joindre l'assistant pour le moment. Réessayez dans un instant."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"reply": reply})
}

type bindUserRequest struct {
	UserID  string `json:"userId" binding:"required,uuid"`
	Session string `json:"session" binding:"required"`
}

// BindUser attaches a logged-in user to a chat session so later turns
// can act on their reservations.
func (h *Handler) BindUser(c *gin.Context) {
	var req bindUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	h.sessions.Bind(req.Session, req.UserID)
	c.JSON(http.StatusOK, gin.H{"message": "session bound"})
}

// UnbindUser detaches a chat session at logout.
func (h *Handler) UnbindUser(c *gin.Context) {
	var req struct {
		Session string `json:"session" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	h.sessions.Unbind(req.Session)
	c.JSON(http.StatusOK, gin.H{"message": "session unbound"})
}
