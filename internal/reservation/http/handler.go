package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/terrabook/pitch-booking-backend/internal/auth"
	"github.com/terrabook/pitch-booking-backend/internal/pkg/request"
	"github.com/terrabook/pitch-booking-backend/internal/pkg/response"
	"github.com/terrabook/pitch-booking-backend/internal/reservation"
	"github.com/terrabook/pitch-booking-backend/internal/user"
)

type Handler struct {
	service reservation.Service
}

func NewHandler(service reservation.Service) *Handler {
	return &Handler{service: service}
}

// Create books a 90-minute slot for the authenticated user.
func (h *Handler) Create(c *gin.Context) {
	var req CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		response.Error(c, err)
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		response.Error(c, err)
		return
	}

	res, err := h.service.Create(c.Request.Context(), reservation.CreateRequest{
		UserID:    auth.GetUserID(c),
		TerrainID: req.TerrainID,
		Date:      date,
		Start:     req.Start,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewReservationResponse(res))
}

// List returns reservations. Plain users only see their own; gerant and
// admin may filter freely.
func (h *Handler) List(c *gin.Context) {
	var req ListReservationsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}

	filter := reservation.Filter{
		TerrainID: req.TerrainID,
		UserID:    req.UserID,
		Status:    req.Status,
		Page:      req.Page,
		PageSize:  req.PageSize,
	}

	if req.DateFrom != "" {
		d, err := parseDate(req.DateFrom)
		if err != nil {
			response.Error(c, err)
			return
		}
		filter.DateFrom = &d
	}
	if req.DateTo != "" {
		d, err := parseDate(req.DateTo)
		if err != nil {
			response.Error(c, err)
			return
		}
		filter.DateTo = &d
	}

	role := auth.GetUserRole(c)
	if role != user.RoleAdmin && role != user.RoleManager {
		filter.UserID = auth.GetUserID(c)
	}

	list, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]ReservationResponse, len(list))
	for i, r := range list {
		items[i] = NewReservationResponse(r)
	}

	c.JSON(http.StatusOK, response.NewPageResponse(items, req.Page, req.PageSize, total))
}

// Get returns a single reservation, restricted to its owner or staff.
func (h *Handler) Get(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	res, err := h.service.GetByID(c.Request.Context(), req.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	role := auth.GetUserRole(c)
	if res.UserID != auth.GetUserID(c) && role != user.RoleAdmin && role != user.RoleManager {
		response.Error(c, reservation.ErrPermissionDenied)
		return
	}

	c.JSON(http.StatusOK, NewReservationResponse(res))
}

// Update moves or re-statuses a reservation.
func (h *Handler) Update(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	var body UpdateReservationRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body", "details": err.Error()})
		return
	}
	if err := body.Validate(); err != nil {
		response.Error(c, err)
		return
	}

	res, err := h.service.Update(c.Request.Context(), uri.ID, reservation.UpdateRequest{
		Start:  body.Start,
		Status: body.Status,
	}, auth.GetUserID(c), auth.GetUserRole(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewReservationResponse(res))
}

// Delete cancels a reservation. The row is kept with status cancelled so
// the slot frees up while the history remains.
func (h *Handler) Delete(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	if err := h.service.Cancel(c.Request.Context(), req.ID, auth.GetUserID(c), auth.GetUserRole(c)); err != nil {
		response.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Availability returns the free slots of a terrain on a day.
func (h *Handler) Availability(c *gin.Context) {
	var req AvailabilityRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		response.Error(c, err)
		return
	}

	slots, err := h.service.FreeSlotsFor(c.Request.Context(), req.Terrain, date)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, AvailabilityResponse{
		Terrain:   req.Terrain,
		Date:      req.Date,
		FreeSlots: slots,
	})
}

// AvailableTerrains returns terrains free at the requested date and hour.
func (h *Handler) AvailableTerrains(c *gin.Context) {
	var req AvailableTerrainsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		response.Error(c, err)
		return
	}

	names, err := h.service.AvailableTerrains(c.Request.Context(), date, req.Start)
	if err != nil {
		response.Error(c, err)
		return
	}
	if names == nil {
		names = []string{}
	}

	c.JSON(http.StatusOK, AvailableTerrainsResponse{
		Date:     req.Date,
		Start:    req.Start,
		Terrains: names,
	})
}

// SendConfirmation emails a confirmation link to the reservation owner.
func (h *Handler) SendConfirmation(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	res, err := h.service.GetByID(c.Request.Context(), req.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	role := auth.GetUserRole(c)
	if res.UserID != auth.GetUserID(c) && role != user.RoleAdmin && role != user.RoleManager {
		response.Error(c, reservation.ErrPermissionDenied)
		return
	}

	if err := h.service.SendConfirmation(c.Request.Context(), req.ID); err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "confirmation email sent"})
}

// Confirm validates the token from the email link and confirms the
// reservation. The route is public: the token is the credential.
func (h *Handler) Confirm(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token is required"})
		return
	}

	res, err := h.service.ConfirmByToken(c.Request.Context(), token)
	if err != nil {
		if errors.Is(err, reservation.ErrAlreadyCancelled) {
			c.JSON(http.StatusConflict, gin.H{"error": "reservation was cancelled"})
			return
		}
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewReservationResponse(res))
}

// Stats returns reservation counts per status. Staff only.
func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
