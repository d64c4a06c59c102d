package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/terrabook/pitch-booking-backend/internal/pkg/request"
	"github.com/terrabook/pitch-booking-backend/internal/pkg/response"
	"github.com/terrabook/pitch-booking-backend/internal/terrain"
)

// Handler serves terrain CRUD and image endpoints.
type Handler struct {
	service terrain.Service
}

func NewHandler(service terrain.Service) *Handler {
	return &Handler{service: service}
}

// Create registers a new terrain.
// Access Control: gerant or admin.
func (h *Handler) Create(c *gin.Context) {
	var req CreateTerrainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	t, err := h.service.Create(c.Request.Context(), terrain.CreateRequest{
		Name:         req.Name,
		Location:     req.Location,
		PricePerSlot: req.PricePerSlot,
		Description:  req.Description,
	})
	if err != nil {
		switch {
		case errors.Is(err, terrain.ErrDuplicateName):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, terrain.ErrEmptyName),
			errors.Is(err, terrain.ErrEmptyLocation),
			errors.Is(err, terrain.ErrInvalidPrice):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create terrain"})
		}
		return
	}

	c.JSON(http.StatusCreated, NewTerrainResponse(t))
}

// Get returns a single terrain by ID.
func (h *Handler) Get(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	t, err := h.service.GetByID(c.Request.Context(), req.ID)
	if err != nil {
		if errors.Is(err, terrain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "terrain not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get terrain"})
		return
	}

	c.JSON(http.StatusOK, NewTerrainResponse(t))
}

// List returns a paginated list of terrains with optional name/location filters.
func (h *Handler) List(c *gin.Context) {
	var req ListTerrainsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}

	terrains, total, err := h.service.List(c.Request.Context(), terrain.Filter{
		Name:     req.Name,
		Location: req.Location,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list terrains"})
		return
	}

	items := make([]TerrainResponse, len(terrains))
	for i, t := range terrains {
		items[i] = NewTerrainResponse(t)
	}

	c.JSON(http.StatusOK, response.NewPageResponse(items, req.Page, req.PageSize, total))
}

// Update modifies terrain attributes.
// Access Control: gerant or admin.
func (h *Handler) Update(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	var body UpdateTerrainRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body", "details": err.Error()})
		return
	}

	t, err := h.service.Update(c.Request.Context(), uri.ID, terrain.UpdateRequest{
		Name:         body.Name,
		Location:     body.Location,
		PricePerSlot: body.PricePerSlot,
		Description:  body.Description,
	})
	if err != nil {
		switch {
		case errors.Is(err, terrain.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "terrain not found"})
		case errors.Is(err, terrain.ErrDuplicateName):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, terrain.ErrEmptyName),
			errors.Is(err, terrain.ErrEmptyLocation),
			errors.Is(err, terrain.ErrInvalidPrice):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update terrain"})
		}
		return
	}

	c.JSON(http.StatusOK, NewTerrainResponse(t))
}

// Delete removes a terrain and its reservations.
// Access Control: admin only.
func (h *Handler) Delete(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	if err := h.service.Delete(c.Request.Context(), req.ID); err != nil {
		if errors.Is(err, terrain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "terrain not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete terrain"})
		return
	}

	c.Status(http.StatusNoContent)
}

// UploadImage stores a cover photo for the terrain.
// Access Control: gerant or admin.
func (h *Handler) UploadImage(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image is required"})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read image"})
		return
	}
	defer f.Close()

	t, err := h.service.SetImage(c.Request.Context(), uri.ID, f)
	if err != nil {
		if errors.Is(err, terrain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "terrain not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store image"})
		return
	}

	c.JSON(http.StatusOK, NewTerrainResponse(t))
}

// GetImage streams the terrain's cover photo.
func (h *Handler) GetImage(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	rc, err := h.service.GetImage(c.Request.Context(), uri.ID)
	if err != nil {
		if errors.Is(err, terrain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "image not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read image"})
		return
	}
	defer rc.Close()

	c.Header("Content-Type", "image/jpeg")
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, rc)
}
