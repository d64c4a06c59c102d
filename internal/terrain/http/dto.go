package http

import (
	"time"

	"github.com/terrabook/pitch-booking-backend/internal/pkg/request"
	"github.com/terrabook/pitch-booking-backend/internal/terrain"
)

// CreateTerrainRequest is the payload for POST /terrains.
type CreateTerrainRequest struct {
	Name         string  `json:"name" binding:"required"`
	Location     string  `json:"location" binding:"required"`
	PricePerSlot float64 `json:"price_per_slot" binding:"omitempty,min=0"`
	Description  string  `json:"description"`
}

// Validate performs custom validation for CreateTerrainRequest.
func (r *CreateTerrainRequest) Validate() error {
	return nil
}

// UpdateTerrainRequest is the payload for PATCH /terrains/:id.
type UpdateTerrainRequest struct {
	Name         *string  `json:"name"`
	Location     *string  `json:"location"`
	PricePerSlot *float64 `json:"price_per_slot" binding:"omitempty,min=0"`
	Description  *string  `json:"description"`
}

// Validate performs custom validation for UpdateTerrainRequest.
func (r *UpdateTerrainRequest) Validate() error {
	return nil
}

// ListTerrainsRequest defines query parameters for listing terrains.
type ListTerrainsRequest struct {
	request.ListParams
	Name     string `form:"name"`
	Location string `form:"location"`
}

// Validate performs custom validation for ListTerrainsRequest.
func (r *ListTerrainsRequest) Validate() error {
	return nil
}

// TerrainResponse is the shape of terrain data returned in API responses.
type TerrainResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Location     string    `json:"location"`
	PricePerSlot float64   `json:"price_per_slot"`
	Description  string    `json:"description"`
	ImageURL     string    `json:"image_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewTerrainResponse converts a domain terrain to its API shape.
func NewTerrainResponse(t *terrain.Terrain) TerrainResponse {
	var imageURL string
	if t.Image != "" {
		imageURL = "/v1/terrains/" + t.ID + "/image"
	}

	return TerrainResponse{
		ID:           t.ID,
		Name:         t.Name,
		Location:     t.Location,
		PricePerSlot: t.PricePerSlot,
		Description:  t.Description,
		ImageURL:     imageURL,
		CreatedAt:    t.CreatedAt,
	}
}
