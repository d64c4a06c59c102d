package http

import (
	"time"

	"github.com/terrabook/pitch-booking-backend/internal/pkg/request"
	"github.com/terrabook/pitch-booking-backend/internal/reservation"
)

const dateLayout = "2006-01-02"

// ListReservationsRequest defines query parameters for listing reservations.
type ListReservationsRequest struct {
	request.ListParams
	TerrainID string `form:"terrain_id" binding:"omitempty,uuid"`
	UserID    string `form:"user_id" binding:"omitempty,uuid"`
	Status    string `form:"status" binding:"omitempty,oneof=pending confirmed cancelled"`
	DateFrom  string `form:"date_from" binding:"omitempty,datetime=2006-01-02"`
	DateTo    string `form:"date_to" binding:"omitempty,datetime=2006-01-02"`
}

// Validate performs custom validation for ListReservationsRequest.
func (r *ListReservationsRequest) Validate() error {
	return nil
}

// TerrainTag is a brief terrain reference inside reservation payloads.
type TerrainTag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// UserTag is a brief user reference inside reservation payloads.
type UserTag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type ReservationResponse struct {
	ID        string     `json:"id"`
	Terrain   TerrainTag `json:"terrain"`
	User      UserTag    `json:"user"`
	Date      string     `json:"date"`
	Start     string     `json:"start"`
	End       string     `json:"end"`
	Status    string     `json:"status"`
	Amount    float64    `json:"amount"`
	CreatedAt time.Time  `json:"created_at"`
}

func NewReservationResponse(r *reservation.Reservation) ReservationResponse {
	return ReservationResponse{
		ID:        r.ID,
		Terrain:   TerrainTag{ID: r.TerrainID, Name: r.TerrainName},
		User:      UserTag{ID: r.UserID, Name: r.UserName},
		Date:      r.Date.Format(dateLayout),
		Start:     r.Start,
		End:       r.End,
		Status:    string(r.Status),
		Amount:    r.Amount,
		CreatedAt: r.CreatedAt,
	}
}

type CreateReservationRequest struct {
	TerrainID string `json:"terrain_id" binding:"required,uuid"`
	Date      string `json:"date" binding:"required,datetime=2006-01-02"`
	Start     string `json:"start" binding:"required"`
}

// Validate performs custom validation for CreateReservationRequest.
func (r *CreateReservationRequest) Validate() error {
	if _, err := reservation.ParseClock(r.Start); err != nil {
		return err
	}
	return nil
}

type UpdateReservationRequest struct {
	Start  *string `json:"start"`
	Status *string `json:"status" binding:"omitempty,oneof=pending confirmed cancelled"`
}

// Validate performs custom validation for UpdateReservationRequest.
func (r *UpdateReservationRequest) Validate() error {
	if r.Start != nil {
		if _, err := reservation.ParseClock(*r.Start); err != nil {
			return err
		}
	}
	return nil
}

// AvailabilityRequest asks for the free slots of a terrain on a day.
type AvailabilityRequest struct {
	Terrain string `form:"terrain" binding:"required"`
	Date    string `form:"date" binding:"required,datetime=2006-01-02"`
}

// AvailabilityResponse lists the free slots of a terrain on a day.
type AvailabilityResponse struct {
	Terrain   string                 `json:"terrain"`
	Date      string                 `json:"date"`
	FreeSlots []reservation.TimeSlot `json:"free_slots"`
}

// AvailableTerrainsRequest asks which terrains are free at a given time.
type AvailableTerrainsRequest struct {
	Date  string `json:"date" binding:"required,datetime=2006-01-02"`
	Start string `json:"start" binding:"required"`
}

// AvailableTerrainsResponse lists terrains free at the requested time.
type AvailableTerrainsResponse struct {
	Date     string   `json:"date"`
	Start    string   `json:"start"`
	Terrains []string `json:"terrains"`
}

func parseDate(s string) (time.Time, error) {
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, reservation.ErrInvalidDate
	}
	return d, nil
}
