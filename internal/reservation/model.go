package reservation

import (
	"net/http"
	"time"

	"github.com/terrabook/pitch-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound         = apperror.New(http.StatusNotFound, "reservation not found")
	ErrTimeConflict     = apperror.New(http.StatusConflict, "time slot already booked")
	ErrInvalidTime      = apperror.New(http.StatusBadRequest, "invalid time format, expected HH:mm")
	ErrInvalidDate      = apperror.New(http.StatusBadRequest, "invalid date format, expected YYYY-MM-DD")
	ErrInvalidStatus    = apperror.New(http.StatusBadRequest, "invalid reservation status")
	ErrTerrainNotFound  = apperror.New(http.StatusNotFound, "terrain not found")
	ErrPermissionDenied = apperror.New(http.StatusForbidden, "permission denied")
	ErrAmbiguousDay     = apperror.New(http.StatusConflict, "several reservations match this day")
	ErrAlreadyCancelled = apperror.New(http.StatusConflict, "reservation is already cancelled")
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

// Reservation is a 90-minute slot booked on a terrain.
// Start and End are wall-clock times in "HH:mm" form; Date carries the day.
type Reservation struct {
	ID          string
	TerrainID   string
	TerrainName string
	UserID      string
	UserName    string
	Date        time.Time
	Start       string
	End         string
	Status      Status
	Amount      float64
	CreatedAt   time.Time
}

type Filter struct {
	UserID    string
	TerrainID string
	Status    string
	DateFrom  *time.Time
	DateTo    *time.Time
	Page      int
	PageSize  int
}

// Stats counts reservations per status.
type Stats struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Confirmed int `json:"confirmed"`
	Cancelled int `json:"cancelled"`
}

// ValidStatus reports whether s is a known reservation status.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return true
	}
	return false
}
