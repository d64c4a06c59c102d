package terrain

import (
	"errors"
	"time"
)

var (
	ErrNotFound      = errors.New("terrain not found")
	ErrDuplicateName = errors.New("a terrain with this name already exists at this location")
	ErrEmptyName     = errors.New("name cannot be empty")
	ErrEmptyLocation = errors.New("location cannot be empty")
	ErrInvalidPrice  = errors.New("price must not be negative")
)

// Terrain represents a bookable pitch (e.g., "Terrain Central", "City Foot 5").
type Terrain struct {
	ID           string
	Name         string
	Location     string
	PricePerSlot float64
	Description  string
	Image        string // storage path of the cover photo, empty if none
	CreatedAt    time.Time
}

// Filter defines parameters for listing terrains.
type Filter struct {
	Name     string
	Location string
	Page     int
	PageSize int
}
