package models

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"service-area-api/internal/geo"
)

var colorHexPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// DefaultColorHex is used for areas created without a display colour.
const DefaultColorHex = "#3B82F6"

// ServiceArea is a circular coverage region: a center point and a radius in kilometers.
type ServiceArea struct {
	ID          int64     `json:"id"`
	CityName    string    `json:"city_name"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	RadiusKm    float64   `json:"radius_km"`
	IsActive    bool      `json:"is_active"`
	ColorHex    string    `json:"color_hex"`
	SortOrder   int       `json:"sort_order"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DistanceKm returns the great-circle distance from the area's center to the given point.
func (a ServiceArea) DistanceKm(lat, lon float64) float64 {
	return geo.DistanceKm(a.Latitude, a.Longitude, lat, lon)
}

// ContainsLocation reports whether the point lies within the radius. The boundary is inside.
func (a ServiceArea) ContainsLocation(lat, lon float64) bool {
	return a.DistanceKm(lat, lon) <= a.RadiusKm
}

// Validate checks the invariants an area must hold before it is persisted.
func (a ServiceArea) Validate() error {
	if strings.TrimSpace(a.CityName) == "" {
		return fmt.Errorf("%w: city name is required", ErrInvalidServiceArea)
	}
	if !geo.ValidCoordinates(a.Latitude, a.Longitude) {
		return fmt.Errorf("%w: center (%f, %f) is out of range", ErrInvalidServiceArea, a.Latitude, a.Longitude)
	}
	if !(a.RadiusKm > 0) {
		return fmt.Errorf("%w: radius must be positive, got %f", ErrInvalidServiceArea, a.RadiusKm)
	}
	if a.ColorHex != "" && !colorHexPattern.MatchString(a.ColorHex) {
		return fmt.Errorf("%w: color %q is not #RRGGBB", ErrInvalidServiceArea, a.ColorHex)
	}
	return nil
}
