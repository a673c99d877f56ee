package service

import (
	"context"
	"fmt"

	"service-area-api/internal/geo"
	"service-area-api/internal/models"
)

// AreaFinder answers containment and nearest-area queries over the active service areas.
type AreaFinder interface {
	FindContaining(ctx context.Context, lat, lon float64) (*models.ServiceArea, error)
	FindNearest(ctx context.Context, lat, lon float64) (*models.ServiceArea, float64, error)
}

// ValidationService decides whether a location can be served
type ValidationService struct {
	finder AreaFinder
}

// NewValidationService creates a new validation service
func NewValidationService(finder AreaFinder) *ValidationService {
	return &ValidationService{finder: finder}
}

// Validate reports whether an active service area covers the point. When none does, the result
// carries the nearest active area and its distance, if any area is active at all.
func (s *ValidationService) Validate(ctx context.Context, lat, lon float64) (*models.ValidationResult, error) {
	if !geo.ValidCoordinates(lat, lon) {
		return nil, fmt.Errorf("service: %w: (%f, %f)", models.ErrInvalidCoordinates, lat, lon)
	}

	area, err := s.finder.FindContaining(ctx, lat, lon)
	if err != nil {
		return nil, fmt.Errorf("service: failed to check containment: %w", err)
	}
	if area != nil {
		return &models.ValidationResult{Served: true, Area: area}, nil
	}

	nearest, dist, err := s.finder.FindNearest(ctx, lat, lon)
	if err != nil {
		return nil, fmt.Errorf("service: failed to find nearest area: %w", err)
	}
	if nearest == nil {
		return &models.ValidationResult{Served: false}, nil
	}

	return &models.ValidationResult{Served: false, Nearest: nearest, DistanceKm: dist}, nil
}
