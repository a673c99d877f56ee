package service

import (
	"context"
	"fmt"

	"service-area-api/internal/models"
)

// AreaRepository persists service areas
type AreaRepository interface {
	ListServiceAreas(ctx context.Context) ([]models.ServiceArea, error)
	GetServiceArea(ctx context.Context, id int64) (*models.ServiceArea, error)
	CreateServiceArea(ctx context.Context, area *models.ServiceArea) error
	UpdateServiceArea(ctx context.Context, area *models.ServiceArea) error
	SetServiceAreaActive(ctx context.Context, id int64, active bool) error
	DeleteServiceArea(ctx context.Context, id int64) error
}

// Invalidator is told whenever the set of service areas changes.
type Invalidator interface {
	Invalidate()
}

// AreaService is the administrative surface for service areas. Every successful mutation
// invalidates the registry before returning.
type AreaService struct {
	repo        AreaRepository
	invalidator Invalidator
}

// NewAreaService creates a new area service
func NewAreaService(repo AreaRepository, invalidator Invalidator) *AreaService {
	return &AreaService{repo: repo, invalidator: invalidator}
}

// List returns every service area, active or not
func (s *AreaService) List(ctx context.Context) ([]models.ServiceArea, error) {
	areas, err := s.repo.ListServiceAreas(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list service areas: %w", err)
	}
	return areas, nil
}

// Get returns a single service area
func (s *AreaService) Get(ctx context.Context, id int64) (*models.ServiceArea, error) {
	area, err := s.repo.GetServiceArea(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get service area: %w", err)
	}
	return area, nil
}

// Create validates and stores a new service area
func (s *AreaService) Create(ctx context.Context, area *models.ServiceArea) error {
	if area.ColorHex == "" {
		area.ColorHex = models.DefaultColorHex
	}
	if err := area.Validate(); err != nil {
		return fmt.Errorf("service: %w", err)
	}
	if err := s.repo.CreateServiceArea(ctx, area); err != nil {
		return fmt.Errorf("service: failed to create service area: %w", err)
	}
	s.invalidator.Invalidate()
	return nil
}

// Update validates and replaces an existing service area
func (s *AreaService) Update(ctx context.Context, area *models.ServiceArea) error {
	if area.ColorHex == "" {
		area.ColorHex = models.DefaultColorHex
	}
	if err := area.Validate(); err != nil {
		return fmt.Errorf("service: %w", err)
	}
	if err := s.repo.UpdateServiceArea(ctx, area); err != nil {
		return fmt.Errorf("service: failed to update service area: %w", err)
	}
	s.invalidator.Invalidate()
	return nil
}

// SetActive activates or deactivates a service area
func (s *AreaService) SetActive(ctx context.Context, id int64, active bool) error {
	if err := s.repo.SetServiceAreaActive(ctx, id, active); err != nil {
		return fmt.Errorf("service: failed to toggle service area: %w", err)
	}
	s.invalidator.Invalidate()
	return nil
}

// Delete removes a service area
func (s *AreaService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.DeleteServiceArea(ctx, id); err != nil {
		return fmt.Errorf("service: failed to delete service area: %w", err)
	}
	s.invalidator.Invalidate()
	return nil
}
