package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"service-area-api/internal/geo"
	"service-area-api/internal/models"

	"github.com/rs/zerolog"
)

// DedupPrecision is the number of decimal places requested coordinates are rounded to
// before two waitlist submissions are compared.
const DedupPrecision = 5

// WaitlistRepository persists waitlist entries
type WaitlistRepository interface {
	WaitlistEntryExists(ctx context.Context, email string, lat, lon float64) (bool, error)
	CreateWaitlistEntry(ctx context.Context, entry *models.WaitlistEntry) error
	GetWaitlistEntry(ctx context.Context, id int64) (*models.WaitlistEntry, error)
	UpdateWaitlistEntry(ctx context.Context, entry *models.WaitlistEntry) error
	ListWaitlistEntries(ctx context.Context, filter models.WaitlistFilter) ([]models.WaitlistEntry, error)
	CountWaitlistByNearestCity(ctx context.Context) ([]models.WaitlistCount, error)
}

// LocationValidator is the subset of ValidationService used when capturing an entry.
type LocationValidator interface {
	Validate(ctx context.Context, lat, lon float64) (*models.ValidationResult, error)
}

// CaptureRequest is a visitor's request to be told when their location becomes serviceable.
type CaptureRequest struct {
	Email              string
	Name               string
	Phone              string
	RequestedAddress   string
	RequestedLatitude  float64
	RequestedLongitude float64
}

// WaitlistUpdate is an administrative change to an existing entry. Nil fields are left as is.
type WaitlistUpdate struct {
	Status     *models.WaitlistStatus
	AdminNotes *string
}

// WaitlistService captures and manages waitlist entries
type WaitlistService struct {
	repo      WaitlistRepository
	validator LocationValidator
	logger    zerolog.Logger
	now       func() time.Time
}

// NewWaitlistService creates a new waitlist service
func NewWaitlistService(repo WaitlistRepository, validator LocationValidator, logger zerolog.Logger) *WaitlistService {
	return &WaitlistService{
		repo:      repo,
		validator: validator,
		logger:    logger.With().Str("component", "waitlist").Logger(),
		now:       time.Now,
	}
}

// NormalizeEmail trims and lower-cases an address so dedup ignores case and padding.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Capture records a pending waitlist entry. A second submission for the same email and
// rounded coordinates is rejected with models.ErrDuplicateWaitlistEntry.
func (s *WaitlistService) Capture(ctx context.Context, req CaptureRequest) (*models.WaitlistEntry, error) {
	email := NormalizeEmail(req.Email)
	if email == "" {
		return nil, fmt.Errorf("service: %w: email cannot be empty", models.ErrInvalidInput)
	}
	if !geo.ValidCoordinates(req.RequestedLatitude, req.RequestedLongitude) {
		return nil, fmt.Errorf("service: %w: (%f, %f)", models.ErrInvalidCoordinates, req.RequestedLatitude, req.RequestedLongitude)
	}

	lat := geo.RoundCoordinate(req.RequestedLatitude, DedupPrecision)
	lon := geo.RoundCoordinate(req.RequestedLongitude, DedupPrecision)

	exists, err := s.repo.WaitlistEntryExists(ctx, email, lat, lon)
	if err != nil {
		return nil, fmt.Errorf("service: failed to check for duplicate waitlist entry: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("service: %w", models.ErrDuplicateWaitlistEntry)
	}

	result, err := s.validator.Validate(ctx, req.RequestedLatitude, req.RequestedLongitude)
	if err != nil {
		return nil, fmt.Errorf("service: failed to resolve nearest area: %w", err)
	}

	entry := &models.WaitlistEntry{
		Email:              email,
		Name:               strings.TrimSpace(req.Name),
		Phone:              strings.TrimSpace(req.Phone),
		RequestedAddress:   strings.TrimSpace(req.RequestedAddress),
		RequestedLatitude:  req.RequestedLatitude,
		RequestedLongitude: req.RequestedLongitude,
		Status:             models.WaitlistPending,
	}

	switch {
	case result.Served:
		// An area was added between the visitor's failed check and this submission.
		s.logger.Warn().
			Str("email", email).
			Float64("lat", req.RequestedLatitude).
			Float64("lon", req.RequestedLongitude).
			Str("area", result.Area.CityName).
			Msg("waitlist capture for a location that is already served")
		entry.NearestAreaCity = result.Area.CityName
		dist := result.Area.DistanceKm(req.RequestedLatitude, req.RequestedLongitude)
		entry.DistanceToNearestAreaKm = &dist
	case result.Nearest != nil:
		entry.NearestAreaCity = result.Nearest.CityName
		dist := result.DistanceKm
		entry.DistanceToNearestAreaKm = &dist
	}

	if err := s.repo.CreateWaitlistEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("service: failed to create waitlist entry: %w", err)
	}

	return entry, nil
}

// List returns waitlist entries matching the filter
func (s *WaitlistService) List(ctx context.Context, filter models.WaitlistFilter) ([]models.WaitlistEntry, error) {
	entries, err := s.repo.ListWaitlistEntries(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list waitlist entries: %w", err)
	}
	return entries, nil
}

// CountByNearestCity aggregates waitlist demand per nearest service area.
func (s *WaitlistService) CountByNearestCity(ctx context.Context) ([]models.WaitlistCount, error) {
	counts, err := s.repo.CountWaitlistByNearestCity(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to count waitlist entries: %w", err)
	}
	return counts, nil
}

// Update applies an administrative status transition and/or note change.
func (s *WaitlistService) Update(ctx context.Context, id int64, upd WaitlistUpdate) (*models.WaitlistEntry, error) {
	entry, err := s.repo.GetWaitlistEntry(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service: failed to load waitlist entry: %w", err)
	}

	if upd.Status != nil && *upd.Status != entry.Status {
		if err := entry.Transition(*upd.Status, s.now()); err != nil {
			return nil, fmt.Errorf("service: %w", err)
		}
	}
	if upd.AdminNotes != nil {
		entry.AdminNotes = *upd.AdminNotes
	}

	if err := s.repo.UpdateWaitlistEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("service: failed to update waitlist entry: %w", err)
	}
	return entry, nil
}
