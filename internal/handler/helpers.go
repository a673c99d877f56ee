package handler

import (
	"errors"

	"service-area-api/internal/geo"
	"service-area-api/internal/metrics"
	"service-area-api/internal/models"
)

// roundKm rounds a distance to two decimal places for display.
func roundKm(km float64) float64 {
	return geo.RoundCoordinate(km, 2)
}

func outcomeFor(err error) string {
	switch {
	case errors.Is(err, models.ErrInvalidCoordinates), errors.Is(err, models.ErrInvalidInput):
		return metrics.OutcomeInvalid
	case errors.Is(err, models.ErrDuplicateWaitlistEntry):
		return metrics.OutcomeDuplicate
	case errors.Is(err, models.ErrRegistryUnavailable):
		return metrics.OutcomeUnavailable
	default:
		return metrics.OutcomeError
	}
}
