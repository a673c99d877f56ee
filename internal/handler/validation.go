package handler

import (
	"context"
	"net/http"

	"service-area-api/internal/metrics"
	"service-area-api/internal/models"

	"github.com/gin-gonic/gin"
)

// Validator decides whether a location can be served
type Validator interface {
	Validate(ctx context.Context, lat, lon float64) (*models.ValidationResult, error)
}

// ValidationHandler handles location validation requests
type ValidationHandler struct {
	service Validator
}

// NewValidationHandler creates a new validation handler
func NewValidationHandler(svc Validator) *ValidationHandler {
	return &ValidationHandler{service: svc}
}

// ValidateRequest is the body of POST /service-area/validate
type ValidateRequest struct {
	Latitude  *float64 `json:"latitude" binding:"required"`
	Longitude *float64 `json:"longitude" binding:"required"`
}

// AreaSummary identifies the area serving a location
type AreaSummary struct {
	City     string  `json:"city"`
	RadiusKm float64 `json:"radius_km"`
}

// ValidateResponse reports whether the location is served
type ValidateResponse struct {
	Valid       bool         `json:"valid"`
	Area        *AreaSummary `json:"area,omitempty"`
	DistanceKm  *float64     `json:"distance_km,omitempty"`
	NearestCity string       `json:"nearest_city,omitempty"`
}

// Validate handles POST /service-area/validate requests
//
//	@Summary	Check whether a location is inside an active service area
//	@Tags		service-area
//	@Accept		json
//	@Produce	json
//	@Param		request	body		ValidateRequest	true	"Location"
//	@Success	200		{object}	ValidateResponse
//	@Failure	422		{object}	map[string]string
//	@Failure	429		{object}	map[string]string
//	@Failure	503		{object}	map[string]string
//	@Router		/service-area/validate [post]
func (h *ValidationHandler) Validate(c *gin.Context) {
	var req ValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		metrics.ValidationsTotal.WithLabelValues(metrics.OutcomeInvalid).Inc()
		bindingError(c, err)
		return
	}

	result, err := h.service.Validate(c.Request.Context(), *req.Latitude, *req.Longitude)
	if err != nil {
		metrics.ValidationsTotal.WithLabelValues(outcomeFor(err)).Inc()
		respondError(c, err)
		return
	}

	if result.Served {
		metrics.ValidationsTotal.WithLabelValues(metrics.OutcomeServed).Inc()
		c.JSON(http.StatusOK, ValidateResponse{
			Valid: true,
			Area:  &AreaSummary{City: result.Area.CityName, RadiusKm: result.Area.RadiusKm},
		})
		return
	}

	metrics.ValidationsTotal.WithLabelValues(metrics.OutcomeNotServed).Inc()
	resp := ValidateResponse{Valid: false}
	if result.Nearest != nil {
		dist := roundKm(result.DistanceKm)
		resp.DistanceKm = &dist
		resp.NearestCity = result.Nearest.CityName
	}
	c.JSON(http.StatusOK, resp)
}
