package handler

import (
	"context"
	"net/http"

	"service-area-api/internal/models"

	"github.com/gin-gonic/gin"
)

// AreaManager is the administrative service-area surface
type AreaManager interface {
	List(ctx context.Context) ([]models.ServiceArea, error)
	Get(ctx context.Context, id int64) (*models.ServiceArea, error)
	Create(ctx context.Context, area *models.ServiceArea) error
	Update(ctx context.Context, area *models.ServiceArea) error
	SetActive(ctx context.Context, id int64, active bool) error
	Delete(ctx context.Context, id int64) error
}

// AdminAreaHandler handles administrative service-area requests
type AdminAreaHandler struct {
	service AreaManager
}

// NewAdminAreaHandler creates a new admin area handler
func NewAdminAreaHandler(svc AreaManager) *AdminAreaHandler {
	return &AdminAreaHandler{service: svc}
}

// AreaRequest is the body for creating or replacing a service area
type AreaRequest struct {
	CityName    string   `json:"city_name" binding:"required,max=255"`
	Latitude    *float64 `json:"latitude" binding:"required"`
	Longitude   *float64 `json:"longitude" binding:"required"`
	RadiusKm    float64  `json:"radius_km" binding:"required,gt=0"`
	IsActive    *bool    `json:"is_active"`
	ColorHex    string   `json:"color_hex" binding:"omitempty,max=7"`
	SortOrder   int      `json:"sort_order"`
	Description string   `json:"description"`
}

func (r AreaRequest) toModel(id int64) *models.ServiceArea {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return &models.ServiceArea{
		ID:          id,
		CityName:    r.CityName,
		Latitude:    *r.Latitude,
		Longitude:   *r.Longitude,
		RadiusKm:    r.RadiusKm,
		IsActive:    active,
		ColorHex:    r.ColorHex,
		SortOrder:   r.SortOrder,
		Description: r.Description,
	}
}

// ActiveRequest is the body of PATCH /admin/service-areas/:id/active
type ActiveRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// List handles GET /admin/service-areas requests
func (h *AdminAreaHandler) List(c *gin.Context) {
	areas, err := h.service.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, areas)
}

// Get handles GET /admin/service-areas/:id requests
func (h *AdminAreaHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	area, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, area)
}

// Create handles POST /admin/service-areas requests
func (h *AdminAreaHandler) Create(c *gin.Context) {
	var req AreaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, err)
		return
	}

	area := req.toModel(0)
	if err := h.service.Create(c.Request.Context(), area); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, area)
}

// Update handles PUT /admin/service-areas/:id requests
func (h *AdminAreaHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req AreaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, err)
		return
	}

	area := req.toModel(id)
	if err := h.service.Update(c.Request.Context(), area); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, area)
}

// SetActive handles PATCH /admin/service-areas/:id/active requests
func (h *AdminAreaHandler) SetActive(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req ActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, err)
		return
	}

	if err := h.service.SetActive(c.Request.Context(), id, *req.IsActive); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "is_active": *req.IsActive})
}

// Delete handles DELETE /admin/service-areas/:id requests
func (h *AdminAreaHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
