package handler

import (
	"context"
	"net/http"

	"service-area-api/internal/models"
	"service-area-api/internal/service"

	"github.com/gin-gonic/gin"
)

const defaultWaitlistPageSize = 100

// WaitlistManager is the administrative waitlist surface
type WaitlistManager interface {
	List(ctx context.Context, filter models.WaitlistFilter) ([]models.WaitlistEntry, error)
	CountByNearestCity(ctx context.Context) ([]models.WaitlistCount, error)
	Update(ctx context.Context, id int64, upd service.WaitlistUpdate) (*models.WaitlistEntry, error)
}

// AdminWaitlistHandler handles administrative waitlist requests
type AdminWaitlistHandler struct {
	service WaitlistManager
}

// NewAdminWaitlistHandler creates a new admin waitlist handler
func NewAdminWaitlistHandler(svc WaitlistManager) *AdminWaitlistHandler {
	return &AdminWaitlistHandler{service: svc}
}

// WaitlistQuery filters GET /admin/waitlist
type WaitlistQuery struct {
	Status string `form:"status" binding:"omitempty,oneof=pending contacted area_added declined"`
	Limit  uint64 `form:"limit" binding:"omitempty,max=500"`
	Offset uint64 `form:"offset"`
}

// WaitlistPatch is the body of PATCH /admin/waitlist/:id
type WaitlistPatch struct {
	Status     *string `json:"status" binding:"omitempty,oneof=pending contacted area_added declined"`
	AdminNotes *string `json:"admin_notes" binding:"omitempty,max=2000"`
}

// List handles GET /admin/waitlist requests
func (h *AdminWaitlistHandler) List(c *gin.Context) {
	var q WaitlistQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindingError(c, err)
		return
	}
	if q.Limit == 0 {
		q.Limit = defaultWaitlistPageSize
	}

	entries, err := h.service.List(c.Request.Context(), models.WaitlistFilter{
		Status: models.WaitlistStatus(q.Status),
		Limit:  q.Limit,
		Offset: q.Offset,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// Counts handles GET /admin/service-areas/waitlist-counts requests
func (h *AdminWaitlistHandler) Counts(c *gin.Context) {
	counts, err := h.service.CountByNearestCity(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, counts)
}

// Update handles PATCH /admin/waitlist/:id requests
func (h *AdminWaitlistHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req WaitlistPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, err)
		return
	}

	var upd service.WaitlistUpdate
	if req.Status != nil {
		status := models.WaitlistStatus(*req.Status)
		upd.Status = &status
	}
	upd.AdminNotes = req.AdminNotes

	entry, err := h.service.Update(c.Request.Context(), id, upd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}
