package handler

import (
	"context"
	"net/http"

	"service-area-api/internal/metrics"
	"service-area-api/internal/models"
	"service-area-api/internal/service"

	"github.com/gin-gonic/gin"
)

// WaitlistCapturer records interest from unserved locations
type WaitlistCapturer interface {
	Capture(ctx context.Context, req service.CaptureRequest) (*models.WaitlistEntry, error)
}

// WaitlistHandler handles public waitlist submissions
type WaitlistHandler struct {
	service WaitlistCapturer
}

// NewWaitlistHandler creates a new waitlist handler
func NewWaitlistHandler(svc WaitlistCapturer) *WaitlistHandler {
	return &WaitlistHandler{service: svc}
}

// WaitlistRequest is the body of POST /service-area/waitlist
type WaitlistRequest struct {
	Email              string   `json:"email" binding:"required,email,max=255"`
	Name               string   `json:"name" binding:"max=255"`
	Phone              string   `json:"phone" binding:"max=32"`
	RequestedAddress   string   `json:"requested_address" binding:"required,max=500"`
	RequestedLatitude  *float64 `json:"requested_latitude" binding:"required"`
	RequestedLongitude *float64 `json:"requested_longitude" binding:"required"`
}

// WaitlistResponse acknowledges a stored entry
type WaitlistResponse struct {
	ID      int64  `json:"id"`
	Message string `json:"message"`
}

const msgWaitlistCreated = "You have been added to the waitlist. We will let you know when we reach your area."

// Join handles POST /service-area/waitlist requests
//
//	@Summary	Join the waitlist for an unserved location
//	@Tags		service-area
//	@Accept		json
//	@Produce	json
//	@Param		request	body		WaitlistRequest	true	"Contact and location"
//	@Success	201		{object}	WaitlistResponse
//	@Failure	409		{object}	map[string]string
//	@Failure	422		{object}	map[string]string
//	@Failure	429		{object}	map[string]string
//	@Failure	503		{object}	map[string]string
//	@Router		/service-area/waitlist [post]
func (h *WaitlistHandler) Join(c *gin.Context) {
	var req WaitlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		metrics.WaitlistCapturesTotal.WithLabelValues(metrics.OutcomeInvalid).Inc()
		bindingError(c, err)
		return
	}

	entry, err := h.service.Capture(c.Request.Context(), service.CaptureRequest{
		Email:              req.Email,
		Name:               req.Name,
		Phone:              req.Phone,
		RequestedAddress:   req.RequestedAddress,
		RequestedLatitude:  *req.RequestedLatitude,
		RequestedLongitude: *req.RequestedLongitude,
	})
	if err != nil {
		metrics.WaitlistCapturesTotal.WithLabelValues(outcomeFor(err)).Inc()
		respondError(c, err)
		return
	}

	metrics.WaitlistCapturesTotal.WithLabelValues(metrics.OutcomeCreated).Inc()
	c.JSON(http.StatusCreated, WaitlistResponse{ID: entry.ID, Message: msgWaitlistCreated})
}
