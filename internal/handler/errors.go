package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"service-area-api/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const (
	msgInternalError       = "internal server error"
	msgRegistryUnavailable = "service area lookup is temporarily unavailable, please retry"
	msgInvalidID           = "invalid id"
)

// respondError maps domain errors to status codes. Unknown errors are logged and hidden.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrInvalidCoordinates):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": models.ErrInvalidCoordinates.Error()})
	case errors.Is(err, models.ErrInvalidServiceArea), errors.Is(err, models.ErrInvalidInput):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": unwrapMessage(err)})
	case errors.Is(err, models.ErrDuplicateWaitlistEntry):
		c.JSON(http.StatusConflict, gin.H{"error": models.ErrDuplicateWaitlistEntry.Error()})
	case errors.Is(err, models.ErrInvalidStatusTransition):
		c.JSON(http.StatusConflict, gin.H{"error": unwrapMessage(err)})
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": models.ErrNotFound.Error()})
	case errors.Is(err, models.ErrRegistryUnavailable):
		log.Error().Err(err).Str("path", c.FullPath()).Msg("service area registry unavailable")
		c.Header("Retry-After", "5")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": msgRegistryUnavailable})
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgInternalError})
	}
}

// unwrapMessage strips the "layer: " prefixes added while the error travelled up.
func unwrapMessage(err error) string {
	msg := err.Error()
	for _, prefix := range []string{"service: ", "repository: "} {
		msg = strings.TrimPrefix(msg, prefix)
	}
	return msg
}

func bindingError(c *gin.Context, err error) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid request body", "details": err.Error()})
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidID})
		return 0, false
	}
	return id, true
}
