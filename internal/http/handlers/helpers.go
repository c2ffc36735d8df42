package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/phambaophuc/filekit-workers/internal/errors"
	"github.com/phambaophuc/filekit-workers/internal/models"
	"go.uber.org/zap"
)

// === REQUEST PARSING ===

func bindJSON(c *gin.Context, dst interface{}) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return apperrors.Wrap(apperrors.KindValidation, "handlers.bindJSON", "Invalid request body", err)
	}
	return nil
}

// === RESPONSE HANDLING ===

func statusFor(err error) int {
	switch apperrors.KindOf(err) {
	case apperrors.KindValidation:
		return http.StatusBadRequest
	case apperrors.KindNotFound:
		return http.StatusNotFound
	case apperrors.KindConflict:
		return http.StatusConflict
	case apperrors.KindUnavailable, apperrors.KindQueue:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, logger *zap.Logger, err error) {
	status := statusFor(err)

	message := apperrors.MessageOf(err)
	if apperrors.KindOf(err) == apperrors.KindUnknown {
		message = "Internal server error"
	}

	if status >= http.StatusInternalServerError {
		logger.Error("Request failed",
			zap.String("path", c.FullPath()),
			zap.Int("status", status),
			zap.Error(err))
	}

	_ = c.Error(err)
	c.JSON(status, models.APIResponse{
		OK:    false,
		Error: message,
	})
}

// === UTILITY METHODS ===

func calculateOverallHealth(services map[string]string) string {
	for _, status := range services {
		if status != "healthy" && status != "not configured" {
			return "unhealthy"
		}
	}
	return "healthy"
}
