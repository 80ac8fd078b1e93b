package handler

import (
	"errors"
	"net/http"

	"notification-dispatch/internal/models"
	"notification-dispatch/pkg/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// handleServiceError maps service errors to HTTP status codes and the failure envelope.
func handleServiceError(c *gin.Context, err error) {
	var (
		statusCode int
		errResp    = models.ErrorResponse{Success: false}
		vErr       *models.ValidationError
		aErr       *models.AuthError
		dErr       *models.DeliveryError
	)

	switch {
	case errors.As(err, &vErr):
		statusCode = http.StatusBadRequest
		errResp.Error = vErr.Error()
	case errors.As(err, &aErr):
		statusCode = http.StatusUnauthorized
		errResp.Error = aErr.Error()
	case errors.As(err, &dErr):
		statusCode = http.StatusInternalServerError
		errResp.Error = dErr.Error()
		errResp.Details = "delivery via " + dErr.Provider + " failed"
	default:
		zap.L().Error("Unhandled internal error in handleServiceError",
			zap.String("request_id", middleware.RequestID(c)),
			zap.Error(err),
		)
		statusCode = http.StatusInternalServerError
		errResp.Error = "Internal server error"
	}

	c.AbortWithStatusJSON(statusCode, errResp)
}

func methodNotAllowed(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusMethodNotAllowed, models.ErrorResponse{Error: "Method Not Allowed"})
}
