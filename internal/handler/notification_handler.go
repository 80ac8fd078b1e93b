package handler

import (
	"errors"
	"io"
	"net/http"

	"notification-dispatch/internal/identity"
	"notification-dispatch/internal/models"
	"notification-dispatch/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type NotificationHandler struct {
	push   service.PushDispatcher
	email  service.EmailDispatcher
	logger *zap.Logger
}

func NewNotificationHandler(push service.PushDispatcher, email service.EmailDispatcher, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{
		push:   push,
		email:  email,
		logger: logger.Named("notification_handler"),
	}
}

func (h *NotificationHandler) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api")
	{
		api.POST("/fcm", h.sendPush)
		api.OPTIONS("/fcm", preflight)

		api.POST("/mail", h.sendAuthenticatedMail)
		api.GET("/mail", h.sendLookupMail)
		api.OPTIONS("/mail", preflight)
	}
}

// preflight answers 204 with no body.
func preflight(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

func (h *NotificationHandler) sendPush(c *gin.Context) {
	var req models.NotificationRequest
	if err := bindJSON(c, &req); err != nil {
		handleServiceError(c, err)
		return
	}

	messageID, err := h.push.Dispatch(c.Request.Context(), req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.PushResponse{Success: true, MessageID: messageID})
}

// sendAuthenticatedMail checks the Authorization header before reading the body.
func (h *NotificationHandler) sendAuthenticatedMail(c *gin.Context) {
	token, err := identity.ParseBearer(c.GetHeader("Authorization"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	var req models.CredentialEmailRequest
	if err := bindJSON(c, &req); err != nil {
		handleServiceError(c, err)
		return
	}

	ident, err := h.email.SendAuthenticated(c.Request.Context(), token, req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.EmailResponse{
		Success: true,
		UID:     ident.UID,
		Message: models.EmailSentMessage,
	})
}

func (h *NotificationHandler) sendLookupMail(c *gin.Context) {
	var req models.LookupEmailRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		handleServiceError(c, &models.ValidationError{Err: err})
		return
	}

	ident, err := h.email.SendToUser(c.Request.Context(), req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.EmailResponse{
		Success: true,
		UID:     ident.UID,
		Email:   ident.Email,
		Message: models.EmailSentMessage,
	})
}

// bindJSON decodes the request body. An empty body is treated as an empty object,
// so the validator reports the missing fields instead of a parse error.
func bindJSON(c *gin.Context, obj any) error {
	err := c.ShouldBindJSON(obj)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return &models.ValidationError{Reason: "invalid JSON body", Err: errors.Join(models.ErrMalformedBody, err)}
}
