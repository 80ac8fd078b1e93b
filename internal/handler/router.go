package handler

import (
	"net/http"
	"time"

	"notification-dispatch/pkg/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"
)

// NewRouter builds the gin engine: access log, recovery, CORS, 405 handling, health and API routes.
// allowedOrigins == nil allows any origin.
func NewRouter(h *NotificationHandler, allowedOrigins []string, logger *zap.Logger) *gin.Engine {
	// Numbers in data are decoded as json.Number.
	binding.EnableDecoderUseNumber = true

	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(middleware.GinZapLogger(logger))
	router.Use(gin.Recovery())

	corsConfig := cors.Config{
		AllowMethods: []string{http.MethodPost, http.MethodGet, http.MethodOptions},
		AllowHeaders: []string{"Content-Type", "Authorization"},
		MaxAge:       24 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		corsConfig.AllowOrigins = allowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	router.Use(cors.New(corsConfig))

	router.NoMethod(methodNotAllowed)

	healthHandler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
	router.GET("/health", healthHandler)
	router.HEAD("/health", healthHandler)

	h.RegisterRoutes(router)
	return router
}
