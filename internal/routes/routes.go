package routes

import (
	"contentgen_backend/internal/handlers"
	"contentgen_backend/internal/logger"
	"contentgen_backend/internal/metrics"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RegisterRoutes регистрирует HTTP API v1 и служебные маршруты.
func RegisterRoutes(
	ginRouter *gin.Engine,
	appHandlers *handlers.AppHandlers,
	m *metrics.Metrics,
	enableSwagger bool,
) {
	appHandlers.HealthHandler.RegisterRoutes(ginRouter)

	if m != nil {
		ginRouter.GET("/metrics", m.Handler())
	}

	if enableSwagger {
		ginRouter.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
		logger.Info("Swagger UI registered", "path", "/swagger/index.html")
	}

	api := ginRouter.Group("/api/v1")
	{
		appHandlers.ContentHandler.RegisterRoutes(api)
		appHandlers.SubscriptionHandler.RegisterRoutes(api)
	}
}
