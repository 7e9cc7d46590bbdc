package handlers

import (
	portssvc "github.com/finsight-app/finsight_backend/internal/core/ports/services"
	"github.com/finsight-app/finsight_backend/internal/middleware"
	"github.com/finsight-app/finsight_backend/pkg/config"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes sets up all application routes, injecting dependencies
// using interfaces.
func RegisterRoutes(r *gin.Engine, cfg *config.Config, services *portssvc.ServiceContainer) {
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	// Identity arrives from the authenticating gateway; everything under
	// /api/v1 requires it.
	v1 := r.Group("/api/v1", middleware.TrustedIdentityMiddleware())
	registerSyncRoutes(v1, services.Sync)
}

func registerSyncRoutes(rg *gin.RouterGroup, syncSvc portssvc.SyncSvcFacade) {
	h := NewSyncHandler(syncSvc)
	rg.POST("/sync", h.TriggerSync)
	rg.GET("/sync/logs", h.ListSyncLogs)
}
