package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	portssvc "github.com/finsight-app/finsight_backend/internal/core/ports/services"
	"github.com/finsight-app/finsight_backend/internal/dto"
	"github.com/finsight-app/finsight_backend/internal/middleware"
	"github.com/finsight-app/finsight_backend/internal/models"
	"github.com/gin-gonic/gin"
)

// SyncHandler exposes the sync trigger and the run-log listing.
type SyncHandler struct {
	syncSvc portssvc.SyncSvcFacade
}

// NewSyncHandler creates a new SyncHandler.
func NewSyncHandler(syncSvc portssvc.SyncSvcFacade) *SyncHandler {
	return &SyncHandler{syncSvc: syncSvc}
}

// TriggerSync runs one synchronous sync run for the calling user.
// POST /api/v1/sync
func (h *SyncHandler) TriggerSync(c *gin.Context) {
	var req dto.TriggerSyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "mode must be 'light' or 'full'"})
		return
	}

	userID := middleware.GetUserID(c)
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	result, err := h.syncSvc.RunSync(c.Request.Context(), userID, models.SyncMode(req.Mode))
	if err != nil {
		// Only a defect in the aggregation itself lands here; per-source
		// failures come back inside the result.
		logger.Error("Sync run failed unexpectedly",
			slog.String("user_id", userID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "sync run failed"})
		return
	}

	c.JSON(http.StatusOK, dto.ToSyncResponse(result))
}

// ListSyncLogs returns the user's most recent run records.
// GET /api/v1/sync/logs?limit=20
func (h *SyncHandler) ListSyncLogs(c *gin.Context) {
	userID := middleware.GetUserID(c)

	limit := 20
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 100 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 100"})
			return
		}
		limit = parsed
	}

	logs, err := h.syncSvc.ListRecentLogs(c.Request.Context(), userID, limit)
	if err != nil {
		middleware.GetLoggerFromCtx(c.Request.Context()).Error("Failed to list sync logs",
			slog.String("user_id", userID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list sync logs"})
		return
	}

	out := make([]dto.SyncLogResponse, 0, len(logs))
	for _, l := range logs {
		out = append(out, dto.ToSyncLogResponse(l))
	}
	c.JSON(http.StatusOK, gin.H{"logs": out})
}
