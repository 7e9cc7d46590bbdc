package services

import (
	"context"
	"time"

	"github.com/finsight-app/finsight_backend/internal/models"
	"github.com/shopspring/decimal"
)

// RateCacheSvcFacade memoizes FX rates by (from, to, calendar day).
type RateCacheSvcFacade interface {
	// Rate returns 1 without any I/O when from == to. Otherwise it serves
	// from the persisted cache, falling back to the payments provider on a
	// miss. Cached entries are never invalidated.
	Rate(ctx context.Context, from, to string, at time.Time) (decimal.Decimal, error)
}

// SourceSyncSvcFacade is one source's sync step. Implementations never let an
// error escape: failures are folded into the returned SourceResult.
type SourceSyncSvcFacade interface {
	SyncUser(ctx context.Context, userID string, mode models.SyncMode) models.SourceResult
}

// SyncSvcFacade drives one sync run across all sources.
type SyncSvcFacade interface {
	RunSync(ctx context.Context, userID string, mode models.SyncMode) (*models.SyncResult, error)
	ListRecentLogs(ctx context.Context, userID string, limit int) ([]models.SyncLog, error)
}

// ServiceContainer holds all services needed by the handlers layer.
type ServiceContainer struct {
	Sync      SyncSvcFacade
	RateCache RateCacheSvcFacade
}
