package services

import (
	"time"

	"github.com/finsight-app/finsight_backend/internal/models"
)

const (
	// fullHistoryYears is how far back a full sync reaches, regardless of
	// last-sync state.
	fullHistoryYears = 10
	// lightDefaultLookback bounds a light sync for an account that was
	// never synced before.
	lightDefaultLookback = 30 * 24 * time.Hour
)

// ComputeSyncWindow returns the date range to query for one account, given
// the sync mode and the account's stored last-synced timestamp.
func ComputeSyncWindow(mode models.SyncMode, lastSyncAt *time.Time, now time.Time) (start, end time.Time) {
	end = now
	if mode == models.SyncModeFull {
		start = now.AddDate(-fullHistoryYears, 0, 0)
		return start, end
	}
	if lastSyncAt != nil {
		start = *lastSyncAt
		return start, end
	}
	start = now.Add(-lightDefaultLookback)
	return start, end
}
