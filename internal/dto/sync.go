package dto

import (
	"time"

	"github.com/finsight-app/finsight_backend/internal/models"
)

// TriggerSyncRequest is the body of POST /api/v1/sync.
type TriggerSyncRequest struct {
	Mode string `json:"mode" binding:"required,oneof=light full"`
}

// SourceResultResponse mirrors models.SourceResult for the API.
type SourceResultResponse struct {
	Source            string `json:"source"`
	Status            string `json:"status"`
	ProfilesSynced    int    `json:"profilesSynced"`
	AccountsSynced    int    `json:"accountsSynced"`
	TransactionsAdded int    `json:"transactionsAdded"`
	BalancesUpdated   int    `json:"balancesUpdated"`
	SnapshotsAdded    int    `json:"snapshotsAdded"`
	PricesUpdated     int    `json:"pricesUpdated"`
	ItemsSkipped      int    `json:"itemsSkipped"`
	ErrorKind         string `json:"errorKind,omitempty"`
	Error             string `json:"error,omitempty"`
}

// SyncResponse is the aggregated run result returned to the caller.
type SyncResponse struct {
	UserID     string               `json:"userID"`
	Mode       string               `json:"mode"`
	Success    bool                 `json:"success"`
	Payments   SourceResultResponse `json:"payments"`
	Investment SourceResultResponse `json:"investment"`
	MarketData SourceResultResponse `json:"marketData"`
	Error      string               `json:"error,omitempty"`
	Summary    string               `json:"summary"`
	StartedAt  time.Time            `json:"startedAt"`
	FinishedAt time.Time            `json:"finishedAt"`
}

func toSourceResultResponse(r models.SourceResult) SourceResultResponse {
	return SourceResultResponse{
		Source:            string(r.Source),
		Status:            string(r.Status),
		ProfilesSynced:    r.ProfilesSynced,
		AccountsSynced:    r.AccountsSynced,
		TransactionsAdded: r.TransactionsAdded,
		BalancesUpdated:   r.BalancesUpdated,
		SnapshotsAdded:    r.SnapshotsAdded,
		PricesUpdated:     r.PricesUpdated,
		ItemsSkipped:      r.ItemsSkipped,
		ErrorKind:         string(r.ErrorKind),
		Error:             r.Error,
	}
}

// ToSyncResponse maps the domain result to the API shape.
func ToSyncResponse(res *models.SyncResult) SyncResponse {
	return SyncResponse{
		UserID:     res.UserID,
		Mode:       string(res.Mode),
		Success:    res.Success,
		Payments:   toSourceResultResponse(res.Payments),
		Investment: toSourceResultResponse(res.Investment),
		MarketData: toSourceResultResponse(res.MarketData),
		Error:      res.Error,
		Summary:    res.Summary,
		StartedAt:  res.StartedAt,
		FinishedAt: res.FinishedAt,
	}
}

// SyncLogResponse is one append-only run record returned by the logs listing.
type SyncLogResponse struct {
	SyncLogID         string    `json:"syncLogID"`
	Mode              string    `json:"mode"`
	Status            string    `json:"status"`
	ProfilesSynced    int       `json:"profilesSynced"`
	AccountsSynced    int       `json:"accountsSynced"`
	TransactionsAdded int       `json:"transactionsAdded"`
	BalancesUpdated   int       `json:"balancesUpdated"`
	SnapshotsAdded    int       `json:"snapshotsAdded"`
	PricesUpdated     int       `json:"pricesUpdated"`
	Error             string    `json:"error,omitempty"`
	Summary           string    `json:"summary"`
	StartedAt         time.Time `json:"startedAt"`
	FinishedAt        time.Time `json:"finishedAt"`
}

// ToSyncLogResponse maps a stored sync log row to the API shape.
func ToSyncLogResponse(l models.SyncLog) SyncLogResponse {
	return SyncLogResponse{
		SyncLogID:         l.SyncLogID,
		Mode:              string(l.Mode),
		Status:            string(l.Status),
		ProfilesSynced:    l.ProfilesSynced,
		AccountsSynced:    l.AccountsSynced,
		TransactionsAdded: l.TransactionsAdded,
		BalancesUpdated:   l.BalancesUpdated,
		SnapshotsAdded:    l.SnapshotsAdded,
		PricesUpdated:     l.PricesUpdated,
		Error:             l.Error,
		Summary:           l.Summary,
		StartedAt:         l.StartedAt,
		FinishedAt:        l.FinishedAt,
	}
}
