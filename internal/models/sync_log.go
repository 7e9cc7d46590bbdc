package models

import "time"

// SyncStatus is the overall outcome of one sync run.
type SyncStatus string

const (
	SyncSuccess SyncStatus = "SUCCESS"
	SyncPartial SyncStatus = "PARTIAL"
	SyncFailed  SyncStatus = "FAILED"
)

// SyncLog is the append-only record of one run's outcome. Rows are never
// mutated or deleted by the core.
type SyncLog struct {
	SyncLogID         string     `json:"syncLogID"`
	UserID            string     `json:"userID"`
	Mode              SyncMode   `json:"mode"`
	Status            SyncStatus `json:"status"`
	ProfilesSynced    int        `json:"profilesSynced"`
	AccountsSynced    int        `json:"accountsSynced"`
	TransactionsAdded int        `json:"transactionsAdded"`
	BalancesUpdated   int        `json:"balancesUpdated"`
	SnapshotsAdded    int        `json:"snapshotsAdded"`
	PricesUpdated     int        `json:"pricesUpdated"`
	Error             string     `json:"error"`
	Summary           string     `json:"summary"`
	StartedAt         time.Time  `json:"startedAt"`
	FinishedAt        time.Time  `json:"finishedAt"`
}
