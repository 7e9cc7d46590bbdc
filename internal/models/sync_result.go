package models

import (
	"time"

	"github.com/finsight-app/finsight_backend/internal/apperrors"
)

// SourceStatus is the outcome of one source's sync step within a run.
type SourceStatus string

const (
	// SourceOK means the step completed acceptably (possibly with
	// individual items skipped).
	SourceOK SourceStatus = "OK"
	// SourceFailed means the step aborted with an error.
	SourceFailed SourceStatus = "FAILED"
	// SourceSkipped means the source is not configured for this deployment.
	SourceSkipped SourceStatus = "SKIPPED"
)

// SourceResult is the structured partial result returned by each source's
// sync step. Errors never cross a source boundary; they are folded in here.
type SourceResult struct {
	Source            Source         `json:"source"`
	Status            SourceStatus   `json:"status"`
	ProfilesSynced    int            `json:"profilesSynced"`
	AccountsSynced    int            `json:"accountsSynced"`
	TransactionsAdded int            `json:"transactionsAdded"`
	BalancesUpdated   int            `json:"balancesUpdated"`
	SnapshotsAdded    int            `json:"snapshotsAdded"`
	PricesUpdated     int            `json:"pricesUpdated"`
	ItemsSkipped      int            `json:"itemsSkipped"`
	ErrorKind         apperrors.Kind `json:"errorKind,omitempty"`
	Error             string         `json:"error,omitempty"`
}

// Ok reports whether the step outcome is acceptable for overall-success
// aggregation. A skipped (unconfigured) source is acceptable; so is a step
// that recorded item-level errors but did not abort.
func (r SourceResult) Ok() bool {
	return r.Status != SourceFailed
}

// SyncResult is the aggregated outcome of one run across all sources.
type SyncResult struct {
	UserID     string       `json:"userID"`
	Mode       SyncMode     `json:"mode"`
	Success    bool         `json:"success"`
	Payments   SourceResult `json:"payments"`
	Investment SourceResult `json:"investment"`
	MarketData SourceResult `json:"marketData"`
	Error      string       `json:"error,omitempty"`
	Summary    string       `json:"summary"`
	StartedAt  time.Time    `json:"startedAt"`
	FinishedAt time.Time    `json:"finishedAt"`
}
