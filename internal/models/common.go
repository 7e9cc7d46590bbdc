package models

import "time"

// Source identifies which external provider an entity originated from.
type Source string

const (
	SourcePayments   Source = "PAYMENTS"
	SourceInvestment Source = "INVESTMENT"
	SourceMarketData Source = "MARKET_DATA"
)

// SyncMode selects how far back a sync run queries each source.
type SyncMode string

const (
	// SyncModeLight queries only data since the last successful sync
	// (or a short default lookback).
	SyncModeLight SyncMode = "light"
	// SyncModeFull queries a long fixed historical window regardless of
	// last-sync state.
	SyncModeFull SyncMode = "full"
)

// AuditFields holds standard audit information for persisted entities.
type AuditFields struct {
	CreatedAt     time.Time `json:"createdAt"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
}
