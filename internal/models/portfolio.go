package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PortfolioSnapshot is a dated point-in-time record of an investment
// account's value. Unique per (accountID, snapshotDate); value fields are
// overwritten on re-fetch since providers can correct past snapshots.
type PortfolioSnapshot struct {
	SnapshotID     string          `json:"snapshotID"`
	AccountID      string          `json:"accountID"` // FK -> ExternalAccount.accountID
	SnapshotDate   time.Time       `json:"snapshotDate"`
	TotalValue     decimal.Decimal `json:"totalValue"`
	TotalInvested  decimal.Decimal `json:"totalInvested"`
	Returns        decimal.Decimal `json:"returns"`
	ReturnsPercent decimal.Decimal `json:"returnsPercent"`
	AuditFields
}

// Holding belongs to exactly one snapshot. Providers return the full holdings
// set per snapshot, never a delta, so every snapshot write deletes and
// recreates all of its holdings together.
type Holding struct {
	HoldingID    string          `json:"holdingID"`
	SnapshotID   string          `json:"snapshotID"`
	Symbol       string          `json:"symbol"`
	Name         string          `json:"name"`
	Quantity     decimal.Decimal `json:"quantity"`
	AveragePrice decimal.Decimal `json:"averagePrice"`
	CurrentPrice decimal.Decimal `json:"currentPrice"`
	MarketValue  decimal.Decimal `json:"marketValue"`
	CurrencyCode string          `json:"currencyCode"`
}
