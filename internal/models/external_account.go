package models

import "time"

// ExternalAccount is one account discovered at an external provider, one row
// per (source, external account identifier) per user. It is created on the
// first successful account fetch and carries the last-synced watermark used
// by the window policy.
type ExternalAccount struct {
	AccountID    string     `json:"accountID"`
	UserID       string     `json:"userID"`
	Source       Source     `json:"source"`
	ExternalID   string     `json:"externalID"`
	Name         string     `json:"name"`
	AccountType  string     `json:"accountType"` // provider-specific (e.g. CHECKING, BROKERAGE)
	Status       string     `json:"status"`
	CurrencyCode string     `json:"currencyCode"`
	LastSyncAt   *time.Time `json:"lastSyncAt"` // nil until the first successful sync
	AuditFields
}
