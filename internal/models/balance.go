package models

import "github.com/shopspring/decimal"

// Balance is the current amount for one account/currency pair at one source.
// It is replaced on every run, not kept as history.
type Balance struct {
	BalanceID         string          `json:"balanceID"`
	AccountID         string          `json:"accountID"` // FK -> ExternalAccount.accountID
	Source            Source          `json:"source"`
	ExternalBalanceID string          `json:"externalBalanceID"` // natural key with Source
	CurrencyCode      string          `json:"currencyCode"`
	Amount            decimal.Decimal `json:"amount"`
	AuditFields
}
