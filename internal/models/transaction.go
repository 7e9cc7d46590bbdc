package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the canonical direction/category of a transaction.
type TransactionType string

const (
	Income     TransactionType = "INCOME"
	Expense    TransactionType = "EXPENSE"
	Transfer   TransactionType = "TRANSFER"
	Investment TransactionType = "INVESTMENT"
)

// Transaction is the canonical record produced from a raw provider activity.
// Invariant: created exactly once per ExternalRef, never mutated by a later
// sync run. Amount is always the absolute value; direction lives in Type.
type Transaction struct {
	TransactionID        string          `json:"transactionID"`
	UserID               string          `json:"userID"`
	AccountID            string          `json:"accountID"`   // FK -> ExternalAccount.accountID
	ExternalRef          string          `json:"externalRef"` // source-qualified, unique
	Type                 TransactionType `json:"type"`
	Amount               decimal.Decimal `json:"amount"` // absolute value
	CurrencyCode         string          `json:"currencyCode"`
	AmountInBaseCurrency decimal.Decimal `json:"amountInBaseCurrency"`
	Date                 time.Time       `json:"date"`
	Description          string          `json:"description"`
	CategoryID           *string         `json:"categoryID"` // nil when no keyword rule matched
	AuditFields
}
