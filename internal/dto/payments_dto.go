package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentsAccount is one account as reported by the payments provider.
type PaymentsAccount struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Type         string `json:"type"`
	Status       string `json:"status"`
	CurrencyCode string `json:"currency"`
}

// PaymentsBalance is one balance entry for a payments account.
type PaymentsBalance struct {
	ID           string          `json:"id"`
	CurrencyCode string          `json:"currency"`
	Amount       decimal.Decimal `json:"amount"`
}

// RawActivity is one provider activity record before normalization.
// Amount keeps the provider's sign: positive marks money in, negative
// money out.
type RawActivity struct {
	ID               string          `json:"id"`
	Type             string          `json:"type"`
	Amount           decimal.Decimal `json:"amount"`
	CurrencyCode     string          `json:"currency"`
	Date             time.Time       `json:"date"`
	Description      string          `json:"description"`
	PaymentReference string          `json:"paymentReference"`
	MerchantName     string          `json:"merchantName"`
}

// ActivityPage is one page of the cursor-paginated activity feed.
type ActivityPage struct {
	Items      []RawActivity `json:"items"`
	NextCursor string        `json:"nextCursor"`
}
