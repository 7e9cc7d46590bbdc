package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// FxRate is a cached foreign-exchange rate for one currency pair on one
// calendar day. Entries are immutable once cached; a historical rate for a
// given day is treated as settled truth and never invalidated.
type FxRate struct {
	FxRateID         string          `json:"fxRateID"`
	FromCurrencyCode string          `json:"fromCurrencyCode"`
	ToCurrencyCode   string          `json:"toCurrencyCode"`
	RateDate         time.Time       `json:"rateDate"` // calendar day, UTC midnight
	Rate             decimal.Decimal `json:"rate"`
	CreatedAt        time.Time       `json:"createdAt"`
}
