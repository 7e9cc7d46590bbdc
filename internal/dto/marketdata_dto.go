package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quote is a current price for one symbol, expressed in CurrencyCode.
type Quote struct {
	Symbol        string          `json:"symbol"`
	Price         decimal.Decimal `json:"price"`
	CurrencyCode  string          `json:"currency"`
	ChangePercent decimal.Decimal `json:"changePercent"`
	AsOf          time.Time       `json:"asOf"`
}

// SymbolMatch is one result of a symbol search.
type SymbolMatch struct {
	Symbol       string `json:"symbol"`
	Name         string `json:"name"`
	Region       string `json:"region"`
	CurrencyCode string `json:"currency"`
}

// PricePoint is one daily close in a symbol's price history.
type PricePoint struct {
	Date  time.Time       `json:"date"`
	Close decimal.Decimal `json:"close"`
}
