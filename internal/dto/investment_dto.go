package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvestmentAccount is one brokerage account as reported by the investment
// provider.
type InvestmentAccount struct {
	AccountNumber string `json:"accountNumber"`
	Name          string `json:"name"`
	Type          string `json:"type"`
	Status        string `json:"status"`
	CurrencyCode  string `json:"currency"`
}

// InvestmentHolding is one position within an account's portfolio.
type InvestmentHolding struct {
	Symbol       string          `json:"symbol"`
	Name         string          `json:"name"`
	Quantity     decimal.Decimal `json:"quantity"`
	AveragePrice decimal.Decimal `json:"averagePrice"`
	CurrentPrice decimal.Decimal `json:"currentPrice"`
	MarketValue  decimal.Decimal `json:"marketValue"`
	CurrencyCode string          `json:"currency"`
}

// PerformancePoint is one dated value point in an account's performance
// history.
type PerformancePoint struct {
	Date  time.Time       `json:"date"`
	Value decimal.Decimal `json:"value"`
}
