package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AssetType distinguishes the quote endpoint used for a tracked asset.
type AssetType string

const (
	AssetStock  AssetType = "STOCK"
	AssetCrypto AssetType = "CRYPTO"
)

// TrackedAsset is a symbol the user watches. The market-data sync step
// refreshes LastPrice for each tracked asset, quoted in CurrencyCode.
type TrackedAsset struct {
	AssetID      string          `json:"assetID"`
	UserID       string          `json:"userID"`
	Symbol       string          `json:"symbol"`
	AssetType    AssetType       `json:"assetType"`
	CurrencyCode string          `json:"currencyCode"`
	LastPrice    decimal.Decimal `json:"lastPrice"`
	LastPriceAt  *time.Time      `json:"lastPriceAt"` // nil until first successful quote
	AuditFields
}
