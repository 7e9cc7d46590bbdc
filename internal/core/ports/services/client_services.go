package services

import (
	"context"
	"time"

	"github.com/finsight-app/finsight_backend/internal/dto"
	"github.com/shopspring/decimal"
)

// PaymentsSvcFacade is the typed surface of the payments/banking provider.
type PaymentsSvcFacade interface {
	ListAccounts(ctx context.Context) ([]dto.PaymentsAccount, error)
	GetBalances(ctx context.Context, accountID string) ([]dto.PaymentsBalance, error)
	// GetActivities fetches every page of the cursor-paginated feed for the
	// window and returns the items concatenated in server order.
	GetActivities(ctx context.Context, accountID string, since, until time.Time) ([]dto.RawActivity, error)
	GetExchangeRate(ctx context.Context, from, to string) (decimal.Decimal, error)
}

// InvestmentSvcFacade is the typed surface of the investment platform. The
// implementation owns the JWT lifecycle: re-authentication before expiry and
// a single retry on 401/403.
type InvestmentSvcFacade interface {
	GetCurrentUserAccounts(ctx context.Context) ([]dto.InvestmentAccount, error)
	GetAccount(ctx context.Context, accountNumber string) (*dto.InvestmentAccount, error)
	GetPortfolio(ctx context.Context, accountNumber string) ([]dto.InvestmentHolding, error)
	// GetPerformanceHistory drops points with a non-positive value or a date
	// in the future before returning.
	GetPerformanceHistory(ctx context.Context, accountNumber string, start, end *time.Time) ([]dto.PerformancePoint, error)
	// GetNetContributions returns the most recent value of the provider's
	// date-keyed net deposits-minus-withdrawals map.
	GetNetContributions(ctx context.Context, accountNumber string) (decimal.Decimal, error)
}

// MarketDataSvcFacade is the typed surface of the market-data provider. All
// calls share one min-interval gate, so bursts serialize instead of erroring.
type MarketDataSvcFacade interface {
	// GetStockQuote converts the quote to targetCurrency when it differs
	// from the quote's native currency. Empty targetCurrency keeps the
	// native currency.
	GetStockQuote(ctx context.Context, symbol, targetCurrency string) (*dto.Quote, error)
	GetCryptoQuote(ctx context.Context, symbol, toCurrency string) (*dto.Quote, error)
	SearchSymbols(ctx context.Context, keywords string) ([]dto.SymbolMatch, error)
	GetPriceHistory(ctx context.Context, symbol string) ([]dto.PricePoint, error)
}
