package services_test

import (
	"context"
	"time"

	"github.com/finsight-app/finsight_backend/internal/dto"
	"github.com/finsight-app/finsight_backend/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// --- Repository mocks ---

type MockExternalAccountRepository struct {
	mock.Mock
}

func (m *MockExternalAccountRepository) UpsertAccount(ctx context.Context, account models.ExternalAccount) (*models.ExternalAccount, error) {
	args := m.Called(ctx, account)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ExternalAccount), args.Error(1)
}

func (m *MockExternalAccountRepository) MarkSynced(ctx context.Context, accountID string, at time.Time) error {
	args := m.Called(ctx, accountID, at)
	return args.Error(0)
}

func (m *MockExternalAccountRepository) FindByUserAndSource(ctx context.Context, userID string, source models.Source) ([]models.ExternalAccount, error) {
	args := m.Called(ctx, userID, source)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ExternalAccount), args.Error(1)
}

type MockBalanceRepository struct {
	mock.Mock
}

func (m *MockBalanceRepository) UpsertBalance(ctx context.Context, balance models.Balance) error {
	args := m.Called(ctx, balance)
	return args.Error(0)
}

type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) CreateIfAbsent(ctx context.Context, txn models.Transaction) (bool, error) {
	args := m.Called(ctx, txn)
	return args.Bool(0), args.Error(1)
}

type MockCategoryRuleRepository struct {
	mock.Mock
}

func (m *MockCategoryRuleRepository) ListRules(ctx context.Context, userID string) ([]models.CategoryKeywordRule, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CategoryKeywordRule), args.Error(1)
}

type MockFxRateRepository struct {
	mock.Mock
}

func (m *MockFxRateRepository) FindRate(ctx context.Context, from, to string, day time.Time) (*models.FxRate, error) {
	args := m.Called(ctx, from, to, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FxRate), args.Error(1)
}

func (m *MockFxRateRepository) SaveRate(ctx context.Context, rate models.FxRate) error {
	args := m.Called(ctx, rate)
	return args.Error(0)
}

type MockPortfolioRepository struct {
	mock.Mock
}

func (m *MockPortfolioRepository) UpsertSnapshot(ctx context.Context, snapshot models.PortfolioSnapshot, holdings []models.Holding) (bool, error) {
	args := m.Called(ctx, snapshot, holdings)
	return args.Bool(0), args.Error(1)
}

type MockTrackedAssetRepository struct {
	mock.Mock
}

func (m *MockTrackedAssetRepository) ListByUser(ctx context.Context, userID string) ([]models.TrackedAsset, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TrackedAsset), args.Error(1)
}

func (m *MockTrackedAssetRepository) UpdatePrice(ctx context.Context, assetID string, price decimal.Decimal, at time.Time) error {
	args := m.Called(ctx, assetID, price, at)
	return args.Error(0)
}

type MockSyncLogRepository struct {
	mock.Mock
}

func (m *MockSyncLogRepository) AppendLog(ctx context.Context, log models.SyncLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *MockSyncLogRepository) ListRecent(ctx context.Context, userID string, limit int) ([]models.SyncLog, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SyncLog), args.Error(1)
}

// --- Client mocks ---

type MockPaymentsClient struct {
	mock.Mock
}

func (m *MockPaymentsClient) ListAccounts(ctx context.Context) ([]dto.PaymentsAccount, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]dto.PaymentsAccount), args.Error(1)
}

func (m *MockPaymentsClient) GetBalances(ctx context.Context, accountID string) ([]dto.PaymentsBalance, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]dto.PaymentsBalance), args.Error(1)
}

func (m *MockPaymentsClient) GetActivities(ctx context.Context, accountID string, since, until time.Time) ([]dto.RawActivity, error) {
	args := m.Called(ctx, accountID, since, until)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]dto.RawActivity), args.Error(1)
}

func (m *MockPaymentsClient) GetExchangeRate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

type MockInvestmentClient struct {
	mock.Mock
}

func (m *MockInvestmentClient) GetCurrentUserAccounts(ctx context.Context) ([]dto.InvestmentAccount, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]dto.InvestmentAccount), args.Error(1)
}

func (m *MockInvestmentClient) GetAccount(ctx context.Context, accountNumber string) (*dto.InvestmentAccount, error) {
	args := m.Called(ctx, accountNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.InvestmentAccount), args.Error(1)
}

func (m *MockInvestmentClient) GetPortfolio(ctx context.Context, accountNumber string) ([]dto.InvestmentHolding, error) {
	args := m.Called(ctx, accountNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]dto.InvestmentHolding), args.Error(1)
}

func (m *MockInvestmentClient) GetPerformanceHistory(ctx context.Context, accountNumber string, start, end *time.Time) ([]dto.PerformancePoint, error) {
	args := m.Called(ctx, accountNumber, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]dto.PerformancePoint), args.Error(1)
}

func (m *MockInvestmentClient) GetNetContributions(ctx context.Context, accountNumber string) (decimal.Decimal, error) {
	args := m.Called(ctx, accountNumber)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

type MockMarketDataClient struct {
	mock.Mock
}

func (m *MockMarketDataClient) GetStockQuote(ctx context.Context, symbol, targetCurrency string) (*dto.Quote, error) {
	args := m.Called(ctx, symbol, targetCurrency)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.Quote), args.Error(1)
}

func (m *MockMarketDataClient) GetCryptoQuote(ctx context.Context, symbol, toCurrency string) (*dto.Quote, error) {
	args := m.Called(ctx, symbol, toCurrency)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.Quote), args.Error(1)
}

func (m *MockMarketDataClient) SearchSymbols(ctx context.Context, keywords string) ([]dto.SymbolMatch, error) {
	args := m.Called(ctx, keywords)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]dto.SymbolMatch), args.Error(1)
}

func (m *MockMarketDataClient) GetPriceHistory(ctx context.Context, symbol string) ([]dto.PricePoint, error) {
	args := m.Called(ctx, symbol)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]dto.PricePoint), args.Error(1)
}

// MockRateCache implements the rate cache facade for sync-step tests.
type MockRateCache struct {
	mock.Mock
}

func (m *MockRateCache) Rate(ctx context.Context, from, to string, at time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, from, to, at)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// stubSourceSyncer is a fixed-result source step for orchestrator tests.
type stubSourceSyncer struct {
	result models.SourceResult
	calls  int
}

func (s *stubSourceSyncer) SyncUser(ctx context.Context, userID string, mode models.SyncMode) models.SourceResult {
	s.calls++
	return s.result
}

// panickingSyncer simulates a defect inside a source step.
type panickingSyncer struct{}

func (p *panickingSyncer) SyncUser(ctx context.Context, userID string, mode models.SyncMode) models.SourceResult {
	panic("boom")
}
