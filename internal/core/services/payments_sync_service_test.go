package services_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/finsight-app/finsight_backend/internal/apperrors"
	"github.com/finsight-app/finsight_backend/internal/core/services"
	"github.com/finsight-app/finsight_backend/internal/dto"
	"github.com/finsight-app/finsight_backend/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type PaymentsSyncServiceTestSuite struct {
	suite.Suite
	mockClient      *MockPaymentsClient
	mockAccountRepo *MockExternalAccountRepository
	mockBalanceRepo *MockBalanceRepository
	mockTxnRepo     *MockTransactionRepository
	mockRuleRepo    *MockCategoryRuleRepository
	mockRateCache   *MockRateCache
	service         *services.PaymentsSyncService
}

func (s *PaymentsSyncServiceTestSuite) SetupTest() {
	s.mockClient = new(MockPaymentsClient)
	s.mockAccountRepo = new(MockExternalAccountRepository)
	s.mockBalanceRepo = new(MockBalanceRepository)
	s.mockTxnRepo = new(MockTransactionRepository)
	s.mockRuleRepo = new(MockCategoryRuleRepository)
	s.mockRateCache = new(MockRateCache)
	s.service = services.NewPaymentsSyncService(
		s.mockClient,
		s.mockAccountRepo,
		s.mockBalanceRepo,
		s.mockTxnRepo,
		s.mockRuleRepo,
		services.NewNormalizerService(slog.Default()),
		s.mockRateCache,
		"EUR",
		slog.Default(),
	)
}

func (s *PaymentsSyncServiceTestSuite) stubAccount() {
	s.mockClient.On("ListAccounts", mock.Anything).Return([]dto.PaymentsAccount{
		{ID: "ext-1", Name: "Main", Type: "CHECKING", Status: "ACTIVE", CurrencyCode: "EUR"},
	}, nil)
	s.mockAccountRepo.On("UpsertAccount", mock.Anything, mock.Anything).Return(
		&models.ExternalAccount{AccountID: "acc-1", UserID: "user-1", Source: models.SourcePayments, ExternalID: "ext-1"}, nil)
	s.mockRuleRepo.On("ListRules", mock.Anything, "user-1").Return([]models.CategoryKeywordRule{
		{RuleID: "r1", Keyword: "netflix", CategoryID: "cat-1"},
	}, nil)
	s.mockClient.On("GetBalances", mock.Anything, "ext-1").Return([]dto.PaymentsBalance{
		{ID: "bal-1", CurrencyCode: "EUR", Amount: decimal.RequireFromString("100.00")},
	}, nil)
	s.mockBalanceRepo.On("UpsertBalance", mock.Anything, mock.Anything).Return(nil)
}

func activity(id, activityType, amount, currency, description string) dto.RawActivity {
	return dto.RawActivity{
		ID:           id,
		Type:         activityType,
		Amount:       decimal.RequireFromString(amount),
		CurrencyCode: currency,
		Date:         time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC),
		Description:  description,
	}
}

func (s *PaymentsSyncServiceTestSuite) TestHappyPathCountsEverything() {
	s.stubAccount()
	s.mockClient.On("GetActivities", mock.Anything, "ext-1", mock.Anything, mock.Anything).Return([]dto.RawActivity{
		activity("a1", "CARD_PAYMENT", "-12.99", "EUR", "NETFLIX.COM SUBSCRIPTION"),
		activity("a2", "SALARY", "2500.00", "EUR", "ACME PAYROLL"),
	}, nil)
	s.mockTxnRepo.On("CreateIfAbsent", mock.Anything, mock.Anything).Return(true, nil)
	s.mockAccountRepo.On("MarkSynced", mock.Anything, "acc-1", mock.Anything).Return(nil)

	result := s.service.SyncUser(context.Background(), "user-1", models.SyncModeLight)

	s.Equal(models.SourceOK, result.Status)
	s.Equal(1, result.AccountsSynced)
	s.Equal(1, result.BalancesUpdated)
	s.Equal(2, result.TransactionsAdded)
	s.mockAccountRepo.AssertCalled(s.T(), "MarkSynced", mock.Anything, "acc-1", mock.Anything)
	// Base-currency activities never touch the rate cache.
	s.mockRateCache.AssertNotCalled(s.T(), "Rate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *PaymentsSyncServiceTestSuite) TestTransactionsAreCategorized() {
	s.stubAccount()
	s.mockClient.On("GetActivities", mock.Anything, "ext-1", mock.Anything, mock.Anything).Return([]dto.RawActivity{
		activity("a1", "CARD_PAYMENT", "-12.99", "EUR", "NETFLIX.COM SUBSCRIPTION"),
	}, nil)
	s.mockTxnRepo.On("CreateIfAbsent", mock.Anything, mock.MatchedBy(func(txn models.Transaction) bool {
		return txn.CategoryID != nil && *txn.CategoryID == "cat-1" &&
			txn.ExternalRef == "payments:a1" &&
			txn.Type == models.Expense &&
			txn.Amount.Equal(decimal.RequireFromString("12.99"))
	})).Return(true, nil)
	s.mockAccountRepo.On("MarkSynced", mock.Anything, "acc-1", mock.Anything).Return(nil)

	result := s.service.SyncUser(context.Background(), "user-1", models.SyncModeLight)

	s.Equal(models.SourceOK, result.Status)
	s.Equal(1, result.TransactionsAdded)
	s.mockTxnRepo.AssertExpectations(s.T())
}

func (s *PaymentsSyncServiceTestSuite) TestSecondRunAddsNothing() {
	s.stubAccount()
	s.mockClient.On("GetActivities", mock.Anything, "ext-1", mock.Anything, mock.Anything).Return([]dto.RawActivity{
		activity("a1", "CARD_PAYMENT", "-12.99", "EUR", "coffee"),
		activity("a2", "SALARY", "2500.00", "EUR", "payroll"),
	}, nil)
	// The store already has both rows: write-once upserts report no insert.
	s.mockTxnRepo.On("CreateIfAbsent", mock.Anything, mock.Anything).Return(false, nil)
	s.mockAccountRepo.On("MarkSynced", mock.Anything, "acc-1", mock.Anything).Return(nil)

	result := s.service.SyncUser(context.Background(), "user-1", models.SyncModeLight)

	s.Equal(models.SourceOK, result.Status)
	s.Equal(0, result.TransactionsAdded)
}

func (s *PaymentsSyncServiceTestSuite) TestDuplicateExternalRefYieldsOneTransaction() {
	s.stubAccount()
	s.mockClient.On("GetActivities", mock.Anything, "ext-1", mock.Anything, mock.Anything).Return([]dto.RawActivity{
		activity("a1", "CARD_PAYMENT", "-12.99", "EUR", "coffee"),
		activity("a1", "CARD_PAYMENT", "-12.99", "EUR", "coffee"),
	}, nil)
	s.mockTxnRepo.On("CreateIfAbsent", mock.Anything, mock.Anything).Return(true, nil).Once()
	s.mockTxnRepo.On("CreateIfAbsent", mock.Anything, mock.Anything).Return(false, nil).Once()
	s.mockAccountRepo.On("MarkSynced", mock.Anything, "acc-1", mock.Anything).Return(nil)

	result := s.service.SyncUser(context.Background(), "user-1", models.SyncModeLight)

	s.Equal(1, result.TransactionsAdded)
}

func (s *PaymentsSyncServiceTestSuite) TestCardAuthHoldCreatesNoTransaction() {
	s.stubAccount()
	s.mockClient.On("GetActivities", mock.Anything, "ext-1", mock.Anything, mock.Anything).Return([]dto.RawActivity{
		activity("a1", "CARD_AUTH_HOLD", "-50.00", "EUR", "hotel hold"),
	}, nil)
	s.mockAccountRepo.On("MarkSynced", mock.Anything, "acc-1", mock.Anything).Return(nil)

	result := s.service.SyncUser(context.Background(), "user-1", models.SyncModeLight)

	s.Equal(models.SourceOK, result.Status)
	s.Equal(0, result.TransactionsAdded)
	s.mockTxnRepo.AssertNotCalled(s.T(), "CreateIfAbsent", mock.Anything, mock.Anything)
}

func (s *PaymentsSyncServiceTestSuite) TestRateLimitStopsBatchWithoutFailingRun() {
	s.stubAccount()
	s.mockClient.On("GetActivities", mock.Anything, "ext-1", mock.Anything, mock.Anything).Return([]dto.RawActivity{
		activity("a1", "CARD_PAYMENT", "-10.00", "EUR", "one"),
		activity("a2", "CARD_PAYMENT", "-20.00", "USD", "two"),
		activity("a3", "CARD_PAYMENT", "-30.00", "USD", "three"),
	}, nil)
	s.mockTxnRepo.On("CreateIfAbsent", mock.Anything, mock.Anything).Return(true, nil).Once()
	s.mockRateCache.On("Rate", mock.Anything, "USD", "EUR", mock.Anything).Return(decimal.Zero,
		apperrors.NewProviderError("payments", apperrors.KindRateLimit, 429, "too many requests"))

	result := s.service.SyncUser(context.Background(), "user-1", models.SyncModeLight)

	s.Equal(models.SourceOK, result.Status, "rate limit must not fail the run")
	s.Equal(apperrors.KindRateLimit, result.ErrorKind)
	s.Equal(1, result.TransactionsAdded)
	s.Equal(2, result.ItemsSkipped)
	// The account never completed, so the watermark must not advance.
	s.mockAccountRepo.AssertNotCalled(s.T(), "MarkSynced", mock.Anything, mock.Anything, mock.Anything)
}

func (s *PaymentsSyncServiceTestSuite) TestMissingRateSkipsSingleItem() {
	s.stubAccount()
	s.mockClient.On("GetActivities", mock.Anything, "ext-1", mock.Anything, mock.Anything).Return([]dto.RawActivity{
		activity("a1", "CARD_PAYMENT", "-20.00", "XXX", "weird currency"),
		activity("a2", "CARD_PAYMENT", "-30.00", "EUR", "normal"),
	}, nil)
	s.mockRateCache.On("Rate", mock.Anything, "XXX", "EUR", mock.Anything).Return(decimal.Zero,
		apperrors.NewProviderError("payments", apperrors.KindNotFound, 404, "no rate for XXX/EUR"))
	s.mockTxnRepo.On("CreateIfAbsent", mock.Anything, mock.Anything).Return(true, nil).Once()
	s.mockAccountRepo.On("MarkSynced", mock.Anything, "acc-1", mock.Anything).Return(nil)

	result := s.service.SyncUser(context.Background(), "user-1", models.SyncModeLight)

	s.Equal(models.SourceOK, result.Status)
	s.Equal(1, result.TransactionsAdded)
	s.Equal(1, result.ItemsSkipped)
	s.Contains(result.Error, "a1")
}

func (s *PaymentsSyncServiceTestSuite) TestListAccountsFailureFailsStep() {
	s.mockClient.On("ListAccounts", mock.Anything).Return(nil,
		apperrors.NewProviderError("payments", apperrors.KindTransient, 503, "upstream down"))
	s.mockRuleRepo.On("ListRules", mock.Anything, mock.Anything).Return(nil, nil).Maybe()

	result := s.service.SyncUser(context.Background(), "user-1", models.SyncModeLight)

	s.Equal(models.SourceFailed, result.Status)
	s.Equal(apperrors.KindTransient, result.ErrorKind)
	s.Contains(result.Error, "upstream down")
}

func TestPaymentsSyncServiceTestSuite(t *testing.T) {
	suite.Run(t, new(PaymentsSyncServiceTestSuite))
}
