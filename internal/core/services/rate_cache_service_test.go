package services_test

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/finsight-app/finsight_backend/internal/apperrors"
	"github.com/finsight-app/finsight_backend/internal/core/services"
	"github.com/finsight-app/finsight_backend/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type RateCacheServiceTestSuite struct {
	suite.Suite
	mockFxRepo   *MockFxRateRepository
	mockPayments *MockPaymentsClient
	service      *services.RateCacheService
}

func (s *RateCacheServiceTestSuite) SetupTest() {
	s.mockFxRepo = new(MockFxRateRepository)
	s.mockPayments = new(MockPaymentsClient)
	s.service = services.NewRateCacheService(s.mockFxRepo, s.mockPayments, slog.Default())
}

func (s *RateCacheServiceTestSuite) TestSameCurrencyReturnsOneWithoutIO() {
	rate, err := s.service.Rate(context.Background(), "EUR", "EUR", time.Now())

	s.NoError(err)
	s.True(rate.Equal(decimal.NewFromInt(1)))
	s.mockFxRepo.AssertNotCalled(s.T(), "FindRate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	s.mockPayments.AssertNotCalled(s.T(), "GetExchangeRate", mock.Anything, mock.Anything, mock.Anything)
}

func (s *RateCacheServiceTestSuite) TestCacheHitSkipsProvider() {
	at := time.Date(2024, 3, 10, 17, 45, 0, 0, time.UTC)
	day := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	cached := &models.FxRate{Rate: decimal.RequireFromString("5.21"), RateDate: day}

	s.mockFxRepo.On("FindRate", mock.Anything, "BRL", "EUR", day).Return(cached, nil)

	rate, err := s.service.Rate(context.Background(), "BRL", "EUR", at)

	s.NoError(err)
	s.True(rate.Equal(decimal.RequireFromString("5.21")))
	s.mockPayments.AssertNotCalled(s.T(), "GetExchangeRate", mock.Anything, mock.Anything, mock.Anything)
}

func (s *RateCacheServiceTestSuite) TestCacheMissFetchesAndPersists() {
	at := time.Date(2024, 3, 10, 17, 45, 0, 0, time.UTC)
	day := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	fetched := decimal.RequireFromString("0.19")

	s.mockFxRepo.On("FindRate", mock.Anything, "BRL", "EUR", day).
		Return(nil, fmt.Errorf("%w: no cached rate", apperrors.ErrNotFound))
	s.mockPayments.On("GetExchangeRate", mock.Anything, "BRL", "EUR").Return(fetched, nil)
	s.mockFxRepo.On("SaveRate", mock.Anything, mock.MatchedBy(func(r models.FxRate) bool {
		return r.FromCurrencyCode == "BRL" && r.ToCurrencyCode == "EUR" && r.RateDate.Equal(day)
	})).Return(nil)

	rate, err := s.service.Rate(context.Background(), "brl", "eur", at)

	s.NoError(err)
	s.True(rate.Equal(fetched))
	s.mockPayments.AssertNumberOfCalls(s.T(), "GetExchangeRate", 1)
	s.mockFxRepo.AssertNumberOfCalls(s.T(), "SaveRate", 1)
}

func (s *RateCacheServiceTestSuite) TestKeyIsCalendarDayNotTimestamp() {
	// Two timestamps on the same day must hit the same cache key.
	morning := time.Date(2024, 3, 10, 1, 0, 0, 0, time.UTC)
	evening := time.Date(2024, 3, 10, 23, 0, 0, 0, time.UTC)
	day := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	cached := &models.FxRate{Rate: decimal.RequireFromString("5.21"), RateDate: day}

	s.mockFxRepo.On("FindRate", mock.Anything, "BRL", "EUR", day).Return(cached, nil).Twice()

	_, err := s.service.Rate(context.Background(), "BRL", "EUR", morning)
	s.NoError(err)
	_, err = s.service.Rate(context.Background(), "BRL", "EUR", evening)
	s.NoError(err)

	s.mockPayments.AssertNotCalled(s.T(), "GetExchangeRate", mock.Anything, mock.Anything, mock.Anything)
}

func TestRateCacheServiceTestSuite(t *testing.T) {
	suite.Run(t, new(RateCacheServiceTestSuite))
}
