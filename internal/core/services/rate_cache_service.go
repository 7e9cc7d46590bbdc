package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/finsight-app/finsight_backend/internal/apperrors"
	portsrepo "github.com/finsight-app/finsight_backend/internal/core/ports/repositories"
	portssvc "github.com/finsight-app/finsight_backend/internal/core/ports/services"
	"github.com/finsight-app/finsight_backend/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RateCacheService memoizes FX rates by (from, to, calendar day), falling
// back to the payments provider's rate endpoint on a miss. A rate cached for
// a past day is immutable truth and is never invalidated.
type RateCacheService struct {
	fxRepo   portsrepo.FxRateRepositoryFacade
	payments portssvc.PaymentsSvcFacade
	logger   *slog.Logger
}

// NewRateCacheService creates a new RateCacheService. payments may be nil
// when the payments source is not configured; cache hits still work, misses
// fail.
func NewRateCacheService(fxRepo portsrepo.FxRateRepositoryFacade, payments portssvc.PaymentsSvcFacade, logger *slog.Logger) *RateCacheService {
	return &RateCacheService{fxRepo: fxRepo, payments: payments, logger: logger}
}

// Rate returns the FX rate for the calendar day of at. from == to returns 1
// without any repository or network I/O.
func (s *RateCacheService) Rate(ctx context.Context, from, to string, at time.Time) (decimal.Decimal, error) {
	from = strings.ToUpper(from)
	to = strings.ToUpper(to)
	if from == to {
		return decimal.NewFromInt(1), nil
	}

	day := at.UTC().Truncate(24 * time.Hour)

	cached, err := s.fxRepo.FindRate(ctx, from, to, day)
	if err == nil && cached != nil {
		return cached.Rate, nil
	}
	if err != nil && apperrors.KindOf(err) != apperrors.KindNotFound {
		return decimal.Zero, fmt.Errorf("failed to read FX rate cache for %s/%s: %w", from, to, err)
	}

	if s.payments == nil {
		return decimal.Zero, fmt.Errorf("%w: no rate source configured for %s/%s", apperrors.ErrNotFound, from, to)
	}

	rate, err := s.payments.GetExchangeRate(ctx, from, to)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to fetch FX rate for %s/%s: %w", from, to, err)
	}

	entry := models.FxRate{
		FxRateID:         uuid.NewString(),
		FromCurrencyCode: from,
		ToCurrencyCode:   to,
		RateDate:         day,
		Rate:             rate,
		CreatedAt:        time.Now().UTC(),
	}
	if err := s.fxRepo.SaveRate(ctx, entry); err != nil {
		// The rate is still usable this run; only memoization failed.
		s.logger.Warn("Failed to persist FX rate cache entry",
			slog.String("pair", from+"/"+to), slog.String("error", err.Error()))
	}
	return rate, nil
}
