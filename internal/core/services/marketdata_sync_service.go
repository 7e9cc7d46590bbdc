package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/finsight-app/finsight_backend/internal/apperrors"
	portsrepo "github.com/finsight-app/finsight_backend/internal/core/ports/repositories"
	portssvc "github.com/finsight-app/finsight_backend/internal/core/ports/services"
	"github.com/finsight-app/finsight_backend/internal/dto"
	"github.com/finsight-app/finsight_backend/internal/models"
)

// MarketDataSyncService is the market-data source's sync step: refresh the
// price of every tracked asset. The step is acceptable when the user tracks
// no assets or when at least one price was updated.
type MarketDataSyncService struct {
	client    portssvc.MarketDataSvcFacade
	assetRepo portsrepo.TrackedAssetRepositoryFacade
	logger    *slog.Logger
	now       func() time.Time
}

// NewMarketDataSyncService creates a new MarketDataSyncService.
func NewMarketDataSyncService(
	client portssvc.MarketDataSvcFacade,
	assetRepo portsrepo.TrackedAssetRepositoryFacade,
	logger *slog.Logger,
) *MarketDataSyncService {
	return &MarketDataSyncService{
		client:    client,
		assetRepo: assetRepo,
		logger:    logger,
		now:       time.Now,
	}
}

// SyncUser runs the market-data step for one user. Errors never escape; they
// are folded into the returned SourceResult. A rate-limit error stops the
// batch immediately, recording the remainder as skipped.
func (s *MarketDataSyncService) SyncUser(ctx context.Context, userID string, mode models.SyncMode) models.SourceResult {
	result := models.SourceResult{Source: models.SourceMarketData, Status: models.SourceOK}

	assets, err := s.assetRepo.ListByUser(ctx, userID)
	if err != nil {
		result.Status = models.SourceFailed
		result.ErrorKind = apperrors.KindOf(err)
		result.Error = fmt.Sprintf("failed to list tracked assets: %s", err.Error())
		return result
	}
	if len(assets) == 0 {
		// Nothing configured is an acceptable outcome, not a failure.
		return result
	}

	for i, asset := range assets {
		quote, err := s.fetchQuote(ctx, asset)
		if err != nil {
			s.appendItemError(&result, asset.Symbol, err)
			if apperrors.KindOf(err) == apperrors.KindRateLimit {
				// Stop immediately; everything from this asset on counts
				// as skipped.
				result.ItemsSkipped += len(assets) - i
				s.logger.Warn("Market-data provider rate-limited, stopping batch",
					slog.String("user_id", userID),
					slog.String("symbol", asset.Symbol),
					slog.Int("skipped", result.ItemsSkipped))
				break
			}
			result.ItemsSkipped++
			continue
		}

		if err := s.assetRepo.UpdatePrice(ctx, asset.AssetID, quote.Price, s.now()); err != nil {
			s.appendItemError(&result, asset.Symbol, err)
			result.ItemsSkipped++
			continue
		}
		result.PricesUpdated++
	}

	// Acceptable as long as something was refreshed; all-errors means the
	// step failed. Either way the orchestrator treats this source as
	// non-critical.
	if result.PricesUpdated == 0 {
		result.Status = models.SourceFailed
	}
	return result
}

func (s *MarketDataSyncService) fetchQuote(ctx context.Context, asset models.TrackedAsset) (*dto.Quote, error) {
	if asset.AssetType == models.AssetCrypto {
		return s.client.GetCryptoQuote(ctx, asset.Symbol, asset.CurrencyCode)
	}
	return s.client.GetStockQuote(ctx, asset.Symbol, asset.CurrencyCode)
}

func (s *MarketDataSyncService) appendItemError(result *models.SourceResult, symbol string, err error) {
	msg := fmt.Sprintf("%s: %s", symbol, err.Error())
	if result.Error == "" {
		result.Error = msg
	} else {
		result.Error += "; " + msg
	}
	if result.ErrorKind == apperrors.KindNone {
		result.ErrorKind = apperrors.KindOf(err)
	}
}
