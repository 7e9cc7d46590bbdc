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
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvestmentSyncService is the investment source's sync step: portfolio
// holdings into today's snapshot, plus the performance history for the policy
// window as dated snapshots.
type InvestmentSyncService struct {
	client        portssvc.InvestmentSvcFacade
	accountRepo   portsrepo.ExternalAccountRepositoryFacade
	portfolioRepo portsrepo.PortfolioRepositoryFacade
	logger        *slog.Logger
	now           func() time.Time
}

// NewInvestmentSyncService creates a new InvestmentSyncService.
func NewInvestmentSyncService(
	client portssvc.InvestmentSvcFacade,
	accountRepo portsrepo.ExternalAccountRepositoryFacade,
	portfolioRepo portsrepo.PortfolioRepositoryFacade,
	logger *slog.Logger,
) *InvestmentSyncService {
	return &InvestmentSyncService{
		client:        client,
		accountRepo:   accountRepo,
		portfolioRepo: portfolioRepo,
		logger:        logger,
		now:           time.Now,
	}
}

// SyncUser runs the investment step for one user. Errors never escape; they
// are folded into the returned SourceResult.
func (s *InvestmentSyncService) SyncUser(ctx context.Context, userID string, mode models.SyncMode) models.SourceResult {
	result := models.SourceResult{Source: models.SourceInvestment, Status: models.SourceOK}

	accounts, err := s.client.GetCurrentUserAccounts(ctx)
	if err != nil {
		return s.failed(result, fmt.Errorf("failed to list investment accounts: %w", err))
	}

	for _, acct := range accounts {
		if err := s.syncAccount(ctx, userID, mode, acct, &result); err != nil {
			if apperrors.KindOf(err) == apperrors.KindRateLimit {
				result.ErrorKind = apperrors.KindRateLimit
				result.Error = err.Error()
				s.logger.Warn("Investment provider rate-limited, stopping batch",
					slog.String("user_id", userID), slog.String("error", err.Error()))
				return result
			}
			return s.failed(result, err)
		}
		result.ProfilesSynced++
	}
	return result
}

func (s *InvestmentSyncService) syncAccount(
	ctx context.Context,
	userID string,
	mode models.SyncMode,
	acct dto.InvestmentAccount,
	result *models.SourceResult,
) error {
	now := s.now()

	stored, err := s.accountRepo.UpsertAccount(ctx, models.ExternalAccount{
		AccountID:    uuid.NewString(),
		UserID:       userID,
		Source:       models.SourceInvestment,
		ExternalID:   acct.AccountNumber,
		Name:         acct.Name,
		AccountType:  acct.Type,
		Status:       acct.Status,
		CurrencyCode: acct.CurrencyCode,
		AuditFields:  models.AuditFields{CreatedAt: now, LastUpdatedAt: now},
	})
	if err != nil {
		return fmt.Errorf("failed to upsert investment account %s: %w", acct.AccountNumber, err)
	}

	holdings, err := s.client.GetPortfolio(ctx, acct.AccountNumber)
	if err != nil {
		return fmt.Errorf("failed to fetch portfolio for account %s: %w", acct.AccountNumber, err)
	}

	invested, err := s.client.GetNetContributions(ctx, acct.AccountNumber)
	if err != nil {
		return fmt.Errorf("failed to fetch net contributions for account %s: %w", acct.AccountNumber, err)
	}

	totalValue := decimal.Zero
	for _, h := range holdings {
		totalValue = totalValue.Add(h.MarketValue)
	}

	today := now.UTC().Truncate(24 * time.Hour)
	created, err := s.writeSnapshot(ctx, stored.AccountID, today, totalValue, invested, s.toHoldings(holdings))
	if err != nil {
		return fmt.Errorf("failed to write today's snapshot for account %s: %w", acct.AccountNumber, err)
	}
	if created {
		result.SnapshotsAdded++
	}

	start, end := ComputeSyncWindow(mode, stored.LastSyncAt, now)
	points, err := s.client.GetPerformanceHistory(ctx, acct.AccountNumber, &start, &end)
	if err != nil {
		return fmt.Errorf("failed to fetch performance history for account %s: %w", acct.AccountNumber, err)
	}
	for _, p := range points {
		day := p.Date.UTC().Truncate(24 * time.Hour)
		if day.Equal(today) {
			// Today's snapshot already carries the live portfolio.
			continue
		}
		created, err := s.writeSnapshot(ctx, stored.AccountID, day, p.Value, invested, nil)
		if err != nil {
			return fmt.Errorf("failed to write snapshot %s for account %s: %w",
				day.Format("2006-01-02"), acct.AccountNumber, err)
		}
		if created {
			result.SnapshotsAdded++
		}
	}

	if err := s.accountRepo.MarkSynced(ctx, stored.AccountID, now); err != nil {
		return fmt.Errorf("failed to update lastSyncAt for account %s: %w", stored.AccountID, err)
	}
	return nil
}

// writeSnapshot upserts a snapshot for one day. Holdings, when given, replace
// the snapshot's full holdings set.
func (s *InvestmentSyncService) writeSnapshot(
	ctx context.Context,
	accountID string,
	day time.Time,
	totalValue, totalInvested decimal.Decimal,
	holdings []models.Holding,
) (bool, error) {
	returns := totalValue.Sub(totalInvested)
	returnsPercent := decimal.Zero
	if totalInvested.IsPositive() {
		returnsPercent = returns.Div(totalInvested).Mul(decimal.NewFromInt(100))
	}

	now := s.now()
	snapshot := models.PortfolioSnapshot{
		SnapshotID:     uuid.NewString(),
		AccountID:      accountID,
		SnapshotDate:   day,
		TotalValue:     totalValue,
		TotalInvested:  totalInvested,
		Returns:        returns,
		ReturnsPercent: returnsPercent,
		AuditFields:    models.AuditFields{CreatedAt: now, LastUpdatedAt: now},
	}
	return s.portfolioRepo.UpsertSnapshot(ctx, snapshot, holdings)
}

func (s *InvestmentSyncService) toHoldings(in []dto.InvestmentHolding) []models.Holding {
	out := make([]models.Holding, 0, len(in))
	for _, h := range in {
		out = append(out, models.Holding{
			HoldingID:    uuid.NewString(),
			Symbol:       h.Symbol,
			Name:         h.Name,
			Quantity:     h.Quantity,
			AveragePrice: h.AveragePrice,
			CurrentPrice: h.CurrentPrice,
			MarketValue:  h.MarketValue,
			CurrencyCode: h.CurrencyCode,
		})
	}
	return out
}

func (s *InvestmentSyncService) failed(result models.SourceResult, err error) models.SourceResult {
	result.Status = models.SourceFailed
	result.ErrorKind = apperrors.KindOf(err)
	result.Error = err.Error()
	s.logger.Error("Investment sync step failed",
		slog.String("error_kind", string(result.ErrorKind)), slog.String("error", err.Error()))
	return result
}
