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
	"github.com/finsight-app/finsight_backend/internal/dto"
	"github.com/finsight-app/finsight_backend/internal/models"
	"github.com/google/uuid"
)

// PaymentsSyncService is the payments source's sync step: balances, then the
// activity feed for the policy window, normalized and written idempotently.
type PaymentsSyncService struct {
	client       portssvc.PaymentsSvcFacade
	accountRepo  portsrepo.ExternalAccountRepositoryFacade
	balanceRepo  portsrepo.BalanceRepositoryFacade
	txnRepo      portsrepo.TransactionRepositoryFacade
	ruleRepo     portsrepo.CategoryRuleRepositoryFacade
	normalizer   *NormalizerService
	rateCache    portssvc.RateCacheSvcFacade
	baseCurrency string
	logger       *slog.Logger
	now          func() time.Time
}

// NewPaymentsSyncService creates a new PaymentsSyncService.
func NewPaymentsSyncService(
	client portssvc.PaymentsSvcFacade,
	accountRepo portsrepo.ExternalAccountRepositoryFacade,
	balanceRepo portsrepo.BalanceRepositoryFacade,
	txnRepo portsrepo.TransactionRepositoryFacade,
	ruleRepo portsrepo.CategoryRuleRepositoryFacade,
	normalizer *NormalizerService,
	rateCache portssvc.RateCacheSvcFacade,
	baseCurrency string,
	logger *slog.Logger,
) *PaymentsSyncService {
	return &PaymentsSyncService{
		client:       client,
		accountRepo:  accountRepo,
		balanceRepo:  balanceRepo,
		txnRepo:      txnRepo,
		ruleRepo:     ruleRepo,
		normalizer:   normalizer,
		rateCache:    rateCache,
		baseCurrency: strings.ToUpper(baseCurrency),
		logger:       logger,
		now:          time.Now,
	}
}

// SyncUser runs the payments step for one user. Errors never escape; they are
// folded into the returned SourceResult.
func (s *PaymentsSyncService) SyncUser(ctx context.Context, userID string, mode models.SyncMode) models.SourceResult {
	result := models.SourceResult{Source: models.SourcePayments, Status: models.SourceOK}

	accounts, err := s.client.ListAccounts(ctx)
	if err != nil {
		return s.failed(result, fmt.Errorf("failed to list payments accounts: %w", err))
	}

	rules, err := s.ruleRepo.ListRules(ctx, userID)
	if err != nil {
		// Categorization is best-effort; sync the money anyway.
		s.logger.Warn("Failed to load keyword rules, transactions will be uncategorized",
			slog.String("user_id", userID), slog.String("error", err.Error()))
		rules = nil
	}

	for _, acct := range accounts {
		if err := s.syncAccount(ctx, userID, mode, acct, rules, &result); err != nil {
			kind := apperrors.KindOf(err)
			if kind == apperrors.KindRateLimit {
				// Provider told us to back off: stop the batch, keep what
				// was processed, and do not fail the run.
				result.ErrorKind = kind
				result.Error = err.Error()
				s.logger.Warn("Payments provider rate-limited, stopping batch",
					slog.String("user_id", userID), slog.String("error", err.Error()))
				return result
			}
			return s.failed(result, err)
		}
		result.AccountsSynced++
	}
	return result
}

func (s *PaymentsSyncService) syncAccount(
	ctx context.Context,
	userID string,
	mode models.SyncMode,
	acct dto.PaymentsAccount,
	rules []models.CategoryKeywordRule,
	result *models.SourceResult,
) error {
	now := s.now()

	stored, err := s.accountRepo.UpsertAccount(ctx, models.ExternalAccount{
		AccountID:    uuid.NewString(),
		UserID:       userID,
		Source:       models.SourcePayments,
		ExternalID:   acct.ID,
		Name:         acct.Name,
		AccountType:  acct.Type,
		Status:       acct.Status,
		CurrencyCode: acct.CurrencyCode,
		AuditFields:  models.AuditFields{CreatedAt: now, LastUpdatedAt: now},
	})
	if err != nil {
		return fmt.Errorf("failed to upsert payments account %s: %w", acct.ID, err)
	}

	balances, err := s.client.GetBalances(ctx, acct.ID)
	if err != nil {
		return fmt.Errorf("failed to fetch balances for account %s: %w", acct.ID, err)
	}
	for _, b := range balances {
		err := s.balanceRepo.UpsertBalance(ctx, models.Balance{
			BalanceID:         uuid.NewString(),
			AccountID:         stored.AccountID,
			Source:            models.SourcePayments,
			ExternalBalanceID: b.ID,
			CurrencyCode:      b.CurrencyCode,
			Amount:            b.Amount,
			AuditFields:       models.AuditFields{CreatedAt: now, LastUpdatedAt: now},
		})
		if err != nil {
			return fmt.Errorf("failed to upsert balance %s: %w", b.ID, err)
		}
		result.BalancesUpdated++
	}

	since, until := ComputeSyncWindow(mode, stored.LastSyncAt, now)
	activities, err := s.client.GetActivities(ctx, acct.ID, since, until)
	if err != nil {
		return fmt.Errorf("failed to fetch activities for account %s: %w", acct.ID, err)
	}

	for i, raw := range activities {
		if err := s.writeTransaction(ctx, userID, stored.AccountID, raw, rules, result); err != nil {
			kind := apperrors.KindOf(err)
			switch kind {
			case apperrors.KindRateLimit:
				result.ItemsSkipped += len(activities) - i
				return err
			case apperrors.KindNotFound, apperrors.KindValidation:
				result.ItemsSkipped++
				s.appendItemError(result, raw.ID, err)
				continue
			default:
				return err
			}
		}
	}

	if err := s.accountRepo.MarkSynced(ctx, stored.AccountID, now); err != nil {
		return fmt.Errorf("failed to update lastSyncAt for account %s: %w", stored.AccountID, err)
	}
	return nil
}

func (s *PaymentsSyncService) writeTransaction(
	ctx context.Context,
	userID, accountID string,
	raw dto.RawActivity,
	rules []models.CategoryKeywordRule,
	result *models.SourceResult,
) error {
	txnType, skip := s.normalizer.Classify(raw)
	if skip {
		return nil
	}

	description := s.normalizer.Describe(raw)
	categoryID := s.normalizer.Categorize(description, rules)

	currency := strings.ToUpper(raw.CurrencyCode)
	amount := raw.Amount.Abs()
	baseAmount := amount
	if currency != s.baseCurrency {
		rate, err := s.rateCache.Rate(ctx, currency, s.baseCurrency, raw.Date)
		if err != nil {
			return fmt.Errorf("failed to convert %s to %s for activity %s: %w",
				currency, s.baseCurrency, raw.ID, err)
		}
		baseAmount = amount.Mul(rate)
	}

	now := s.now()
	created, err := s.txnRepo.CreateIfAbsent(ctx, models.Transaction{
		TransactionID:        uuid.NewString(),
		UserID:               userID,
		AccountID:            accountID,
		ExternalRef:          fmt.Sprintf("payments:%s", raw.ID),
		Type:                 txnType,
		Amount:               amount,
		CurrencyCode:         currency,
		AmountInBaseCurrency: baseAmount,
		Date:                 raw.Date,
		Description:          description,
		CategoryID:           categoryID,
		AuditFields:          models.AuditFields{CreatedAt: now, LastUpdatedAt: now},
	})
	if err != nil {
		return fmt.Errorf("failed to write transaction for activity %s: %w", raw.ID, err)
	}
	if created {
		result.TransactionsAdded++
	}
	return nil
}

func (s *PaymentsSyncService) failed(result models.SourceResult, err error) models.SourceResult {
	result.Status = models.SourceFailed
	result.ErrorKind = apperrors.KindOf(err)
	result.Error = err.Error()
	s.logger.Error("Payments sync step failed",
		slog.String("error_kind", string(result.ErrorKind)), slog.String("error", err.Error()))
	return result
}

func (s *PaymentsSyncService) appendItemError(result *models.SourceResult, itemID string, err error) {
	msg := fmt.Sprintf("%s: %s", itemID, err.Error())
	if result.Error == "" {
		result.Error = msg
	} else {
		result.Error += "; " + msg
	}
	if result.ErrorKind == apperrors.KindNone {
		result.ErrorKind = apperrors.KindOf(err)
	}
}
