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
)

// SyncService drives one sync run across all sources, sequentially and with
// per-source failure isolation. It never retries a failed source within the
// same run.
type SyncService struct {
	payments   portssvc.SourceSyncSvcFacade // nil when not configured
	investment portssvc.SourceSyncSvcFacade // nil when not configured
	marketData portssvc.SourceSyncSvcFacade // nil when not configured
	syncLogs   portsrepo.SyncLogRepositoryFacade
	logger     *slog.Logger
	now        func() time.Time
}

// NewSyncService creates a new SyncService. Any source step may be nil; the
// run records it as skipped.
func NewSyncService(
	payments, investment, marketData portssvc.SourceSyncSvcFacade,
	syncLogs portsrepo.SyncLogRepositoryFacade,
	logger *slog.Logger,
) *SyncService {
	return &SyncService{
		payments:   payments,
		investment: investment,
		marketData: marketData,
		syncLogs:   syncLogs,
		logger:     logger,
		now:        time.Now,
	}
}

// RunSync executes one run for one user. Sources run in a fixed order:
// payments, investment, market-data. Overall success is payments AND
// investment; market-data is non-critical.
func (s *SyncService) RunSync(ctx context.Context, userID string, mode models.SyncMode) (*models.SyncResult, error) {
	if mode != models.SyncModeLight && mode != models.SyncModeFull {
		return nil, fmt.Errorf("%w: unknown sync mode %q", apperrors.ErrValidation, mode)
	}

	startedAt := s.now()
	s.logger.Info("Starting sync run",
		slog.String("user_id", userID), slog.String("mode", string(mode)))

	result := &models.SyncResult{
		UserID:    userID,
		Mode:      mode,
		StartedAt: startedAt,
	}

	result.Payments = s.runStep(ctx, s.payments, models.SourcePayments, userID, mode)
	result.Investment = s.runStep(ctx, s.investment, models.SourceInvestment, userID, mode)
	result.MarketData = s.runStep(ctx, s.marketData, models.SourceMarketData, userID, mode)

	// Market-data is excluded from this AND on purpose.
	result.Success = result.Payments.Ok() && result.Investment.Ok()
	result.Error = combineErrors(result.Payments, result.Investment, result.MarketData)
	result.Summary = buildSummary(result)
	result.FinishedAt = s.now()

	s.appendLog(ctx, result)

	s.logger.Info("Sync run finished",
		slog.String("user_id", userID),
		slog.Bool("success", result.Success),
		slog.String("summary", result.Summary))
	return result, nil
}

// runStep executes one source's step, converting any escape (including a
// panic in the step) into a per-source failure so one source can never take
// down the run.
func (s *SyncService) runStep(
	ctx context.Context,
	step portssvc.SourceSyncSvcFacade,
	source models.Source,
	userID string,
	mode models.SyncMode,
) (result models.SourceResult) {
	if step == nil {
		return models.SourceResult{Source: source, Status: models.SourceSkipped}
	}

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Sync step panicked",
				slog.String("source", string(source)), slog.Any("panic", r))
			result = models.SourceResult{
				Source:    source,
				Status:    models.SourceFailed,
				ErrorKind: apperrors.KindTransient,
				Error:     fmt.Sprintf("sync step panicked: %v", r),
			}
		}
	}()

	return step.SyncUser(ctx, userID, mode)
}

// ListRecentLogs returns the newest sync-log entries for the user.
func (s *SyncService) ListRecentLogs(ctx context.Context, userID string, limit int) ([]models.SyncLog, error) {
	return s.syncLogs.ListRecent(ctx, userID, limit)
}

func (s *SyncService) appendLog(ctx context.Context, result *models.SyncResult) {
	status := models.SyncSuccess
	switch {
	case !result.Success:
		status = models.SyncFailed
	case result.Error != "" || !result.MarketData.Ok():
		status = models.SyncPartial
	}

	entry := models.SyncLog{
		SyncLogID:         uuid.NewString(),
		UserID:            result.UserID,
		Mode:              result.Mode,
		Status:            status,
		ProfilesSynced:    result.Investment.ProfilesSynced,
		AccountsSynced:    result.Payments.AccountsSynced,
		TransactionsAdded: result.Payments.TransactionsAdded,
		BalancesUpdated:   result.Payments.BalancesUpdated,
		SnapshotsAdded:    result.Investment.SnapshotsAdded,
		PricesUpdated:     result.MarketData.PricesUpdated,
		Error:             result.Error,
		Summary:           result.Summary,
		StartedAt:         result.StartedAt,
		FinishedAt:        result.FinishedAt,
	}
	if err := s.syncLogs.AppendLog(ctx, entry); err != nil {
		// The run itself succeeded or failed on its own terms; losing the
		// log row is not a reason to change the result.
		s.logger.Error("Failed to append sync log",
			slog.String("user_id", result.UserID), slog.String("error", err.Error()))
	}
}

func combineErrors(results ...models.SourceResult) string {
	var parts []string
	for _, r := range results {
		if r.Error != "" {
			parts = append(parts, fmt.Sprintf("%s: %s", strings.ToLower(string(r.Source)), r.Error))
		}
	}
	return strings.Join(parts, " | ")
}

// buildSummary renders the one-line-per-source human summary.
func buildSummary(result *models.SyncResult) string {
	lines := []string{
		summarizePayments(result.Payments),
		summarizeInvestment(result.Investment),
		summarizeMarketData(result.MarketData),
	}
	return strings.Join(lines, "\n")
}

func summarizePayments(r models.SourceResult) string {
	switch r.Status {
	case models.SourceSkipped:
		return "payments: not configured"
	case models.SourceFailed:
		return fmt.Sprintf("payments: failed (%s)", r.Error)
	default:
		return fmt.Sprintf("payments: ok (%d accounts, %d balances, %d new transactions)",
			r.AccountsSynced, r.BalancesUpdated, r.TransactionsAdded)
	}
}

func summarizeInvestment(r models.SourceResult) string {
	switch r.Status {
	case models.SourceSkipped:
		return "investment: not configured"
	case models.SourceFailed:
		return fmt.Sprintf("investment: failed (%s)", r.Error)
	default:
		return fmt.Sprintf("investment: ok (%d accounts, %d snapshots)",
			r.ProfilesSynced, r.SnapshotsAdded)
	}
}

func summarizeMarketData(r models.SourceResult) string {
	switch r.Status {
	case models.SourceSkipped:
		return "market-data: not configured"
	case models.SourceFailed:
		return fmt.Sprintf("market-data: failed (%s)", r.Error)
	default:
		if r.ItemsSkipped > 0 {
			return fmt.Sprintf("market-data: ok (%d prices updated, %d skipped)",
				r.PricesUpdated, r.ItemsSkipped)
		}
		return fmt.Sprintf("market-data: ok (%d prices updated)", r.PricesUpdated)
	}
}
