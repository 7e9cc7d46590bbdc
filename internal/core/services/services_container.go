package services

import (
	"log/slog"

	portsrepo "github.com/finsight-app/finsight_backend/internal/core/ports/repositories"
	portssvc "github.com/finsight-app/finsight_backend/internal/core/ports/services"
	"github.com/finsight-app/finsight_backend/pkg/config"
)

// ClientProvider holds the source clients. A nil entry means that source is
// not configured for this deployment and its sync step is skipped.
type ClientProvider struct {
	Payments   portssvc.PaymentsSvcFacade
	Investment portssvc.InvestmentSvcFacade
	MarketData portssvc.MarketDataSvcFacade
}

// NewServiceContainer creates a new service container with properly
// initialized dependencies.
func NewServiceContainer(
	cfg *config.Config,
	repos portsrepo.RepositoryProvider,
	clients ClientProvider,
	logger *slog.Logger,
) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// The rate cache is built first: the payments step depends on it for
	// base-currency conversion. It works read-only when payments is absent.
	rateCache := NewRateCacheService(repos.FxRateRepo, clients.Payments, logger)
	container.RateCache = rateCache

	normalizer := NewNormalizerService(logger)

	var payments portssvc.SourceSyncSvcFacade
	if clients.Payments != nil {
		payments = NewPaymentsSyncService(
			clients.Payments,
			repos.AccountRepo,
			repos.BalanceRepo,
			repos.TransactionRepo,
			repos.CategoryRuleRepo,
			normalizer,
			rateCache,
			cfg.BaseCurrency,
			logger,
		)
	}

	var investment portssvc.SourceSyncSvcFacade
	if clients.Investment != nil {
		investment = NewInvestmentSyncService(
			clients.Investment,
			repos.AccountRepo,
			repos.PortfolioRepo,
			logger,
		)
	}

	var marketData portssvc.SourceSyncSvcFacade
	if clients.MarketData != nil {
		marketData = NewMarketDataSyncService(
			clients.MarketData,
			repos.TrackedAssetRepo,
			logger,
		)
	}

	container.Sync = NewSyncService(payments, investment, marketData, repos.SyncLogRepo, logger)
	return container
}

// Compile-time interface checks.
var (
	_ portssvc.SyncSvcFacade       = (*SyncService)(nil)
	_ portssvc.RateCacheSvcFacade  = (*RateCacheService)(nil)
	_ portssvc.SourceSyncSvcFacade = (*PaymentsSyncService)(nil)
	_ portssvc.SourceSyncSvcFacade = (*InvestmentSyncService)(nil)
	_ portssvc.SourceSyncSvcFacade = (*MarketDataSyncService)(nil)
)
