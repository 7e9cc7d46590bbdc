package pgsql

import (
	portsrepo "github.com/finsight-app/finsight_backend/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositoryProvider builds the full set of pgx-backed repositories over
// one shared pool.
func NewRepositoryProvider(pool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		AccountRepo:      NewPgxExternalAccountRepository(pool),
		BalanceRepo:      NewPgxBalanceRepository(pool),
		TransactionRepo:  NewPgxTransactionRepository(pool),
		CategoryRuleRepo: NewPgxCategoryRuleRepository(pool),
		FxRateRepo:       NewPgxFxRateRepository(pool),
		PortfolioRepo:    NewPgxPortfolioRepository(pool),
		TrackedAssetRepo: NewPgxTrackedAssetRepository(pool),
		SyncLogRepo:      NewPgxSyncLogRepository(pool),
	}
}

// Compile-time interface checks.
var (
	_ portsrepo.ExternalAccountRepositoryFacade = (*PgxExternalAccountRepository)(nil)
	_ portsrepo.BalanceRepositoryFacade         = (*PgxBalanceRepository)(nil)
	_ portsrepo.TransactionRepositoryFacade     = (*PgxTransactionRepository)(nil)
	_ portsrepo.CategoryRuleRepositoryFacade    = (*PgxCategoryRuleRepository)(nil)
	_ portsrepo.FxRateRepositoryFacade          = (*PgxFxRateRepository)(nil)
	_ portsrepo.PortfolioRepositoryFacade       = (*PgxPortfolioRepository)(nil)
	_ portsrepo.TrackedAssetRepositoryFacade    = (*PgxTrackedAssetRepository)(nil)
	_ portsrepo.SyncLogRepositoryFacade         = (*PgxSyncLogRepository)(nil)
)
