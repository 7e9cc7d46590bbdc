package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// This makes passing dependencies to the service container constructor cleaner.
type RepositoryProvider struct {
	AccountRepo      ExternalAccountRepositoryFacade
	BalanceRepo      BalanceRepositoryFacade
	TransactionRepo  TransactionRepositoryFacade
	CategoryRuleRepo CategoryRuleRepositoryFacade
	FxRateRepo       FxRateRepositoryFacade
	PortfolioRepo    PortfolioRepositoryFacade
	TrackedAssetRepo TrackedAssetRepositoryFacade
	SyncLogRepo      SyncLogRepositoryFacade
}
