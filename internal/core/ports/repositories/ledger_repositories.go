package repositories

import (
	"context"
	"time"

	"github.com/finsight-app/finsight_backend/internal/models"
	"github.com/shopspring/decimal"
)

// BalanceRepositoryFacade upserts balances keyed by (source,
// externalBalanceID). Value fields are always overwritten.
type BalanceRepositoryFacade interface {
	UpsertBalance(ctx context.Context, balance models.Balance) error
}

// TransactionRepositoryFacade persists canonical transactions keyed by
// ExternalRef. Transactions are write-once: an existing row is a no-op.
type TransactionRepositoryFacade interface {
	// CreateIfAbsent inserts the transaction unless one with the same
	// ExternalRef exists. Returns true only when a row was created.
	CreateIfAbsent(ctx context.Context, txn models.Transaction) (bool, error)
}

// CategoryRuleRepositoryFacade reads the user's keyword rules. Order is
// unspecified.
type CategoryRuleRepositoryFacade interface {
	ListRules(ctx context.Context, userID string) ([]models.CategoryKeywordRule, error)
}

// FxRateRepositoryFacade is the persisted side of the currency rate cache,
// keyed by (from, to, calendar day).
type FxRateRepositoryFacade interface {
	FindRate(ctx context.Context, from, to string, day time.Time) (*models.FxRate, error)
	SaveRate(ctx context.Context, rate models.FxRate) error
}

// PortfolioRepositoryFacade upserts snapshots keyed by (accountID, date) and
// atomically replaces the snapshot's holdings with the given full set.
type PortfolioRepositoryFacade interface {
	// UpsertSnapshot returns true when a new snapshot row was created (as
	// opposed to an existing one being corrected).
	UpsertSnapshot(ctx context.Context, snapshot models.PortfolioSnapshot, holdings []models.Holding) (bool, error)
}

// TrackedAssetRepositoryFacade reads the user's watched symbols and records
// refreshed prices.
type TrackedAssetRepositoryFacade interface {
	ListByUser(ctx context.Context, userID string) ([]models.TrackedAsset, error)
	UpdatePrice(ctx context.Context, assetID string, price decimal.Decimal, at time.Time) error
}

// SyncLogRepositoryFacade appends run outcomes. The log is append-only; there
// is deliberately no update or delete operation.
type SyncLogRepositoryFacade interface {
	AppendLog(ctx context.Context, log models.SyncLog) error
	ListRecent(ctx context.Context, userID string, limit int) ([]models.SyncLog, error)
}
