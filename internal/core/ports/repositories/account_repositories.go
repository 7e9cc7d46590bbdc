package repositories

import (
	"context"
	"time"

	"github.com/finsight-app/finsight_backend/internal/models"
)

// ExternalAccountRepositoryFacade persists provider accounts. Upserts key on
// (userID, source, externalID); mutable metadata is overwritten while
// LastSyncAt is preserved until MarkSynced.
type ExternalAccountRepositoryFacade interface {
	// UpsertAccount creates or updates the account and returns the stored
	// row, so callers always work with the stable internal AccountID.
	UpsertAccount(ctx context.Context, account models.ExternalAccount) (*models.ExternalAccount, error)
	// MarkSynced sets LastSyncAt once an account's sync step fully completed.
	MarkSynced(ctx context.Context, accountID string, at time.Time) error
	FindByUserAndSource(ctx context.Context, userID string, source models.Source) ([]models.ExternalAccount, error)
}
