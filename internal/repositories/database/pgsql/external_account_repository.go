package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/finsight-app/finsight_backend/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxExternalAccountRepository implements
// repositories.ExternalAccountRepositoryFacade using pgxpool.
type PgxExternalAccountRepository struct {
	BaseRepository
}

// NewPgxExternalAccountRepository creates a new PgxExternalAccountRepository.
func NewPgxExternalAccountRepository(db *pgxpool.Pool) *PgxExternalAccountRepository {
	return &PgxExternalAccountRepository{BaseRepository: BaseRepository{Pool: db}}
}

// UpsertAccount creates or updates the row keyed by (user_id, source,
// external_id). Mutable metadata is overwritten; account_id, created_at and
// last_sync_at survive the conflict so callers keep a stable identity and
// the sync watermark.
func (r *PgxExternalAccountRepository) UpsertAccount(ctx context.Context, account models.ExternalAccount) (*models.ExternalAccount, error) {
	row := r.Pool.QueryRow(ctx, `
		INSERT INTO external_accounts (
			account_id, user_id, source, external_id, name, account_type,
			status, currency_code, created_at, last_updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (user_id, source, external_id) DO UPDATE SET
			name = EXCLUDED.name,
			account_type = EXCLUDED.account_type,
			status = EXCLUDED.status,
			currency_code = EXCLUDED.currency_code,
			last_updated_at = EXCLUDED.last_updated_at
		RETURNING account_id, user_id, source, external_id, name, account_type,
			status, currency_code, last_sync_at, created_at, last_updated_at`,
		account.AccountID, account.UserID, account.Source, account.ExternalID,
		account.Name, account.AccountType, account.Status, account.CurrencyCode,
		account.CreatedAt, account.LastUpdatedAt,
	)

	var stored models.ExternalAccount
	err := row.Scan(
		&stored.AccountID, &stored.UserID, &stored.Source, &stored.ExternalID,
		&stored.Name, &stored.AccountType, &stored.Status, &stored.CurrencyCode,
		&stored.LastSyncAt, &stored.CreatedAt, &stored.LastUpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert external account: %w", err)
	}
	return &stored, nil
}

// MarkSynced sets last_sync_at once the account's sync step fully completed.
func (r *PgxExternalAccountRepository) MarkSynced(ctx context.Context, accountID string, at time.Time) error {
	tag, err := r.Pool.Exec(ctx,
		`UPDATE external_accounts SET last_sync_at = $1, last_updated_at = $1 WHERE account_id = $2`,
		at, accountID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark account synced: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("no external account with id %s", accountID)
	}
	return nil
}

// FindByUserAndSource lists the user's accounts at one source.
func (r *PgxExternalAccountRepository) FindByUserAndSource(ctx context.Context, userID string, source models.Source) ([]models.ExternalAccount, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT account_id, user_id, source, external_id, name, account_type,
			status, currency_code, last_sync_at, created_at, last_updated_at
		FROM external_accounts
		WHERE user_id = $1 AND source = $2
		ORDER BY external_id`,
		userID, source,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query external accounts: %w", err)
	}
	defer rows.Close()

	var accounts []models.ExternalAccount
	for rows.Next() {
		var a models.ExternalAccount
		err := rows.Scan(
			&a.AccountID, &a.UserID, &a.Source, &a.ExternalID, &a.Name,
			&a.AccountType, &a.Status, &a.CurrencyCode, &a.LastSyncAt,
			&a.CreatedAt, &a.LastUpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan external account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}
