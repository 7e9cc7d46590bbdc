package pgsql

import (
	"context"
	"fmt"

	"github.com/finsight-app/finsight_backend/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxBalanceRepository implements repositories.BalanceRepositoryFacade using
// pgxpool.
type PgxBalanceRepository struct {
	BaseRepository
}

// NewPgxBalanceRepository creates a new PgxBalanceRepository.
func NewPgxBalanceRepository(db *pgxpool.Pool) *PgxBalanceRepository {
	return &PgxBalanceRepository{BaseRepository: BaseRepository{Pool: db}}
}

// UpsertBalance writes the current balance keyed by (source,
// external_balance_id). Balances are not historical: value fields are always
// overwritten, making concurrent or retried runs safely last-write-wins.
func (r *PgxBalanceRepository) UpsertBalance(ctx context.Context, balance models.Balance) error {
	_, err := r.Pool.Exec(ctx, `
		INSERT INTO balances (
			balance_id, account_id, source, external_balance_id,
			currency_code, amount, created_at, last_updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (source, external_balance_id) DO UPDATE SET
			account_id = EXCLUDED.account_id,
			currency_code = EXCLUDED.currency_code,
			amount = EXCLUDED.amount,
			last_updated_at = EXCLUDED.last_updated_at`,
		balance.BalanceID, balance.AccountID, balance.Source, balance.ExternalBalanceID,
		balance.CurrencyCode, balance.Amount, balance.CreatedAt, balance.LastUpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert balance: %w", err)
	}
	return nil
}
