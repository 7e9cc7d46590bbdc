package pgsql

import (
	"context"
	"fmt"

	"github.com/finsight-app/finsight_backend/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxTransactionRepository implements
// repositories.TransactionRepositoryFacade using pgxpool.
type PgxTransactionRepository struct {
	BaseRepository
}

// NewPgxTransactionRepository creates a new PgxTransactionRepository.
func NewPgxTransactionRepository(db *pgxpool.Pool) *PgxTransactionRepository {
	return &PgxTransactionRepository{BaseRepository: BaseRepository{Pool: db}}
}

// CreateIfAbsent inserts the transaction unless a row with the same
// external_ref exists. Transactions are write-once: the conflict path is a
// no-op, never an update, so a later sync run can never mutate a stored
// transaction.
func (r *PgxTransactionRepository) CreateIfAbsent(ctx context.Context, txn models.Transaction) (bool, error) {
	tag, err := r.Pool.Exec(ctx, `
		INSERT INTO transactions (
			transaction_id, user_id, account_id, external_ref, type, amount,
			currency_code, amount_in_base_currency, date, description,
			category_id, created_at, last_updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (external_ref) DO NOTHING`,
		txn.TransactionID, txn.UserID, txn.AccountID, txn.ExternalRef, txn.Type,
		txn.Amount, txn.CurrencyCode, txn.AmountInBaseCurrency, txn.Date,
		txn.Description, txn.CategoryID, txn.CreatedAt, txn.LastUpdatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert transaction: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
