package pgsql

import (
	"context"
	"fmt"

	"github.com/finsight-app/finsight_backend/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxPortfolioRepository implements repositories.PortfolioRepositoryFacade
// using pgxpool.
type PgxPortfolioRepository struct {
	BaseRepository
}

// NewPgxPortfolioRepository creates a new PgxPortfolioRepository.
func NewPgxPortfolioRepository(db *pgxpool.Pool) *PgxPortfolioRepository {
	return &PgxPortfolioRepository{BaseRepository: BaseRepository{Pool: db}}
}

// UpsertSnapshot writes a snapshot keyed by (account_id, snapshot_date),
// overwriting value fields on conflict, then replaces the snapshot's full
// holdings set. Providers return complete holdings per snapshot, never a
// delta, so holdings are deleted and recreated together in one transaction.
func (r *PgxPortfolioRepository) UpsertSnapshot(ctx context.Context, snapshot models.PortfolioSnapshot, holdings []models.Holding) (bool, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer func() { _ = r.Rollback(ctx, tx) }()

	var snapshotID string
	var created bool
	err = tx.QueryRow(ctx, `
		INSERT INTO portfolio_snapshots (
			snapshot_id, account_id, snapshot_date, total_value, total_invested,
			returns, returns_percent, created_at, last_updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (account_id, snapshot_date) DO UPDATE SET
			total_value = EXCLUDED.total_value,
			total_invested = EXCLUDED.total_invested,
			returns = EXCLUDED.returns,
			returns_percent = EXCLUDED.returns_percent,
			last_updated_at = EXCLUDED.last_updated_at
		RETURNING snapshot_id, (xmax = 0)`,
		snapshot.SnapshotID, snapshot.AccountID, snapshot.SnapshotDate,
		snapshot.TotalValue, snapshot.TotalInvested, snapshot.Returns,
		snapshot.ReturnsPercent, snapshot.CreatedAt, snapshot.LastUpdatedAt,
	).Scan(&snapshotID, &created)
	if err != nil {
		return false, fmt.Errorf("failed to upsert portfolio snapshot: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM holdings WHERE snapshot_id = $1`, snapshotID); err != nil {
		return false, fmt.Errorf("failed to delete stale holdings: %w", err)
	}

	for _, h := range holdings {
		_, err := tx.Exec(ctx, `
			INSERT INTO holdings (
				holding_id, snapshot_id, symbol, name, quantity,
				average_price, current_price, market_value, currency_code
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			h.HoldingID, snapshotID, h.Symbol, h.Name, h.Quantity,
			h.AveragePrice, h.CurrentPrice, h.MarketValue, h.CurrencyCode,
		)
		if err != nil {
			return false, fmt.Errorf("failed to insert holding %s: %w", h.Symbol, err)
		}
	}

	if err := r.Commit(ctx, tx); err != nil {
		return false, err
	}
	return created, nil
}
