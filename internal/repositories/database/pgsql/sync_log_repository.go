package pgsql

import (
	"context"
	"fmt"

	"github.com/finsight-app/finsight_backend/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxSyncLogRepository implements repositories.SyncLogRepositoryFacade using
// pgxpool. The log is append-only: this repository exposes no update or
// delete.
type PgxSyncLogRepository struct {
	BaseRepository
}

// NewPgxSyncLogRepository creates a new PgxSyncLogRepository.
func NewPgxSyncLogRepository(db *pgxpool.Pool) *PgxSyncLogRepository {
	return &PgxSyncLogRepository{BaseRepository: BaseRepository{Pool: db}}
}

// AppendLog inserts one run outcome.
func (r *PgxSyncLogRepository) AppendLog(ctx context.Context, log models.SyncLog) error {
	_, err := r.Pool.Exec(ctx, `
		INSERT INTO sync_logs (
			sync_log_id, user_id, mode, status, profiles_synced, accounts_synced,
			transactions_added, balances_updated, snapshots_added, prices_updated,
			error, summary, started_at, finished_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		log.SyncLogID, log.UserID, log.Mode, log.Status, log.ProfilesSynced,
		log.AccountsSynced, log.TransactionsAdded, log.BalancesUpdated,
		log.SnapshotsAdded, log.PricesUpdated, log.Error, log.Summary,
		log.StartedAt, log.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append sync log: %w", err)
	}
	return nil
}

// ListRecent returns the newest entries for a user, newest first.
func (r *PgxSyncLogRepository) ListRecent(ctx context.Context, userID string, limit int) ([]models.SyncLog, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.Pool.Query(ctx, `
		SELECT sync_log_id, user_id, mode, status, profiles_synced, accounts_synced,
			transactions_added, balances_updated, snapshots_added, prices_updated,
			error, summary, started_at, finished_at
		FROM sync_logs
		WHERE user_id = $1
		ORDER BY started_at DESC
		LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query sync logs: %w", err)
	}
	defer rows.Close()

	var logs []models.SyncLog
	for rows.Next() {
		var l models.SyncLog
		err := rows.Scan(&l.SyncLogID, &l.UserID, &l.Mode, &l.Status,
			&l.ProfilesSynced, &l.AccountsSynced, &l.TransactionsAdded,
			&l.BalancesUpdated, &l.SnapshotsAdded, &l.PricesUpdated,
			&l.Error, &l.Summary, &l.StartedAt, &l.FinishedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sync log: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
