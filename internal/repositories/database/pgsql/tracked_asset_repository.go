package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/finsight-app/finsight_backend/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PgxTrackedAssetRepository implements
// repositories.TrackedAssetRepositoryFacade using pgxpool.
type PgxTrackedAssetRepository struct {
	BaseRepository
}

// NewPgxTrackedAssetRepository creates a new PgxTrackedAssetRepository.
func NewPgxTrackedAssetRepository(db *pgxpool.Pool) *PgxTrackedAssetRepository {
	return &PgxTrackedAssetRepository{BaseRepository: BaseRepository{Pool: db}}
}

// ListByUser returns the user's tracked assets in a stable order.
func (r *PgxTrackedAssetRepository) ListByUser(ctx context.Context, userID string) ([]models.TrackedAsset, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT asset_id, user_id, symbol, asset_type, currency_code,
			last_price, last_price_at, created_at, last_updated_at
		FROM tracked_assets
		WHERE user_id = $1
		ORDER BY symbol`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracked assets: %w", err)
	}
	defer rows.Close()

	var assets []models.TrackedAsset
	for rows.Next() {
		var a models.TrackedAsset
		err := rows.Scan(&a.AssetID, &a.UserID, &a.Symbol, &a.AssetType,
			&a.CurrencyCode, &a.LastPrice, &a.LastPriceAt, &a.CreatedAt, &a.LastUpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tracked asset: %w", err)
		}
		assets = append(assets, a)
	}
	return assets, rows.Err()
}

// UpdatePrice records a refreshed quote for one asset.
func (r *PgxTrackedAssetRepository) UpdatePrice(ctx context.Context, assetID string, price decimal.Decimal, at time.Time) error {
	tag, err := r.Pool.Exec(ctx, `
		UPDATE tracked_assets
		SET last_price = $1, last_price_at = $2, last_updated_at = $2
		WHERE asset_id = $3`,
		price, at, assetID,
	)
	if err != nil {
		return fmt.Errorf("failed to update asset price: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("no tracked asset with id %s", assetID)
	}
	return nil
}
