package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/finsight-app/finsight_backend/internal/apperrors"
	"github.com/finsight-app/finsight_backend/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxFxRateRepository implements repositories.FxRateRepositoryFacade using
// pgxpool.
type PgxFxRateRepository struct {
	BaseRepository
}

// NewPgxFxRateRepository creates a new PgxFxRateRepository.
func NewPgxFxRateRepository(db *pgxpool.Pool) *PgxFxRateRepository {
	return &PgxFxRateRepository{BaseRepository: BaseRepository{Pool: db}}
}

// FindRate returns the cached rate for a pair on one calendar day, or
// apperrors.ErrNotFound.
func (r *PgxFxRateRepository) FindRate(ctx context.Context, from, to string, day time.Time) (*models.FxRate, error) {
	row := r.Pool.QueryRow(ctx, `
		SELECT fx_rate_id, from_currency_code, to_currency_code, rate_date, rate, created_at
		FROM fx_rates
		WHERE from_currency_code = $1 AND to_currency_code = $2 AND rate_date = $3`,
		from, to, day,
	)

	var rate models.FxRate
	err := row.Scan(&rate.FxRateID, &rate.FromCurrencyCode, &rate.ToCurrencyCode,
		&rate.RateDate, &rate.Rate, &rate.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: no cached rate for %s/%s on %s",
			apperrors.ErrNotFound, from, to, day.Format("2006-01-02"))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query fx rate: %w", err)
	}
	return &rate, nil
}

// SaveRate caches a rate for one day. Historical rates never change, so a
// conflicting insert keeps the existing row untouched.
func (r *PgxFxRateRepository) SaveRate(ctx context.Context, rate models.FxRate) error {
	_, err := r.Pool.Exec(ctx, `
		INSERT INTO fx_rates (
			fx_rate_id, from_currency_code, to_currency_code, rate_date, rate, created_at
		) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (from_currency_code, to_currency_code, rate_date) DO NOTHING`,
		rate.FxRateID, rate.FromCurrencyCode, rate.ToCurrencyCode,
		rate.RateDate, rate.Rate, rate.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save fx rate: %w", err)
	}
	return nil
}
