package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/cambiod/internal/domain"
)

const rateColumns = `id, currency, rate, source, active, effective_at, created_at`

// RateRepository implements usecase.RateRepository.
type RateRepository struct {
	pool *pgxpool.Pool
}

// NewRateRepository creates a new RateRepository.
func NewRateRepository(pool *pgxpool.Pool) *RateRepository {
	return &RateRepository{pool: pool}
}

// GetActive retrieves the active rate snapshot for a currency.
func (r *RateRepository) GetActive(ctx context.Context, currency domain.Currency) (*domain.RateSnapshot, error) {
	query := `SELECT ` + rateColumns + ` FROM rate_snapshots WHERE currency = $1 AND active = true`

	snapshot, err := scanRate(r.pool.QueryRow(ctx, query, string(currency)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrRateNotFound
	}

	return snapshot, err
}

// GetLatest retrieves the most recent rate snapshot for a currency,
// active or not.
func (r *RateRepository) GetLatest(ctx context.Context, currency domain.Currency) (*domain.RateSnapshot, error) {
	query := `
		SELECT ` + rateColumns + `
		FROM rate_snapshots
		WHERE currency = $1
		ORDER BY effective_at DESC
		LIMIT 1
	`

	snapshot, err := scanRate(r.pool.QueryRow(ctx, query, string(currency)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrRateNotFound
	}

	return snapshot, err
}

// Publish deactivates the currency's current snapshot and inserts the new one
// as active. Both statements run in a single transaction so readers never
// observe zero or two active rows.
func (r *RateRepository) Publish(ctx context.Context, snapshot *domain.RateSnapshot) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	deactivate := `UPDATE rate_snapshots SET active = false WHERE currency = $1 AND active = true`

	if _, err := tx.Exec(ctx, deactivate, string(snapshot.Currency)); err != nil {
		return err
	}

	insert := `
		INSERT INTO rate_snapshots (id, currency, rate, source, active, effective_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err = tx.Exec(ctx, insert,
		snapshot.ID,
		string(snapshot.Currency),
		decimalToNumeric(snapshot.Rate),
		snapshot.Source,
		snapshot.Active,
		timeToPgTimestamptz(snapshot.EffectiveAt),
		timeToPgTimestamptz(snapshot.CreatedAt),
	)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func scanRate(row pgx.Row) (*domain.RateSnapshot, error) {
	var (
		snapshot    domain.RateSnapshot
		rate        pgtype.Numeric
		effectiveAt pgtype.Timestamptz
		createdAt   pgtype.Timestamptz
	)

	err := row.Scan(
		&snapshot.ID,
		&snapshot.Currency,
		&rate,
		&snapshot.Source,
		&snapshot.Active,
		&effectiveAt,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	snapshot.Rate = numericToDecimal(rate)
	snapshot.EffectiveAt = effectiveAt.Time
	snapshot.CreatedAt = createdAt.Time

	return &snapshot, nil
}
