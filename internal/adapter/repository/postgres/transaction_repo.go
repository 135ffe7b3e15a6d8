package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/cambiod/internal/domain"
	"github.com/iho/cambiod/internal/usecase"
)

const transactionColumns = `id, account_id, kind, source_currency, dest_currency,
	source_amount, dest_amount, rate, commission, receipt, status, created_at`

// TransactionRepository implements usecase.TransactionRepository.
type TransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

// Create inserts a transaction inside an existing database transaction.
func (r *TransactionRepository) Create(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error {
	pgxTx := tx.(*Tx).PgxTx()

	query := `
		INSERT INTO transactions (
			id, account_id, kind, source_currency, dest_currency,
			source_amount, dest_amount, rate, commission, receipt, status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := pgxTx.Exec(ctx, query,
		txn.ID,
		txn.AccountID,
		string(txn.Kind),
		string(txn.SourceCurrency),
		string(txn.DestCurrency),
		decimalToNumeric(txn.SourceAmount),
		decimalToNumeric(txn.DestAmount),
		decimalToNumeric(txn.Rate),
		decimalToNumeric(txn.Commission),
		txn.Receipt,
		string(txn.Status),
		timeToPgTimestamptz(txn.CreatedAt),
	)

	return err
}

// GetByReceipt retrieves a transaction by its receipt number.
func (r *TransactionRepository) GetByReceipt(ctx context.Context, receipt string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE receipt = $1`

	txn, err := scanTransaction(r.pool.QueryRow(ctx, query, receipt))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTransactionNotFound
	}

	return txn, err
}

// ExistsReceipt checks whether a receipt number is already recorded.
func (r *TransactionRepository) ExistsReceipt(ctx context.Context, receipt string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM transactions WHERE receipt = $1)`

	var exists bool
	err := r.pool.QueryRow(ctx, query, receipt).Scan(&exists)

	return exists, err
}

// ListByAccount lists an account's transactions, newest first.
func (r *TransactionRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE account_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, accountID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txns []*domain.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txns = append(txns, txn)
	}

	return txns, rows.Err()
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var (
		txn          domain.Transaction
		sourceAmount pgtype.Numeric
		destAmount   pgtype.Numeric
		rate         pgtype.Numeric
		commission   pgtype.Numeric
		createdAt    pgtype.Timestamptz
	)

	err := row.Scan(
		&txn.ID,
		&txn.AccountID,
		&txn.Kind,
		&txn.SourceCurrency,
		&txn.DestCurrency,
		&sourceAmount,
		&destAmount,
		&rate,
		&commission,
		&txn.Receipt,
		&txn.Status,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	txn.SourceAmount = numericToDecimal(sourceAmount)
	txn.DestAmount = numericToDecimal(destAmount)
	txn.Rate = numericToDecimal(rate)
	txn.Commission = numericToDecimal(commission)
	txn.CreatedAt = createdAt.Time

	return &txn, nil
}
