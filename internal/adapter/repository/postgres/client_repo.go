package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/cambiod/internal/domain"
)

// ClientRepository implements usecase.ClientRepository.
type ClientRepository struct {
	pool *pgxpool.Pool
}

// NewClientRepository creates a new ClientRepository.
func NewClientRepository(pool *pgxpool.Pool) *ClientRepository {
	return &ClientRepository{pool: pool}
}

// Create inserts a new client.
func (r *ClientRepository) Create(ctx context.Context, client *domain.Client) error {
	query := `
		INSERT INTO clients (id, user_id, name, document_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.pool.Exec(ctx, query,
		client.ID,
		client.UserID,
		client.Name,
		client.DocumentID,
		timeToPgTimestamptz(client.CreatedAt),
	)

	return err
}

// GetByID retrieves a client by ID.
func (r *ClientRepository) GetByID(ctx context.Context, id string) (*domain.Client, error) {
	query := `
		SELECT id, user_id, name, document_id, created_at
		FROM clients
		WHERE id = $1
	`

	return scanClient(r.pool.QueryRow(ctx, query, id))
}

// GetByUserID retrieves the client linked to a user.
func (r *ClientRepository) GetByUserID(ctx context.Context, userID string) (*domain.Client, error) {
	query := `
		SELECT id, user_id, name, document_id, created_at
		FROM clients
		WHERE user_id = $1
	`

	return scanClient(r.pool.QueryRow(ctx, query, userID))
}

func scanClient(row pgx.Row) (*domain.Client, error) {
	var (
		client    domain.Client
		createdAt pgtype.Timestamptz
	)

	err := row.Scan(
		&client.ID,
		&client.UserID,
		&client.Name,
		&client.DocumentID,
		&createdAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrClientNotFound
	}
	if err != nil {
		return nil, err
	}

	client.CreatedAt = createdAt.Time

	return &client, nil
}
