package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/cambiod/internal/domain"
)

// AccountRepository defines data access for accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	CreateTx(ctx context.Context, tx Transaction, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Account, error)
	// GetByClientAndCurrencyForUpdate locks the client's active account in the
	// given currency, or returns domain.ErrAccountNotFound.
	GetByClientAndCurrencyForUpdate(ctx context.Context, tx Transaction, clientID string, currency domain.Currency) (*domain.Account, error)
	UpdateBalance(ctx context.Context, tx Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error
	UpdateStatus(ctx context.Context, id string, status domain.AccountStatus, updatedAt time.Time) error
	ListByClient(ctx context.Context, clientID string) ([]*domain.Account, error)
	ExistsNumber(ctx context.Context, number string) (bool, error)
}

// TransactionRepository defines data access for ledger entries.
type TransactionRepository interface {
	Create(ctx context.Context, tx Transaction, txn *domain.Transaction) error
	GetByReceipt(ctx context.Context, receipt string) (*domain.Transaction, error)
	ExistsReceipt(ctx context.Context, receipt string) (bool, error)
	ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Transaction, error)
}

// RateRepository defines data access for exchange-rate snapshots.
type RateRepository interface {
	// GetActive returns the snapshot marked active for the currency.
	GetActive(ctx context.Context, currency domain.Currency) (*domain.RateSnapshot, error)
	// GetLatest returns the most recent snapshot by effective time.
	GetLatest(ctx context.Context, currency domain.Currency) (*domain.RateSnapshot, error)
	// Publish deactivates the current active snapshot for the currency and
	// inserts the new one as active, in a single database transaction.
	Publish(ctx context.Context, snapshot *domain.RateSnapshot) error
}

// ClientRepository defines data access for clients.
type ClientRepository interface {
	Create(ctx context.Context, client *domain.Client) error
	GetByID(ctx context.Context, id string) (*domain.Client, error)
	GetByUserID(ctx context.Context, userID string) (*domain.Client, error)
}

// UserRepository defines data access for users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// LinkClient records the client row a client-role user belongs to.
	LinkClient(ctx context.Context, userID, clientID string) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique entity IDs.
type IDGenerator interface {
	Generate() string
}

// RatesCache caches the published trading rates.
type RatesCache interface {
	Get(ctx context.Context) ([]domain.TradingRate, error)
	Set(ctx context.Context, rates []domain.TradingRate, ttl time.Duration) error
	Invalidate(ctx context.Context) error
}
