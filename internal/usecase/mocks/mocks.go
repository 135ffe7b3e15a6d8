// Package mocks provides in-memory mock implementations of the usecase
// interfaces. Every method can be overridden through its Func field; the
// default behavior is a thread-safe map-backed store.
package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/cambiod/internal/domain"
	"github.com/iho/cambiod/internal/usecase"
)

// MockAccountRepository is a mock implementation of AccountRepository.
type MockAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account

	CreateFunc                          func(ctx context.Context, account *domain.Account) error
	CreateTxFunc                        func(ctx context.Context, tx usecase.Transaction, account *domain.Account) error
	GetByIDFunc                         func(ctx context.Context, id string) (*domain.Account, error)
	GetByIDForUpdateFunc                func(ctx context.Context, tx usecase.Transaction, id string) (*domain.Account, error)
	GetByClientAndCurrencyForUpdateFunc func(ctx context.Context, tx usecase.Transaction, clientID string, currency domain.Currency) (*domain.Account, error)
	UpdateBalanceFunc                   func(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error
	UpdateStatusFunc                    func(ctx context.Context, id string, status domain.AccountStatus, updatedAt time.Time) error
	ListByClientFunc                    func(ctx context.Context, clientID string) ([]*domain.Account, error)
	ExistsNumberFunc                    func(ctx context.Context, number string) (bool, error)
}

func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{
		accounts: make(map[string]*domain.Account),
	}
}

// Seed adds an account to the backing store.
func (m *MockAccountRepository) Seed(account *domain.Account) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account.ID] = account
}

func (m *MockAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, account)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account.ID] = account
	return nil
}

func (m *MockAccountRepository) CreateTx(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	if m.CreateTxFunc != nil {
		return m.CreateTxFunc(ctx, tx, account)
	}
	return m.Create(ctx, account)
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if acc, ok := m.accounts[id]; ok {
		return acc, nil
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Account, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockAccountRepository) GetByClientAndCurrencyForUpdate(ctx context.Context, tx usecase.Transaction, clientID string, currency domain.Currency) (*domain.Account, error) {
	if m.GetByClientAndCurrencyForUpdateFunc != nil {
		return m.GetByClientAndCurrencyForUpdateFunc(ctx, tx, clientID, currency)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, acc := range m.accounts {
		if acc.ClientID == clientID && acc.Currency == currency && acc.IsActive() {
			return acc, nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error {
	if m.UpdateBalanceFunc != nil {
		return m.UpdateBalanceFunc(ctx, tx, id, balance, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if acc, ok := m.accounts[id]; ok {
		acc.Balance = balance
		acc.UpdatedAt = updatedAt
	}
	return nil
}

func (m *MockAccountRepository) UpdateStatus(ctx context.Context, id string, status domain.AccountStatus, updatedAt time.Time) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, id, status, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if acc, ok := m.accounts[id]; ok {
		acc.Status = status
		acc.UpdatedAt = updatedAt
	}
	return nil
}

func (m *MockAccountRepository) ListByClient(ctx context.Context, clientID string) ([]*domain.Account, error) {
	if m.ListByClientFunc != nil {
		return m.ListByClientFunc(ctx, clientID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var accounts []*domain.Account
	for _, acc := range m.accounts {
		if acc.ClientID == clientID {
			accounts = append(accounts, acc)
		}
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].ID < accounts[j].ID })
	return accounts, nil
}

func (m *MockAccountRepository) ExistsNumber(ctx context.Context, number string) (bool, error) {
	if m.ExistsNumberFunc != nil {
		return m.ExistsNumberFunc(ctx, number)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, acc := range m.accounts {
		if acc.Number == number {
			return true, nil
		}
	}
	return false, nil
}

// MockTransactionRepository is a mock implementation of TransactionRepository.
type MockTransactionRepository struct {
	mu           sync.RWMutex
	transactions map[string]*domain.Transaction

	CreateFunc        func(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error
	GetByReceiptFunc  func(ctx context.Context, receipt string) (*domain.Transaction, error)
	ExistsReceiptFunc func(ctx context.Context, receipt string) (bool, error)
	ListByAccountFunc func(ctx context.Context, accountID string, limit, offset int) ([]*domain.Transaction, error)
}

func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{
		transactions: make(map[string]*domain.Transaction),
	}
}

func (m *MockTransactionRepository) Create(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, txn)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transactions[txn.ID] = txn
	return nil
}

func (m *MockTransactionRepository) GetByReceipt(ctx context.Context, receipt string) (*domain.Transaction, error) {
	if m.GetByReceiptFunc != nil {
		return m.GetByReceiptFunc(ctx, receipt)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, txn := range m.transactions {
		if txn.Receipt == receipt {
			return txn, nil
		}
	}
	return nil, domain.ErrTransactionNotFound
}

func (m *MockTransactionRepository) ExistsReceipt(ctx context.Context, receipt string) (bool, error) {
	if m.ExistsReceiptFunc != nil {
		return m.ExistsReceiptFunc(ctx, receipt)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, txn := range m.transactions {
		if txn.Receipt == receipt {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockTransactionRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Transaction, error) {
	if m.ListByAccountFunc != nil {
		return m.ListByAccountFunc(ctx, accountID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var txns []*domain.Transaction
	for _, txn := range m.transactions {
		if txn.AccountID == accountID {
			txns = append(txns, txn)
		}
	}
	sort.Slice(txns, func(i, j int) bool { return txns[i].CreatedAt.After(txns[j].CreatedAt) })
	if offset >= len(txns) {
		return nil, nil
	}
	txns = txns[offset:]
	if limit < len(txns) {
		txns = txns[:limit]
	}
	return txns, nil
}

// All returns every stored transaction.
func (m *MockTransactionRepository) All() []*domain.Transaction {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var txns []*domain.Transaction
	for _, txn := range m.transactions {
		txns = append(txns, txn)
	}
	return txns
}

// MockRateRepository is a mock implementation of RateRepository.
type MockRateRepository struct {
	mu        sync.RWMutex
	snapshots []*domain.RateSnapshot

	GetActiveFunc func(ctx context.Context, currency domain.Currency) (*domain.RateSnapshot, error)
	GetLatestFunc func(ctx context.Context, currency domain.Currency) (*domain.RateSnapshot, error)
	PublishFunc   func(ctx context.Context, snapshot *domain.RateSnapshot) error
}

func NewMockRateRepository() *MockRateRepository {
	return &MockRateRepository{}
}

func (m *MockRateRepository) GetActive(ctx context.Context, currency domain.Currency) (*domain.RateSnapshot, error) {
	if m.GetActiveFunc != nil {
		return m.GetActiveFunc(ctx, currency)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.snapshots {
		if s.Currency == currency && s.Active {
			return s, nil
		}
	}
	return nil, domain.ErrRateNotFound
}

func (m *MockRateRepository) GetLatest(ctx context.Context, currency domain.Currency) (*domain.RateSnapshot, error) {
	if m.GetLatestFunc != nil {
		return m.GetLatestFunc(ctx, currency)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var latest *domain.RateSnapshot
	for _, s := range m.snapshots {
		if s.Currency != currency {
			continue
		}
		if latest == nil || s.EffectiveAt.After(latest.EffectiveAt) {
			latest = s
		}
	}
	if latest == nil {
		return nil, domain.ErrRateNotFound
	}
	return latest, nil
}

func (m *MockRateRepository) Publish(ctx context.Context, snapshot *domain.RateSnapshot) error {
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, snapshot)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.snapshots {
		if s.Currency == snapshot.Currency {
			s.Active = false
		}
	}
	m.snapshots = append(m.snapshots, snapshot)
	return nil
}

// MockClientRepository is a mock implementation of ClientRepository.
type MockClientRepository struct {
	mu      sync.RWMutex
	clients map[string]*domain.Client

	CreateFunc      func(ctx context.Context, client *domain.Client) error
	GetByIDFunc     func(ctx context.Context, id string) (*domain.Client, error)
	GetByUserIDFunc func(ctx context.Context, userID string) (*domain.Client, error)
}

func NewMockClientRepository() *MockClientRepository {
	return &MockClientRepository{
		clients: make(map[string]*domain.Client),
	}
}

func (m *MockClientRepository) Create(ctx context.Context, client *domain.Client) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, client)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clients[client.ID] = client
	return nil
}

func (m *MockClientRepository) GetByID(ctx context.Context, id string) (*domain.Client, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if c, ok := m.clients[id]; ok {
		return c, nil
	}
	return nil, domain.ErrClientNotFound
}

func (m *MockClientRepository) GetByUserID(ctx context.Context, userID string) (*domain.Client, error) {
	if m.GetByUserIDFunc != nil {
		return m.GetByUserIDFunc(ctx, userID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.clients {
		if c.UserID == userID {
			return c, nil
		}
	}
	return nil, domain.ErrClientNotFound
}

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User

	CreateFunc     func(ctx context.Context, user *domain.User) error
	GetByIDFunc    func(ctx context.Context, id string) (*domain.User, error)
	GetByEmailFunc func(ctx context.Context, email string) (*domain.User, error)
	LinkClientFunc func(ctx context.Context, userID, clientID string) error
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users: make(map[string]*domain.User),
	}
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = user
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) LinkClient(ctx context.Context, userID, clientID string) error {
	if m.LinkClientFunc != nil {
		return m.LinkClientFunc(ctx, userID, clientID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[userID]; ok {
		u.ClientID = clientID
		return nil
	}
	return domain.ErrUserNotFound
}

// MockTransaction is a no-op database transaction.
type MockTransaction struct {
	Committed  bool
	RolledBack bool

	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error
}

func (t *MockTransaction) Commit(ctx context.Context) error {
	if t.CommitFunc != nil {
		return t.CommitFunc(ctx)
	}
	t.Committed = true
	return nil
}

func (t *MockTransaction) Rollback(ctx context.Context) error {
	if t.RollbackFunc != nil {
		return t.RollbackFunc(ctx)
	}
	if !t.Committed {
		t.RolledBack = true
	}
	return nil
}

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)

	mu   sync.Mutex
	Last *MockTransaction
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Last = &MockTransaction{}
	return m.Last, nil
}

// MockIDGenerator is a mock implementation of IDGenerator.
type MockIDGenerator struct {
	mu      sync.Mutex
	counter int

	GenerateFunc func() string
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("id-%06d", m.counter)
}

// MockRatesCache is a mock implementation of RatesCache.
type MockRatesCache struct {
	mu    sync.RWMutex
	rates []domain.TradingRate

	GetFunc        func(ctx context.Context) ([]domain.TradingRate, error)
	SetFunc        func(ctx context.Context, rates []domain.TradingRate, ttl time.Duration) error
	InvalidateFunc func(ctx context.Context) error
}

func NewMockRatesCache() *MockRatesCache {
	return &MockRatesCache{}
}

func (m *MockRatesCache) Get(ctx context.Context) ([]domain.TradingRate, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rates, nil
}

func (m *MockRatesCache) Set(ctx context.Context, rates []domain.TradingRate, ttl time.Duration) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, rates, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rates = rates
	return nil
}

func (m *MockRatesCache) Invalidate(ctx context.Context) error {
	if m.InvalidateFunc != nil {
		return m.InvalidateFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rates = nil
	return nil
}
