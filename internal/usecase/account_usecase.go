package usecase

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/cambiod/internal/domain"
)

const accountNumberMaxAttempts = 5

// AccountUseCase handles account lifecycle, including the lazy provisioning
// the exchange operation relies on.
type AccountUseCase struct {
	accountRepo AccountRepository
	clientRepo  ClientRepository
	idGen       IDGenerator
}

// NewAccountUseCase creates a new AccountUseCase.
func NewAccountUseCase(accountRepo AccountRepository, clientRepo ClientRepository, idGen IDGenerator) *AccountUseCase {
	return &AccountUseCase{
		accountRepo: accountRepo,
		clientRepo:  clientRepo,
		idGen:       idGen,
	}
}

// RegisterClientInput represents input for registering a client.
type RegisterClientInput struct {
	UserID     string
	Name       string
	DocumentID string
}

// RegisterClient creates a client together with its initial VES account.
func (uc *AccountUseCase) RegisterClient(ctx context.Context, input RegisterClientInput) (*domain.Client, *domain.Account, error) {
	if err := domain.ValidateName(input.Name); err != nil {
		return nil, nil, err
	}

	now := time.Now().UTC()

	client := &domain.Client{
		ID:         uc.idGen.Generate(),
		UserID:     input.UserID,
		Name:       input.Name,
		DocumentID: input.DocumentID,
		CreatedAt:  now,
	}

	if err := uc.clientRepo.Create(ctx, client); err != nil {
		return nil, nil, err
	}

	number, err := uc.generateNumber(ctx, domain.CurrencyVES)
	if err != nil {
		return nil, nil, err
	}

	account := &domain.Account{
		ID:        uc.idGen.Generate(),
		ClientID:  client.ID,
		Number:    number,
		Currency:  domain.CurrencyVES,
		Balance:   decimal.Zero,
		Status:    domain.AccountStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := uc.accountRepo.Create(ctx, account); err != nil {
		return nil, nil, err
	}

	return client, account, nil
}

// GetAccount retrieves an account by ID.
func (uc *AccountUseCase) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return uc.accountRepo.GetByID(ctx, id)
}

// ListAccounts lists a client's accounts.
func (uc *AccountUseCase) ListAccounts(ctx context.Context, clientID string) ([]*domain.Account, error) {
	if _, err := uc.clientRepo.GetByID(ctx, clientID); err != nil {
		return nil, err
	}

	return uc.accountRepo.ListByClient(ctx, clientID)
}

// Deactivate marks an account inactive. Accounts are never deleted.
func (uc *AccountUseCase) Deactivate(ctx context.Context, id string) error {
	account, err := uc.accountRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if account.Status != domain.AccountStatusActive {
		return domain.ErrAccountInactive
	}

	return uc.accountRepo.UpdateStatus(ctx, id, domain.AccountStatusInactive, time.Now().UTC())
}

// GetOrCreate returns the client's active account in the given currency,
// provisioning one with zero balance when absent. It runs inside the caller's
// database transaction so the new account commits or aborts together with the
// operation that needed it.
func (uc *AccountUseCase) GetOrCreate(ctx context.Context, tx Transaction, clientID string, currency domain.Currency) (*domain.Account, error) {
	account, err := uc.accountRepo.GetByClientAndCurrencyForUpdate(ctx, tx, clientID, currency)
	if err == nil {
		return account, nil
	}

	if err != domain.ErrAccountNotFound {
		return nil, err
	}

	number, err := uc.generateNumber(ctx, currency)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	account = &domain.Account{
		ID:        uc.idGen.Generate(),
		ClientID:  clientID,
		Number:    number,
		Currency:  currency,
		Balance:   decimal.Zero,
		Status:    domain.AccountStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := uc.accountRepo.CreateTx(ctx, tx, account); err != nil {
		return nil, err
	}

	return account, nil
}

// generateNumber produces a currency-prefixed 20-digit account number,
// retried until unique against existing account numbers.
func (uc *AccountUseCase) generateNumber(ctx context.Context, currency domain.Currency) (string, error) {
	for attempt := 0; attempt < accountNumberMaxAttempts; attempt++ {
		number := currency.NumberPrefix() + randomDigits(16)

		exists, err := uc.accountRepo.ExistsNumber(ctx, number)
		if err != nil {
			return "", fmt.Errorf("checking account number uniqueness: %w", err)
		}

		if !exists {
			return number, nil
		}
	}

	return "", fmt.Errorf("could not generate a unique account number after %d attempts", accountNumberMaxAttempts)
}

var digitBound = big.NewInt(10)

func randomDigits(n int) string {
	buf := make([]byte, n)
	for i := range buf {
		d, _ := rand.Int(rand.Reader, digitBound)
		buf[i] = byte('0' + d.Int64())
	}

	return string(buf)
}
