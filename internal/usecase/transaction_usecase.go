package usecase

import (
	"context"

	"github.com/iho/cambiod/internal/domain"
)

// TransactionUseCase serves the transaction query surface.
type TransactionUseCase struct {
	txnRepo TransactionRepository
}

// NewTransactionUseCase creates a new TransactionUseCase.
func NewTransactionUseCase(txnRepo TransactionRepository) *TransactionUseCase {
	return &TransactionUseCase{txnRepo: txnRepo}
}

// GetByReceipt retrieves a transaction by its comprobante.
func (uc *TransactionUseCase) GetByReceipt(ctx context.Context, receipt string) (*domain.Transaction, error) {
	if receipt == "" {
		return nil, domain.ErrTransactionNotFound
	}

	return uc.txnRepo.GetByReceipt(ctx, receipt)
}

// ListByAccountInput represents input for listing transactions.
type ListByAccountInput struct {
	AccountID string
	Limit     int
	Offset    int
}

// ListByAccount lists an account's transactions, newest first.
func (uc *TransactionUseCase) ListByAccount(ctx context.Context, input ListByAccountInput) ([]*domain.Transaction, error) {
	if input.Limit <= 0 {
		input.Limit = 20
	}

	if input.Limit > 100 {
		input.Limit = 100
	}

	return uc.txnRepo.ListByAccount(ctx, input.AccountID, input.Limit, input.Offset)
}
