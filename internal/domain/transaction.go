package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OperationKind distinguishes a purchase of foreign currency from a sale.
type OperationKind string

const (
	OperationBuy  OperationKind = "buy"
	OperationSell OperationKind = "sell"
)

// TransactionStatus is the lifecycle state of a ledger entry.
type TransactionStatus string

const (
	TransactionCompleted TransactionStatus = "completed"
	TransactionPending   TransactionStatus = "pending"
	TransactionCancelled TransactionStatus = "cancelled"
	TransactionFailed    TransactionStatus = "failed"
)

// Transaction is the immutable record of one buy or sell operation. AccountID
// references the account that was primarily debited (buy) or credited (sell);
// the counterpart account is resolved by (client, counter-currency) at
// operation time.
type Transaction struct {
	ID             string
	AccountID      string
	Kind           OperationKind
	SourceCurrency Currency
	DestCurrency   Currency
	SourceAmount   decimal.Decimal
	DestAmount     decimal.Decimal
	Rate           decimal.Decimal
	Commission     decimal.Decimal
	Receipt        string
	Status         TransactionStatus
	CreatedAt      time.Time
}

// Validate checks the invariants of a ledger entry before it is persisted.
func (t *Transaction) Validate() error {
	if t.SourceAmount.LessThanOrEqual(decimal.Zero) || t.DestAmount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	if t.SourceCurrency == t.DestCurrency {
		return ErrSameCurrency
	}

	if !t.SourceCurrency.IsSupported() || !t.DestCurrency.IsSupported() {
		return ErrUnsupportedCurrency
	}

	return nil
}
