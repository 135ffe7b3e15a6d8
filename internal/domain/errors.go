package domain

import "errors"

var (
	// Account errors
	ErrAccountNotFound   = errors.New("account not found")
	ErrAccountInactive   = errors.New("account is not active")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrDuplicateAccount  = errors.New("client already has an active account in this currency")

	// Exchange errors
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrUnsupportedCurrency = errors.New("unsupported currency code")
	ErrSameCurrency        = errors.New("source and destination currency are the same")
	ErrCurrencyMismatch    = errors.New("account currency does not match the operation")
	ErrPermissionDenied    = errors.New("actor cannot operate on this account")

	// Client errors
	ErrClientNotFound = errors.New("client not found")

	// Transaction errors
	ErrTransactionNotFound = errors.New("transaction not found")

	// Rate errors. Rate lookups for supported currencies never surface this to
	// callers of the rate provider; it only marks an empty snapshot table
	// internally before the hardcoded default kicks in.
	ErrRateNotFound = errors.New("no rate snapshot found")
)
