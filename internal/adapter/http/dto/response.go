package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/cambiod/internal/domain"
	"github.com/iho/cambiod/internal/usecase"
)

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID        string          `json:"id"`
	ClientID  string          `json:"client_id"`
	Number    string          `json:"number"`
	Currency  string          `json:"currency"`
	Balance   decimal.Decimal `json:"balance"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// AccountFromDomain converts domain account to response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:        a.ID,
		ClientID:  a.ClientID,
		Number:    a.Number,
		Currency:  string(a.Currency),
		Balance:   a.Balance,
		Status:    string(a.Status),
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// TransactionResponse represents a ledger transaction in API responses.
type TransactionResponse struct {
	ID             string          `json:"id"`
	AccountID      string          `json:"account_id"`
	Kind           string          `json:"kind"`
	SourceCurrency string          `json:"source_currency"`
	DestCurrency   string          `json:"dest_currency"`
	SourceAmount   decimal.Decimal `json:"source_amount"`
	DestAmount     decimal.Decimal `json:"dest_amount"`
	Rate           decimal.Decimal `json:"rate"`
	Commission     decimal.Decimal `json:"commission"`
	Receipt        string          `json:"receipt"`
	Status         string          `json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
}

// TransactionFromDomain converts domain transaction to response.
func TransactionFromDomain(t *domain.Transaction) *TransactionResponse {
	return &TransactionResponse{
		ID:             t.ID,
		AccountID:      t.AccountID,
		Kind:           string(t.Kind),
		SourceCurrency: string(t.SourceCurrency),
		DestCurrency:   string(t.DestCurrency),
		SourceAmount:   t.SourceAmount,
		DestAmount:     t.DestAmount,
		Rate:           t.Rate,
		Commission:     t.Commission,
		Receipt:        t.Receipt,
		Status:         string(t.Status),
		CreatedAt:      t.CreatedAt,
	}
}

// TransactionsFromDomain converts domain transactions to responses.
func TransactionsFromDomain(txns []*domain.Transaction) []*TransactionResponse {
	result := make([]*TransactionResponse, len(txns))
	for i, t := range txns {
		result[i] = TransactionFromDomain(t)
	}
	return result
}

// ExchangeResponse represents the outcome of a buy or sell operation.
type ExchangeResponse struct {
	TransactionID string          `json:"transaction_id"`
	Receipt       string          `json:"receipt"`
	Kind          string          `json:"kind"`
	SourceAccount string          `json:"source_account"`
	DestAccount   string          `json:"dest_account"`
	SourceAmount  decimal.Decimal `json:"source_amount"`
	DestAmount    decimal.Decimal `json:"dest_amount"`
	Commission    decimal.Decimal `json:"commission"`
	Rate          decimal.Decimal `json:"rate"`
}

// ExchangeFromResult converts a use case result to response.
func ExchangeFromResult(r *usecase.ExchangeResult) *ExchangeResponse {
	return &ExchangeResponse{
		TransactionID: r.TransactionID,
		Receipt:       r.Receipt,
		Kind:          string(r.Kind),
		SourceAccount: r.SourceAccount,
		DestAccount:   r.DestAccount,
		SourceAmount:  r.SourceAmount,
		DestAmount:    r.DestAmount,
		Commission:    r.Commission,
		Rate:          r.Rate,
	}
}

// RateBoardResponse represents the published buy/sell board.
type RateBoardResponse struct {
	Rates []domain.TradingRate `json:"rates"`
}

// RateSnapshotResponse represents a rate snapshot in API responses.
type RateSnapshotResponse struct {
	ID          string          `json:"id"`
	Currency    string          `json:"currency"`
	Rate        decimal.Decimal `json:"rate"`
	Source      string          `json:"source"`
	Active      bool            `json:"active"`
	EffectiveAt time.Time       `json:"effective_at"`
}

// RateSnapshotFromDomain converts a domain snapshot to response.
func RateSnapshotFromDomain(s *domain.RateSnapshot) *RateSnapshotResponse {
	return &RateSnapshotResponse{
		ID:          s.ID,
		Currency:    string(s.Currency),
		Rate:        s.Rate,
		Source:      s.Source,
		Active:      s.Active,
		EffectiveAt: s.EffectiveAt,
	}
}

// ClientResponse represents a client in API responses.
type ClientResponse struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	DocumentID string    `json:"document_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// ClientFromDomain converts a domain client to response.
func ClientFromDomain(c *domain.Client) *ClientResponse {
	return &ClientResponse{
		ID:         c.ID,
		Name:       c.Name,
		DocumentID: c.DocumentID,
		CreatedAt:  c.CreatedAt,
	}
}

// CreateClientResponse carries the new client and its initial account.
type CreateClientResponse struct {
	Client  *ClientResponse  `json:"client"`
	Account *AccountResponse `json:"account"`
}

// UserResponse represents a user in API responses.
type UserResponse struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	ClientID string `json:"client_id,omitempty"`
}

// UserFromDomain converts a domain user to response.
func UserFromDomain(u *domain.User) *UserResponse {
	return &UserResponse{
		ID:       u.ID,
		Email:    u.Email,
		Name:     u.Name,
		Role:     string(u.Role),
		ClientID: u.ClientID,
	}
}

// RegisterResponse represents the outcome of a registration.
type RegisterResponse struct {
	User    *UserResponse    `json:"user"`
	Account *AccountResponse `json:"account,omitempty"`
	Token   string           `json:"token,omitempty"`
}

// TokenResponse represents a successful login.
type TokenResponse struct {
	Token string        `json:"token"`
	User  *UserResponse `json:"user"`
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
