package dto

import (
	"github.com/shopspring/decimal"

	"github.com/iho/cambiod/internal/domain"
	"github.com/iho/cambiod/internal/usecase"
)

// RegisterRequest represents a request to register a user.
type RegisterRequest struct {
	Email      string `json:"email"`
	Name       string `json:"name"`
	Password   string `json:"password"`
	DocumentID string `json:"document_id,omitempty"`
	// Role defaults to client. Staff roles can only be assigned by an admin.
	Role string `json:"role,omitempty"`
}

// CreateClientRequest represents a request to onboard a client directly,
// without a user identity. Used by tellers for walk-in clients.
type CreateClientRequest struct {
	Name       string `json:"name"`
	DocumentID string `json:"document_id,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateClientRequest) ToUseCaseInput() usecase.RegisterClientInput {
	return usecase.RegisterClientInput{
		Name:       r.Name,
		DocumentID: r.DocumentID,
	}
}

// LoginRequest represents a login request.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ExchangeRequest represents a buy or sell request.
type ExchangeRequest struct {
	AccountID string          `json:"account_id"`
	Currency  string          `json:"currency"`
	Amount    decimal.Decimal `json:"amount"`
	// AmountIsDest prices the operation from the desired destination amount
	// instead of the amount debited.
	AmountIsDest bool `json:"amount_is_dest,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *ExchangeRequest) ToUseCaseInput(actor *domain.User) (usecase.ExchangeInput, error) {
	currency, err := domain.ParseCurrency(r.Currency)
	if err != nil {
		return usecase.ExchangeInput{}, err
	}

	return usecase.ExchangeInput{
		Actor:           actor,
		SourceAccountID: r.AccountID,
		Currency:        currency,
		Amount:          r.Amount,
		AmountIsDest:    r.AmountIsDest,
	}, nil
}

// PublishRateRequest represents a request to publish a rate snapshot.
type PublishRateRequest struct {
	Currency string          `json:"currency"`
	Rate     decimal.Decimal `json:"rate"`
	Source   string          `json:"source,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *PublishRateRequest) ToUseCaseInput() (usecase.PublishRateInput, error) {
	currency, err := domain.ParseCurrency(r.Currency)
	if err != nil {
		return usecase.PublishRateInput{}, err
	}

	return usecase.PublishRateInput{
		Currency: currency,
		Rate:     r.Rate,
		Source:   r.Source,
	}, nil
}
