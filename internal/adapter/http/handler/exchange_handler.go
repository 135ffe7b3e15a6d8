package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/iho/cambiod/internal/adapter/http/dto"
	"github.com/iho/cambiod/internal/adapter/http/middleware"
	"github.com/iho/cambiod/internal/domain"
	"github.com/iho/cambiod/internal/infrastructure/metrics"
	"github.com/iho/cambiod/internal/usecase"
)

// Exchanger executes pricing and settlement of a buy or sell operation.
type Exchanger interface {
	Buy(ctx context.Context, input usecase.ExchangeInput) (*usecase.ExchangeResult, error)
	Sell(ctx context.Context, input usecase.ExchangeInput) (*usecase.ExchangeResult, error)
}

// ExchangeHandler handles buy/sell HTTP requests. Metrics may be nil.
type ExchangeHandler struct {
	exchangeUC Exchanger
	metrics    *metrics.Metrics
}

// NewExchangeHandler creates a new ExchangeHandler.
func NewExchangeHandler(exchangeUC Exchanger, m *metrics.Metrics) *ExchangeHandler {
	return &ExchangeHandler{exchangeUC: exchangeUC, metrics: m}
}

// Buy executes a buy operation: VES in, foreign currency out.
func (h *ExchangeHandler) Buy(w http.ResponseWriter, r *http.Request) {
	h.execute(w, r, domain.OperationBuy, h.exchangeUC.Buy)
}

// Sell executes a sell operation: foreign currency in, VES out.
func (h *ExchangeHandler) Sell(w http.ResponseWriter, r *http.Request) {
	h.execute(w, r, domain.OperationSell, h.exchangeUC.Sell)
}

func (h *ExchangeHandler) execute(
	w http.ResponseWriter,
	r *http.Request,
	kind domain.OperationKind,
	op func(context.Context, usecase.ExchangeInput) (*usecase.ExchangeResult, error),
) {
	var req dto.ExchangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	actor, _ := middleware.GetUserFromContext(r.Context())

	input, err := req.ToUseCaseInput(actor)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid currency", err.Error())
		return
	}

	start := time.Now()

	result, err := op(r.Context(), input)
	if err != nil {
		if h.metrics != nil {
			h.metrics.ExchangeErrors.WithLabelValues(exchangeErrorType(err)).Inc()
		}

		status := mapDomainError(err)
		writeError(w, status, "failed to execute operation", err.Error())

		return
	}

	if h.metrics != nil {
		h.recordExchange(kind, input.Currency, result, time.Since(start))
	}

	writeJSON(w, http.StatusCreated, dto.ExchangeFromResult(result))
}

func (h *ExchangeHandler) recordExchange(kind domain.OperationKind, currency domain.Currency, result *usecase.ExchangeResult, elapsed time.Duration) {
	h.metrics.ExchangesExecuted.WithLabelValues(string(kind), string(currency)).Inc()
	h.metrics.ExchangeDuration.Observe(elapsed.Seconds())

	// The foreign leg is the destination on a buy, the source on a sell.
	foreign := result.DestAmount
	if kind == domain.OperationSell {
		foreign = result.SourceAmount
	}

	amount, _ := foreign.Float64()
	h.metrics.ExchangeAmount.WithLabelValues(string(kind), string(currency)).Observe(amount)
}

func exchangeErrorType(err error) string {
	switch {
	case errors.Is(err, domain.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, domain.ErrAccountNotFound):
		return "account_not_found"
	case errors.Is(err, domain.ErrAccountInactive):
		return "account_inactive"
	case errors.Is(err, domain.ErrPermissionDenied):
		return "permission_denied"
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrAmountTooSmall),
		errors.Is(err, domain.ErrAmountTooLarge):
		return "invalid_amount"
	case errors.Is(err, domain.ErrUnsupportedCurrency),
		errors.Is(err, domain.ErrSameCurrency),
		errors.Is(err, domain.ErrCurrencyMismatch):
		return "invalid_currency"
	default:
		return "internal"
	}
}
