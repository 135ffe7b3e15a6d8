package handler

import (
	"encoding/json"
	"net/http"

	"github.com/iho/cambiod/internal/adapter/http/dto"
	"github.com/iho/cambiod/internal/domain"
	"github.com/iho/cambiod/internal/usecase"
)

// RateHandler handles rate board HTTP requests.
type RateHandler struct {
	rateUC *usecase.RateUseCase
}

// NewRateHandler creates a new RateHandler.
func NewRateHandler(rateUC *usecase.RateUseCase) *RateHandler {
	return &RateHandler{rateUC: rateUC}
}

// GetBoard returns the buy/sell pair for every supported foreign currency.
func (h *RateHandler) GetBoard(w http.ResponseWriter, r *http.Request) {
	rates, err := h.rateUC.GetTradingRates(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to compute rates", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.RateBoardResponse{Rates: rates})
}

// GetActive returns the active base snapshot for one currency. Falls back to
// the latest or default snapshot, so a supported currency always resolves.
func (h *RateHandler) GetActive(w http.ResponseWriter, r *http.Request) {
	currency, err := domain.ParseCurrency(r.URL.Query().Get("currency"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid currency", err.Error())
		return
	}

	snapshot, err := h.rateUC.GetActiveRate(r.Context(), currency)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to resolve rate", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.RateSnapshotFromDomain(snapshot))
}

// Publish supersedes the active base rate for a currency.
func (h *RateHandler) Publish(w http.ResponseWriter, r *http.Request) {
	var req dto.PublishRateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid currency", err.Error())
		return
	}

	snapshot, err := h.rateUC.PublishRate(r.Context(), input)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to publish rate", err.Error())

		return
	}

	writeJSON(w, http.StatusCreated, dto.RateSnapshotFromDomain(snapshot))
}
