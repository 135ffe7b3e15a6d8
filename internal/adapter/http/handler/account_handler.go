package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/cambiod/internal/adapter/http/dto"
	"github.com/iho/cambiod/internal/adapter/http/middleware"
	"github.com/iho/cambiod/internal/usecase"
)

// AccountHandler handles account-related HTTP requests.
type AccountHandler struct {
	accountUC *usecase.AccountUseCase
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountUC *usecase.AccountUseCase) *AccountHandler {
	return &AccountHandler{accountUC: accountUC}
}

// Get retrieves an account by ID. Clients can only read their own accounts.
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	account, err := h.accountUC.GetAccount(r.Context(), id)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to get account", err.Error())

		return
	}

	if !canReadAccount(r, account) {
		writeError(w, http.StatusForbidden, "access denied", "")
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

// ListByClient lists a client's accounts.
func (h *AccountHandler) ListByClient(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "id")
	if clientID == "" {
		writeError(w, http.StatusBadRequest, "missing client ID", "")
		return
	}

	if actor, ok := middleware.GetUserFromContext(r.Context()); ok {
		if !actor.Role.IsStaff() && actor.ClientID != clientID {
			writeError(w, http.StatusForbidden, "access denied", "")
			return
		}
	}

	accounts, err := h.accountUC.ListAccounts(r.Context(), clientID)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to list accounts", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.AccountsFromDomain(accounts))
}

// CreateClient onboards a client with their initial bolivar account.
// Staff only when authentication is enabled.
func (h *AccountHandler) CreateClient(w http.ResponseWriter, r *http.Request) {
	if actor, ok := middleware.GetUserFromContext(r.Context()); ok && !actor.Role.IsStaff() {
		writeError(w, http.StatusForbidden, "access denied", "")
		return
	}

	var req dto.CreateClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	client, account, err := h.accountUC.RegisterClient(r.Context(), req.ToUseCaseInput())
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to create client", err.Error())

		return
	}

	writeJSON(w, http.StatusCreated, dto.CreateClientResponse{
		Client:  dto.ClientFromDomain(client),
		Account: dto.AccountFromDomain(account),
	})
}

// Deactivate marks an account inactive.
func (h *AccountHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	if err := h.accountUC.Deactivate(r.Context(), id); err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to deactivate account", err.Error())

		return
	}

	w.WriteHeader(http.StatusNoContent)
}
