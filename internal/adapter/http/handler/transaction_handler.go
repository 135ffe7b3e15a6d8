package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/cambiod/internal/adapter/http/dto"
	"github.com/iho/cambiod/internal/usecase"
)

// TransactionHandler handles transaction query HTTP requests.
type TransactionHandler struct {
	txnUC     *usecase.TransactionUseCase
	accountUC *usecase.AccountUseCase
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(txnUC *usecase.TransactionUseCase, accountUC *usecase.AccountUseCase) *TransactionHandler {
	return &TransactionHandler{txnUC: txnUC, accountUC: accountUC}
}

// GetByReceipt retrieves a transaction by its comprobante number. The same
// ownership rule as for the account itself applies: clients only see receipts
// belonging to their own accounts.
func (h *TransactionHandler) GetByReceipt(w http.ResponseWriter, r *http.Request) {
	receipt := chi.URLParam(r, "receipt")
	if receipt == "" {
		writeError(w, http.StatusBadRequest, "missing receipt", "")
		return
	}

	txn, err := h.txnUC.GetByReceipt(r.Context(), receipt)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to get transaction", err.Error())

		return
	}

	account, err := h.accountUC.GetAccount(r.Context(), txn.AccountID)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to get transaction", err.Error())

		return
	}

	if !canReadAccount(r, account) {
		writeError(w, http.StatusForbidden, "access denied", "")
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(txn))
}

// ListByAccount lists an account's transactions, newest first. Clients can
// only list their own accounts.
func (h *TransactionHandler) ListByAccount(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")
	if accountID == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	account, err := h.accountUC.GetAccount(r.Context(), accountID)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to list transactions", err.Error())

		return
	}

	if !canReadAccount(r, account) {
		writeError(w, http.StatusForbidden, "access denied", "")
		return
	}

	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	txns, err := h.txnUC.ListByAccount(r.Context(), usecase.ListByAccountInput{
		AccountID: accountID,
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list transactions", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionsFromDomain(txns))
}
