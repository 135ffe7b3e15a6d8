package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/iho/cambiod/internal/domain"
)

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{domain.ErrAccountNotFound, http.StatusNotFound},
		{domain.ErrTransactionNotFound, http.StatusNotFound},
		{domain.ErrClientNotFound, http.StatusNotFound},
		{domain.ErrPermissionDenied, http.StatusForbidden},
		{domain.ErrInsufficientFunds, http.StatusUnprocessableEntity},
		{domain.ErrEmailTaken, http.StatusConflict},
		{domain.ErrDuplicateAccount, http.StatusConflict},
		{domain.ErrInvalidCredentials, http.StatusUnauthorized},
		{domain.ErrInvalidAmount, http.StatusBadRequest},
		{domain.ErrUnsupportedCurrency, http.StatusBadRequest},
		{domain.ErrCurrencyMismatch, http.StatusBadRequest},
		{domain.ErrAccountInactive, http.StatusBadRequest},
		{errors.New("anything else"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := mapDomainError(tt.err); got != tt.want {
			t.Errorf("mapDomainError(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestParseIntQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=5&bad=x", nil)

	if got := parseIntQuery(req, "limit", 20); got != 5 {
		t.Errorf("expected 5, got %d", got)
	}

	if got := parseIntQuery(req, "missing", 20); got != 20 {
		t.Errorf("expected default 20, got %d", got)
	}

	if got := parseIntQuery(req, "bad", 20); got != 20 {
		t.Errorf("expected default for unparsable value, got %d", got)
	}
}
