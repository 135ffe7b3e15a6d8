package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/iho/cambiod/internal/adapter/http/dto"
	"github.com/iho/cambiod/internal/domain"
	"github.com/iho/cambiod/internal/infrastructure/auth"
	"github.com/iho/cambiod/internal/usecase"
	"github.com/iho/cambiod/internal/usecase/mocks"
)

func newAuthHandler(tokens TokenIssuer) *AuthHandler {
	idGen := mocks.NewMockIDGenerator()
	userUC := usecase.NewUserUseCase(mocks.NewMockUserRepository(), idGen)
	accountUC := usecase.NewAccountUseCase(mocks.NewMockAccountRepository(), mocks.NewMockClientRepository(), idGen)

	return NewAuthHandler(userUC, accountUC, tokens)
}

func TestAuthHandler_Register_ClientGetsBolivarAccount(t *testing.T) {
	h := newAuthHandler(auth.NewJWTManager("test-secret", time.Minute))

	body, _ := json.Marshal(dto.RegisterRequest{
		Email:      "maria@example.com",
		Name:       "Maria Perez",
		Password:   "correcthorse",
		DocumentID: "V-12345678",
	})

	req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.Register(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.RegisterResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if resp.User.Role != string(domain.RoleClient) {
		t.Errorf("expected client role, got %s", resp.User.Role)
	}

	if resp.User.ClientID == "" {
		t.Error("expected user to be linked to a client")
	}

	if resp.Account == nil {
		t.Fatal("expected an initial account")
	}

	if resp.Account.Currency != string(domain.CurrencyVES) {
		t.Errorf("expected VES account, got %s", resp.Account.Currency)
	}

	if !strings.HasPrefix(resp.Account.Number, "0102") {
		t.Errorf("expected bolivar number prefix 0102, got %s", resp.Account.Number)
	}

	if resp.Token == "" {
		t.Error("expected a signed token")
	}
}

func TestAuthHandler_Register_StaffRoleRequiresAdmin(t *testing.T) {
	h := newAuthHandler(nil)

	body, _ := json.Marshal(dto.RegisterRequest{
		Email:    "op@example.com",
		Name:     "Operator",
		Password: "correcthorse",
		Role:     string(domain.RoleOperator),
	})

	req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.Register(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}

	admin := &domain.User{ID: "admin-1", Role: domain.RoleAdmin, Active: true}
	req = withActor(httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewReader(body)), admin)
	rec = httptest.NewRecorder()

	h.Register(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 for admin-created operator, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAuthHandler_Register_DuplicateEmail(t *testing.T) {
	h := newAuthHandler(nil)

	body, _ := json.Marshal(dto.RegisterRequest{
		Email:    "maria@example.com",
		Name:     "Maria Perez",
		Password: "correcthorse",
	})

	req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.Register(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected first registration to succeed, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewReader(body))
	rec = httptest.NewRecorder()
	h.Register(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestAuthHandler_Login(t *testing.T) {
	h := newAuthHandler(auth.NewJWTManager("test-secret", time.Minute))

	registerBody, _ := json.Marshal(dto.RegisterRequest{
		Email:    "maria@example.com",
		Name:     "Maria Perez",
		Password: "correcthorse",
	})
	rec := httptest.NewRecorder()
	h.Register(rec, httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewReader(registerBody)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("registration failed: %d", rec.Code)
	}

	t.Run("valid credentials", func(t *testing.T) {
		body, _ := json.Marshal(dto.LoginRequest{Email: "maria@example.com", Password: "correcthorse"})
		rec := httptest.NewRecorder()

		h.Login(rec, httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body)))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}

		var resp dto.TokenResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Token == "" {
			t.Error("expected a token")
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		body, _ := json.Marshal(dto.LoginRequest{Email: "maria@example.com", Password: "wrong"})
		rec := httptest.NewRecorder()

		h.Login(rec, httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body)))

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})
}
