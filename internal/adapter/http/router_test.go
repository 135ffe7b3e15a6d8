package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/cambiod/internal/adapter/http/handler"
	apimiddleware "github.com/iho/cambiod/internal/adapter/http/middleware"
	"github.com/iho/cambiod/internal/domain"
	"github.com/iho/cambiod/internal/infrastructure/auth"
	"github.com/iho/cambiod/internal/usecase"
	"github.com/iho/cambiod/internal/usecase/mocks"
)

func TestNewRouter_HealthEndpointAvailable(t *testing.T) {
	router := NewRouter(newRouterConfig())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected /health to return 200, got %d", rec.Code)
	}
}

func TestNewRouter_RateBoardIsPublic(t *testing.T) {
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.AuthEnabled = true
		cfg.JWTManager = auth.NewJWTManager("router-test-secret", time.Minute)
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/rates", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected /api/v1/rates to be reachable without a token, got %d", rec.Code)
	}
}

func TestNewRouter_AuthRequiredWhenEnabled(t *testing.T) {
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.AuthEnabled = true
		cfg.JWTManager = auth.NewJWTManager("router-test-secret", time.Minute)
	}))

	body := `{"account_id":"acc-1","currency":"USD","amount":"100"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/exchange/buy", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a token, got %d", rec.Code)
	}
}

func TestNewRouter_AdminRouteRejectsNonAdmin(t *testing.T) {
	jwtManager := auth.NewJWTManager("router-test-secret", time.Minute)
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.AuthEnabled = true
		cfg.JWTManager = jwtManager
	}))

	token, err := jwtManager.Generate(newClientUser("user-1", "client-1"))
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	body := `{"currency":"USD","rate":"37.10","source":"manual"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/rates", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for a client token on an admin route, got %d", rec.Code)
	}
}

func TestNewRouter_RateLimiterBlocksExcessRequests(t *testing.T) {
	rl := apimiddleware.NewRateLimiter(1, 1)
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.RateLimiter = rl
	}))

	req1 := httptest.NewRequest(http.MethodGet, "/health", nil)
	req1.RemoteAddr = "1.2.3.4:1234"
	rec1 := httptest.NewRecorder()
	router.ServeHTTP(rec1, req1)
	if rec1.Code != http.StatusOK {
		t.Fatalf("expected first request to succeed, got %d", rec1.Code)
	}

	req2 := httptest.NewRequest(http.MethodGet, "/health", nil)
	req2.RemoteAddr = "1.2.3.4:1234"
	rec2 := httptest.NewRecorder()
	router.ServeHTTP(rec2, req2)
	if rec2.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second request to be throttled, got %d", rec2.Code)
	}
}

func TestNewRouter_TransactionReadsRequireOwnership(t *testing.T) {
	accountRepo := mocks.NewMockAccountRepository()
	txnRepo := mocks.NewMockTransactionRepository()
	accountUC := usecase.NewAccountUseCase(accountRepo, mocks.NewMockClientRepository(), mocks.NewMockIDGenerator())
	txnUC := usecase.NewTransactionUseCase(txnRepo)

	accountRepo.Seed(&domain.Account{
		ID:       "acc-1",
		ClientID: "client-1",
		Number:   "01029999888877776666",
		Currency: domain.CurrencyVES,
		Balance:  decimal.RequireFromString("100.00"),
		Status:   domain.AccountStatusActive,
	})

	receipt := "COMP-20260830-120000-a1b2c3d4"
	if err := txnRepo.Create(context.Background(), nil, &domain.Transaction{
		ID:             "txn-1",
		AccountID:      "acc-1",
		Kind:           domain.OperationBuy,
		SourceCurrency: domain.CurrencyVES,
		DestCurrency:   domain.CurrencyUSD,
		SourceAmount:   decimal.RequireFromString("36.79"),
		DestAmount:     decimal.RequireFromString("1.00"),
		Rate:           decimal.RequireFromString("36.79"),
		Receipt:        receipt,
		Status:         domain.TransactionCompleted,
		CreatedAt:      time.Now().UTC(),
	}); err != nil {
		t.Fatalf("seed transaction: %v", err)
	}

	jwtManager := auth.NewJWTManager("router-test-secret", time.Minute)
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.AuthEnabled = true
		cfg.JWTManager = jwtManager
		cfg.AccountHandler = handler.NewAccountHandler(accountUC)
		cfg.TransactionHandler = handler.NewTransactionHandler(txnUC, accountUC)
	}))

	token, err := jwtManager.Generate(newClientUser("user-2", "client-2"))
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	paths := []string{
		"/api/v1/accounts/acc-1/transactions",
		"/api/v1/transactions/" + receipt,
	}
	for _, path := range paths {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403 for a foreign client on %s, got %d", path, rec.Code)
		}
	}
}

func TestNewRouter_RegistersKeyRoutes(t *testing.T) {
	router := NewRouter(newRouterConfig())

	chiRoutes, ok := router.(chi.Router)
	if !ok {
		t.Fatal("router does not implement chi.Routes")
	}

	seen := map[string]bool{}
	if err := chi.Walk(chiRoutes, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		seen[method+" "+route] = true
		return nil
	}); err != nil {
		t.Fatalf("walk failed: %v", err)
	}

	expected := []string{
		"GET /health",
		"GET /ready",
		"POST /api/v1/auth/register",
		"POST /api/v1/auth/login",
		"GET /api/v1/rates",
		"GET /api/v1/rates/active",
		"POST /api/v1/rates",
		"POST /api/v1/exchange/buy",
		"POST /api/v1/exchange/sell",
		"GET /api/v1/accounts/{id}",
		"GET /api/v1/accounts/{id}/transactions",
		"POST /api/v1/clients",
		"GET /api/v1/clients/{id}/accounts",
		"GET /api/v1/transactions/{receipt}",
		"POST /api/v1/accounts/{id}/deactivate",
	}

	for _, route := range expected {
		if !seen[route] {
			t.Fatalf("expected route %s to be registered", route)
		}
	}
}

func newClientUser(id, clientID string) *domain.User {
	return &domain.User{
		ID:       id,
		Email:    id + "@example.com",
		Role:     domain.RoleClient,
		ClientID: clientID,
		Active:   true,
	}
}

func newRouterConfig(opts ...func(*RouterConfig)) RouterConfig {
	idGen := mocks.NewMockIDGenerator()
	accountRepo := mocks.NewMockAccountRepository()
	clientRepo := mocks.NewMockClientRepository()
	txnRepo := mocks.NewMockTransactionRepository()
	rateRepo := mocks.NewMockRateRepository()
	userRepo := mocks.NewMockUserRepository()

	rateUC := usecase.NewRateUseCase(rateRepo, nil, idGen, time.Minute)
	accountUC := usecase.NewAccountUseCase(accountRepo, clientRepo, idGen)
	userUC := usecase.NewUserUseCase(userRepo, idGen)
	txnUC := usecase.NewTransactionUseCase(txnRepo)
	receipts := usecase.NewReceiptGenerator(txnRepo)
	exchangeUC := usecase.NewExchangeUseCase(
		mocks.NewMockTransactionManager(),
		accountRepo,
		txnRepo,
		rateUC,
		accountUC,
		receipts,
		idGen,
		nil,
		usecase.ExchangeConfig{
			BuyCommission:  decimal.RequireFromString("0.005"),
			SellCommission: decimal.RequireFromString("0.005"),
		},
	)

	cfg := RouterConfig{
		AuthHandler:        handler.NewAuthHandler(userUC, accountUC, nil),
		AccountHandler:     handler.NewAccountHandler(accountUC),
		ExchangeHandler:    handler.NewExchangeHandler(exchangeUC, nil),
		RateHandler:        handler.NewRateHandler(rateUC),
		TransactionHandler: handler.NewTransactionHandler(txnUC, accountUC),
		HealthHandler:      handler.NewHealthHandler(nil, nil),
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}
