package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/cambiod/internal/domain"
	"github.com/iho/cambiod/internal/usecase"
	"github.com/iho/cambiod/internal/usecase/mocks"
)

func newExchangeFixture() (*usecase.ExchangeUseCase, *mocks.MockAccountRepository, *mocks.MockTransactionRepository, *mocks.MockRateRepository) {
	accRepo := mocks.NewMockAccountRepository()
	txnRepo := mocks.NewMockTransactionRepository()
	rateRepo := mocks.NewMockRateRepository()
	clientRepo := mocks.NewMockClientRepository()
	txMgr := mocks.NewMockTransactionManager()
	idGen := mocks.NewMockIDGenerator()

	rateUC := usecase.NewRateUseCase(rateRepo, nil, idGen, 0)
	accountUC := usecase.NewAccountUseCase(accRepo, clientRepo, idGen)
	receipts := usecase.NewReceiptGenerator(txnRepo)

	commission := decimal.RequireFromString("0.005")
	exchangeUC := usecase.NewExchangeUseCase(
		txMgr, accRepo, txnRepo, rateUC, accountUC, receipts, idGen, nil,
		usecase.ExchangeConfig{BuyCommission: commission, SellCommission: commission},
	)

	return exchangeUC, accRepo, txnRepo, rateRepo
}

func seedRate(rateRepo *mocks.MockRateRepository, currency domain.Currency, base string) {
	_ = rateRepo.Publish(context.Background(), &domain.RateSnapshot{
		ID:          "rate-" + string(currency),
		Currency:    currency,
		Rate:        decimal.RequireFromString(base),
		Source:      domain.RateSourceBCV,
		Active:      true,
		EffectiveAt: time.Now().UTC(),
	})
}

func adminActor() *domain.User {
	return &domain.User{ID: "user-admin", Role: domain.RoleAdmin, Active: true}
}

func clientActor(clientID string) *domain.User {
	return &domain.User{ID: "user-" + clientID, Role: domain.RoleClient, ClientID: clientID, Active: true}
}

func TestExchangeUseCase_Buy_AutoProvisionsDestination(t *testing.T) {
	exchangeUC, accRepo, txnRepo, rateRepo := newExchangeFixture()
	seedRate(rateRepo, domain.CurrencyUSD, "36.50")

	accRepo.Seed(&domain.Account{
		ID:       "acc-ves",
		ClientID: "client-1",
		Number:   "01021111222233334444",
		Currency: domain.CurrencyVES,
		Balance:  decimal.RequireFromString("10000.00"),
		Status:   domain.AccountStatusActive,
	})

	// Buy 10 USD. Buy rate = 36.50 * 1.008 = 36.79 after rounding.
	result, err := exchangeUC.Buy(context.Background(), usecase.ExchangeInput{
		Actor:           clientActor("client-1"),
		SourceAccountID: "acc-ves",
		Currency:        domain.CurrencyUSD,
		Amount:          decimal.RequireFromString("10.00"),
		AmountIsDest:    true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantSource := decimal.RequireFromString("367.90")    // 10 * 36.79
	wantCommission := decimal.RequireFromString("1.84")  // 367.90 * 0.005 = 1.8395 -> 1.84
	wantDebit := decimal.RequireFromString("369.74")

	if !result.SourceAmount.Equal(wantSource) {
		t.Errorf("expected source amount %s, got %s", wantSource, result.SourceAmount)
	}

	if !result.Commission.Equal(wantCommission) {
		t.Errorf("expected commission %s, got %s", wantCommission, result.Commission)
	}

	if !result.DestAmount.Equal(decimal.RequireFromString("10.00")) {
		t.Errorf("expected dest amount 10.00, got %s", result.DestAmount)
	}

	ves, _ := accRepo.GetByID(context.Background(), "acc-ves")
	if !ves.Balance.Equal(decimal.RequireFromString("10000.00").Sub(wantDebit)) {
		t.Errorf("expected VES balance %s, got %s", decimal.RequireFromString("10000.00").Sub(wantDebit), ves.Balance)
	}

	usd, err := accRepo.GetByClientAndCurrencyForUpdate(context.Background(), nil, "client-1", domain.CurrencyUSD)
	if err != nil {
		t.Fatalf("expected USD account to be auto-created: %v", err)
	}

	if !usd.Balance.Equal(decimal.RequireFromString("10.00")) {
		t.Errorf("expected USD balance 10.00, got %s", usd.Balance)
	}

	txn, err := txnRepo.GetByReceipt(context.Background(), result.Receipt)
	if err != nil {
		t.Fatalf("expected transaction persisted: %v", err)
	}

	if txn.Kind != domain.OperationBuy {
		t.Errorf("expected buy transaction, got %s", txn.Kind)
	}
}

func TestExchangeUseCase_Buy_InsufficientFunds(t *testing.T) {
	exchangeUC, accRepo, txnRepo, rateRepo := newExchangeFixture()
	seedRate(rateRepo, domain.CurrencyUSD, "36.50")

	accRepo.Seed(&domain.Account{
		ID:       "acc-ves",
		ClientID: "client-1",
		Currency: domain.CurrencyVES,
		Balance:  decimal.RequireFromString("100.00"),
		Status:   domain.AccountStatusActive,
	})

	_, err := exchangeUC.Buy(context.Background(), usecase.ExchangeInput{
		Actor:           clientActor("client-1"),
		SourceAccountID: "acc-ves",
		Currency:        domain.CurrencyUSD,
		Amount:          decimal.RequireFromString("10.00"),
		AmountIsDest:    true,
	})
	if err != domain.ErrInsufficientFunds {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}

	// Nothing may have been mutated or created.
	ves, _ := accRepo.GetByID(context.Background(), "acc-ves")
	if !ves.Balance.Equal(decimal.RequireFromString("100.00")) {
		t.Errorf("expected balance unchanged, got %s", ves.Balance)
	}

	if _, err := accRepo.GetByClientAndCurrencyForUpdate(context.Background(), nil, "client-1", domain.CurrencyUSD); err != domain.ErrAccountNotFound {
		t.Error("no USD account may be created on a failed buy")
	}

	if len(txnRepo.All()) != 0 {
		t.Error("no transaction may be recorded on a failed buy")
	}
}

func TestExchangeUseCase_Sell_ExactBalanceToZero(t *testing.T) {
	exchangeUC, accRepo, _, rateRepo := newExchangeFixture()
	seedRate(rateRepo, domain.CurrencyUSD, "36.50")

	accRepo.Seed(&domain.Account{
		ID:       "acc-usd",
		ClientID: "client-1",
		Currency: domain.CurrencyUSD,
		Balance:  decimal.RequireFromString("5.00"),
		Status:   domain.AccountStatusActive,
	})
	accRepo.Seed(&domain.Account{
		ID:       "acc-ves",
		ClientID: "client-1",
		Currency: domain.CurrencyVES,
		Balance:  decimal.Zero,
		Status:   domain.AccountStatusActive,
	})

	// Sell rate = 36.50 * 0.992 = 36.208 -> 36.21.
	result, err := exchangeUC.Sell(context.Background(), usecase.ExchangeInput{
		Actor:           clientActor("client-1"),
		SourceAccountID: "acc-usd",
		Currency:        domain.CurrencyUSD,
		Amount:          decimal.RequireFromString("5.00"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	usd, _ := accRepo.GetByID(context.Background(), "acc-usd")
	if !usd.Balance.Equal(decimal.Zero) {
		t.Errorf("expected USD balance exactly 0, got %s", usd.Balance)
	}

	// gross = 5 * 36.21 = 181.05, commission = 0.91 (half up), net = 180.14
	gross := decimal.RequireFromString("181.05")
	commission := decimal.RequireFromString("0.91")
	net := gross.Sub(commission)

	if !result.Commission.Equal(commission) {
		t.Errorf("expected commission %s, got %s", commission, result.Commission)
	}

	if !result.DestAmount.Equal(net) {
		t.Errorf("expected net VES credit %s, got %s", net, result.DestAmount)
	}

	ves, _ := accRepo.GetByID(context.Background(), "acc-ves")
	if !ves.Balance.Equal(net) {
		t.Errorf("expected VES balance %s, got %s", net, ves.Balance)
	}
}

func TestExchangeUseCase_SequentialBuys_SecondRejected(t *testing.T) {
	exchangeUC, accRepo, _, rateRepo := newExchangeFixture()
	seedRate(rateRepo, domain.CurrencyUSD, "36.50")

	accRepo.Seed(&domain.Account{
		ID:       "acc-ves",
		ClientID: "client-1",
		Currency: domain.CurrencyVES,
		Balance:  decimal.RequireFromString("400.00"),
		Status:   domain.AccountStatusActive,
	})

	input := usecase.ExchangeInput{
		Actor:           clientActor("client-1"),
		SourceAccountID: "acc-ves",
		Currency:        domain.CurrencyUSD,
		Amount:          decimal.RequireFromString("10.00"),
		AmountIsDest:    true,
	}

	first, err := exchangeUC.Buy(context.Background(), input)
	if err != nil {
		t.Fatalf("first buy must succeed: %v", err)
	}

	afterFirst, _ := accRepo.GetByID(context.Background(), "acc-ves")
	balanceAfterFirst := afterFirst.Balance

	_, err = exchangeUC.Buy(context.Background(), input)
	if err != domain.ErrInsufficientFunds {
		t.Fatalf("second buy must fail with ErrInsufficientFunds, got %v", err)
	}

	final, _ := accRepo.GetByID(context.Background(), "acc-ves")
	if !final.Balance.Equal(balanceAfterFirst) {
		t.Errorf("failed buy must leave balance exactly as the first left it: %s vs %s", final.Balance, balanceAfterFirst)
	}

	if first.Receipt == "" {
		t.Error("first buy must carry a receipt")
	}
}

func TestExchangeUseCase_NoDeduplication(t *testing.T) {
	exchangeUC, accRepo, txnRepo, rateRepo := newExchangeFixture()
	seedRate(rateRepo, domain.CurrencyUSD, "36.50")

	accRepo.Seed(&domain.Account{
		ID:       "acc-ves",
		ClientID: "client-1",
		Currency: domain.CurrencyVES,
		Balance:  decimal.RequireFromString("10000.00"),
		Status:   domain.AccountStatusActive,
	})

	input := usecase.ExchangeInput{
		Actor:           clientActor("client-1"),
		SourceAccountID: "acc-ves",
		Currency:        domain.CurrencyUSD,
		Amount:          decimal.RequireFromString("10.00"),
		AmountIsDest:    true,
	}

	first, err := exchangeUC.Buy(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second, err := exchangeUC.Buy(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Replaying the same logical request is two distinct operations: two
	// transactions, two receipts, double balance effect.
	if first.Receipt == second.Receipt {
		t.Error("replayed request must produce a distinct receipt")
	}

	if len(txnRepo.All()) != 2 {
		t.Errorf("expected 2 transactions, got %d", len(txnRepo.All()))
	}
}

func TestExchangeUseCase_Validation(t *testing.T) {
	exchangeUC, accRepo, _, rateRepo := newExchangeFixture()
	seedRate(rateRepo, domain.CurrencyUSD, "36.50")

	accRepo.Seed(&domain.Account{
		ID:       "acc-ves",
		ClientID: "client-1",
		Currency: domain.CurrencyVES,
		Balance:  decimal.RequireFromString("1000.00"),
		Status:   domain.AccountStatusActive,
	})
	accRepo.Seed(&domain.Account{
		ID:       "acc-ves-blocked",
		ClientID: "client-1",
		Currency: domain.CurrencyVES,
		Balance:  decimal.RequireFromString("1000.00"),
		Status:   domain.AccountStatusBlocked,
	})

	tests := []struct {
		name    string
		input   usecase.ExchangeInput
		wantErr error
	}{
		{
			name: "zero amount",
			input: usecase.ExchangeInput{
				Actor:           clientActor("client-1"),
				SourceAccountID: "acc-ves",
				Currency:        domain.CurrencyUSD,
				Amount:          decimal.Zero,
			},
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name: "unsupported currency",
			input: usecase.ExchangeInput{
				Actor:           clientActor("client-1"),
				SourceAccountID: "acc-ves",
				Currency:        domain.Currency("BTC"),
				Amount:          decimal.NewFromInt(10),
			},
			wantErr: domain.ErrUnsupportedCurrency,
		},
		{
			name: "VES is not a foreign leg",
			input: usecase.ExchangeInput{
				Actor:           clientActor("client-1"),
				SourceAccountID: "acc-ves",
				Currency:        domain.CurrencyVES,
				Amount:          decimal.NewFromInt(10),
			},
			wantErr: domain.ErrUnsupportedCurrency,
		},
		{
			name: "unknown account",
			input: usecase.ExchangeInput{
				Actor:           clientActor("client-1"),
				SourceAccountID: "acc-missing",
				Currency:        domain.CurrencyUSD,
				Amount:          decimal.NewFromInt(10),
			},
			wantErr: domain.ErrAccountNotFound,
		},
		{
			name: "blocked account",
			input: usecase.ExchangeInput{
				Actor:           clientActor("client-1"),
				SourceAccountID: "acc-ves-blocked",
				Currency:        domain.CurrencyUSD,
				Amount:          decimal.NewFromInt(10),
			},
			wantErr: domain.ErrAccountInactive,
		},
		{
			name: "foreign actor rejected",
			input: usecase.ExchangeInput{
				Actor:           clientActor("client-2"),
				SourceAccountID: "acc-ves",
				Currency:        domain.CurrencyUSD,
				Amount:          decimal.NewFromInt(10),
			},
			wantErr: domain.ErrPermissionDenied,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := exchangeUC.Buy(context.Background(), tt.input)
			if err == nil {
				t.Fatal("expected error, got nil")
			}

			if tt.wantErr != nil && err != tt.wantErr {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestExchangeUseCase_OperatorCanActOnAnyAccount(t *testing.T) {
	exchangeUC, accRepo, _, rateRepo := newExchangeFixture()
	seedRate(rateRepo, domain.CurrencyEUR, "40.00")

	accRepo.Seed(&domain.Account{
		ID:       "acc-ves",
		ClientID: "client-1",
		Currency: domain.CurrencyVES,
		Balance:  decimal.RequireFromString("10000.00"),
		Status:   domain.AccountStatusActive,
	})

	operator := &domain.User{ID: "user-op", Role: domain.RoleOperator, Active: true}

	_, err := exchangeUC.Buy(context.Background(), usecase.ExchangeInput{
		Actor:           operator,
		SourceAccountID: "acc-ves",
		Currency:        domain.CurrencyEUR,
		Amount:          decimal.RequireFromString("5.00"),
		AmountIsDest:    true,
	})
	if err != nil {
		t.Fatalf("operator must be able to operate on any account: %v", err)
	}
}

func TestExchangeUseCase_NilActorPermitted(t *testing.T) {
	exchangeUC, accRepo, _, rateRepo := newExchangeFixture()
	seedRate(rateRepo, domain.CurrencyUSD, "36.50")

	accRepo.Seed(&domain.Account{
		ID:       "acc-ves",
		ClientID: "client-1",
		Currency: domain.CurrencyVES,
		Balance:  decimal.RequireFromString("1000.00"),
		Status:   domain.AccountStatusActive,
	})

	// No actor is how requests arrive when authentication is switched off.
	_, err := exchangeUC.Buy(context.Background(), usecase.ExchangeInput{
		SourceAccountID: "acc-ves",
		Currency:        domain.CurrencyUSD,
		Amount:          decimal.RequireFromString("5.00"),
		AmountIsDest:    true,
	})
	if err != nil {
		t.Fatalf("expected nil actor to be permitted: %v", err)
	}
}

func TestExchangeUseCase_Sell_CurrencyMismatch(t *testing.T) {
	exchangeUC, accRepo, _, rateRepo := newExchangeFixture()
	seedRate(rateRepo, domain.CurrencyUSD, "36.50")

	accRepo.Seed(&domain.Account{
		ID:       "acc-eur",
		ClientID: "client-1",
		Currency: domain.CurrencyEUR,
		Balance:  decimal.RequireFromString("100.00"),
		Status:   domain.AccountStatusActive,
	})

	_, err := exchangeUC.Sell(context.Background(), usecase.ExchangeInput{
		Actor:           adminActor(),
		SourceAccountID: "acc-eur",
		Currency:        domain.CurrencyUSD,
		Amount:          decimal.RequireFromString("10.00"),
	})
	if err != domain.ErrCurrencyMismatch {
		t.Fatalf("expected ErrCurrencyMismatch, got %v", err)
	}
}
