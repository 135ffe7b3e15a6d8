package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/cambiod/internal/domain"
	"github.com/iho/cambiod/internal/usecase"
	"github.com/iho/cambiod/internal/usecase/mocks"
)

func TestRateUseCase_GetActiveRate_FallbackPriority(t *testing.T) {
	t.Run("active snapshot wins", func(t *testing.T) {
		rateRepo := mocks.NewMockRateRepository()
		uc := usecase.NewRateUseCase(rateRepo, nil, mocks.NewMockIDGenerator(), 0)

		_ = rateRepo.Publish(context.Background(), &domain.RateSnapshot{
			ID: "r1", Currency: domain.CurrencyUSD, Rate: decimal.RequireFromString("35.00"),
			Source: domain.RateSourceBCV, Active: true, EffectiveAt: time.Now().Add(-time.Hour),
		})
		_ = rateRepo.Publish(context.Background(), &domain.RateSnapshot{
			ID: "r2", Currency: domain.CurrencyUSD, Rate: decimal.RequireFromString("37.00"),
			Source: domain.RateSourceManual, Active: true, EffectiveAt: time.Now(),
		})

		snapshot, err := uc.GetActiveRate(context.Background(), domain.CurrencyUSD)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !snapshot.Rate.Equal(decimal.RequireFromString("37.00")) {
			t.Errorf("expected the active snapshot 37.00, got %s", snapshot.Rate)
		}
	})

	t.Run("falls back to most recent snapshot", func(t *testing.T) {
		rateRepo := mocks.NewMockRateRepository()
		uc := usecase.NewRateUseCase(rateRepo, nil, mocks.NewMockIDGenerator(), 0)

		rateRepo.GetActiveFunc = func(ctx context.Context, currency domain.Currency) (*domain.RateSnapshot, error) {
			return nil, domain.ErrRateNotFound
		}
		rateRepo.GetLatestFunc = func(ctx context.Context, currency domain.Currency) (*domain.RateSnapshot, error) {
			return &domain.RateSnapshot{
				Currency: currency, Rate: decimal.RequireFromString("38.25"), Source: domain.RateSourceSimulated,
			}, nil
		}

		snapshot, err := uc.GetActiveRate(context.Background(), domain.CurrencyUSD)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !snapshot.Rate.Equal(decimal.RequireFromString("38.25")) {
			t.Errorf("expected latest snapshot 38.25, got %s", snapshot.Rate)
		}
	})

	t.Run("degrades to hardcoded default, never errors", func(t *testing.T) {
		rateRepo := mocks.NewMockRateRepository()
		uc := usecase.NewRateUseCase(rateRepo, nil, mocks.NewMockIDGenerator(), 0)

		for _, tt := range []struct {
			currency domain.Currency
			want     string
		}{
			{domain.CurrencyUSD, "36.50"},
			{domain.CurrencyEUR, "40.00"},
			{domain.CurrencyUSDT, "36.50"},
		} {
			snapshot, err := uc.GetActiveRate(context.Background(), tt.currency)
			if err != nil {
				t.Fatalf("%s: rate provider must never fail for a supported currency: %v", tt.currency, err)
			}

			if !snapshot.Rate.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("%s: expected default %s, got %s", tt.currency, tt.want, snapshot.Rate)
			}

			if snapshot.Source != domain.RateSourceDefault {
				t.Errorf("%s: expected source %q, got %q", tt.currency, domain.RateSourceDefault, snapshot.Source)
			}
		}
	})

	t.Run("VES has no rate", func(t *testing.T) {
		uc := usecase.NewRateUseCase(mocks.NewMockRateRepository(), nil, mocks.NewMockIDGenerator(), 0)

		if _, err := uc.GetActiveRate(context.Background(), domain.CurrencyVES); err != domain.ErrUnsupportedCurrency {
			t.Errorf("expected ErrUnsupportedCurrency, got %v", err)
		}
	})
}

func TestRateUseCase_GetTradingRates(t *testing.T) {
	rateRepo := mocks.NewMockRateRepository()
	cache := mocks.NewMockRatesCache()
	uc := usecase.NewRateUseCase(rateRepo, cache, mocks.NewMockIDGenerator(), time.Minute)

	seedRate(rateRepo, domain.CurrencyUSD, "36.50")

	rates, err := uc.GetTradingRates(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(rates) != len(domain.ForeignCurrencies) {
		t.Fatalf("expected %d rates, got %d", len(domain.ForeignCurrencies), len(rates))
	}

	for _, r := range rates {
		if !r.Buy.GreaterThan(r.Sell) {
			t.Errorf("%s: buy %s must exceed sell %s", r.Currency, r.Buy, r.Sell)
		}
	}

	// Second call must be served from the cache.
	rateRepo.GetActiveFunc = func(ctx context.Context, currency domain.Currency) (*domain.RateSnapshot, error) {
		t.Error("repository must not be hit when the cache is warm")
		return nil, domain.ErrRateNotFound
	}

	if _, err := uc.GetTradingRates(context.Background()); err != nil {
		t.Fatalf("unexpected error on cached call: %v", err)
	}
}

func TestRateUseCase_PublishRate(t *testing.T) {
	rateRepo := mocks.NewMockRateRepository()
	cache := mocks.NewMockRatesCache()
	uc := usecase.NewRateUseCase(rateRepo, cache, mocks.NewMockIDGenerator(), time.Minute)

	_ = cache.Set(context.Background(), []domain.TradingRate{{Currency: domain.CurrencyUSD}}, time.Minute)

	snapshot, err := uc.PublishRate(context.Background(), usecase.PublishRateInput{
		Currency: domain.CurrencyUSD,
		Rate:     decimal.RequireFromString("37.10"),
		Source:   domain.RateSourceBCV,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !snapshot.Active {
		t.Error("published snapshot must be active")
	}

	active, err := rateRepo.GetActive(context.Background(), domain.CurrencyUSD)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !active.Rate.Equal(decimal.RequireFromString("37.10")) {
		t.Errorf("expected active rate 37.10, got %s", active.Rate)
	}

	// Publishing again supersedes the previous snapshot.
	if _, err := uc.PublishRate(context.Background(), usecase.PublishRateInput{
		Currency: domain.CurrencyUSD,
		Rate:     decimal.RequireFromString("37.50"),
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	active, _ = rateRepo.GetActive(context.Background(), domain.CurrencyUSD)
	if !active.Rate.Equal(decimal.RequireFromString("37.50")) {
		t.Errorf("expected superseded active rate 37.50, got %s", active.Rate)
	}

	// Cache must have been invalidated.
	cached, _ := cache.Get(context.Background())
	if len(cached) != 0 {
		t.Error("publishing a rate must invalidate the trading-rates cache")
	}

	t.Run("rejects VES and non-positive rates", func(t *testing.T) {
		if _, err := uc.PublishRate(context.Background(), usecase.PublishRateInput{
			Currency: domain.CurrencyVES, Rate: decimal.NewFromInt(1),
		}); !errors.Is(err, domain.ErrUnsupportedCurrency) {
			t.Errorf("expected ErrUnsupportedCurrency, got %v", err)
		}

		if _, err := uc.PublishRate(context.Background(), usecase.PublishRateInput{
			Currency: domain.CurrencyUSD, Rate: decimal.Zero,
		}); !errors.Is(err, domain.ErrInvalidAmount) {
			t.Errorf("expected ErrInvalidAmount, got %v", err)
		}
	})
}
