package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/cambiod/internal/domain"
)

// RateUseCase supplies base and trading rates for pricing operations.
type RateUseCase struct {
	rateRepo RateRepository
	cache    RatesCache
	idGen    IDGenerator
	cacheTTL time.Duration
}

// NewRateUseCase creates a new RateUseCase. cache may be nil, in which case
// trading rates are recomputed from the repository on every call.
func NewRateUseCase(rateRepo RateRepository, cache RatesCache, idGen IDGenerator, cacheTTL time.Duration) *RateUseCase {
	return &RateUseCase{
		rateRepo: rateRepo,
		cache:    cache,
		idGen:    idGen,
		cacheTTL: cacheTTL,
	}
}

// GetActiveRate resolves the base buy rate for a currency. Resolution order:
// active snapshot, then most recent snapshot, then the hardcoded default.
// It never fails for a supported currency: availability is deliberately
// favored over strict correctness so an operation is never blocked by
// missing rate data.
func (uc *RateUseCase) GetActiveRate(ctx context.Context, currency domain.Currency) (*domain.RateSnapshot, error) {
	if !currency.IsForeign() {
		return nil, domain.ErrUnsupportedCurrency
	}

	snapshot, err := uc.rateRepo.GetActive(ctx, currency)
	if err == nil {
		return snapshot, nil
	}

	snapshot, err = uc.rateRepo.GetLatest(ctx, currency)
	if err == nil {
		return snapshot, nil
	}

	now := time.Now().UTC()

	return &domain.RateSnapshot{
		Currency:    currency,
		Rate:        domain.DefaultRates[currency],
		Source:      domain.RateSourceDefault,
		Active:      false,
		EffectiveAt: now,
		CreatedAt:   now,
	}, nil
}

// GetTradingRates returns the buy/sell pair for every foreign currency,
// derived from the base rates with the global spread. Results are served from
// the cache when fresh.
func (uc *RateUseCase) GetTradingRates(ctx context.Context) ([]domain.TradingRate, error) {
	if uc.cache != nil {
		if rates, err := uc.cache.Get(ctx); err == nil && len(rates) > 0 {
			return rates, nil
		}
	}

	rates := make([]domain.TradingRate, 0, len(domain.ForeignCurrencies))

	for _, currency := range domain.ForeignCurrencies {
		snapshot, err := uc.GetActiveRate(ctx, currency)
		if err != nil {
			return nil, err
		}

		rates = append(rates, domain.TradingRateFromBase(currency, snapshot.Rate, snapshot.Source))
	}

	if uc.cache != nil {
		// Cache write failures are not fatal: the rates are already computed.
		_ = uc.cache.Set(ctx, rates, uc.cacheTTL)
	}

	return rates, nil
}

// TradingRateFor returns the buy/sell pair for a single currency.
func (uc *RateUseCase) TradingRateFor(ctx context.Context, currency domain.Currency) (domain.TradingRate, error) {
	snapshot, err := uc.GetActiveRate(ctx, currency)
	if err != nil {
		return domain.TradingRate{}, err
	}

	return domain.TradingRateFromBase(currency, snapshot.Rate, snapshot.Source), nil
}

// PublishRateInput represents input for publishing a rate snapshot.
type PublishRateInput struct {
	Currency domain.Currency
	Rate     decimal.Decimal
	Source   string
}

// PublishRate supersedes the active snapshot for a currency. The deactivation
// of the previous snapshot and the insert of the new one happen in one
// database transaction inside the repository.
func (uc *RateUseCase) PublishRate(ctx context.Context, input PublishRateInput) (*domain.RateSnapshot, error) {
	if !input.Currency.IsForeign() {
		return nil, domain.ErrUnsupportedCurrency
	}

	if input.Rate.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidAmount
	}

	source := input.Source
	if source == "" {
		source = domain.RateSourceManual
	}

	now := time.Now().UTC()

	snapshot := &domain.RateSnapshot{
		ID:          uc.idGen.Generate(),
		Currency:    input.Currency,
		Rate:        input.Rate,
		Source:      source,
		Active:      true,
		EffectiveAt: now,
		CreatedAt:   now,
	}

	if err := uc.rateRepo.Publish(ctx, snapshot); err != nil {
		return nil, err
	}

	if uc.cache != nil {
		_ = uc.cache.Invalidate(ctx)
	}

	return snapshot, nil
}
