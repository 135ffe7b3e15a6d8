// Package rates runs the background worker that keeps rate snapshots fresh.
// Without an upstream feed the worker simulates small drifts around the
// current base rate, the way a reference quote moves between publications.
package rates

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/cambiod/internal/domain"
	"github.com/iho/cambiod/internal/usecase"
)

// Publisher publishes rate snapshots and resolves the current base rate.
type Publisher interface {
	PublishRate(ctx context.Context, input usecase.PublishRateInput) (*domain.RateSnapshot, error)
	GetActiveRate(ctx context.Context, currency domain.Currency) (*domain.RateSnapshot, error)
}

// Fetcher produces the next set of base rates to publish.
type Fetcher interface {
	Fetch(ctx context.Context) ([]usecase.PublishRateInput, error)
}

// Worker periodically fetches and publishes rates.
type Worker struct {
	fetcher   Fetcher
	publisher Publisher
	logger    *slog.Logger
	interval  time.Duration
}

// Config for Worker.
type Config struct {
	Fetcher   Fetcher
	Publisher Publisher
	Logger    *slog.Logger
	Interval  time.Duration
}

// NewWorker creates a new rate refresh worker.
func NewWorker(cfg Config) *Worker {
	if cfg.Interval == 0 {
		cfg.Interval = 15 * time.Minute
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Worker{
		fetcher:   cfg.Fetcher,
		publisher: cfg.Publisher,
		logger:    cfg.Logger,
		interval:  cfg.Interval,
	}
}

// Start begins the refresh loop. It runs until the context is cancelled.
func (w *Worker) Start(ctx context.Context) error {
	w.logger.Info("rate refresh worker started",
		slog.Duration("interval", w.interval))

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	// Refresh immediately on start
	if err := w.refresh(ctx); err != nil {
		w.logger.Error("error refreshing rates on start", slog.String("error", err.Error()))
	}

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("rate refresh worker shutting down")
			return ctx.Err()
		case <-ticker.C:
			if err := w.refresh(ctx); err != nil {
				w.logger.Error("error refreshing rates", slog.String("error", err.Error()))
			}
		}
	}
}

func (w *Worker) refresh(ctx context.Context) error {
	inputs, err := w.fetcher.Fetch(ctx)
	if err != nil {
		return err
	}

	for _, input := range inputs {
		snapshot, err := w.publisher.PublishRate(ctx, input)
		if err != nil {
			w.logger.Error("failed to publish rate",
				slog.String("currency", string(input.Currency)),
				slog.String("error", err.Error()))
			// Keep publishing the remaining currencies even if one fails
			continue
		}

		w.logger.Info("rate published",
			slog.String("currency", string(snapshot.Currency)),
			slog.String("rate", snapshot.Rate.String()),
			slog.String("source", snapshot.Source))
	}

	return nil
}

// SimulatedFetcher derives the next rate from the current base rate by
// applying a bounded random drift, expressed in basis points.
type SimulatedFetcher struct {
	rates        Publisher
	maxDriftBps  int64
	driftPercent func() decimal.Decimal
}

// NewSimulatedFetcher creates a fetcher that drifts rates by at most
// maxDriftBps basis points per refresh.
func NewSimulatedFetcher(rates Publisher, maxDriftBps int64) *SimulatedFetcher {
	if maxDriftBps <= 0 {
		maxDriftBps = 50
	}

	f := &SimulatedFetcher{
		rates:       rates,
		maxDriftBps: maxDriftBps,
	}
	f.driftPercent = f.randomDrift

	return f
}

func (f *SimulatedFetcher) randomDrift() decimal.Decimal {
	bps := rand.Int64N(2*f.maxDriftBps+1) - f.maxDriftBps

	return decimal.NewFromInt(bps).Shift(-4)
}

// Fetch returns a drifted quote for every supported foreign currency.
func (f *SimulatedFetcher) Fetch(ctx context.Context) ([]usecase.PublishRateInput, error) {
	inputs := make([]usecase.PublishRateInput, 0, len(domain.ForeignCurrencies))

	for _, currency := range domain.ForeignCurrencies {
		snapshot, err := f.rates.GetActiveRate(ctx, currency)
		if err != nil {
			return nil, err
		}

		drift := f.driftPercent()
		next := snapshot.Rate.Mul(decimal.NewFromInt(1).Add(drift)).Round(4)

		inputs = append(inputs, usecase.PublishRateInput{
			Currency: currency,
			Rate:     next,
			Source:   domain.RateSourceSimulated,
		})
	}

	return inputs, nil
}
