// Package redis caches computed trading rates so the rate board endpoint does
// not hit PostgreSQL on every request.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iho/cambiod/internal/domain"
)

const ratesKey = "rates:board"

// RatesCache implements usecase.RatesCache using Redis.
type RatesCache struct {
	client *redis.Client
}

// NewRatesCache creates a new RatesCache.
func NewRatesCache(client *redis.Client) *RatesCache {
	return &RatesCache{client: client}
}

// Get retrieves the cached trading rates. A cache miss returns nil rates and
// no error.
func (c *RatesCache) Get(ctx context.Context) ([]domain.TradingRate, error) {
	data, err := c.client.Get(ctx, ratesKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var rates []domain.TradingRate
	if err := json.Unmarshal(data, &rates); err != nil {
		return nil, err
	}

	return rates, nil
}

// Set stores the trading rates with a TTL.
func (c *RatesCache) Set(ctx context.Context, rates []domain.TradingRate, ttl time.Duration) error {
	data, err := json.Marshal(rates)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, ratesKey, data, ttl).Err()
}

// Invalidate drops the cached rates.
func (c *RatesCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, ratesKey).Err()
}
