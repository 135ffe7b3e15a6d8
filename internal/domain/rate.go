package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Rate source labels.
const (
	RateSourceBCV       = "BCV"
	RateSourceManual    = "Manual"
	RateSourceSimulated = "Simulated"
	RateSourceDefault   = "default"
)

// Spread is the global buy/sell spread applied on top of the base rate.
// buy = base * (1 + Spread), sell = base * (1 - Spread).
var Spread = decimal.RequireFromString("0.008")

// DefaultRates are the hardcoded base rates used when no snapshot exists for a
// currency. The rate provider degrades to these instead of failing: an
// operation is never blocked purely because rate data is missing.
var DefaultRates = map[Currency]decimal.Decimal{
	CurrencyUSD:  decimal.RequireFromString("36.50"),
	CurrencyEUR:  decimal.RequireFromString("40.00"),
	CurrencyUSDT: decimal.RequireFromString("36.50"),
}

// RateSnapshot is a point-in-time base rate for one foreign currency against
// VES. Snapshots are never updated in place, only superseded; at most one per
// currency carries Active=true.
type RateSnapshot struct {
	ID          string
	Currency    Currency
	Rate        decimal.Decimal
	Source      string
	Active      bool
	EffectiveAt time.Time
	CreatedAt   time.Time
}

// TradingRate carries the buy and sell prices derived from a base rate.
type TradingRate struct {
	Currency Currency        `json:"currency"`
	Buy      decimal.Decimal `json:"buy"`
	Sell     decimal.Decimal `json:"sell"`
	Source   string          `json:"source"`
}

// TradingRateFromBase derives the buy/sell pair from a base rate.
// Buy is what the client pays per unit of foreign currency, sell what the
// client receives.
func TradingRateFromBase(currency Currency, base decimal.Decimal, source string) TradingRate {
	one := decimal.NewFromInt(1)

	return TradingRate{
		Currency: currency,
		Buy:      RoundMoney(base.Mul(one.Add(Spread))),
		Sell:     RoundMoney(base.Mul(one.Sub(Spread))),
		Source:   source,
	}
}

// RoundMoney rounds a monetary amount to 2 decimals, half up.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
