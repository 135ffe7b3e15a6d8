package domain

import "strings"

// Currency is an ISO-style currency code handled by the exchange.
type Currency string

const (
	// CurrencyVES is the Venezuelan bolivar, the settlement leg of every operation.
	CurrencyVES  Currency = "VES"
	CurrencyUSD  Currency = "USD"
	CurrencyEUR  Currency = "EUR"
	CurrencyUSDT Currency = "USDT"
)

var supportedCurrencies = map[Currency]bool{
	CurrencyVES:  true,
	CurrencyUSD:  true,
	CurrencyEUR:  true,
	CurrencyUSDT: true,
}

// ForeignCurrencies lists the currencies a client can buy or sell against VES.
var ForeignCurrencies = []Currency{CurrencyUSD, CurrencyEUR, CurrencyUSDT}

// accountNumberPrefixes maps each currency to the numeric prefix of its account numbers.
var accountNumberPrefixes = map[Currency]string{
	CurrencyVES:  "0102",
	CurrencyUSD:  "0201",
	CurrencyEUR:  "0301",
	CurrencyUSDT: "0401",
}

// ParseCurrency normalizes and validates a currency code.
func ParseCurrency(code string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(code)))
	if !supportedCurrencies[c] {
		return "", ErrUnsupportedCurrency
	}

	return c, nil
}

// IsSupported reports whether the currency is handled by the exchange.
func (c Currency) IsSupported() bool {
	return supportedCurrencies[c]
}

// IsForeign reports whether the currency is a non-VES leg.
func (c Currency) IsForeign() bool {
	return supportedCurrencies[c] && c != CurrencyVES
}

// NumberPrefix returns the account-number prefix for the currency.
func (c Currency) NumberPrefix() string {
	return accountNumberPrefixes[c]
}
