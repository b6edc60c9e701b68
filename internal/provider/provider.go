package provider

import (
	"context"
	"errors"
	"time"
)

// ErrNoRateForPair indicates the source has no rate for the requested pair.
var ErrNoRateForPair = errors.New("no rate for currency pair")

// ErrNoRateForDate indicates the historical source published no rate for the
// requested date (weekend or holiday).
var ErrNoRateForDate = errors.New("no rate published for date")

// LiveRateSource supplies current conversion rates and the set of quoted currencies.
type LiveRateSource interface {
	// ListSymbols returns the available currency codes in source order.
	ListSymbols(ctx context.Context) ([]string, error)
	// GetRate returns units of `to` per one unit of `from`.
	GetRate(ctx context.Context, from, to string) (float64, error)
}

// HistoricalRateSource supplies the official mid-rate of a currency against
// the source's reference currency for a single calendar date.
type HistoricalRateSource interface {
	MidRate(ctx context.Context, currency string, date time.Time) (float64, error)
}

// DateFormat is the calendar date layout used by the historical provider.
const DateFormat = "2006-01-02"
