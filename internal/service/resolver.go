package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"converterservice/internal/provider"
)

// ReferenceCurrency is the domestic currency of the historical rate provider.
// All NBP mid-rates are quoted against it, and cross-rates triangulate
// through it.
const ReferenceCurrency = "PLN"

// RatePoint is one element of a historical series.
type RatePoint struct {
	Date time.Time
	Rate float64
}

// Resolver resolves official historical rates, stepping backward over
// non-trading days up to a bounded window.
type Resolver struct {
	source          provider.HistoricalRateSource
	maxFallbackDays int
	log             *zap.SugaredLogger
}

// NewResolver creates a Resolver over the given historical source.
func NewResolver(source provider.HistoricalRateSource, maxFallbackDays int, logger *zap.SugaredLogger) *Resolver {
	return &Resolver{
		source:          source,
		maxFallbackDays: maxFallbackDays,
		log:             logger,
	}
}

// Resolve returns the mid-rate of currency against the reference currency on
// the given date. When the provider has no rate for that date (weekend or
// holiday) it walks backward one calendar day at a time, examining at most
// maxFallbackDays dates starting from the original one.
//
// The reference currency itself always resolves to exactly 1.0 with no
// provider call. Provider failures other than "no rate published" abort the
// walk immediately.
func (r *Resolver) Resolve(ctx context.Context, currency string, date time.Time) (float64, error) {
	if strings.ToUpper(currency) == ReferenceCurrency {
		return 1.0, nil
	}

	current := dateOnly(date)
	for attempt := 0; attempt < r.maxFallbackDays; attempt++ {
		rate, err := r.source.MidRate(ctx, currency, current)
		if err == nil {
			if attempt > 0 {
				r.log.Debugw("Resolved on fallback date",
					"currency", currency,
					"requested", date.Format(provider.DateFormat),
					"resolved", current.Format(provider.DateFormat),
				)
			}
			return rate, nil
		}
		if !errors.Is(err, provider.ErrNoRateForDate) {
			return 0, fmt.Errorf("resolve %s on %s: %w", currency, current.Format(provider.DateFormat), err)
		}
		current = current.AddDate(0, 0, -1)
	}

	return 0, fmt.Errorf("%w: %s within %d days before %s",
		ErrNoHistoricalData, currency, r.maxFallbackDays, date.Format(provider.DateFormat))
}

// ResolvePair returns units of `to` per one unit of `from` on the given date,
// triangulated through the reference currency. Either leg failing fails the
// pair. No rounding is applied at this layer.
func (r *Resolver) ResolvePair(ctx context.Context, from, to string, date time.Time) (float64, error) {
	rateFrom, err := r.Resolve(ctx, from, date)
	if err != nil {
		return 0, err
	}
	rateTo, err := r.Resolve(ctx, to, date)
	if err != nil {
		return 0, err
	}

	switch {
	case strings.ToUpper(from) == ReferenceCurrency:
		return 1 / rateTo, nil
	case strings.ToUpper(to) == ReferenceCurrency:
		return rateFrom, nil
	default:
		return rateFrom / rateTo, nil
	}
}

// BuildSeries resolves the pair for every calendar day from start to end
// inclusive, in increasing order. Days that do not resolve are omitted; the
// result may be empty. Entries are never reordered.
func (r *Resolver) BuildSeries(ctx context.Context, from, to string, start, end time.Time) ([]RatePoint, error) {
	var series []RatePoint

	for d := dateOnly(start); !d.After(dateOnly(end)); d = d.AddDate(0, 0, 1) {
		if err := ctx.Err(); err != nil {
			return series, err
		}
		rate, err := r.ResolvePair(ctx, from, to, d)
		if err != nil {
			r.log.Debugw("Skipping unresolved day",
				"pair", from+"/"+to,
				"date", d.Format(provider.DateFormat),
				"error", err,
			)
			continue
		}
		series = append(series, RatePoint{Date: d, Rate: rate})
	}

	return series, nil
}
