// Package service implements the core business logic for currency conversion,
// historical rate resolution and rate exports.
package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"converterservice/internal/provider"
	"converterservice/internal/repository"
)

// ConverterServiceInterface defines the operations available for conversion and export.
type ConverterServiceInterface interface {
	ListSymbols(ctx context.Context) ([]string, error)
	Convert(ctx context.Context, amount float64, from, to string) (*ConversionResult, error)
	HistoricalRate(ctx context.Context, from, to string, date time.Time) (*HistoricalResult, error)
	HistoricalSeries(ctx context.Context, from, to string, start, end time.Time) ([]RatePoint, error)
	RequestExport(ctx context.Context) (exportID string, err error)
	GetExport(ctx context.Context, exportID string) (*ExportResult, error)
	GetExportFile(ctx context.Context, exportID string) ([]byte, error)
	ProcessExport(ctx context.Context, exportID string) error
}

// ConversionResult is the outcome of a live conversion.
type ConversionResult struct {
	Amount          float64
	From            string
	To              string
	Rate            float64
	ConvertedAmount float64
}

// HistoricalResult is the outcome of a single-day historical lookup.
type HistoricalResult struct {
	From string
	To   string
	Date time.Time
	Rate float64
}

// ExportResult represents an export job as seen by callers.
// Fields are populated according to the job's status:
//   - SUCCESS: the artifact is downloadable, ErrorMsg is nil.
//   - FAILED:  ErrorMsg is set.
//   - PENDING/RUNNING: ErrorMsg and UpdatedAt are nil.
type ExportResult struct {
	ID        string
	Status    string
	ErrorMsg  *string
	UpdatedAt *string
}

// ConverterService defines business logic for conversions and exports.
type ConverterService struct {
	live     provider.LiveRateSource
	resolver *Resolver
	repo     repository.ExportRepository
	enqueuer TaskEnqueuer
	log      *zap.SugaredLogger
}

// NewConverterService creates a new ConverterService.
func NewConverterService(live provider.LiveRateSource, resolver *Resolver, repo repository.ExportRepository, enqueuer TaskEnqueuer, logger *zap.SugaredLogger) *ConverterService {
	return &ConverterService{
		live:     live,
		resolver: resolver,
		repo:     repo,
		enqueuer: enqueuer,
		log:      logger,
	}
}

var _ ConverterServiceInterface = (*ConverterService)(nil)

// ListSymbols returns the available currency codes in source order.
// A source failure is not fatal for the caller: the error is returned
// alongside an empty list so the boundary can surface a message while
// downstream selection simply has no choices.
func (s *ConverterService) ListSymbols(ctx context.Context) ([]string, error) {
	symbols, err := s.live.ListSymbols(ctx)
	if err != nil {
		s.log.Errorw("Failed to list symbols", "error", err)
		return nil, err
	}
	return symbols, nil
}

// Convert converts amount from one currency to another at the current rate.
func (s *ConverterService) Convert(ctx context.Context, amount float64, from, to string) (*ConversionResult, error) {
	from, to, err := normalizePair(from, to)
	if err != nil {
		return nil, err
	}
	if err := ValidateAmount(amount); err != nil {
		return nil, err
	}

	rate, err := s.live.GetRate(ctx, from, to)
	if err != nil {
		if errors.Is(err, provider.ErrNoRateForPair) {
			s.log.Warnw("No rate for pair", "from", from, "to", to, "error", err)
			return nil, err
		}
		s.log.Errorw("Live rate fetch failed", "from", from, "to", to, "error", err)
		return nil, err
	}

	return &ConversionResult{
		Amount:          amount,
		From:            from,
		To:              to,
		Rate:            rate,
		ConvertedAmount: amount * rate,
	}, nil
}

// HistoricalRate returns the conversion rate of the pair on the given date,
// resolved from official NBP mid-rates.
func (s *ConverterService) HistoricalRate(ctx context.Context, from, to string, date time.Time) (*HistoricalResult, error) {
	from, to, err := normalizePair(from, to)
	if err != nil {
		return nil, err
	}
	if err := ValidateHistoricalDate(date, time.Now()); err != nil {
		return nil, err
	}

	rate, err := s.resolver.ResolvePair(ctx, from, to, date)
	if err != nil {
		s.log.Warnw("Historical resolution failed",
			"pair", from+"/"+to,
			"date", date.Format(provider.DateFormat),
			"error", err,
		)
		return nil, err
	}

	return &HistoricalResult{
		From: from,
		To:   to,
		Date: dateOnly(date),
		Rate: rate,
	}, nil
}

// HistoricalSeries builds the day-by-day rate series for the pair over the
// given range. End dates in the future are clamped to today.
func (s *ConverterService) HistoricalSeries(ctx context.Context, from, to string, start, end time.Time) ([]RatePoint, error) {
	from, to, err := normalizePair(from, to)
	if err != nil {
		return nil, err
	}
	end, err = ValidateDateRange(start, end, time.Now())
	if err != nil {
		return nil, err
	}

	series, err := s.resolver.BuildSeries(ctx, from, to, start, end)
	if err != nil {
		return nil, err
	}

	s.log.Infow("Built historical series",
		"pair", from+"/"+to,
		"start", start.Format(provider.DateFormat),
		"end", end.Format(provider.DateFormat),
		"points", len(series),
	)
	return series, nil
}
