package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

var _ LiveRateSource = (*CachedLiveSource)(nil)

// CachedLiveSource wraps a LiveRateSource with Redis caching. Rates and the
// symbol list share one TTL; source errors are never cached.
type CachedLiveSource struct {
	source     LiveRateSource
	cache      *redis.Client
	ttl        time.Duration
	sourceName string
}

// NewCachedLiveSource creates a new CachedLiveSource.
func NewCachedLiveSource(source LiveRateSource, cache *redis.Client, ttl time.Duration, sourceName string) *CachedLiveSource {
	return &CachedLiveSource{
		source:     source,
		cache:      cache,
		ttl:        ttl,
		sourceName: sourceName,
	}
}

func (s *CachedLiveSource) rateKey(from, to string) string {
	return fmt.Sprintf("provider_cache:%s:rate:{%s:%s}", s.sourceName, from, to)
}

func (s *CachedLiveSource) symbolsKey() string {
	return fmt.Sprintf("provider_cache:%s:symbols", s.sourceName)
}

// GetRate attempts to fetch the rate from cache before calling the underlying source.
func (s *CachedLiveSource) GetRate(ctx context.Context, from, to string) (float64, error) {
	if s.cache == nil {
		return s.source.GetRate(ctx, from, to)
	}

	key := s.rateKey(from, to)

	if val, err := s.cache.Get(ctx, key).Result(); err == nil {
		if rate, err2 := strconv.ParseFloat(val, 64); err2 == nil {
			return rate, nil
		}
	}

	rate, err := s.source.GetRate(ctx, from, to)
	if err != nil {
		return 0, err
	}

	_ = s.cache.Set(ctx, key, strconv.FormatFloat(rate, 'f', -1, 64), s.ttl).Err()
	return rate, nil
}

// ListSymbols attempts to fetch the symbol list from cache before calling the
// underlying source. Order is preserved through JSON encoding.
func (s *CachedLiveSource) ListSymbols(ctx context.Context) ([]string, error) {
	if s.cache == nil {
		return s.source.ListSymbols(ctx)
	}

	key := s.symbolsKey()

	if val, err := s.cache.Get(ctx, key).Bytes(); err == nil {
		var symbols []string
		if err2 := json.Unmarshal(val, &symbols); err2 == nil && len(symbols) > 0 {
			return symbols, nil
		}
	}

	symbols, err := s.source.ListSymbols(ctx)
	if err != nil {
		return nil, err
	}

	if encoded, err := json.Marshal(symbols); err == nil {
		_ = s.cache.Set(ctx, key, encoded, s.ttl).Err()
	}
	return symbols, nil
}

var _ HistoricalRateSource = (*CachedHistoricalSource)(nil)

// CachedHistoricalSource wraps a HistoricalRateSource with Redis caching.
// Published mid-rates for a past date never change, so entries are stored
// without expiry.
type CachedHistoricalSource struct {
	source     HistoricalRateSource
	cache      *redis.Client
	sourceName string
}

// NewCachedHistoricalSource creates a new CachedHistoricalSource.
func NewCachedHistoricalSource(source HistoricalRateSource, cache *redis.Client, sourceName string) *CachedHistoricalSource {
	return &CachedHistoricalSource{
		source:     source,
		cache:      cache,
		sourceName: sourceName,
	}
}

func (s *CachedHistoricalSource) midRateKey(currency string, date time.Time) string {
	return fmt.Sprintf("provider_cache:%s:mid:{%s:%s}", s.sourceName, currency, date.Format(DateFormat))
}

// MidRate attempts to fetch the mid-rate from cache before calling the underlying source.
func (s *CachedHistoricalSource) MidRate(ctx context.Context, currency string, date time.Time) (float64, error) {
	if s.cache == nil {
		return s.source.MidRate(ctx, currency, date)
	}

	key := s.midRateKey(currency, date)

	if val, err := s.cache.Get(ctx, key).Result(); err == nil {
		if rate, err2 := strconv.ParseFloat(val, 64); err2 == nil {
			return rate, nil
		}
	}

	rate, err := s.source.MidRate(ctx, currency, date)
	if err != nil {
		return 0, err
	}

	// TTL 0 = no expiry.
	_ = s.cache.Set(ctx, key, strconv.FormatFloat(rate, 'f', -1, 64), 0).Err()
	return rate, nil
}
