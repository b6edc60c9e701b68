package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"
)

var _ HistoricalRateSource = (*NBPProvider)(nil)

// NBPProvider fetches official mid-rates from the NBP (Narodowy Bank Polski)
// table A API. All rates are quoted against PLN, the reference currency.
type NBPProvider struct {
	baseURL   string
	client    *http.Client
	retryNum  uint64
	retryWait time.Duration
}

// NewNBPProvider creates a new NBPProvider with the given configuration.
func NewNBPProvider(baseURL string, timeoutSec int, retryNum int, retryWaitSec int) *NBPProvider {
	if baseURL == "" {
		baseURL = "https://api.nbp.pl/api/exchangerates"
	}
	if retryNum < 0 {
		retryNum = 0
	}
	return &NBPProvider{
		baseURL:   baseURL,
		client:    &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
		retryNum:  uint64(retryNum),
		retryWait: time.Duration(retryWaitSec) * time.Second,
	}
}

func (p *NBPProvider) rateURL(currency string, date time.Time) string {
	return fmt.Sprintf("%s/rates/A/%s/%s/?format=json", p.baseURL, currency, date.Format(DateFormat))
}

// NBP rates API response structure
type nbpResponse struct {
	Code  string `json:"code"`
	Rates []struct {
		EffectiveDate string  `json:"effectiveDate"`
		Mid           float64 `json:"mid"`
	} `json:"rates"`
}

// MidRate fetches the official mid-rate for the currency on the given date.
// HTTP 404 means no rate was published that date and is returned as
// ErrNoRateForDate without retrying. Server-side failures are retried a
// bounded number of times at the same date before giving up.
func (p *NBPProvider) MidRate(ctx context.Context, currency string, date time.Time) (float64, error) {
	var rate float64

	backoff := retry.WithMaxRetries(p.retryNum, retry.NewConstant(p.retryWait))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		var err error
		rate, err = p.fetchMidRate(ctx, currency, date)
		return err
	})
	if err != nil {
		return 0, err
	}
	return rate, nil
}

func (p *NBPProvider) fetchMidRate(ctx context.Context, currency string, date time.Time) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.rateURL(currency, date), http.NoBody)
	if err != nil {
		return 0, fmt.Errorf("NBP API request creation failed: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, retry.RetryableError(fmt.Errorf("NBP API request failed: %w", err))
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return 0, fmt.Errorf("%w: %s on %s", ErrNoRateForDate, currency, date.Format(DateFormat))
	case resp.StatusCode >= http.StatusInternalServerError:
		body, _ := io.ReadAll(resp.Body)
		return 0, retry.RetryableError(
			fmt.Errorf("NBP API returned status %d: %s", resp.StatusCode, string(body)))
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(resp.Body)
		return 0, fmt.Errorf("NBP API returned status %d: %s", resp.StatusCode, string(body))
	}

	var result nbpResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, fmt.Errorf("failed to decode NBP API response: %w", err)
	}
	if len(result.Rates) == 0 {
		return 0, fmt.Errorf("%w: empty rates for %s on %s", ErrNoRateForDate, currency, date.Format(DateFormat))
	}

	return result.Rates[0].Mid, nil
}
