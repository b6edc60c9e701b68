// Package provider implements the external rate sources: the exchangerate-api
// live provider, the NBP historical provider and the static fallback table.
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

var _ LiveRateSource = (*ExchangeRateAPIProvider)(nil)

// ExchangeRateAPIProvider fetches live rates from the exchangerate-api.com v6 API.
// The API key is embedded in the request path.
type ExchangeRateAPIProvider struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewExchangeRateAPIProvider creates a new ExchangeRateAPIProvider with the given configuration.
func NewExchangeRateAPIProvider(baseURL, apiKey string, timeoutSec int) *ExchangeRateAPIProvider {
	if baseURL == "" {
		baseURL = "https://v6.exchangerate-api.com/v6"
	}
	return &ExchangeRateAPIProvider{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
	}
}

// latestURL forms the "latest rates relative to base" endpoint URL.
func (p *ExchangeRateAPIProvider) latestURL(base string) string {
	return fmt.Sprintf("%s/%s/latest/%s", p.baseURL, p.apiKey, base)
}

func (p *ExchangeRateAPIProvider) fetchLatest(ctx context.Context, base string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.latestURL(base), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("external API request creation failed: %w", err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("external API request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		return nil, fmt.Errorf("external API returned status %d: %s", resp.StatusCode, string(body))
	}
	return resp.Body, nil
}

// exchangerate-api latest response structure
type erAPIResponse struct {
	Result          string             `json:"result"`
	BaseCode        string             `json:"base_code"`
	ConversionRates map[string]float64 `json:"conversion_rates"`
}

// GetRate fetches the current rate for one unit of `from` expressed in `to`.
func (p *ExchangeRateAPIProvider) GetRate(ctx context.Context, from, to string) (float64, error) {
	body, err := p.fetchLatest(ctx, from)
	if err != nil {
		return 0, err
	}
	defer body.Close() //nolint:errcheck // best-effort close

	var result erAPIResponse
	if err := json.NewDecoder(body).Decode(&result); err != nil {
		return 0, fmt.Errorf("failed to decode external API response: %w", err)
	}
	if result.Result != "" && result.Result != "success" {
		return 0, fmt.Errorf("external API returned result=%q for %s/%s", result.Result, from, to)
	}

	rate, ok := result.ConversionRates[to]
	if !ok {
		return 0, fmt.Errorf("%w: %s/%s", ErrNoRateForPair, from, to)
	}
	return rate, nil
}

// ListSymbols fetches the latest USD table and returns the quoted currency
// codes in response order. A plain map decode would lose that order, so the
// conversion_rates object is walked token by token.
func (p *ExchangeRateAPIProvider) ListSymbols(ctx context.Context) ([]string, error) {
	body, err := p.fetchLatest(ctx, "USD")
	if err != nil {
		return nil, err
	}
	defer body.Close() //nolint:errcheck // best-effort close

	symbols, err := decodeOrderedSymbols(body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode external API response: %w", err)
	}
	return symbols, nil
}

// decodeOrderedSymbols streams the response and collects the keys of the
// conversion_rates object in the order the provider sent them.
func decodeOrderedSymbols(r io.Reader) ([]string, error) {
	dec := json.NewDecoder(r)

	// Seek the top-level "conversion_rates" key.
	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v in response object", tok)
		}
		if key != "conversion_rates" {
			// Skip this value entirely.
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return nil, err
			}
			continue
		}

		if err := expectDelim(dec, '{'); err != nil {
			return nil, err
		}
		var symbols []string
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			code, ok := keyTok.(string)
			if !ok {
				return nil, fmt.Errorf("unexpected token %v in conversion_rates", keyTok)
			}
			// Consume the rate value.
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			symbols = append(symbols, code)
		}
		return symbols, nil
	}

	return nil, fmt.Errorf("conversion_rates missing from response")
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}
