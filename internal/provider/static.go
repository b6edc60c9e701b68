package provider

import (
	"context"
	_ "embed"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

var (
	//go:embed fallback_symbols.csv
	fallbackSymbolsCSV string

	//go:embed fallback_rates.csv
	fallbackRatesCSV string
)

var _ LiveRateSource = (*StaticSource)(nil)

// StaticSource serves the built-in symbol list and rate table used when no
// provider API key is configured. It never performs network calls.
type StaticSource struct {
	symbols []string
	rates   map[[2]string]float64
}

// NewStaticSource loads the embedded fallback tables.
func NewStaticSource() (*StaticSource, error) {
	symbols, err := parseSymbolsCSV(strings.NewReader(fallbackSymbolsCSV))
	if err != nil {
		return nil, fmt.Errorf("load fallback symbols: %w", err)
	}
	rates, err := parseRatesCSV(strings.NewReader(fallbackRatesCSV))
	if err != nil {
		return nil, fmt.Errorf("load fallback rates: %w", err)
	}
	return &StaticSource{symbols: symbols, rates: rates}, nil
}

// ListSymbols returns the fixed currency list in table order.
func (s *StaticSource) ListSymbols(_ context.Context) ([]string, error) {
	out := make([]string, len(s.symbols))
	copy(out, s.symbols)
	return out, nil
}

// GetRate returns the tabled rate for the pair, or ErrNoRateForPair when the
// pair is not in the table.
func (s *StaticSource) GetRate(_ context.Context, from, to string) (float64, error) {
	rate, ok := s.rates[[2]string{from, to}]
	if !ok {
		return 0, fmt.Errorf("%w: no fallback data for %s/%s", ErrNoRateForPair, from, to)
	}
	return rate, nil
}

func parseSymbolsCSV(r io.Reader) ([]string, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, err
	}
	var symbols []string
	for i, rec := range records {
		if i == 0 {
			continue // header
		}
		code := strings.TrimSpace(rec[0])
		if len(code) != 3 {
			return nil, fmt.Errorf("row %d: invalid currency code %q", i, rec[0])
		}
		symbols = append(symbols, strings.ToUpper(code))
	}
	if len(symbols) == 0 {
		return nil, fmt.Errorf("symbol table is empty")
	}
	return symbols, nil
}

func parseRatesCSV(r io.Reader) (map[[2]string]float64, error) {
	csvReader := csv.NewReader(r)
	csvReader.FieldsPerRecord = 3
	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, err
	}

	rates := make(map[[2]string]float64, len(records))
	for i, rec := range records {
		if i == 0 {
			continue // header
		}
		from := strings.ToUpper(strings.TrimSpace(rec[0]))
		to := strings.ToUpper(strings.TrimSpace(rec[1]))
		rate, err := strconv.ParseFloat(strings.TrimSpace(rec[2]), 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid rate %q: %w", i, rec[2], err)
		}
		if rate <= 0 {
			return nil, fmt.Errorf("row %d: rate must be positive, got %v", i, rate)
		}
		rates[[2]string{from, to}] = rate
	}
	if len(rates) == 0 {
		return nil, fmt.Errorf("rate table is empty")
	}
	return rates, nil
}
