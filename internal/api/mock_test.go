package api

import (
	"context"
	"time"

	"converterservice/internal/service"
)

// mockConverterService implements service.ConverterServiceInterface for testing.
type mockConverterService struct {
	listSymbolsFunc      func(ctx context.Context) ([]string, error)
	convertFunc          func(ctx context.Context, amount float64, from, to string) (*service.ConversionResult, error)
	historicalRateFunc   func(ctx context.Context, from, to string, date time.Time) (*service.HistoricalResult, error)
	historicalSeriesFunc func(ctx context.Context, from, to string, start, end time.Time) ([]service.RatePoint, error)
	requestExportFunc    func(ctx context.Context) (string, error)
	getExportFunc        func(ctx context.Context, exportID string) (*service.ExportResult, error)
	getExportFileFunc    func(ctx context.Context, exportID string) ([]byte, error)
}

func (m *mockConverterService) ListSymbols(ctx context.Context) ([]string, error) {
	return m.listSymbolsFunc(ctx)
}

func (m *mockConverterService) Convert(ctx context.Context, amount float64, from, to string) (*service.ConversionResult, error) {
	return m.convertFunc(ctx, amount, from, to)
}

func (m *mockConverterService) HistoricalRate(ctx context.Context, from, to string, date time.Time) (*service.HistoricalResult, error) {
	return m.historicalRateFunc(ctx, from, to, date)
}

func (m *mockConverterService) HistoricalSeries(ctx context.Context, from, to string, start, end time.Time) ([]service.RatePoint, error) {
	return m.historicalSeriesFunc(ctx, from, to, start, end)
}

func (m *mockConverterService) RequestExport(ctx context.Context) (string, error) {
	return m.requestExportFunc(ctx)
}

func (m *mockConverterService) GetExport(ctx context.Context, exportID string) (*service.ExportResult, error) {
	return m.getExportFunc(ctx, exportID)
}

func (m *mockConverterService) GetExportFile(ctx context.Context, exportID string) ([]byte, error) {
	return m.getExportFileFunc(ctx, exportID)
}

func (m *mockConverterService) ProcessExport(_ context.Context, _ string) error {
	return nil // Not used in handler tests
}
