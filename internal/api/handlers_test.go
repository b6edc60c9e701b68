package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"converterservice/internal/provider"
	"converterservice/internal/service"
)

func TestHandleConvert(t *testing.T) {
	t.Run("valid request returns 200 with conversion", func(t *testing.T) {
		svc := &mockConverterService{
			convertFunc: func(ctx context.Context, amount float64, from, to string) (*service.ConversionResult, error) {
				return &service.ConversionResult{
					Amount:          100,
					From:            "USD",
					To:              "EUR",
					Rate:            0.92,
					ConvertedAmount: 92,
				}, nil
			},
		}

		req := httptest.NewRequest(http.MethodGet, "/convert?amount=100&from=USD&to=EUR", nil)
		w := httptest.NewRecorder()

		HandleConvert(svc).ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Expected status 200, got %d", w.Code)
		}

		var resp ConvertResponse
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if resp.ConvertedAmount != 92 {
			t.Errorf("Expected converted_amount 92, got %v", resp.ConvertedAmount)
		}
		if resp.Rate != 0.92 {
			t.Errorf("Expected rate 0.92, got %v", resp.Rate)
		}
	})

	t.Run("missing currency params returns 400", func(t *testing.T) {
		svc := &mockConverterService{}

		req := httptest.NewRequest(http.MethodGet, "/convert?amount=100&from=USD", nil)
		w := httptest.NewRecorder()

		HandleConvert(svc).ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})

	t.Run("non-numeric amount returns 400", func(t *testing.T) {
		svc := &mockConverterService{}

		req := httptest.NewRequest(http.MethodGet, "/convert?amount=abc&from=USD&to=EUR", nil)
		w := httptest.NewRecorder()

		HandleConvert(svc).ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})

	t.Run("amount below minimum returns 400", func(t *testing.T) {
		svc := &mockConverterService{
			convertFunc: func(ctx context.Context, amount float64, from, to string) (*service.ConversionResult, error) {
				return nil, service.ErrAmountTooSmall
			},
		}

		req := httptest.NewRequest(http.MethodGet, "/convert?amount=0.001&from=USD&to=EUR", nil)
		w := httptest.NewRecorder()

		HandleConvert(svc).ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})

	t.Run("unknown pair returns 404", func(t *testing.T) {
		svc := &mockConverterService{
			convertFunc: func(ctx context.Context, amount float64, from, to string) (*service.ConversionResult, error) {
				return nil, provider.ErrNoRateForPair
			},
		}

		req := httptest.NewRequest(http.MethodGet, "/convert?amount=100&from=USD&to=XYZ", nil)
		w := httptest.NewRecorder()

		HandleConvert(svc).ServeHTTP(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected status 404, got %d", w.Code)
		}
	})

	t.Run("provider failure returns 502", func(t *testing.T) {
		svc := &mockConverterService{
			convertFunc: func(ctx context.Context, amount float64, from, to string) (*service.ConversionResult, error) {
				return nil, errors.New("connection refused")
			},
		}

		req := httptest.NewRequest(http.MethodGet, "/convert?amount=100&from=USD&to=EUR", nil)
		w := httptest.NewRecorder()

		HandleConvert(svc).ServeHTTP(w, req)

		if w.Code != http.StatusBadGateway {
			t.Errorf("Expected status 502, got %d", w.Code)
		}
	})
}

func TestHandleListSymbols(t *testing.T) {
	t.Run("returns symbols in source order", func(t *testing.T) {
		svc := &mockConverterService{
			listSymbolsFunc: func(ctx context.Context) ([]string, error) {
				return []string{"USD", "AED", "EUR"}, nil
			},
		}

		req := httptest.NewRequest(http.MethodGet, "/symbols", nil)
		w := httptest.NewRecorder()

		HandleListSymbols(svc).ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Expected status 200, got %d", w.Code)
		}

		var resp SymbolsResponse
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if len(resp.Symbols) != 3 || resp.Symbols[0] != "USD" || resp.Symbols[1] != "AED" {
			t.Errorf("Expected [USD AED EUR], got %v", resp.Symbols)
		}
		if resp.Error != "" {
			t.Errorf("Expected no error message, got %q", resp.Error)
		}
	})

	t.Run("source failure returns 200 with empty list and message", func(t *testing.T) {
		svc := &mockConverterService{
			listSymbolsFunc: func(ctx context.Context) ([]string, error) {
				return nil, errors.New("timeout")
			},
		}

		req := httptest.NewRequest(http.MethodGet, "/symbols", nil)
		w := httptest.NewRecorder()

		HandleListSymbols(svc).ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Expected status 200, got %d", w.Code)
		}

		var resp SymbolsResponse
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if len(resp.Symbols) != 0 {
			t.Errorf("Expected empty symbols, got %v", resp.Symbols)
		}
		if resp.Error == "" {
			t.Error("Expected error message in degraded response")
		}
	})
}

func TestHandleHistoricalRate(t *testing.T) {
	t.Run("valid request returns 200 with rate", func(t *testing.T) {
		svc := &mockConverterService{
			historicalRateFunc: func(ctx context.Context, from, to string, date time.Time) (*service.HistoricalResult, error) {
				return &service.HistoricalResult{
					From: "USD",
					To:   "EUR",
					Date: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
					Rate: 0.9287,
				}, nil
			},
		}

		req := httptest.NewRequest(http.MethodGet, "/rates/historical?from=USD&to=EUR&date=2024-03-15", nil)
		w := httptest.NewRecorder()

		HandleHistoricalRate(svc).ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Expected status 200, got %d", w.Code)
		}

		var resp HistoricalRateResponse
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if resp.Date != "2024-03-15" {
			t.Errorf("Expected date 2024-03-15, got %s", resp.Date)
		}
		if resp.Rate != 0.9287 {
			t.Errorf("Expected rate 0.9287, got %v", resp.Rate)
		}
	})

	t.Run("malformed date returns 400", func(t *testing.T) {
		svc := &mockConverterService{}

		req := httptest.NewRequest(http.MethodGet, "/rates/historical?from=USD&to=EUR&date=15-03-2024", nil)
		w := httptest.NewRecorder()

		HandleHistoricalRate(svc).ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})

	t.Run("future date returns 400", func(t *testing.T) {
		svc := &mockConverterService{
			historicalRateFunc: func(ctx context.Context, from, to string, date time.Time) (*service.HistoricalResult, error) {
				return nil, service.ErrDateInFuture
			},
		}

		req := httptest.NewRequest(http.MethodGet, "/rates/historical?from=USD&to=EUR&date=2099-01-01", nil)
		w := httptest.NewRecorder()

		HandleHistoricalRate(svc).ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})

	t.Run("no data within fallback window returns 404", func(t *testing.T) {
		svc := &mockConverterService{
			historicalRateFunc: func(ctx context.Context, from, to string, date time.Time) (*service.HistoricalResult, error) {
				return nil, service.ErrNoHistoricalData
			},
		}

		req := httptest.NewRequest(http.MethodGet, "/rates/historical?from=USD&to=EUR&date=2024-03-15", nil)
		w := httptest.NewRecorder()

		HandleHistoricalRate(svc).ServeHTTP(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected status 404, got %d", w.Code)
		}
	})

	t.Run("provider failure returns 502", func(t *testing.T) {
		svc := &mockConverterService{
			historicalRateFunc: func(ctx context.Context, from, to string, date time.Time) (*service.HistoricalResult, error) {
				return nil, errors.New("nbp unavailable")
			},
		}

		req := httptest.NewRequest(http.MethodGet, "/rates/historical?from=USD&to=EUR&date=2024-03-15", nil)
		w := httptest.NewRecorder()

		HandleHistoricalRate(svc).ServeHTTP(w, req)

		if w.Code != http.StatusBadGateway {
			t.Errorf("Expected status 502, got %d", w.Code)
		}
	})
}

func TestHandleHistoricalSeries(t *testing.T) {
	t.Run("valid range returns chronological points", func(t *testing.T) {
		svc := &mockConverterService{
			historicalSeriesFunc: func(ctx context.Context, from, to string, start, end time.Time) ([]service.RatePoint, error) {
				return []service.RatePoint{
					{Date: time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC), Rate: 0.9301},
					{Date: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), Rate: 0.9287},
				}, nil
			},
		}

		req := httptest.NewRequest(http.MethodGet, "/rates/history?from=usd&to=eur&start=2024-03-14&end=2024-03-15", nil)
		w := httptest.NewRecorder()

		HandleHistoricalSeries(svc).ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Expected status 200, got %d", w.Code)
		}

		var resp SeriesResponse
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if resp.From != "USD" || resp.To != "EUR" {
			t.Errorf("Expected normalized pair USD/EUR, got %s/%s", resp.From, resp.To)
		}
		if len(resp.Points) != 2 {
			t.Fatalf("Expected 2 points, got %d", len(resp.Points))
		}
		if resp.Points[0].Date != "2024-03-14" || resp.Points[1].Date != "2024-03-15" {
			t.Errorf("Expected chronological dates, got %v", resp.Points)
		}
	})

	t.Run("empty series returns 200 with empty points", func(t *testing.T) {
		svc := &mockConverterService{
			historicalSeriesFunc: func(ctx context.Context, from, to string, start, end time.Time) ([]service.RatePoint, error) {
				return []service.RatePoint{}, nil
			},
		}

		req := httptest.NewRequest(http.MethodGet, "/rates/history?from=USD&to=EUR&start=2024-03-16&end=2024-03-17", nil)
		w := httptest.NewRecorder()

		HandleHistoricalSeries(svc).ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Expected status 200, got %d", w.Code)
		}

		var resp SeriesResponse
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if resp.Points == nil {
			t.Error("Expected non-nil points array in JSON")
		}
		if len(resp.Points) != 0 {
			t.Errorf("Expected 0 points, got %d", len(resp.Points))
		}
	})

	t.Run("invalid range returns 400", func(t *testing.T) {
		svc := &mockConverterService{
			historicalSeriesFunc: func(ctx context.Context, from, to string, start, end time.Time) ([]service.RatePoint, error) {
				return nil, service.ErrInvalidDateRange
			},
		}

		req := httptest.NewRequest(http.MethodGet, "/rates/history?from=USD&to=EUR&start=2024-03-15&end=2024-03-10", nil)
		w := httptest.NewRecorder()

		HandleHistoricalSeries(svc).ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})

	t.Run("malformed start date returns 400", func(t *testing.T) {
		svc := &mockConverterService{}

		req := httptest.NewRequest(http.MethodGet, "/rates/history?from=USD&to=EUR&start=bad&end=2024-03-15", nil)
		w := httptest.NewRecorder()

		HandleHistoricalSeries(svc).ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})
}

func TestHandleRequestExport(t *testing.T) {
	t.Run("returns 202 with export id", func(t *testing.T) {
		svc := &mockConverterService{
			requestExportFunc: func(ctx context.Context) (string, error) {
				return "export-uuid-1", nil
			},
		}

		req := httptest.NewRequest(http.MethodPost, "/exports", nil)
		w := httptest.NewRecorder()

		HandleRequestExport(svc).ServeHTTP(w, req)

		if w.Code != http.StatusAccepted {
			t.Errorf("Expected status 202, got %d", w.Code)
		}

		var resp ExportRequestedResponse
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if resp.ExportID != "export-uuid-1" {
			t.Errorf("Expected export_id 'export-uuid-1', got %s", resp.ExportID)
		}
		if resp.Status != "PENDING" {
			t.Errorf("Expected status PENDING, got %s", resp.Status)
		}
	})

	t.Run("enqueue failure returns 500", func(t *testing.T) {
		svc := &mockConverterService{
			requestExportFunc: func(ctx context.Context) (string, error) {
				return "", service.ErrInternalQueue
			},
		}

		req := httptest.NewRequest(http.MethodPost, "/exports", nil)
		w := httptest.NewRecorder()

		HandleRequestExport(svc).ServeHTTP(w, req)

		if w.Code != http.StatusInternalServerError {
			t.Errorf("Expected status 500, got %d", w.Code)
		}
	})
}

func exportRequest(t *testing.T, target, id string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestHandleGetExport(t *testing.T) {
	t.Run("success status includes updated_at", func(t *testing.T) {
		updatedAt := "2024-03-15T10:30:00Z"
		svc := &mockConverterService{
			getExportFunc: func(ctx context.Context, exportID string) (*service.ExportResult, error) {
				return &service.ExportResult{
					ID:        exportID,
					Status:    "SUCCESS",
					UpdatedAt: &updatedAt,
				}, nil
			},
		}

		req := exportRequest(t, "/exports/export-uuid-1", "export-uuid-1")
		w := httptest.NewRecorder()

		HandleGetExport(svc).ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Expected status 200, got %d", w.Code)
		}

		var resp ExportStatusResponse
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if resp.Status != "SUCCESS" {
			t.Errorf("Expected status SUCCESS, got %s", resp.Status)
		}
		if resp.UpdatedAt != updatedAt {
			t.Errorf("Expected updated_at %s, got %s", updatedAt, resp.UpdatedAt)
		}
	})

	t.Run("failed status includes error message", func(t *testing.T) {
		errMsg := "failed to fetch currency symbols"
		svc := &mockConverterService{
			getExportFunc: func(ctx context.Context, exportID string) (*service.ExportResult, error) {
				return &service.ExportResult{
					ID:       exportID,
					Status:   "FAILED",
					ErrorMsg: &errMsg,
				}, nil
			},
		}

		req := exportRequest(t, "/exports/export-uuid-2", "export-uuid-2")
		w := httptest.NewRecorder()

		HandleGetExport(svc).ServeHTTP(w, req)

		var resp ExportStatusResponse
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if resp.Error != errMsg {
			t.Errorf("Expected error %q, got %q", errMsg, resp.Error)
		}
	})

	t.Run("invalid id returns 400", func(t *testing.T) {
		svc := &mockConverterService{
			getExportFunc: func(ctx context.Context, exportID string) (*service.ExportResult, error) {
				return nil, service.ErrInvalidExportID
			},
		}

		req := exportRequest(t, "/exports/not-a-uuid", "not-a-uuid")
		w := httptest.NewRecorder()

		HandleGetExport(svc).ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})

	t.Run("unknown id returns 404", func(t *testing.T) {
		svc := &mockConverterService{
			getExportFunc: func(ctx context.Context, exportID string) (*service.ExportResult, error) {
				return nil, service.ErrNotFound
			},
		}

		req := exportRequest(t, "/exports/0e0e0e0e-0000-0000-0000-000000000000", "0e0e0e0e-0000-0000-0000-000000000000")
		w := httptest.NewRecorder()

		HandleGetExport(svc).ServeHTTP(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected status 404, got %d", w.Code)
		}
	})
}

func TestHandleDownloadExport(t *testing.T) {
	t.Run("ready export streams the workbook", func(t *testing.T) {
		payload := []byte("xlsx-bytes")
		svc := &mockConverterService{
			getExportFileFunc: func(ctx context.Context, exportID string) ([]byte, error) {
				return payload, nil
			},
		}

		req := exportRequest(t, "/exports/export-uuid-1/download", "export-uuid-1")
		w := httptest.NewRecorder()

		HandleDownloadExport(svc).ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Expected status 200, got %d", w.Code)
		}
		if got := w.Header().Get("Content-Type"); got != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
			t.Errorf("Unexpected content type: %s", got)
		}
		if got := w.Header().Get("Content-Disposition"); got != `attachment; filename="exchange_rates.xlsx"` {
			t.Errorf("Unexpected content disposition: %s", got)
		}
		if w.Body.String() != string(payload) {
			t.Error("Expected workbook bytes in response body")
		}
	})

	t.Run("export not ready returns 409", func(t *testing.T) {
		svc := &mockConverterService{
			getExportFileFunc: func(ctx context.Context, exportID string) ([]byte, error) {
				return nil, service.ErrExportNotReady
			},
		}

		req := exportRequest(t, "/exports/export-uuid-1/download", "export-uuid-1")
		w := httptest.NewRecorder()

		HandleDownloadExport(svc).ServeHTTP(w, req)

		if w.Code != http.StatusConflict {
			t.Errorf("Expected status 409, got %d", w.Code)
		}
	})

	t.Run("unknown export returns 404", func(t *testing.T) {
		svc := &mockConverterService{
			getExportFileFunc: func(ctx context.Context, exportID string) ([]byte, error) {
				return nil, service.ErrNotFound
			},
		}

		req := exportRequest(t, "/exports/0e0e0e0e-0000-0000-0000-000000000000/download", "0e0e0e0e-0000-0000-0000-000000000000")
		w := httptest.NewRecorder()

		HandleDownloadExport(svc).ServeHTTP(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected status 404, got %d", w.Code)
		}
	})
}
