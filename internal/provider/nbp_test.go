package provider

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDate = time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

func TestNBPProvider_MidRate(t *testing.T) {
	t.Run("mid rate extracted", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/rates/A/EUR/2024-03-15/", r.URL.Path)
			assert.Equal(t, "json", r.URL.Query().Get("format"))
			_, _ = w.Write([]byte(`{
				"table": "A",
				"currency": "euro",
				"code": "EUR",
				"rates": [{"no": "053/A/NBP/2024", "effectiveDate": "2024-03-15", "mid": 4.2981}]
			}`))
		}))
		defer srv.Close()

		p := NewNBPProvider(srv.URL, 5, 0, 0)
		rate, err := p.MidRate(context.Background(), "EUR", testDate)
		require.NoError(t, err)
		assert.Equal(t, 4.2981, rate)
	})

	t.Run("404 means no rate for date", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			http.Error(w, "404 NotFound - Not Found - Brak danych", http.StatusNotFound)
		}))
		defer srv.Close()

		p := NewNBPProvider(srv.URL, 5, 2, 0)
		_, err := p.MidRate(context.Background(), "EUR", testDate)
		assert.True(t, errors.Is(err, ErrNoRateForDate))
		// 404 is a definitive answer, never retried.
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("5xx retried then succeeds", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) == 1 {
				http.Error(w, "oops", http.StatusServiceUnavailable)
				return
			}
			_, _ = w.Write([]byte(`{"code":"EUR","rates":[{"effectiveDate":"2024-03-15","mid":4.30}]}`))
		}))
		defer srv.Close()

		p := NewNBPProvider(srv.URL, 5, 2, 0)
		rate, err := p.MidRate(context.Background(), "EUR", testDate)
		require.NoError(t, err)
		assert.Equal(t, 4.30, rate)
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("5xx retry bound exhausted", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			http.Error(w, "oops", http.StatusInternalServerError)
		}))
		defer srv.Close()

		p := NewNBPProvider(srv.URL, 5, 2, 0)
		_, err := p.MidRate(context.Background(), "EUR", testDate)
		require.Error(t, err)
		assert.False(t, errors.Is(err, ErrNoRateForDate))
		// Initial attempt plus two retries.
		assert.Equal(t, int32(3), calls.Load())
	})

	t.Run("other 4xx not retried", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			http.Error(w, "bad request", http.StatusBadRequest)
		}))
		defer srv.Close()

		p := NewNBPProvider(srv.URL, 5, 2, 0)
		_, err := p.MidRate(context.Background(), "EUR", testDate)
		require.Error(t, err)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("empty rates array treated as no data", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"code":"EUR","rates":[]}`))
		}))
		defer srv.Close()

		p := NewNBPProvider(srv.URL, 5, 0, 0)
		_, err := p.MidRate(context.Background(), "EUR", testDate)
		assert.True(t, errors.Is(err, ErrNoRateForDate))
	})
}
