package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"converterservice/internal/provider"
	"converterservice/internal/service"
)

// ConvertResponse represents the response for a live conversion
type ConvertResponse struct {
	Amount          float64 `json:"amount" example:"100"`
	From            string  `json:"from" example:"USD"`
	To              string  `json:"to" example:"EUR"`
	Rate            float64 `json:"rate" example:"0.92"`
	ConvertedAmount float64 `json:"converted_amount" example:"92"`
}

// SymbolsResponse represents the response for the symbol list
type SymbolsResponse struct {
	Symbols []string `json:"symbols"`
	Error   string   `json:"error,omitempty" example:"failed to fetch currency symbols"`
}

// HistoricalRateResponse represents the response for a single-day historical lookup
type HistoricalRateResponse struct {
	From string  `json:"from" example:"USD"`
	To   string  `json:"to" example:"EUR"`
	Date string  `json:"date" example:"2024-03-15"`
	Rate float64 `json:"rate" example:"0.9287"`
}

// SeriesPoint is one element of a historical series response
type SeriesPoint struct {
	Date string  `json:"date" example:"2024-03-15"`
	Rate float64 `json:"rate" example:"0.9287"`
}

// SeriesResponse represents the response for a historical range lookup
type SeriesResponse struct {
	From   string        `json:"from" example:"USD"`
	To     string        `json:"to" example:"EUR"`
	Points []SeriesPoint `json:"points"`
}

// HandleConvert godoc
// @Summary Convert an amount between two currencies
// @Description Converts the amount at the current rate. Without a provider API key the built-in fallback table serves a fixed set of pairs.
// @Tags rates
// @Produce json
// @Param amount query number true "Amount to convert (minimum 0.01)"
// @Param from query string true "Source currency code (3 letters)" minlength(3) maxlength(3)
// @Param to query string true "Target currency code (3 letters)" minlength(3) maxlength(3)
// @Success 200 {object} ConvertResponse "Conversion result"
// @Failure 400 {object} ErrorResponse "Invalid amount or currency code"
// @Failure 404 {object} ErrorResponse "No rate available for the pair"
// @Failure 502 {object} ErrorResponse "Rate provider unavailable"
// @Router /convert [get]
func HandleConvert(svc service.ConverterServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		from := q.Get("from")
		to := q.Get("to")
		if from == "" || to == "" {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "from and to query params are required"})
			return
		}
		amount, err := strconv.ParseFloat(q.Get("amount"), 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "amount must be a number"})
			return
		}

		res, err := svc.Convert(r.Context(), amount, from, to)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrInvalidCurrencyCode), errors.Is(err, service.ErrAmountTooSmall):
				writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			case errors.Is(err, provider.ErrNoRateForPair):
				writeJSON(w, http.StatusNotFound, ErrorResponse{Error: err.Error()})
			default:
				writeJSON(w, http.StatusBadGateway, ErrorResponse{Error: "rate provider unavailable"})
			}
			return
		}

		writeJSON(w, http.StatusOK, ConvertResponse{
			Amount:          res.Amount,
			From:            res.From,
			To:              res.To,
			Rate:            res.Rate,
			ConvertedAmount: res.ConvertedAmount,
		})
	}
}

// HandleListSymbols godoc
// @Summary List available currency codes
// @Description Returns currency codes in provider order. A provider failure is reported in the body alongside an empty list; the call itself still succeeds.
// @Tags rates
// @Produce json
// @Success 200 {object} SymbolsResponse "Symbol list (possibly empty with an error message)"
// @Router /symbols [get]
func HandleListSymbols(svc service.ConverterServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		symbols, err := svc.ListSymbols(r.Context())
		if err != nil {
			// Degraded, not fatal: the caller gets an empty selection.
			writeJSON(w, http.StatusOK, SymbolsResponse{
				Symbols: []string{},
				Error:   "failed to fetch currency symbols",
			})
			return
		}
		writeJSON(w, http.StatusOK, SymbolsResponse{Symbols: symbols})
	}
}

// HandleHistoricalRate godoc
// @Summary Get the conversion rate for a past date
// @Description Resolves the official NBP mid-rates for the date, stepping backward over non-trading days (bounded), and triangulates the cross rate through PLN.
// @Tags rates
// @Produce json
// @Param from query string true "Source currency code (3 letters)" minlength(3) maxlength(3)
// @Param to query string true "Target currency code (3 letters)" minlength(3) maxlength(3)
// @Param date query string true "Calendar date (YYYY-MM-DD)" format(date)
// @Success 200 {object} HistoricalRateResponse "Historical rate found"
// @Failure 400 {object} ErrorResponse "Invalid currency code or date"
// @Failure 404 {object} ErrorResponse "No rate within the fallback window"
// @Failure 502 {object} ErrorResponse "Rate provider unavailable"
// @Router /rates/historical [get]
func HandleHistoricalRate(svc service.ConverterServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		from := q.Get("from")
		to := q.Get("to")
		if from == "" || to == "" {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "from and to query params are required"})
			return
		}
		date, err := time.Parse(provider.DateFormat, q.Get("date"))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "date must be formatted YYYY-MM-DD"})
			return
		}

		res, err := svc.HistoricalRate(r.Context(), from, to, date)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrInvalidCurrencyCode), errors.Is(err, service.ErrDateInFuture):
				writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			case errors.Is(err, service.ErrNoHistoricalData):
				writeJSON(w, http.StatusNotFound, ErrorResponse{Error: err.Error()})
			default:
				writeJSON(w, http.StatusBadGateway, ErrorResponse{Error: "historical rate provider unavailable"})
			}
			return
		}

		writeJSON(w, http.StatusOK, HistoricalRateResponse{
			From: res.From,
			To:   res.To,
			Date: res.Date.Format(provider.DateFormat),
			Rate: res.Rate,
		})
	}
}

// HandleHistoricalSeries godoc
// @Summary Get the day-by-day rate series over a date range
// @Description Resolves the pair for every calendar day from start to end inclusive. Days without a resolvable rate are omitted; the series may be empty.
// @Tags rates
// @Produce json
// @Param from query string true "Source currency code (3 letters)" minlength(3) maxlength(3)
// @Param to query string true "Target currency code (3 letters)" minlength(3) maxlength(3)
// @Param start query string true "Range start (YYYY-MM-DD)" format(date)
// @Param end query string true "Range end (YYYY-MM-DD), clamped to today" format(date)
// @Success 200 {object} SeriesResponse "Chronological series"
// @Failure 400 {object} ErrorResponse "Invalid currency code or date range"
// @Router /rates/history [get]
func HandleHistoricalSeries(svc service.ConverterServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		from := q.Get("from")
		to := q.Get("to")
		if from == "" || to == "" {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "from and to query params are required"})
			return
		}
		start, err := time.Parse(provider.DateFormat, q.Get("start"))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "start must be formatted YYYY-MM-DD"})
			return
		}
		end, err := time.Parse(provider.DateFormat, q.Get("end"))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "end must be formatted YYYY-MM-DD"})
			return
		}

		series, err := svc.HistoricalSeries(r.Context(), from, to, start, end)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrInvalidCurrencyCode), errors.Is(err, service.ErrInvalidDateRange):
				writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			default:
				writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Internal error"})
			}
			return
		}

		points := make([]SeriesPoint, 0, len(series))
		for _, p := range series {
			points = append(points, SeriesPoint{
				Date: p.Date.Format(provider.DateFormat),
				Rate: p.Rate,
			})
		}

		writeJSON(w, http.StatusOK, SeriesResponse{
			From:   normalizeCode(from),
			To:     normalizeCode(to),
			Points: points,
		})
	}
}
