package service

import (
	"errors"
	"strings"
)

// ErrInvalidCurrencyCode indicates a currency code is not a 3-letter code.
var ErrInvalidCurrencyCode = errors.New("invalid currency code format")

// ErrAmountTooSmall indicates the conversion amount is below the minimum.
var ErrAmountTooSmall = errors.New("amount must be at least 0.01")

// ErrDateInFuture indicates a historical lookup date after today.
var ErrDateInFuture = errors.New("historical date cannot be in the future")

// ErrInvalidDateRange indicates the range start is not before its end.
var ErrInvalidDateRange = errors.New("start date must be before end date")

// ErrNoHistoricalData indicates the backward search window was exhausted
// without finding a published rate.
var ErrNoHistoricalData = errors.New("no historical data within fallback window")

// ErrInvalidExportID indicates the export ID format is invalid.
var ErrInvalidExportID = errors.New("invalid export_id")

// ErrNotFound indicates the requested resource was not found.
var ErrNotFound = errors.New("not found")

// ErrExportNotReady indicates the export artifact is not available yet.
var ErrExportNotReady = errors.New("export not ready")

// ErrInternal indicates an internal server error.
var ErrInternal = errors.New("internal error")

// ErrInternalQueue indicates an internal queue error.
var ErrInternalQueue = errors.New("internal queue error")

// IsValidCurrencyCode checks whether a string is a valid 3-letter currency code.
func IsValidCurrencyCode(code string) bool {
	if len(code) != 3 {
		return false
	}
	code = strings.ToUpper(code)
	for _, c := range code {
		if c < 'A' || c > 'Z' {
			return false
		}
	}
	return true
}

func normalizePair(from, to string) (normFrom, normTo string, err error) {
	if !IsValidCurrencyCode(from) || !IsValidCurrencyCode(to) {
		return "", "", ErrInvalidCurrencyCode
	}
	return strings.ToUpper(from), strings.ToUpper(to), nil
}
