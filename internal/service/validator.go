package service

import "time"

// MinAmount is the smallest convertible amount.
const MinAmount = 0.01

// ValidateAmount rejects amounts below the minimum (0.00 included).
func ValidateAmount(amount float64) error {
	if amount < MinAmount {
		return ErrAmountTooSmall
	}
	return nil
}

// ValidateHistoricalDate rejects dates strictly after today.
func ValidateHistoricalDate(date, now time.Time) error {
	if dateOnly(date).After(dateOnly(now)) {
		return ErrDateInFuture
	}
	return nil
}

// ValidateDateRange checks a chart range: start must be strictly before end.
// An end date in the future is clamped to today rather than rejected, which
// is what the chart needs when "today" is picked as the range end.
func ValidateDateRange(start, end, now time.Time) (clampedEnd time.Time, err error) {
	if !dateOnly(start).Before(dateOnly(end)) {
		return time.Time{}, ErrInvalidDateRange
	}
	if dateOnly(end).After(dateOnly(now)) {
		return dateOnly(now), nil
	}
	return dateOnly(end), nil
}

// dateOnly truncates a timestamp to its UTC calendar date.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
