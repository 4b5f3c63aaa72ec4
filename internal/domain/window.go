package domain

import (
	"strings"
	"time"
)

// DateLayout is the calendar-date format used in query parameters, both
// inbound and forwarded upstream.
const DateLayout = "2006-01-02"

// DateRange is an inclusive window of calendar days.
// From and To are always midnight UTC so day arithmetic is exact.
type DateRange struct {
	From time.Time
	To   time.Time
}

// CalendarDate drops the time of day from t, keeping the date as seen in t's own location.
func CalendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD value.
func ParseDate(field, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, &ErrValidation{Field: field, Message: "required (YYYY-MM-DD)"}
	}
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, &ErrValidation{Field: field, Message: "must be a date in YYYY-MM-DD format"}
	}
	return t, nil
}

// NewDateRange builds an inclusive range and rejects one that ends before it starts.
func NewDateRange(from, to time.Time) (DateRange, error) {
	r := DateRange{From: CalendarDate(from), To: CalendarDate(to)}
	if r.To.Before(r.From) {
		return DateRange{}, &ErrInvalidRange{From: r.From, To: r.To}
	}
	return r, nil
}

// MonthOf returns the calendar month containing now, first through last day.
func MonthOf(now time.Time) DateRange {
	y, m, _ := now.Date()
	first := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
	return DateRange{From: first, To: first.AddDate(0, 1, -1)}
}

// Contains reports whether t's calendar date lies inside the range, bounds included.
func (r DateRange) Contains(t time.Time) bool {
	d := CalendarDate(t)
	return !d.Before(r.From) && !d.After(r.To)
}

// Days is the number of calendar days covered, both ends counted.
// It is zero or negative only for a malformed range.
func (r DateRange) Days() int64 {
	return int64(r.To.Sub(r.From)/(24*time.Hour)) + 1
}

// FromString formats the lower bound for query strings.
func (r DateRange) FromString() string { return r.From.Format(DateLayout) }

// ToString formats the upper bound for query strings.
func (r DateRange) ToString() string { return r.To.Format(DateLayout) }
