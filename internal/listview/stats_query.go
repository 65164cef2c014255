package listview

import (
	"net/url"
	"strconv"
	"time"
)

// StatsQuery is the persisted view state for the monthly statistics
// page: which month is shown, optionally scoped to a currency.
type StatsQuery struct {
	Month    int
	Year     int
	Currency string
}

// NewStatsQuery defaults to the month containing now.
func NewStatsQuery(now time.Time) StatsQuery {
	return StatsQuery{Month: int(now.Month()), Year: now.Year()}
}

// Encode serializes the state to its canonical URL form.
func (q StatsQuery) Encode() url.Values {
	values := url.Values{}
	values.Set("month", strconv.Itoa(q.Month))
	values.Set("year", strconv.Itoa(q.Year))
	if q.Currency != "" {
		values.Set("currency", q.Currency)
	}
	return values
}

// ParseStatsQuery rebuilds the state from its URL form, falling back to
// the month containing now.
func ParseStatsQuery(values url.Values, now time.Time) StatsQuery {
	q := NewStatsQuery(now)

	if month, err := strconv.Atoi(values.Get("month")); err == nil && month >= 1 && month <= 12 {
		q.Month = month
	}
	if year, err := strconv.Atoi(values.Get("year")); err == nil && year > 0 {
		q.Year = year
	}
	q.Currency = values.Get("currency")

	return q
}
