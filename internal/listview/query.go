// Package listview holds the filter/pagination state machine behind the
// expense list. State is a pure value round-tripped through URL query
// parameters, so it survives navigation and can be bookmarked or shared;
// no hidden state exists outside the encoded form.
package listview

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"bezorgen/internal/models"
)

// DefaultLimit is the page size used when none is encoded.
const DefaultLimit = 50

// Query is the filter/pagination cursor for the expense list. Category
// and the date range are alternative query modes: when both are set the
// category takes precedence and the date range is not sent.
type Query struct {
	Limit     int
	Offset    int
	Category  string
	StartDate *time.Time
	EndDate   *time.Time
}

// NewQuery returns the default query state: first page, no filters.
func NewQuery() Query {
	return Query{Limit: DefaultLimit}
}

// ApplyFilter replaces the filter fields and rewinds to the first page,
// preserving the page size.
func (q Query) ApplyFilter(category string, startDate, endDate *time.Time) Query {
	q.Offset = 0
	q.Category = category
	q.StartDate = startDate
	q.EndDate = endDate
	return q
}

// ClearFilters resets all filters and rewinds to the first page. Calling
// it twice yields the same state as calling it once.
func (q Query) ClearFilters() Query {
	return q.ApplyFilter("", nil, nil)
}

// GoToPage moves to the 1-based page n, preserving filters. Pages beyond
// the server's total are not pre-validated here; the server simply
// returns an empty page.
func (q Query) GoToPage(n int) Query {
	if n < 1 {
		n = 1
	}
	q.Offset = (n - 1) * q.limit()
	return q
}

// CurrentPage derives the 1-based page number from the offset.
func (q Query) CurrentPage() int {
	return q.Offset/q.limit() + 1
}

// TotalPages derives the page count from the server-reported total. A
// minimum of 1 avoids a degenerate zero-page UI when the list is empty.
func TotalPages(totalCount int64, limit int) int {
	if limit <= 0 {
		limit = DefaultLimit
	}
	pages := int((totalCount + int64(limit) - 1) / int64(limit))
	if pages < 1 {
		return 1
	}
	return pages
}

// HasCategory reports whether a category filter is active.
func (q Query) HasCategory() bool {
	return q.Category != ""
}

// HasDateRange reports whether a complete date-range filter is active.
func (q Query) HasDateRange() bool {
	return q.StartDate != nil && q.EndDate != nil
}

func (q Query) limit() int {
	if q.Limit <= 0 {
		return DefaultLimit
	}
	return q.Limit
}

// Encode serializes the state to its canonical URL form.
func (q Query) Encode() url.Values {
	values := url.Values{}
	values.Set("limit", strconv.Itoa(q.limit()))
	values.Set("offset", strconv.Itoa(q.Offset))
	if q.Category != "" {
		values.Set("category", q.Category)
	}
	if q.StartDate != nil {
		values.Set("startDate", q.StartDate.Format(time.RFC3339))
	}
	if q.EndDate != nil {
		values.Set("endDate", q.EndDate.Format(time.RFC3339))
	}
	return values
}

// ParseQuery rebuilds the state from its URL form. Missing or malformed
// parameters fall back to defaults, matching what a reload does with a
// hand-edited address bar.
func ParseQuery(values url.Values) Query {
	q := NewQuery()

	if limit, err := strconv.Atoi(values.Get("limit")); err == nil && limit > 0 {
		q.Limit = limit
	}
	if offset, err := strconv.Atoi(values.Get("offset")); err == nil && offset >= 0 {
		q.Offset = offset
	}
	q.Category = values.Get("category")
	if t, err := time.Parse(time.RFC3339, values.Get("startDate")); err == nil {
		q.StartDate = &t
	}
	if t, err := time.Parse(time.RFC3339, values.Get("endDate")); err == nil {
		q.EndDate = &t
	}

	return q
}

// ExpenseLister is the slice of the API client the dispatcher needs.
type ExpenseLister interface {
	ListExpenses(ctx context.Context, limit, offset int) (*models.ExpensesPage, error)
	ListExpensesByCategory(ctx context.Context, category string, limit, offset int) (*models.ExpensesPage, error)
	ListExpensesByDateRange(ctx context.Context, startDate, endDate time.Time, limit, offset int) (*models.ExpensesPage, error)
}

// Fetch resolves the query against the backend, choosing the endpoint by
// the documented precedence: category filter first, then date range,
// then the unfiltered list.
func (q Query) Fetch(ctx context.Context, lister ExpenseLister) (*models.ExpensesPage, error) {
	switch {
	case q.HasCategory():
		return lister.ListExpensesByCategory(ctx, q.Category, q.limit(), q.Offset)
	case q.HasDateRange():
		return lister.ListExpensesByDateRange(ctx, *q.StartDate, *q.EndDate, q.limit(), q.Offset)
	default:
		return lister.ListExpenses(ctx, q.limit(), q.Offset)
	}
}
