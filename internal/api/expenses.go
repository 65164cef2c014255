package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"bezorgen/internal/models"
	"bezorgen/internal/schema"
)

func pagingParams(limit, offset int) url.Values {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	query.Set("offset", strconv.Itoa(offset))
	return query
}

// ListExpenses fetches one page of the expense list.
func (c *Client) ListExpenses(ctx context.Context, limit, offset int) (*models.ExpensesPage, error) {
	resp, err := c.get(ctx, "list_expenses", "/expenses/", pagingParams(limit, offset))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return schema.Decode[models.ExpensesPage](c.schema, resp.Body)
}

// ListExpensesByCategory fetches one page of expenses within a category.
func (c *Client) ListExpensesByCategory(ctx context.Context, category string, limit, offset int) (*models.ExpensesPage, error) {
	path := "/expenses/category/" + url.PathEscape(category)
	resp, err := c.get(ctx, "list_expenses_by_category", path, pagingParams(limit, offset))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return schema.Decode[models.ExpensesPage](c.schema, resp.Body)
}

// ListExpensesByDateRange fetches one page of expenses between two dates.
func (c *Client) ListExpensesByDateRange(ctx context.Context, startDate, endDate time.Time, limit, offset int) (*models.ExpensesPage, error) {
	query := pagingParams(limit, offset)
	query.Set("start_date", startDate.Format(time.RFC3339))
	query.Set("end_date", endDate.Format(time.RFC3339))

	resp, err := c.get(ctx, "list_expenses_by_date_range", "/expenses/date-range", query)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return schema.Decode[models.ExpensesPage](c.schema, resp.Body)
}

// FetchMonthlyStats fetches the server-computed aggregate for a month,
// optionally scoped to a currency. The result is never cached.
func (c *Client) FetchMonthlyStats(ctx context.Context, month, year int, currency string) (*models.MonthlyStats, error) {
	query := url.Values{}
	query.Set("month", strconv.Itoa(month))
	query.Set("year", strconv.Itoa(year))
	if currency != "" {
		query.Set("currency", currency)
	}

	resp, err := c.get(ctx, "monthly_stats", "/expenses/stats/monthly", query)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return schema.Decode[models.MonthlyStats](c.schema, resp.Body)
}

// CreateExpense creates an expense. The payload is validated before any
// network call; the server remains the authority.
func (c *Client) CreateExpense(ctx context.Context, payload models.ExpenseCreate) (*models.Expense, error) {
	if err := c.schema.Struct(payload); err != nil {
		return nil, err
	}

	resp, err := c.do(ctx, "create_expense", http.MethodPost, "/expenses/", nil, payload, true)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return schema.Decode[models.Expense](c.schema, resp.Body)
}

// UpdateExpense applies a partial update to an expense.
func (c *Client) UpdateExpense(ctx context.Context, id int64, payload models.ExpenseUpdate) (*models.Expense, error) {
	if err := c.schema.Struct(payload); err != nil {
		return nil, err
	}

	path := fmt.Sprintf("/expenses/%d", id)
	resp, err := c.do(ctx, "update_expense", http.MethodPatch, path, nil, payload, true)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return schema.Decode[models.Expense](c.schema, resp.Body)
}

// DeleteExpense deletes an expense. Deleting an id that no longer exists
// surfaces as an ordinary APIError, never a crash.
func (c *Client) DeleteExpense(ctx context.Context, id int64) (*models.ExpenseDeleteResponse, error) {
	path := fmt.Sprintf("/expenses/%d", id)
	resp, err := c.do(ctx, "delete_expense", http.MethodDelete, path, nil, nil, true)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return schema.Decode[models.ExpenseDeleteResponse](c.schema, resp.Body)
}
