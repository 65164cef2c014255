package models

import "time"

// DefaultCurrency is used when a create payload does not specify one.
const DefaultCurrency = "NZD"

// Expense is a single financial transaction as returned by the backend.
// The id and telegram_user_id are server-assigned and never mutated by
// the client.
type Expense struct {
	ID             int64     `json:"id" validate:"required"`
	Amount         float64   `json:"amount" validate:"min=0"`
	Category       string    `json:"category" validate:"required"`
	Description    string    `json:"description"`
	CreatedAt      time.Time `json:"created_at" validate:"required"`
	Currency       string    `json:"currency" validate:"required,currency_code"`
	TelegramUserID int64     `json:"telegram_user_id" validate:"required"`
}

// ExpensesPage is one page of the expense list together with the
// pagination cursor the server resolved it against.
type ExpensesPage struct {
	Expenses   []Expense `json:"expenses" validate:"required,dive"`
	TotalCount int64     `json:"total_count" validate:"min=0"`
	Limit      int       `json:"limit" validate:"min=0"`
	Offset     int       `json:"offset" validate:"min=0"`
}

// ExpenseCreate is the request body for creating an expense.
type ExpenseCreate struct {
	Amount      float64    `json:"amount" validate:"min=0"`
	Category    string     `json:"category" validate:"required,expense_category"`
	Description string     `json:"description"`
	Currency    string     `json:"currency" validate:"required,currency_code"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
}

// ExpenseUpdate is the request body for a partial expense update. Only
// non-nil fields are sent.
type ExpenseUpdate struct {
	Amount      *float64   `json:"amount,omitempty" validate:"omitempty,min=0"`
	Category    *string    `json:"category,omitempty" validate:"omitempty,expense_category"`
	Description *string    `json:"description,omitempty"`
	Currency    *string    `json:"currency,omitempty" validate:"omitempty,currency_code"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
}

// ExpenseDeleteResponse is the acknowledgement returned by a delete.
type ExpenseDeleteResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message" validate:"required"`
}
