package models

import "github.com/shopspring/decimal"

// CategoryTotal is one entry of the monthly category breakdown.
type CategoryTotal struct {
	Category string  `json:"category" validate:"required"`
	Total    float64 `json:"total" validate:"min=0"`
	Count    int64   `json:"count" validate:"min=0"`
}

// MonthlyStats is the server-computed monthly aggregate. This is the
// richer of the two shapes the backend has shipped; the earlier revision
// carrying only total_spent and transaction_count is deprecated.
// The client never caches it: every view fetches a fresh copy.
type MonthlyStats struct {
	TotalSpent        float64         `json:"total_spent" validate:"min=0"`
	TotalIncome       float64         `json:"total_income" validate:"min=0"`
	TotalSavings      float64         `json:"total_savings" validate:"min=0"`
	TotalInvestment   float64         `json:"total_investment" validate:"min=0"`
	TransactionCount  int64           `json:"transaction_count" validate:"min=0"`
	ExpenseCount      int64           `json:"expense_count" validate:"min=0"`
	CategoryBreakdown []CategoryTotal `json:"category_breakdown" validate:"required,dive"`
	Currency          string          `json:"currency" validate:"required,currency_code"`
}

// Derived figures are computed with decimals so that displayed totals
// cannot drift from float accumulation.

// Allocated returns savings plus investments for the month.
func (s *MonthlyStats) Allocated() decimal.Decimal {
	return decimal.NewFromFloat(s.TotalSavings).Add(decimal.NewFromFloat(s.TotalInvestment))
}

// NetBalance returns income minus spending minus allocations.
func (s *MonthlyStats) NetBalance() decimal.Decimal {
	return decimal.NewFromFloat(s.TotalIncome).
		Sub(decimal.NewFromFloat(s.TotalSpent)).
		Sub(s.Allocated())
}

// AveragePerTransaction returns mean spend per transaction, zero when the
// month has no transactions.
func (s *MonthlyStats) AveragePerTransaction() decimal.Decimal {
	if s.TransactionCount == 0 {
		return decimal.Zero
	}
	return decimal.NewFromFloat(s.TotalSpent).Div(decimal.NewFromInt(s.TransactionCount))
}

// Average returns mean spend per transaction within the category.
func (ct *CategoryTotal) Average() decimal.Decimal {
	if ct.Count == 0 {
		return decimal.Zero
	}
	return decimal.NewFromFloat(ct.Total).Div(decimal.NewFromInt(ct.Count))
}

// Share returns the category's percentage of the given monthly total.
func (ct *CategoryTotal) Share(totalSpent float64) decimal.Decimal {
	if totalSpent <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromFloat(ct.Total).
		Div(decimal.NewFromFloat(totalSpent)).
		Mul(decimal.NewFromInt(100))
}
