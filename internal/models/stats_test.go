package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestMonthlyStats_Allocated(t *testing.T) {
	stats := &MonthlyStats{TotalSavings: 200.10, TotalInvestment: 99.90}
	assert.True(t, stats.Allocated().Equal(decimal.NewFromInt(300)))
}

func TestMonthlyStats_NetBalance(t *testing.T) {
	stats := &MonthlyStats{
		TotalIncome:     5000,
		TotalSpent:      1234.56,
		TotalSavings:    1000,
		TotalInvestment: 500,
	}
	assert.True(t, stats.NetBalance().Equal(decimal.RequireFromString("2265.44")))
}

func TestMonthlyStats_NetBalance_CanBeNegative(t *testing.T) {
	stats := &MonthlyStats{TotalIncome: 100, TotalSpent: 250}
	assert.True(t, stats.NetBalance().IsNegative())
}

func TestMonthlyStats_AveragePerTransaction(t *testing.T) {
	stats := &MonthlyStats{TotalSpent: 90, TransactionCount: 4}
	assert.True(t, stats.AveragePerTransaction().Equal(decimal.RequireFromString("22.5")))
}

func TestMonthlyStats_AveragePerTransaction_EmptyMonth(t *testing.T) {
	stats := &MonthlyStats{TotalSpent: 0, TransactionCount: 0}
	assert.True(t, stats.AveragePerTransaction().IsZero())
}

func TestCategoryTotal_Average(t *testing.T) {
	ct := &CategoryTotal{Category: CategoryGroceries, Total: 150, Count: 3}
	assert.True(t, ct.Average().Equal(decimal.NewFromInt(50)))

	empty := &CategoryTotal{Category: CategoryTravel}
	assert.True(t, empty.Average().IsZero())
}

func TestCategoryTotal_Share(t *testing.T) {
	ct := &CategoryTotal{Category: CategoryRent, Total: 250}
	assert.True(t, ct.Share(1000).Equal(decimal.NewFromInt(25)))
	assert.True(t, ct.Share(0).IsZero())
}
