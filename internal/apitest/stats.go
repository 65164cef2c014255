package apitest

import (
	"sort"
	"time"

	"bezorgen/internal/models"

	"github.com/shopspring/decimal"
)

// computeMonthlyStats aggregates the stored expenses for one calendar
// month and currency. Income, Savings and Investment feed their own
// totals and stay out of total_spent and the category breakdown, the
// same split the real backend applies.
func (s *Server) computeMonthlyStats(month, year int, currency string) models.MonthlyStats {
	var (
		spent, income, savings, invested decimal.Decimal
		transactionCount, expenseCount   int64
	)
	byCategory := map[string]*models.CategoryTotal{}

	for _, e := range s.sortedExpenses() {
		created := e.CreatedAt.UTC()
		if created.Year() != year || created.Month() != time.Month(month) || e.Currency != currency {
			continue
		}
		transactionCount++
		amount := decimal.NewFromFloat(e.Amount)

		switch e.Category {
		case models.CategoryIncome:
			income = income.Add(amount)
			continue
		case models.CategorySavings:
			savings = savings.Add(amount)
			continue
		case models.CategoryInvestment:
			invested = invested.Add(amount)
			continue
		}

		expenseCount++
		spent = spent.Add(amount)
		ct, ok := byCategory[e.Category]
		if !ok {
			ct = &models.CategoryTotal{Category: e.Category}
			byCategory[e.Category] = ct
		}
		total := decimal.NewFromFloat(ct.Total).Add(amount)
		ct.Total, _ = total.Float64()
		ct.Count++
	}

	breakdown := make([]models.CategoryTotal, 0, len(byCategory))
	for _, ct := range byCategory {
		breakdown = append(breakdown, *ct)
	}
	sort.Slice(breakdown, func(i, j int) bool { return breakdown[i].Total > breakdown[j].Total })

	totalSpent, _ := spent.Float64()
	totalIncome, _ := income.Float64()
	totalSavings, _ := savings.Float64()
	totalInvestment, _ := invested.Float64()

	return models.MonthlyStats{
		TotalSpent:        totalSpent,
		TotalIncome:       totalIncome,
		TotalSavings:      totalSavings,
		TotalInvestment:   totalInvestment,
		TransactionCount:  transactionCount,
		ExpenseCount:      expenseCount,
		CategoryBreakdown: breakdown,
		Currency:          currency,
	}
}
