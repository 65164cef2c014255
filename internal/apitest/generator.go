package apitest

import (
	"time"

	"bezorgen/internal/models"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
)

// stubTelegramUserID is the single account the fake backend serves.
const stubTelegramUserID int64 = 99001122

// Amount ranges per category, tuned so that generated months look like a
// plausible household rather than uniform noise.
var amountRanges = map[string][2]float64{
	models.CategoryGroceries:     {15.00, 250.00},
	models.CategoryGoingOut:      {8.00, 120.00},
	models.CategoryTransport:     {3.00, 80.00},
	models.CategoryShopping:      {25.00, 450.00},
	models.CategoryEntertainment: {10.00, 60.00},
	models.CategoryUtilities:     {50.00, 250.00},
	models.CategorySubscriptions: {5.00, 40.00},
	models.CategoryRent:          {400.00, 900.00},
	models.CategoryHealthFitness: {20.00, 300.00},
	models.CategoryTravel:        {100.00, 800.00},
	models.CategoryEducation:     {30.00, 200.00},
	models.CategoryIncome:        {2000.00, 8000.00},
	models.CategorySavings:       {100.00, 1500.00},
	models.CategoryInvestment:    {100.00, 2000.00},
	models.CategoryMiscellaneous: {10.00, 100.00},
}

func generateAmount(category string) float64 {
	r, ok := amountRanges[category]
	if !ok {
		r = [2]float64{10.00, 100.00}
	}
	amount, _ := decimal.NewFromFloat(gofakeit.Float64Range(r[0], r[1])).Round(2).Float64()
	return amount
}

func generateDescription(category string) string {
	switch category {
	case models.CategoryIncome:
		return "Salary - " + gofakeit.Company()
	case models.CategorySavings:
		return "Transfer to savings"
	case models.CategoryInvestment:
		return "Index fund purchase"
	default:
		return gofakeit.Company()
	}
}

// generateExpenses produces n expenses with timestamps spread uniformly
// across the window, NZD currency, ids unset so the store assigns them.
func generateExpenses(n int, start, end time.Time) []models.Expense {
	categories := models.AllCategories()
	expenses := make([]models.Expense, 0, n)

	for i := 0; i < n; i++ {
		category := categories[gofakeit.IntRange(0, len(categories)-1)]
		expenses = append(expenses, models.Expense{
			Amount:         generateAmount(category),
			Category:       category,
			Description:    generateDescription(category),
			CreatedAt:      gofakeit.DateRange(start, end).UTC(),
			Currency:       models.DefaultCurrency,
			TelegramUserID: stubTelegramUserID,
		})
	}
	return expenses
}
