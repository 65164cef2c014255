package models

// Expense categories as stored by the backend. The three allocation
// categories (Income, Savings, Investment) are excluded from spending
// totals and drive their own monthly aggregates.
const (
	CategoryIncome        = "Income"
	CategorySavings       = "Savings"
	CategoryUtilities     = "Utilities"
	CategorySubscriptions = "Subscriptions"
	CategoryRent          = "Rent"
	CategoryHealthFitness = "Health & Fitness"
	CategoryTransport     = "Transport"
	CategoryGroceries     = "Groceries"
	CategoryGoingOut      = "Going Out"
	CategoryInvestment    = "Investment"
	CategoryShopping      = "Shopping"
	CategoryEducation     = "Education"
	CategoryTravel        = "Travel"
	CategoryEntertainment = "Entertainment"
	CategoryMiscellaneous = "Miscellaneous"
)

// AllCategories returns all valid category constants
func AllCategories() []string {
	return []string{
		CategoryIncome,
		CategorySavings,
		CategoryUtilities,
		CategorySubscriptions,
		CategoryRent,
		CategoryHealthFitness,
		CategoryTransport,
		CategoryGroceries,
		CategoryGoingOut,
		CategoryInvestment,
		CategoryShopping,
		CategoryEducation,
		CategoryTravel,
		CategoryEntertainment,
		CategoryMiscellaneous,
	}
}

// IsValidCategory checks if a category string is valid
func IsValidCategory(category string) bool {
	for _, validCategory := range AllCategories() {
		if category == validCategory {
			return true
		}
	}
	return false
}

// IsAllocationCategory reports whether the category represents money set
// aside rather than spent.
func IsAllocationCategory(category string) bool {
	return category == CategoryIncome || category == CategorySavings || category == CategoryInvestment
}
