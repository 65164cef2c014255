package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidCategory(t *testing.T) {
	for _, category := range AllCategories() {
		assert.True(t, IsValidCategory(category), "expected %q to be valid", category)
	}

	assert.False(t, IsValidCategory("groceries")) // case sensitive
	assert.False(t, IsValidCategory("Gambling"))
	assert.False(t, IsValidCategory(""))
}

func TestIsAllocationCategory(t *testing.T) {
	assert.True(t, IsAllocationCategory(CategoryIncome))
	assert.True(t, IsAllocationCategory(CategorySavings))
	assert.True(t, IsAllocationCategory(CategoryInvestment))
	assert.False(t, IsAllocationCategory(CategoryGroceries))
}

func TestCanUnlink(t *testing.T) {
	telegram := LinkedProvider{ID: 1, Provider: "telegram", ProviderUserID: "42"}
	google := LinkedProvider{ID: 2, Provider: "google", ProviderUserID: "g-42"}

	assert.False(t, CanUnlink(nil))
	assert.False(t, CanUnlink([]LinkedProvider{telegram}))
	assert.True(t, CanUnlink([]LinkedProvider{telegram, google}))
}
