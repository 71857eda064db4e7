// internal/intent/slots_test.go
package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voicefin/internal/common/config"
)

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }
func intPtr(i int) *int           { return &i }

func TestExtractBudgetSlots(t *testing.T) {
	e := NewExtractor(nil)

	tests := []struct {
		name     string
		text     string
		category *string
		amount   *float64
	}{
		{"full command", "set food budget to 6000", strPtr("food"), floatPtr(6000)},
		{"category only", "set a budget for groceries", strPtr("food"), nil},
		{"amount only", "set my budget to 4000", nil, floatPtr(4000)},
		{"neither", "set a budget", nil, nil},
		{"synonym resolves", "petrol budget 2500", strPtr("travel"), floatPtr(2500)},
		{"seven digit amount", "set rent budget to 1234567", strPtr("rent"), floatPtr(1234567)},
		{"eight digit run ignored", "set rent budget to 12345678", strPtr("rent"), nil},
		{"negative amount ignored", "set food budget to -500", strPtr("food"), nil},
		{"later positive number wins over negative", "set food budget to -500 no wait 800", strPtr("food"), floatPtr(800)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := e.Extract(UpdateBudget, tt.text)
			require.NotNil(t, set.Budget)
			assert.Nil(t, set.Expense)
			assert.Nil(t, set.Reminder)
			assert.Equal(t, tt.category, set.Budget.Category)
			assert.Equal(t, tt.amount, set.Budget.Amount)
		})
	}
}

func TestExtractExpenseSlots(t *testing.T) {
	e := NewExtractor(nil)

	set := e.Extract(AddExpense, "I spent 250 on Groceries today")
	require.NotNil(t, set.Expense)
	assert.Equal(t, strPtr("food"), set.Expense.Category)
	assert.Equal(t, floatPtr(250), set.Expense.Amount)
	require.NotNil(t, set.Expense.Description)
	assert.Equal(t, "i spent 250 on groceries today", *set.Expense.Description)

	// First bounded number wins.
	set = e.Extract(AddExpense, "spent 100 then 200 on fuel")
	assert.Equal(t, floatPtr(100), set.Expense.Amount)
	assert.Equal(t, strPtr("travel"), set.Expense.Category)

	// A negated number is not an amount.
	set = e.Extract(AddExpense, "paid -100 for tea")
	assert.Nil(t, set.Expense.Amount)
	assert.Equal(t, strPtr("food"), set.Expense.Category)
}

func TestExtractReminderSlots(t *testing.T) {
	e := NewExtractor(nil)

	tests := []struct {
		name      string
		text      string
		remName   *string
		day       *int
		frequency *string
	}{
		{"name and day", "remind me to pay rent on 5", strPtr("pay rent"), intPtr(5), nil},
		{"weekly", "remind me to water plants on 3 weekly", strPtr("water plants"), intPtr(3), strPtr("weekly")},
		{"day too low", "remind me to pay rent on 0", strPtr("pay rent"), nil, nil},
		{"day too high", "remind me to pay rent on 35", strPtr("pay rent"), nil, nil},
		{"negative day", "remind me to pay rent on -5", strPtr("pay rent"), nil, nil},
		{"boundary low", "remind me to pay rent on 1", strPtr("pay rent"), intPtr(1), nil},
		{"boundary high", "remind me to pay rent on 28", strPtr("pay rent"), intPtr(28), nil},
		{"day 29 rejected", "remind me to pay rent on 29", strPtr("pay rent"), nil, nil},
		{"no day", "remind me to call mom", strPtr("call mom"), nil, nil},
		{"reminder noun form", "set a reminder to renew insurance on 10", strPtr("renew insurance"), intPtr(10), nil},
		{"no name", "remind me on 5", nil, intPtr(5), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := e.Extract(CreateReminder, tt.text)
			require.NotNil(t, set.Reminder)
			assert.Equal(t, tt.remName, set.Reminder.Name)
			assert.Equal(t, tt.day, set.Reminder.Day)
			assert.Equal(t, tt.frequency, set.Reminder.Frequency)
		})
	}
}

func TestExtractNoSlotIntents(t *testing.T) {
	e := NewExtractor(nil)

	assert.Equal(t, SlotSet{}, e.Extract(CheckBalance, "check balance"))
	assert.Equal(t, SlotSet{}, e.Extract(Unknown, "set food budget to 6000"))
}

func TestSlotSetMergeAdditive(t *testing.T) {
	existing := SlotSet{Budget: &BudgetSlots{Category: strPtr("food")}}

	// Incoming nil category must not erase the stored one.
	existing.Merge(SlotSet{Budget: &BudgetSlots{Amount: floatPtr(500)}})
	require.NotNil(t, existing.Budget)
	assert.Equal(t, strPtr("food"), existing.Budget.Category)
	assert.Equal(t, floatPtr(500), existing.Budget.Amount)

	// Non-nil incoming values overwrite.
	existing.Merge(SlotSet{Budget: &BudgetSlots{Category: strPtr("travel")}})
	assert.Equal(t, strPtr("travel"), existing.Budget.Category)
	assert.Equal(t, floatPtr(500), existing.Budget.Amount)

	// Empty incoming set is a no-op.
	existing.Merge(SlotSet{})
	assert.Equal(t, strPtr("travel"), existing.Budget.Category)
}

func TestSlotSetMergeReminder(t *testing.T) {
	var s SlotSet
	s.Merge(SlotSet{Reminder: &ReminderSlots{Name: strPtr("pay rent")}})
	s.Merge(SlotSet{Reminder: &ReminderSlots{Day: intPtr(5)}})

	require.NotNil(t, s.Reminder)
	assert.Equal(t, strPtr("pay rent"), s.Reminder.Name)
	assert.Equal(t, intPtr(5), s.Reminder.Day)
	assert.Nil(t, s.Reminder.Frequency)
}

func TestTaxonomyLongestMatchWins(t *testing.T) {
	x := NewTaxonomy([]config.CategoryRule{
		{Name: "food", Terms: []string{"food"}},
		{Name: "utilities", Terms: []string{"water bill", "water"}},
	})

	assert.Equal(t, strPtr("utilities"), x.Resolve("pay the water bill"))
	assert.Equal(t, strPtr("food"), x.Resolve("food shopping list"))
	assert.Nil(t, x.Resolve("nothing relevant here"))
}

func TestTaxonomyDeclarationOrderBreaksTies(t *testing.T) {
	x := NewTaxonomy([]config.CategoryRule{
		{Name: "first", Terms: []string{"gas"}},
		{Name: "second", Terms: []string{"car"}},
	})

	// Both three-letter terms present; the earlier declared one wins.
	assert.Equal(t, strPtr("first"), x.Resolve("gas for the car"))
}
