// internal/intent/intent_test.go
package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voicefin/internal/common/config"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Intent
		wantErr  bool
	}{
		{"update budget", "UPDATE_BUDGET", UpdateBudget, false},
		{"lowercase", "add_expense", AddExpense, false},
		{"padded", "  CHECK_BALANCE  ", CheckBalance, false},
		{"reminder", "CREATE_REMINDER", CreateReminder, false},
		{"unknown literal", "UNKNOWN", Unknown, false},
		{"garbage", "DELETE_EVERYTHING", Unknown, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestClassifierPriorityOrder(t *testing.T) {
	c, err := NewClassifier(nil)
	require.NoError(t, err)

	tests := []struct {
		name     string
		text     string
		expected Intent
	}{
		{"budget keyword", "set food budget to 5000", UpdateBudget},
		{"limit keyword", "change my travel limit", UpdateBudget},
		{"expense keyword", "I spent 200 on groceries", AddExpense},
		{"paid keyword", "paid 150 for petrol", AddExpense},
		{"reminder keyword", "remind me to pay rent on 5", CreateReminder},
		{"balance keyword", "what's my balance", CheckBalance},
		{"money left phrase", "how much money left this month", CheckBalance},
		// Budget outranks expense when both keyword sets match.
		{"budget beats expense", "I paid too much, raise my budget", UpdateBudget},
		// Reminder outranks expense.
		{"reminder beats expense", "remind me that I spent 100", CreateReminder},
		{"no keywords", "hello there", Unknown},
		{"empty", "", Unknown},
		{"whitespace only", "   ", Unknown},
		{"uppercase input", "SET FOOD BUDGET TO 5000", UpdateBudget},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, c.Classify(tt.text))
		})
	}
}

func TestClassifierCustomRules(t *testing.T) {
	c, err := NewClassifier([]config.IntentRule{
		{Intent: "CHECK_BALANCE", Keywords: []string{"saldo"}},
	})
	require.NoError(t, err)

	assert.Equal(t, CheckBalance, c.Classify("mostrar saldo"))
	assert.Equal(t, Unknown, c.Classify("set food budget to 5000"))
}

func TestClassifierRejectsBadRules(t *testing.T) {
	_, err := NewClassifier([]config.IntentRule{
		{Intent: "NOT_A_THING", Keywords: []string{"x"}},
	})
	assert.Error(t, err)

	_, err = NewClassifier([]config.IntentRule{
		{Intent: "ADD_EXPENSE", Keywords: []string{"  "}},
	})
	assert.Error(t, err)
}
