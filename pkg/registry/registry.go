// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"os"
)

func LoadCatalog(path string) (*IntentCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var catalog IntentCatalog
	err = json.Unmarshal(data, &catalog)
	return &catalog, err
}

// DefaultCatalog is the built-in catalog used when no file is configured.
func DefaultCatalog() *IntentCatalog {
	return &IntentCatalog{
		Version: "1.0.0",
		Intents: []IntentEntry{
			{
				Name:          "UPDATE_BUDGET",
				DisplayName:   "Set budget",
				Description:   "Create or update the monthly spending limit for a category",
				CanonicalForm: "set <category> budget to <amount>",
				RequiredSlots: []string{"category", "amount"},
				Examples:      []string{"set food budget to 6000", "change my travel limit to 2000"},
			},
			{
				Name:          "ADD_EXPENSE",
				DisplayName:   "Add expense",
				Description:   "Record money spent in a category",
				CanonicalForm: "add expense <amount> <category>",
				RequiredSlots: []string{"category", "amount"},
				Examples:      []string{"I spent 250 on groceries", "paid 80 for a cab"},
			},
			{
				Name:          "CREATE_REMINDER",
				DisplayName:   "Create reminder",
				Description:   "Set a recurring payment reminder on a day of the month",
				CanonicalForm: "remind me to <name> on <day>",
				RequiredSlots: []string{"name", "day"},
				Examples:      []string{"remind me to pay rent on 5"},
			},
			{
				Name:          "CHECK_BALANCE",
				DisplayName:   "Check balance",
				Description:   "Show spending against budget for every category",
				CanonicalForm: "check balance",
				RequiredSlots: []string{},
				Examples:      []string{"check balance", "how much money is left"},
			},
		},
	}
}
