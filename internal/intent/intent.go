// internal/intent/intent.go
package intent

import (
	"fmt"
	"strings"

	"voicefin/internal/common/config"
)

// Intent is the category of finance action a user utterance requests.
type Intent string

const (
	UpdateBudget   Intent = "UPDATE_BUDGET"
	AddExpense     Intent = "ADD_EXPENSE"
	CreateReminder Intent = "CREATE_REMINDER"
	CheckBalance   Intent = "CHECK_BALANCE"
	Unknown        Intent = "UNKNOWN"
)

// Parse maps an intent name from configuration to an Intent.
func Parse(name string) (Intent, error) {
	switch Intent(strings.ToUpper(strings.TrimSpace(name))) {
	case UpdateBudget:
		return UpdateBudget, nil
	case AddExpense:
		return AddExpense, nil
	case CreateReminder:
		return CreateReminder, nil
	case CheckBalance:
		return CheckBalance, nil
	case Unknown:
		return Unknown, nil
	default:
		return Unknown, fmt.Errorf("unknown intent name %q", name)
	}
}

type keywordRule struct {
	intent   Intent
	keywords []string
}

// Classifier performs deterministic keyword-based intent detection. Rules are
// evaluated in declaration order; the first rule with a matching keyword wins.
type Classifier struct {
	rules []keywordRule
}

// NewClassifier builds a Classifier from the ordered rule table.
func NewClassifier(rules []config.IntentRule) (*Classifier, error) {
	if len(rules) == 0 {
		rules = config.DefaultIntentRules()
	}

	compiled := make([]keywordRule, 0, len(rules))
	for _, r := range rules {
		in, err := Parse(r.Intent)
		if err != nil {
			return nil, err
		}
		keywords := make([]string, 0, len(r.Keywords))
		for _, kw := range r.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw == "" {
				return nil, fmt.Errorf("empty keyword in rule for intent %s", in)
			}
			keywords = append(keywords, kw)
		}
		compiled = append(compiled, keywordRule{intent: in, keywords: keywords})
	}

	return &Classifier{rules: compiled}, nil
}

// Classify maps free-form text to an Intent. Case-insensitive substring match;
// empty input short-circuits to Unknown without evaluating any rule. Never
// returns an error.
func (c *Classifier) Classify(text string) Intent {
	if strings.TrimSpace(text) == "" {
		return Unknown
	}

	text = strings.ToLower(text)
	for _, rule := range c.rules {
		for _, kw := range rule.keywords {
			if strings.Contains(text, kw) {
				return rule.intent
			}
		}
	}

	return Unknown
}
