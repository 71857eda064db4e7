// internal/intent/slots.go
package intent

import (
	"regexp"
	"strconv"
	"strings"

	"voicefin/internal/common/config"
)

const (
	FrequencyWeekly  = "weekly"
	FrequencyMonthly = "monthly"

	// Reminders are anchored to a day every month has.
	MinReminderDay = 1
	MaxReminderDay = 28
)

// BudgetSlots are the parameters for UPDATE_BUDGET. Nil means "not yet
// provided", which completeness checks must distinguish from zero.
type BudgetSlots struct {
	Category *string  `json:"category,omitempty"`
	Amount   *float64 `json:"amount,omitempty"`
}

// ExpenseSlots are the parameters for ADD_EXPENSE. Description is optional and
// never blocks completeness.
type ExpenseSlots struct {
	Category    *string  `json:"category,omitempty"`
	Amount      *float64 `json:"amount,omitempty"`
	Description *string  `json:"description,omitempty"`
}

// ReminderSlots are the parameters for CREATE_REMINDER. Frequency defaults to
// monthly at dispatch when left nil.
type ReminderSlots struct {
	Name      *string `json:"name,omitempty"`
	Day       *int    `json:"day,omitempty"`
	Frequency *string `json:"frequency,omitempty"`
}

// SlotSet is the tagged union of per-intent slot shapes. At most one branch is
// populated at a time; CHECK_BALANCE and UNKNOWN carry none.
type SlotSet struct {
	Budget   *BudgetSlots   `json:"budget,omitempty"`
	Expense  *ExpenseSlots  `json:"expense,omitempty"`
	Reminder *ReminderSlots `json:"reminder,omitempty"`
}

// Merge additively folds newer extractions into the set. Non-nil values win;
// a nil in the incoming set never erases an existing value.
func (s *SlotSet) Merge(in SlotSet) {
	if in.Budget != nil {
		if s.Budget == nil {
			s.Budget = &BudgetSlots{}
		}
		if in.Budget.Category != nil {
			s.Budget.Category = in.Budget.Category
		}
		if in.Budget.Amount != nil {
			s.Budget.Amount = in.Budget.Amount
		}
	}
	if in.Expense != nil {
		if s.Expense == nil {
			s.Expense = &ExpenseSlots{}
		}
		if in.Expense.Category != nil {
			s.Expense.Category = in.Expense.Category
		}
		if in.Expense.Amount != nil {
			s.Expense.Amount = in.Expense.Amount
		}
		if in.Expense.Description != nil {
			s.Expense.Description = in.Expense.Description
		}
	}
	if in.Reminder != nil {
		if s.Reminder == nil {
			s.Reminder = &ReminderSlots{}
		}
		if in.Reminder.Name != nil {
			s.Reminder.Name = in.Reminder.Name
		}
		if in.Reminder.Day != nil {
			s.Reminder.Day = in.Reminder.Day
		}
		if in.Reminder.Frequency != nil {
			s.Reminder.Frequency = in.Reminder.Frequency
		}
	}
}

var (
	// Word-bounded run of 1-7 contiguous digits. Longer runs do not match at
	// all, they are not truncated.
	numberPattern = regexp.MustCompile(`\b\d{1,7}\b`)

	reminderNamePattern = regexp.MustCompile(`remind(?:er)?(?:\s+me)?\s+to\s+(.+?)(?:\s+on\s+-?\d.*)?$`)
)

// firstNumber returns the first usable digit run in the text. A run preceded
// by a minus sign is a negative value, not a usable amount or day.
func firstNumber(text string) string {
	for _, loc := range numberPattern.FindAllStringIndex(text, -1) {
		if loc[0] > 0 && text[loc[0]-1] == '-' {
			continue
		}
		return text[loc[0]:loc[1]]
	}
	return ""
}

// Extractor performs deterministic per-intent slot extraction. Pure: no side
// effects, no errors.
type Extractor struct {
	taxonomy *Taxonomy
}

// NewExtractor builds an Extractor over the configured category taxonomy.
func NewExtractor(categories []config.CategoryRule) *Extractor {
	return &Extractor{taxonomy: NewTaxonomy(categories)}
}

// Extract runs the extraction function for the given intent. CHECK_BALANCE and
// UNKNOWN have no slots and yield an empty set.
func (e *Extractor) Extract(in Intent, text string) SlotSet {
	switch in {
	case UpdateBudget:
		return SlotSet{Budget: e.extractBudgetSlots(text)}
	case AddExpense:
		return SlotSet{Expense: e.extractExpenseSlots(text)}
	case CreateReminder:
		return SlotSet{Reminder: e.extractReminderSlots(text)}
	default:
		return SlotSet{}
	}
}

func (e *Extractor) extractBudgetSlots(text string) *BudgetSlots {
	text = strings.ToLower(text)
	return &BudgetSlots{
		Category: e.taxonomy.Resolve(text),
		Amount:   extractAmount(text),
	}
}

func (e *Extractor) extractExpenseSlots(text string) *ExpenseSlots {
	text = strings.ToLower(text)
	slots := &ExpenseSlots{
		Category: e.taxonomy.Resolve(text),
		Amount:   extractAmount(text),
	}
	// The raw utterance doubles as the audit trail for the expense.
	desc := strings.TrimSpace(text)
	if desc != "" {
		slots.Description = &desc
	}
	return slots
}

func (e *Extractor) extractReminderSlots(text string) *ReminderSlots {
	text = strings.ToLower(text)
	slots := &ReminderSlots{
		Name: extractReminderName(text),
		Day:  extractDay(text),
	}
	if strings.Contains(text, FrequencyWeekly) {
		freq := FrequencyWeekly
		slots.Frequency = &freq
	}
	return slots
}

func extractAmount(text string) *float64 {
	match := firstNumber(text)
	if match == "" {
		return nil
	}
	val, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return nil
	}
	return &val
}

// extractDay returns the first number in the text when it is a valid day of
// month. Out-of-range values count as "no day found", never clamped.
func extractDay(text string) *int {
	match := firstNumber(text)
	if match == "" {
		return nil
	}
	day, err := strconv.Atoi(match)
	if err != nil || day < MinReminderDay || day > MaxReminderDay {
		return nil
	}
	return &day
}

func extractReminderName(text string) *string {
	m := reminderNamePattern.FindStringSubmatch(text)
	if len(m) < 2 {
		return nil
	}
	name := strings.TrimSpace(m[1])
	if name == "" {
		return nil
	}
	return &name
}
