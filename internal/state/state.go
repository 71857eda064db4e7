// internal/state/state.go
package state

import (
	"voicefin/internal/intent"
)

// ConversationState is the per-user record of in-progress intent and partial
// slots. It is owned by exactly one user key and only this package writes it.
type ConversationState struct {
	Intent    intent.Intent  `json:"intent"`
	Slots     intent.SlotSet `json:"slots"`
	Completed bool           `json:"completed"`
}

// New returns a fresh empty state, the same shape a cache miss produces.
func New() *ConversationState {
	return &ConversationState{Intent: intent.Unknown}
}

// Merge sets the intent, replacing any prior value, then additively merges
// non-nil slot values into the existing set and refreshes the completed flag.
func Merge(s *ConversationState, in intent.Intent, slots intent.SlotSet) *ConversationState {
	s.Intent = in
	s.Slots.Merge(slots)
	s.Completed = IsComplete(s)
	return s
}

// IsComplete reports whether every required slot for the state's intent is
// populated. CHECK_BALANCE needs no slots and is always complete; UNKNOWN is
// never complete.
func IsComplete(s *ConversationState) bool {
	switch s.Intent {
	case intent.UpdateBudget:
		return s.Slots.Budget != nil &&
			s.Slots.Budget.Category != nil &&
			s.Slots.Budget.Amount != nil
	case intent.AddExpense:
		return s.Slots.Expense != nil &&
			s.Slots.Expense.Category != nil &&
			s.Slots.Expense.Amount != nil
	case intent.CreateReminder:
		return s.Slots.Reminder != nil &&
			s.Slots.Reminder.Name != nil &&
			s.Slots.Reminder.Day != nil
	case intent.CheckBalance:
		return true
	default:
		return false
	}
}

// MissingSlots names the required slots still unfilled, in a stable order, so
// results can tell the user which information is needed.
func MissingSlots(s *ConversationState) []string {
	var missing []string
	switch s.Intent {
	case intent.UpdateBudget:
		if s.Slots.Budget == nil || s.Slots.Budget.Category == nil {
			missing = append(missing, "category")
		}
		if s.Slots.Budget == nil || s.Slots.Budget.Amount == nil {
			missing = append(missing, "amount")
		}
	case intent.AddExpense:
		if s.Slots.Expense == nil || s.Slots.Expense.Category == nil {
			missing = append(missing, "category")
		}
		if s.Slots.Expense == nil || s.Slots.Expense.Amount == nil {
			missing = append(missing, "amount")
		}
	case intent.CreateReminder:
		if s.Slots.Reminder == nil || s.Slots.Reminder.Name == nil {
			missing = append(missing, "name")
		}
		if s.Slots.Reminder == nil || s.Slots.Reminder.Day == nil {
			missing = append(missing, "day")
		}
	}
	return missing
}
