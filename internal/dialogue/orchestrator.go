// internal/dialogue/orchestrator.go
package dialogue

import (
	"context"
	"fmt"
	"strings"
	"time"

	commonerrors "voicefin/internal/common/errors"
	"voicefin/internal/common/logger"
	"voicefin/internal/common/metrics"
	"voicefin/internal/intent"
	"voicefin/internal/models"
	"voicefin/internal/state"
)

// BudgetActions is the slice of the budget service the orchestrator needs.
type BudgetActions interface {
	SetBudget(ctx context.Context, userID, category string, amount float64) (*models.Budget, error)
	GetAllBudgets(ctx context.Context, userID string) ([]models.Budget, error)
}

// TransactionActions is the slice of the transaction service the orchestrator needs.
type TransactionActions interface {
	AddTransaction(ctx context.Context, userID, category string, amount float64, description string) (*models.Transaction, error)
	GetTotalSpent(ctx context.Context, userID string, category *string) (float64, error)
}

// ReminderActions is the slice of the reminder service the orchestrator needs.
type ReminderActions interface {
	CreateReminder(ctx context.Context, userID, name string, day int, frequency string) (*models.Reminder, error)
}

// Auditor records one entry per committed action.
type Auditor interface {
	Record(ctx context.Context, userID, action, details string) (*models.AuditEntry, error)
}

// TextNormalizer is the optional best-effort command rewriter. Its output is
// always re-parsed by the deterministic pipeline.
type TextNormalizer interface {
	Normalize(ctx context.Context, text string) string
}

// Orchestrator drives the per-turn state machine: classify, extract, merge,
// and either ask for more information or dispatch a business action.
type Orchestrator struct {
	classifier   *intent.Classifier
	extractor    *intent.Extractor
	store        state.Store
	budgets      BudgetActions
	transactions TransactionActions
	reminders    ReminderActions
	audit        Auditor
	normalizer   TextNormalizer
	logger       logger.Logger
}

func NewOrchestrator(
	classifier *intent.Classifier,
	extractor *intent.Extractor,
	store state.Store,
	budgets BudgetActions,
	transactions TransactionActions,
	reminders ReminderActions,
	audit Auditor,
	log logger.Logger,
) *Orchestrator {
	return &Orchestrator{
		classifier:   classifier,
		extractor:    extractor,
		store:        store,
		budgets:      budgets,
		transactions: transactions,
		reminders:    reminders,
		audit:        audit,
		logger:       log.With(map[string]interface{}{"component": "dialogue"}),
	}
}

// WithNormalizer attaches the optional command normalizer.
func (o *Orchestrator) WithNormalizer(n TextNormalizer) *Orchestrator {
	o.normalizer = n
	return o
}

// Turn processes one user utterance. Same-user turns are linearized on a
// per-user lock held across the whole load-merge-save cycle. An error return
// means the state store was unreachable; every conversational outcome is a
// TurnResult.
func (o *Orchestrator) Turn(ctx context.Context, userID, text string) (*TurnResult, error) {
	start := time.Now()

	unlock := o.store.Lock(userID)
	defer unlock()

	st, err := o.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}

	if o.normalizer != nil {
		text = o.normalizer.Normalize(ctx, text)
	}

	detected := o.classifier.Classify(text)

	// A keyword-less utterance during an in-flight conversation is a slot
	// answer, not a new command.
	if detected == intent.Unknown && st.Intent != intent.Unknown {
		detected = st.Intent
	}

	log := o.logger.With(map[string]interface{}{
		"userId": userID,
		"intent": string(detected),
	})

	if detected == intent.Unknown {
		// Deliberate fallback, not an error: the state is saved untouched so
		// a later turn can still start a conversation.
		if err := o.store.Save(ctx, userID, st); err != nil {
			return nil, err
		}
		result := &TurnResult{
			Success: false,
			Intent:  intent.Unknown,
			Stage:   StageUnsupported,
			Reason:  ReasonUnsupported,
			Message: "Sorry, I can't help with that yet.",
		}
		o.observe(detected, result, start)
		return result, nil
	}

	slots := o.extractor.Extract(detected, text)
	state.Merge(st, detected, slots)

	if !st.Completed {
		if err := o.store.Save(ctx, userID, st); err != nil {
			return nil, err
		}
		missing := state.MissingSlots(st)
		result := &TurnResult{
			Success: true,
			Intent:  detected,
			Stage:   StageAwaitingSlots,
			Reason:  ReasonMissingSlots,
			Message: fmt.Sprintf("I still need the following to continue: %s.", strings.Join(missing, ", ")),
			Missing: missing,
		}
		log.Info("turn needs more information", map[string]interface{}{"missing": missing})
		o.observe(detected, result, start)
		return result, nil
	}

	data, message, dispatchErr := o.dispatch(ctx, userID, st)
	if dispatchErr != nil {
		// The slot set stays persisted so a retry does not re-ask the user.
		if err := o.store.Save(ctx, userID, st); err != nil {
			return nil, err
		}
		result := o.failureResult(detected, dispatchErr)
		log.WithError(dispatchErr).Warn("dispatch failed", map[string]interface{}{"reason": string(result.Reason)})
		o.observe(detected, result, start)
		return result, nil
	}

	if err := o.store.Clear(ctx, userID); err != nil {
		return nil, err
	}

	result := &TurnResult{
		Success: true,
		Intent:  detected,
		Stage:   StageDispatched,
		Reason:  ReasonCompleted,
		Message: message,
		Data:    data,
	}
	log.Info("action dispatched", nil)
	metrics.ActionsDispatched.WithLabelValues(string(detected)).Inc()
	o.observe(detected, result, start)
	return result, nil
}

// dispatch invokes the business action for a complete slot set and audits the
// commit exactly once. Audit failures are logged, never fail the action.
func (o *Orchestrator) dispatch(ctx context.Context, userID string, st *state.ConversationState) (interface{}, string, error) {
	switch st.Intent {
	case intent.UpdateBudget:
		slots := st.Slots.Budget
		budget, err := o.budgets.SetBudget(ctx, userID, *slots.Category, *slots.Amount)
		if err != nil {
			return nil, "", err
		}
		o.recordAudit(ctx, userID, "UPDATE_BUDGET",
			fmt.Sprintf("%s budget set to %.2f", budget.Category, budget.Limit))
		return budget, fmt.Sprintf("Budget for %s set to %.0f.", budget.Category, budget.Limit), nil

	case intent.AddExpense:
		slots := st.Slots.Expense
		description := ""
		if slots.Description != nil {
			description = *slots.Description
		}
		tx, err := o.transactions.AddTransaction(ctx, userID, *slots.Category, *slots.Amount, description)
		if err != nil {
			return nil, "", err
		}
		o.recordAudit(ctx, userID, "ADD_EXPENSE",
			fmt.Sprintf("%s expense of %.2f", tx.Category, tx.Amount))
		return tx, fmt.Sprintf("Recorded %.0f spent on %s.", tx.Amount, tx.Category), nil

	case intent.CreateReminder:
		slots := st.Slots.Reminder
		frequency := ""
		if slots.Frequency != nil {
			frequency = *slots.Frequency
		}
		reminder, err := o.reminders.CreateReminder(ctx, userID, *slots.Name, *slots.Day, frequency)
		if err != nil {
			return nil, "", err
		}
		o.recordAudit(ctx, userID, "CREATE_REMINDER",
			fmt.Sprintf("%s on day %d (%s)", reminder.Name, reminder.Day, reminder.Frequency))
		return reminder, fmt.Sprintf("Reminder %q set for day %d, %s.", reminder.Name, reminder.Day, reminder.Frequency), nil

	case intent.CheckBalance:
		balances, err := o.checkBalances(ctx, userID)
		if err != nil {
			return nil, "", err
		}
		o.recordAudit(ctx, userID, "CHECK_BALANCE",
			fmt.Sprintf("balance check across %d categories", len(balances)))
		return balances, "Here are your current balances.", nil

	default:
		// Unreachable: Unknown never reaches dispatch.
		return nil, "", commonerrors.NewInvalidSlotValueError("intent", string(st.Intent))
	}
}

func (o *Orchestrator) checkBalances(ctx context.Context, userID string) ([]models.CategoryBalance, error) {
	budgets, err := o.budgets.GetAllBudgets(ctx, userID)
	if err != nil {
		return nil, err
	}

	balances := make([]models.CategoryBalance, 0, len(budgets))
	for _, b := range budgets {
		category := b.Category
		spent, err := o.transactions.GetTotalSpent(ctx, userID, &category)
		if err != nil {
			return nil, err
		}
		balances = append(balances, models.CategoryBalance{
			Category:  b.Category,
			Limit:     b.Limit,
			Spent:     spent,
			Remaining: b.Limit - spent,
		})
	}
	return balances, nil
}

func (o *Orchestrator) recordAudit(ctx context.Context, userID, action, details string) {
	if o.audit == nil {
		return
	}
	if _, err := o.audit.Record(ctx, userID, action, details); err != nil {
		o.logger.WithError(err).Warn("audit write failed", map[string]interface{}{
			"userId": userID,
			"action": action,
		})
	}
}

// failureResult maps a dispatch error to a result the caller can act on:
// invalid slot values are user-correctable, everything else is a business
// failure worth retrying.
func (o *Orchestrator) failureResult(in intent.Intent, err error) *TurnResult {
	reason := ReasonActionFailed
	message := "The action could not be completed. Please try again."

	if stdErr, ok := commonerrors.AsStandardError(err); ok {
		if stdErr.Code == commonerrors.ErrCodeInvalidSlotValue {
			reason = ReasonInvalidSlotValue
			message = stdErr.Message + ". Please provide a new value."
		}
	}

	return &TurnResult{
		Success: false,
		Intent:  in,
		Stage:   StageReady,
		Reason:  reason,
		Message: message,
	}
}

func (o *Orchestrator) observe(in intent.Intent, result *TurnResult, start time.Time) {
	metrics.TurnsProcessed.WithLabelValues(string(in), string(result.Stage)).Inc()
	metrics.TurnDuration.WithLabelValues(string(in)).Observe(time.Since(start).Seconds())
	if !result.Success {
		metrics.TurnsFailed.WithLabelValues(string(in), string(result.Reason)).Inc()
	}
}
