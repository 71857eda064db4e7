// Package errors provides standardized error handling for the assistant core.
package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeStateLoadFailed ErrorCode = "STATE_LOAD_FAILED"
	ErrCodeStateSaveFailed ErrorCode = "STATE_SAVE_FAILED"

	ErrCodeBudgetWriteFailed      ErrorCode = "BUDGET_WRITE_FAILED"
	ErrCodeTransactionWriteFailed ErrorCode = "TRANSACTION_WRITE_FAILED"
	ErrCodeReminderWriteFailed    ErrorCode = "REMINDER_WRITE_FAILED"
	ErrCodeBalanceQueryFailed     ErrorCode = "BALANCE_QUERY_FAILED"
	ErrCodeRecordNotFound         ErrorCode = "RECORD_NOT_FOUND"

	ErrCodeInvalidSlotValue ErrorCode = "INVALID_SLOT_VALUE"
	ErrCodeNormalizerFailed ErrorCode = "NORMALIZER_FAILED"
	ErrCodeAuditWriteFailed ErrorCode = "AUDIT_WRITE_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// AsStandardError extracts a *StandardError from an error chain, if present.
func AsStandardError(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// ==========================
// Error Constructors
// ==========================

// NewStateLoadFailedError creates a retryable cache read error.
func NewStateLoadFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeStateLoadFailed,
		Message:   "Failed to load conversation state",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewStateSaveFailedError creates a retryable cache write error.
func NewStateSaveFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeStateSaveFailed,
		Message:   "Failed to persist conversation state",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewBudgetWriteFailedError creates a retryable storage error.
func NewBudgetWriteFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeBudgetWriteFailed,
		Message:   "Failed to write budget record",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewTransactionWriteFailedError creates a retryable storage error.
func NewTransactionWriteFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTransactionWriteFailed,
		Message:   "Failed to write transaction record",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewReminderWriteFailedError creates a retryable storage error.
func NewReminderWriteFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeReminderWriteFailed,
		Message:   "Failed to write reminder record",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewBalanceQueryFailedError creates a retryable storage read error.
func NewBalanceQueryFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeBalanceQueryFailed,
		Message:   "Failed to query balances",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewRecordNotFoundError creates a non-retryable not-found error, kept distinct
// from storage failures.
func NewRecordNotFoundError(kind, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRecordNotFound,
		Message:   fmt.Sprintf("%s not found", kind),
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidSlotValueError creates a non-retryable, user-correctable error.
func NewInvalidSlotValueError(slot, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidSlotValue,
		Message:   fmt.Sprintf("Invalid value for %s", slot),
		Details:   details,
		Retryable: false,
		Metadata:  map[string]interface{}{"slot": slot},
		Timestamp: time.Now().UTC(),
	}
}

// NewNormalizerFailedError creates a non-retryable normalizer error. Callers
// absorb it and fall back to raw input.
func NewNormalizerFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNormalizerFailed,
		Message:   "Command normalizer error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewAuditWriteFailedError creates a retryable audit log error.
func NewAuditWriteFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAuditWriteFailed,
		Message:   "Failed to write audit entry",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// GetRetryCount returns the recommended retry count per error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeBudgetWriteFailed,
		ErrCodeTransactionWriteFailed,
		ErrCodeReminderWriteFailed,
		ErrCodeBalanceQueryFailed,
		ErrCodeAuditWriteFailed:
		return 3

	case ErrCodeStateLoadFailed,
		ErrCodeStateSaveFailed:
		return 2

	default:
		return 0 // user-correctable and fallback errors: no retry
	}
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "STATE"):
		return "STATE"
	case strings.Contains(codeStr, "AUDIT"):
		return "AUDIT"
	case strings.Contains(codeStr, "BUDGET") ||
		strings.Contains(codeStr, "TRANSACTION") ||
		strings.Contains(codeStr, "REMINDER") ||
		strings.Contains(codeStr, "BALANCE") ||
		strings.Contains(codeStr, "RECORD"):
		return "STORAGE"
	case strings.Contains(codeStr, "INVALID"):
		return "VALIDATION"
	case strings.Contains(codeStr, "NORMALIZER"):
		return "AI"
	default:
		return "OTHER"
	}
}
