// internal/models/finance.go
package models

import "time"

// Budget is a per-category spending limit, unique per (user, category).
type Budget struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Category  string    `json:"category"`
	Limit     float64   `json:"limit"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Transaction is a single recorded expense.
type Transaction struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Category    string    `json:"category"`
	Amount      float64   `json:"amount"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Reminder is a recurring payment reminder anchored to a day of month.
type Reminder struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	Day       int       `json:"day"` // 1-28
	Frequency string    `json:"frequency"`
	CreatedAt time.Time `json:"createdAt"`
}

// AuditEntry records one committed business action.
type AuditEntry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
	Timestamp time.Time `json:"timestamp"`
}

// CategoryBalance is a composed view for balance checks: the budget limit for a
// category next to what was actually spent.
type CategoryBalance struct {
	Category  string  `json:"category"`
	Limit     float64 `json:"limit"`
	Spent     float64 `json:"spent"`
	Remaining float64 `json:"remaining"`
}
