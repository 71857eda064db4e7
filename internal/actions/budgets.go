// internal/actions/budgets.go
package actions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	commonerrors "voicefin/internal/common/errors"
	"voicefin/internal/common/logger"
	"voicefin/internal/models"
)

var ErrInvalidAmount = errors.New("amount must be greater than zero")

// BudgetService owns the budgets table: one spending limit per
// (user, category), created or updated atomically.
type BudgetService struct {
	db     *sql.DB
	logger logger.Logger
}

func NewBudgetService(db *sql.DB, log logger.Logger) *BudgetService {
	return &BudgetService{
		db:     db,
		logger: log.With(map[string]interface{}{"component": "budgets"}),
	}
}

// SetBudget creates or updates the budget for a category. The upsert is a
// single statement, so concurrent turns cannot race an insert against an
// update.
func (s *BudgetService) SetBudget(ctx context.Context, userID, category string, amount float64) (*models.Budget, error) {
	if amount <= 0 {
		return nil, commonerrors.NewInvalidSlotValueError("amount", ErrInvalidAmount.Error())
	}

	now := time.Now().UTC()
	budget := &models.Budget{
		ID:       uuid.New().String(),
		UserID:   userID,
		Category: category,
		Limit:    amount,
	}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO budgets (id, user_id, category, spend_limit, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (user_id, category)
		DO UPDATE SET spend_limit = EXCLUDED.spend_limit, updated_at = EXCLUDED.updated_at
		RETURNING id, created_at, updated_at`,
		budget.ID, userID, category, amount, now,
	).Scan(&budget.ID, &budget.CreatedAt, &budget.UpdatedAt)
	if err != nil {
		return nil, commonerrors.NewBudgetWriteFailedError(err)
	}

	s.logger.Info("budget set", map[string]interface{}{
		"userId":   userID,
		"category": category,
		"limit":    amount,
	})

	return budget, nil
}

// GetBudget fetches the budget for one category. Absence is reported as a
// distinct not-found error, never folded into storage failures.
func (s *BudgetService) GetBudget(ctx context.Context, userID, category string) (*models.Budget, error) {
	var b models.Budget
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, category, spend_limit, created_at, updated_at
		FROM budgets
		WHERE user_id = $1 AND category = $2`,
		userID, category,
	).Scan(&b.ID, &b.UserID, &b.Category, &b.Limit, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, commonerrors.NewRecordNotFoundError("budget", fmt.Sprintf("category: %s", category))
	}
	if err != nil {
		return nil, commonerrors.NewBalanceQueryFailedError(err)
	}
	return &b, nil
}

// GetAllBudgets fetches every budget for a user, ordered by category.
func (s *BudgetService) GetAllBudgets(ctx context.Context, userID string) ([]models.Budget, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, category, spend_limit, created_at, updated_at
		FROM budgets
		WHERE user_id = $1
		ORDER BY category`,
		userID,
	)
	if err != nil {
		return nil, commonerrors.NewBalanceQueryFailedError(err)
	}
	defer rows.Close()

	var budgets []models.Budget
	for rows.Next() {
		var b models.Budget
		if err := rows.Scan(&b.ID, &b.UserID, &b.Category, &b.Limit, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, commonerrors.NewBalanceQueryFailedError(err)
		}
		budgets = append(budgets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, commonerrors.NewBalanceQueryFailedError(err)
	}

	return budgets, nil
}

// DeleteBudget removes a category budget. Returns false when nothing matched.
func (s *BudgetService) DeleteBudget(ctx context.Context, userID, category string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM budgets WHERE user_id = $1 AND category = $2`,
		userID, category,
	)
	if err != nil {
		return false, commonerrors.NewBudgetWriteFailedError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, commonerrors.NewBudgetWriteFailedError(err)
	}
	return affected > 0, nil
}
