// internal/actions/transactions.go
package actions

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	commonerrors "voicefin/internal/common/errors"
	"voicefin/internal/common/logger"
	"voicefin/internal/models"
)

// TransactionService owns the transactions table.
type TransactionService struct {
	db     *sql.DB
	logger logger.Logger
}

func NewTransactionService(db *sql.DB, log logger.Logger) *TransactionService {
	return &TransactionService{
		db:     db,
		logger: log.With(map[string]interface{}{"component": "transactions"}),
	}
}

// AddTransaction records one expense. Description may be empty.
func (s *TransactionService) AddTransaction(ctx context.Context, userID, category string, amount float64, description string) (*models.Transaction, error) {
	if amount <= 0 {
		return nil, commonerrors.NewInvalidSlotValueError("amount", ErrInvalidAmount.Error())
	}

	tx := &models.Transaction{
		ID:          uuid.New().String(),
		UserID:      userID,
		Category:    category,
		Amount:      amount,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions (id, user_id, category, amount, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		tx.ID, tx.UserID, tx.Category, tx.Amount, nullableString(tx.Description), tx.CreatedAt,
	)
	if err != nil {
		return nil, commonerrors.NewTransactionWriteFailedError(err)
	}

	s.logger.Info("expense recorded", map[string]interface{}{
		"userId":   userID,
		"category": category,
		"amount":   amount,
	})

	return tx, nil
}

// GetTransactions fetches the most recent transactions for a user.
func (s *TransactionService) GetTransactions(ctx context.Context, userID string, limit int) ([]models.Transaction, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, category, amount, COALESCE(description, ''), created_at
		FROM transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, commonerrors.NewBalanceQueryFailedError(err)
	}
	defer rows.Close()

	var txs []models.Transaction
	for rows.Next() {
		var t models.Transaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.Category, &t.Amount, &t.Description, &t.CreatedAt); err != nil {
			return nil, commonerrors.NewBalanceQueryFailedError(err)
		}
		txs = append(txs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, commonerrors.NewBalanceQueryFailedError(err)
	}

	return txs, nil
}

// GetTotalSpent sums transaction amounts for a user, optionally restricted to
// one category.
func (s *TransactionService) GetTotalSpent(ctx context.Context, userID string, category *string) (float64, error) {
	var total float64
	var err error

	if category != nil {
		err = s.db.QueryRowContext(ctx, `
			SELECT COALESCE(SUM(amount), 0)
			FROM transactions
			WHERE user_id = $1 AND category = $2`,
			userID, *category,
		).Scan(&total)
	} else {
		err = s.db.QueryRowContext(ctx, `
			SELECT COALESCE(SUM(amount), 0)
			FROM transactions
			WHERE user_id = $1`,
			userID,
		).Scan(&total)
	}
	if err != nil {
		return 0, commonerrors.NewBalanceQueryFailedError(err)
	}

	return total, nil
}

func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
