// internal/actions/reminders.go
package actions

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	commonerrors "voicefin/internal/common/errors"
	"voicefin/internal/common/logger"
	"voicefin/internal/intent"
	"voicefin/internal/models"
)

// ReminderService owns the reminders table.
type ReminderService struct {
	db     *sql.DB
	logger logger.Logger
}

func NewReminderService(db *sql.DB, log logger.Logger) *ReminderService {
	return &ReminderService{
		db:     db,
		logger: log.With(map[string]interface{}{"component": "reminders"}),
	}
}

// CreateReminder stores a recurring reminder. An empty frequency defaults to
// monthly; the day must fall in [1,28] so every month has it.
func (s *ReminderService) CreateReminder(ctx context.Context, userID, name string, day int, frequency string) (*models.Reminder, error) {
	if day < intent.MinReminderDay || day > intent.MaxReminderDay {
		return nil, commonerrors.NewInvalidSlotValueError("day",
			fmt.Sprintf("day must be between %d and %d", intent.MinReminderDay, intent.MaxReminderDay))
	}
	if frequency == "" {
		frequency = intent.FrequencyMonthly
	}
	if frequency != intent.FrequencyWeekly && frequency != intent.FrequencyMonthly {
		return nil, commonerrors.NewInvalidSlotValueError("frequency",
			fmt.Sprintf("unsupported frequency %q", frequency))
	}

	reminder := &models.Reminder{
		ID:        uuid.New().String(),
		UserID:    userID,
		Name:      name,
		Day:       day,
		Frequency: frequency,
		CreatedAt: time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reminders (id, user_id, name, day, frequency, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		reminder.ID, reminder.UserID, reminder.Name, reminder.Day, reminder.Frequency, reminder.CreatedAt,
	)
	if err != nil {
		return nil, commonerrors.NewReminderWriteFailedError(err)
	}

	s.logger.Info("reminder created", map[string]interface{}{
		"userId":    userID,
		"name":      name,
		"day":       day,
		"frequency": frequency,
	})

	return reminder, nil
}

// GetReminders fetches all reminders for a user, ordered by day.
func (s *ReminderService) GetReminders(ctx context.Context, userID string) ([]models.Reminder, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, name, day, frequency, created_at
		FROM reminders
		WHERE user_id = $1
		ORDER BY day`,
		userID,
	)
	if err != nil {
		return nil, commonerrors.NewBalanceQueryFailedError(err)
	}
	defer rows.Close()

	var reminders []models.Reminder
	for rows.Next() {
		var r models.Reminder
		if err := rows.Scan(&r.ID, &r.UserID, &r.Name, &r.Day, &r.Frequency, &r.CreatedAt); err != nil {
			return nil, commonerrors.NewBalanceQueryFailedError(err)
		}
		reminders = append(reminders, r)
	}
	if err := rows.Err(); err != nil {
		return nil, commonerrors.NewBalanceQueryFailedError(err)
	}

	return reminders, nil
}

// DeleteReminder removes a reminder by id. Returns false when nothing matched.
func (s *ReminderService) DeleteReminder(ctx context.Context, reminderID, userID string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM reminders WHERE id = $1 AND user_id = $2`,
		reminderID, userID,
	)
	if err != nil {
		return false, commonerrors.NewReminderWriteFailedError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, commonerrors.NewReminderWriteFailedError(err)
	}
	return affected > 0, nil
}
