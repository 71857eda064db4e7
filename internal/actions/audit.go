// internal/actions/audit.go
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

// AuditLog writes one row per committed business action. The dialogue layer
// calls Record exactly once per successful dispatch.
type AuditLog struct {
	db     *sql.DB
	logger logger.Logger
}

func NewAuditLog(db *sql.DB, log logger.Logger) *AuditLog {
	return &AuditLog{
		db:     db,
		logger: log.With(map[string]interface{}{"component": "audit"}),
	}
}

// Record inserts an audit entry. Failures are surfaced so callers can decide
// to log-and-continue; a failed audit write never rolls back the action it
// describes.
func (a *AuditLog) Record(ctx context.Context, userID, action, details string) (*models.AuditEntry, error) {
	entry := &models.AuditEntry{
		ID:        uuid.New().String(),
		UserID:    userID,
		Action:    action,
		Details:   details,
		Timestamp: time.Now().UTC(),
	}

	_, err := a.db.ExecContext(ctx, `
		INSERT INTO audit_logs (id, user_id, action, details, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		entry.ID, entry.UserID, entry.Action, entry.Details, entry.Timestamp,
	)
	if err != nil {
		return nil, commonerrors.NewAuditWriteFailedError(err)
	}

	return entry, nil
}
