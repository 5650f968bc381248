package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hireflowhq/hireflow/internal/application/port"
	"github.com/hireflowhq/hireflow/internal/domain/entity"
)

// ActivityLogRepository implements port.ActivityLogRepository. The table is
// append-only; there are no update or delete operations.
type ActivityLogRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewActivityLogRepository creates a new activity log repository
func NewActivityLogRepository(db *sql.DB, logger *zap.Logger) port.ActivityLogRepository {
	return &ActivityLogRepository{
		db:     db,
		logger: logger,
	}
}

// Create appends an activity log entry
func (r *ActivityLogRepository) Create(ctx context.Context, log *entity.ActivityLogEntry) error {
	if log.Timestamp.IsZero() {
		log.Timestamp = time.Now().UTC()
	}

	query := `
		INSERT INTO requisition_activity_logs (requisition_id, user_id, username, action, details, timestamp)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		log.RequisitionID,
		log.UserID,
		log.Username,
		log.Action,
		log.Details,
		log.Timestamp,
	)
	if err != nil {
		r.logger.Error("Failed to create activity log",
			zap.Int64("requisition_id", log.RequisitionID), zap.Error(err))
		return fmt.Errorf("failed to create activity log: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	log.ID = id
	return nil
}

// ListByRequisitionID retrieves a requisition's audit trail, newest first
func (r *ActivityLogRepository) ListByRequisitionID(ctx context.Context, requisitionID int64) ([]*entity.ActivityLogEntry, error) {
	query := `
		SELECT id, requisition_id, user_id, username, action, details, timestamp
		FROM requisition_activity_logs
		WHERE requisition_id = ?
		ORDER BY timestamp DESC, id DESC
	`

	rows, err := getExecutor(ctx, r.db).QueryContext(ctx, query, requisitionID)
	if err != nil {
		r.logger.Error("Failed to list activity logs",
			zap.Int64("requisition_id", requisitionID), zap.Error(err))
		return nil, fmt.Errorf("failed to list activity logs: %w", err)
	}
	defer rows.Close()

	var entries []*entity.ActivityLogEntry
	for rows.Next() {
		var (
			entry   entity.ActivityLogEntry
			details sql.NullString
		)
		err := rows.Scan(
			&entry.ID,
			&entry.RequisitionID,
			&entry.UserID,
			&entry.Username,
			&entry.Action,
			&details,
			&entry.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan activity log: %w", err)
		}
		entry.Details = details.String
		entries = append(entries, &entry)
	}

	return entries, rows.Err()
}

// Verify interface compliance
var _ port.ActivityLogRepository = (*ActivityLogRepository)(nil)
