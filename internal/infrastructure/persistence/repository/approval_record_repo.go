package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/hireflowhq/hireflow/internal/application/port"
	"github.com/hireflowhq/hireflow/internal/domain/entity"
)

// ApprovalRecordRepository implements port.ApprovalRecordRepository
type ApprovalRecordRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewApprovalRecordRepository creates a new approval record repository
func NewApprovalRecordRepository(db *sql.DB, logger *zap.Logger) port.ApprovalRecordRepository {
	return &ApprovalRecordRepository{
		db:     db,
		logger: logger,
	}
}

// CreateBatch inserts a batch of approval records
func (r *ApprovalRecordRepository) CreateBatch(ctx context.Context, records []*entity.ApprovalRecord) error {
	query := `
		INSERT INTO approval_records (offer_id, role, approver_id, state, comment, acted_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	exec := getExecutor(ctx, r.db)
	for _, record := range records {
		result, err := exec.ExecContext(ctx, query,
			record.OfferID,
			record.Role,
			record.ApproverID,
			record.State,
			record.Comment,
			record.ActedAt,
		)
		if err != nil {
			r.logger.Error("Failed to create approval record",
				zap.Int64("offer_id", record.OfferID), zap.String("role", record.Role), zap.Error(err))
			return fmt.Errorf("failed to create approval record: %w", err)
		}

		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get last insert id: %w", err)
		}
		record.ID = id
	}

	return nil
}

// GetPending retrieves the unique PENDING record for (offer, role), nil if absent
func (r *ApprovalRecordRepository) GetPending(ctx context.Context, offerID int64, role string) (*entity.ApprovalRecord, error) {
	query := `
		SELECT id, offer_id, role, approver_id, state, comment, acted_at
		FROM approval_records
		WHERE offer_id = ? AND role = ? AND state = 'PENDING'
	`

	record, err := scanApprovalRecord(getExecutor(ctx, r.db).QueryRowContext(ctx, query, offerID, role))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get pending approval record",
			zap.Int64("offer_id", offerID), zap.String("role", role), zap.Error(err))
		return nil, fmt.Errorf("failed to get pending approval record: %w", err)
	}

	return record, nil
}

// Update persists a record's verdict fields
func (r *ApprovalRecordRepository) Update(ctx context.Context, record *entity.ApprovalRecord) error {
	query := `
		UPDATE approval_records
		SET approver_id = ?, state = ?, comment = ?, acted_at = ?
		WHERE id = ?
	`

	_, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		record.ApproverID,
		record.State,
		record.Comment,
		record.ActedAt,
		record.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update approval record", zap.Int64("id", record.ID), zap.Error(err))
		return fmt.Errorf("failed to update approval record: %w", err)
	}

	return nil
}

// ListByOfferID retrieves all approval records for an offer
func (r *ApprovalRecordRepository) ListByOfferID(ctx context.Context, offerID int64) ([]*entity.ApprovalRecord, error) {
	query := `
		SELECT id, offer_id, role, approver_id, state, comment, acted_at
		FROM approval_records
		WHERE offer_id = ?
		ORDER BY id ASC
	`

	rows, err := getExecutor(ctx, r.db).QueryContext(ctx, query, offerID)
	if err != nil {
		r.logger.Error("Failed to list approval records", zap.Int64("offer_id", offerID), zap.Error(err))
		return nil, fmt.Errorf("failed to list approval records: %w", err)
	}
	defer rows.Close()

	var records []*entity.ApprovalRecord
	for rows.Next() {
		record, err := scanApprovalRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan approval record: %w", err)
		}
		records = append(records, record)
	}

	return records, rows.Err()
}

// DeleteByOfferID removes every approval record of an offer
func (r *ApprovalRecordRepository) DeleteByOfferID(ctx context.Context, offerID int64) error {
	query := `DELETE FROM approval_records WHERE offer_id = ?`

	_, err := getExecutor(ctx, r.db).ExecContext(ctx, query, offerID)
	if err != nil {
		r.logger.Error("Failed to delete approval records", zap.Int64("offer_id", offerID), zap.Error(err))
		return fmt.Errorf("failed to delete approval records: %w", err)
	}

	return nil
}

func scanApprovalRecord(row rowScanner) (*entity.ApprovalRecord, error) {
	var (
		record     entity.ApprovalRecord
		approverID sql.NullInt64
		comment    sql.NullString
		actedAt    sql.NullTime
	)

	err := row.Scan(
		&record.ID,
		&record.OfferID,
		&record.Role,
		&approverID,
		&record.State,
		&comment,
		&actedAt,
	)
	if err != nil {
		return nil, err
	}

	if approverID.Valid {
		record.ApproverID = &approverID.Int64
	}
	record.Comment = comment.String
	if actedAt.Valid {
		record.ActedAt = &actedAt.Time
	}

	return &record, nil
}

// Verify interface compliance
var _ port.ApprovalRecordRepository = (*ApprovalRecordRepository)(nil)
