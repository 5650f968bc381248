package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/hireflowhq/hireflow/internal/application/port"
	"github.com/hireflowhq/hireflow/internal/domain/entity"
)

const requisitionColumns = `
	id, req_id, position, grade, experience_years, employment_type, work_mode,
	priority, status, approval_status, min_salary, max_salary, currency,
	positions_count, hiring_manager, job_description, recruiter_id, company_id,
	created_at`

// RequisitionRepository implements port.RequisitionRepository
type RequisitionRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewRequisitionRepository creates a new requisition repository
func NewRequisitionRepository(db *sql.DB, logger *zap.Logger) port.RequisitionRepository {
	return &RequisitionRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new requisition
func (r *RequisitionRepository) Create(ctx context.Context, req *entity.Requisition) error {
	query := `
		INSERT INTO requisitions (
			req_id, position, grade, experience_years, employment_type,
			work_mode, priority, status, approval_status, min_salary,
			max_salary, currency, positions_count, hiring_manager,
			job_description, recruiter_id, company_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		req.ReqID,
		req.Position,
		req.Grade,
		req.ExperienceYears,
		req.EmploymentType,
		req.WorkMode,
		req.Priority,
		req.Status,
		req.ApprovalStatus,
		decimalOrNil(req.MinSalary),
		decimalOrNil(req.MaxSalary),
		req.Currency,
		req.PositionsCount,
		req.HiringManager,
		req.JobDescription,
		req.RecruiterID,
		req.CompanyID,
	)
	if err != nil {
		r.logger.Error("Failed to create requisition", zap.String("position", req.Position), zap.Error(err))
		return fmt.Errorf("failed to create requisition: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	req.ID = id
	return nil
}

// GetByID retrieves a requisition by ID, nil when absent
func (r *RequisitionRepository) GetByID(ctx context.Context, id int64) (*entity.Requisition, error) {
	query := `SELECT` + requisitionColumns + ` FROM requisitions WHERE id = ?`

	req, err := scanRequisition(getExecutor(ctx, r.db).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get requisition", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get requisition: %w", err)
	}

	return req, nil
}

// Update persists the mutable requisition fields
func (r *RequisitionRepository) Update(ctx context.Context, req *entity.Requisition) error {
	query := `
		UPDATE requisitions SET
			position = ?, grade = ?, experience_years = ?, employment_type = ?,
			work_mode = ?, priority = ?, status = ?, approval_status = ?,
			min_salary = ?, max_salary = ?, currency = ?, positions_count = ?,
			hiring_manager = ?, job_description = ?, recruiter_id = ?
		WHERE id = ?
	`

	_, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		req.Position,
		req.Grade,
		req.ExperienceYears,
		req.EmploymentType,
		req.WorkMode,
		req.Priority,
		req.Status,
		req.ApprovalStatus,
		decimalOrNil(req.MinSalary),
		decimalOrNil(req.MaxSalary),
		req.Currency,
		req.PositionsCount,
		req.HiringManager,
		req.JobDescription,
		req.RecruiterID,
		req.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update requisition", zap.Int64("id", req.ID), zap.Error(err))
		return fmt.Errorf("failed to update requisition: %w", err)
	}

	return nil
}

// Delete removes a requisition and, via cascade, its activity log
func (r *RequisitionRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM requisitions WHERE id = ?`

	_, err := getExecutor(ctx, r.db).ExecContext(ctx, query, id)
	if err != nil {
		r.logger.Error("Failed to delete requisition", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to delete requisition: %w", err)
	}

	return nil
}

// List retrieves requisitions honoring role visibility rules: recruiters see
// only approved requisitions assigned to them, other roles filter by
// approval status ("all" disables the filter)
func (r *RequisitionRepository) List(ctx context.Context, filter port.RequisitionFilter) ([]*entity.Requisition, error) {
	query := `SELECT` + requisitionColumns + ` FROM requisitions WHERE 1=1`
	args := []interface{}{}

	if filter.Role == "recruiter" && filter.UserID != 0 {
		query += ` AND recruiter_id = ? AND approval_status = 'approved'`
		args = append(args, filter.UserID)
	} else if filter.ApprovalStatus != "" && filter.ApprovalStatus != "all" {
		query += ` AND approval_status = ?`
		args = append(args, filter.ApprovalStatus)
	}

	query += ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	args = append(args, filter.Limit, filter.Offset)

	rows, err := getExecutor(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list requisitions", zap.Error(err))
		return nil, fmt.Errorf("failed to list requisitions: %w", err)
	}
	defer rows.Close()

	var reqs []*entity.Requisition
	for rows.Next() {
		req, err := scanRequisition(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan requisition: %w", err)
		}
		reqs = append(reqs, req)
	}

	return reqs, rows.Err()
}

func scanRequisition(row rowScanner) (*entity.Requisition, error) {
	var (
		req         entity.Requisition
		grade       sql.NullString
		minSalary   sql.NullString
		maxSalary   sql.NullString
		currency    sql.NullString
		hiringMgr   sql.NullString
		jobDesc     sql.NullString
		recruiterID sql.NullInt64
	)

	err := row.Scan(
		&req.ID,
		&req.ReqID,
		&req.Position,
		&grade,
		&req.ExperienceYears,
		&req.EmploymentType,
		&req.WorkMode,
		&req.Priority,
		&req.Status,
		&req.ApprovalStatus,
		&minSalary,
		&maxSalary,
		&currency,
		&req.PositionsCount,
		&hiringMgr,
		&jobDesc,
		&recruiterID,
		&req.CompanyID,
		&req.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	req.Grade = grade.String
	req.Currency = currency.String
	req.HiringManager = hiringMgr.String
	req.JobDescription = jobDesc.String
	if recruiterID.Valid {
		req.RecruiterID = &recruiterID.Int64
	}
	if req.MinSalary, err = nullableDecimal(minSalary); err != nil {
		return nil, err
	}
	if req.MaxSalary, err = nullableDecimal(maxSalary); err != nil {
		return nil, err
	}

	return &req, nil
}

func nullableDecimal(v sql.NullString) (*decimal.Decimal, error) {
	if !v.Valid || v.String == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(v.String)
	if err != nil {
		return nil, fmt.Errorf("invalid decimal %q: %w", v.String, err)
	}
	return &d, nil
}

func decimalOrNil(d *decimal.Decimal) interface{} {
	if d == nil {
		return nil
	}
	return d.String()
}

// Verify interface compliance
var _ port.RequisitionRepository = (*RequisitionRepository)(nil)
