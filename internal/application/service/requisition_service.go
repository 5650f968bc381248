package service

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/hireflowhq/hireflow/internal/application/port"
	"github.com/hireflowhq/hireflow/internal/domain/entity"
)

const (
	ActionCreatedRequisition    = "Created Requisition"
	ActionUpdatedRequisition    = "Updated Requisition"
	ActionApprovalStatusUpdated = "Approval Status Updated"
	ActionAssignedRecruiter     = "Assigned Recruiter"
)

// CreateRequisitionInput carries the fields for a new requisition
type CreateRequisitionInput struct {
	Position        string
	Grade           string
	ExperienceYears int
	EmploymentType  string
	WorkMode        string
	Priority        string
	Status          string
	MinSalary       *decimal.Decimal
	MaxSalary       *decimal.Decimal
	Currency        string
	PositionsCount  int
	HiringManager   string
	JobDescription  string
	CompanyID       int64
	CompanyName     string
}

// UpdateRequisitionInput carries a partial requisition update. Nil fields are
// left untouched and never contribute to the change log.
type UpdateRequisitionInput struct {
	Position        *string
	Grade           *string
	ExperienceYears *int
	EmploymentType  *string
	WorkMode        *string
	Priority        *string
	Status          *string
	MinSalary       *decimal.Decimal
	MaxSalary       *decimal.Decimal
	Currency        *string
	PositionsCount  *int
	HiringManager   *string
	JobDescription  *string
}

// RequisitionService owns requisition lifecycle, approval status, and the
// append-only activity audit trail
type RequisitionService interface {
	Create(ctx context.Context, input CreateRequisitionInput, actor entity.Actor) (*entity.Requisition, error)
	Get(ctx context.Context, id int64) (*entity.Requisition, error)
	List(ctx context.Context, filter port.RequisitionFilter) ([]*entity.Requisition, error)
	Update(ctx context.Context, id int64, input UpdateRequisitionInput, actor entity.Actor) (*entity.Requisition, error)
	SetApprovalStatus(ctx context.Context, id int64, status entity.ApprovalStatus, actor entity.Actor) (*entity.Requisition, error)
	AssignRecruiter(ctx context.Context, id int64, recruiterID int64, actor entity.Actor) (*entity.Requisition, error)
	Delete(ctx context.Context, id int64) error
	ActivityLog(ctx context.Context, id int64) ([]*entity.ActivityLogEntry, error)
	LogActivity(ctx context.Context, id int64, actor entity.Actor, action, details string) (*entity.ActivityLogEntry, error)
}

type requisitionServiceImpl struct {
	reqRepo   port.RequisitionRepository
	logRepo   port.ActivityLogRepository
	userRepo  port.UserRepository
	txManager port.TransactionManager
	logger    Logger
}

// NewRequisitionService creates a new RequisitionService
func NewRequisitionService(
	reqRepo port.RequisitionRepository,
	logRepo port.ActivityLogRepository,
	userRepo port.UserRepository,
	txManager port.TransactionManager,
	logger Logger,
) RequisitionService {
	return &requisitionServiceImpl{
		reqRepo:   reqRepo,
		logRepo:   logRepo,
		userRepo:  userRepo,
		txManager: txManager,
		logger:    logger,
	}
}

// Create creates a requisition in pending approval status and writes the
// creation audit entry
func (s *requisitionServiceImpl) Create(ctx context.Context, input CreateRequisitionInput, actor entity.Actor) (*entity.Requisition, error) {
	if err := validateActor(actor); err != nil {
		return nil, err
	}

	req := &entity.Requisition{
		ReqID:           generateReqID(input.CompanyName),
		Position:        input.Position,
		Grade:           input.Grade,
		ExperienceYears: input.ExperienceYears,
		EmploymentType:  input.EmploymentType,
		WorkMode:        input.WorkMode,
		Priority:        input.Priority,
		Status:          input.Status,
		ApprovalStatus:  entity.RequisitionPending,
		MinSalary:       input.MinSalary,
		MaxSalary:       input.MaxSalary,
		Currency:        input.Currency,
		PositionsCount:  input.PositionsCount,
		HiringManager:   input.HiringManager,
		JobDescription:  input.JobDescription,
		CompanyID:       input.CompanyID,
	}

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.reqRepo.Create(txCtx, req); err != nil {
			return fmt.Errorf("create requisition: %w", err)
		}
		return s.appendLog(txCtx, req.ID, actor, ActionCreatedRequisition,
			fmt.Sprintf("Requisition '%s' created by %s", req.Position, actor.Name))
	})
	if err != nil {
		s.logger.Error("Failed to create requisition", "error", err, "position", input.Position)
		return nil, err
	}

	s.logger.Info("Requisition created", "requisition_id", req.ID, "req_id", req.ReqID)
	return req, nil
}

// Get retrieves a requisition by ID
func (s *requisitionServiceImpl) Get(ctx context.Context, id int64) (*entity.Requisition, error) {
	return s.getRequisition(ctx, id)
}

// List retrieves requisitions honoring role visibility and approval filters
func (s *requisitionServiceImpl) List(ctx context.Context, filter port.RequisitionFilter) ([]*entity.Requisition, error) {
	if filter.Limit <= 0 {
		filter.Limit = 10
	}
	return s.reqRepo.List(ctx, filter)
}

// Update applies a partial update and writes an audit entry only when at
// least one field actually changed. A no-op update leaves the trail untouched.
func (s *requisitionServiceImpl) Update(ctx context.Context, id int64, input UpdateRequisitionInput, actor entity.Actor) (*entity.Requisition, error) {
	if err := validateActor(actor); err != nil {
		return nil, err
	}

	var updated *entity.Requisition

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		req, err := s.getRequisition(txCtx, id)
		if err != nil {
			return err
		}

		// Collect diffs before mutating so details reflect the true old values
		changes := applyUpdate(req, input)
		if len(changes) > 0 {
			if err := s.reqRepo.Update(txCtx, req); err != nil {
				return fmt.Errorf("update requisition: %w", err)
			}
			if err := s.appendLog(txCtx, req.ID, actor, ActionUpdatedRequisition, strings.Join(changes, "; ")); err != nil {
				return err
			}
		}

		updated = req
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to update requisition", "error", err, "requisition_id", id)
		return nil, err
	}
	return updated, nil
}

// SetApprovalStatus sets the coarse approval status and records the
// transition in the audit trail
func (s *requisitionServiceImpl) SetApprovalStatus(ctx context.Context, id int64, status entity.ApprovalStatus, actor entity.Actor) (*entity.Requisition, error) {
	if err := validateActor(actor); err != nil {
		return nil, err
	}
	if !status.IsValid() {
		return nil, fmt.Errorf("approval status %q: %w", status, entity.ErrInvalidArgument)
	}

	var updated *entity.Requisition

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		req, err := s.getRequisition(txCtx, id)
		if err != nil {
			return err
		}

		oldStatus := req.ApprovalStatus
		req.ApprovalStatus = status
		if err := s.reqRepo.Update(txCtx, req); err != nil {
			return fmt.Errorf("update requisition: %w", err)
		}

		if err := s.appendLog(txCtx, req.ID, actor, ActionApprovalStatusUpdated,
			fmt.Sprintf("Changed from '%s' to '%s'", oldStatus, status)); err != nil {
			return err
		}

		updated = req
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to set approval status", "error", err, "requisition_id", id, "status", status)
		return nil, err
	}

	s.logger.Info("Requisition approval status updated", "requisition_id", id, "status", status)
	return updated, nil
}

// AssignRecruiter assigns a recruiter to a requisition and records the
// assignment. The assignee must exist and hold the recruiter role.
func (s *requisitionServiceImpl) AssignRecruiter(ctx context.Context, id int64, recruiterID int64, actor entity.Actor) (*entity.Requisition, error) {
	if err := validateActor(actor); err != nil {
		return nil, err
	}

	var updated *entity.Requisition

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		req, err := s.getRequisition(txCtx, id)
		if err != nil {
			return err
		}

		recruiter, err := s.userRepo.GetByID(txCtx, recruiterID)
		if err != nil {
			return fmt.Errorf("get recruiter: %w", err)
		}
		if recruiter == nil || recruiter.Role != "recruiter" {
			return fmt.Errorf("recruiter id %d: %w", recruiterID, entity.ErrInvalidArgument)
		}

		req.RecruiterID = &recruiterID
		if err := s.reqRepo.Update(txCtx, req); err != nil {
			return fmt.Errorf("update requisition: %w", err)
		}

		if err := s.appendLog(txCtx, req.ID, actor, ActionAssignedRecruiter,
			fmt.Sprintf("Recruiter ID %d assigned by %s", recruiterID, actor.Name)); err != nil {
			return err
		}

		updated = req
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to assign recruiter", "error", err, "requisition_id", id, "recruiter_id", recruiterID)
		return nil, err
	}

	s.logger.Info("Recruiter assigned", "requisition_id", id, "recruiter_id", recruiterID)
	return updated, nil
}

// Delete removes a requisition
func (s *requisitionServiceImpl) Delete(ctx context.Context, id int64) error {
	if _, err := s.getRequisition(ctx, id); err != nil {
		return err
	}
	if err := s.reqRepo.Delete(ctx, id); err != nil {
		s.logger.Error("Failed to delete requisition", "error", err, "requisition_id", id)
		return err
	}
	s.logger.Info("Requisition deleted", "requisition_id", id)
	return nil
}

// ActivityLog returns the audit trail for a requisition, newest first
func (s *requisitionServiceImpl) ActivityLog(ctx context.Context, id int64) ([]*entity.ActivityLogEntry, error) {
	if _, err := s.getRequisition(ctx, id); err != nil {
		return nil, err
	}
	return s.logRepo.ListByRequisitionID(ctx, id)
}

// LogActivity appends a caller-supplied audit entry for a requisition
func (s *requisitionServiceImpl) LogActivity(ctx context.Context, id int64, actor entity.Actor, action, details string) (*entity.ActivityLogEntry, error) {
	if err := validateActor(actor); err != nil {
		return nil, err
	}
	if action == "" {
		return nil, fmt.Errorf("action required: %w", entity.ErrInvalidArgument)
	}
	if _, err := s.getRequisition(ctx, id); err != nil {
		return nil, err
	}

	entry := &entity.ActivityLogEntry{
		RequisitionID: id,
		UserID:        actor.ID,
		Username:      actor.Name,
		Action:        action,
		Details:       details,
	}
	if err := s.logRepo.Create(ctx, entry); err != nil {
		s.logger.Error("Failed to append activity log", "error", err, "requisition_id", id)
		return nil, err
	}
	return entry, nil
}

func (s *requisitionServiceImpl) getRequisition(ctx context.Context, id int64) (*entity.Requisition, error) {
	req, err := s.reqRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get requisition: %w", err)
	}
	if req == nil {
		return nil, fmt.Errorf("requisition %d: %w", id, entity.ErrNotFound)
	}
	return req, nil
}

func (s *requisitionServiceImpl) appendLog(ctx context.Context, requisitionID int64, actor entity.Actor, action, details string) error {
	entry := &entity.ActivityLogEntry{
		RequisitionID: requisitionID,
		UserID:        actor.ID,
		Username:      actor.Name,
		Action:        action,
		Details:       details,
	}
	if err := s.logRepo.Create(ctx, entry); err != nil {
		return fmt.Errorf("append activity log: %w", err)
	}
	return nil
}

func validateActor(actor entity.Actor) error {
	if actor.ID == 0 || actor.Name == "" {
		return fmt.Errorf("actor identity required: %w", entity.ErrInvalidArgument)
	}
	return nil
}

// applyUpdate mutates req with the non-nil fields of input and returns one
// change description per field whose value actually changed
func applyUpdate(req *entity.Requisition, input UpdateRequisitionInput) []string {
	var changes []string

	setStr := func(field string, dst *string, src *string) {
		if src != nil && *dst != *src {
			changes = append(changes, fmt.Sprintf("%s changed from '%s' to '%s'", field, *dst, *src))
			*dst = *src
		}
	}
	setInt := func(field string, dst *int, src *int) {
		if src != nil && *dst != *src {
			changes = append(changes, fmt.Sprintf("%s changed from '%d' to '%d'", field, *dst, *src))
			*dst = *src
		}
	}
	setDec := func(field string, dst **decimal.Decimal, src *decimal.Decimal) {
		if src == nil {
			return
		}
		if *dst != nil && (*dst).Equal(*src) {
			return
		}
		old := ""
		if *dst != nil {
			old = (*dst).String()
		}
		changes = append(changes, fmt.Sprintf("%s changed from '%s' to '%s'", field, old, src.String()))
		v := *src
		*dst = &v
	}

	setStr("position", &req.Position, input.Position)
	setStr("grade", &req.Grade, input.Grade)
	setInt("experience_years", &req.ExperienceYears, input.ExperienceYears)
	setStr("employment_type", &req.EmploymentType, input.EmploymentType)
	setStr("work_mode", &req.WorkMode, input.WorkMode)
	setStr("priority", &req.Priority, input.Priority)
	setStr("status", &req.Status, input.Status)
	setDec("min_salary", &req.MinSalary, input.MinSalary)
	setDec("max_salary", &req.MaxSalary, input.MaxSalary)
	setStr("currency", &req.Currency, input.Currency)
	setInt("positions_count", &req.PositionsCount, input.PositionsCount)
	setStr("hiring_manager", &req.HiringManager, input.HiringManager)
	setStr("job_description", &req.JobDescription, input.JobDescription)

	return changes
}

// generateReqID builds a human-facing requisition token from the company name
// and two random 3-digit groups, e.g. ACME-123-456
func generateReqID(companyName string) string {
	initials := strings.ToUpper(companyName)
	if len(initials) > 4 {
		initials = initials[:4]
	}
	if initials == "" {
		initials = "REQ"
	}
	return fmt.Sprintf("%s-%03d-%03d", initials, rand.Intn(900)+100, rand.Intn(900)+100)
}
