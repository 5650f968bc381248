package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ApprovalStatus is the coarse approval status of a requisition. The value set
// is closed; transitions between the three values are unconstrained.
type ApprovalStatus string

const (
	RequisitionPending  ApprovalStatus = "pending"
	RequisitionApproved ApprovalStatus = "approved"
	RequisitionRejected ApprovalStatus = "rejected"
)

// IsValid returns true for one of the three known status values
func (s ApprovalStatus) IsValid() bool {
	switch s {
	case RequisitionPending, RequisitionApproved, RequisitionRejected:
		return true
	}
	return false
}

// Requisition is a job opening tracked for hiring workflow and approval
type Requisition struct {
	ID              int64            `json:"id"`
	ReqID           string           `json:"req_id"`
	Position        string           `json:"position"`
	Grade           string           `json:"grade,omitempty"`
	ExperienceYears int              `json:"experience_years,omitempty"`
	EmploymentType  string           `json:"employment_type"`
	WorkMode        string           `json:"work_mode"`
	Priority        string           `json:"priority"`
	Status          string           `json:"status"`
	ApprovalStatus  ApprovalStatus   `json:"approval_status"`
	MinSalary       *decimal.Decimal `json:"min_salary,omitempty"`
	MaxSalary       *decimal.Decimal `json:"max_salary,omitempty"`
	Currency        string           `json:"currency,omitempty"`
	PositionsCount  int              `json:"positions_count"`
	HiringManager   string           `json:"hiring_manager,omitempty"`
	JobDescription  string           `json:"job_description,omitempty"`
	RecruiterID     *int64           `json:"recruiter_id,omitempty"`
	CompanyID       int64            `json:"company_id"`
	CreatedAt       time.Time        `json:"created_at"`
}

// ActivityLogEntry is one append-only audit row for a requisition mutation.
// Rows are never updated or deleted once written.
type ActivityLogEntry struct {
	ID            int64     `json:"id"`
	RequisitionID int64     `json:"requisition_id"`
	UserID        int64     `json:"user_id"`
	Username      string    `json:"username"`
	Action        string    `json:"action"`
	Details       string    `json:"details,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}
